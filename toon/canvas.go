//go:build js && wasm

// Package toon implements the CPU variant of the cartoonify webcam demo:
// each frame is downscaled to the processing resolution, posterized and
// outlined on a 2D canvas, then magnified back with nearest-neighbor
// sampling to keep the blocky look.
package toon

import (
	"fmt"
	"syscall/js"

	"github.com/esimov/stackblur-go"
	"github.com/esimov/toonify-wasm/pixels"
	"github.com/esimov/toonify-wasm/scheduler"
	"github.com/esimov/toonify-wasm/stylize"
)

// Canvas struct holds the Javascript objects needed for the Canvas creation
type Canvas struct {
	done   chan struct{}
	succCh chan struct{}
	errCh  chan error

	// DOM elements
	window     js.Value
	doc        js.Value
	body       js.Value
	windowSize struct{ width, height int }

	// Canvas properties
	canvas js.Value
	ctx    js.Value

	// Offscreen canvas holding the downscaled frame the effect runs on.
	procCanvas js.Value
	procCtx    js.Value
	procWidth  int
	procHeight int

	// Webcam properties
	video       js.Value
	videoWidth  int
	videoHeight int

	// Render loop
	raf  *scheduler.RAF
	loop *scheduler.Scheduler

	// Canvas interaction related variables
	smooth bool

	stylizer *stylize.Stylizer
	data     []byte

	blurRadius uint32
}

const (
	// HAVE_CURRENT_DATA: the video element can deliver the current frame.
	readyStateHaveCurrentData = 2

	idealWidth  = 1280
	idealHeight = 720
)

// NewCanvas creates and initializes the new Canvas element
func NewCanvas() *Canvas {
	var c Canvas
	c.window = js.Global()
	c.doc = c.window.Get("document")
	c.body = c.doc.Get("body")

	c.windowSize.width = idealWidth
	c.windowSize.height = idealHeight

	c.canvas = c.doc.Call("createElement", "canvas")
	c.canvas.Set("width", c.windowSize.width)
	c.canvas.Set("height", c.windowSize.height)
	c.canvas.Set("id", "canvas")
	c.body.Call("appendChild", c.canvas)

	c.ctx = c.canvas.Call("getContext", "2d")

	c.procCanvas = c.doc.Call("createElement", "canvas")
	c.procCtx = c.procCanvas.Call("getContext", "2d")

	c.smooth = false
	c.blurRadius = 4

	c.stylizer = stylize.NewStylizer(stylize.DefaultParams)

	return &c
}

// Render starts the rendering loop and keeps it running until Stop is
// called. Each tick pulls the current webcam frame, applies the cartoon
// effect at the processing resolution and redraws the output canvas.
func (c *Canvas) Render() error {
	c.done = make(chan struct{})
	c.raf = scheduler.NewRAF()
	c.loop = scheduler.New(c.raf, c.tick)

	c.detectKeyPress()
	c.loop.Start()
	<-c.done

	return nil
}

// tick processes a single webcam frame. Every failure is recovered
// locally: an unready video skips the tick and a pixel access error
// falls back to presenting the raw frame, so the loop itself never stops.
func (c *Canvas) tick() {
	if !c.frameReady() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.Log("dropping frame:", fmt.Sprint(r))
			c.drawRawFrame()
		}
	}()

	c.syncDimensions()

	// Draw the webcam frame downscaled onto the processing canvas.
	c.procCtx.Call("drawImage", c.video, 0, 0, c.procWidth, c.procHeight)
	rgba := c.procCtx.Call("getImageData", 0, 0, c.procWidth, c.procHeight).Get("data")

	// Convert the rgba value of type Uint8ClampedArray to Uint8Array in order to
	// be able to transfer it from Javascript to Go via the js.CopyBytesToGo function.
	uint8Arr := js.Global().Get("Uint8Array").New(rgba)
	js.CopyBytesToGo(c.data, uint8Arr)

	if c.smooth {
		c.smoothFrame()
	}
	c.stylizer.Apply(c.data, c.procWidth, c.procHeight)

	uint8Arr = js.Global().Get("Uint8Array").New(len(c.data))
	js.CopyBytesToJS(uint8Arr, c.data)

	uint8Clamped := js.Global().Get("Uint8ClampedArray").New(uint8Arr)
	rawData := js.Global().Get("ImageData").New(uint8Clamped, c.procWidth)
	c.procCtx.Call("putImageData", rawData, 0, 0)

	// Magnify the stylized frame back to the output resolution. The
	// nearest-neighbor sampling is part of the visual contract.
	c.ctx.Set("imageSmoothingEnabled", false)
	c.ctx.Call("drawImage", c.procCanvas,
		0, 0, c.procWidth, c.procHeight,
		0, 0, c.windowSize.width, c.windowSize.height,
	)
}

// frameReady reports whether the video element can deliver a frame.
func (c *Canvas) frameReady() bool {
	if c.video.IsUndefined() || c.video.IsNull() {
		return false
	}
	if c.video.Get("readyState").Int() < readyStateHaveCurrentData {
		return false
	}
	return c.video.Get("videoWidth").Int() > 0 && c.video.Get("videoHeight").Int() > 0
}

// syncDimensions recalculates the processing resolution and resizes the
// canvases whenever the webcam switches to a different native resolution.
func (c *Canvas) syncDimensions() {
	width := c.video.Get("videoWidth").Int()
	height := c.video.Get("videoHeight").Int()
	if width == c.videoWidth && height == c.videoHeight {
		return
	}
	c.videoWidth, c.videoHeight = width, height
	c.windowSize.width, c.windowSize.height = width, height

	c.canvas.Set("width", width)
	c.canvas.Set("height", height)

	c.procWidth, c.procHeight = stylize.DefaultParams.ProcSize(width, height)
	c.procCanvas.Set("width", c.procWidth)
	c.procCanvas.Set("height", c.procHeight)

	c.data = make([]byte, c.procWidth*c.procHeight*4)
}

// smoothFrame runs the stack blur over the processing buffer to tame
// the sensor noise before the gradient pass. Off by default.
func (c *Canvas) smoothFrame() {
	img, err := stackblur.Process(pixels.PixToImage(c.data, c.procWidth, c.procHeight), c.blurRadius)
	if err != nil {
		c.Log("skipping the smoothing pass:", fmt.Sprint(err))
		return
	}
	copy(c.data, pixels.ImgToPix(img))
}

// drawRawFrame presents the unprocessed webcam frame.
func (c *Canvas) drawRawFrame() {
	c.ctx.Call("drawImage", c.video, 0, 0, c.windowSize.width, c.windowSize.height)
}

// Stop stops the rendering and releases the frame requester.
func (c *Canvas) Stop() {
	c.loop.Stop()
	c.raf.Release()
	close(c.done)
}

// StartWebcam reads the webcam data and feeds it into the canvas element.
// It returns an empty struct in case of success and error in case of failure.
func (c *Canvas) StartWebcam() (*Canvas, error) {
	var err error
	c.succCh = make(chan struct{})
	c.errCh = make(chan error)

	c.video = c.doc.Call("createElement", "video")

	// If we don't do this, the stream will not be played.
	c.video.Set("autoplay", 1)
	c.video.Set("playsinline", 1) // important for iPhones

	// The video should fill out all of the canvas
	c.video.Set("width", 0)
	c.video.Set("height", 0)

	c.body.Call("appendChild", c.video)

	success := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		go func() {
			c.video.Set("srcObject", args[0])
			c.video.Call("play")
			c.succCh <- struct{}{}
		}()
		return nil
	})

	failure := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		go func() {
			err = fmt.Errorf("failed initialising the camera: %s", args[0].String())
			c.errCh <- err
		}()
		return nil
	})

	opts := js.Global().Get("Object").New()

	videoSize := js.Global().Get("Object").New()
	videoSize.Set("width", c.windowSize.width)
	videoSize.Set("height", c.windowSize.height)
	videoSize.Set("aspectRatio", 1.777777778)

	opts.Set("video", videoSize)
	opts.Set("audio", false)

	promise := c.window.Get("navigator").Get("mediaDevices").Call("getUserMedia", opts)
	promise.Call("then", success, failure)

	select {
	case <-c.succCh:
		return c, nil
	case err := <-c.errCh:
		return nil, err
	}
}

// snapshot exports the current canvas contents as a PNG image and
// triggers a download through a synthesized anchor element.
func (c *Canvas) snapshot() {
	dataURL := c.canvas.Call("toDataURL", "image/png")

	anchor := c.doc.Call("createElement", "a")
	anchor.Set("href", dataURL)
	anchor.Set("download", "toonify.png")
	c.body.Call("appendChild", anchor)
	anchor.Call("click")
	c.body.Call("removeChild", anchor)
}

// detectKeyPress listen for the keypress event and retrieves the key code.
func (c *Canvas) detectKeyPress() {
	keyEventHandler := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		keyCode := args[0].Get("key")
		switch keyCode.String() {
		case "b":
			c.smooth = !c.smooth
		case "x":
			c.snapshot()
		}
		return nil
	})
	c.doc.Call("addEventListener", "keypress", keyEventHandler)
}

// Log calls the `console.log` Javascript function
func (c *Canvas) Log(args ...interface{}) {
	c.window.Get("console").Call("log", args...)
}

// Alert calls the `alert` Javascript function
func (c *Canvas) Alert(args ...interface{}) {
	alert := c.window.Get("alert")
	alert.Invoke(args...)
}
