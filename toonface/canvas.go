//go:build js && wasm

// Package toonface applies the cartoon effect only over the detected
// face regions: each detection square is stylized with the same CPU
// core the full-frame demo uses and composited back through an
// elliptical mask, so only the face area gets the cartoon treatment.
package toonface

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync"
	"syscall/js"

	"golang.org/x/sync/errgroup"

	"github.com/esimov/toonify-wasm/detector"
	ellipse "github.com/esimov/toonify-wasm/draw"
	"github.com/esimov/toonify-wasm/pixels"
	"github.com/esimov/toonify-wasm/scheduler"
	"github.com/esimov/toonify-wasm/stylize"
)

// Canvas struct holds the Javascript objects needed for the Canvas creation
type Canvas struct {
	done   chan struct{}
	succCh chan struct{}
	errCh  chan error
	lock   sync.Mutex
	g      *errgroup.Group

	// DOM elements
	window     js.Value
	doc        js.Value
	body       js.Value
	windowSize struct{ width, height int }

	// Canvas properties
	canvas js.Value
	ctx    js.Value

	// Webcam properties
	video js.Value

	// Render loop
	raf  *scheduler.RAF
	loop *scheduler.Scheduler

	// Canvas interaction related variables
	showPupil bool
	showFrame bool

	stylizer *stylize.Stylizer
	data     []byte
	gray     []byte
}

const (
	readyStateHaveCurrentData = 2

	cascadeFaceFinder = "cascade/facefinder"
	cascadePuploc     = "cascade/puploc"
)

var det *detector.Detector

// NewCanvas creates and initializes the new Canvas element
func NewCanvas() *Canvas {
	var c Canvas
	c.window = js.Global()
	c.doc = c.window.Get("document")
	c.body = c.doc.Get("body")

	c.windowSize.width = 1024
	c.windowSize.height = 640

	c.canvas = c.doc.Call("createElement", "canvas")
	c.canvas.Set("width", c.windowSize.width)
	c.canvas.Set("height", c.windowSize.height)
	c.canvas.Set("id", "canvas")
	c.body.Call("appendChild", c.canvas)

	c.ctx = c.canvas.Call("getContext", "2d")
	c.showPupil = false
	c.showFrame = false

	// The face regions keep the native resolution, so no downscaling.
	c.stylizer = stylize.NewStylizer(stylize.Params{
		Levels:        stylize.DefaultParams.Levels,
		EdgeThreshold: stylize.DefaultParams.EdgeThreshold,
		Scale:         1.0,
	})
	c.lock = sync.Mutex{}
	c.g = &errgroup.Group{}

	det = detector.NewDetector()

	return &c
}

// Render fetches the detection cascades and starts the rendering loop.
func (c *Canvas) Render() error {
	faceCascade, err := pixels.FetchAsset(cascadeFaceFinder)
	if err != nil {
		return err
	}
	puplocCascade, err := pixels.FetchAsset(cascadePuploc)
	if err != nil {
		return err
	}
	if err := det.UnpackCascades(faceCascade, puplocCascade); err != nil {
		return err
	}

	width, height := c.windowSize.width, c.windowSize.height
	c.data = make([]byte, width*height*4)
	c.gray = make([]byte, width*height*4)

	c.done = make(chan struct{})
	c.raf = scheduler.NewRAF()
	c.loop = scheduler.New(c.raf, c.tick)

	c.detectKeyPress()
	c.loop.Start()
	<-c.done

	return nil
}

// tick detects the faces on the current frame and cartoonifies each
// detected region. Failures are recovered at the tick boundary.
func (c *Canvas) tick() {
	if !c.frameReady() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.Log("dropping frame:", fmt.Sprint(r))
		}
	}()

	width, height := c.windowSize.width, c.windowSize.height

	// Draw the webcam frame to the canvas element
	c.ctx.Call("drawImage", c.video, 0, 0, width, height)
	rgba := c.ctx.Call("getImageData", 0, 0, width, height).Get("data")

	// Convert the rgba value of type Uint8ClampedArray to Uint8Array in order to
	// be able to transfer it from Javascript to Go via the js.CopyBytesToGo function.
	uint8Arr := js.Global().Get("Uint8Array").New(rgba)
	js.CopyBytesToGo(c.data, uint8Arr)

	copy(c.gray, c.data)
	gray := pixels.RgbaToGrayscale(c.gray, height, width)

	dets := det.DetectFaces(gray, height, width)
	if len(dets) > 0 {
		if err := c.drawDetection(gray, dets); err != nil {
			c.Log("dropping detections:", fmt.Sprint(err))
		}
	}
}

// frameReady reports whether the video element can deliver a frame.
func (c *Canvas) frameReady() bool {
	if c.video.IsUndefined() || c.video.IsNull() {
		return false
	}
	return c.video.Get("readyState").Int() >= readyStateHaveCurrentData
}

// drawDetection cartoonifies the detected face regions.
func (c *Canvas) drawDetection(gray []uint8, dets [][]int) error {
	width, height := c.windowSize.width, c.windowSize.height

	for _, d := range dets {
		d := d
		c.g.Go(func() error {
			row, col, scale := d[0], d[1], d[2]

			c.lock.Lock()
			defer c.lock.Unlock()

			// Substract the image under the detected face region.
			imgData := make([]byte, scale*scale*4)
			subimg := c.ctx.Call("getImageData", col-scale/2, row-scale/2, scale, scale).Get("data")
			uint8Arr := js.Global().Get("Uint8Array").New(subimg)
			js.CopyBytesToGo(imgData, uint8Arr)

			region := pixels.PixToImage(imgData, scale, scale)

			// Cartoonify the region and composite it back through the
			// elliptical face mask, leaving the corners untouched.
			toonData := make([]byte, len(imgData))
			copy(toonData, imgData)
			c.stylizer.Apply(toonData, scale, scale)
			toonified := pixels.PixToImage(toonData, scale, scale)

			faceMask := image.NewNRGBA(image.Rect(0, 0, scale, scale))
			e := &ellipse.Ellipse{
				Cx: scale / 2,
				Cy: scale / 2,
				Rx: int(float64(scale) * 0.8 / 1.55),
				Ry: int(float64(scale) * 0.8 / 2.2),
			}
			draw.Draw(faceMask, faceMask.Bounds(), e, image.Point{}, draw.Over)
			draw.DrawMask(region, region.Bounds(), toonified, image.Point{}, faceMask, image.Point{}, draw.Over)

			uint8Arr = js.Global().Get("Uint8Array").New(scale * scale * 4)
			js.CopyBytesToJS(uint8Arr, pixels.ImgToPix(region))

			uint8Clamped := js.Global().Get("Uint8ClampedArray").New(uint8Arr)
			rawData := js.Global().Get("ImageData").New(uint8Clamped, scale)

			// Replace the underlying face region with the cartoonified image.
			c.ctx.Call("putImageData", rawData, col-scale/2, row-scale/2)

			if c.showFrame {
				c.ctx.Call("beginPath")
				c.ctx.Set("lineWidth", 2)
				c.ctx.Set("strokeStyle", "rgba(255, 0, 0, 0.5)")
				c.ctx.Call("rect", col-scale/2, row-scale/2, scale, scale)
				c.ctx.Call("stroke")
			}

			if c.showPupil {
				c.drawPupils(gray, d, width, height)
			}
			return nil
		})
	}
	return c.g.Wait()
}

// drawPupils marks the detected pupil positions.
func (c *Canvas) drawPupils(gray []uint8, d []int, width, height int) {
	c.ctx.Call("beginPath")
	c.ctx.Set("lineWidth", 2)
	c.ctx.Set("strokeStyle", "rgba(255, 0, 0, 0.5)")

	leftPupil := det.DetectLeftPupil(d, gray, height, width)
	if leftPupil != nil {
		col, row, scale := leftPupil.Col, leftPupil.Row, leftPupil.Scale/8
		c.ctx.Call("moveTo", col+int(scale), row)
		c.ctx.Call("arc", col, row, scale, 0, 2*math.Pi, true)
	}

	rightPupil := det.DetectRightPupil(d, gray, height, width)
	if rightPupil != nil {
		col, row, scale := rightPupil.Col, rightPupil.Row, rightPupil.Scale/8
		c.ctx.Call("moveTo", col+int(scale), row)
		c.ctx.Call("arc", col, row, scale, 0, 2*math.Pi, true)
	}
	c.ctx.Call("stroke")
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

// detectKeyPress listen for the keypress event and retrieves the key code.
func (c *Canvas) detectKeyPress() {
	keyEventHandler := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		keyCode := args[0].Get("key")
		switch keyCode.String() {
		case "s":
			c.showPupil = !c.showPupil
		case "f":
			c.showFrame = !c.showFrame
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
