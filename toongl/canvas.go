//go:build js && wasm

package toongl

import (
	"fmt"
	"syscall/js"

	"github.com/esimov/toonify-wasm/scheduler"
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
	gl     js.Value

	// Shader program resources
	program    js.Value
	vertShader js.Value
	fragShader js.Value
	quad       js.Value
	texture    js.Value

	// Uniform locations
	scaleLoc js.Value
	texelLoc js.Value
	frameLoc js.Value

	// Webcam properties
	video       js.Value
	videoWidth  int
	videoHeight int

	// Render loop
	raf  *scheduler.RAF
	loop *scheduler.Scheduler

	// Recording properties
	recorder  js.Value
	chunks    js.Value
	recording bool
}

const (
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

	c.windowSize.width = c.window.Get("innerWidth").Int()
	c.windowSize.height = c.window.Get("innerHeight").Int()

	c.canvas = c.doc.Call("createElement", "canvas")
	c.canvas.Set("width", c.windowSize.width)
	c.canvas.Set("height", c.windowSize.height)
	c.canvas.Set("id", "canvas")
	c.body.Call("appendChild", c.canvas)

	return &c
}

// Render compiles the shader program and starts the rendering loop. It
// returns an error before entering the loop when the WebGL capability
// or the shader compilation is missing, so the caller can block the
// activation instead of running a broken loop.
func (c *Canvas) Render() error {
	c.gl = c.canvas.Call("getContext", "webgl")
	if c.gl.IsNull() || c.gl.IsUndefined() {
		return fmt.Errorf("WebGL is not supported on this platform")
	}

	if err := c.initProgram(); err != nil {
		return err
	}
	c.initQuad()
	c.initTexture()

	c.done = make(chan struct{})
	c.raf = scheduler.NewRAF()
	c.loop = scheduler.New(c.raf, c.tick)

	c.detectKeyPress()
	c.loop.Start()
	<-c.done

	return nil
}

// initProgram compiles and links the vertex and fragment shaders.
func (c *Canvas) initProgram() error {
	var err error

	c.vertShader, err = c.compileShader(vertexShader, c.gl.Get("VERTEX_SHADER"))
	if err != nil {
		return err
	}
	c.fragShader, err = c.compileShader(fragmentShader, c.gl.Get("FRAGMENT_SHADER"))
	if err != nil {
		return err
	}

	c.program = c.gl.Call("createProgram")
	c.gl.Call("attachShader", c.program, c.vertShader)
	c.gl.Call("attachShader", c.program, c.fragShader)
	c.gl.Call("linkProgram", c.program)

	if !c.gl.Call("getProgramParameter", c.program, c.gl.Get("LINK_STATUS")).Bool() {
		return fmt.Errorf("failed linking the shader program: %s",
			c.gl.Call("getProgramInfoLog", c.program).String())
	}
	c.gl.Call("useProgram", c.program)

	c.scaleLoc = c.gl.Call("getUniformLocation", c.program, "u_scale")
	c.texelLoc = c.gl.Call("getUniformLocation", c.program, "u_texel")
	c.frameLoc = c.gl.Call("getUniformLocation", c.program, "u_frame")

	return nil
}

// compileShader compiles a single shader stage from its source.
func (c *Canvas) compileShader(source string, shaderType js.Value) (js.Value, error) {
	shader := c.gl.Call("createShader", shaderType)
	c.gl.Call("shaderSource", shader, source)
	c.gl.Call("compileShader", shader)

	if !c.gl.Call("getShaderParameter", shader, c.gl.Get("COMPILE_STATUS")).Bool() {
		defer c.gl.Call("deleteShader", shader)
		return js.Null(), fmt.Errorf("failed compiling the shader: %s",
			c.gl.Call("getShaderInfoLog", shader).String())
	}
	return shader, nil
}

// initQuad uploads the full-screen quad geometry.
func (c *Canvas) initQuad() {
	positions := []interface{}{
		-1.0, -1.0, 1.0, -1.0, -1.0, 1.0,
		-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
	}

	c.quad = c.gl.Call("createBuffer")
	c.gl.Call("bindBuffer", c.gl.Get("ARRAY_BUFFER"), c.quad)
	c.gl.Call("bufferData", c.gl.Get("ARRAY_BUFFER"),
		js.Global().Get("Float32Array").New(js.ValueOf(positions)),
		c.gl.Get("STATIC_DRAW"),
	)

	posLoc := c.gl.Call("getAttribLocation", c.program, "a_position")
	c.gl.Call("enableVertexAttribArray", posLoc)
	c.gl.Call("vertexAttribPointer", posLoc, 2, c.gl.Get("FLOAT"), false, 0, 0)
}

// initTexture allocates the texture the webcam frame is uploaded into.
// The clamped wrapping is what the border fragments rely on when the
// Sobel taps sample outside the frame.
func (c *Canvas) initTexture() {
	c.texture = c.gl.Call("createTexture")
	c.gl.Call("bindTexture", c.gl.Get("TEXTURE_2D"), c.texture)
	c.gl.Call("texParameteri", c.gl.Get("TEXTURE_2D"), c.gl.Get("TEXTURE_WRAP_S"), c.gl.Get("CLAMP_TO_EDGE"))
	c.gl.Call("texParameteri", c.gl.Get("TEXTURE_2D"), c.gl.Get("TEXTURE_WRAP_T"), c.gl.Get("CLAMP_TO_EDGE"))
	c.gl.Call("texParameteri", c.gl.Get("TEXTURE_2D"), c.gl.Get("TEXTURE_MIN_FILTER"), c.gl.Get("LINEAR"))
	c.gl.Call("texParameteri", c.gl.Get("TEXTURE_2D"), c.gl.Get("TEXTURE_MAG_FILTER"), c.gl.Get("LINEAR"))
}

// tick uploads the current webcam frame into the texture and redraws
// the quad. Failures are recovered at the tick boundary so a transient
// upload error cannot terminate the loop.
func (c *Canvas) tick() {
	if !c.frameReady() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.Log("dropping frame:", fmt.Sprint(r))
		}
	}()

	c.syncDimensions()

	c.gl.Call("bindTexture", c.gl.Get("TEXTURE_2D"), c.texture)
	c.gl.Call("texImage2D", c.gl.Get("TEXTURE_2D"), 0,
		c.gl.Get("RGBA"), c.gl.Get("RGBA"), c.gl.Get("UNSIGNED_BYTE"), c.video)

	c.gl.Call("uniform1i", c.frameLoc, 0)
	c.gl.Call("uniform2f", c.texelLoc, 1.0/float64(c.videoWidth), 1.0/float64(c.videoHeight))

	c.gl.Call("drawArrays", c.gl.Get("TRIANGLES"), 0, 6)
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

// syncDimensions recomputes the viewport and the letterbox scale
// whenever the video or the surface dimensions change.
func (c *Canvas) syncDimensions() {
	videoWidth := c.video.Get("videoWidth").Int()
	videoHeight := c.video.Get("videoHeight").Int()
	surfaceWidth := c.window.Get("innerWidth").Int()
	surfaceHeight := c.window.Get("innerHeight").Int()

	if videoWidth == c.videoWidth && videoHeight == c.videoHeight &&
		surfaceWidth == c.windowSize.width && surfaceHeight == c.windowSize.height {
		return
	}
	c.videoWidth, c.videoHeight = videoWidth, videoHeight
	c.windowSize.width, c.windowSize.height = surfaceWidth, surfaceHeight

	c.canvas.Set("width", surfaceWidth)
	c.canvas.Set("height", surfaceHeight)
	c.gl.Call("viewport", 0, 0, surfaceWidth, surfaceHeight)

	sx, sy := Letterbox(videoWidth, videoHeight, surfaceWidth, surfaceHeight)
	c.gl.Call("uniform2f", c.scaleLoc, sx, sy)
}

// Stop stops the rendering and releases the GPU side resources: the
// shader program, the texture, the geometry and finally the rendering
// context itself. Leaking these would compound across start/stop cycles.
func (c *Canvas) Stop() {
	c.loop.Stop()
	c.raf.Release()

	if c.recording {
		c.stopRecording()
	}

	c.gl.Call("deleteTexture", c.texture)
	c.gl.Call("deleteBuffer", c.quad)
	c.gl.Call("deleteShader", c.vertShader)
	c.gl.Call("deleteShader", c.fragShader)
	c.gl.Call("deleteProgram", c.program)

	ext := c.gl.Call("getExtension", "WEBGL_lose_context")
	if !ext.IsNull() {
		ext.Call("loseContext")
	}

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
	videoSize.Set("width", idealWidth)
	videoSize.Set("height", idealHeight)
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

// startRecording captures the canvas as a continuous WebM stream.
func (c *Canvas) startRecording() {
	stream := c.canvas.Call("captureStream", 30)

	opts := js.Global().Get("Object").New()
	opts.Set("mimeType", "video/webm")

	c.chunks = js.Global().Get("Array").New()
	c.recorder = js.Global().Get("MediaRecorder").New(stream, opts)

	onData := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		data := args[0].Get("data")
		if data.Get("size").Int() > 0 {
			c.chunks.Call("push", data)
		}
		return nil
	})
	onStop := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		c.saveRecording()
		return nil
	})
	c.recorder.Set("ondataavailable", onData)
	c.recorder.Set("onstop", onStop)

	c.recorder.Call("start", 1000)
	c.recording = true
	c.Log("recording started")
}

// stopRecording finalizes the recorded stream.
func (c *Canvas) stopRecording() {
	c.recorder.Call("stop")
	c.recording = false
	c.Log("recording stopped")
}

// saveRecording bundles the recorded chunks into a Blob and triggers a
// download through a synthesized anchor element.
func (c *Canvas) saveRecording() {
	opts := js.Global().Get("Object").New()
	opts.Set("type", "video/webm")
	blob := js.Global().Get("Blob").New(c.chunks, opts)

	url := js.Global().Get("URL").Call("createObjectURL", blob)
	anchor := c.doc.Call("createElement", "a")
	anchor.Set("href", url)
	anchor.Set("download", "toonify.webm")
	c.body.Call("appendChild", anchor)
	anchor.Call("click")
	c.body.Call("removeChild", anchor)
	js.Global().Get("URL").Call("revokeObjectURL", url)
}

// detectKeyPress listen for the keypress event and retrieves the key code.
func (c *Canvas) detectKeyPress() {
	keyEventHandler := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		keyCode := args[0].Get("key")
		switch keyCode.String() {
		case "r":
			if c.recording {
				c.stopRecording()
			} else {
				c.startRecording()
			}
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
