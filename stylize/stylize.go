// Package stylize implements the cartoon effect applied over the webcam
// frames: the color palette is reduced to a small number of quantization
// levels and the strong luminance gradients are redrawn as black outlines.
package stylize

import "math"

// Params holds the stylization constants used for one run.
type Params struct {
	// Levels is the number of quantization levels per color channel.
	Levels int
	// EdgeThreshold is the Sobel gradient magnitude above which a pixel
	// is redrawn as a black outline.
	EdgeThreshold float64
	// Scale is the downscale factor applied to the native frame size to
	// obtain the processing resolution.
	Scale float64
}

// DefaultParams are the constants the demos are tuned with.
var DefaultParams = Params{
	Levels:        7,
	EdgeThreshold: 80,
	Scale:         0.5,
}

// ProcSize derives the processing resolution from the native frame size.
// It needs to be recalled whenever the native resolution changes,
// otherwise the processing buffers would be accessed with stale dimensions.
func (p Params) ProcSize(width, height int) (int, int) {
	dx := max(1, int(float64(width)*p.Scale))
	dy := max(1, int(float64(height)*p.Scale))

	return dx, dy
}

// Stylizer applies the cartoon effect over a packed RGBA pixel buffer.
// The luminance scratch buffer is reused across the frames, which is safe
// as long as a single frame is processed at a time.
type Stylizer struct {
	params Params
	lum    []float64
}

// NewStylizer creates a new Stylizer with the provided parameters.
func NewStylizer(params Params) *Stylizer {
	return &Stylizer{params: params}
}

// Apply transforms the packed RGBA buffer in place: each pixel is either
// posterized or, when it sits on a strong luminance gradient, replaced
// with pure black. The 1 pixel wide image border is never classified as
// an edge. A buffer which does not match the provided dimensions is
// returned untouched, since a failing pixel access would otherwise
// terminate the render loop.
func (s *Stylizer) Apply(pix []uint8, width, height int) []uint8 {
	if len(pix) != width*height*4 {
		return pix
	}

	// Capture the luminance of the original colors before the
	// posterization pass flattens them out.
	if len(s.lum) != width*height {
		s.lum = make([]float64, width*height)
	}
	for i, j := 0, 0; i < len(pix); i, j = i+4, j+1 {
		s.lum[j] = luminance(pix[i], pix[i+1], pix[i+2])
	}

	s.posterize(pix)
	s.traceEdges(pix, width, height)

	return pix
}

// posterize quantizes each color channel to the closest of the discrete
// levels. The alpha channel is left untouched.
func (s *Stylizer) posterize(pix []uint8) {
	step := 255.0 / float64(s.params.Levels-1)

	for i := 0; i < len(pix); i += 4 {
		pix[i] = quantize(pix[i], step)
		pix[i+1] = quantize(pix[i+1], step)
		pix[i+2] = quantize(pix[i+2], step)
	}
}

// traceEdges runs the 3x3 Sobel operator over the captured luminance and
// blacks out the interior pixels where the gradient magnitude exceeds
// the threshold.
func (s *Stylizer) traceEdges(pix []uint8, width, height int) {
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			tl := s.lum[(y-1)*width+x-1]
			tc := s.lum[(y-1)*width+x]
			tr := s.lum[(y-1)*width+x+1]
			ml := s.lum[y*width+x-1]
			mr := s.lum[y*width+x+1]
			bl := s.lum[(y+1)*width+x-1]
			bc := s.lum[(y+1)*width+x]
			br := s.lum[(y+1)*width+x+1]

			gx := -tl - 2*ml - bl + tr + 2*mr + br
			gy := -tl - 2*tc - tr + bl + 2*bc + br

			if math.Sqrt(gx*gx+gy*gy) > s.params.EdgeThreshold {
				idx := (y*width + x) * 4
				pix[idx], pix[idx+1], pix[idx+2] = 0, 0, 0
			}
		}
	}
}

// quantize snaps a channel value to the closest quantization level.
func quantize(v uint8, step float64) uint8 {
	return uint8(clamp(math.Round(float64(v)/step)*step, 0, 255))
}

// luminance converts a color to its perceived brightness.
func luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}
