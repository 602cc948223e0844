package stylize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidFrame returns a packed RGBA buffer filled with a single color.
func solidFrame(width, height int, r, g, b uint8) []uint8 {
	pix := make([]uint8, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, 255
	}
	return pix
}

func TestApply_SolidColorHasNoEdges(t *testing.T) {
	s := NewStylizer(DefaultParams)
	pix := s.Apply(solidFrame(16, 16, 137, 54, 201), 16, 16)

	step := 255.0 / float64(DefaultParams.Levels-1)
	expected := []uint8{
		quantize(137, step),
		quantize(54, step),
		quantize(201, step),
	}

	for i := 0; i < len(pix); i += 4 {
		// A uniform luminance field has a zero gradient everywhere, so
		// every pixel must keep its posterized color.
		require.Equal(t, expected[0], pix[i])
		require.Equal(t, expected[1], pix[i+1])
		require.Equal(t, expected[2], pix[i+2])
		require.Equal(t, uint8(255), pix[i+3])
	}
}

func TestApply_EndToEndQuantization(t *testing.T) {
	// 4x4 frame of (200,200,200,255) with 7 levels: every channel must
	// land on round(200/42.5)*42.5 = 212.5, stored as 212.
	s := NewStylizer(DefaultParams)
	pix := s.Apply(solidFrame(4, 4, 200, 200, 200), 4, 4)

	for i := 0; i < len(pix); i += 4 {
		assert.Equal(t, uint8(212), pix[i])
		assert.Equal(t, uint8(212), pix[i+1])
		assert.Equal(t, uint8(212), pix[i+2])
	}
}

func TestApply_VerticalBoundaryIsTraced(t *testing.T) {
	const dim = 8
	pix := make([]uint8, dim*dim*4)
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			idx := (y*dim + x) * 4
			var v uint8
			if x >= dim/2 {
				v = 255
			}
			pix[idx], pix[idx+1], pix[idx+2], pix[idx+3] = v, v, v, 255
		}
	}

	s := NewStylizer(DefaultParams)
	pix = s.Apply(pix, dim, dim)

	isBlack := func(x, y int) bool {
		idx := (y*dim + x) * 4
		return pix[idx] == 0 && pix[idx+1] == 0 && pix[idx+2] == 0
	}

	// The columns on both sides of the black/white boundary carry the
	// full Sobel response and must be outlined on the interior rows.
	for y := 1; y < dim-1; y++ {
		assert.True(t, isBlack(dim/2-1, y), "boundary column not traced at row %d", y)
		assert.True(t, isBlack(dim/2, y), "boundary column not traced at row %d", y)
	}

	// Border rows keep their posterized color regardless of content.
	// The white half would read 255 after posterization.
	for _, y := range []int{0, dim - 1} {
		idx := (y*dim + dim - 2) * 4
		assert.Equal(t, uint8(255), pix[idx], "border row classified as edge")
	}
	// Same for the border columns.
	for y := 1; y < dim-1; y++ {
		idx := (y*dim + dim - 1) * 4
		assert.Equal(t, uint8(255), pix[idx], "border column classified as edge")
	}
}

func TestPosterize_Idempotent(t *testing.T) {
	s := NewStylizer(DefaultParams)

	pix := make([]uint8, 64*4)
	for i := range pix {
		pix[i] = uint8(i * 7 % 256)
	}

	s.posterize(pix)
	once := make([]uint8, len(pix))
	copy(once, pix)

	// Quantized values are fixed points of the rounding operation.
	s.posterize(pix)
	assert.Equal(t, once, pix)
}

func TestPosterize_LandsOnQuantizedBins(t *testing.T) {
	s := NewStylizer(DefaultParams)
	step := 255.0 / float64(DefaultParams.Levels-1)

	bins := map[uint8]bool{}
	for i := 0; i < DefaultParams.Levels; i++ {
		bins[uint8(clamp(float64(i)*step, 0, 255))] = true
	}

	pix := make([]uint8, 256*4)
	for i := 0; i < 256; i++ {
		pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = uint8(i), uint8(i), uint8(i), 255
	}
	s.posterize(pix)

	for i := 0; i < len(pix); i += 4 {
		assert.True(t, bins[pix[i]], "value %d is not on a quantization bin", pix[i])
	}
}

func TestApply_FailsSoftOnShortBuffer(t *testing.T) {
	s := NewStylizer(DefaultParams)

	short := []uint8{1, 2, 3, 4, 5, 6, 7, 8}
	out := s.Apply(short, 16, 16)

	// A buffer that does not match the dimensions is handed back
	// untouched instead of panicking mid-loop.
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6, 7, 8}, out)
}

func TestProcSize(t *testing.T) {
	p := DefaultParams

	w, h := p.ProcSize(1280, 720)
	assert.Equal(t, 640, w)
	assert.Equal(t, 360, h)

	// A device switch to a different native resolution must be
	// reflected by the derived processing resolution.
	w, h = p.ProcSize(640, 480)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)

	// Never collapses to a zero dimension.
	w, h = p.ProcSize(1, 1)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}
