package pixels

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPixToImage_Indexing(t *testing.T) {
	// 2x2 frame with a single red pixel at (1,0).
	pix := make([]uint8, 2*2*4)
	pix[4], pix[7] = 255, 255

	img := PixToImage(pix, 2, 2)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 1))
}

func TestRgbaToGrayscale(t *testing.T) {
	// A pure green pixel converts to its luminance weight.
	pix := []uint8{0, 200, 0, 255}
	gray := RgbaToGrayscale(pix, 1, 1)
	assert.Equal(t, uint8(143), gray[0])
}
