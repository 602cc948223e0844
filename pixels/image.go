// Package pixels holds the helpers shared by the demos for moving the
// frame data between the packed RGBA representation of the canvas and
// the image types of the standard library.
package pixels

import (
	"image"
	"image/color"
	"math"
)

// ImgToPix converts an image to packed RGBA pixel data.
func ImgToPix(img image.Image) []uint8 {
	bounds := img.Bounds()
	pixels := make([]uint8, 0, bounds.Dx()*bounds.Dy()*4)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pixels = append(pixels, uint8(r>>8), uint8(g>>8), uint8(b>>8), 255)
		}
	}
	return pixels
}

// PixToImage converts packed RGBA pixel data to an image.
func PixToImage(pixels []uint8, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	col := color.NRGBA{}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := (y*width + x) * 4
			col.R = pixels[idx]
			col.G = pixels[idx+1]
			col.B = pixels[idx+2]
			col.A = pixels[idx+3]

			img.SetNRGBA(x, y, col)
		}
	}
	return img
}

// RgbaToGrayscale converts the packed RGBA pixel data to grayscale mode,
// packing one luminance byte per pixel at the head of the buffer. This
// is the input layout the face detector expects.
func RgbaToGrayscale(data []uint8, rows, cols int) []uint8 {
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			// gray = 0.2*red + 0.7*green + 0.1*blue
			data[r*cols+c] = uint8(math.Round(
				0.2126*float64(data[r*4*cols+4*c+0]) +
					0.7152*float64(data[r*4*cols+4*c+1]) +
					0.0722*float64(data[r*4*cols+4*c+2])))
		}
	}
	return data
}
