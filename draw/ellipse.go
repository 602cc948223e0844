// Package draw provides the elliptical alpha mask used to clip the
// cartoon effect to the detected face area.
package draw

import (
	"image"
	"image/color"
)

// Ellipse is an image.Image alpha mask: fully opaque inside the
// ellipse, fully transparent outside of it.
type Ellipse struct {
	Cx int // center x
	Cy int // center y
	Rx int // semi-major axis x
	Ry int // semi-minor axis y
}

func (e *Ellipse) ColorModel() color.Model {
	return color.AlphaModel
}

func (e *Ellipse) Bounds() image.Rectangle {
	return image.Rect(e.Cx-e.Rx, e.Cy-e.Ry, e.Cx+e.Rx, e.Cy+e.Ry)
}

// At evaluates the ellipse equation on the sampled point.
func (e *Ellipse) At(x, y int) color.Color {
	p1 := float64((x-e.Cx)*(x-e.Cx)) / float64(e.Rx*e.Rx)
	p2 := float64((y-e.Cy)*(y-e.Cy)) / float64(e.Ry*e.Ry)

	if p1+p2 <= 1 {
		return color.Alpha{A: 255}
	}
	return color.Alpha{A: 0}
}
