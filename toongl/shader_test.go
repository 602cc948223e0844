package toongl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetterbox(t *testing.T) {
	// A surface wider than the video letterboxes left/right.
	sx, sy := Letterbox(1280, 720, 2560, 1080)
	assert.InDelta(t, (1280.0/720.0)/(2560.0/1080.0), sx, 1e-9)
	assert.Equal(t, 1.0, sy)

	// A surface taller than the video letterboxes top/bottom.
	sx, sy = Letterbox(1280, 720, 1080, 1920)
	assert.Equal(t, 1.0, sx)
	assert.InDelta(t, (1080.0/1920.0)/(1280.0/720.0), sy, 1e-9)

	// Matching aspect ratios need no correction.
	sx, sy = Letterbox(1280, 720, 1920, 1080)
	assert.InDelta(t, 1.0, sx, 1e-9)
	assert.InDelta(t, 1.0, sy, 1e-9)
}

func TestLetterbox_ShrinksSingleAxis(t *testing.T) {
	cases := [][4]int{
		{640, 480, 1280, 720},
		{1920, 1080, 480, 640},
		{720, 1280, 1280, 720},
	}

	for _, tc := range cases {
		sx, sy := Letterbox(tc[0], tc[1], tc[2], tc[3])
		assert.True(t, sx <= 1.0 && sy <= 1.0)
		assert.True(t, sx == 1.0 || sy == 1.0, "only one axis may be shrunk")
	}
}
