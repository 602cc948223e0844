//go:build js && wasm

package main

import (
	"fmt"

	"github.com/esimov/toonify-wasm/toon"
)

func main() {
	c := toon.NewCanvas()
	webcam, err := c.StartWebcam()
	if err != nil {
		c.Alert("Webcam not detected!")
	} else {
		err := webcam.Render()
		if err != nil {
			c.Log(fmt.Sprint(err))
		}
	}
}
