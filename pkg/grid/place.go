package grid

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// DecodeRGB decodes an encoded image and drops its alpha channel, keeping
// the stored color of every pixel.
func DecodeRGB(data []byte) (img *image.NRGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("decode panicked: %v", r)
		}
	}()

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	rgb := imaging.Clone(src)
	for i := 3; i < len(rgb.Pix); i += 4 {
		rgb.Pix[i] = 0xff
	}
	return rgb, nil
}

// place decodes data, stretches it to exactly fill dst and copies it onto
// canvas. The canvas is untouched on error.
func place(canvas *image.RGBA, data []byte, dst image.Rectangle) error {
	rgb, err := DecodeRGB(data)
	if err != nil {
		return err
	}
	if rgb.Bounds().Empty() {
		return fmt.Errorf("image has no pixels")
	}
	resized := imaging.Resize(rgb, dst.Dx(), dst.Dy(), imaging.CatmullRom)
	draw.Draw(canvas, dst, resized, resized.Bounds().Min, draw.Src)
	return nil
}
