package web

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/heartscribe/heartscribe/ecg-go/annot"
	"github.com/heartscribe/heartscribe/ecg-golib/errors"
)

// Band colors per wave kind, alpha-premultiplied at 40% opacity.
var bandColors = map[annot.Wave]color.RGBA{
	annot.WaveP:   premultiply(0xFF, 0x44, 0x44, 0.4),
	annot.WaveQRS: premultiply(0x00, 0xCC, 0x88, 0.4),
	annot.WaveT:   premultiply(0x33, 0x66, 0xFF, 0.4),
}

func premultiply(r, g, b uint8, alpha float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(r) * alpha),
		G: uint8(float64(g) * alpha),
		B: uint8(float64(b) * alpha),
		A: uint8(255 * alpha),
	}
}

// Overlay decodes an ECG image and composites a translucent band over each
// detected wave, spanning x1 to x3 and the middle 80% of the image height.
// Triplets of unknown kind are skipped. Returns the annotated image as PNG.
func Overlay(imgData []byte, triplets []annot.Triplet) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding overlay source")
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, src, bounds.Min, draw.Src)

	top := bounds.Min.Y + bounds.Dy()/10
	bottom := bounds.Max.Y - bounds.Dy()/10

	for _, t := range triplets {
		band, ok := bandColors[t.Kind]
		if !ok {
			continue
		}
		x1 := clampX(t.X1, bounds)
		x3 := clampX(t.X3, bounds)
		if x3 <= x1 {
			x3 = x1 + 1
		}
		rect := image.Rect(x1, top, x3, bottom)
		draw.Draw(canvas, rect, image.NewUniform(band), image.Point{}, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, errors.Wrapf(err, "encoding overlay")
	}
	return buf.Bytes(), nil
}

func clampX(x int, bounds image.Rectangle) int {
	if x < bounds.Min.X {
		return bounds.Min.X
	}
	if x > bounds.Max.X {
		return bounds.Max.X
	}
	return x
}
