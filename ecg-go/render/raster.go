// Package render rasterizes pixel-mapped signals as line images sized for a
// vision transformer's patch grid.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart"
	xdraw "golang.org/x/image/draw"

	"github.com/heartscribe/heartscribe/ecg-golib/errors"

	"github.com/heartscribe/heartscribe/ecg-go/segment"
)

// Rasterize renders the pixel signal as a black line on a white background at
// exactly (g.Width, g.Height), zero margin, so that horizontal pixel i
// corresponds to pixelSignal[i].
//
// The renderer's output dimensions are verified after the fact; a mismatch
// triggers a single corrective resize, which is logged. A residual mismatch
// after that is a data-quality warning, not an error. The patch-grid check is
// logged either way.
func Rasterize(pixelSignal []float64, g segment.Granularity) ([]byte, error) {
	if len(pixelSignal) != g.Width {
		return nil, errors.Errorf("pixel signal has %d values, want %d", len(pixelSignal), g.Width)
	}

	xs := make([]float64, len(pixelSignal))
	for i := range xs {
		xs[i] = float64(i)
	}

	lo, hi := valueRange(pixelSignal)

	graph := chart.Chart{
		Width:  g.Width,
		Height: g.Height,
		Background: chart.Style{
			Padding:   chart.Box{IsSet: true},
			FillColor: chart.ColorWhite,
		},
		Canvas: chart.Style{
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(g.Width - 1)},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: pixelSignal,
				Style: chart.Style{
					Show:        true,
					StrokeColor: chart.ColorBlack,
					StrokeWidth: 1.0,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrapf(err, "rendering %dx%d chart", g.Width, g.Height)
	}

	out, err := verifyDimensions(buf.Bytes(), g)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// verifyDimensions decodes the PNG, applies at most one corrective resize to
// the target dimensions, and logs the patch-alignment check.
func verifyDimensions(data []byte, g segment.Granularity) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding rendered image")
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w != g.Width || h != g.Height {
		log.Printf("render: correcting image size %dx%d -> %dx%d", w, h, g.Width, g.Height)
		img = rescale(img, g.Width, g.Height)
		b = img.Bounds()
		w, h = b.Dx(), b.Dy()

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, errors.Wrapf(err, "re-encoding corrected image")
		}
		data = buf.Bytes()
	}

	if w != g.Width || h != g.Height {
		// still off after the corrective pass: emit anyway
		log.Printf("render: warning: image is %dx%d after correction, want %dx%d", w, h, g.Width, g.Height)
	}

	wRem, hRem := w%segment.PatchSize, h%segment.PatchSize
	if wRem == 0 && hRem == 0 {
		log.Printf("render: patch aligned at %dx%d (%dx%d patches)", w, h, w/segment.PatchSize, h/segment.PatchSize)
	} else {
		log.Printf("render: patch alignment off by %dx%d pixels at %dx%d", wRem, hRem, w, h)
	}

	return data, nil
}

func rescale(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

func valueRange(vals []float64) (lo, hi float64) {
	lo, hi = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	// pad the range so the trace never touches the border; a flat signal
	// still needs a non-degenerate range for the renderer
	span := hi - lo
	if span == 0 {
		return lo - 1, hi + 1
	}
	return lo - 0.1*span, hi + 0.1*span
}

// ImageName returns the canonical image filename for one example.
func ImageName(record, lead string, window int) string {
	return fmt.Sprintf("%s_%s_%d.png", record, lead, window)
}

// SaveImage writes the PNG bytes under dir with the canonical name and
// returns the filename.
func SaveImage(dir, record, lead string, window int, data []byte) (string, error) {
	name := ImageName(record, lead, window)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "creating image dir %s", dir)
	}
	if err := ioutil.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", errors.Wrapf(err, "writing image %s", name)
	}
	return name, nil
}
