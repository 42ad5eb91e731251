// Package vision guards coordinate fidelity on the inference side. The
// image processor rescales inputs to fit its pixel budget, which silently
// shifts every pixel coordinate the model was trained on. These helpers pin
// image dimensions and predict what the processor would otherwise do.
package vision

import (
	"image"
	"math"
	"os"

	_ "image/png"

	"github.com/heartscribe/heartscribe/ecg-go/segment"
	"github.com/heartscribe/heartscribe/ecg-golib/errors"
)

// Default pixel budget of the vision processor.
const (
	DefaultMinPixels = 512 * segment.PatchSize * segment.PatchSize
	DefaultMaxPixels = 1280 * segment.PatchSize * segment.PatchSize
)

// Info describes an image as the processor will see it.
type Info struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// ResizedWidth/ResizedHeight pin the processed size to the original so
	// pixel coordinates stay valid. Always set to Width and Height.
	ResizedWidth  int `json:"resized_width"`
	ResizedHeight int `json:"resized_height"`

	PatchAligned bool `json:"patch_aligned"`
}

// ImageInfo decodes an image's dimensions and returns the preserved-dims
// request for it. Min/max pixel constraints are deliberately absent: pinning
// resized dims and dropping the budget is what keeps training coordinates
// meaningful at inference time.
func ImageInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, errors.Wrapf(err, "opening image %s", path)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, errors.Wrapf(err, "decoding image %s", path)
	}
	return Info{
		Path:          path,
		Width:         cfg.Width,
		Height:        cfg.Height,
		ResizedWidth:  cfg.Width,
		ResizedHeight: cfg.Height,
		PatchAligned:  cfg.Width%segment.PatchSize == 0 && cfg.Height%segment.PatchSize == 0,
	}, nil
}

// Context is the temporal interpretation of an image width.
type Context struct {
	Granularity  string  `json:"granularity"`
	MsPerPixel   float64 `json:"ms_per_pixel"`
	TotalPatches int     `json:"total_patches"`
}

// EstimateContext maps an image width to its temporal resolution. Known
// widths come from the generation presets; anything else is assumed to span
// the standard 2 second window.
func EstimateContext(width int) Context {
	switch width {
	case segment.Fine.Width:
		return Context{Granularity: "fine", MsPerPixel: 4.0, TotalPatches: 144}
	case segment.UltraFine.Width:
		return Context{Granularity: "ultra_fine", MsPerPixel: 2.0, TotalPatches: 288}
	case segment.Medium.Width:
		return Context{Granularity: "medium", MsPerPixel: 7.1, TotalPatches: 80}
	case segment.Coarse.Width:
		return Context{Granularity: "coarse", MsPerPixel: 7.9, TotalPatches: 72}
	}
	return Context{Granularity: "custom", MsPerPixel: 2000 / float64(width)}
}

// Diagnosis reports whether the processor pixel budget would rescale an
// image, and by how much.
type Diagnosis struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Pixels       int     `json:"pixels"`
	MinPixels    int     `json:"min_pixels"`
	MaxPixels    int     `json:"max_pixels"`
	ScaleFactor  float64 `json:"scale_factor"`
	NewWidth     int     `json:"new_width"`
	NewHeight    int     `json:"new_height"`
	Resized      bool    `json:"resized"`
	PatchAligned bool    `json:"patch_aligned"`
}

// ResizeDiagnosis predicts the processor's rescale of a w by h image under
// the given pixel budget. Zero budget values fall back to the defaults.
// Scaling is uniform: factor = sqrt(budget / pixels).
func ResizeDiagnosis(w, h, minPixels, maxPixels int) Diagnosis {
	if minPixels <= 0 {
		minPixels = DefaultMinPixels
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	pixels := w * h
	factor := 1.0
	if pixels < minPixels {
		factor = math.Sqrt(float64(minPixels) / float64(pixels))
	} else if pixels > maxPixels {
		factor = math.Sqrt(float64(maxPixels) / float64(pixels))
	}

	return Diagnosis{
		Width:        w,
		Height:       h,
		Pixels:       pixels,
		MinPixels:    minPixels,
		MaxPixels:    maxPixels,
		ScaleFactor:  factor,
		NewWidth:     int(float64(w) * factor),
		NewHeight:    int(float64(h) * factor),
		Resized:      factor != 1.0,
		PatchAligned: w%segment.PatchSize == 0 && h%segment.PatchSize == 0,
	}
}
