package segment

import (
	"fmt"

	"github.com/heartscribe/heartscribe/ecg-golib/errors"
)

// PatchSize is the vision transformer patch edge length. Image dimensions
// must be multiples of it so that no partial patch is cropped at the border.
const PatchSize = 28

// Granularity bundles the image dimensions and the samples-per-pixel ratio
// used for one dataset generation run. Width and Height are chosen as
// multiples of PatchSize.
type Granularity struct {
	Name            string
	Width           int
	Height          int
	SamplesPerPixel int
}

// Named granularity presets. All dimensions are patch aligned.
var (
	UltraFine = Granularity{Name: "ultra_fine", Width: PatchSize * 36, Height: PatchSize * 8, SamplesPerPixel: 1}
	Fine      = Granularity{Name: "fine", Width: PatchSize * 18, Height: PatchSize * 8, SamplesPerPixel: 2}
	Medium    = Granularity{Name: "medium", Width: PatchSize * 10, Height: PatchSize * 8, SamplesPerPixel: 4}
	Coarse    = Granularity{Name: "coarse", Width: PatchSize * 9, Height: PatchSize * 8, SamplesPerPixel: 5}
)

var presets = map[string]Granularity{
	UltraFine.Name: UltraFine,
	Fine.Name:      Fine,
	Medium.Name:    Medium,
	Coarse.Name:    Coarse,
}

// ByName resolves a preset granularity.
func ByName(name string) (Granularity, error) {
	g, ok := presets[name]
	if !ok {
		return Granularity{}, errors.Errorf("unknown granularity %q", name)
	}
	return g, nil
}

// Validate checks that the granularity is usable for generation.
func (g Granularity) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.Errorf("granularity %s: dimensions must be positive, got %dx%d", g.Name, g.Width, g.Height)
	}
	if g.SamplesPerPixel <= 0 {
		return errors.Errorf("granularity %s: samples per pixel must be positive, got %d", g.Name, g.SamplesPerPixel)
	}
	return nil
}

// MsPerPixel returns the temporal width of one pixel column at the given
// sampling rate in Hz.
func (g Granularity) MsPerPixel(fs int) float64 {
	return (1000.0 / float64(fs)) * float64(g.SamplesPerPixel)
}

// PatchGrid returns the patch grid dimensions as "WxH".
func (g Granularity) PatchGrid() string {
	return fmt.Sprintf("%dx%d", g.Width/PatchSize, g.Height/PatchSize)
}

// TotalPatches returns the number of patches covering the image.
func (g Granularity) TotalPatches() int {
	return (g.Width / PatchSize) * (g.Height / PatchSize)
}

// PatchAligned reports whether both dimensions are exact patch multiples.
func (g Granularity) PatchAligned() bool {
	return g.Width%PatchSize == 0 && g.Height%PatchSize == 0
}

// PixelIndex maps a sample index relative to the window start into the pixel
// domain. It floor-divides by SamplesPerPixel, matching the block boundaries
// used by Downsample, and clamps to [0, Width-1].
func (g Granularity) PixelIndex(relSample int) int {
	p := relSample / g.SamplesPerPixel
	if p < 0 {
		return 0
	}
	if p > g.Width-1 {
		return g.Width - 1
	}
	return p
}
