// Package dataset turns signal-database records into training examples:
// rasterized window images paired with conversation annotations.
package dataset

import (
	"fmt"
	"strconv"

	"github.com/heartscribe/heartscribe/ecg-go/prompt"
	"github.com/heartscribe/heartscribe/ecg-go/segment"
)

// Metadata describes the pixel geometry an example was generated with.
// Inference must preserve it for predicted coordinates to stay comparable.
type Metadata struct {
	Granularity     string  `json:"granularity"`
	MsPerPixel      float64 `json:"ms_per_pixel"`
	SamplesPerPixel int     `json:"samples_per_pixel"`
	ImageWidth      int     `json:"image_width"`
	ImageHeight     int     `json:"image_height"`
	PatchGrid       string  `json:"patch_grid"`
	TotalPatches    int     `json:"total_patches"`
	PatchAligned    bool    `json:"patch_aligned"`
}

// NewMetadata derives example metadata from a granularity at fs Hz.
func NewMetadata(g segment.Granularity, fs int) Metadata {
	return Metadata{
		Granularity:     g.Name,
		MsPerPixel:      g.MsPerPixel(fs),
		SamplesPerPixel: g.SamplesPerPixel,
		ImageWidth:      g.Width,
		ImageHeight:     g.Height,
		PatchGrid:       g.PatchGrid(),
		TotalPatches:    g.TotalPatches(),
		PatchAligned:    g.PatchAligned(),
	}
}

// Example is one training example. Immutable once generated.
type Example struct {
	ID            string        `json:"id"`
	Image         string        `json:"image"`
	Conversations []prompt.Turn `json:"conversations"`
	Metadata      Metadata      `json:"metadata"`
}

// ExampleID builds the deterministic id for a (record, lead, window) triple.
// Numeric record names are zero-padded to three digits.
func ExampleID(record, lead string, window int, variant string) string {
	if n, err := strconv.Atoi(record); err == nil {
		record = fmt.Sprintf("%03d", n)
	}
	return fmt.Sprintf("%s_%s_%d_%s", record, lead, window, variant)
}
