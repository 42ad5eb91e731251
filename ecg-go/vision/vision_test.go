package vision

import (
	"image"
	"image/png"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))))
}

func TestImageInfo_PreservesDims(t *testing.T) {
	dir, err := ioutil.TempDir("", "vision-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "ecg.png")
	writePNG(t, path, 504, 224)

	info, err := ImageInfo(path)
	require.NoError(t, err)
	assert.Equal(t, 504, info.Width)
	assert.Equal(t, 224, info.Height)
	assert.Equal(t, info.Width, info.ResizedWidth)
	assert.Equal(t, info.Height, info.ResizedHeight)
	assert.True(t, info.PatchAligned)
}

func TestImageInfo_UnalignedFlagged(t *testing.T) {
	dir, err := ioutil.TempDir("", "vision-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "odd.png")
	writePNG(t, path, 500, 224)

	info, err := ImageInfo(path)
	require.NoError(t, err)
	assert.False(t, info.PatchAligned)
}

func TestImageInfo_Missing(t *testing.T) {
	_, err := ImageInfo("/nonexistent/ecg.png")
	assert.Error(t, err)
}

func TestEstimateContext_KnownWidths(t *testing.T) {
	cases := []struct {
		width   int
		gran    string
		mpp     float64
		patches int
	}{
		{504, "fine", 4.0, 144},
		{1008, "ultra_fine", 2.0, 288},
		{280, "medium", 7.1, 80},
		{252, "coarse", 7.9, 72},
	}
	for _, c := range cases {
		ctx := EstimateContext(c.width)
		assert.Equal(t, c.gran, ctx.Granularity, "width %d", c.width)
		assert.Equal(t, c.mpp, ctx.MsPerPixel, "width %d", c.width)
		assert.Equal(t, c.patches, ctx.TotalPatches, "width %d", c.width)
	}
}

func TestEstimateContext_Fallback(t *testing.T) {
	ctx := EstimateContext(1000)
	assert.Equal(t, "custom", ctx.Granularity)
	assert.Equal(t, 2.0, ctx.MsPerPixel)
	assert.Equal(t, 0, ctx.TotalPatches)
}

func TestResizeDiagnosis_Upscale(t *testing.T) {
	// 504x224 sits below the default minimum budget, so the processor
	// would inflate it and shift every trained coordinate
	d := ResizeDiagnosis(504, 224, 0, 0)
	assert.True(t, d.Resized)
	assert.True(t, d.ScaleFactor > 1)
	assert.InDelta(t, math.Sqrt(float64(DefaultMinPixels)/float64(504*224)), d.ScaleFactor, 1e-9)
	assert.Equal(t, int(float64(504)*d.ScaleFactor), d.NewWidth)
	assert.True(t, d.PatchAligned)
}

func TestResizeDiagnosis_WithinBudget(t *testing.T) {
	d := ResizeDiagnosis(640, 640, 0, 0)
	assert.False(t, d.Resized)
	assert.Equal(t, 1.0, d.ScaleFactor)
	assert.Equal(t, 640, d.NewWidth)
	assert.Equal(t, 640, d.NewHeight)
}

func TestResizeDiagnosis_Downscale(t *testing.T) {
	d := ResizeDiagnosis(1280, 1280, 0, 0)
	assert.True(t, d.Resized)
	assert.True(t, d.ScaleFactor < 1)
}

func TestResizeDiagnosis_CustomBudget(t *testing.T) {
	d := ResizeDiagnosis(504, 224, 100, 200)
	assert.Equal(t, 100, d.MinPixels)
	assert.Equal(t, 200, d.MaxPixels)
	assert.True(t, d.ScaleFactor < 1)
}
