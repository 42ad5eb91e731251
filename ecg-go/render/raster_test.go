package render

import (
	"bytes"
	"image/png"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartscribe/heartscribe/ecg-go/segment"
)

// synthetic ECG-ish trace: flat baseline with a sharp bump
func testSignal(width int) []float64 {
	out := make([]float64, width)
	for i := range out {
		z := (float64(i) - float64(width)/2) / 4.0
		out[i] = math.Exp(-0.5 * z * z)
	}
	return out
}

func TestRasterize_ExactDimensions(t *testing.T) {
	for _, g := range []segment.Granularity{segment.Fine, segment.Coarse} {
		data, err := Rasterize(testSignal(g.Width), g)
		require.NoError(t, err, g.Name)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err, g.Name)
		assert.Equal(t, g.Width, img.Bounds().Dx(), g.Name)
		assert.Equal(t, g.Height, img.Bounds().Dy(), g.Name)
		assert.Equal(t, 0, img.Bounds().Dx()%segment.PatchSize, g.Name)
		assert.Equal(t, 0, img.Bounds().Dy()%segment.PatchSize, g.Name)
	}
}

func TestRasterize_FlatSignal(t *testing.T) {
	g := segment.Coarse
	flat := make([]float64, g.Width)
	data, err := Rasterize(flat, g)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, g.Width, img.Bounds().Dx())
	assert.Equal(t, g.Height, img.Bounds().Dy())
}

func TestRasterize_WrongSignalLength(t *testing.T) {
	_, err := Rasterize(make([]float64, 10), segment.Fine)
	assert.Error(t, err)
}

func TestSaveImage(t *testing.T) {
	dir, err := ioutil.TempDir("", "render-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	name, err := SaveImage(filepath.Join(dir, "images"), "17", "avf", 3, []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "17_avf_3.png", name)

	data, err := ioutil.ReadFile(filepath.Join(dir, "images", name))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}
