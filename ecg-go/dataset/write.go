package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/heartscribe/heartscribe/ecg-golib/serialization"

	"github.com/heartscribe/heartscribe/ecg-go/segment"
)

// OutputPaths returns the dataset filenames for a granularity. Pass
// compress=true for gzipped output.
func OutputPaths(outDir string, g segment.Granularity, compress bool) (woMeta, withMeta string) {
	suffix := fmt.Sprintf("_%s_patch_aligned.json", g.Name)
	if compress {
		suffix += ".gz"
	}
	woMeta = filepath.Join(outDir, "ludb_conversations_wo_meta"+suffix)
	withMeta = filepath.Join(outDir, "ludb_conversations_with_meta"+suffix)
	return
}

// Write persists both dataset variants.
func Write(res *Result, outDir string, g segment.Granularity, compress bool) (woMeta, withMeta string, err error) {
	woMeta, withMeta = OutputPaths(outDir, g, compress)
	if err = serialization.Encode(woMeta, res.WithoutMeta); err != nil {
		return
	}
	err = serialization.Encode(withMeta, res.WithMeta)
	return
}

// Read loads a dataset file written by Write (or any JSON array of examples).
func Read(path string) ([]Example, error) {
	var out []Example
	err := serialization.Decode(path, func(examples *[]Example) {
		out = *examples
	})
	return out, err
}
