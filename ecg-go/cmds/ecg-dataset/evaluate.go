package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/heartscribe/heartscribe/ecg-go/annot"
	"github.com/heartscribe/heartscribe/ecg-go/dataset"
	"github.com/heartscribe/heartscribe/ecg-go/eval"
	"github.com/heartscribe/heartscribe/ecg-go/prompt"
	"github.com/heartscribe/heartscribe/ecg-go/vision"
	"github.com/heartscribe/heartscribe/ecg-golib/cmdline"
	"github.com/heartscribe/heartscribe/ecg-golib/errors"
	"github.com/heartscribe/heartscribe/ecg-golib/serialization"
)

var evaluateCmd = cmdline.Command{
	Name:     "evaluate",
	Synopsis: "score model predictions against dataset ground truth",
	Args:     &evaluateArgs{},
}

type evaluateArgs struct {
	Dataset     string `arg:"positional,required" help:"dataset JSON file with ground truth"`
	Predictions string `arg:"positional,required" help:"JSON array of {id, response} objects"`
	ImageDir    string `arg:"--image-dir" help:"verify image dimensions against example metadata"`
	Verbose     bool   `arg:"-v" help:"print a line per sample"`
}

// Prediction is one model response keyed to a dataset example.
type Prediction struct {
	ID       string `json:"id"`
	Response string `json:"response"`
}

func (args *evaluateArgs) Handle() error {
	start := time.Now()

	examples, err := dataset.Read(args.Dataset)
	if err != nil {
		return err
	}
	truth := make(map[string][]annot.Triplet, len(examples))
	mpp := make(map[string]float64, len(examples))
	for _, ex := range examples {
		var triplets []annot.Triplet
		for _, turn := range ex.Conversations {
			if turn.From == prompt.FromGPT {
				triplets = append(triplets, prompt.ExtractPoints(turn.Value)...)
			}
		}
		truth[ex.ID] = triplets
		mpp[ex.ID] = ex.Metadata.MsPerPixel
	}

	if args.ImageDir != "" {
		checkImages(args.ImageDir, examples)
	}

	var preds []Prediction
	if err := serialization.Decode(args.Predictions, func(batch *[]Prediction) {
		preds = append(preds, *batch...)
	}); err != nil {
		return errors.Wrapf(err, "reading predictions %s", args.Predictions)
	}

	var scored, missing int
	var pixelSum float64
	var excellent, good int
	for _, p := range preds {
		gt, ok := truth[p.ID]
		if !ok {
			missing++
			continue
		}
		msPerPixel := mpp[p.ID]
		if msPerPixel <= 0 {
			msPerPixel = 4.0
		}

		rep := eval.Accuracy(prompt.ExtractPoints(p.Response), gt, msPerPixel)
		if len(rep.PixelErrors) == 0 {
			if args.Verbose {
				fmt.Printf("%s: no matched waves (%d predicted, %d truth)\n",
					p.ID, rep.TotalPredicted, rep.TotalGroundTruth)
			}
			continue
		}

		scored++
		pixelSum += rep.AvgPixelError
		b := eval.Bucket(rep.AvgPixelError)
		if b.Excellent {
			excellent++
		}
		if b.Good {
			good++
		}
		if args.Verbose {
			fmt.Printf("%s: %.1fpx avg error (%.1fms)\n", p.ID, rep.AvgPixelError, rep.AvgMsError)
		}
	}

	if scored == 0 {
		return errors.Errorf("no predictions could be scored (%d had no matching dataset id)", missing)
	}

	fmt.Printf("\nscored %d/%d predictions (%d unknown ids)\n", scored, len(preds), missing)
	fmt.Printf("average pixel error: %.2f\n", pixelSum/float64(scored))
	fmt.Printf("excellent (<2px): %.1f%%\n", 100*float64(excellent)/float64(scored))
	fmt.Printf("good (<5px): %.1f%%\n", 100*float64(good)/float64(scored))
	fmt.Printf("done in %s\n", time.Since(start))
	return nil
}

// checkImages warns about images whose on-disk dimensions no longer match the
// metadata their coordinates were generated for. Scored errors are meaningless
// for such samples.
func checkImages(dir string, examples []dataset.Example) {
	seen := make(map[string]bool)
	var mismatched int
	for _, ex := range examples {
		if ex.Image == "" || seen[ex.Image] {
			continue
		}
		seen[ex.Image] = true

		info, err := vision.ImageInfo(filepath.Join(dir, ex.Image))
		if err != nil {
			continue
		}
		if info.Width != ex.Metadata.ImageWidth || info.Height != ex.Metadata.ImageHeight {
			mismatched++
			fmt.Printf("warning: %s is %dx%d on disk but was generated at %dx%d\n",
				ex.Image, info.Width, info.Height, ex.Metadata.ImageWidth, ex.Metadata.ImageHeight)
		}
	}
	if mismatched > 0 {
		fmt.Printf("warning: %d image(s) changed size since generation; their scores are unreliable\n", mismatched)
	}
}
