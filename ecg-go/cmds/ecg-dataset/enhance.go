package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/heartscribe/heartscribe/ecg-go/augment"
	"github.com/heartscribe/heartscribe/ecg-go/dataset"
	"github.com/heartscribe/heartscribe/ecg-golib/cmdline"
	"github.com/heartscribe/heartscribe/ecg-golib/errors"
	"github.com/heartscribe/heartscribe/ecg-golib/serialization"
)

var enhanceCmd = cmdline.Command{
	Name:     "enhance",
	Synopsis: "derive coordinate-precision samples from a dataset",
	Args: &enhanceArgs{
		Factor: 2.0,
		Seed:   42,
	},
}

type enhanceArgs struct {
	Input  string  `arg:"positional,required" help:"dataset JSON file to enhance"`
	Output string  `arg:"positional,required" help:"where to write the enhanced dataset"`
	Factor float64 `help:"target size as a multiple of the input"`
	Seed   int64   `help:"sampling seed"`
}

func (args *enhanceArgs) Validate() error {
	if args.Factor < 1.0 {
		return errors.Errorf("factor must be at least 1.0, got %g", args.Factor)
	}
	return nil
}

func (args *enhanceArgs) Handle() error {
	start := time.Now()

	in, err := dataset.Read(args.Input)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(args.Seed))
	out := augment.Enhance(in, args.Factor, rng)

	if err := serialization.Encode(args.Output, out); err != nil {
		return errors.Wrapf(err, "writing %s", args.Output)
	}

	fmt.Printf("original samples: %s\n", humanize.Comma(int64(len(in))))
	fmt.Printf("enhanced samples: %s\n", humanize.Comma(int64(len(out))))
	fmt.Printf("effective factor: %.1fx\n", float64(len(out))/float64(len(in)))
	fmt.Printf("done in %s\n", time.Since(start))
	return nil
}
