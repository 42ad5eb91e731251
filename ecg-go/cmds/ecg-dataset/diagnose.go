package main

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/heartscribe/heartscribe/ecg-go/vision"
	"github.com/heartscribe/heartscribe/ecg-golib/cmdline"
)

var diagnoseCmd = cmdline.Command{
	Name:     "diagnose",
	Synopsis: "report how the vision processor would rescale an ECG image",
	Args:     &diagnoseArgs{},
}

type diagnoseArgs struct {
	Image     string `arg:"positional,required" help:"path to an ECG image"`
	MinPixels int    `arg:"--min-pixels" help:"processor minimum pixel budget, 0 for default"`
	MaxPixels int    `arg:"--max-pixels" help:"processor maximum pixel budget, 0 for default"`
}

func (args *diagnoseArgs) Handle() error {
	info, err := vision.ImageInfo(args.Image)
	if err != nil {
		return err
	}

	d := vision.ResizeDiagnosis(info.Width, info.Height, args.MinPixels, args.MaxPixels)
	ctx := vision.EstimateContext(info.Width)

	fmt.Printf("image: %s\n", args.Image)
	fmt.Printf("dimensions: %dx%d (%s pixels)\n", d.Width, d.Height, humanize.Comma(int64(d.Pixels)))
	fmt.Printf("granularity: %s (%.1fms per pixel)\n", ctx.Granularity, ctx.MsPerPixel)
	if d.PatchAligned {
		fmt.Println("patch alignment: ok")
	} else {
		fmt.Println("patch alignment: MISALIGNED, coordinates will not land on patch boundaries")
	}

	fmt.Printf("pixel budget: %s to %s\n",
		humanize.Comma(int64(d.MinPixels)), humanize.Comma(int64(d.MaxPixels)))
	if !d.Resized {
		fmt.Println("resize: none, coordinates are safe")
		return nil
	}

	direction := "upscale"
	if d.ScaleFactor < 1 {
		direction = "downscale"
	}
	fmt.Printf("resize: %s by %.3f to about %dx%d\n", direction, d.ScaleFactor, d.NewWidth, d.NewHeight)
	fmt.Println("WARNING: trained coordinates will shift by this factor.")
	fmt.Println("Pin resized_width/resized_height to the original dimensions, or scale")
	fmt.Println("every coordinate by the factor above.")
	return nil
}
