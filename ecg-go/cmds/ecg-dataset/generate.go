package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/heartscribe/heartscribe/ecg-go/dataset"
	"github.com/heartscribe/heartscribe/ecg-go/segment"
	"github.com/heartscribe/heartscribe/ecg-golib/cmdline"
)

var generateCmd = cmdline.Command{
	Name:     "generate",
	Synopsis: "build conversation datasets from a WFDB signal database",
	Args: &generateArgs{
		DataDir:     "./data",
		CSV:         "./data/ludb.csv",
		OutDir:      ".",
		ImageDir:    "./ecg_images",
		Granularity: "fine",
		Fs:          500,
		WindowSec:   2,
		Workers:     4,
		Seed:        42,
	},
}

type generateArgs struct {
	DataDir     string `arg:"--data-dir" help:"directory holding .hea/.dat/annotation files"`
	CSV         string `arg:"--csv" help:"patient metadata CSV"`
	OutDir      string `arg:"--out-dir" help:"directory for the dataset JSON files"`
	ImageDir    string `arg:"--image-dir" help:"directory for rendered ECG images"`
	Granularity string `help:"one of ultra_fine, fine, medium, coarse"`
	Fs          int    `help:"sampling rate in Hz"`
	WindowSec   int    `arg:"--window-sec" help:"window length in seconds"`
	Leads       string `help:"comma-separated lead names, empty for the standard 12"`
	Records     string `help:"comma-separated record names, empty to scan the data dir"`
	Workers     int    `help:"records processed in parallel"`
	Seed        int64  `help:"shuffle seed"`
	Compress    bool   `help:"gzip the output files"`
}

func (args *generateArgs) Validate() error {
	g, err := segment.ByName(args.Granularity)
	if err != nil {
		return err
	}
	return g.Validate()
}

func (args *generateArgs) Handle() error {
	start := time.Now()
	g, err := segment.ByName(args.Granularity)
	if err != nil {
		return err
	}

	fmt.Printf("Patch configuration: %dx%d pixels, %s grid (%d patches), %.1fms per pixel\n",
		g.Width, g.Height, g.PatchGrid(), g.TotalPatches(), g.MsPerPixel(args.Fs))

	res, err := dataset.Generate(dataset.Options{
		DataDir:     args.DataDir,
		MetadataCSV: args.CSV,
		ImageDir:    args.ImageDir,
		Granularity: g,
		Fs:          args.Fs,
		WindowSec:   args.WindowSec,
		Leads:       splitList(args.Leads),
		Records:     splitList(args.Records),
		Workers:     args.Workers,
		Seed:        args.Seed,
	})
	if err != nil {
		return err
	}

	woPath, withPath, err := dataset.Write(res, args.OutDir, g, args.Compress)
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s (%s samples)\n", woPath, humanize.Comma(int64(len(res.WithoutMeta))))
	fmt.Printf("wrote %s (%s samples)\n", withPath, humanize.Comma(int64(len(res.WithMeta))))
	fmt.Printf("records: %d ok, %d failed\n", res.Stats.Records, res.Stats.FailedRecords)
	fmt.Printf("windows: %d rendered, %d skipped\n", res.Stats.Windows, res.Stats.SkippedWindows)
	fmt.Printf("images: %s in %s\n", humanize.Comma(int64(res.Stats.Images)), args.ImageDir)
	fmt.Printf("done in %s\n", time.Since(start))
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
