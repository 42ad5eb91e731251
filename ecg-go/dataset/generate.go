package dataset

import (
	"hash/fnv"
	"log"
	"math/rand"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/heartscribe/heartscribe/ecg-golib/errors"
	"github.com/heartscribe/heartscribe/ecg-golib/workerpool"

	"github.com/heartscribe/heartscribe/ecg-go/annot"
	"github.com/heartscribe/heartscribe/ecg-go/metadata"
	"github.com/heartscribe/heartscribe/ecg-go/prompt"
	"github.com/heartscribe/heartscribe/ecg-go/render"
	"github.com/heartscribe/heartscribe/ecg-go/segment"
	"github.com/heartscribe/heartscribe/ecg-go/wfdb"
)

// DefaultLeads are the twelve standard leads, matching the annotation file
// extensions used by the segmentation database.
var DefaultLeads = []string{"i", "ii", "iii", "avr", "avl", "avf", "v1", "v2", "v3", "v4", "v5", "v6"}

// Options configures one generation run.
type Options struct {
	DataDir     string
	MetadataCSV string
	ImageDir    string
	Granularity segment.Granularity
	Fs          int
	WindowSec   int
	Leads       []string
	Records     []string // record names; discovered from *.hea files when empty
	Workers     int
	Seed        int64
}

func (o *Options) defaults() {
	if o.Fs == 0 {
		o.Fs = 500
	}
	if o.WindowSec == 0 {
		o.WindowSec = 2
	}
	if len(o.Leads) == 0 {
		o.Leads = DefaultLeads
	}
	if o.Workers == 0 {
		o.Workers = 4
	}
}

// Stats counts what a generation run did.
type Stats struct {
	Records        int
	FailedRecords  int
	Windows        int
	SkippedWindows int
	Images         int
}

// Result holds both dataset variants produced by a run.
type Result struct {
	WithoutMeta []Example
	WithMeta    []Example
	Stats       Stats
}

// Generate produces the two dataset variants for every (record, lead, window)
// triple under opts.DataDir. Records are processed in parallel; examples for
// different records share no state, so the only synchronization is the final
// append. A record that fails to read is logged and skipped without emitting
// partial examples.
func Generate(opts Options) (*Result, error) {
	opts.defaults()
	if err := opts.Granularity.Validate(); err != nil {
		return nil, err
	}

	records := opts.Records
	if len(records) == 0 {
		var err error
		records, err = discoverRecords(opts.DataDir)
		if err != nil {
			return nil, err
		}
	}
	if len(records) == 0 {
		return nil, errors.Errorf("no records found in %s", opts.DataDir)
	}

	table, err := metadata.Load(opts.MetadataCSV)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	var mu sync.Mutex

	jobs := make([]workerpool.Job, 0, len(records))
	for _, name := range records {
		name := name
		jobs = append(jobs, func() error {
			// each record gets its own deterministic source so runs
			// reproduce regardless of worker scheduling
			rng := rand.New(rand.NewSource(opts.Seed + int64(recordHash(name))))

			out, err := processRecord(opts, table, name, rng)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("generate: record %s failed: %v", name, err)
				res.Stats.FailedRecords++
				return nil
			}
			res.WithoutMeta = append(res.WithoutMeta, out.WithoutMeta...)
			res.WithMeta = append(res.WithMeta, out.WithMeta...)
			res.Stats.Records++
			res.Stats.Windows += out.Stats.Windows
			res.Stats.SkippedWindows += out.Stats.SkippedWindows
			res.Stats.Images += out.Stats.Images
			return nil
		})
	}

	pool := workerpool.New(opts.Workers)
	pool.Add(jobs)
	if err := pool.Wait(); err != nil {
		return nil, err
	}

	sortExamples(res.WithoutMeta)
	sortExamples(res.WithMeta)
	return res, nil
}

// processRecord builds all examples for one record. Any returned error means
// the whole record is dropped.
func processRecord(opts Options, table metadata.Table, name string, rng *rand.Rand) (*Result, error) {
	rec, err := wfdb.ReadRecord(opts.DataDir, name)
	if err != nil {
		return nil, err
	}

	recID, err := strconv.Atoi(name)
	if err != nil {
		return nil, errors.Wrapf(err, "record name %q is not numeric", name)
	}
	row, ok := table[recID]
	if !ok {
		return nil, errors.Errorf("no metadata row for record %s", name)
	}

	g := opts.Granularity
	meta := NewMetadata(g, opts.Fs)
	out := &Result{}

	for leadIdx, lead := range opts.Leads {
		events, err := wfdb.ReadAnnotations(opts.DataDir, name, lead)
		if err == wfdb.ErrNoAnnotations {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "lead %s", lead)
		}

		signal, ok := rec.Lead(lead)
		if !ok {
			if leadIdx >= len(rec.Signals) {
				continue
			}
			signal = rec.Signals[leadIdx]
		}

		for _, win := range segment.Windows(signal, opts.Fs, opts.WindowSec) {
			inWindow := annot.InWindow(events, win.Start, win.End)
			if len(inWindow) < 3 {
				out.Stats.SkippedWindows++
				continue
			}

			scaled := annot.Rescale(inWindow, g)
			waves := annot.GroupTriplets(scaled)
			if len(waves[annot.WaveP])+len(waves[annot.WaveQRS])+len(waves[annot.WaveT]) == 0 {
				out.Stats.SkippedWindows++
				continue
			}

			pixels := segment.Downsample(win.Samples, g.Width, g.SamplesPerPixel)
			img, err := render.Rasterize(pixels, g)
			if err != nil {
				return nil, errors.Wrapf(err, "window %d of lead %s", win.Index, lead)
			}
			imgName, err := render.SaveImage(opts.ImageDir, name, lead, win.Index, img)
			if err != nil {
				return nil, err
			}
			out.Stats.Images++
			out.Stats.Windows++

			msPerPixel := g.MsPerPixel(opts.Fs)

			convoAnn := prompt.WithImageToken(
				prompt.WaveQuestions(waves, msPerPixel, g.TotalPatches(), rng))
			out.WithoutMeta = append(out.WithoutMeta, Example{
				ID:            ExampleID(name, lead, win.Index, "wo_meta"),
				Image:         imgName,
				Conversations: convoAnn,
				Metadata:      meta,
			})

			convoMeta := prompt.PairwiseShuffle(prompt.PatientQuestions(row, rng), rng)
			convoWave := prompt.PairwiseShuffle(
				prompt.WaveQuestions(waves, msPerPixel, g.TotalPatches(), rng), rng)
			full := prompt.WithImageToken(append(convoMeta, convoWave...))
			out.WithMeta = append(out.WithMeta, Example{
				ID:            ExampleID(name, lead, win.Index, "with_meta"),
				Image:         imgName,
				Conversations: full,
				Metadata:      meta,
			})
		}
	}

	return out, nil
}

func discoverRecords(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.hea"))
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", dir)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".hea"))
	}
	sort.Slice(names, func(i, j int) bool {
		ni, erri := strconv.Atoi(names[i])
		nj, errj := strconv.Atoi(names[j])
		if erri == nil && errj == nil {
			return ni < nj
		}
		return names[i] < names[j]
	})
	return names, nil
}

func recordHash(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return h.Sum32()
}

func sortExamples(examples []Example) {
	sort.Slice(examples, func(i, j int) bool {
		return examples[i].ID < examples[j].ID
	})
}
