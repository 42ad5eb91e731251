package augment

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strconv"

	"github.com/heartscribe/heartscribe/ecg-go/dataset"
	"github.com/heartscribe/heartscribe/ecg-go/prompt"
)

// coordPattern pulls raw coordinate strings out of a points tag without
// rounding, so decimal boundaries survive into the derived samples.
var (
	coordPattern = regexp.MustCompile(`x\d+\s*=\s*"(\d+(?:\.\d+)?)"`)
	altPattern   = regexp.MustCompile(`alt\s*=\s*"([^"]+)"`)
)

const defaultMsPerPixel = 2.0

// Enhance derives coordinate-precision training samples from a generated
// dataset. Every source sample is kept; for each gpt turn carrying a points
// tag it adds a temporal-mapping sample and a coordinate-verification
// sample, plus a precision-boundary sample 70% of the time. A temporal
// context sample is added per source sample 30% of the time. The result is
// trimmed to factor times the input size, originals always surviving the
// trim.
func Enhance(in []dataset.Example, factor float64, rng *rand.Rand) []dataset.Example {
	var derived []dataset.Example
	for _, ex := range in {
		mpp := ex.Metadata.MsPerPixel
		if mpp <= 0 {
			mpp = defaultMsPerPixel
		}
		for _, turn := range ex.Conversations {
			if turn.From != prompt.FromGPT {
				continue
			}
			coords := extractCoords(turn.Value)
			if len(coords) < 3 {
				continue
			}
			wave := "wave"
			if m := altPattern.FindStringSubmatch(turn.Value); m != nil {
				wave = m[1]
			}
			derived = append(derived, temporalMapping(ex, coords, mpp))
			derived = append(derived, verification(ex, coords, wave, mpp))
			if rng.Float64() < 0.7 {
				derived = append(derived, precisionBoundary(ex, coords, wave, rng))
			}
		}
		if rng.Float64() < 0.3 {
			derived = append(derived, temporalContext(ex, mpp))
		}
	}

	target := int(float64(len(in)) * factor)
	if target < len(in) {
		target = len(in)
	}
	if len(derived) > target-len(in) {
		rng.Shuffle(len(derived), func(i, j int) {
			derived[i], derived[j] = derived[j], derived[i]
		})
		derived = derived[:target-len(in)]
	}

	out := make([]dataset.Example, 0, len(in)+len(derived))
	out = append(out, in...)
	out = append(out, derived...)
	return out
}

func extractCoords(text string) []float64 {
	var coords []float64
	for _, m := range coordPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		coords = append(coords, v)
	}
	return coords
}

// fmtMs truncates to whole pixels before converting, matching the integer
// coordinates the generator emits.
func fmtMs(coord, mpp float64) string {
	return strconv.FormatFloat(math.Floor(coord)*mpp, 'f', -1, 64)
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func temporalMapping(src dataset.Example, coords []float64, mpp float64) dataset.Example {
	x1, x2, x3 := fmtCoord(coords[0]), fmtCoord(coords[1]), fmtCoord(coords[2])
	m1, m2, m3 := fmtMs(coords[0], mpp), fmtMs(coords[1], mpp), fmtMs(coords[2], mpp)
	return dataset.Example{
		ID:    src.ID + "_temporal",
		Image: src.Image,
		Conversations: []prompt.Turn{
			prompt.Human(fmt.Sprintf(
				"%sConvert these ECG coordinates to milliseconds. Remember: each pixel = %sms of time. Coordinates: x1=%s, x2=%s, x3=%s",
				prompt.ImageToken, fmtCoord(mpp), x1, x2, x3)),
			prompt.GPT(fmt.Sprintf(
				"Converting to milliseconds: x1=%s pixels = %sms, x2=%s pixels = %sms, x3=%s pixels = %sms. Timeline: start at %sms, peak at %sms, end at %sms.",
				x1, m1, x2, m2, x3, m3, m1, m2, m3)),
		},
		Metadata: src.Metadata,
	}
}

func verification(src dataset.Example, coords []float64, wave string, mpp float64) dataset.Example {
	x1, x2, x3 := fmtCoord(coords[0]), fmtCoord(coords[1]), fmtCoord(coords[2])
	return dataset.Example{
		ID:    src.ID + "_verify",
		Image: src.Image,
		Conversations: []prompt.Turn{
			prompt.Human(fmt.Sprintf(
				"%sVerify the accuracy of these %s wave coordinates with %sms precision per pixel: x1=%s, x2=%s, x3=%s",
				prompt.ImageToken, wave, fmtCoord(mpp), x1, x2, x3)),
			prompt.GPT(fmt.Sprintf(
				`Verified %s coordinates: <points x1="%s" x2="%s" x3="%s" alt="%s">Coordinates confirmed - %s</points>`,
				wave, x1, x2, x3, wave, wave)),
		},
		Metadata: src.Metadata,
	}
}

func precisionBoundary(src dataset.Example, coords []float64, wave string, rng *rand.Rand) dataset.Example {
	jitter := func(v float64) string {
		return strconv.FormatFloat(v+(rng.Float64()-0.5), 'f', 1, 64)
	}
	x1, x2, x3 := jitter(coords[0]), jitter(coords[1]), jitter(coords[2])
	return dataset.Example{
		ID:    src.ID + "_precision",
		Image: src.Image,
		Conversations: []prompt.Turn{
			prompt.Human(prompt.ImageToken +
				"Identify wave boundaries with sub-pixel precision. Use decimal coordinates for exact boundaries."),
			prompt.GPT(fmt.Sprintf(
				`Sub-pixel precision boundaries: <points x1="%s" x2="%s" x3="%s" alt="%s">%s</points>`,
				x1, x2, x3, wave, wave)),
		},
		Metadata: src.Metadata,
	}
}

func temporalContext(src dataset.Example, mpp float64) dataset.Example {
	width := src.Metadata.ImageWidth
	if width == 0 {
		width = 1000
	}
	totalMs := float64(width) * mpp
	return dataset.Example{
		ID:    src.ID + "_context",
		Image: src.Image,
		Conversations: []prompt.Turn{
			prompt.Human(fmt.Sprintf(
				"%sAnalyze this 2-second ECG segment. Identify all waves with their exact temporal positions. Each pixel represents %sms.",
				prompt.ImageToken, fmtCoord(mpp))),
			prompt.GPT(fmt.Sprintf(
				"Analyzing 2-second ECG with temporal precision:\n- Time range: 0-%.0fms (0-%d pixels)\n- Resolution: %sms per pixel\nIdentifying waves with precise timing...",
				totalMs, width-1, fmtCoord(mpp))),
		},
		Metadata: src.Metadata,
	}
}
