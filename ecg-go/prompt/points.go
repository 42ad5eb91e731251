// Package prompt serializes wave triplets into the tagged text format the
// model is trained on, and parses that format back out of free-form model
// responses.
package prompt

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/heartscribe/heartscribe/ecg-go/annot"
)

// FormatPoints renders one triplet as its wire fragment:
//   <points x1="12" x2="34" x3="56" alt="P">P</points>
func FormatPoints(t annot.Triplet) string {
	return fmt.Sprintf(`<points x1="%d" x2="%d" x3="%d" alt="%s">%s</points>`,
		t.X1, t.X2, t.X3, t.Kind, t.Kind)
}

// FormatWaves renders all triplets of one kind as a single answer string.
func FormatWaves(triplets []annot.Triplet) string {
	var sb strings.Builder
	for _, t := range triplets {
		sb.WriteString(FormatPoints(t))
	}
	return sb.String()
}

// pointsPattern tolerates whitespace between attributes, decimal coordinates,
// and any case in the wave label. Attribute order is fixed.
var pointsPattern = regexp.MustCompile(
	`(?i)<points\s+x1\s*=\s*"(\d+(?:\.\d+)?)"\s+x2\s*=\s*"(\d+(?:\.\d+)?)"\s+x3\s*=\s*"(\d+(?:\.\d+)?)"\s+alt\s*=\s*"([^"]+)"\s*>`)

var kindForLabel = map[string]annot.Wave{
	"P":   annot.WaveP,
	"QRS": annot.WaveQRS,
	"T":   annot.WaveT,
}

// ExtractPoints pulls every well-formed points fragment out of free-form text.
// Surrounding commentary is ignored, malformed fragments are dropped, and
// fragments whose coordinates decrease or whose label is unknown are
// discarded. It never fails; bad input just yields fewer triplets.
func ExtractPoints(text string) []annot.Triplet {
	var out []annot.Triplet
	for _, m := range pointsPattern.FindAllStringSubmatch(text, -1) {
		x1, err1 := strconv.ParseFloat(m[1], 64)
		x2, err2 := strconv.ParseFloat(m[2], 64)
		x3, err3 := strconv.ParseFloat(m[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		if !(0 <= x1 && x1 <= x2 && x2 <= x3) {
			continue
		}
		kind, ok := kindForLabel[strings.ToUpper(m[4])]
		if !ok {
			continue
		}
		out = append(out, annot.Triplet{
			X1:   int(math.Round(x1)),
			X2:   int(math.Round(x2)),
			X3:   int(math.Round(x3)),
			Kind: kind,
		})
	}
	return out
}
