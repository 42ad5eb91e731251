package prompt

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/heartscribe/heartscribe/ecg-go/annot"
	"github.com/heartscribe/heartscribe/ecg-go/metadata"
)

// Roles used in training conversations.
const (
	FromHuman = "human"
	FromGPT   = "gpt"
)

// ImageToken is the placeholder the training pipeline substitutes with the
// encoded image.
const ImageToken = "<image>"

// Turn is one conversation message.
type Turn struct {
	From  string `json:"from"`
	Value string `json:"value"`
}

// Human wraps a value in a human turn.
func Human(value string) Turn { return Turn{From: FromHuman, Value: value} }

// GPT wraps a value in a gpt turn.
func GPT(value string) Turn { return Turn{From: FromGPT, Value: value} }

// waveOrder is the base ordering before shuffling.
var waveOrder = []annot.Wave{annot.WaveQRS, annot.WaveP, annot.WaveT}

// WaveQuestions builds the wave-annotation turns for one example. Wave order
// is shuffled with the provided source so question order varies across the
// dataset while staying reproducible. Kinds with no triplets are skipped.
func WaveQuestions(waves map[annot.Wave][]annot.Triplet, msPerPixel float64, totalPatches int, rng *rand.Rand) []Turn {
	order := append([]annot.Wave(nil), waveOrder...)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	var turns []Turn
	for _, kind := range order {
		if len(waves[kind]) == 0 {
			continue
		}

		var question string
		if len(turns) == 0 {
			question = fmt.Sprintf(
				"Please identify the %s complexes. This ECG uses Vision Transformer patches: each pixel = %.1fms, %d total patches.",
				kind, msPerPixel, totalPatches)
		} else {
			question = fmt.Sprintf(
				"What about the %s waves? Remember: %.1fms per pixel, patch-aligned coordinates.",
				kind, msPerPixel)
		}

		turns = append(turns,
			Turn{From: FromHuman, Value: question},
			Turn{From: FromGPT, Value: FormatWaves(waves[kind])},
		)
	}
	return turns
}

// PatientQuestions builds the clinical Q/A turns for a metadata row, shuffled
// with the provided source.
func PatientQuestions(row metadata.Row, rng *rand.Rand) []Turn {
	qas := metadata.Questions(row)
	rng.Shuffle(len(qas), func(i, j int) {
		qas[i], qas[j] = qas[j], qas[i]
	})

	turns := make([]Turn, 0, 2*len(qas))
	for _, qa := range qas {
		turns = append(turns,
			Turn{From: FromHuman, Value: qa.Question},
			Turn{From: FromGPT, Value: qa.Answer},
		)
	}
	return turns
}

// PairwiseShuffle shuffles a conversation while preserving human->gpt pairs.
// Odd-length conversations are returned unshuffled.
func PairwiseShuffle(turns []Turn, rng *rand.Rand) []Turn {
	out := append([]Turn(nil), turns...)
	if len(out)%2 != 0 {
		return out
	}

	pairs := len(out) / 2
	order := rng.Perm(pairs)
	for i, p := range order {
		out[2*i] = turns[2*p]
		out[2*i+1] = turns[2*p+1]
	}
	return out
}

// WithImageToken prefixes the first human turn with the image placeholder.
func WithImageToken(turns []Turn) []Turn {
	out := append([]Turn(nil), turns...)
	for i := range out {
		if out[i].From == FromHuman {
			out[i].Value = ImageToken + "\n" + out[i].Value
			break
		}
	}
	return out
}

// HasImageToken reports whether any turn carries the image placeholder.
func HasImageToken(turns []Turn) bool {
	for _, t := range turns {
		if strings.Contains(t.Value, ImageToken) {
			return true
		}
	}
	return false
}
