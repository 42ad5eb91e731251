package augment

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartscribe/heartscribe/ecg-go/dataset"
	"github.com/heartscribe/heartscribe/ecg-go/prompt"
	"github.com/heartscribe/heartscribe/ecg-go/segment"
)

func sourceExample() dataset.Example {
	return dataset.Example{
		ID:    "001_i_0_wo_meta",
		Image: "1_i_0.png",
		Conversations: []prompt.Turn{
			prompt.Human("<image>\nPlease identify the QRS complexes."),
			prompt.GPT(`<points x1="50" x2="75" x3="100" alt="QRS">QRS</points>`),
		},
		Metadata: dataset.NewMetadata(segment.Fine, 500),
	}
}

func TestEnhance_KeepsOriginals(t *testing.T) {
	in := []dataset.Example{sourceExample()}
	out := Enhance(in, 3, rand.New(rand.NewSource(1)))
	require.True(t, len(out) >= 1)
	assert.Equal(t, in[0], out[0])
}

func TestEnhance_TemporalMapping(t *testing.T) {
	out := Enhance([]dataset.Example{sourceExample()}, 10, rand.New(rand.NewSource(1)))

	var mapping *dataset.Example
	for i := range out {
		if strings.HasSuffix(out[i].ID, "_temporal") {
			mapping = &out[i]
			break
		}
	}
	require.NotNil(t, mapping)
	require.Len(t, mapping.Conversations, 2)

	// fine is 4ms per pixel: 50px = 200ms, 75px = 300ms, 100px = 400ms
	assert.Contains(t, mapping.Conversations[0].Value, "each pixel = 4ms")
	answer := mapping.Conversations[1].Value
	assert.Contains(t, answer, "x1=50 pixels = 200ms")
	assert.Contains(t, answer, "x2=75 pixels = 300ms")
	assert.Contains(t, answer, "x3=100 pixels = 400ms")
	assert.Equal(t, "1_i_0.png", mapping.Image)
}

func TestEnhance_VerificationRoundTrips(t *testing.T) {
	out := Enhance([]dataset.Example{sourceExample()}, 10, rand.New(rand.NewSource(1)))

	var verify *dataset.Example
	for i := range out {
		if strings.HasSuffix(out[i].ID, "_verify") {
			verify = &out[i]
			break
		}
	}
	require.NotNil(t, verify)
	triplets := prompt.ExtractPoints(verify.Conversations[1].Value)
	require.Len(t, triplets, 1)
	assert.Equal(t, 50, triplets[0].X1)
	assert.Equal(t, 75, triplets[0].X2)
	assert.Equal(t, 100, triplets[0].X3)
}

func TestEnhance_PrecisionJitterBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	out := Enhance([]dataset.Example{sourceExample()}, 20, rng)

	for i := range out {
		if !strings.HasSuffix(out[i].ID, "_precision") {
			continue
		}
		for _, tr := range prompt.ExtractPoints(out[i].Conversations[1].Value) {
			// rounded jitter stays within one pixel of the source
			assert.InDelta(t, 50, tr.X1, 1)
			assert.InDelta(t, 75, tr.X2, 1)
			assert.InDelta(t, 100, tr.X3, 1)
		}
	}
}

func TestEnhance_TrimsToFactor(t *testing.T) {
	in := make([]dataset.Example, 10)
	for i := range in {
		in[i] = sourceExample()
	}
	out := Enhance(in, 2, rand.New(rand.NewSource(3)))
	assert.Equal(t, 20, len(out))
	for i := range in {
		assert.Equal(t, in[i], out[i])
	}
}

func TestEnhance_FactorOneKeepsOnlyOriginals(t *testing.T) {
	in := []dataset.Example{sourceExample()}
	out := Enhance(in, 1.0, rand.New(rand.NewSource(1)))
	require.Equal(t, 1, len(out))
	assert.Equal(t, in[0], out[0])
}

func TestEnhance_NoPointsNoDerived(t *testing.T) {
	in := []dataset.Example{{
		ID:    "chat_only",
		Image: "x.png",
		Conversations: []prompt.Turn{
			prompt.Human("<image>\nWhat is the rhythm?"),
			prompt.GPT("Sinus rhythm."),
		},
	}}
	// seed chosen so the temporal context draw misses
	out := Enhance(in, 5, rand.New(rand.NewSource(2)))
	for _, ex := range out[1:] {
		assert.True(t, strings.HasSuffix(ex.ID, "_context"), "only context samples expected, got %s", ex.ID)
	}
}
