package annot

// Wave identifies the kind of waveform segment a triplet describes.
type Wave string

// Wave kinds recognized by the grouper.
const (
	WaveP   Wave = "P"
	WaveQRS Wave = "QRS"
	WaveT   Wave = "T"
)

// Triplet is the (onset, peak, offset) pixel coordinates of one wave.
// Coordinates are monotonically non-decreasing.
type Triplet struct {
	X1   int
	X2   int
	X3   int
	Kind Wave
}

// Valid reports whether the coordinates are in non-decreasing order and
// non-negative.
func (t Triplet) Valid() bool {
	return 0 <= t.X1 && t.X1 <= t.X2 && t.X2 <= t.X3
}

// KindForSymbol maps a type-code symbol to its wave kind. QRS codes
// (N, V, A) match case-insensitively; the P and T codes are the lowercase
// letters used by the annotation format.
func KindForSymbol(sym string) (Wave, bool) {
	switch sym {
	case "N", "n", "V", "v", "A", "a":
		return WaveQRS, true
	case "p":
		return WaveP, true
	case "t":
		return WaveT, true
	}
	return "", false
}

type scanState int

const (
	awaitingOnset scanState = iota
	awaitingType
	awaitingOffset
)

// GroupTriplets scans chronologically ordered pixel events and collects
// onset/type/offset triplets per wave kind. The scan is an explicit state
// machine: an onset "(" arms it, a type code selects the bucket, and ")"
// completes the triplet. Any mismatch rewinds to the event after the armed
// onset, so a lone "(" or a malformed run never blocks discovery of the next
// valid triplet. Triplets with decreasing coordinates are rejected, not
// reordered. Insertion order per kind is scan order.
func GroupTriplets(events []PixelEvent) map[Wave][]Triplet {
	waves := map[Wave][]Triplet{
		WaveQRS: nil,
		WaveP:   nil,
		WaveT:   nil,
	}

	state := awaitingOnset
	var onsetIdx int
	var onset, peak PixelEvent
	var kind Wave

	for i := 0; i < len(events); {
		ev := events[i]

		switch state {
		case awaitingOnset:
			if ev.Symbol == "(" {
				onsetIdx = i
				onset = ev
				state = awaitingType
			}
			i++

		case awaitingType:
			k, ok := KindForSymbol(ev.Symbol)
			if !ok {
				state = awaitingOnset
				i = onsetIdx + 1
				continue
			}
			kind = k
			peak = ev
			state = awaitingOffset
			i++

		case awaitingOffset:
			if ev.Symbol != ")" {
				state = awaitingOnset
				i = onsetIdx + 1
				continue
			}
			t := Triplet{X1: onset.Pixel, X2: peak.Pixel, X3: ev.Pixel, Kind: kind}
			if t.Valid() {
				waves[kind] = append(waves[kind], t)
			}
			state = awaitingOnset
			i++
		}
	}

	return waves
}
