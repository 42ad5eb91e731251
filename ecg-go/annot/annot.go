// Package annot models wave-boundary annotation events and groups them into
// onset/peak/offset triplets per wave kind.
package annot

import (
	"github.com/heartscribe/heartscribe/ecg-go/segment"
)

// Event is one annotation in the sample domain: a sample index paired with a
// symbol. Symbols use paired markers: "(" opens a wave, a type code names it,
// ")" closes it.
type Event struct {
	Sample int
	Symbol string
}

// PixelEvent is an annotation mapped into the pixel domain of one window.
type PixelEvent struct {
	Pixel  int
	Symbol string
}

// InWindow returns the events whose sample index falls in [start, end),
// rebased so that samples are relative to the window start.
func InWindow(events []Event, start, end int) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Sample < start || ev.Sample >= end {
			continue
		}
		out = append(out, Event{Sample: ev.Sample - start, Symbol: ev.Symbol})
	}
	return out
}

// Rescale maps window-relative events into the pixel domain of g. The same
// SamplesPerPixel constant drives both this mapping and the pixel averaging in
// segment.Downsample; using different values silently shifts coordinates.
func Rescale(events []Event, g segment.Granularity) []PixelEvent {
	out := make([]PixelEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, PixelEvent{
			Pixel:  g.PixelIndex(ev.Sample),
			Symbol: ev.Symbol,
		})
	}
	return out
}
