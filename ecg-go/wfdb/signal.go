package wfdb

import (
	"encoding/binary"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/heartscribe/heartscribe/ecg-golib/errors"
)

// Record holds a fully read record: one float64 slice per lead, in physical
// units, plus the parsed header.
type Record struct {
	Header  Header
	Signals [][]float64
}

// Lead returns the signal for the lead with the given description (e.g. "ii"),
// matched case-insensitively against the header descriptions.
func (r Record) Lead(name string) ([]float64, bool) {
	for i, spec := range r.Header.Signals {
		if strings.EqualFold(spec.Description, name) {
			return r.Signals[i], true
		}
	}
	return nil, false
}

// ReadRecord reads <dir>/<name>.hea and its format-16 sample file, converting
// ADC units to physical units via (adc - baseline) / gain.
func ReadRecord(dir, name string) (Record, error) {
	h, err := ReadHeader(dir, name)
	if err != nil {
		return Record{}, err
	}

	if h.NumSignals == 0 {
		return Record{Header: h}, nil
	}

	for _, spec := range h.Signals {
		if spec.Format != 16 {
			return Record{}, errors.Errorf("record %s: unsupported signal format %d", name, spec.Format)
		}
		if spec.File != h.Signals[0].File {
			return Record{}, errors.Errorf("record %s: multi-file records are not supported", name)
		}
	}

	path := filepath.Join(dir, h.Signals[0].File)
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return Record{}, errors.Wrapf(err, "reading samples %s", path)
	}

	// format 16: little-endian int16 frames, one sample per signal per frame
	frameBytes := 2 * h.NumSignals
	frames := len(raw) / frameBytes
	if h.NumSamples > 0 && frames > h.NumSamples {
		frames = h.NumSamples
	}

	signals := make([][]float64, h.NumSignals)
	for s := range signals {
		signals[s] = make([]float64, frames)
	}
	for f := 0; f < frames; f++ {
		base := f * frameBytes
		for s := 0; s < h.NumSignals; s++ {
			adc := int16(binary.LittleEndian.Uint16(raw[base+2*s:]))
			spec := h.Signals[s]
			signals[s][f] = (float64(adc) - float64(spec.Baseline)) / spec.Gain
		}
	}

	return Record{Header: h, Signals: signals}, nil
}
