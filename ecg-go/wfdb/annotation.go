package wfdb

import (
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/heartscribe/heartscribe/ecg-golib/errors"

	"github.com/heartscribe/heartscribe/ecg-go/annot"
)

// Annotation codes relevant to wave segmentation. The reader skips any code
// it has no symbol for.
const (
	codeNormal = 1  // N: normal QRS
	codePVC    = 5  // V: premature ventricular contraction
	codeAPC    = 8  // A: atrial premature beat
	codePWave  = 24 // p
	codeTWave  = 27 // t
	codeUWave  = 29 // u
	codeWFOn   = 39 // ( : waveform onset
	codeWFOff  = 40 // ) : waveform offset
)

// pseudo-annotation codes that modify the stream rather than mark a sample
const (
	codeEnd  = 0
	codeSkip = 59
	codeNum  = 60
	codeSub  = 61
	codeChn  = 62
	codeAux  = 63
)

var symbolForCode = map[int]string{
	codeNormal: "N",
	codePVC:    "V",
	codeAPC:    "A",
	codePWave:  "p",
	codeTWave:  "t",
	codeUWave:  "u",
	codeWFOn:   "(",
	codeWFOff:  ")",
}

// ErrNoAnnotations marks a missing annotation file. Callers treat it as
// "skip this lead", not as a failure.
var ErrNoAnnotations = errors.New("no annotation file")

// ReadAnnotations reads <dir>/<name>.<ext>, the annotation stream for one
// lead, and returns (sample, symbol) events in chronological order.
//
// The stream is a sequence of little-endian 16-bit words: the annotation code
// in the high 6 bits, a time delta in samples in the low 10 bits. SKIP words
// carry a 4-byte long delta, NUM/SUB/CHN words modify bookkeeping fields this
// reader does not surface, and AUX words are followed by a length-prefixed
// string padded to an even byte count.
func ReadAnnotations(dir, name, ext string) ([]annot.Event, error) {
	path := filepath.Join(dir, name+"."+ext)
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoAnnotations
		}
		return nil, errors.Wrapf(err, "reading annotations %s", path)
	}

	var events []annot.Event
	sample := 0
	for i := 0; i+1 < len(raw); {
		word := binary.LittleEndian.Uint16(raw[i:])
		i += 2

		code := int(word >> 10)
		delta := int(word & 0x3ff)

		switch code {
		case codeEnd:
			if delta == 0 {
				return events, nil
			}
		case codeSkip:
			if i+3 >= len(raw) {
				return events, errors.Errorf("annotations %s: truncated skip operand", path)
			}
			// PDP-11 long: high word first, each word little-endian
			high := binary.LittleEndian.Uint16(raw[i:])
			low := binary.LittleEndian.Uint16(raw[i+2:])
			i += 4
			sample += int(int32(uint32(high)<<16 | uint32(low)))
		case codeNum, codeSub, codeChn:
			// bookkeeping only; no time advance
		case codeAux:
			pad := delta
			if pad%2 == 1 {
				pad++
			}
			if i+pad > len(raw) {
				return events, errors.Errorf("annotations %s: truncated aux string", path)
			}
			i += pad
		default:
			sample += delta
			if sym, ok := symbolForCode[code]; ok {
				events = append(events, annot.Event{Sample: sample, Symbol: sym})
			}
		}
	}
	return events, nil
}
