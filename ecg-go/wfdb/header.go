// Package wfdb reads waveform-database records: a text header describing the
// signals, a binary sample file, and per-lead annotation files. It covers the
// subset of the format the segmentation database uses (format 16 samples,
// wave-boundary annotations).
package wfdb

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/heartscribe/heartscribe/ecg-golib/errors"
)

// SignalSpec describes one signal (lead) declared in a record header.
type SignalSpec struct {
	File        string
	Format      int
	Gain        float64
	Baseline    int
	Units       string
	Description string
}

// Header is the parsed record header.
type Header struct {
	Name       string
	NumSignals int
	Fs         int
	NumSamples int
	Signals    []SignalSpec
}

const defaultGain = 200 // ADC units per physical unit when the header omits it

// ReadHeader parses <dir>/<name>.hea.
func ReadHeader(dir, name string) (Header, error) {
	path := filepath.Join(dir, name+".hea")
	f, err := os.Open(path)
	if err != nil {
		return Header{}, errors.Wrapf(err, "opening header %s", path)
	}
	defer f.Close()

	var h Header
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if h.Name == "" {
			if err := parseRecordLine(line, &h); err != nil {
				return Header{}, errors.Wrapf(err, "parsing record line of %s", path)
			}
			continue
		}

		if len(h.Signals) < h.NumSignals {
			spec, err := parseSignalLine(line)
			if err != nil {
				return Header{}, errors.Wrapf(err, "parsing signal line %d of %s", len(h.Signals), path)
			}
			h.Signals = append(h.Signals, spec)
		}
	}
	if err := scanner.Err(); err != nil {
		return Header{}, errors.Wrapf(err, "reading header %s", path)
	}

	if h.Name == "" {
		return Header{}, errors.Errorf("header %s has no record line", path)
	}
	if len(h.Signals) != h.NumSignals {
		return Header{}, errors.Errorf("header %s declares %d signals but describes %d",
			path, h.NumSignals, len(h.Signals))
	}
	return h, nil
}

// parseRecordLine handles "name nsig fs nsamples". The record name may carry
// a /segments suffix, which is ignored.
func parseRecordLine(line string, h *Header) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return errors.Errorf("record line %q has too few fields", line)
	}

	h.Name = strings.SplitN(fields[0], "/", 2)[0]

	nsig, err := strconv.Atoi(fields[1])
	if err != nil {
		return errors.Wrapf(err, "signal count %q", fields[1])
	}
	h.NumSignals = nsig

	h.Fs = 250 // format default
	if len(fields) > 2 {
		// sampling rate may carry a /counter suffix
		fsField := strings.SplitN(fields[2], "/", 2)[0]
		fs, err := strconv.ParseFloat(fsField, 64)
		if err != nil {
			return errors.Wrapf(err, "sampling rate %q", fields[2])
		}
		h.Fs = int(fs)
	}
	if len(fields) > 3 {
		n, err := strconv.Atoi(fields[3])
		if err != nil {
			return errors.Wrapf(err, "sample count %q", fields[3])
		}
		h.NumSamples = n
	}
	return nil
}

// parseSignalLine handles "file format gain(baseline)/units adcres adczero ... description".
func parseSignalLine(line string) (SignalSpec, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return SignalSpec{}, errors.Errorf("signal line %q has too few fields", line)
	}

	spec := SignalSpec{
		File: fields[0],
		Gain: defaultGain,
	}

	// format may carry xN/:N/+N modifiers; only the base format matters here
	fmtField := fields[1]
	for _, sep := range []string{"x", ":", "+"} {
		fmtField = strings.SplitN(fmtField, sep, 2)[0]
	}
	format, err := strconv.Atoi(fmtField)
	if err != nil {
		return SignalSpec{}, errors.Wrapf(err, "format %q", fields[1])
	}
	spec.Format = format

	if len(fields) > 2 {
		gain, baseline, units, err := parseGain(fields[2])
		if err != nil {
			return SignalSpec{}, err
		}
		if gain != 0 {
			spec.Gain = gain
		}
		spec.Baseline = baseline
		spec.Units = units
	}

	// the trailing free-text field is the lead description
	if len(fields) > 8 {
		spec.Description = strings.Join(fields[8:], " ")
	}
	return spec, nil
}

// parseGain handles "gain", "gain(baseline)", and "gain(baseline)/units".
func parseGain(field string) (gain float64, baseline int, units string, err error) {
	if i := strings.IndexByte(field, '/'); i >= 0 {
		units = field[i+1:]
		field = field[:i]
	}
	if i := strings.IndexByte(field, '('); i >= 0 {
		j := strings.IndexByte(field, ')')
		if j < i {
			return 0, 0, "", errors.Errorf("malformed gain field %q", field)
		}
		baseline, err = strconv.Atoi(field[i+1 : j])
		if err != nil {
			return 0, 0, "", errors.Wrapf(err, "baseline in %q", field)
		}
		field = field[:i]
	}
	gain, err = strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, 0, "", errors.Wrapf(err, "gain in %q", field)
	}
	return gain, baseline, units, nil
}
