package wfdb

import (
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartscribe/heartscribe/ecg-go/annot"
)

func writeTestRecord(t *testing.T, dir string) {
	hea := "" +
		"42 2 500 2000\n" +
		"42.dat 16 1000(0)/mV 16 0 0 0 0 i\n" +
		"42.dat 16 1000(0)/mV 16 0 0 0 0 ii\n" +
		"# comment line\n"
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "42.hea"), []byte(hea), 0644))

	// interleaved int16 frames: lead i carries the frame index, lead ii its negation
	dat := make([]byte, 2000*2*2)
	for f := 0; f < 2000; f++ {
		binary.LittleEndian.PutUint16(dat[f*4:], uint16(int16(f%500)))
		binary.LittleEndian.PutUint16(dat[f*4+2:], uint16(int16(-(f%500))))
	}
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "42.dat"), dat, 0644))
}

func annWord(code, delta int) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(code<<10|delta))
	return b
}

func TestReadRecord(t *testing.T) {
	dir, err := ioutil.TempDir("", "wfdb-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	writeTestRecord(t, dir)

	rec, err := ReadRecord(dir, "42")
	require.NoError(t, err)

	assert.Equal(t, "42", rec.Header.Name)
	assert.Equal(t, 500, rec.Header.Fs)
	require.Len(t, rec.Signals, 2)
	require.Len(t, rec.Signals[0], 2000)

	// (adc - baseline) / gain with gain=1000
	assert.InDelta(t, 0.123, rec.Signals[0][123], 1e-9)
	assert.InDelta(t, -0.123, rec.Signals[1][123], 1e-9)

	lead, ok := rec.Lead("II")
	require.True(t, ok, "lead lookup is case-insensitive")
	assert.InDelta(t, -0.007, lead[7], 1e-9)

	_, ok = rec.Lead("v9")
	assert.False(t, ok)
}

func TestReadAnnotations(t *testing.T) {
	dir, err := ioutil.TempDir("", "wfdb-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	var raw []byte
	raw = append(raw, annWord(codeWFOn, 10)...)
	raw = append(raw, annWord(codePWave, 5)...)
	raw = append(raw, annWord(codeWFOff, 5)...)
	// aux string "ab" attached to the stream, then an unknown code to skip
	raw = append(raw, annWord(codeAux, 2)...)
	raw = append(raw, []byte("ab")...)
	raw = append(raw, annWord(13, 10)...) // unknown to this reader
	raw = append(raw, annWord(codeWFOn, 10)...)
	raw = append(raw, annWord(codeNormal, 5)...)
	raw = append(raw, annWord(codeWFOff, 5)...)
	raw = append(raw, annWord(0, 0)...) // end marker
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "7.ii"), raw, 0644))

	events, err := ReadAnnotations(dir, "7", "ii")
	require.NoError(t, err)
	assert.Equal(t, []annot.Event{
		{Sample: 10, Symbol: "("},
		{Sample: 15, Symbol: "p"},
		{Sample: 20, Symbol: ")"},
		{Sample: 40, Symbol: "("},
		{Sample: 45, Symbol: "N"},
		{Sample: 50, Symbol: ")"},
	}, events)
}

func TestReadAnnotations_SkipOperand(t *testing.T) {
	dir, err := ioutil.TempDir("", "wfdb-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	var raw []byte
	raw = append(raw, annWord(codeSkip, 0)...)
	// PDP-11 long 100000: high word first
	long := make([]byte, 4)
	binary.LittleEndian.PutUint16(long[0:], uint16(100000>>16))
	binary.LittleEndian.PutUint16(long[2:], uint16(100000&0xffff))
	raw = append(raw, long...)
	raw = append(raw, annWord(codeTWave, 25)...)
	raw = append(raw, annWord(0, 0)...)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "7.i"), raw, 0644))

	events, err := ReadAnnotations(dir, "7", "i")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, annot.Event{Sample: 100025, Symbol: "t"}, events[0])
}

func TestReadAnnotations_Missing(t *testing.T) {
	dir, err := ioutil.TempDir("", "wfdb-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	_, err = ReadAnnotations(dir, "7", "avf")
	assert.Equal(t, ErrNoAnnotations, err)
}
