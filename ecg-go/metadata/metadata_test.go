package metadata

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "metadata-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	csv := "ID,Age,Sex,Rhythms\n" +
		"1,63,M,Sinus rhythm\n" +
		"2,48,F,\n" +
		"bogus,1,2,3\n"
	path := filepath.Join(dir, "ludb.csv")
	require.NoError(t, ioutil.WriteFile(path, []byte(csv), 0644))

	table, err := Load(path)
	require.NoError(t, err)
	require.Len(t, table, 2)

	assert.Equal(t, "63", table[1]["Age"])
	assert.Equal(t, "Sinus rhythm", table[1]["Rhythms"])

	_, hasRhythm := table[2]["Rhythms"]
	assert.False(t, hasRhythm, "blank cells should be dropped")
}

func TestQuestions(t *testing.T) {
	row := Row{
		"Age":     "63",
		"Sex":     "M",
		"Rhythms": "Sinus rhythm",
	}

	qas := Questions(row)
	require.Len(t, qas, 3)
	assert.Equal(t, "How old is the patient?", qas[0].Question)
	assert.Equal(t, "The patient is 63 years old.", qas[0].Answer)
	assert.Equal(t, "The patient is male.", qas[1].Answer)
	assert.Equal(t, "The rhythm is Sinus rhythm.", qas[2].Answer)
}

func TestQuestions_EmptyRow(t *testing.T) {
	assert.Empty(t, Questions(Row{}))
}
