// Package metadata reads the per-record clinical CSV that accompanies the
// signal database and turns its fields into question/answer pairs.
package metadata

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/heartscribe/heartscribe/ecg-golib/errors"
)

// Row is one record's clinical metadata, keyed by column name. Blank cells
// are omitted.
type Row map[string]string

// Table holds all rows keyed by integer record ID.
type Table map[int]Row

// Load reads the metadata CSV. The first column must be the record ID.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening metadata %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing metadata %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("metadata %s is empty", path)
	}

	header := records[0]
	table := make(Table, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			continue
		}
		row := make(Row)
		for i, cell := range rec {
			if i >= len(header) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			row[header[i]] = cell
		}
		table[id] = row
	}
	return table, nil
}

// QA is one patient question/answer pair.
type QA struct {
	Question string
	Answer   string
}

// Questions builds the clinical Q/A pairs a row supports. Fields with no
// value produce no pair. The order is the fixed field order; shuffling is the
// caller's concern.
func Questions(row Row) []QA {
	var qas []QA
	add := func(col string, build func(string) QA) {
		if val, ok := row[col]; ok {
			qas = append(qas, build(val))
		}
	}

	add("Age", func(v string) QA {
		return QA{"How old is the patient?", "The patient is " + v + " years old."}
	})
	add("Sex", func(v string) QA {
		answer := "The patient is female."
		if strings.Contains(v, "M") {
			answer = "The patient is male."
		}
		return QA{"What is the sex of the patient?", answer}
	})
	add("Rhythms", func(v string) QA {
		return QA{"What is the patient's heart rhythm?", "The rhythm is " + v + "."}
	})
	add("Electric axis of the heart", func(v string) QA {
		v = strings.TrimSpace(strings.TrimPrefix(v, "Electric axis of the heart: "))
		return QA{"What is the electrical axis?", "The electrical axis is " + v + "."}
	})
	add("Conduction abnormalities", func(v string) QA {
		return QA{"Any conduction abnormalities?", "Yes, " + v + "."}
	})
	add("Extrasystolies", func(v string) QA {
		return QA{"Does the patient have extrasystolies?", "Yes, " + v + "."}
	})
	add("Hypertrophies", func(v string) QA {
		return QA{"Any hypertrophy signs?", "Yes, " + v + "."}
	})
	add("Cardiac pacing", func(v string) QA {
		return QA{"Is there any cardiac pacing?", "Yes, " + v + "."}
	})
	add("Ischemia", func(v string) QA {
		return QA{"Any signs of ischemia?", "Yes, " + v + "."}
	})
	add("Non-specific repolarization abnormalities", func(v string) QA {
		return QA{"Any repolarization abnormalities?", "Yes, " + v + "."}
	})
	add("Other states", func(v string) QA {
		return QA{"Any other relevant findings?", v}
	})

	return qas
}
