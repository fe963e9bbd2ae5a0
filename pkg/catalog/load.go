// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

var errMissingColumn = errors.New("score column not found")

type document struct {
	SegmentDuration time.Duration `yaml:"segment_duration"`
	Qualities       []Quality     `yaml:"qualities"`
}

// LoadYAML reads a catalog document of the form
//
//	segment_duration: 4s
//	qualities:
//	  - bitrate: 300
//	    sizes: [181801, 155580, ...]
//	    scores: [61.2, 58.9, ...]
func LoadYAML(r io.Reader) (*Catalog, error) {
	var doc document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not parse catalog: %w", err)
	}

	return New(doc.SegmentDuration, doc.Qualities...)
}

// LoadScoresCSV reads a per-segment score table with a header row. columns
// names the header of each quality, lowest first; every row is one segment.
func LoadScoresCSV(r io.Reader, columns []string) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read score header: %w", err)
	}
	positions := make([]int, len(columns))
	for q, name := range columns {
		positions[q] = -1
		for i, h := range header {
			if h == name {
				positions[q] = i
			}
		}
		if positions[q] < 0 {
			return nil, fmt.Errorf("%w: %s", errMissingColumn, name)
		}
	}

	scores := make([][]float64, len(columns))
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read score row %d: %w", row, err)
		}
		for q, pos := range positions {
			value, err := strconv.ParseFloat(record[pos], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", row, columns[q], err)
			}
			scores[q] = append(scores[q], value)
		}
	}

	return scores, nil
}
