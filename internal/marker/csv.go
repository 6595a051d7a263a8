package marker

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV parses a tabular marker file with latency, duration and type
// columns (extra columns are ignored). Rows come back raw: range clipping
// and per-record validation happen at import time against the recording.
func ReadCSV(r io.Reader) ([]Marker, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"latency", "duration", "type"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var markers []Marker
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", line, err)
		}
		line++

		onset, err := strconv.ParseFloat(strings.TrimSpace(row[cols["latency"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: latency must be numeric: %w", line, err)
		}
		duration, err := strconv.ParseFloat(strings.TrimSpace(row[cols["duration"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: duration must be numeric: %w", line, err)
		}

		markers = append(markers, Marker{
			Onset:    onset,
			Duration: duration,
			Label:    strings.TrimSpace(row[cols["type"]]),
		})
	}

	return markers, nil
}

// ToCSV renders markers in the same tabular layout exports expect:
// onset_s, duration_s, label. An empty set renders as nothing at all.
func ToCSV(markers []Marker) []byte {
	if len(markers) == 0 {
		return nil
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write([]string{"onset_s", "duration_s", "label"})
	for _, m := range markers {
		_ = w.Write([]string{
			strconv.FormatFloat(m.Onset, 'f', -1, 64),
			strconv.FormatFloat(m.Duration, 'f', -1, 64),
			m.Label,
		})
	}
	w.Flush()
	return []byte(sb.String())
}
