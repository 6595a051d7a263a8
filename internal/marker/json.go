package marker

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// markerFileSchema describes the structured marker export format: a Markers
// array of objects carrying a label and absolute start/end timestamps.
const markerFileSchema = `{
	"type": "object",
	"required": ["Markers"],
	"properties": {
		"Markers": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"label": {"type": "string"},
					"startDatetime": {"type": "string"},
					"endDatetime": {"type": "string"},
					"originalStartDatetime": {"type": "string"},
					"originalEndDatetime": {"type": "string"}
				}
			}
		}
	}
}`

type jsonMarkerFile struct {
	Markers []jsonMarker `json:"Markers"`
}

type jsonMarker struct {
	Label                 string `json:"label"`
	StartDatetime         string `json:"startDatetime"`
	EndDatetime           string `json:"endDatetime"`
	OriginalStartDatetime string `json:"originalStartDatetime"`
	OriginalEndDatetime   string `json:"originalEndDatetime"`
}

// ReadJSON parses a structured marker file. Entries without a usable
// start/end pair are skipped. Onsets are expressed relative to the earliest
// start timestamp in the file, since the recording itself carries no
// absolute time origin.
func ReadJSON(r io.Reader) ([]Marker, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read marker file: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(markerFileSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate marker json: %w", err)
	}
	if !result.Valid() {
		var reasons []string
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return nil, fmt.Errorf("marker json does not match expected format: %s", strings.Join(reasons, "; "))
	}

	var file jsonMarkerFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse marker json: %w", err)
	}

	type span struct {
		label      string
		start, end time.Time
	}
	var spans []span
	for _, m := range file.Markers {
		startStr := m.StartDatetime
		if startStr == "" {
			startStr = m.OriginalStartDatetime
		}
		endStr := m.EndDatetime
		if endStr == "" {
			endStr = m.OriginalEndDatetime
		}
		if startStr == "" || endStr == "" {
			continue
		}

		start, err := parseTimestamp(startStr)
		if err != nil {
			return nil, fmt.Errorf("invalid start timestamp %q: %w", startStr, err)
		}
		end, err := parseTimestamp(endStr)
		if err != nil {
			return nil, fmt.Errorf("invalid end timestamp %q: %w", endStr, err)
		}

		label := m.Label
		if label == "" {
			label = "Marker"
		}
		spans = append(spans, span{label: label, start: start, end: end})
	}
	if len(spans) == 0 {
		return nil, nil
	}

	origin := spans[0].start
	for _, s := range spans[1:] {
		if s.start.Before(origin) {
			origin = s.start
		}
	}

	markers := make([]Marker, 0, len(spans))
	for _, s := range spans {
		markers = append(markers, Marker{
			Onset:    s.start.Sub(origin).Seconds(),
			Duration: s.end.Sub(s.start).Seconds(),
			Label:    s.label,
		})
	}
	return markers, nil
}

// parseTimestamp accepts RFC 3339 with or without sub-second precision and
// the common naive "2006-01-02T15:04:05" form.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}
