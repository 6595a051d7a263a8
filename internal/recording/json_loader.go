package recording

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSONLoader reads recordings from a plain JSON layout with pre-decoded
// samples. It exists so the tool is usable without an EDF decoder wired in;
// EDF/EDF+/BDF decoding plugs into the same registry via Register.
type JSONLoader struct{}

type jsonRecording struct {
	Label      string      `json:"label"`
	SampleRate float64     `json:"sample_rate"`
	Channels   []string    `json:"channels"`
	Data       [][]float64 `json:"data"`
}

func (JSONLoader) Extensions() []string { return []string{"json"} }

func (JSONLoader) Load(path string) (Recording, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording file: %w", err)
	}

	var jr jsonRecording
	if err := json.Unmarshal(raw, &jr); err != nil {
		return nil, fmt.Errorf("failed to parse recording json: %w", err)
	}
	if jr.SampleRate <= 0 {
		return nil, fmt.Errorf("recording declares non-positive sample rate %g", jr.SampleRate)
	}

	label := jr.Label
	if label == "" {
		label = path
	}
	return NewMemoryRecording(label, jr.Channels, jr.SampleRate, jr.Data)
}

func init() {
	Register(JSONLoader{})
}
