package recording

import (
	"fmt"
	"math"
)

// Recording is the handle for one loaded EEG dataset. Decoding a source file
// into a Recording is the loader's job; everything downstream (session state,
// validation, analysis bookkeeping) only goes through this interface.
type Recording interface {
	// Label identifies the recording for display (typically the source filename).
	Label() string

	// Channels returns the channel catalog in acquisition order.
	Channels() []string

	// SampleRate returns the sampling frequency in Hz.
	SampleRate() float64

	// Duration returns the recording length in seconds.
	Duration() float64

	// NumSamples returns the number of samples per channel.
	NumSamples() int

	// Data extracts the [start, end) second range for the given channels.
	// The result is one row per requested channel, in request order.
	Data(channels []string, start, end float64) ([][]float64, error)
}

// MemoryRecording holds channel data fully in memory. It backs the synthetic
// loader and is the concrete type tests work with.
type MemoryRecording struct {
	label      string
	channels   []string
	sampleRate float64
	samples    [][]float64 // one row per channel
}

// NewMemoryRecording builds a recording from pre-decoded channel data.
// Every row of samples must have the same length.
func NewMemoryRecording(label string, channels []string, sampleRate float64, samples [][]float64) (*MemoryRecording, error) {
	if len(channels) != len(samples) {
		return nil, fmt.Errorf("channel count %d does not match data rows %d", len(channels), len(samples))
	}
	n := -1
	for i, row := range samples {
		if n == -1 {
			n = len(row)
		} else if len(row) != n {
			return nil, fmt.Errorf("channel %q has %d samples, expected %d", channels[i], len(row), n)
		}
	}
	return &MemoryRecording{
		label:      label,
		channels:   append([]string(nil), channels...),
		sampleRate: sampleRate,
		samples:    samples,
	}, nil
}

// NewSineRecording generates a synthetic recording where every channel carries
// a pure sine at the given frequency. Used by tests and the demo loader.
func NewSineRecording(channels []string, sampleRate, durationSec, freq float64) *MemoryRecording {
	n := int(durationSec * sampleRate)
	samples := make([][]float64, len(channels))
	for i := range channels {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = math.Sin(2 * math.Pi * freq * float64(j) / sampleRate)
		}
		samples[i] = row
	}
	rec, _ := NewMemoryRecording(fmt.Sprintf("sine_%gHz", freq), channels, sampleRate, samples)
	return rec
}

func (r *MemoryRecording) Label() string { return r.label }

func (r *MemoryRecording) Channels() []string {
	return append([]string(nil), r.channels...)
}

func (r *MemoryRecording) SampleRate() float64 { return r.sampleRate }

func (r *MemoryRecording) NumSamples() int {
	if len(r.samples) == 0 {
		return 0
	}
	return len(r.samples[0])
}

func (r *MemoryRecording) Duration() float64 {
	if r.sampleRate <= 0 {
		return 0
	}
	return float64(r.NumSamples()) / r.sampleRate
}

// Data extracts the [start, end) second range for the given channels.
func (r *MemoryRecording) Data(channels []string, start, end float64) ([][]float64, error) {
	if start < 0 || end > r.Duration() || start >= end {
		return nil, fmt.Errorf("range [%.3f, %.3f) outside recording of %.3fs", start, end, r.Duration())
	}

	index := make(map[string]int, len(r.channels))
	for i, ch := range r.channels {
		index[ch] = i
	}

	lo := int(start * r.sampleRate)
	hi := int(end * r.sampleRate)
	if hi > r.NumSamples() {
		hi = r.NumSamples()
	}

	out := make([][]float64, 0, len(channels))
	for _, ch := range channels {
		i, ok := index[ch]
		if !ok {
			return nil, fmt.Errorf("unknown channel %q", ch)
		}
		out = append(out, append([]float64(nil), r.samples[i][lo:hi]...))
	}
	return out, nil
}

// Relabel returns a shallow copy of the recording under a new label. Derived
// recordings (filter output) reuse this to keep their provenance visible.
func (r *MemoryRecording) Relabel(label string) *MemoryRecording {
	cp := *r
	cp.label = label
	return &cp
}
