// Package epochs builds fixed-length data slices around marker onsets. The
// extraction here is plain sample slicing through the recording interface;
// anything spectral stays with the analysis collaborators.
package epochs

import (
	"fmt"
	"sort"

	"github.com/eegvizlab/eegviz/internal/marker"
	"github.com/eegvizlab/eegviz/internal/recording"
)

// Params controls epoch extraction. TMin/TMax are relative to the event
// onset, so TMin is typically negative (pre-stimulus).
type Params struct {
	TMin     float64     `json:"tmin"`
	TMax     float64     `json:"tmax"`
	Baseline *[2]float64 `json:"baseline,omitempty"`
	Decim    int         `json:"decim"`
}

// Suggest picks reasonable extraction parameters for the recording's
// sampling rate, targeting roughly 250 Hz effective resolution.
func Suggest(rec recording.Recording) Params {
	sfreq := rec.SampleRate()
	p := Params{
		TMin:     -0.2,
		TMax:     0.8,
		Baseline: &[2]float64{-0.2, 0},
		Decim:    1,
	}
	switch {
	case sfreq < 125:
		p.TMin, p.TMax = -0.1, 0.5
	case sfreq > 250:
		p.Decim = int(sfreq / 250)
	}
	return p
}

// Event is one occurrence of a labeled condition.
type Event struct {
	Onset float64 `json:"onset"`
	Label string  `json:"label"`
	Code  int     `json:"code"`
}

// EventsFromMarkers turns markers whose label appears in labelsToUse into an
// onset-ordered event list plus a label-to-code mapping. Codes are assigned
// alphabetically so the mapping is stable across runs.
func EventsFromMarkers(markers []marker.Marker, labelsToUse []string) ([]Event, map[string]int) {
	use := make(map[string]bool, len(labelsToUse))
	for _, l := range labelsToUse {
		use[l] = true
	}

	present := map[string]bool{}
	for _, m := range markers {
		if use[m.Label] {
			present[m.Label] = true
		}
	}
	labels := make([]string, 0, len(present))
	for l := range present {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	codes := make(map[string]int, len(labels))
	for i, l := range labels {
		codes[l] = i + 1
	}

	var events []Event
	for _, m := range markers {
		if code, ok := codes[m.Label]; ok {
			events = append(events, Event{Onset: m.Onset, Label: m.Label, Code: code})
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Onset < events[j].Onset })
	return events, codes
}

// Epoch is one extracted slice, rows ordered like the requested channels.
type Epoch struct {
	Event Event
	Data  [][]float64
}

// Result carries the extracted epochs and bookkeeping about what was dropped.
type Result struct {
	Epochs      []Epoch
	Channels    []string
	Codes       map[string]int
	LabelCounts map[string]int
	Dropped     int
}

// Extract slices [onset+TMin, onset+TMax] around each matching event. Events
// whose span falls outside the recording are dropped and counted, not
// reported as errors.
func Extract(rec recording.Recording, markers []marker.Marker, labelsToUse []string, channels []string, p Params) (*Result, error) {
	if p.TMax <= p.TMin {
		return nil, fmt.Errorf("epoch window must be positive (tmax > tmin)")
	}
	if len(channels) == 0 {
		channels = rec.Channels()
	}

	events, codes := EventsFromMarkers(markers, labelsToUse)
	if len(events) == 0 {
		return nil, fmt.Errorf("no events found for labels %v", labelsToUse)
	}

	res := &Result{
		Channels:    append([]string(nil), channels...),
		Codes:       codes,
		LabelCounts: map[string]int{},
	}
	for _, ev := range events {
		start := ev.Onset + p.TMin
		end := ev.Onset + p.TMax
		if start < 0 || end > rec.Duration() {
			res.Dropped++
			continue
		}
		data, err := rec.Data(channels, start, end)
		if err != nil {
			res.Dropped++
			continue
		}
		if p.Decim > 1 {
			for i, row := range data {
				data[i] = decimate(row, p.Decim)
			}
		}
		res.Epochs = append(res.Epochs, Epoch{Event: ev, Data: data})
		res.LabelCounts[ev.Label]++
	}

	if len(res.Epochs) == 0 {
		return nil, fmt.Errorf("no valid epochs found for labels %v", labelsToUse)
	}
	return res, nil
}

// Average returns the per-channel mean across all epochs of one label
// ("" averages every epoch). All epochs share a length by construction.
func (r *Result) Average(label string) [][]float64 {
	var picked []Epoch
	for _, e := range r.Epochs {
		if label == "" || e.Event.Label == label {
			picked = append(picked, e)
		}
	}
	if len(picked) == 0 {
		return nil
	}

	nch := len(picked[0].Data)
	out := make([][]float64, nch)
	for c := 0; c < nch; c++ {
		n := len(picked[0].Data[c])
		row := make([]float64, n)
		for _, e := range picked {
			for j := 0; j < n && j < len(e.Data[c]); j++ {
				row[j] += e.Data[c][j]
			}
		}
		for j := range row {
			row[j] /= float64(len(picked))
		}
		out[c] = row
	}
	return out
}

func decimate(row []float64, factor int) []float64 {
	out := make([]float64, 0, len(row)/factor+1)
	for i := 0; i < len(row); i += factor {
		out = append(out, row[i])
	}
	return out
}
