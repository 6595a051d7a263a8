package epochs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eegvizlab/eegviz/internal/marker"
	"github.com/eegvizlab/eegviz/internal/recording"
)

func testMarkers() []marker.Marker {
	return []marker.Marker{
		{Onset: 5, Duration: 0, Label: "target"},
		{Onset: 10, Duration: 0, Label: "standard"},
		{Onset: 15, Duration: 0, Label: "target"},
		{Onset: 0.05, Duration: 0, Label: "target"}, // too close to the edge for tmin=-0.2
		{Onset: 20, Duration: 0, Label: "noise"},
	}
}

func TestEventsFromMarkers(t *testing.T) {
	events, codes := EventsFromMarkers(testMarkers(), []string{"target", "standard"})

	require.Len(t, events, 4)
	assert.Equal(t, map[string]int{"standard": 1, "target": 2}, codes)
	// onset ordered
	assert.Equal(t, 0.05, events[0].Onset)
	assert.Equal(t, "target", events[0].Label)
}

func TestEventsFromMarkersNoMatch(t *testing.T) {
	events, codes := EventsFromMarkers(testMarkers(), []string{"absent"})
	assert.Empty(t, events)
	assert.Empty(t, codes)
}

func TestExtract(t *testing.T) {
	rec := recording.NewSineRecording([]string{"C3", "C4"}, 100, 30, 10)

	res, err := Extract(rec, testMarkers(), []string{"target"}, nil, Params{TMin: -0.2, TMax: 0.8})
	require.NoError(t, err)

	// events at 5 and 15 fit; the one at 0.05 starts before the recording
	assert.Len(t, res.Epochs, 2)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, map[string]int{"target": 2}, res.LabelCounts)

	// one second at 100 Hz
	require.Len(t, res.Epochs[0].Data, 2)
	assert.Len(t, res.Epochs[0].Data[0], 100)
}

func TestExtractDecimates(t *testing.T) {
	rec := recording.NewSineRecording([]string{"C3"}, 100, 30, 10)

	res, err := Extract(rec, testMarkers(), []string{"standard"}, nil, Params{TMin: 0, TMax: 1, Decim: 2})
	require.NoError(t, err)
	require.Len(t, res.Epochs, 1)
	assert.Len(t, res.Epochs[0].Data[0], 50)
}

func TestExtractErrors(t *testing.T) {
	rec := recording.NewSineRecording([]string{"C3"}, 100, 30, 10)

	_, err := Extract(rec, testMarkers(), []string{"target"}, nil, Params{TMin: 1, TMax: 0})
	assert.ErrorContains(t, err, "tmax > tmin")

	_, err = Extract(rec, testMarkers(), []string{"absent"}, nil, Params{TMin: 0, TMax: 1})
	assert.ErrorContains(t, err, "no events found")
}

func TestAverage(t *testing.T) {
	rec := recording.NewSineRecording([]string{"C3"}, 100, 30, 10)

	res, err := Extract(rec, testMarkers(), []string{"target", "standard"}, nil, Params{TMin: 0, TMax: 0.5})
	require.NoError(t, err)

	all := res.Average("")
	require.Len(t, all, 1)
	assert.Len(t, all[0], 50)

	targets := res.Average("target")
	require.NotNil(t, targets)

	assert.Nil(t, res.Average("absent"))
}

func TestSuggest(t *testing.T) {
	p := Suggest(recording.NewSineRecording([]string{"C3"}, 1000, 10, 10))
	assert.Equal(t, 4, p.Decim)

	p = Suggest(recording.NewSineRecording([]string{"C3"}, 100, 10, 10))
	assert.Equal(t, 1, p.Decim)
	assert.Equal(t, -0.1, p.TMin)
}
