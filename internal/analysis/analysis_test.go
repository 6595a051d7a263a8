package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eegvizlab/eegviz/internal/recording"
)

// stubSpectral returns a fixed power value at 1 Hz bins across the band.
type stubSpectral struct {
	value float64
	fail  bool
	calls int
}

func (s *stubSpectral) PSD(rec recording.Recording, fmin, fmax float64, channels []string) ([]float64, [][]float64, error) {
	s.calls++
	if s.fail {
		return nil, nil, fmt.Errorf("estimator exploded")
	}
	var freqs []float64
	for f := fmin; f <= fmax; f++ {
		freqs = append(freqs, f)
	}
	power := make([][]float64, len(channels))
	for i := range channels {
		row := make([]float64, len(freqs))
		for j := range row {
			row[j] = s.value
		}
		power[i] = row
	}
	return freqs, power, nil
}

func TestBandPower(t *testing.T) {
	rec := recording.NewSineRecording([]string{"C3", "C4"}, 256, 60, 10)
	spec := &stubSpectral{value: 2.5}

	bp, err := BandPower(spec, rec, 8, 13, []string{"C3", "C4"})
	require.NoError(t, err)
	require.Len(t, bp, 2)
	for _, v := range bp {
		assert.Equal(t, 2.5, v)
	}
}

func TestBandPowerErrors(t *testing.T) {
	rec := recording.NewSineRecording([]string{"C3"}, 256, 60, 10)

	_, err := BandPower(nil, rec, 8, 13, []string{"C3"})
	assert.ErrorContains(t, err, "no spectral estimator")

	_, err = BandPower(&stubSpectral{}, rec, 13, 8, []string{"C3"})
	assert.ErrorContains(t, err, "invalid band bounds")

	_, err = BandPower(&stubSpectral{fail: true}, rec, 8, 13, []string{"C3"})
	assert.ErrorContains(t, err, "psd estimation failed")
}

func TestMeanBandOverIntervals(t *testing.T) {
	rec := recording.NewSineRecording([]string{"C3"}, 256, 60, 10)
	spec := &stubSpectral{value: 4}

	bp, err := MeanBandOverIntervals(spec, rec, []Interval{
		{Onset: 0, Duration: 10},
		{Onset: 20, Duration: 10},
	}, 8, 13, []string{"C3"})
	require.NoError(t, err)
	require.Len(t, bp, 1)
	assert.Equal(t, 4.0, bp[0])
	assert.Equal(t, 2, spec.calls)
}

func TestMeanBandOverIntervalsEmpty(t *testing.T) {
	rec := recording.NewSineRecording([]string{"C3"}, 256, 60, 10)

	bp, err := MeanBandOverIntervals(&stubSpectral{}, rec, nil, 8, 13, []string{"C3"})
	require.NoError(t, err)
	assert.Nil(t, bp)
}

func TestCrop(t *testing.T) {
	rec := recording.NewSineRecording([]string{"C3"}, 256, 60, 10)

	seg, err := Crop(rec, 10, 20)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, seg.Duration(), 0.01)
	assert.Equal(t, rec.Channels(), seg.Channels())
}

func TestContrastDB(t *testing.T) {
	out := ContrastDB([]float64{10, 1}, []float64{1, 1})
	require.Len(t, out, 2)
	assert.InDelta(t, 10.0, out[0], 1e-9) // 10*log10(10)
	assert.InDelta(t, 0.0, out[1], 1e-9)
}

func TestRestrictInterval(t *testing.T) {
	start, end := RestrictInterval(15, -5, 20)
	assert.Equal(t, 0.0, start)
	assert.Equal(t, 15.0, end)

	// collapsed interval widens to the floor
	start, end = RestrictInterval(15, 10, 5)
	assert.Equal(t, 10.0, start)
	assert.InDelta(t, 10.25, end, 1e-9)
}

func TestSlidingWindows(t *testing.T) {
	windows := SlidingWindows(0, 10, 4, 2)
	require.Len(t, windows, 4) // 0-4, 2-6, 4-8, 6-10
	assert.Equal(t, Interval{Onset: 6, Duration: 4}, windows[3])

	assert.Nil(t, SlidingWindows(0, 10, 0, 2))
	assert.Nil(t, SlidingWindows(0, 1, 4, 2))
}
