package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eegvizlab/eegviz/internal/filter"
	"github.com/eegvizlab/eegviz/internal/marker"
	"github.com/eegvizlab/eegviz/internal/recording"
)

func testRecording(t *testing.T) recording.Recording {
	t.Helper()
	return recording.NewSineRecording([]string{"C3", "C4", "CZ"}, 256, 15, 10)
}

func TestRecordingValidation(t *testing.T) {
	rec := testRecording(t)
	ok, warnings := Recording(rec)
	assert.True(t, ok)
	// 15 seconds is below the short-recording threshold
	assert.NotEmpty(t, warnings)
}

func TestRecordingValidationRejectsEmptyCatalog(t *testing.T) {
	rec, err := recording.NewMemoryRecording("empty", nil, 256, nil)
	require.NoError(t, err)

	ok, warnings := Recording(rec)
	assert.False(t, ok)
	assert.NotEmpty(t, warnings)
}

func TestRecordingValidationRejectsDuplicateChannels(t *testing.T) {
	rec := recording.NewSineRecording([]string{"C3", "C3"}, 256, 60, 10)
	ok, warnings := Recording(rec)
	assert.False(t, ok)
	assert.Contains(t, warnings[len(warnings)-1], "duplicate channel")
}

func TestRecordingValidationWarnsOnLowRate(t *testing.T) {
	rec := recording.NewSineRecording([]string{"C3"}, 32, 60, 4)
	ok, warnings := Recording(rec)
	assert.True(t, ok)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "low sampling rate")
}

func TestFilterParamsAccepted(t *testing.T) {
	rec := testRecording(t)
	errs := FilterParams(rec, filter.Params{
		HighPass: filter.Float(1),
		LowPass:  filter.Float(45),
		Notch:    filter.Float(60),
	})
	assert.Empty(t, errs)
}

func TestFilterParamsInvertedBounds(t *testing.T) {
	rec := testRecording(t)
	errs := FilterParams(rec, filter.Params{
		HighPass: filter.Float(30),
		LowPass:  filter.Float(10),
	})
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "high-pass frequency must be < low-pass frequency")
}

func TestFilterParamsNyquist(t *testing.T) {
	rec := testRecording(t) // 256 Hz, nyquist 128
	errs := FilterParams(rec, filter.Params{LowPass: filter.Float(200)})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Nyquist")
}

func TestFilterParamsResample(t *testing.T) {
	rec := testRecording(t)

	errs := FilterParams(rec, filter.Params{Resample: filter.Float(512)})
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "cannot upsample")

	// resample below 2x low-pass
	errs = FilterParams(rec, filter.Params{
		LowPass:  filter.Float(45),
		Resample: filter.Float(64),
	})
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "2 x low-pass")
}

func TestTimeWindowClampsOutOfRange(t *testing.T) {
	rec := testRecording(t) // 15 seconds

	win, warnings := TimeWindow(rec, -5, 20)
	assert.Equal(t, 0.0, win.Start)
	assert.Equal(t, 15.0, win.End)
	assert.Len(t, warnings, 2)
}

func TestTimeWindowMinimumWidth(t *testing.T) {
	rec := testRecording(t)

	win, warnings := TimeWindow(rec, 5, 5)
	assert.Equal(t, 5.0, win.Start)
	assert.InDelta(t, 5.1, win.End, 1e-9)
	assert.NotEmpty(t, warnings)
}

func TestTimeWindowPassThrough(t *testing.T) {
	rec := testRecording(t)

	win, warnings := TimeWindow(rec, 2, 10)
	assert.Equal(t, Window{Start: 2, End: 10}, win)
	assert.Empty(t, warnings)
}

func TestMarkerRecord(t *testing.T) {
	assert.Empty(t, MarkerRecord(marker.Marker{Onset: 1, Duration: 2, Label: "blink"}))
	assert.Contains(t, MarkerRecord(marker.Marker{Onset: -1, Duration: 2, Label: "blink"}), "onset")
	assert.Contains(t, MarkerRecord(marker.Marker{Onset: 1, Duration: -2, Label: "blink"}), "duration")
	assert.Contains(t, MarkerRecord(marker.Marker{Onset: 1, Duration: 2}), "label")
}

func TestChannelSelection(t *testing.T) {
	rec := testRecording(t)

	valid, invalid := ChannelSelection(rec, []string{"C3", "FP1", "CZ"})
	assert.Equal(t, []string{"C3", "CZ"}, valid)
	assert.Equal(t, []string{"FP1"}, invalid)
}

func TestEpochParams(t *testing.T) {
	rec := testRecording(t)

	assert.Empty(t, EpochParams(rec, -0.2, 0.8, &[2]float64{-0.2, 0}))

	warnings := EpochParams(rec, 0.5, 0.2, nil)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "must be positive")

	warnings = EpochParams(rec, -0.2, 0.8, &[2]float64{-0.2, 0.5})
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "ends at or before")
}
