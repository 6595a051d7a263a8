package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eegvizlab/eegviz/internal/analysis"
	"github.com/eegvizlab/eegviz/internal/config"
	"github.com/eegvizlab/eegviz/internal/filter"
	"github.com/eegvizlab/eegviz/internal/recording"
)

// flatSpectral returns constant power over 1 Hz bins, enough to exercise the
// aggregation path without a real estimator.
type flatSpectral struct{ value float64 }

func (s flatSpectral) PSD(rec recording.Recording, fmin, fmax float64, channels []string) ([]float64, [][]float64, error) {
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

func writeRecordingFixture(t *testing.T, dir string, durationSec float64) string {
	t.Helper()

	n := int(durationSec * 128)
	row := make([]float64, n)
	for i := range row {
		row[i] = float64(i % 7)
	}
	data := [][]float64{row, row, row}

	payload := map[string]any{
		"label":       "fixture",
		"sample_rate": 128.0,
		"channels":    []string{"C3", "C4", "CZ"},
		"data":        data,
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	path := filepath.Join(dir, "rec.json")
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

func newTestService(t *testing.T) (Service, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = dir
	svc := New(cfg, nil, nil, flatSpectral{value: 3})
	return svc, dir
}

func TestLoadAndSummary(t *testing.T) {
	svc, dir := newTestService(t)
	path := writeRecordingFixture(t, dir, 60)

	warnings, err := svc.LoadRecording(path)
	require.NoError(t, err)
	_ = warnings

	s := svc.Summary()
	assert.Equal(t, "data_loaded", s.Status)
	assert.Equal(t, 3, s.NumChannels)
	assert.Equal(t, 128.0, s.SampleRate)
	assert.Equal(t, []string{"C3", "C4", "CZ"}, svc.Channels())
}

func TestApplyDefaultFilters(t *testing.T) {
	svc, dir := newTestService(t)
	_, err := svc.LoadRecording(writeRecordingFixture(t, dir, 60))
	require.NoError(t, err)

	p := svc.DefaultFilterParams()
	require.NotNil(t, p.HighPass)
	require.NotNil(t, p.LowPass)
	require.NotNil(t, p.Notch)

	require.NoError(t, svc.ApplyFilters(p))
	assert.True(t, svc.Summary().FilterApplied)
}

func TestApplyFiltersRejectsNyquistViolation(t *testing.T) {
	svc, dir := newTestService(t)
	_, err := svc.LoadRecording(writeRecordingFixture(t, dir, 60))
	require.NoError(t, err)

	// 128 Hz recording: nyquist 64
	err = svc.ApplyFilters(filter.Params{LowPass: filter.Float(80)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nyquist")
	assert.Nil(t, svc.FilterParams())
}

func TestImportMarkerFileCSV(t *testing.T) {
	svc, dir := newTestService(t)
	_, err := svc.LoadRecording(writeRecordingFixture(t, dir, 60))
	require.NoError(t, err)

	markerPath := filepath.Join(dir, "markers.csv")
	csv := "latency,duration,type\n1,2,blink\n-4,1,bad\n10,5,task\n"
	require.NoError(t, os.WriteFile(markerPath, []byte(csv), 0644))

	report, err := svc.ImportMarkerFile(markerPath)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Accepted)
	assert.Len(t, report.Rejected, 1)
	assert.Len(t, svc.Markers(), 2)
}

func TestImportMarkerFileUnsupported(t *testing.T) {
	svc, dir := newTestService(t)
	_, err := svc.LoadRecording(writeRecordingFixture(t, dir, 60))
	require.NoError(t, err)

	path := filepath.Join(dir, "markers.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err = svc.ImportMarkerFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported marker format")
}

func TestBandPower(t *testing.T) {
	svc, dir := newTestService(t)
	_, err := svc.LoadRecording(writeRecordingFixture(t, dir, 60))
	require.NoError(t, err)

	result, err := svc.BandPower("Alpha")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", result.Band.Name)
	assert.Len(t, result.Power, 3)
	for _, v := range result.Power {
		assert.Equal(t, 3.0, v)
	}
}

func TestBandPowerUnknownBand(t *testing.T) {
	svc, dir := newTestService(t)
	_, err := svc.LoadRecording(writeRecordingFixture(t, dir, 60))
	require.NoError(t, err)

	_, err = svc.BandPower("ultraviolet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown band")
}

func TestBandPowerWithoutEstimator(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = dir
	svc := New(cfg, nil, nil, nil)

	_, err := svc.LoadRecording(writeRecordingFixture(t, dir, 60))
	require.NoError(t, err)

	_, err = svc.BandPower("Alpha")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no spectral estimator")
}

func TestBandContrast(t *testing.T) {
	svc, dir := newTestService(t)
	_, err := svc.LoadRecording(writeRecordingFixture(t, dir, 60))
	require.NoError(t, err)

	contrast, err := svc.BandContrast("Alpha",
		analysis.Interval{Onset: 0, Duration: 10},
		analysis.Interval{Onset: 30, Duration: 10})
	require.NoError(t, err)
	require.Len(t, contrast, 3)
	// identical flat power before and after: 0 dB
	for _, v := range contrast {
		assert.InDelta(t, 0.0, v, 1e-9)
	}
}

func TestExportsAreRecorded(t *testing.T) {
	svc, dir := newTestService(t)
	_, err := svc.LoadRecording(writeRecordingFixture(t, dir, 60))
	require.NoError(t, err)

	markerPath := filepath.Join(dir, "markers.csv")
	require.NoError(t, os.WriteFile(markerPath, []byte("latency,duration,type\n1,2,blink\n"), 0644))
	_, err = svc.ImportMarkerFile(markerPath)
	require.NoError(t, err)

	e1, err := svc.ExportMarkers()
	require.NoError(t, err)
	assert.FileExists(t, e1.Path)

	e2, err := svc.ExportSummary()
	require.NoError(t, err)
	assert.FileExists(t, e2.Path)

	e3, err := svc.ExportBandPower("Alpha")
	require.NoError(t, err)
	assert.FileExists(t, e3.Path)

	entries, err := svc.Exports()
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestExportMarkersWithoutMarkers(t *testing.T) {
	svc, dir := newTestService(t)
	_, err := svc.LoadRecording(writeRecordingFixture(t, dir, 60))
	require.NoError(t, err)

	_, err = svc.ExportMarkers()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no markers")
}
