package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eegvizlab/eegviz/internal/analysis"
	"github.com/eegvizlab/eegviz/internal/config"
	"github.com/eegvizlab/eegviz/internal/exportlog"
	"github.com/eegvizlab/eegviz/internal/filter"
	"github.com/eegvizlab/eegviz/internal/marker"
	"github.com/eegvizlab/eegviz/internal/recording"
	"github.com/eegvizlab/eegviz/internal/session"
	"github.com/eegvizlab/eegviz/internal/validate"
)

// Service is the single API the CLI and the HTTP server operate through.
// Every mutation routes through the session core, so the two surfaces always
// observe the same state.
type Service interface {
	// Recording operations
	LoadRecording(path string) ([]string, error)
	ClearRecording()
	Summary() session.Summary

	// Channel operations
	Channels() []string
	SelectedChannels() []string
	SelectChannels(channels []string) error
	MarkBad(channels []string) error
	UnmarkBad(channels []string) error
	BadChannels() []string

	// Filter operations
	ApplyFilters(p filter.Params) error
	DefaultFilterParams() filter.Params
	FilterParams() *filter.Params

	// Marker operations
	ImportMarkerFile(path string) (session.ImportReport, error)
	Markers() []marker.Marker

	// Window operations
	SetWindow(start, end float64) (validate.Window, []string, error)
	Window() validate.Window

	// Analysis operations
	BandPower(bandName string) (*BandPowerResult, error)
	BandContrast(bandName string, before, after analysis.Interval) ([]float64, error)

	// Export operations
	ExportMarkers() (exportlog.Entry, error)
	ExportSummary() (exportlog.Entry, error)
	ExportBandPower(bandName string) (exportlog.Entry, error)
	Exports() ([]exportlog.Entry, error)

	// Preference operations
	Preferences() map[string]any
	UpdatePreference(key string, value any)
}

// BandPowerResult pairs per-channel power values with the band and channel
// names they belong to.
type BandPowerResult struct {
	Band     config.Band `json:"band"`
	Channels []string    `json:"channels"`
	Power    []float64   `json:"power"`
}

type eegService struct {
	cfg      *config.Config
	session  *session.Manager
	executor filter.Executor
	spectral analysis.Spectral
}

// New assembles a service around the given collaborators. A nil executor
// falls back to the pass-through executor; spectral may stay nil, in which
// case band power operations report that no estimator is wired.
func New(cfg *config.Config, store exportlog.Store, executor filter.Executor, spectral analysis.Spectral) Service {
	if executor == nil {
		executor = filter.IdentityExecutor{}
	}
	return &eegService{
		cfg:      cfg,
		session:  session.New(store),
		executor: executor,
		spectral: spectral,
	}
}

func (s *eegService) LoadRecording(path string) ([]string, error) {
	slog.Debug("Service.LoadRecording called", "path", path)

	rec, err := recording.Load(path)
	if err != nil {
		slog.Error("Service.LoadRecording failed", "error", err)
		return nil, err
	}

	warnings, err := s.session.LoadRecording(rec)
	if err != nil {
		slog.Error("Service.LoadRecording rejected", "error", err)
		return warnings, err
	}

	slog.Info("recording loaded",
		"label", rec.Label(),
		"channels", len(rec.Channels()),
		"sample_rate", rec.SampleRate(),
		"duration_sec", rec.Duration())
	for _, w := range warnings {
		slog.Warn("recording warning", "warning", w)
	}
	return warnings, nil
}

func (s *eegService) ClearRecording() { s.session.ClearRecording() }

func (s *eegService) Summary() session.Summary { return s.session.Summary() }

func (s *eegService) Channels() []string {
	rec := s.session.Raw()
	if rec == nil {
		return nil
	}
	return rec.Channels()
}

func (s *eegService) SelectedChannels() []string { return s.session.SelectedChannels() }

func (s *eegService) SelectChannels(channels []string) error {
	return s.session.SetChannelSelection(channels)
}

func (s *eegService) MarkBad(channels []string) error   { return s.session.MarkBad(channels) }
func (s *eegService) UnmarkBad(channels []string) error { return s.session.UnmarkBad(channels) }
func (s *eegService) BadChannels() []string             { return s.session.BadChannels() }

func (s *eegService) ApplyFilters(p filter.Params) error {
	slog.Debug("Service.ApplyFilters called", "params", p.String())
	if err := s.session.ApplyFilters(p, s.executor); err != nil {
		slog.Error("Service.ApplyFilters failed", "error", err)
		return err
	}
	slog.Info("filters applied", "pipeline", p.String())
	return nil
}

// DefaultFilterParams builds filter parameters from the configured defaults,
// skipping any default set to 0.
func (s *eegService) DefaultFilterParams() filter.Params {
	var p filter.Params
	if s.cfg.Filter.HighPass > 0 {
		p.HighPass = filter.Float(s.cfg.Filter.HighPass)
	}
	if s.cfg.Filter.LowPass > 0 {
		p.LowPass = filter.Float(s.cfg.Filter.LowPass)
	}
	if s.cfg.Filter.Notch > 0 {
		p.Notch = filter.Float(s.cfg.Filter.Notch)
	}
	return p
}

func (s *eegService) FilterParams() *filter.Params { return s.session.FilterParams() }

// ImportMarkerFile reads a marker file (csv or json by extension), validates
// each record through the session and returns the acceptance report.
func (s *eegService) ImportMarkerFile(path string) (session.ImportReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return session.ImportReport{}, fmt.Errorf("failed to open marker file: %w", err)
	}
	defer f.Close()

	var records []marker.Marker
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = marker.ReadCSV(f)
	case ".json":
		records, err = marker.ReadJSON(f)
	default:
		return session.ImportReport{}, fmt.Errorf("unsupported marker format %q (want .csv or .json)", filepath.Ext(path))
	}
	if err != nil {
		return session.ImportReport{}, err
	}

	report, err := s.session.ImportMarkers(records)
	if err != nil {
		return report, err
	}
	slog.Info("markers imported", "file", path, "accepted", report.Accepted, "rejected", len(report.Rejected))
	return report, nil
}

func (s *eegService) Markers() []marker.Marker { return s.session.Markers() }

func (s *eegService) SetWindow(start, end float64) (validate.Window, []string, error) {
	win, warnings, err := s.session.SetTimeWindow(start, end)
	if err != nil {
		return win, warnings, err
	}
	for _, w := range warnings {
		slog.Warn("window corrected", "warning", w)
	}
	return win, warnings, nil
}

func (s *eegService) Window() validate.Window { return s.session.TimeWindow() }

// BandPower computes the mean power per selected good channel over the
// configured band, restricted to the committed analysis window.
func (s *eegService) BandPower(bandName string) (*BandPowerResult, error) {
	band, err := s.cfg.BandByName(bandName)
	if err != nil {
		return nil, err
	}

	rec := s.session.Current()
	if rec == nil {
		return nil, fmt.Errorf("no recording loaded")
	}

	channels := s.session.GoodSelection()
	if len(channels) == 0 {
		return nil, fmt.Errorf("no usable channels selected")
	}

	win := s.session.TimeWindow()
	seg, err := analysis.Crop(rec, win.Start, win.End)
	if err != nil {
		return nil, fmt.Errorf("failed to crop analysis window: %w", err)
	}

	power, err := analysis.BandPower(s.spectral, seg, band.Low, band.High, channels)
	if err != nil {
		return nil, err
	}
	return &BandPowerResult{Band: band, Channels: channels, Power: power}, nil
}

// BandContrast compares band power between two intervals (e.g. before/after
// an event) and returns the per-channel ratio in dB.
func (s *eegService) BandContrast(bandName string, before, after analysis.Interval) ([]float64, error) {
	band, err := s.cfg.BandByName(bandName)
	if err != nil {
		return nil, err
	}

	rec := s.session.Current()
	if rec == nil {
		return nil, fmt.Errorf("no recording loaded")
	}
	channels := s.session.GoodSelection()
	if len(channels) == 0 {
		return nil, fmt.Errorf("no usable channels selected")
	}

	pa, err := analysis.MeanBandOverIntervals(s.spectral, rec, []analysis.Interval{before}, band.Low, band.High, channels)
	if err != nil {
		return nil, err
	}
	pb, err := analysis.MeanBandOverIntervals(s.spectral, rec, []analysis.Interval{after}, band.Low, band.High, channels)
	if err != nil {
		return nil, err
	}
	if pa == nil || pb == nil {
		return nil, fmt.Errorf("intervals produced no usable segments")
	}
	return analysis.ContrastDB(pb, pa), nil
}

// ExportMarkers writes the marker table as CSV under the data directory and
// records the export.
func (s *eegService) ExportMarkers() (exportlog.Entry, error) {
	markers := s.session.Markers()
	if len(markers) == 0 {
		return exportlog.Entry{}, fmt.Errorf("no markers to export")
	}

	path, err := s.writeExport("markers", "csv", marker.ToCSV(markers))
	if err != nil {
		return exportlog.Entry{}, err
	}
	return s.recordExport("csv", path, fmt.Sprintf("%d markers", len(markers)))
}

// ExportSummary writes the session summary as YAML and records the export.
func (s *eegService) ExportSummary() (exportlog.Entry, error) {
	data, err := yaml.Marshal(s.session.Summary())
	if err != nil {
		return exportlog.Entry{}, fmt.Errorf("failed to marshal summary: %w", err)
	}

	path, err := s.writeExport("summary", "yaml", data)
	if err != nil {
		return exportlog.Entry{}, err
	}
	return s.recordExport("yaml", path, "session summary")
}

// ExportBandPower computes band power and writes it as a channel,band,power
// CSV, recording the export.
func (s *eegService) ExportBandPower(bandName string) (exportlog.Entry, error) {
	result, err := s.BandPower(bandName)
	if err != nil {
		return exportlog.Entry{}, err
	}

	var sb strings.Builder
	sb.WriteString("channel,band,power\n")
	for i, ch := range result.Channels {
		fmt.Fprintf(&sb, "%s,%s,%g\n", ch, result.Band.Name, result.Power[i])
	}

	path, err := s.writeExport("bandpower_"+strings.ToLower(result.Band.Name), "csv", []byte(sb.String()))
	if err != nil {
		return exportlog.Entry{}, err
	}
	return s.recordExport("csv", path, fmt.Sprintf("%s band power, %d channels", result.Band.Name, len(result.Channels)))
}

func (s *eegService) Exports() ([]exportlog.Entry, error) { return s.session.Exports() }

func (s *eegService) Preferences() map[string]any { return s.session.Preferences() }

func (s *eegService) UpdatePreference(key string, value any) {
	s.session.UpdatePreference(key, value)
}

func (s *eegService) writeExport(stem, ext string, data []byte) (string, error) {
	dir := filepath.Join(s.cfg.DataDir, "exports")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.%s", stem, time.Now().Format("20060102_150405"), ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

func (s *eegService) recordExport(format, path, detail string) (exportlog.Entry, error) {
	entry, err := s.session.RecordExport(format, path, detail)
	if err != nil {
		return entry, err
	}
	slog.Info("export recorded", "id", entry.ID, "format", format, "path", path)
	return entry, nil
}

// MarshalJSON keeps BandPowerResult stable for API responses even when the
// channel list is empty.
func (r *BandPowerResult) MarshalJSON() ([]byte, error) {
	type alias BandPowerResult
	a := alias(*r)
	if a.Channels == nil {
		a.Channels = []string{}
	}
	if a.Power == nil {
		a.Power = []float64{}
	}
	return json.Marshal(a)
}
