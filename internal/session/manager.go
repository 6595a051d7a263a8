// Package session holds the single authoritative copy of interactive state:
// which recording is loaded, which channels are selected or marked bad, the
// last validated filter parameters, imported markers, the analysis window and
// the export trail. All mutation goes through Manager methods; callers only
// ever see value snapshots.
package session

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/eegvizlab/eegviz/internal/exportlog"
	"github.com/eegvizlab/eegviz/internal/filter"
	"github.com/eegvizlab/eegviz/internal/marker"
	"github.com/eegvizlab/eegviz/internal/recording"
	"github.com/eegvizlab/eegviz/internal/validate"
)

// Manager owns all session state. The zero value is not usable; construct
// with New.
type Manager struct {
	mu sync.RWMutex

	raw     recording.Recording
	derived recording.Recording // filter output, nil until ApplyFilters succeeds

	catalog  []string
	selected map[string]bool
	bad      map[string]bool

	filterParams  *filter.Params
	filterApplied bool

	markers []marker.Marker
	window  validate.Window

	exports exportlog.Store
	prefs   map[string]any
}

// New creates a session with no recording loaded. A nil store falls back to
// the in-memory export log.
func New(store exportlog.Store) *Manager {
	if store == nil {
		store = exportlog.NewMemoryStore()
	}
	return &Manager{
		selected: map[string]bool{},
		bad:      map[string]bool{},
		exports:  store,
		prefs:    defaultPreferences(),
	}
}

func defaultPreferences() map[string]any {
	return map[string]any{
		"default_time_window": 30.0,
		"default_band":        "Alpha",
		"auto_apply_filters":  false,
	}
}

// LoadRecording validates and commits a new recording. On success all derived
// state is reset: the selection covers the full new catalog, bad channels and
// markers are cleared, filter parameters are dropped and the window spans the
// whole recording. The export trail is kept. On failure the prior state is
// left untouched and the validator's reasons are returned.
func (m *Manager) LoadRecording(rec recording.Recording) ([]string, error) {
	if rec == nil {
		return nil, fmt.Errorf("no recording provided")
	}

	ok, warnings := validate.Recording(rec)
	if !ok {
		return warnings, fmt.Errorf("recording rejected: %s", strings.Join(warnings, "; "))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.raw = rec
	m.derived = nil
	m.catalog = rec.Channels()
	m.selected = make(map[string]bool, len(m.catalog))
	for _, ch := range m.catalog {
		m.selected[ch] = true
	}
	m.bad = map[string]bool{}
	m.filterParams = nil
	m.filterApplied = false
	m.markers = nil
	m.window = validate.Window{Start: 0, End: rec.Duration()}

	return warnings, nil
}

// ClearRecording drops the loaded recording and all derived state, returning
// the session to its initial shape. The export trail is kept.
func (m *Manager) ClearRecording() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.raw = nil
	m.derived = nil
	m.catalog = nil
	m.selected = map[string]bool{}
	m.bad = map[string]bool{}
	m.filterParams = nil
	m.filterApplied = false
	m.markers = nil
	m.window = validate.Window{}
}

// HasRecording reports whether a recording is loaded.
func (m *Manager) HasRecording() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.raw != nil
}

// Current returns the recording analyses should run on: the filtered
// derivative when one exists, otherwise the raw recording. Nil when nothing
// is loaded.
func (m *Manager) Current() recording.Recording {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.derived != nil {
		return m.derived
	}
	return m.raw
}

// Raw returns the unfiltered recording, nil when nothing is loaded.
func (m *Manager) Raw() recording.Recording {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.raw
}

// SetChannelSelection replaces the selected set. The request is rejected
// whole if any identifier is outside the catalog; partial commits would leave
// the UI showing a selection the user never asked for.
func (m *Manager) SetChannelSelection(channels []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.raw == nil {
		return fmt.Errorf("no recording loaded")
	}

	_, invalid := validate.ChannelSelection(m.raw, channels)
	if len(invalid) > 0 {
		return fmt.Errorf("unknown channels: %s", strings.Join(invalid, ", "))
	}

	selected := make(map[string]bool, len(channels))
	for _, ch := range channels {
		selected[ch] = true
	}
	m.selected = selected
	return nil
}

// SelectedChannels returns the current selection in catalog order.
func (m *Manager) SelectedChannels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inCatalogOrder(m.selected)
}

// MarkBad adds channels to the bad set. Marking an already-bad channel is a
// no-op, so repeated calls converge.
func (m *Manager) MarkBad(channels []string) error {
	return m.mutateBad(channels, true)
}

// UnmarkBad removes channels from the bad set.
func (m *Manager) UnmarkBad(channels []string) error {
	return m.mutateBad(channels, false)
}

func (m *Manager) mutateBad(channels []string, mark bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.raw == nil {
		return fmt.Errorf("no recording loaded")
	}

	_, invalid := validate.ChannelSelection(m.raw, channels)
	if len(invalid) > 0 {
		return fmt.Errorf("unknown channels: %s", strings.Join(invalid, ", "))
	}

	for _, ch := range channels {
		if mark {
			m.bad[ch] = true
		} else {
			delete(m.bad, ch)
		}
	}
	return nil
}

// BadChannels returns the bad set in catalog order.
func (m *Manager) BadChannels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inCatalogOrder(m.bad)
}

// GoodSelection returns the selected channels that are not marked bad, in
// catalog order. This is the pick set analyses conventionally use.
func (m *Manager) GoodSelection() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for _, ch := range m.catalog {
		if m.selected[ch] && !m.bad[ch] {
			out = append(out, ch)
		}
	}
	return out
}

// ApplyFilters validates the parameters, hands the recording to the executor
// and commits both the parameters and the derived recording only when the
// executor succeeds. On any failure the previously committed parameters and
// derivative stay in place.
func (m *Manager) ApplyFilters(p filter.Params, exec filter.Executor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.raw == nil {
		return fmt.Errorf("no recording loaded")
	}
	if exec == nil {
		return fmt.Errorf("no filter executor available")
	}

	if errs := validate.FilterParams(m.raw, p); len(errs) > 0 {
		return fmt.Errorf("invalid filter parameters: %s", strings.Join(errs, "; "))
	}

	derived, err := exec.Apply(m.raw, p)
	if err != nil {
		return fmt.Errorf("filtering failed: %w", err)
	}

	committed := p
	m.filterParams = &committed
	m.derived = derived
	m.filterApplied = true
	return nil
}

// FilterParams returns the last committed parameters, nil when none were
// applied since the recording was loaded.
func (m *Manager) FilterParams() *filter.Params {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.filterParams == nil {
		return nil
	}
	cp := *m.filterParams
	return &cp
}

// FilterApplied reports whether a filter pipeline has run on the current
// recording.
func (m *Manager) FilterApplied() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterApplied
}

// RejectedRow identifies one marker record skipped during import.
type RejectedRow struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportReport summarizes one marker import batch.
type ImportReport struct {
	Accepted int           `json:"accepted"`
	Rejected []RejectedRow `json:"rejected,omitempty"`
}

// ImportMarkers validates each record independently, clips the survivors to
// the recording duration and appends them. Malformed rows never block the
// rest of the batch; they are identified in the report instead.
func (m *Manager) ImportMarkers(records []marker.Marker) (ImportReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.raw == nil {
		return ImportReport{}, fmt.Errorf("no recording loaded")
	}

	var report ImportReport
	total := m.raw.Duration()
	for i, rec := range records {
		if reason := validate.MarkerRecord(rec); reason != "" {
			report.Rejected = append(report.Rejected, RejectedRow{Index: i, Reason: reason})
			continue
		}
		clipped, ok := rec.ClipToDuration(total)
		if !ok {
			report.Rejected = append(report.Rejected, RejectedRow{Index: i, Reason: "interval lies outside the recording"})
			continue
		}
		m.markers = append(m.markers, clipped)
		report.Accepted++
	}

	return report, nil
}

// Markers returns a copy of the accumulated markers in insertion order.
func (m *Manager) Markers() []marker.Marker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]marker.Marker(nil), m.markers...)
}

// SetTimeWindow clamps the requested interval into the recording bounds and
// commits the corrected window. Corrections are returned as warnings.
func (m *Manager) SetTimeWindow(start, end float64) (validate.Window, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.raw == nil {
		return validate.Window{}, nil, fmt.Errorf("no recording loaded")
	}

	win, warnings := validate.TimeWindow(m.raw, start, end)
	m.window = win
	return win, warnings, nil
}

// TimeWindow returns the committed analysis window.
func (m *Manager) TimeWindow() validate.Window {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.window
}

// RecordExport appends to the export trail. The trail is append-only and
// survives recording replacement.
func (m *Manager) RecordExport(format, path, detail string) (exportlog.Entry, error) {
	return m.exports.Append(format, path, detail)
}

// Exports returns the trail, oldest first.
func (m *Manager) Exports() ([]exportlog.Entry, error) {
	return m.exports.List()
}

// Preference returns the stored preference value, or nil.
func (m *Manager) Preference(key string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs[key]
}

// UpdatePreference sets one user preference.
func (m *Manager) UpdatePreference(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[key] = value
}

// Preferences returns a copy of all preferences.
func (m *Manager) Preferences() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make(map[string]any, len(m.prefs))
	for k, v := range m.prefs {
		cp[k] = v
	}
	return cp
}

// Summary is a read-only projection of the session for display.
type Summary struct {
	Status          string          `json:"status"`
	Label           string          `json:"label,omitempty"`
	NumChannels     int             `json:"n_channels"`
	NumSelected     int             `json:"n_selected"`
	NumBad          int             `json:"n_bad"`
	SampleRate      float64         `json:"sampling_rate"`
	DurationSec     float64         `json:"duration_sec"`
	NumMarkers      int             `json:"n_markers"`
	FilterApplied   bool            `json:"filter_applied"`
	FilterSummary   string          `json:"filter_summary,omitempty"`
	Window          validate.Window `json:"window"`
	NumExports      int             `json:"n_exports"`
	DataIsProcessed bool            `json:"data_is_processed"`
}

// Summary snapshots the current state. Everything in it is a value; mutating
// the result never touches the session.
func (m *Manager) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.raw == nil {
		return Summary{Status: "no_data", NumExports: m.exports.Len()}
	}

	s := Summary{
		Status:          "data_loaded",
		Label:           m.raw.Label(),
		NumChannels:     len(m.catalog),
		NumSelected:     len(m.selected),
		NumBad:          len(m.bad),
		SampleRate:      m.raw.SampleRate(),
		DurationSec:     m.raw.Duration(),
		NumMarkers:      len(m.markers),
		FilterApplied:   m.filterApplied,
		Window:          m.window,
		NumExports:      m.exports.Len(),
		DataIsProcessed: m.derived != nil,
	}
	if m.filterParams != nil {
		s.FilterSummary = m.filterParams.String()
	}
	return s
}

// inCatalogOrder projects a channel set into catalog order; names outside the
// catalog (possible only through internal misuse) sort last alphabetically.
func (m *Manager) inCatalogOrder(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	seen := make(map[string]bool, len(set))
	for _, ch := range m.catalog {
		if set[ch] {
			out = append(out, ch)
			seen[ch] = true
		}
	}
	var extra []string
	for ch := range set {
		if !seen[ch] {
			extra = append(extra, ch)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
