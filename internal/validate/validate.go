// Package validate holds the stateless checks run before any session state
// mutation is accepted. Every function here is total over its declared
// inputs: expected-invalid input comes back as a structured result, never as
// a panic or an error for the caller to untangle.
package validate

import (
	"fmt"

	"github.com/eegvizlab/eegviz/internal/filter"
	"github.com/eegvizlab/eegviz/internal/marker"
	"github.com/eegvizlab/eegviz/internal/recording"
)

// Soft-limit thresholds that produce warnings, not failures.
const (
	lowSampleRateHz    = 64.0
	highSampleRateHz   = 2000.0
	shortRecordingSec  = 30.0
	longRecordingMin   = 60.0
	minWindowWidthSec  = 0.1
	shortEpochSec      = 0.1
	longEpochSec       = 30.0
	fewEpochSamples    = 10
)

// Recording checks a freshly decoded recording. ok=false means the recording
// is unusable and must not be committed; with ok=true the warnings are
// advisory only.
func Recording(rec recording.Recording) (ok bool, warnings []string) {
	ok = true

	if len(rec.Channels()) == 0 {
		warnings = append(warnings, "no channels found")
		ok = false
	}
	if rec.NumSamples() == 0 {
		warnings = append(warnings, "no data samples found")
		ok = false
	}

	sfreq := rec.SampleRate()
	if sfreq <= 0 {
		warnings = append(warnings, "invalid sampling frequency")
		ok = false
	} else {
		if sfreq < lowSampleRateHz {
			warnings = append(warnings, fmt.Sprintf("low sampling rate (%g Hz) may limit analysis", sfreq))
		} else if sfreq > highSampleRateHz {
			warnings = append(warnings, fmt.Sprintf("very high sampling rate (%g Hz) may slow processing", sfreq))
		}

		dur := rec.Duration()
		if dur < shortRecordingSec {
			warnings = append(warnings, fmt.Sprintf("very short recording (%.1f seconds)", dur))
		} else if dur/60 > longRecordingMin {
			warnings = append(warnings, fmt.Sprintf("long recording (%.0f minutes) may slow processing", dur/60))
		}
	}

	seen := make(map[string]bool, len(rec.Channels()))
	for _, ch := range rec.Channels() {
		if seen[ch] {
			warnings = append(warnings, fmt.Sprintf("duplicate channel identifier %q", ch))
			ok = false
		}
		seen[ch] = true
	}

	return ok, warnings
}

// FilterParams checks filter cutoffs against the recording's Nyquist limit
// and against each other. An empty result means the parameters are usable.
func FilterParams(rec recording.Recording, p filter.Params) []string {
	var errs []string
	nyquist := rec.SampleRate() / 2

	if p.HighPass != nil {
		switch {
		case *p.HighPass < 0:
			errs = append(errs, "high-pass frequency must be positive")
		case *p.HighPass >= nyquist:
			errs = append(errs, fmt.Sprintf("high-pass frequency (%g Hz) must be < Nyquist (%g Hz)", *p.HighPass, nyquist))
		}
	}

	if p.LowPass != nil {
		switch {
		case *p.LowPass <= 0:
			errs = append(errs, "low-pass frequency must be positive")
		case *p.LowPass >= nyquist:
			errs = append(errs, fmt.Sprintf("low-pass frequency (%g Hz) must be < Nyquist (%g Hz)", *p.LowPass, nyquist))
		}
	}

	if p.HighPass != nil && p.LowPass != nil && *p.HighPass >= *p.LowPass {
		errs = append(errs, "high-pass frequency must be < low-pass frequency")
	}

	if p.Notch != nil {
		switch {
		case *p.Notch <= 0:
			errs = append(errs, "notch frequency must be positive")
		case *p.Notch >= nyquist:
			errs = append(errs, fmt.Sprintf("notch frequency (%g Hz) must be < Nyquist (%g Hz)", *p.Notch, nyquist))
		}
	}

	if p.Resample != nil {
		switch {
		case *p.Resample <= 0:
			errs = append(errs, "resample frequency must be positive")
		case *p.Resample > rec.SampleRate():
			errs = append(errs, "cannot upsample: resample frequency must be <= original sampling rate")
		default:
			if p.LowPass != nil && *p.Resample < 2**p.LowPass {
				errs = append(errs, fmt.Sprintf("resample frequency (%g Hz) must be > 2 x low-pass frequency (%g Hz)", *p.Resample, *p.LowPass))
			}
		}
	}

	return errs
}

// Window is a validated analysis interval in seconds.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TimeWindow clamps a requested interval into the recording bounds instead of
// rejecting it, and enforces a minimum width. Every correction made is
// reported as a warning so the caller can surface it.
func TimeWindow(rec recording.Recording, start, end float64) (Window, []string) {
	var warnings []string
	maxTime := rec.Duration()

	correctedStart := clamp(start, 0, maxTime)
	if correctedStart != start {
		warnings = append(warnings, fmt.Sprintf("start time corrected: %.2f -> %.2fs", start, correctedStart))
	}

	correctedEnd := clamp(end, correctedStart, maxTime)
	if correctedEnd != end {
		warnings = append(warnings, fmt.Sprintf("end time corrected: %.2f -> %.2fs", end, correctedEnd))
	}

	if correctedEnd-correctedStart < minWindowWidthSec {
		prev := correctedEnd - correctedStart
		correctedEnd = min(correctedStart+minWindowWidthSec, maxTime)
		warnings = append(warnings, fmt.Sprintf("minimum duration enforced: %.2f -> %.2fs", prev, correctedEnd-correctedStart))
	}

	return Window{Start: correctedStart, End: correctedEnd}, warnings
}

// MarkerRecord checks one marker row. An empty reason means the row passes;
// a non-empty reason identifies why the row should be skipped so batch
// imports can report it.
func MarkerRecord(m marker.Marker) string {
	switch {
	case m.Onset < 0:
		return fmt.Sprintf("onset must be non-negative, got %.3f", m.Onset)
	case m.Duration < 0:
		return fmt.Sprintf("duration must be non-negative, got %.3f", m.Duration)
	case m.Label == "":
		return "label must not be empty"
	}
	return ""
}

// ChannelSelection splits the requested channel names into those present in
// the recording's catalog and those unknown.
func ChannelSelection(rec recording.Recording, channels []string) (valid, invalid []string) {
	catalog := make(map[string]bool)
	for _, ch := range rec.Channels() {
		catalog[ch] = true
	}
	for _, ch := range channels {
		if catalog[ch] {
			valid = append(valid, ch)
		} else {
			invalid = append(invalid, ch)
		}
	}
	return valid, invalid
}

// EpochParams sanity-checks epoch extraction parameters and returns advisory
// warnings. None of them block extraction.
func EpochParams(rec recording.Recording, tmin, tmax float64, baseline *[2]float64) []string {
	var warnings []string

	dur := tmax - tmin
	switch {
	case dur <= 0:
		warnings = append(warnings, "epoch duration must be positive (tmax > tmin)")
	case dur < shortEpochSec:
		warnings = append(warnings, "very short epochs may not be useful for analysis")
	case dur > longEpochSec:
		warnings = append(warnings, "very long epochs may include multiple events")
	}

	if dur > 0 {
		if samples := int(dur * rec.SampleRate()); samples < fewEpochSamples {
			warnings = append(warnings, "epochs will have very few samples")
		}
	}

	if baseline != nil {
		start, end := baseline[0], baseline[1]
		switch {
		case start >= end:
			warnings = append(warnings, "baseline start must be < baseline end")
		case start < tmin || end > tmax:
			warnings = append(warnings, "baseline period must be within epoch time range")
		case end > 0:
			warnings = append(warnings, "baseline typically ends at or before the event (t=0)")
		}
	}

	return warnings
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
