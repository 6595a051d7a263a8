// Package analysis computes per-channel band power summaries on top of a
// delegated spectral estimator and handles the interval bookkeeping around
// it. The estimation itself (PSD) is a collaborator; this package only
// aggregates its output.
package analysis

import (
	"fmt"
	"math"

	"github.com/eegvizlab/eegviz/internal/recording"
)

// Spectral estimates the power spectral density of a recording segment.
type Spectral interface {
	// PSD returns the frequency bins in [fmin, fmax] and, per requested
	// channel, the power at each bin. Implementations choose their own
	// segment/overlap strategy.
	PSD(rec recording.Recording, fmin, fmax float64, channels []string) (freqs []float64, power [][]float64, err error)
}

// Interval is one (onset, duration) span in seconds.
type Interval struct {
	Onset    float64 `json:"onset"`
	Duration float64 `json:"duration"`
}

const eps = 1e-20

// BandPower returns the mean spectral power per channel over [fmin, fmax].
func BandPower(spec Spectral, rec recording.Recording, fmin, fmax float64, channels []string) ([]float64, error) {
	if spec == nil {
		return nil, fmt.Errorf("no spectral estimator available")
	}
	if fmin >= fmax {
		return nil, fmt.Errorf("invalid band bounds: %g >= %g", fmin, fmax)
	}

	freqs, power, err := spec.PSD(rec, fmin, fmax, channels)
	if err != nil {
		return nil, fmt.Errorf("psd estimation failed: %w", err)
	}
	if len(freqs) == 0 {
		return nil, fmt.Errorf("no frequency bins in [%g, %g] Hz", fmin, fmax)
	}

	out := make([]float64, len(power))
	for i, row := range power {
		var sum float64
		for _, v := range row {
			sum += v
		}
		out[i] = sum / float64(len(row))
	}
	return out, nil
}

// MeanBandOverIntervals averages the band power across a set of intervals:
// each interval is cropped out of the recording, estimated on its own, and
// the per-channel values are averaged across intervals. Returns nil when no
// interval survives cropping.
func MeanBandOverIntervals(spec Spectral, rec recording.Recording, intervals []Interval, fmin, fmax float64, channels []string) ([]float64, error) {
	var acc []float64
	n := 0

	for _, iv := range intervals {
		seg, err := Crop(rec, iv.Onset, iv.Onset+iv.Duration)
		if err != nil {
			continue
		}
		bp, err := BandPower(spec, seg, fmin, fmax, channels)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = make([]float64, len(bp))
		}
		for i, v := range bp {
			acc[i] += v
		}
		n++
	}

	if n == 0 {
		return nil, nil
	}
	for i := range acc {
		acc[i] /= float64(n)
	}
	return acc, nil
}

// Crop extracts [start, end] of a recording as a new in-memory recording.
func Crop(rec recording.Recording, start, end float64) (recording.Recording, error) {
	start, end = RestrictInterval(rec.Duration(), start, end)
	data, err := rec.Data(rec.Channels(), start, end)
	if err != nil {
		return nil, err
	}
	return recording.NewMemoryRecording(
		fmt.Sprintf("%s[%.2f-%.2fs]", rec.Label(), start, end),
		rec.Channels(), rec.SampleRate(), data,
	)
}

// ContrastDB expresses the ratio of two band-power vectors in decibels:
// 10*log10(pb/pa), guarded against zeros.
func ContrastDB(pb, pa []float64) []float64 {
	n := len(pb)
	if len(pa) < n {
		n = len(pa)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = 10 * math.Log10((pb[i]+eps)/(pa[i]+eps))
	}
	return out
}

// RestrictInterval clamps an interval into [0, total]. A collapsed interval
// is widened to a 0.25s floor where the recording allows it.
func RestrictInterval(total, start, end float64) (float64, float64) {
	start = math.Max(0, math.Min(start, total))
	end = math.Max(0, math.Min(end, total))
	if end <= start {
		end = math.Min(total, start+0.25)
	}
	return start, end
}

// SlidingWindows enumerates [t, t+win] hops of size step across [start, end].
// The small slack keeps the final window from being lost to float error.
func SlidingWindows(start, end, win, step float64) []Interval {
	if win <= 0 || step <= 0 {
		return nil
	}
	var out []Interval
	for t := start; t+win <= end+1e-9; t += step {
		out = append(out, Interval{Onset: t, Duration: win})
	}
	return out
}
