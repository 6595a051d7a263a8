package filter

import (
	"fmt"
	"strings"

	"github.com/eegvizlab/eegviz/internal/recording"
)

// Params is the validated filter configuration for one pipeline run. Nil
// fields mean the corresponding step is skipped.
type Params struct {
	HighPass   *float64 `json:"high_pass,omitempty" yaml:"high_pass,omitempty"`
	LowPass    *float64 `json:"low_pass,omitempty" yaml:"low_pass,omitempty"`
	Notch      *float64 `json:"notch,omitempty" yaml:"notch,omitempty"`
	Resample   *float64 `json:"resample,omitempty" yaml:"resample,omitempty"`
	AverageRef bool     `json:"average_ref" yaml:"average_ref"`
}

// IsZero reports whether no filtering step is requested.
func (p Params) IsZero() bool {
	return p.HighPass == nil && p.LowPass == nil && p.Notch == nil && p.Resample == nil && !p.AverageRef
}

// PipelineSteps returns the ordered human-readable step list for the
// configuration: resample, then notch, then band-pass, then re-reference.
// The order matches how the executor is expected to apply them.
func (p Params) PipelineSteps() []string {
	var steps []string
	if p.Resample != nil {
		steps = append(steps, fmt.Sprintf("resample to %g Hz", *p.Resample))
	}
	if p.Notch != nil {
		steps = append(steps, fmt.Sprintf("notch at %g Hz", *p.Notch))
	}
	switch {
	case p.HighPass != nil && p.LowPass != nil:
		steps = append(steps, fmt.Sprintf("band-pass %g-%g Hz", *p.HighPass, *p.LowPass))
	case p.HighPass != nil:
		steps = append(steps, fmt.Sprintf("high-pass %g Hz", *p.HighPass))
	case p.LowPass != nil:
		steps = append(steps, fmt.Sprintf("low-pass %g Hz", *p.LowPass))
	}
	if p.AverageRef {
		steps = append(steps, "average reference")
	}
	return steps
}

// String summarizes the configuration for logs and status displays.
func (p Params) String() string {
	steps := p.PipelineSteps()
	if len(steps) == 0 {
		return "no filtering"
	}
	return strings.Join(steps, ", ")
}

// Executor produces a derived recording with the filter pipeline applied.
// The numeric filtering lives entirely behind this interface; the session
// core only records what was requested and holds the result.
type Executor interface {
	Apply(rec recording.Recording, p Params) (recording.Recording, error)
}

// IdentityExecutor passes the recording through untouched, relabeled so its
// provenance stays visible. It stands in where no DSP backend is wired.
type IdentityExecutor struct{}

func (IdentityExecutor) Apply(rec recording.Recording, p Params) (recording.Recording, error) {
	mem, ok := rec.(*recording.MemoryRecording)
	if !ok {
		return rec, nil
	}
	return mem.Relabel(fmt.Sprintf("%s [%s]", rec.Label(), p.String())), nil
}

// Float returns a pointer to v, for building Params literals.
func Float(v float64) *float64 { return &v }
