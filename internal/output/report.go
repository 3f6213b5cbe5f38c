package output

import (
	"time"

	"github.com/jmylchreest/a11yfix/pkg/cleaner/a11y"
)

// Report describes the fixes applied to one document.
type Report struct {
	Source      string             `json:"source" yaml:"source"`
	Hook        string             `json:"hook,omitempty" yaml:"hook,omitempty"`
	Changes     int                `json:"changes" yaml:"changes"`
	InputBytes  int                `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int                `json:"output_bytes" yaml:"output_bytes"`
	DurationMS  float64            `json:"duration_ms" yaml:"duration_ms"`
	Phases      []*a11y.PhaseStats `json:"phases,omitempty" yaml:"phases,omitempty"`
	Warnings    []a11y.Warning     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error       string             `json:"error,omitempty" yaml:"error,omitempty"`

	stats *a11y.Stats
}

// NewReport builds a report from a cleaner result. A nil result yields a
// report carrying only the source and hook.
func NewReport(source, hook string, res *a11y.Result) Report {
	r := Report{Source: source, Hook: hook}
	if res == nil {
		return r
	}
	r.Warnings = res.Warnings
	if res.Error != nil {
		r.Error = res.Error.Error()
	}
	if s := res.Stats; s != nil {
		r.stats = s
		r.Changes = s.TotalChanges()
		r.InputBytes = s.InputBytes
		r.OutputBytes = s.OutputBytes
		r.DurationMS = float64(s.TotalDuration) / float64(time.Millisecond)
		r.Phases = s.Phases
	}
	return r
}
