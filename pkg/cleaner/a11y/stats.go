package a11y

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Phase names, in the order they run.
const (
	PhaseIframes  = "iframes"
	PhaseTables   = "tables"
	PhaseHeadings = "headings"
	PhaseTags     = "tags"
)

// PhaseStats records what a single pass did.
type PhaseStats struct {
	Name    string         `json:"name" yaml:"name"`
	Enabled bool           `json:"enabled" yaml:"enabled"`
	Seen    int            `json:"seen" yaml:"seen"`       // elements inspected
	Changes int            `json:"changes" yaml:"changes"` // mutations applied
	Details map[string]int `json:"details,omitempty" yaml:"details,omitempty"`
}

// record counts one change under the given detail key.
func (p *PhaseStats) record(key string) {
	p.Changes++
	p.Details[key]++
}

// note counts a detail that did not change the document.
func (p *PhaseStats) note(key string) {
	p.Details[key]++
}

// Stats captures metrics about a single transform.
type Stats struct {
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	Phases []*PhaseStats `json:"phases" yaml:"phases"`

	ParseDuration     time.Duration `json:"parse_duration_ns" yaml:"parse_duration"`
	TransformDuration time.Duration `json:"transform_duration_ns" yaml:"transform_duration"`
	OutputDuration    time.Duration `json:"output_duration_ns" yaml:"output_duration"`
	TotalDuration     time.Duration `json:"total_duration_ns" yaml:"total_duration"`
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{
		Phases: make([]*PhaseStats, 0, 4),
	}
}

// AddPhase appends a phase and returns it for recording.
func (s *Stats) AddPhase(name string, enabled bool) *PhaseStats {
	p := &PhaseStats{
		Name:    name,
		Enabled: enabled,
		Details: make(map[string]int),
	}
	s.Phases = append(s.Phases, p)
	return p
}

// GetPhase returns the phase with the given name, or nil.
func (s *Stats) GetPhase(name string) *PhaseStats {
	for _, p := range s.Phases {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Changes returns the number of changes recorded by the named phase.
func (s *Stats) Changes(name string) int {
	if p := s.GetPhase(name); p != nil {
		return p.Changes
	}
	return 0
}

// TotalChanges returns the sum of changes across all phases.
func (s *Stats) TotalChanges() int {
	total := 0
	for _, p := range s.Phases {
		total += p.Changes
	}
	return total
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %s -> %s\n",
		humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes))))
	sb.WriteString(fmt.Sprintf("Changes: %d\n", s.TotalChanges()))

	for _, p := range s.Phases {
		if !p.Enabled {
			sb.WriteString(fmt.Sprintf("  %-9s disabled\n", p.Name))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-9s seen=%d changed=%d", p.Name, p.Seen, p.Changes))
		if len(p.Details) > 0 {
			keys := make([]string, 0, len(p.Details))
			for k := range p.Details {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = fmt.Sprintf("%s=%d", k, p.Details[k])
			}
			sb.WriteString(" (" + strings.Join(parts, ", ") + ")")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Timing: parse=%v, transform=%v, output=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.TransformDuration.Round(time.Microsecond),
		s.OutputDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond)))

	return sb.String()
}

// Warning represents a non-fatal issue encountered during a transform.
type Warning struct {
	Phase   string `json:"phase" yaml:"phase"`     // "parse", "transform", "output"
	Message string `json:"message" yaml:"message"` // Human-readable description
	Context string `json:"context" yaml:"context"` // Element or class that caused issue
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a transform.
type Result struct {
	// Content is the transformed fragment. On parse errors, this contains the original input.
	Content string `json:"content" yaml:"content"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats" yaml:"stats"`

	// Warnings contains non-fatal issues encountered.
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Error is set only on catastrophic failures (content is still returned).
	Error error `json:"-" yaml:"-"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
