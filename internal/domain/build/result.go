// Package build provides domain models for build results and progress events.
package build

import (
	"sync"
	"time"

	"github.com/avrforge/sketchforge/internal/domain/values"
)

// Report is the complete record of one sketch build.
type Report struct {
	StartTime   time.Time        `json:"start_time" yaml:"start_time"`
	EndTime     time.Time        `json:"end_time" yaml:"end_time"`
	Sketch      string           `json:"sketch" yaml:"sketch"`
	Board       string           `json:"board,omitempty" yaml:"board,omitempty"`
	MCU         string           `json:"mcu" yaml:"mcu"`
	State       values.Stage     `json:"state" yaml:"state"`
	Outcome     values.Outcome   `json:"outcome" yaml:"outcome"`
	Invocations []Invocation     `json:"invocations" yaml:"invocations"`
	Errors      []string         `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings    []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	LinkSet     []string         `json:"link_set" yaml:"link_set"`
	EntryObject string           `json:"entry_object,omitempty" yaml:"entry_object,omitempty"`
	Libraries   []LibrarySummary `json:"libraries,omitempty" yaml:"libraries,omitempty"`
	Images      Images           `json:"images" yaml:"images"`
	Size        *SizeReport      `json:"size,omitempty" yaml:"size,omitempty"`
	Duration    time.Duration    `json:"-" yaml:"-"`
	DurationMs  int64            `json:"duration_ms" yaml:"duration_ms"`
	mu          sync.Mutex
	scrubber    Scrubber
	ID          values.BuildID `json:"build_id" yaml:"build_id"`
}

// Scrubber removes secrets from text before it is recorded.
type Scrubber interface {
	ScrubString(input string) string
}

// Invocation records one external toolchain call.
type Invocation struct {
	Stage      values.Stage  `json:"stage" yaml:"stage"`
	Unit       string        `json:"unit,omitempty" yaml:"unit,omitempty"`
	Tool       string        `json:"tool" yaml:"tool"`
	Args       string        `json:"args" yaml:"args"`
	Output     string        `json:"output,omitempty" yaml:"output,omitempty"`
	Err        string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration   time.Duration `json:"-" yaml:"-"`
	DurationMs int64         `json:"duration_ms" yaml:"duration_ms"`
}

// Failed reports whether the invocation produced diagnostics or did not run.
// Size output is the tool's report, never a diagnostic.
func (i Invocation) Failed() bool {
	if i.Stage == values.StageReportingSize {
		return i.Err != ""
	}
	return i.Output != "" || i.Err != ""
}

// LibrarySummary describes one matched library directory.
type LibrarySummary struct {
	Name      string   `json:"name" yaml:"name"`
	Dir       string   `json:"dir" yaml:"dir"`
	Version   string   `json:"version,omitempty" yaml:"version,omitempty"`
	MatchedBy []string `json:"matched_by" yaml:"matched_by"`
	Units     int      `json:"units" yaml:"units"`
}

// Images are the artifacts derived from the linked executable.
type Images struct {
	ELF    string `json:"elf,omitempty" yaml:"elf,omitempty"`
	Flash  string `json:"flash,omitempty" yaml:"flash,omitempty"`
	EEPROM string `json:"eeprom,omitempty" yaml:"eeprom,omitempty"`
}

// NewReport creates a report for a build that is about to start.
func NewReport(sketch, board, mcu string) *Report {
	return NewReportWithID(values.NewBuildID(), sketch, board, mcu)
}

// NewReportWithID creates a report with a specific ID.
func NewReportWithID(id values.BuildID, sketch, board, mcu string) *Report {
	return &Report{
		ID:          id,
		Sketch:      sketch,
		Board:       board,
		MCU:         mcu,
		State:       values.StageIdle,
		Outcome:     values.OutcomePending,
		StartTime:   time.Now(),
		Invocations: make([]Invocation, 0),
		LinkSet:     make([]string, 0),
	}
}

// GetID returns the build ID.
func (r *Report) GetID() values.BuildID {
	return r.ID
}

// SetScrubber makes every text recorded from now on pass through s.
// Call it before the build starts.
func (r *Report) SetScrubber(s Scrubber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrubber = s
}

// Scrub returns text with secrets removed. Thread-safe.
func (r *Report) Scrub(text string) string {
	r.mu.Lock()
	s := r.scrubber
	r.mu.Unlock()
	if s == nil {
		return text
	}
	return s.ScrubString(text)
}

// AddInvocation records a toolchain call.
// Thread-safe for workers compiling units in parallel.
func (r *Report) AddInvocation(inv Invocation) {
	inv.Args = r.Scrub(inv.Args)
	inv.Output = TruncateOutput(r.Scrub(inv.Output), DefaultMaxOutputSize)
	inv.Err = r.Scrub(inv.Err)
	inv.DurationMs = inv.Duration.Milliseconds()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Invocations = append(r.Invocations, inv)
}

// AddDiagnostics appends parsed compiler diagnostics. Thread-safe.
func (r *Report) AddDiagnostics(diags ...Diagnostic) {
	if len(diags) == 0 {
		return
	}
	scrubbed := make([]Diagnostic, len(diags))
	for i, d := range diags {
		d.Message = r.Scrub(d.Message)
		scrubbed[i] = d
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Diagnostics = append(r.Diagnostics, scrubbed...)
}

// AddError records a fatal error message. Thread-safe.
func (r *Report) AddError(msg string) {
	msg = r.Scrub(msg)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, msg)
}

// AddWarning records a non-fatal problem. Thread-safe.
func (r *Report) AddWarning(msg string) {
	msg = r.Scrub(msg)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, msg)
}

// InvocationsFor returns the recorded invocations of one stage in order.
func (r *Report) InvocationsFor(stage values.Stage) []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Invocation
	for _, inv := range r.Invocations {
		if inv.Stage == stage {
			out = append(out, inv)
		}
	}
	return out
}

// Finalize stamps the terminal stage and timing.
func (r *Report) Finalize(terminal values.Stage) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.DurationMs = r.Duration.Milliseconds()
	r.State = terminal
	r.Outcome = values.OutcomeForStage(terminal)
}

// Succeeded reports whether the build reached StageSucceeded.
func (r *Report) Succeeded() bool {
	return r.Outcome.IsSuccess()
}
