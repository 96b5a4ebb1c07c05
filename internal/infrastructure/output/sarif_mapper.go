package output

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
)

// Rule IDs. Diagnostics map by severity; build errors without a parsed
// diagnostic use ruleBuildError.
const (
	ruleCompilerError   = "compiler-error"
	ruleCompilerWarning = "compiler-warning"
	ruleCompilerNote    = "compiler-note"
	ruleBuildError      = "build-error"
	ruleSizeWarning     = "build-warning"
)

var ruleDescriptions = map[string]string{
	ruleCompilerError:   "The toolchain reported an error",
	ruleCompilerWarning: "The toolchain reported a warning",
	ruleCompilerNote:    "The toolchain attached a note to a diagnostic",
	ruleBuildError:      "A build stage failed",
	ruleSizeWarning:     "A non-fatal build problem",
}

type sarifMapper struct {
	report     *build.Report
	sketchPath string
	cwd        string
	artifacts  map[string]*sarif.Artifact
	rules      map[string]bool
}

func newSARIFMapper(report *build.Report, sketchPath string) *sarifMapper {
	cwd, _ := os.Getwd() // Best effort, ignore error
	return &sarifMapper{
		report:     report,
		sketchPath: sketchPath,
		cwd:        cwd,
		artifacts:  make(map[string]*sarif.Artifact),
		rules:      make(map[string]bool),
	}
}

// mapToRun populates the SARIF run with rules, results, artifacts, and invocations.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addDiagnostics(run)
	m.addErrors(run)
	m.addWarnings(run)
	m.addRules(run)
	m.addArtifacts(run)
	m.addInvocation(run)
	m.addProperties(run)
}

func (m *sarifMapper) addDiagnostics(run *sarif.Run) {
	for _, d := range m.report.Diagnostics {
		ruleID := ruleForSeverity(d.Severity)
		result := sarif.NewRuleResult(ruleID)
		result.Level = levelForSeverity(d.Severity)
		result.Kind = "fail"
		result.Message = sarif.NewTextMessage(d.Message)
		if d.File != "" {
			result.Locations = []*sarif.Location{m.createLocation(d.File, d.Line, d.Column)}
		}
		m.rules[ruleID] = true
		run.AddResult(result)
	}
}

// addErrors reports errors that have no parsed diagnostic behind them, such
// as missing objects or a failed launch.
func (m *sarifMapper) addErrors(run *sarif.Run) {
	hasDiagnosticError := false
	for _, d := range m.report.Diagnostics {
		if d.IsError() {
			hasDiagnosticError = true
			break
		}
	}
	if hasDiagnosticError {
		return
	}

	for _, msg := range m.report.Errors {
		result := sarif.NewRuleResult(ruleBuildError)
		result.Level = "error"
		result.Kind = "fail"
		result.Message = sarif.NewTextMessage(msg)
		if m.sketchPath != "" {
			result.Locations = []*sarif.Location{m.createLocation(m.sketchPath, 0, 0)}
		}
		m.rules[ruleBuildError] = true
		run.AddResult(result)
	}
}

func (m *sarifMapper) addWarnings(run *sarif.Run) {
	for _, msg := range m.report.Warnings {
		result := sarif.NewRuleResult(ruleSizeWarning)
		result.Level = "warning"
		result.Kind = "review"
		result.Message = sarif.NewTextMessage(msg)
		m.rules[ruleSizeWarning] = true
		run.AddResult(result)
	}
}

// addRules declares every rule referenced by a result, in a fixed order.
func (m *sarifMapper) addRules(run *sarif.Run) {
	for _, id := range []string{ruleCompilerError, ruleCompilerWarning, ruleCompilerNote, ruleBuildError, ruleSizeWarning} {
		if !m.rules[id] {
			continue
		}
		desc := ruleDescriptions[id]
		rule := sarif.NewReportingDescriptor().WithID(id)
		rule.WithName(id)
		rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &desc})
		level := "error"
		if id == ruleCompilerWarning || id == ruleSizeWarning {
			level = "warning"
		} else if id == ruleCompilerNote {
			level = "note"
		}
		rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})
		run.Tool.Driver.AddRule(rule)
	}
}

func ruleForSeverity(severity string) string {
	switch severity {
	case "warning":
		return ruleCompilerWarning
	case "note":
		return ruleCompilerNote
	default:
		return ruleCompilerError
	}
}

func levelForSeverity(severity string) string {
	switch severity {
	case "warning":
		return "warning"
	case "note":
		return "note"
	default:
		return "error"
	}
}

func (m *sarifMapper) createLocation(path string, line, column int) *sarif.Location {
	uri := m.normalizeURI(path)
	m.registerArtifact(uri)

	pLoc := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithURI(uri))

	if line > 0 {
		region := sarif.NewRegion().WithStartLine(line)
		if column > 0 {
			region.WithStartColumn(column)
		}
		pLoc.WithRegion(region)
	}

	return sarif.NewLocation().WithPhysicalLocation(pLoc)
}

// normalizeURI converts a file path to a SARIF-compliant URI.
func (m *sarifMapper) normalizeURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}

	if m.cwd != "" {
		if rel, err := filepath.Rel(m.cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return "file://" + filepath.ToSlash(abs)
}

// registerArtifact adds a file to the artifacts map (deduplicated).
func (m *sarifMapper) registerArtifact(uri string) {
	if _, exists := m.artifacts[uri]; exists {
		return
	}
	m.artifacts[uri] = sarif.NewArtifact().
		WithLocation(sarif.NewArtifactLocation().WithURI(uri))
}

// addArtifacts adds collected artifacts to the run sorted by URI.
func (m *sarifMapper) addArtifacts(run *sarif.Run) {
	uris := make([]string, 0, len(m.artifacts))
	for uri := range m.artifacts {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		run.AddArtifact(m.artifacts[uri])
	}
}

// addInvocation adds build metadata to the run.
func (m *sarifMapper) addInvocation(run *sarif.Run) {
	invocation := sarif.NewInvocation()
	invocation.ExecutionSuccessful = ptrBool(m.report.Succeeded())

	startTime := m.report.StartTime.UTC().Format("2006-01-02T15:04:05.000Z")
	invocation.StartTimeUtc = &startTime
	if !m.report.EndTime.IsZero() {
		endTime := m.report.EndTime.UTC().Format("2006-01-02T15:04:05.000Z")
		invocation.EndTimeUtc = &endTime
	}

	if hostname, err := os.Hostname(); err == nil {
		invocation.Machine = &hostname
	}

	props := sarif.NewPropertyBag()
	props.Add("buildId", m.report.ID.String())
	props.Add("sketch", m.report.Sketch)
	props.Add("board", m.report.Board)
	props.Add("mcu", m.report.MCU)
	props.Add("state", string(m.report.State))
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

// addProperties adds the link set and size report to run properties.
func (m *sarifMapper) addProperties(run *sarif.Run) {
	props := sarif.NewPropertyBag()
	props.Add("linkSet", m.report.LinkSet)
	if m.report.Size != nil && m.report.Size.Parsed() {
		props.Add("size", map[string]uint64{
			"text":  m.report.Size.Text,
			"data":  m.report.Size.Data,
			"bss":   m.report.Size.BSS,
			"total": m.report.Size.Total,
		})
	}
	run.WithProperties(props)
}

func ptrBool(b bool) *bool {
	return &b
}
