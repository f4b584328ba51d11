package model

import "time"

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityOrder = map[Severity]int{
	SeverityInfo:     1,
	SeverityLow:      2,
	SeverityMedium:   3,
	SeverityHigh:     4,
	SeverityCritical: 5,
}

func ParseSeverity(s string) Severity {
	switch s {
	case string(SeverityCritical):
		return SeverityCritical
	case string(SeverityHigh):
		return SeverityHigh
	case string(SeverityMedium):
		return SeverityMedium
	case string(SeverityLow):
		return SeverityLow
	default:
		return SeverityInfo
	}
}

func SeverityGTE(a, b Severity) bool {
	return severityOrder[a] >= severityOrder[b]
}

// MaxSeverity returns the higher of two severities.
func MaxSeverity(a, b Severity) Severity {
	if SeverityGTE(a, b) {
		return a
	}
	return b
}

// Location is where a finding points into the target project. Line is
// 1-based; 0 means the finding is file- or project-scoped.
type Location struct {
	Path string `json:"path"`
	Line int    `json:"line,omitempty"`
}

// Finding is one reported issue. The exported field set
// {message, location, severity, recommendation, code, metadata} is the
// contract report consumers depend on; do not rename without a version bump.
type Finding struct {
	Message        string    `json:"message"`
	Location       Location  `json:"location"`
	Severity       Severity  `json:"severity"`
	Recommendation string    `json:"recommendation"`
	Code           string    `json:"code,omitempty"`
	Metadata       *Metadata `json:"metadata,omitempty"`
	DetectorID     string    `json:"detectorId"`
	Fingerprint    string    `json:"fingerprint,omitempty"`
}

// DetectorMeta describes one registered detector. Created once at
// registration and never mutated; ID is stable and used for
// allow/deny-listing and inline suppressions.
type DetectorMeta struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Category             string   `json:"category"`
	Severity             Severity `json:"severity"`
	Tags                 []string `json:"tags,omitempty"`
	DocsURL              string   `json:"docsUrl,omitempty"`
	EstimatedFixMinutes  int      `json:"estimatedFixMinutes,omitempty"`
	RunsInCI             bool     `json:"runsInCi"`
	RelevantEnvironments []string `json:"relevantEnvironments,omitempty"`
}

type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// RunResult is one detector invocation's outcome. Never mutated after the
// detector returns it.
type RunResult struct {
	Status   Status    `json:"status"`
	Summary  string    `json:"summary"`
	Findings []Finding `json:"findings"`
}

// DeriveStatus classifies findings into a run status. Critical/High fail the
// run; Medium/Low warn. Low-grade issues deliberately do not block a
// pipeline the way credential leaks do.
func DeriveStatus(findings []Finding) Status {
	status := StatusPassed
	for _, f := range findings {
		switch {
		case SeverityGTE(f.Severity, SeverityHigh):
			return StatusFailed
		case SeverityGTE(f.Severity, SeverityLow):
			status = StatusWarning
		}
	}
	return status
}

// AggregateStatus folds per-detector statuses into a batch status. Error and
// Skipped results are surfaced separately and do not count toward the
// Failed/Warning classification.
func AggregateStatus(statuses []Status) Status {
	agg := StatusPassed
	for _, s := range statuses {
		switch s {
		case StatusFailed:
			return StatusFailed
		case StatusWarning:
			agg = StatusWarning
		}
	}
	return agg
}

// DetectorRun pairs a detector with its result for reporting.
type DetectorRun struct {
	Detector DetectorMeta `json:"detector"`
	Result   RunResult    `json:"result"`
}

type ScanRequest struct {
	Root        string
	Environment string
	CI          bool
	TimeBudget  time.Duration
	ConfigPath  string
}

type ScanResult struct {
	Runs    []DetectorRun `json:"runs"`
	Status  Status        `json:"status"`
	Elapsed time.Duration `json:"elapsed"`
}

// Findings concatenates per-detector findings in registration order.
func (r *ScanResult) Findings() []Finding {
	var out []Finding
	for _, run := range r.Runs {
		out = append(out, run.Result.Findings...)
	}
	return out
}

// Errors returns the runs that ended in an execution error.
func (r *ScanResult) Errors() []DetectorRun {
	var out []DetectorRun
	for _, run := range r.Runs {
		if run.Result.Status == StatusError {
			out = append(out, run)
		}
	}
	return out
}
