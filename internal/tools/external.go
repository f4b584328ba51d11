// Package tools runs external dependency-audit commands under a hard
// wall-clock timeout and normalizes their JSON output.
package tools

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// Result is one external command invocation. A deadline hit is recorded in
// TimedOut; callers treat that data source as indeterminate, never as a
// failed check.
type Result struct {
	Tool     string
	Raw      []byte
	Err      error
	TimedOut bool
	Duration time.Duration
}

// RunWithTimeout executes tool with a hard timeout; on expiry the process is
// forcibly terminated by the context.
func RunWithTimeout(ctx context.Context, timeout time.Duration, dir, tool string, args ...string) Result {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(cctx, tool, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	r := Result{Tool: tool, Raw: out, Err: err, Duration: time.Since(start)}
	if errors.Is(cctx.Err(), context.DeadlineExceeded) {
		r.TimedOut = true
	}
	// audit commands exit non-zero when they find vulnerabilities; output
	// that parses is still usable
	if err != nil && len(out) > 0 {
		r.Err = nil
	}
	return r
}

// Vulnerability is the unified shape of one audit-tool record.
type Vulnerability struct {
	Package       string
	Severity      string
	Title         string
	AffectedRange string
	URL           string
}

// Normalize converts a known audit tool's raw output into vulnerabilities.
func Normalize(tool string, raw []byte) ([]Vulnerability, error) {
	switch tool {
	case "npm":
		return normalizeNpmAudit(raw)
	case "yarn":
		return normalizeYarnAudit(raw)
	default:
		return nil, errors.New("tools: unknown audit tool " + tool)
	}
}
