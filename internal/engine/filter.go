package engine

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/0xlukav/larascan/internal/config"
	"github.com/0xlukav/larascan/internal/model"
)

// suppressionMarker on a finding's line (or the line directly above it)
// silences that detector for that location.
const suppressionMarker = "larascan:ignore"

// postProcess applies the configured filters to every run: duplicate-merge,
// ignore rules, inline suppressions, and the severity threshold. Error and
// Skipped runs pass through untouched; for the rest the status is re-derived
// from whatever findings survive.
func postProcess(runs []model.DetectorRun, cfg config.Config, root string) []model.DetectorRun {
	threshold := model.ParseSeverity(cfg.SeverityThreshold)

	out := make([]model.DetectorRun, 0, len(runs))
	for _, run := range runs {
		if run.Result.Status == model.StatusError || run.Result.Status == model.StatusSkipped {
			out = append(out, run)
			continue
		}

		var kept []model.Finding
		seen := map[string]bool{}
		for _, f := range run.Result.Findings {
			if f.Fingerprint != "" && seen[f.Fingerprint] {
				continue
			}
			seen[f.Fingerprint] = true
			if ignoredByRule(cfg.Ignore, f) || !model.SeverityGTE(f.Severity, threshold) {
				continue
			}
			if suppressedInline(root, f) {
				continue
			}
			kept = append(kept, f)
		}

		run.Result.Findings = kept
		run.Result.Status = model.DeriveStatus(kept)
		if len(kept) == 0 && run.Result.Summary == "" {
			run.Result.Summary = "no findings above the configured threshold"
		}
		out = append(out, run)
	}
	return out
}

// ApplySeverityThreshold re-filters an already-scanned result against a
// stricter threshold and re-derives run and batch statuses.
func ApplySeverityThreshold(result *model.ScanResult, threshold model.Severity) {
	var statuses []model.Status
	for i := range result.Runs {
		run := &result.Runs[i]
		if run.Result.Status == model.StatusError || run.Result.Status == model.StatusSkipped {
			statuses = append(statuses, run.Result.Status)
			continue
		}
		var kept []model.Finding
		for _, f := range run.Result.Findings {
			if model.SeverityGTE(f.Severity, threshold) {
				kept = append(kept, f)
			}
		}
		run.Result.Findings = kept
		run.Result.Status = model.DeriveStatus(kept)
		statuses = append(statuses, run.Result.Status)
	}
	result.Status = model.AggregateStatus(statuses)
}

func ignoredByRule(rules []config.IgnoreRule, f model.Finding) bool {
	for _, r := range rules {
		if r.Detector != "" && r.Detector != f.DetectorID {
			continue
		}
		if r.Path != "" {
			ok, err := filepath.Match(r.Path, f.Location.Path)
			if err != nil || !ok {
				continue
			}
		}
		return true
	}
	return false
}

// suppressedInline checks the finding's source line and the one above it for
// the suppression marker naming this detector.
func suppressedInline(root string, f model.Finding) bool {
	if f.Location.Path == "" || f.Location.Line == 0 {
		return false
	}
	raw, err := os.ReadFile(filepath.Join(root, f.Location.Path))
	if err != nil {
		return false
	}
	lines := strings.Split(string(raw), "\n")
	idx := f.Location.Line - 1
	if idx < 0 || idx >= len(lines) {
		return false
	}
	if hasSuppression(lines[idx], f.DetectorID) {
		return true
	}
	return idx > 0 && hasSuppression(lines[idx-1], f.DetectorID)
}

func hasSuppression(line, detectorID string) bool {
	pos := strings.Index(line, suppressionMarker)
	if pos < 0 {
		return false
	}
	rest := strings.TrimSpace(line[pos+len(suppressionMarker):])
	// bare marker suppresses everything, otherwise it must name the detector
	if rest == "" {
		return true
	}
	return strings.Fields(rest)[0] == detectorID
}
