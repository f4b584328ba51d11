package engine

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/0xlukav/larascan/internal/model"
)

// Baseline records accepted finding fingerprints so established findings can
// be muted while new ones still fail the run.
type Baseline struct {
	GeneratedAt  time.Time `json:"generatedAt"`
	Fingerprints []string  `json:"fingerprints"`
}

func LoadBaseline(path string) (*Baseline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Baseline
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// WriteBaseline stores every fingerprint present in the result, sorted for
// stable diffs.
func WriteBaseline(path string, result *model.ScanResult) error {
	set := map[string]bool{}
	for _, f := range result.Findings() {
		if f.Fingerprint != "" {
			set[f.Fingerprint] = true
		}
	}
	fps := make([]string, 0, len(set))
	for fp := range set {
		fps = append(fps, fp)
	}
	sort.Strings(fps)

	raw, err := json.MarshalIndent(Baseline{GeneratedAt: time.Now().UTC(), Fingerprints: fps}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}

// ApplyBaseline drops findings whose fingerprint appears in the baseline and
// re-derives each affected run's status.
func ApplyBaseline(result *model.ScanResult, b *Baseline) {
	known := make(map[string]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		known[fp] = true
	}

	var statuses []model.Status
	for i := range result.Runs {
		run := &result.Runs[i]
		if run.Result.Status == model.StatusError || run.Result.Status == model.StatusSkipped {
			statuses = append(statuses, run.Result.Status)
			continue
		}
		var kept []model.Finding
		for _, f := range run.Result.Findings {
			if !known[f.Fingerprint] {
				kept = append(kept, f)
			}
		}
		run.Result.Findings = kept
		run.Result.Status = model.DeriveStatus(kept)
		if len(kept) == 0 && run.Result.Summary == "" {
			run.Result.Summary = "all findings are in the baseline"
		}
		statuses = append(statuses, run.Result.Status)
	}
	result.Status = model.AggregateStatus(statuses)
}
