package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/0xlukav/larascan/internal/config"
	"github.com/0xlukav/larascan/internal/model"
	"github.com/0xlukav/larascan/internal/plugins"
)

type fakeDetector struct {
	meta       model.DetectorMeta
	applicable bool
	skipReason string
	result     *model.RunResult
	err        error
	panics     bool
}

func (f *fakeDetector) Meta() model.DetectorMeta { return f.meta }
func (f *fakeDetector) IsApplicable(context.Context, *plugins.Context) bool {
	return f.applicable
}
func (f *fakeDetector) SkipReason() string { return f.skipReason }
func (f *fakeDetector) Run(context.Context, *plugins.Context) (*model.RunResult, error) {
	if f.panics {
		panic("boom")
	}
	return f.result, f.err
}

func passing(id string) *fakeDetector {
	return &fakeDetector{
		meta:       model.DetectorMeta{ID: id, RunsInCI: true},
		applicable: true,
		result:     &model.RunResult{Status: model.StatusPassed, Summary: "ok"},
	}
}

func failing(id string, sev model.Severity) *fakeDetector {
	f := model.Finding{
		Message:     "issue in " + id,
		Location:    model.Location{Path: "app.php", Line: 1},
		Severity:    sev,
		DetectorID:  id,
		Fingerprint: "fp-" + id,
	}
	return &fakeDetector{
		meta:       model.DetectorMeta{ID: id, RunsInCI: true},
		applicable: true,
		result:     &model.RunResult{Status: model.DeriveStatus([]model.Finding{f}), Findings: []model.Finding{f}},
	}
}

func scanWith(t *testing.T, dets ...plugins.Detector) *model.ScanResult {
	t.Helper()
	root := t.TempDir()
	reg := plugins.NewRegistry()
	for _, d := range dets {
		reg.Register(d)
	}
	e := NewWithRegistry(reg, nil)
	res, err := e.Scan(context.Background(), model.ScanRequest{Root: root})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return res
}

func TestScanOrderIsRegistrationOrder(t *testing.T) {
	var dets []plugins.Detector
	for i := 0; i < 20; i++ {
		dets = append(dets, passing("det-"+strconv.Itoa(i)))
	}
	res := scanWith(t, dets...)
	if len(res.Runs) != 20 {
		t.Fatalf("got %d runs, want 20", len(res.Runs))
	}
	for i, run := range res.Runs {
		if want := "det-" + strconv.Itoa(i); run.Detector.ID != want {
			t.Fatalf("run %d is %s, want %s", i, run.Detector.ID, want)
		}
	}
}

func TestScanErrorIsolation(t *testing.T) {
	res := scanWith(t,
		passing("ok"),
		&fakeDetector{meta: model.DetectorMeta{ID: "broken", RunsInCI: true}, applicable: true, err: errors.New("cannot parse")},
		&fakeDetector{meta: model.DetectorMeta{ID: "panicky", RunsInCI: true}, applicable: true, panics: true},
	)
	if res.Runs[0].Result.Status != model.StatusPassed {
		t.Fatalf("healthy detector status = %s", res.Runs[0].Result.Status)
	}
	for _, i := range []int{1, 2} {
		r := res.Runs[i].Result
		if r.Status != model.StatusError {
			t.Fatalf("%s status = %s, want error", res.Runs[i].Detector.ID, r.Status)
		}
		if len(r.Findings) != 0 {
			t.Fatalf("%s carries findings on error", res.Runs[i].Detector.ID)
		}
	}
	// errors are surfaced but never fail the batch
	if res.Status != model.StatusPassed {
		t.Fatalf("batch status = %s, want passed", res.Status)
	}
}

func TestScanSkipGates(t *testing.T) {
	notApplicable := passing("gated")
	notApplicable.applicable = false
	notApplicable.skipReason = "no lockfile present"

	localOnly := passing("local-only")
	localOnly.meta.RelevantEnvironments = []string{"local"}

	res := scanWith(t, notApplicable, localOnly)

	if got := res.Runs[0].Result; got.Status != model.StatusSkipped || got.Summary != "no lockfile present" {
		t.Fatalf("gated run = %+v", got)
	}
	if got := res.Runs[1].Result.Status; got != model.StatusSkipped {
		t.Fatalf("local-only in production env status = %s, want skipped", got)
	}
	if res.Status != model.StatusPassed {
		t.Fatalf("all-skipped batch status = %s, want passed", res.Status)
	}
}

func TestScanCIGate(t *testing.T) {
	local := passing("local-only")
	local.meta.RunsInCI = false

	root := t.TempDir()
	reg := plugins.NewRegistry()
	reg.Register(local)
	e := NewWithRegistry(reg, nil)
	res, err := e.Scan(context.Background(), model.ScanRequest{Root: root, CI: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Runs[0].Result.Status != model.StatusSkipped {
		t.Fatalf("status = %s, want skipped in CI", res.Runs[0].Result.Status)
	}
}

func TestScanAggregationAndExitCode(t *testing.T) {
	res := scanWith(t, passing("a"), failing("b", model.SeverityLow))
	if res.Status != model.StatusWarning {
		t.Fatalf("batch = %s, want warning", res.Status)
	}
	if ExitCode(res) != 0 {
		t.Fatal("warning batch must exit zero")
	}

	res = scanWith(t, passing("a"), failing("b", model.SeverityCritical))
	if res.Status != model.StatusFailed {
		t.Fatalf("batch = %s, want failed", res.Status)
	}
	if ExitCode(res) != 1 {
		t.Fatal("failed batch must exit non-zero")
	}
}

type blockingDetector struct{}

func (blockingDetector) Meta() model.DetectorMeta {
	return model.DetectorMeta{ID: "slow", RunsInCI: true}
}
func (blockingDetector) IsApplicable(context.Context, *plugins.Context) bool { return true }
func (blockingDetector) SkipReason() string                                  { return "" }
func (blockingDetector) Run(ctx context.Context, _ *plugins.Context) (*model.RunResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestScanRequestTimeBudget(t *testing.T) {
	root := t.TempDir()
	reg := plugins.NewRegistry()
	reg.Register(blockingDetector{})
	e := NewWithRegistry(reg, nil)

	start := time.Now()
	res, err := e.Scan(context.Background(), model.ScanRequest{Root: root, TimeBudget: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("budget not applied, scan took %s", elapsed)
	}
	if res.Runs[0].Result.Status != model.StatusError {
		t.Fatalf("status = %s, want error after budget expiry", res.Runs[0].Result.Status)
	}
}

func TestScanRequestConfigPath(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(cfgPath, []byte("environment: staging\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	staging := passing("staging-only")
	staging.meta.RelevantEnvironments = []string{"staging"}
	reg := plugins.NewRegistry()
	reg.Register(staging)
	e := NewWithRegistry(reg, nil)

	res, err := e.Scan(context.Background(), model.ScanRequest{Root: root, ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Runs[0].Result.Status != model.StatusPassed {
		t.Fatalf("status = %s: explicit config file not loaded", res.Runs[0].Result.Status)
	}

	if _, err := e.Scan(context.Background(), model.ScanRequest{Root: root, ConfigPath: filepath.Join(root, "absent.yaml")}); err == nil {
		t.Fatal("missing explicit config file must error")
	}
}

func TestPostProcessSeverityThreshold(t *testing.T) {
	runs := []model.DetectorRun{
		failingRun("low", model.SeverityLow),
		failingRun("high", model.SeverityHigh),
	}
	cfg := config.Default()
	cfg.SeverityThreshold = "medium"

	out := postProcess(runs, cfg, t.TempDir())
	if got := out[0].Result; got.Status != model.StatusPassed || len(got.Findings) != 0 {
		t.Fatalf("low-severity run survived the threshold: %+v", got)
	}
	if got := out[1].Result; got.Status != model.StatusFailed || len(got.Findings) != 1 {
		t.Fatalf("high-severity run filtered out: %+v", got)
	}
}

func TestPostProcessIgnoreRules(t *testing.T) {
	runs := []model.DetectorRun{failingRun("noisy", model.SeverityHigh)}
	cfg := config.Default()
	cfg.Ignore = []config.IgnoreRule{{Detector: "noisy", Path: "app.php", Reason: "legacy"}}

	out := postProcess(runs, cfg, t.TempDir())
	if got := out[0].Result; got.Status != model.StatusPassed || len(got.Findings) != 0 {
		t.Fatalf("ignore rule not applied: %+v", got)
	}
}

func TestPostProcessInlineSuppression(t *testing.T) {
	root := t.TempDir()
	content := "<?php\n// larascan:ignore noisy\n$x = 1;\n"
	if err := os.WriteFile(filepath.Join(root, "app.php"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	run := failingRun("noisy", model.SeverityHigh)
	run.Result.Findings[0].Location.Line = 3

	out := postProcess([]model.DetectorRun{run}, config.Default(), root)
	if got := out[0].Result; len(got.Findings) != 0 {
		t.Fatalf("marker on the line above did not suppress: %+v", got)
	}

	// a marker naming a different detector must not suppress
	run = failingRun("other", model.SeverityHigh)
	run.Result.Findings[0].Location.Line = 3
	out = postProcess([]model.DetectorRun{run}, config.Default(), root)
	if got := out[0].Result; len(got.Findings) != 1 {
		t.Fatalf("marker for another detector suppressed: %+v", got)
	}
}

func TestPostProcessMergesDuplicateFingerprints(t *testing.T) {
	run := failingRun("dup", model.SeverityHigh)
	run.Result.Findings = append(run.Result.Findings, run.Result.Findings[0])

	out := postProcess([]model.DetectorRun{run}, config.Default(), t.TempDir())
	if got := len(out[0].Result.Findings); got != 1 {
		t.Fatalf("got %d findings after merge, want 1", got)
	}
}

func TestBaselineRoundTrip(t *testing.T) {
	res := scanWith(t, failing("b", model.SeverityCritical))
	path := filepath.Join(t.TempDir(), "baseline.json")
	if err := WriteBaseline(path, res); err != nil {
		t.Fatalf("WriteBaseline: %v", err)
	}
	b, err := LoadBaseline(path)
	if err != nil {
		t.Fatalf("LoadBaseline: %v", err)
	}
	if len(b.Fingerprints) != 1 || b.Fingerprints[0] != "fp-b" {
		t.Fatalf("fingerprints = %v", b.Fingerprints)
	}

	ApplyBaseline(res, b)
	if res.Status != model.StatusPassed {
		t.Fatalf("baselined result status = %s, want passed", res.Status)
	}
	if len(res.Findings()) != 0 {
		t.Fatal("baselined findings still present")
	}
}

func failingRun(id string, sev model.Severity) model.DetectorRun {
	f := model.Finding{
		Message:     "issue in " + id,
		Location:    model.Location{Path: "app.php", Line: 1},
		Severity:    sev,
		DetectorID:  id,
		Fingerprint: "fp-" + id,
	}
	return model.DetectorRun{
		Detector: model.DetectorMeta{ID: id, RunsInCI: true},
		Result:   model.RunResult{Status: model.DeriveStatus([]model.Finding{f}), Findings: []model.Finding{f}},
	}
}
