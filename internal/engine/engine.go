// Package engine runs registered detectors against a project and folds
// their results into a batch verdict.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/0xlukav/larascan/internal/config"
	"github.com/0xlukav/larascan/internal/model"
	"github.com/0xlukav/larascan/internal/plugins"
	"github.com/0xlukav/larascan/internal/probe"
	"github.com/0xlukav/larascan/internal/source"
)

type Engine struct {
	registry *plugins.Registry
	log      *zap.Logger
}

func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	reg := plugins.NewRegistry()
	reg.RegisterBuiltin()
	return &Engine{registry: reg, log: log}
}

// NewWithRegistry builds an engine over a caller-supplied detector set.
func NewWithRegistry(reg *plugins.Registry, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{registry: reg, log: log}
}

// Scan runs every registered detector and returns per-detector results in
// registration order plus the aggregated batch status.
func (e *Engine) Scan(ctx context.Context, req model.ScanRequest) (*model.ScanResult, error) {
	start := time.Now()

	files, err := source.Open(req.Root)
	if err != nil {
		return nil, err
	}
	var cfg config.Config
	var cfgPath string
	if req.ConfigPath != "" {
		cfg, cfgPath, err = config.LoadFile(req.ConfigPath)
	} else {
		cfg, cfgPath, err = config.Load(files.Root())
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfgPath != "" {
		e.log.Debug("loaded config", zap.String("path", cfgPath))
	}
	if req.Environment != "" {
		cfg.Environment = req.Environment
	}
	cfg.CI = cfg.CI || req.CI

	budget := req.TimeBudget
	if budget <= 0 {
		budget = time.Duration(cfg.TimeBudgetMs) * time.Millisecond
	}
	if _, ok := ctx.Deadline(); !ok && budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	dctx := &plugins.Context{
		Root:        files.Root(),
		Environment: cfg.Environment,
		CI:          cfg.CI,
		Config:      cfg,
		Files:       files,
		Probe:       probe.NewClient(5 * time.Second),
		Introspect:  probe.Unavailable{},
		Log:         e.log,
	}

	runs := e.run(ctx, dctx)
	runs = postProcess(runs, cfg, files.Root())

	var statuses []model.Status
	for _, r := range runs {
		statuses = append(statuses, r.Result.Status)
	}
	return &model.ScanResult{
		Runs:    runs,
		Status:  model.AggregateStatus(statuses),
		Elapsed: time.Since(start),
	}, nil
}

// run executes detectors on a core-bounded worker pool. Results land in a
// slice indexed by registration order so output is deterministic regardless
// of scheduling.
func (e *Engine) run(ctx context.Context, dctx *plugins.Context) []model.DetectorRun {
	detectors := e.registry.Detectors()
	runs := make([]model.DetectorRun, len(detectors))

	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, d := range detectors {
		i, d := i, d
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			runs[i] = model.DetectorRun{Detector: d.Meta(), Result: e.runOne(ctx, d, dctx)}
		}()
	}
	wg.Wait()
	return runs
}

// runOne applies the skip gates and invokes the detector, converting every
// internal failure into an Error result so one failing detector never
// aborts the batch.
func (e *Engine) runOne(ctx context.Context, d plugins.Detector, dctx *plugins.Context) (res model.RunResult) {
	meta := d.Meta()

	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("detector panicked", zap.String("detector", meta.ID), zap.Any("panic", r))
			res = model.RunResult{Status: model.StatusError, Summary: fmt.Sprintf("detector panicked: %v", r)}
		}
	}()

	if len(dctx.Config.Detectors) > 0 && !contains(dctx.Config.Detectors, meta.ID) {
		return model.RunResult{Status: model.StatusSkipped, Summary: "not in the configured detector allow-list"}
	}
	if dctx.CI && !meta.RunsInCI {
		return model.RunResult{Status: model.StatusSkipped, Summary: "not applicable to CI runs"}
	}
	if len(meta.RelevantEnvironments) > 0 && !contains(meta.RelevantEnvironments, dctx.Environment) {
		return model.RunResult{Status: model.StatusSkipped, Summary: "not relevant for environment " + dctx.Environment}
	}
	if !d.IsApplicable(ctx, dctx) {
		return model.RunResult{Status: model.StatusSkipped, Summary: d.SkipReason()}
	}

	out, err := d.Run(ctx, dctx)
	if err != nil {
		// execution failure, not a statement about the target: no findings
		return model.RunResult{Status: model.StatusError, Summary: err.Error()}
	}
	if out == nil {
		return model.RunResult{Status: model.StatusError, Summary: "detector returned no result"}
	}
	return *out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ExitCode maps a batch status to the process exit code CI gates on:
// non-zero only when a detector failed.
func ExitCode(result *model.ScanResult) int {
	if result.Status == model.StatusFailed {
		return 1
	}
	return 0
}
