// Package plugins holds the detector contract and the built-in detectors.
// Each detector is an independent rule-check unit: an applicability gate
// plus a run function, composed from the engine's services (source access,
// syntax trees, the config resolver, the state trackers, the advisory
// matcher). Detectors never mutate target-project files.
package plugins

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/0xlukav/larascan/internal/config"
	"github.com/0xlukav/larascan/internal/model"
	"github.com/0xlukav/larascan/internal/probe"
	"github.com/0xlukav/larascan/internal/source"
)

// Context is the immutable per-run state shared by all detectors. It is
// built once per scan; detectors only read from it, so they can run in
// parallel without synchronization.
type Context struct {
	Root        string
	Environment string
	CI          bool
	Config      config.Config
	Files       *source.Project
	Probe       probe.Fetcher
	Introspect  probe.LiveIntrospectionProbe
	Log         *zap.Logger

	listOnce sync.Once
	php      []string
	blade    []string
}

// Detector is one rule-check unit.
type Detector interface {
	Meta() model.DetectorMeta
	// IsApplicable gates the run: a false return means the project does not
	// have the inputs this detector inspects.
	IsApplicable(ctx context.Context, dctx *Context) bool
	// SkipReason explains a false IsApplicable in reports.
	SkipReason() string
	// Run performs the check. A returned error means the detector could not
	// complete its own logic; it is never a statement about the target's
	// security posture.
	Run(ctx context.Context, dctx *Context) (*model.RunResult, error)
}

// Registry is the ordered set of registered detectors. Order is the
// deterministic output order of a scan.
type Registry struct {
	detectors []Detector
}

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) Register(d Detector) { r.detectors = append(r.detectors, d) }

func (r *Registry) RegisterBuiltin() {
	r.Register(&sessionConfig{})
	r.Register(&appEnv{})
	r.Register(&massUnguard{})
	r.Register(&massAssignable{})
	r.Register(&inlineScriptSecrets{})
	r.Register(&vulnerableDeps{})
	r.Register(&outdatedDeps{})
	r.Register(&debugEndpoints{})
}

func (r *Registry) Detectors() []Detector { return r.detectors }

// result assembles a RunResult from findings, deriving the status and a
// short summary.
func result(findings []model.Finding, passedSummary string) *model.RunResult {
	status := model.DeriveStatus(findings)
	summary := passedSummary
	if len(findings) > 0 {
		summary = summarize(findings)
	}
	return &model.RunResult{Status: status, Summary: summary, Findings: findings}
}

func summarize(findings []model.Finding) string {
	if len(findings) == 1 {
		return "1 issue found"
	}
	return strconv.Itoa(len(findings)) + " issues found"
}
