package plugins

import (
	"context"
	"strings"

	"github.com/0xlukav/larascan/internal/model"
	"github.com/0xlukav/larascan/internal/util"
)

// debug tooling routes that must not answer on a deployed host. The marker
// confirms the body is really the tool and not a catch-all 200 page.
var debugRoutes = []struct {
	path   string
	marker string
	name   string
}{
	{"/telescope", "Telescope", "Laravel Telescope"},
	{"/horizon", "Horizon", "Laravel Horizon"},
	{"/_debugbar/open", "debugbar", "Debugbar"},
}

// debugEndpoints probes a deployed base URL for exposed debug tooling. Any
// transport error reads as "not reachable" and produces no finding: the
// check prefers missed detections over false alarms. When a live
// introspection probe is available it additionally checks registered
// middleware for debug handlers.
type debugEndpoints struct{}

func (d *debugEndpoints) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:                   "live-debug-endpoints",
		Name:                 "Exposed debug endpoints",
		Description:          "Probes a deployed host for reachable debug tooling",
		Category:             "live",
		Severity:             model.SeverityHigh,
		Tags:                 []string{"live", "debug"},
		EstimatedFixMinutes:  15,
		RunsInCI:             false, // live hosts are not reachable from CI runners
		RelevantEnvironments: []string{"production", "staging"},
	}
}

func (d *debugEndpoints) IsApplicable(_ context.Context, dctx *Context) bool {
	return dctx.Config.BaseURL != "" && dctx.Probe != nil
}

func (d *debugEndpoints) SkipReason() string { return "no baseUrl configured for live probing" }

func (d *debugEndpoints) Run(ctx context.Context, dctx *Context) (*model.RunResult, error) {
	base := strings.TrimRight(dctx.Config.BaseURL, "/")
	var findings []model.Finding

	for _, route := range debugRoutes {
		resp, err := dctx.Probe.Fetch(ctx, base+route.path)
		if err != nil || resp == nil {
			continue // cannot prove insecure
		}
		if resp.Status != 200 || !strings.Contains(resp.Body, route.marker) {
			continue
		}
		meta := model.NewMetadata().Set("url", base+route.path).Set("status", resp.Status)
		findings = append(findings, model.Finding{
			Message:        route.name + " is publicly reachable at " + route.path,
			Location:       model.Location{Path: route.path},
			Severity:       model.SeverityHigh,
			Recommendation: "Restrict " + route.name + " behind authentication or disable it outside local environments.",
			Metadata:       meta,
			DetectorID:     d.Meta().ID,
			Fingerprint:    util.Fingerprint(d.Meta().ID, route.path, 0, route.name),
		})
	}

	if dctx.Introspect != nil {
		if middleware, err := dctx.Introspect.Middleware(ctx); err == nil {
			for _, mw := range middleware {
				if strings.Contains(mw, "Debugbar") || strings.Contains(mw, "Telescope") {
					findings = append(findings, model.Finding{
						Message:        "debug middleware " + mw + " is registered on the live host",
						Location:       model.Location{Path: "middleware"},
						Severity:       model.SeverityMedium,
						Recommendation: "Register debug middleware only in the local environment.",
						DetectorID:     d.Meta().ID,
						Fingerprint:    util.Fingerprint(d.Meta().ID, "middleware", 0, mw),
					})
				}
			}
		}
		// ErrUnavailable: indeterminate, static probing above already ran
	}

	return result(findings, "no debug tooling reachable"), nil
}
