package plugins

import (
	"context"
	"strconv"
	"time"

	"github.com/0xlukav/larascan/internal/model"
	"github.com/0xlukav/larascan/internal/tools"
	"github.com/0xlukav/larascan/internal/util"
)

// outdatedDeps compares `npm outdated` for production dependencies against
// the full tree. The prod-vs-dev split rests on comparing the two normalized
// outputs for overlap; it is a best-effort heuristic and only modulates
// severity, never correctness of a match.
type outdatedDeps struct{}

func (d *outdatedDeps) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:                  "deps-outdated",
		Name:                "Outdated dependencies",
		Description:         "Reports dependencies behind their latest release",
		Category:            "dependencies",
		Severity:            model.SeverityLow,
		Tags:                []string{"dependencies", "maintenance"},
		EstimatedFixMinutes: 60,
		RunsInCI:            false, // registry round-trips are too slow and flaky for CI gates
	}
}

func (d *outdatedDeps) IsApplicable(_ context.Context, dctx *Context) bool {
	return dctx.Config.ExternalTools.NpmOutdated && dctx.Files.Exists("package.json")
}

func (d *outdatedDeps) SkipReason() string {
	return "npm outdated disabled or no package.json present"
}

func (d *outdatedDeps) Run(ctx context.Context, dctx *Context) (*model.RunResult, error) {
	timeout := time.Duration(dctx.Config.ToolTimeoutMs) * time.Millisecond

	all := tools.RunWithTimeout(ctx, timeout, dctx.Root, "npm", "outdated", "--json")
	if all.TimedOut {
		return &model.RunResult{Status: model.StatusSkipped, Summary: "npm outdated timed out; check inconclusive"}, nil
	}
	// npm outdated exits 1 when anything is outdated; only empty output is unusable
	allPkgs, err := tools.ParseOutdated(all.Raw)
	if err != nil {
		return &model.RunResult{Status: model.StatusSkipped, Summary: "npm outdated output unparsable; check inconclusive"}, nil
	}
	if len(allPkgs) == 0 {
		return result(nil, "all dependencies are current"), nil
	}

	prod := tools.RunWithTimeout(ctx, timeout, dctx.Root, "npm", "outdated", "--json", "--omit=dev")
	prodPkgs, _ := tools.ParseOutdated(prod.Raw)

	overlap := tools.OutdatedOverlap(prodPkgs, allPkgs)
	sev := model.SeverityLow
	scope := "development"
	if len(prodPkgs) > 0 {
		sev = model.SeverityMedium
		scope = "production"
		if overlap < 0.5 {
			scope = "production and development"
		}
	}

	meta := model.NewMetadata().
		Set("outdatedCount", len(allPkgs)).
		Set("productionOutdatedCount", len(prodPkgs)).
		Set("scope", scope)
	var names []string
	for _, p := range allPkgs {
		names = append(names, p.Name+" ("+p.Current+" -> "+p.Latest+")")
	}
	meta.Set("packages", names)

	f := model.Finding{
		Message:        strconv.Itoa(len(allPkgs)) + " dependencies are behind their latest release (" + scope + ")",
		Location:       model.Location{Path: "package.json"},
		Severity:       sev,
		Recommendation: "Schedule dependency upgrades; stale trees accumulate unpatched vulnerabilities.",
		Metadata:       meta,
		DetectorID:     d.Meta().ID,
		Fingerprint:    util.Fingerprint(d.Meta().ID, "package.json", 0, "outdated"),
	}
	return result([]model.Finding{f}, ""), nil
}
