package plugins

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/0xlukav/larascan/internal/advisory"
	"github.com/0xlukav/larascan/internal/cache"
	"github.com/0xlukav/larascan/internal/lockfile"
	"github.com/0xlukav/larascan/internal/model"
	"github.com/0xlukav/larascan/internal/tools"
	"github.com/0xlukav/larascan/internal/util"
)

// vulnerableDeps matches the project's lockfile against the configured
// advisory feed; without a feed it falls back to running the package
// manager's own audit command.
type vulnerableDeps struct{}

func (d *vulnerableDeps) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:                  "deps-known-vulnerabilities",
		Name:                "Known vulnerable dependencies",
		Description:         "Matches installed package versions against known advisories",
		Category:            "dependencies",
		Severity:            model.SeverityCritical,
		Tags:                []string{"dependencies", "advisories"},
		EstimatedFixMinutes: 30,
		RunsInCI:            true,
	}
}

func (d *vulnerableDeps) IsApplicable(_ context.Context, dctx *Context) bool {
	for _, name := range lockfile.Names {
		if dctx.Files.Exists(name) {
			return true
		}
	}
	return false
}

func (d *vulnerableDeps) SkipReason() string { return "no supported lockfile at the project root" }

func (d *vulnerableDeps) Run(ctx context.Context, dctx *Context) (*model.RunResult, error) {
	installed, lockName, found, err := lockfile.Detect(dctx.Root)
	if !found {
		return &model.RunResult{Status: model.StatusSkipped, Summary: d.SkipReason()}, nil
	}
	if err != nil {
		return nil, err
	}

	if dctx.Config.AdvisoryFeed != "" {
		feed, err := advisory.LoadFeed(filepath.Join(dctx.Root, dctx.Config.AdvisoryFeed))
		if err != nil {
			return nil, err
		}
		return d.fromFeed(installed, lockName, feed), nil
	}
	return d.fromAudit(ctx, dctx, lockName)
}

func (d *vulnerableDeps) fromFeed(installed map[string]string, lockName string, feed *advisory.Feed) *model.RunResult {
	var findings []model.Finding
	for _, rec := range advisory.Match(installed, feed) {
		meta := model.NewMetadata().
			Set("package", rec.Package).
			Set("installedVersion", rec.InstalledVersion)
		var ids []string
		var links []string
		for _, a := range rec.Matched {
			ids = append(ids, a.Identifiers...)
			if a.Link != "" {
				links = append(links, a.Link)
			}
		}
		meta.Set("advisories", len(rec.Matched))
		if len(ids) > 0 {
			meta.Set("identifiers", ids)
		}
		if len(links) > 0 {
			meta.Set("links", links)
		}
		f := model.Finding{
			Message:        rec.Package + "@" + rec.InstalledVersion + " matches " + plural(len(rec.Matched), "known advisory", "known advisories"),
			Location:       model.Location{Path: lockName},
			Severity:       rec.MaxSeverity,
			Recommendation: "Upgrade " + rec.Package + " past every affected range.",
			Metadata:       meta,
			DetectorID:     d.Meta().ID,
			Fingerprint:    util.Fingerprint(d.Meta().ID, lockName, 0, rec.Package+"@"+rec.InstalledVersion),
		}
		findings = append(findings, f)
	}
	for _, ab := range advisory.AbandonedPackages(installed, feed) {
		rec := "Replace " + ab.Package + " with a maintained alternative."
		if ab.Replacement != "" {
			rec = "Replace " + ab.Package + " with " + ab.Replacement + "."
		}
		findings = append(findings, model.Finding{
			Message:        ab.Package + " is abandoned by its maintainers",
			Location:       model.Location{Path: lockName},
			Severity:       model.SeverityLow,
			Recommendation: rec,
			DetectorID:     d.Meta().ID,
			Fingerprint:    util.Fingerprint(d.Meta().ID, lockName, 0, "abandoned:"+ab.Package),
		})
	}
	return result(findings, "no installed package matches a known advisory")
}

// fromAudit shells out to the package manager's audit command. A timeout or
// unparsable output leaves the check inconclusive: skip, not fail.
func (d *vulnerableDeps) fromAudit(ctx context.Context, dctx *Context, lockName string) (*model.RunResult, error) {
	tool, args := "npm", []string{"audit", "--json"}
	enabled := dctx.Config.ExternalTools.NpmAudit
	if lockName == "yarn.lock" {
		tool, args = "yarn", []string{"audit", "--json"}
		enabled = dctx.Config.ExternalTools.YarnAudit
	}
	if !enabled {
		return &model.RunResult{Status: model.StatusSkipped, Summary: "no advisory feed configured and " + tool + " audit disabled"}, nil
	}

	raw, ok := d.auditOutput(ctx, dctx, tool, args)
	if !ok {
		return &model.RunResult{Status: model.StatusSkipped, Summary: tool + " audit unavailable; dependency check inconclusive"}, nil
	}
	vulns, err := tools.Normalize(tool, raw)
	if err != nil {
		return &model.RunResult{Status: model.StatusSkipped, Summary: tool + " audit output unparsable; dependency check inconclusive"}, nil
	}

	// merge per package, severity = max across advisories
	byPkg := map[string][]tools.Vulnerability{}
	var order []string
	for _, v := range vulns {
		if _, seen := byPkg[v.Package]; !seen {
			order = append(order, v.Package)
		}
		byPkg[v.Package] = append(byPkg[v.Package], v)
	}
	var findings []model.Finding
	for _, pkg := range order {
		group := byPkg[pkg]
		sev := model.SeverityInfo
		meta := model.NewMetadata().Set("package", pkg).Set("advisories", len(group))
		var titles []string
		for _, v := range group {
			sev = model.MaxSeverity(sev, auditSeverity(v.Severity))
			if v.Title != "" {
				titles = append(titles, v.Title)
			}
		}
		if len(titles) > 0 {
			meta.Set("titles", titles)
		}
		findings = append(findings, model.Finding{
			Message:        pkg + " matches " + plural(len(group), "known advisory", "known advisories"),
			Location:       model.Location{Path: lockName},
			Severity:       sev,
			Recommendation: "Upgrade " + pkg + " past every affected range.",
			Metadata:       meta,
			DetectorID:     d.Meta().ID,
			Fingerprint:    util.Fingerprint(d.Meta().ID, lockName, 0, "audit:"+pkg),
		})
	}
	return result(findings, tool+" audit reports no vulnerable packages"), nil
}

// auditOutput runs the audit command, caching output keyed by the lockfile
// content so repeated scans of an unchanged tree skip the network.
func (d *vulnerableDeps) auditOutput(ctx context.Context, dctx *Context, tool string, args []string) ([]byte, bool) {
	lockContent := ""
	for _, name := range lockfile.Names {
		if c, err := dctx.Files.Read(name); err == nil {
			lockContent = c
			break
		}
	}
	key := cache.Key("audit-v1", tool, lockContent)
	if b, ok := cache.Load(key); ok {
		return b, true
	}
	timeout := time.Duration(dctx.Config.ToolTimeoutMs) * time.Millisecond
	res := tools.RunWithTimeout(ctx, timeout, dctx.Root, tool, args...)
	if res.TimedOut || res.Err != nil || len(res.Raw) == 0 {
		return nil, false
	}
	_ = cache.Store(key, res.Raw)
	return res.Raw, true
}

func auditSeverity(s string) model.Severity {
	switch strings.ToLower(s) {
	case "critical":
		return model.SeverityCritical
	case "high":
		return model.SeverityHigh
	case "moderate", "medium":
		return model.SeverityMedium
	case "low":
		return model.SeverityLow
	default:
		return model.SeverityInfo
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
