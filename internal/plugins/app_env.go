package plugins

import (
	"context"
	"path/filepath"

	"github.com/0xlukav/larascan/internal/envfile"
	"github.com/0xlukav/larascan/internal/model"
	"github.com/0xlukav/larascan/internal/util"
)

// appEnv inspects the project's .env file for debug and key hygiene.
type appEnv struct{}

func (d *appEnv) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:                   "app-env-hygiene",
		Name:                 "Environment file hygiene",
		Description:          "Checks .env for enabled debug mode and a missing application key",
		Category:             "configuration",
		Severity:             model.SeverityCritical,
		Tags:                 []string{"env", "debug"},
		EstimatedFixMinutes:  5,
		RunsInCI:             true,
		RelevantEnvironments: []string{"production", "staging"},
	}
}

func (d *appEnv) IsApplicable(_ context.Context, dctx *Context) bool {
	return dctx.Files.Exists(".env")
}

func (d *appEnv) SkipReason() string { return "no .env file at the project root" }

func (d *appEnv) Run(_ context.Context, dctx *Context) (*model.RunResult, error) {
	f, err := envfile.Load(filepath.Join(dctx.Root, ".env"))
	if err != nil {
		return nil, err
	}
	var findings []model.Finding

	if f.IsTruthy("APP_DEBUG") {
		findings = append(findings, model.Finding{
			Message:        "APP_DEBUG is enabled",
			Location:       model.Location{Path: ".env", Line: f.LineOf("APP_DEBUG")},
			Severity:       model.SeverityCritical,
			Recommendation: "Set APP_DEBUG=false outside local development; debug pages leak credentials and source paths.",
			DetectorID:     d.Meta().ID,
			Fingerprint:    util.Fingerprint(d.Meta().ID, ".env", f.LineOf("APP_DEBUG"), "APP_DEBUG"),
		})
	}
	if key, ok := f.Get("APP_KEY"); ok && key == "" {
		findings = append(findings, model.Finding{
			Message:        "APP_KEY is empty",
			Location:       model.Location{Path: ".env", Line: f.LineOf("APP_KEY")},
			Severity:       model.SeverityCritical,
			Recommendation: "Generate an application key; encrypted payloads and session cookies are forgeable without one.",
			DetectorID:     d.Meta().ID,
			Fingerprint:    util.Fingerprint(d.Meta().ID, ".env", f.LineOf("APP_KEY"), "APP_KEY"),
		})
	}
	if v, ok := f.Get("APP_ENV"); ok && v == "production" && f.IsTruthy("DEBUGBAR_ENABLED") {
		findings = append(findings, model.Finding{
			Message:        "debugbar is enabled in a production environment",
			Location:       model.Location{Path: ".env", Line: f.LineOf("DEBUGBAR_ENABLED")},
			Severity:       model.SeverityHigh,
			Recommendation: "Set DEBUGBAR_ENABLED=false in production.",
			DetectorID:     d.Meta().ID,
			Fingerprint:    util.Fingerprint(d.Meta().ID, ".env", f.LineOf("DEBUGBAR_ENABLED"), "DEBUGBAR_ENABLED"),
		})
	}

	return result(findings, ".env is clean"), nil
}
