package plugins

import (
	"context"
	"fmt"

	"github.com/0xlukav/larascan/internal/model"
	"github.com/0xlukav/larascan/internal/resolver"
	"github.com/0xlukav/larascan/internal/source"
	"github.com/0xlukav/larascan/internal/srctree"
	"github.com/0xlukav/larascan/internal/util"
)

const sessionConfigPath = "config/session.php"

// sessionConfig checks cookie hardening keys in config/session.php.
// Keys resolved to an env default are judged by that default; keys that
// cannot be resolved statically are skipped, never guessed.
type sessionConfig struct{}

func (d *sessionConfig) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:                  "session-cookie-hardening",
		Name:                "Session cookie hardening",
		Description:         "Verifies http_only, secure and same_site session cookie settings",
		Category:            "configuration",
		Severity:            model.SeverityCritical,
		Tags:                []string{"session", "cookies"},
		EstimatedFixMinutes: 5,
		RunsInCI:            true,
	}
}

func (d *sessionConfig) IsApplicable(_ context.Context, dctx *Context) bool {
	return dctx.Files.Exists(sessionConfigPath)
}

func (d *sessionConfig) SkipReason() string { return "config/session.php not present" }

func (d *sessionConfig) Run(ctx context.Context, dctx *Context) (*model.RunResult, error) {
	content, err := dctx.Files.Read(sessionConfigPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sessionConfigPath, err)
	}
	tree, err := srctree.Parse(ctx, []byte(content))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", sessionConfigPath, err)
	}
	defer tree.Close()

	entries, dups := resolver.ParseConfigArray(tree)
	var findings []model.Finding

	findings = append(findings, d.checkBool(entries, content, "http_only", model.SeverityCritical,
		"session cookie is not flagged HttpOnly, exposing it to script access",
		"Set 'http_only' => true so the session cookie is unreadable from JavaScript.")...)
	findings = append(findings, d.checkBool(entries, content, "secure", model.SeverityHigh,
		"session cookie is not restricted to HTTPS",
		"Set 'secure' => true (or SESSION_SECURE_COOKIE=true) so the cookie is never sent over plain HTTP.")...)

	if e, ok := entries["same_site"]; ok && e.Known() {
		if s, ok := e.StringValue(); ok && s == "none" {
			findings = append(findings, finding(d.Meta().ID, sessionConfigPath, e.SourceLine, content,
				model.SeverityMedium,
				"session cookie SameSite is 'none'",
				"Use 'lax' or 'strict' unless the cookie genuinely must be sent cross-site."))
		}
		if e.Value == nil {
			findings = append(findings, finding(d.Meta().ID, sessionConfigPath, e.SourceLine, content,
				model.SeverityLow,
				"session cookie SameSite is disabled (null)",
				"Set 'same_site' => 'lax' to restrict cross-site sends."))
		}
	}

	for _, dup := range dups {
		findings = append(findings, finding(d.Meta().ID, sessionConfigPath, dup.Line, content,
			model.SeverityLow,
			"duplicate config key '"+dup.Key+"' shadows an earlier assignment",
			"Remove the duplicate assignment; only one survives at runtime."))
	}

	return result(findings, "session cookie settings are hardened"), nil
}

func (d *sessionConfig) checkBool(entries map[string]resolver.ConfigEntry, content, key string, sev model.Severity, message, recommendation string) []model.Finding {
	e, ok := entries[key]
	if !ok || !e.Known() {
		return nil // indeterminate: skip evaluation rather than assume
	}
	if v, ok := e.BoolValue(); ok && !v {
		return []model.Finding{finding(d.Meta().ID, sessionConfigPath, e.SourceLine, content, sev, message, recommendation)}
	}
	return nil
}

// finding builds a Finding with a bounded snippet and fingerprint attached.
func finding(detectorID, path string, line int, content string, sev model.Severity, message, recommendation string) model.Finding {
	code := ""
	if line > 0 {
		code = source.Snippet(content, line, 5)
	}
	return model.Finding{
		Message:        message,
		Location:       model.Location{Path: path, Line: line},
		Severity:       sev,
		Recommendation: recommendation,
		Code:           code,
		DetectorID:     detectorID,
		Fingerprint:    util.Fingerprint(detectorID, path, line, message),
	}
}
