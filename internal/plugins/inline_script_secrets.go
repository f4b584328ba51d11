package plugins

import (
	"context"
	"regexp"
	"strings"

	"github.com/0xlukav/larascan/internal/model"
	"github.com/0xlukav/larascan/internal/scriptctx"
)

// secretAssignment matches hardcoded credential-looking assignments inside
// embedded scripts, e.g. apiKey = "sk_live_..." or token: 'eyJ...'.
var secretAssignment = regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password|private[_-]?key)\s*[:=]\s*['"][^'"]{12,}['"]`)

// inlineScriptSecrets scans Blade templates and flags secret-looking
// literals inside <script> regions, where they ship to every visitor.
type inlineScriptSecrets struct{}

func (d *inlineScriptSecrets) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:                  "template-inline-secret",
		Name:                "Secret in inline script",
		Description:         "Finds credential-looking literals inside <script> blocks of templates",
		Category:            "templates",
		Severity:            model.SeverityHigh,
		Tags:                []string{"secrets", "xss-surface"},
		EstimatedFixMinutes: 20,
		RunsInCI:            true,
	}
}

func (d *inlineScriptSecrets) IsApplicable(_ context.Context, dctx *Context) bool {
	return len(dctx.bladeFiles()) > 0
}

func (d *inlineScriptSecrets) SkipReason() string { return "no Blade templates found" }

func (d *inlineScriptSecrets) Run(_ context.Context, dctx *Context) (*model.RunResult, error) {
	var findings []model.Finding
	tracker := scriptctx.NewScript()
	for _, rel := range dctx.bladeFiles() {
		content, err := dctx.Files.Read(rel)
		if err != nil {
			continue
		}
		tracker.Reset()
		for i, line := range strings.Split(content, "\n") {
			v := tracker.Line(line)
			if !v.Inside || v.Structural {
				continue
			}
			if m := secretAssignment.FindString(line); m != "" {
				findings = append(findings, finding(d.Meta().ID, rel, i+1, content,
					model.SeverityHigh,
					"inline script contains a hardcoded secret-looking value",
					"Move the value server-side; anything in an inline script is visible to every visitor."))
			}
		}
	}
	return result(findings, "no secrets in inline scripts"), nil
}
