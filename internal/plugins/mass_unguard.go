package plugins

import (
	"context"

	"github.com/0xlukav/larascan/internal/model"
	"github.com/0xlukav/larascan/internal/pairing"
	"github.com/0xlukav/larascan/internal/srctree"
)

// massUnguard flags Model::unguard() calls that are not followed by a
// matching Model::reguard() in the same file, leaving mass-assignment
// protection disabled.
type massUnguard struct{}

func (d *massUnguard) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:                  "model-unguard-unpaired",
		Name:                "Unpaired model unguard",
		Description:         "Finds unguard() calls without a following reguard() in the same file",
		Category:            "code",
		Severity:            model.SeverityHigh,
		Tags:                []string{"mass-assignment", "eloquent"},
		EstimatedFixMinutes: 10,
		RunsInCI:            true,
	}
}

func (d *massUnguard) IsApplicable(_ context.Context, dctx *Context) bool {
	return len(dctx.phpFiles()) > 0
}

func (d *massUnguard) SkipReason() string { return "no PHP sources found" }

func (d *massUnguard) Run(ctx context.Context, dctx *Context) (*model.RunResult, error) {
	var findings []model.Finding
	analyzed := 0
	for _, rel := range dctx.phpFiles() {
		content, err := dctx.Files.Read(rel)
		if err != nil {
			continue
		}
		tree, err := srctree.Parse(ctx, []byte(content))
		if err != nil {
			// one malformed file must not break the batch
			dctx.Log.Debug("skipping unparsable file", zapPath(rel))
			continue
		}
		analyzed++

		var opens, closes []pairing.Event
		for _, c := range tree.CallsByName("unguard") {
			opens = append(opens, pairing.Event{Kind: pairing.Open, Line: c.Node.Line()})
		}
		for _, c := range tree.CallsByName("reguard") {
			closes = append(closes, pairing.Event{Kind: pairing.Close, Line: c.Node.Line()})
		}
		tree.Close()

		for _, open := range pairing.Unresolved(opens, closes) {
			findings = append(findings, finding(d.Meta().ID, rel, open.Line, content,
				model.SeverityHigh,
				"unguard() disables mass-assignment protection and is never re-enabled",
				"Call reguard() after the block that needs unguarded assignment, or use forceFill on the specific model."))
		}
	}
	if analyzed == 0 {
		return nil, errNoAnalyzableFiles
	}
	return result(findings, "every unguard() is paired with a reguard()"), nil
}
