package plugins

import (
	"context"
	"regexp"

	"github.com/0xlukav/larascan/internal/model"
	"github.com/0xlukav/larascan/internal/srctree"
)

// model base classes whose subclasses accept mass assignment. Only the
// directly declared parent is matched; deeper chains are a documented
// limitation of the tree query layer.
var modelSupertypes = []string{"Model", "Authenticatable", "Pivot"}

var emptyGuarded = regexp.MustCompile(`\$guarded\s*=\s*\[\s*\]`)

// massAssignable flags Eloquent models that disable guarding entirely with
// an empty $guarded array.
type massAssignable struct{}

func (d *massAssignable) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:                  "model-fully-unguarded",
		Name:                "Fully unguarded model",
		Description:         "Finds model classes declaring an empty $guarded array",
		Category:            "code",
		Severity:            model.SeverityMedium,
		Tags:                []string{"mass-assignment", "eloquent"},
		EstimatedFixMinutes: 15,
		RunsInCI:            true,
	}
}

func (d *massAssignable) IsApplicable(_ context.Context, dctx *Context) bool {
	return len(dctx.phpFiles()) > 0
}

func (d *massAssignable) SkipReason() string { return "no PHP sources found" }

func (d *massAssignable) Run(ctx context.Context, dctx *Context) (*model.RunResult, error) {
	var findings []model.Finding
	analyzed := 0
	for _, rel := range dctx.phpFiles() {
		content, err := dctx.Files.Read(rel)
		if err != nil {
			continue
		}
		tree, err := srctree.Parse(ctx, []byte(content))
		if err != nil {
			continue
		}
		analyzed++
		for _, cls := range tree.ClassesExtending(modelSupertypes) {
			body := cls.Node.Text()
			if loc := emptyGuarded.FindStringIndex(body); loc != nil {
				line := cls.Node.Line() + countNewlines(body[:loc[0]])
				findings = append(findings, finding(d.Meta().ID, rel, line, content,
					model.SeverityMedium,
					"model "+cls.Name+" declares $guarded = [], accepting every attribute in mass assignment",
					"List the writable attributes in $fillable instead of disabling guarding."))
			}
		}
		tree.Close()
	}
	if analyzed == 0 {
		return nil, errNoAnalyzableFiles
	}
	return result(findings, "no fully unguarded models"), nil
}

func countNewlines(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
		}
	}
	return n
}
