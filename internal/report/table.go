package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/0xlukav/larascan/internal/model"
)

const timeUnit = time.Millisecond

var (
	statusColors = map[model.Status]*color.Color{
		model.StatusPassed:  color.New(color.FgGreen),
		model.StatusFailed:  color.New(color.FgRed, color.Bold),
		model.StatusWarning: color.New(color.FgYellow),
		model.StatusError:   color.New(color.FgMagenta),
		model.StatusSkipped: color.New(color.FgHiBlack),
	}
	severityColors = map[model.Severity]*color.Color{
		model.SeverityCritical: color.New(color.FgRed, color.Bold),
		model.SeverityHigh:     color.New(color.FgRed),
		model.SeverityMedium:   color.New(color.FgYellow),
		model.SeverityLow:      color.New(color.FgCyan),
		model.SeverityInfo:     color.New(color.FgHiBlack),
	}
)

// WriteTable renders the human-readable terminal report: one line per
// detector run, findings grouped underneath, and a batch verdict at the end.
func WriteTable(w io.Writer, result *model.ScanResult) {
	for _, run := range result.Runs {
		c, ok := statusColors[run.Result.Status]
		if !ok {
			c = color.New()
		}
		fmt.Fprintf(w, "%s  %-34s %s\n",
			c.Sprintf("%-7s", strings.ToUpper(string(run.Result.Status))),
			run.Detector.Name,
			run.Result.Summary)

		for _, f := range run.Result.Findings {
			sc, ok := severityColors[f.Severity]
			if !ok {
				sc = color.New()
			}
			loc := f.Location.Path
			if f.Location.Line > 0 {
				loc = fmt.Sprintf("%s:%d", f.Location.Path, f.Location.Line)
			}
			fmt.Fprintf(w, "    %s %s  %s\n", sc.Sprintf("[%s]", f.Severity), loc, f.Message)
			if f.Recommendation != "" {
				fmt.Fprintf(w, "      fix: %s\n", f.Recommendation)
			}
		}
	}

	findings := result.Findings()
	verdict := statusColors[result.Status].Sprint(strings.ToUpper(string(result.Status)))
	fmt.Fprintf(w, "\n%s: %d findings across %d checks (elapsed %s)\n",
		verdict, len(findings), len(result.Runs), result.Elapsed.Round(timeUnit))
}
