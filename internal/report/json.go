// Package report renders a scan result as JSON, SARIF, or a terminal table.
package report

import (
	"encoding/json"
	"io"

	"github.com/0xlukav/larascan/internal/model"
)

// jsonReport is the stable machine-readable export. Field names and nesting
// are a compatibility contract; extend, never rename.
type jsonReport struct {
	Status    model.Status    `json:"status"`
	ElapsedMs int64           `json:"elapsedMs"`
	Runs      []jsonRun       `json:"runs"`
	Findings  []model.Finding `json:"findings"`
	Errors    []jsonError     `json:"errors,omitempty"`
}

type jsonError struct {
	Detector string `json:"detector"`
	Message  string `json:"message"`
}

type jsonRun struct {
	Detector string          `json:"detector"`
	Name     string          `json:"name"`
	Status   model.Status    `json:"status"`
	Summary  string          `json:"summary,omitempty"`
	Findings []model.Finding `json:"findings,omitempty"`
}

// WriteJSON renders the result as indented JSON.
func WriteJSON(w io.Writer, result *model.ScanResult) error {
	out := jsonReport{
		Status:    result.Status,
		ElapsedMs: result.Elapsed.Milliseconds(),
		Findings:  result.Findings(),
	}
	if out.Findings == nil {
		out.Findings = []model.Finding{}
	}
	for _, run := range result.Errors() {
		out.Errors = append(out.Errors, jsonError{Detector: run.Detector.ID, Message: run.Result.Summary})
	}
	for _, run := range result.Runs {
		out.Runs = append(out.Runs, jsonRun{
			Detector: run.Detector.ID,
			Name:     run.Detector.Name,
			Status:   run.Result.Status,
			Summary:  run.Result.Summary,
			Findings: run.Result.Findings,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
