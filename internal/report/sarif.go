package report

import (
	"encoding/json"

	"github.com/0xlukav/larascan/internal/model"
)

type sarif struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}
type sarifDriver struct {
	Name  string      `json:"name"`
	Rules []sarifRule `json:"rules"`
}
type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}
type sarifLoc struct {
	Physical sarifPhys `json:"physicalLocation"`
}
type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}
type sarifArt struct {
	URI string `json:"uri"`
}
type sarifRegion struct {
	StartLine int `json:"startLine"`
}

const sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// ToSARIF renders the scan result as a single-run SARIF 2.1.0 log. Each
// detector that produced a finding becomes a rule.
func ToSARIF(result *model.ScanResult) ([]byte, error) {
	rules := []sarifRule{}
	seen := map[string]bool{}
	results := []sarifResult{}

	for _, run := range result.Runs {
		for _, f := range run.Result.Findings {
			if !seen[f.DetectorID] {
				seen[f.DetectorID] = true
				rules = append(rules, sarifRule{
					ID:               f.DetectorID,
					Name:             run.Detector.Name,
					ShortDescription: sarifMessage{Text: run.Detector.Description},
				})
			}
			var region *sarifRegion
			if f.Location.Line > 0 {
				region = &sarifRegion{StartLine: f.Location.Line}
			}
			results = append(results, sarifResult{
				RuleID:  f.DetectorID,
				Level:   sarifLevel(f.Severity),
				Message: sarifMessage{Text: f.Message},
				Locations: []sarifLoc{{Physical: sarifPhys{
					ArtifactLocation: sarifArt{URI: f.Location.Path},
					Region:           region,
				}}},
			})
		}
	}

	s := sarif{
		Version: "2.1.0",
		Schema:  sarifSchema,
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: "larascan", Rules: rules}},
			Results: results,
		}},
	}
	return json.MarshalIndent(s, "", "  ")
}

func sarifLevel(sev model.Severity) string {
	switch sev {
	case model.SeverityMedium:
		return "warning"
	case model.SeverityHigh, model.SeverityCritical:
		return "error"
	default:
		return "note"
	}
}
