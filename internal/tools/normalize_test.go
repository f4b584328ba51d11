package tools

import (
	"context"
	"testing"
	"time"
)

const npmAuditV7 = `{
  "auditReportVersion": 2,
  "vulnerabilities": {
    "lodash": {
      "name": "lodash",
      "severity": "high",
      "range": "<4.17.21",
      "via": [
        {"title": "Command Injection", "url": "https://github.com/advisories/GHSA-35jh"}
      ]
    },
    "minimist": {
      "name": "minimist",
      "severity": "critical",
      "range": "<1.2.6",
      "via": ["lodash"]
    }
  }
}`

func TestNormalizeNpmAuditFlatMap(t *testing.T) {
	got, err := Normalize("npm", []byte(npmAuditV7))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 vulnerabilities, got %d", len(got))
	}
	// sorted by package name
	if got[0].Package != "lodash" || got[1].Package != "minimist" {
		t.Errorf("unexpected order: %+v", got)
	}
	if got[0].Title != "Command Injection" || got[0].Severity != "high" || got[0].AffectedRange != "<4.17.21" {
		t.Errorf("unexpected lodash record: %+v", got[0])
	}
	if got[1].Title != "" {
		t.Errorf("string-only via must not yield a title: %+v", got[1])
	}
}

const npmAuditLegacy = `{
  "advisories": {
    "118": {
      "module_name": "left-pad",
      "severity": "moderate",
      "title": "ReDoS",
      "vulnerable_versions": "<1.3.0",
      "url": "https://npmjs.com/advisories/118"
    }
  }
}`

func TestNormalizeNpmAuditLegacyFallback(t *testing.T) {
	got, err := Normalize("npm", []byte(npmAuditLegacy))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Package != "left-pad" || got[0].AffectedRange != "<1.3.0" {
		t.Errorf("unexpected result: %+v", got)
	}
}

const yarnAuditStream = `{"type":"auditSummary","data":{"vulnerabilities":{"high":1}}}
{"type":"auditAdvisory","data":{"advisory":{"module_name":"lodash","severity":"high","title":"Prototype Pollution","vulnerable_versions":"<4.17.12","url":"https://npmjs.com/advisories/1065"}}}
not-json-at-all
{"type":"auditAdvisory","data":{"advisory":{"module_name":"yargs-parser","severity":"low","title":"Prototype Pollution","vulnerable_versions":"<13.1.2","url":""}}}
`

func TestNormalizeYarnAuditEventStream(t *testing.T) {
	got, err := Normalize("yarn", []byte(yarnAuditStream))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 advisories, got %d", len(got))
	}
	if got[0].Package != "lodash" || got[1].Package != "yargs-parser" {
		t.Errorf("unexpected packages: %+v", got)
	}
}

func TestNormalizeUnknownTool(t *testing.T) {
	if _, err := Normalize("composer", nil); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestParseOutdated(t *testing.T) {
	got, err := ParseOutdated([]byte(`{
		"lodash": {"current": "4.17.10", "wanted": "4.17.21", "latest": "4.17.21"},
		"react": {"current": "18.2.0", "wanted": "18.2.0", "latest": "18.2.0"},
		"missing": {"wanted": "1.0.0", "latest": "1.0.0"}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "lodash" {
		t.Errorf("expected only lodash outdated, got %+v", got)
	}
}

func TestOutdatedOverlap(t *testing.T) {
	prod := []OutdatedPackage{{Name: "a"}, {Name: "b"}}
	all := []OutdatedPackage{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	if got := OutdatedOverlap(prod, all); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
	if got := OutdatedOverlap(nil, nil); got != 1 {
		t.Errorf("expected 1 for empty sets, got %f", got)
	}
}

func TestRunWithTimeoutMarksDeadline(t *testing.T) {
	r := RunWithTimeout(context.Background(), 50*time.Millisecond, "", "sleep", "5")
	if !r.TimedOut {
		t.Error("expected timeout to be recorded")
	}
}
