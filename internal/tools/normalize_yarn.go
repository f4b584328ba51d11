package tools

import (
	"bufio"
	"bytes"
	"encoding/json"
)

// yarn audit --json emits newline-delimited event records; the ones we care
// about are type=auditAdvisory.
type yarnEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type yarnAdvisoryData struct {
	Advisory yarnAdvisory `json:"advisory"`
}

type yarnAdvisory struct {
	ModuleName         string `json:"module_name"`
	Severity           string `json:"severity"`
	Title              string `json:"title"`
	VulnerableVersions string `json:"vulnerable_versions"`
	URL                string `json:"url"`
}

func normalizeYarnAudit(raw []byte) ([]Vulnerability, error) {
	var out []Vulnerability
	s := bufio.NewScanner(bytes.NewReader(raw))
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for s.Scan() {
		line := bytes.TrimSpace(s.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev yarnEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			// a single garbled event does not invalidate the stream
			continue
		}
		if ev.Type != "auditAdvisory" {
			continue
		}
		var d yarnAdvisoryData
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			continue
		}
		out = append(out, Vulnerability{
			Package:       d.Advisory.ModuleName,
			Severity:      d.Advisory.Severity,
			Title:         d.Advisory.Title,
			AffectedRange: d.Advisory.VulnerableVersions,
			URL:           d.Advisory.URL,
		})
	}
	return out, s.Err()
}
