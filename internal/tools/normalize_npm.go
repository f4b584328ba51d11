package tools

import (
	"encoding/json"
	"sort"
)

// npm audit --json, v7+ schema: a flat map of package name -> vulnerability
// summary.
type npmAuditOut struct {
	Vulnerabilities map[string]npmVulnerability `json:"vulnerabilities"`
}

type npmVulnerability struct {
	Name     string          `json:"name"`
	Severity string          `json:"severity"`
	Range    string          `json:"range"`
	Via      json.RawMessage `json:"via"`
}

// pre-v7 fallback schema: advisories keyed by numeric id.
type npmLegacyOut struct {
	Advisories map[string]npmLegacyAdvisory `json:"advisories"`
}

type npmLegacyAdvisory struct {
	ModuleName         string `json:"module_name"`
	Severity           string `json:"severity"`
	Title              string `json:"title"`
	VulnerableVersions string `json:"vulnerable_versions"`
	URL                string `json:"url"`
}

type npmVia struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func normalizeNpmAudit(raw []byte) ([]Vulnerability, error) {
	var o npmAuditOut
	if err := json.Unmarshal(raw, &o); err == nil && len(o.Vulnerabilities) > 0 {
		var out []Vulnerability
		for name, v := range o.Vulnerabilities {
			vuln := Vulnerability{Package: name, Severity: v.Severity, AffectedRange: v.Range}
			// via is a mixed array of advisory objects and plain dependency
			// name strings; take the first object's title/url
			var items []json.RawMessage
			if json.Unmarshal(v.Via, &items) == nil {
				for _, item := range items {
					var via npmVia
					if json.Unmarshal(item, &via) == nil && via.Title != "" {
						vuln.Title = via.Title
						vuln.URL = via.URL
						break
					}
				}
			}
			out = append(out, vuln)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Package < out[j].Package })
		return out, nil
	}

	// fallback: legacy advisories map
	var legacy npmLegacyOut
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, err
	}
	var out []Vulnerability
	for _, a := range legacy.Advisories {
		out = append(out, Vulnerability{
			Package:       a.ModuleName,
			Severity:      a.Severity,
			Title:         a.Title,
			AffectedRange: a.VulnerableVersions,
			URL:           a.URL,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Package < out[j].Package })
	return out, nil
}
