// Package advisory matches installed dependency versions against a known
// vulnerability feed.
package advisory

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/0xlukav/larascan/internal/model"
)

// Advisory is one externally sourced vulnerability record for a package.
type Advisory struct {
	Title         string         `json:"title"`
	Identifiers   []string       `json:"identifiers"`
	Severity      model.Severity `json:"severity"`
	AffectedRange string         `json:"affectedRange"`
	Link          string         `json:"link,omitempty"`
}

// Feed is the advisory database: advisories keyed by package name, plus
// packages flagged abandoned by their maintainers (independent of version).
type Feed struct {
	Advisories map[string][]Advisory `json:"advisories"`
	Abandoned  map[string]string     `json:"abandoned,omitempty"` // name -> suggested replacement, "" when none
}

// LoadFeed reads a JSON feed file.
func LoadFeed(path string) (*Feed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFeed(b)
}

func ParseFeed(data []byte) (*Feed, error) {
	var f Feed
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Advisories == nil {
		f.Advisories = map[string][]Advisory{}
	}
	return &f, nil
}

// Record merges every advisory matching one installed package. One record
// per package keeps reports readable instead of one finding per advisory.
type Record struct {
	Package          string     `json:"package"`
	InstalledVersion string     `json:"installedVersion"`
	Matched          []Advisory `json:"matchedAdvisories"`
	// MaxSeverity is the highest severity across matched advisories.
	MaxSeverity model.Severity `json:"maxSeverity"`
}

// AbandonedRecord flags a package its maintainers no longer support.
type AbandonedRecord struct {
	Package     string `json:"package"`
	Replacement string `json:"replacement,omitempty"`
}

// Match evaluates every feed advisory against the installed map. Packages
// absent from the feed produce nothing; an installed version or range that
// cannot be parsed is treated as indeterminate and skipped rather than
// guessed. Output is sorted by package name so runs are deterministic.
func Match(installed map[string]string, feed *Feed) []Record {
	if feed == nil {
		return nil
	}
	var out []Record
	for name, version := range installed {
		advisories, ok := feed.Advisories[name]
		if !ok {
			continue
		}
		v, err := semver.NewVersion(NormalizeVersion(version))
		if err != nil {
			continue
		}
		rec := Record{Package: name, InstalledVersion: version, MaxSeverity: model.SeverityInfo}
		for _, a := range advisories {
			c, err := semver.NewConstraint(a.AffectedRange)
			if err != nil {
				continue
			}
			if !c.Check(v) {
				continue
			}
			rec.Matched = append(rec.Matched, a)
			rec.MaxSeverity = model.MaxSeverity(rec.MaxSeverity, a.Severity)
		}
		if len(rec.Matched) > 0 {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Package < out[j].Package })
	return out
}

// AbandonedPackages returns installed packages flagged abandoned in the
// feed, sorted by name.
func AbandonedPackages(installed map[string]string, feed *Feed) []AbandonedRecord {
	if feed == nil || len(feed.Abandoned) == 0 {
		return nil
	}
	var out []AbandonedRecord
	for name := range installed {
		if repl, ok := feed.Abandoned[name]; ok {
			out = append(out, AbandonedRecord{Package: name, Replacement: repl})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Package < out[j].Package })
	return out
}

// NormalizeVersion strips prefixes lockfiles and registries attach so that
// equivalent version strings parse to the same semantic version.
func NormalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "=")
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexByte(v, '#'); i >= 0 { // resolved git refs
		v = v[:i]
	}
	return v
}
