package tools

import (
	"encoding/json"
	"sort"
)

// npm outdated --json: package name -> current/wanted/latest.
type outdatedEntry struct {
	Current string `json:"current"`
	Wanted  string `json:"wanted"`
	Latest  string `json:"latest"`
}

// OutdatedPackage is one dependency behind its latest release.
type OutdatedPackage struct {
	Name    string
	Current string
	Latest  string
}

func ParseOutdated(raw []byte) ([]OutdatedPackage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m map[string]outdatedEntry
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	var out []OutdatedPackage
	for name, e := range m {
		if e.Current == "" || e.Current == e.Latest {
			continue
		}
		out = append(out, OutdatedPackage{Name: name, Current: e.Current, Latest: e.Latest})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// OutdatedOverlap compares the outdated set of production dependencies with
// the outdated set of all dependencies and reports how similar they are
// after normalization (sorted unique names), as a ratio in [0,1].
//
// This mirrors a best-effort heuristic for deciding whether only production
// dependencies are stale or the whole tree is; it is not a verified
// algorithm and its result should gate severity, not correctness.
func OutdatedOverlap(prod, all []OutdatedPackage) float64 {
	if len(all) == 0 {
		return 1
	}
	prodSet := map[string]bool{}
	for _, p := range prod {
		prodSet[p.Name] = true
	}
	shared := 0
	for _, p := range all {
		if prodSet[p.Name] {
			shared++
		}
	}
	return float64(shared) / float64(len(all))
}
