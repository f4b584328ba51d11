package lockfile

import (
	"encoding/json"
	"strings"
)

type npmLock struct {
	LockfileVersion int                      `json:"lockfileVersion"`
	Dependencies    map[string]npmDependency `json:"dependencies"`
	Packages        map[string]npmPackage    `json:"packages"`
}

type npmDependency struct {
	Version      string                   `json:"version"`
	Dependencies map[string]npmDependency `json:"dependencies"`
}

type npmPackage struct {
	Version string `json:"version"`
}

// ParseNpmLock reads a package-lock.json. The v1 schema nests transitive
// dependency objects under each entry and is recursed fully; v2/v3 flatten
// everything under "packages" keyed by node_modules path. The first version
// seen for a name wins.
func ParseNpmLock(data []byte) (map[string]string, error) {
	var lock npmLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, err
	}
	out := map[string]string{}
	collectNpmDeps(lock.Dependencies, out)
	for path, pkg := range lock.Packages {
		name := npmPackageName(path)
		if name == "" || pkg.Version == "" {
			continue
		}
		if _, ok := out[name]; !ok {
			out[name] = pkg.Version
		}
	}
	return out, nil
}

func collectNpmDeps(deps map[string]npmDependency, out map[string]string) {
	for name, d := range deps {
		if d.Version != "" {
			if _, ok := out[name]; !ok {
				out[name] = d.Version
			}
		}
		collectNpmDeps(d.Dependencies, out)
	}
}

// npmPackageName recovers the package name from a v2 "packages" key like
// node_modules/@scope/name or node_modules/a/node_modules/b.
func npmPackageName(path string) string {
	if path == "" { // root project entry
		return ""
	}
	const marker = "node_modules/"
	i := strings.LastIndex(path, marker)
	if i < 0 {
		return ""
	}
	return path[i+len(marker):]
}
