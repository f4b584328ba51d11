// Package lockfile extracts the installed package -> version map from the
// two lockfile schema families: JSON lockfiles keyed by package name with
// nested dependency objects (package-lock.json) and line-oriented
// "name@range:" block lockfiles (yarn.lock).
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Known lockfile base names in probe order.
var Names = []string{"package-lock.json", "yarn.lock"}

// Detect finds the first known lockfile under root and parses it. The bool
// is false when no lockfile exists (not an error: the project may simply
// have no JS dependencies).
func Detect(root string) (map[string]string, string, bool, error) {
	for _, name := range Names {
		path := filepath.Join(root, name)
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		installed, err := Parse(name, b)
		if err != nil {
			return nil, name, true, err
		}
		return installed, name, true, nil
	}
	return nil, "", false, nil
}

// Parse dispatches on the lockfile base name.
func Parse(name string, data []byte) (map[string]string, error) {
	switch name {
	case "package-lock.json":
		return ParseNpmLock(data)
	case "yarn.lock":
		return ParseYarnLock(data)
	default:
		return nil, fmt.Errorf("lockfile: unsupported lockfile %q", name)
	}
}
