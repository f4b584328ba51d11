// Package envfile reads key=value environment files (.env) from the target
// project.
package envfile

import (
	"os"
	"strings"

	"github.com/subosito/gotenv"
)

// File is one parsed environment file, with enough line information to
// place findings.
type File struct {
	Path   string
	Values map[string]string
	lines  []string
}

// Load parses the env file at path.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, string(b)), nil
}

// Parse builds a File from raw content. gotenv handles quoting and export
// prefixes; unparsable lines are ignored rather than failing the file.
func Parse(path, content string) *File {
	values := gotenv.Parse(strings.NewReader(content))
	return &File{Path: path, Values: values, lines: strings.Split(content, "\n")}
}

// Get returns a value and whether the key is present.
func (f *File) Get(key string) (string, bool) {
	v, ok := f.Values[key]
	return v, ok
}

// IsTruthy reports whether key is set to a value commonly meaning "on".
func (f *File) IsTruthy(key string) bool {
	v, ok := f.Values[key]
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}

// LineOf returns the 1-based line where key is assigned, or 0 when the key
// is absent.
func (f *File) LineOf(key string) int {
	for i, line := range f.lines {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "export ")
		if strings.HasPrefix(trimmed, key) {
			rest := trimmed[len(key):]
			if strings.HasPrefix(strings.TrimSpace(rest), "=") {
				return i + 1
			}
		}
	}
	return 0
}
