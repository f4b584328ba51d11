package source

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Directories that never contain first-party application code.
var skipDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
	"storage":      true,
}

// Project provides read access to a target project tree. All paths handed to
// callers are slashed and relative to the root. Reads are cached; the project
// is never written to.
type Project struct {
	root string

	mu      sync.Mutex
	content map[string]string
}

// Open resolves root to an absolute directory and returns a Project over it.
func Open(root string) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source: %s is not a directory", root)
	}
	return &Project{root: abs, content: map[string]string{}}, nil
}

func (p *Project) Root() string { return p.root }

// Exists reports whether a relative path exists in the project.
func (p *Project) Exists(rel string) bool {
	_, err := os.Stat(filepath.Join(p.root, filepath.FromSlash(rel)))
	return err == nil
}

// ListFiles walks the tree and returns relative paths whose extension is in
// exts (with leading dot, e.g. ".php"). Paths matching any ignore glob are
// dropped; globs match against the slashed relative path or its base name.
func (p *Project) ListFiles(exts []string, ignoreGlobs []string) []string {
	want := map[string]bool{}
	for _, e := range exts {
		want[strings.ToLower(e)] = true
	}
	var out []string
	_ = filepath.WalkDir(p.root, func(fp string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(p.root, fp)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		ext := strings.ToLower(longestExt(d.Name()))
		if !want[ext] && !want[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		if ignored(rel, ignoreGlobs) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	return out
}

// longestExt keeps compound extensions like .blade.php intact.
func longestExt(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}

func ignored(rel string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := path.Match(g, rel); ok {
			return true
		}
		if ok, _ := path.Match(g, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

// Read returns the file content for a relative path, cached per project.
func (p *Project) Read(rel string) (string, error) {
	p.mu.Lock()
	if c, ok := p.content[rel]; ok {
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()
	b, err := os.ReadFile(filepath.Join(p.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}
	s := string(b)
	p.mu.Lock()
	p.content[rel] = s
	p.mu.Unlock()
	return s, nil
}

// Lines returns the file split into 1-indexed lines: Lines(rel)[0] is unused
// padding so callers can index by physical line number.
func (p *Project) Lines(rel string) ([]string, error) {
	content, err := p.Read(rel)
	if err != nil {
		return nil, err
	}
	return append([]string{""}, strings.Split(content, "\n")...), nil
}

// LineOf finds the 1-based line of the first occurrence of needle in
// content, or 0 when absent.
func LineOf(content, needle string) int {
	if needle == "" {
		return 0
	}
	idx := strings.Index(content, needle)
	if idx < 0 {
		return 0
	}
	return strings.Count(content[:idx], "\n") + 1
}

// Snippet extracts up to maxLines lines centered on line (1-based) from
// content. Used to attach bounded code context to findings.
func Snippet(content string, line, maxLines int) string {
	if maxLines <= 0 {
		maxLines = 8
	}
	lines := strings.Split(content, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	from := line - 1 - maxLines/2
	if from < 0 {
		from = 0
	}
	to := from + maxLines
	if to > len(lines) {
		to = len(lines)
	}
	return strings.Join(lines[from:to], "\n")
}
