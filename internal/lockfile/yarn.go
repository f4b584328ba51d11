package lockfile

import (
	"bufio"
	"bytes"
	"strings"
)

// ParseYarnLock reads a yarn.lock: block headers are one or more
// comma-separated "name@range" selectors ending in a colon, followed by
// indented attribute lines of which `version "x.y.z"` is the one we need.
func ParseYarnLock(data []byte) (map[string]string, error) {
	out := map[string]string{}
	var pending []string

	s := bufio.NewScanner(bytes.NewReader(data))
	for s.Scan() {
		line := s.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		// header lines are unindented and end with ':'
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") && strings.HasSuffix(trimmed, ":") {
			pending = pending[:0]
			for _, sel := range strings.Split(strings.TrimSuffix(trimmed, ":"), ",") {
				if name := selectorName(strings.TrimSpace(sel)); name != "" {
					pending = append(pending, name)
				}
			}
			continue
		}
		if len(pending) > 0 && strings.HasPrefix(trimmed, "version") {
			version := strings.Trim(strings.TrimSpace(strings.TrimPrefix(trimmed, "version")), `"`)
			for _, name := range pending {
				if _, ok := out[name]; !ok && version != "" {
					out[name] = version
				}
			}
			pending = pending[:0]
		}
	}
	return out, s.Err()
}

// selectorName strips the version range from a "name@range" selector,
// honoring the leading @ of scoped packages.
func selectorName(sel string) string {
	sel = strings.Trim(sel, `"`)
	if sel == "" {
		return ""
	}
	search := sel
	if strings.HasPrefix(sel, "@") {
		search = sel[1:]
	}
	i := strings.IndexByte(search, '@')
	if i < 0 {
		return sel
	}
	if strings.HasPrefix(sel, "@") {
		return sel[:i+1]
	}
	return sel[:i]
}
