package plugins

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// errNoAnalyzableFiles marks a detector that could not analyze a single file
// in its scope; the runner surfaces this as an execution error rather than a
// verdict on the project.
var errNoAnalyzableFiles = errors.New("no file in scope could be analyzed")

// phpFiles lists the project's first-party PHP sources once per run.
func (c *Context) phpFiles() []string {
	c.listOnce.Do(func() {
		all := c.Files.ListFiles([]string{".php"}, c.Config.IgnoreGlobs)
		for _, rel := range all {
			if strings.HasSuffix(rel, ".blade.php") {
				c.blade = append(c.blade, rel)
			} else {
				c.php = append(c.php, rel)
			}
		}
	})
	return c.php
}

// bladeFiles lists the project's Blade templates once per run.
func (c *Context) bladeFiles() []string {
	c.phpFiles()
	return c.blade
}

func zapPath(rel string) zap.Field { return zap.String("path", rel) }
