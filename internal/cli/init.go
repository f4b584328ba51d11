package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// defaultConfigYAML mirrors config.Default(); kept as a literal so the
// generated file carries comments.
const defaultConfigYAML = `# larascan configuration
environment: production
severityThreshold: info
timeBudgetMs: 60000
toolTimeoutMs: 20000

# baseUrl: https://example.com   # enables live endpoint probing
# advisoryFeed: advisories.json  # offline advisory feed, relative to the root

externalTools:
  npmAudit: true
  yarnAudit: false
  npmOutdated: true

# ignore:
#   - detector: template-inline-secret
#     path: resources/views/legacy/*.blade.php
#     reason: scheduled for removal
`

func newInitCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented .larascan.yaml to the target directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(dir, ".larascan.yaml")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the config file to")
	return cmd
}
