package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xlukav/larascan/internal/plugins"
)

func newDetectorsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "detectors", Short: "Inspect the built-in detectors"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in detectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := plugins.NewRegistry()
			reg.RegisterBuiltin()
			for _, d := range reg.Detectors() {
				m := d.Meta()
				ci := "ci"
				if !m.RunsInCI {
					ci = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %-8s %-4s %s\n", m.ID, m.Severity, ci, m.Name)
				if len(m.Tags) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%-28s tags: %s\n", "", strings.Join(m.Tags, ", "))
				}
			}
			return nil
		},
	})
	return cmd
}
