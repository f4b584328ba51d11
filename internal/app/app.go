package app

import (
	"github.com/spf13/cobra"

	"github.com/0xlukav/larascan/internal/cli"
)

func BuildRoot() *cobra.Command {
	root := &cobra.Command{Use: "larascan", Short: "Security scanner for Laravel application source trees"}
	cli.AddCommands(root)
	return root
}
