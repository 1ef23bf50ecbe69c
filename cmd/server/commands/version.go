package commands

import (
	"fmt"

	"github.com/dkeye/VoipWeb/internal/version"
	"github.com/spf13/cobra"
)

// VersionCmd prints the server version.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Version)
	},
}
