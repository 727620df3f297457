package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/livp123/mcapstat/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Show the current version of mcapstat`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mcapstat %s\n", version.Version)
	},
}
