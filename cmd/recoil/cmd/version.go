package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "recoil %s (commit %s, built %s, %s)\n",
			versionString, commitString, dateString, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
