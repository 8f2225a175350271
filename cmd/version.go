package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/windloads/segpress/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of segpress",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
		fmt.Fprintln(cmd.OutOrStdout(), "Segmented Mirror Pressure Analyzer")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
