package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/windloads/segpress/internal/ingest"
)

var mountCmd = &cobra.Command{
	Use:   "mount FILE...",
	Short: "Pressure summary of telescope mount exports",
	Long: `Summarize the surface pressure of telescope mount exports: mean,
median and range of the pressure, total area and extent of the samples.

Examples:
  segpress mount mount_400.csv.gz
  segpress mount cases/*/mount_*.csv.gz`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMount,
}

func init() {
	rootCmd.AddCommand(mountCmd)
}

func runMount(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	for _, path := range args {
		m, err := ingest.LoadMount(path)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, m)
		fmt.Fprintln(w)
	}
	return nil
}
