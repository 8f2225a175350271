package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/windloads/segpress/internal/config"
)

var configCheck string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print an example configuration file",
	Long: `Print a configuration file holding the built-in values. Save it,
edit it and pass it to any command with --config.

Examples:
  segpress config > segpress.gcfg
  segpress config --check segpress.gcfg`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configCheck == "" {
			fmt.Fprint(cmd.OutOrStdout(), config.Example)
			return nil
		}
		if _, err := config.Load(configCheck); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", configCheck)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVar(&configCheck, "check", "", "Validate a configuration file instead of printing the example")
}
