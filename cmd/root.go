package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/windloads/segpress/internal/config"
	"github.com/windloads/segpress/internal/log"
	"github.com/windloads/segpress/internal/version"
)

var (
	configFile string
	debug      bool

	// cfg is loaded before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "segpress",
	Short: "Segmented mirror wind pressure analysis",
	Long: `segpress - Segmented Mirror Pressure Analyzer

A CLI tool for the analysis of CFD surface pressure snapshots
of the seven segment primary (M1) and secondary (M2) mirrors.

This tool helps telescope engineers compute:
  - Area weighted pressure statistics per segment and per mirror
  - Segment forces, moments and centers of pressure
  - Pressure time series over many snapshots
  - Cross-mesh lookups of pressure samples by coordinate
  - Telescope mount pressure summaries`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := log.Init(debug); err != nil {
			return err
		}
		c, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   segpress v%-46s║\n", version.Version)
		fmt.Println("  ║   Segmented Mirror Pressure Analyzer                      ║")
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Segment and mirror pressure statistics")
		fmt.Println("    • Segment force, moment and center of pressure")
		fmt.Println("    • Parallel time series over CFD snapshots")
		fmt.Println("    • Pressure lookup at companion mesh nodes")
		fmt.Println()
		fmt.Println("  Use 'segpress --help' to see available commands.")
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	defer log.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		log.Sync()
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a gcfg configuration file (see 'segpress config')")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable development logging")
}
