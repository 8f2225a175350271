package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/windloads/segpress/internal/batch"
	"github.com/windloads/segpress/internal/ingest"
	"github.com/windloads/segpress/internal/log"
	"github.com/windloads/segpress/internal/report"
)

var (
	batchField   fieldFlags
	batchOutput  string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch FILE...",
	Short: "Pressure time series over many snapshots of one mirror",
	Long: `Summarize many snapshot files of one mirror in parallel and write one
CSV row per snapshot: the time, the mirror mean pressure, the mean and std of
each segment and the force, moment and center of pressure of each segment.

The snapshot time is read from the file name, after its last underscore, as
in M1p_M1p_512.5.csv.z.

Examples:
  segpress batch -o m1_pressure-stats.csv zen30az000_OS7/M1p_M1p_*.csv.z
  segpress batch -m M2 -w 16 zen30az000_OS7/M2p_M2p_*.csv.z`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchField.register(batchCmd)
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Write the CSV to file instead of stdout")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", -1, "Files processed concurrently (default from config, 0 for one per CPU)")
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	workers := cfg.Batch.Workers
	if batchWorkers >= 0 {
		workers = batchWorkers
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("summarizing %d %s snapshots with %d workers", len(args), batchField.mirror, workers)
	snapshots, err := batch.Run(ctx, args, workers, func(_ context.Context, path string) (report.Snapshot, error) {
		t, err := ingest.SnapshotTime(path)
		if err != nil {
			return report.Snapshot{}, err
		}
		field, err := batchField.load(path)
		if err != nil {
			return report.Snapshot{}, err
		}
		s, err := report.Summarize(field)
		if err != nil {
			return report.Snapshot{}, err
		}
		return report.Snapshot{Time: t, Summary: s}, nil
	})
	if err != nil {
		return err
	}

	w, closeOutput, err := output(cmd, batchOutput)
	if err != nil {
		return err
	}
	defer closeInto(&err, closeOutput)
	return report.WriteTimeSeries(w, snapshots)
}
