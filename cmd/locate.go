package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/windloads/segpress/internal/ingest"
	"github.com/windloads/segpress/internal/log"
	"github.com/windloads/segpress/internal/spatial"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	locateField   fieldFlags
	locatePoints  string
	locateMount   bool
	locateNearest bool
	locateOutput  string
)

var locateCmd = &cobra.Command{
	Use:   "locate FILE",
	Short: "Look up pressure samples at the nodes of another mesh",
	Long: `Resolve the (x, y, z) nodes of a companion file against the pressure
samples of FILE.

By default a node must match a sample position exactly, as when the node
coordinates were copied from the CFD mesh. With --nearest every node gets
the closest sample and its distance.

The companion file is a CSV file (optionally compressed, optionally with a
header row) or a whitespace separated text file; the first three columns
are x, y and z in meters.

Examples:
  segpress locate --points nodes.csv M1p_M1p_400.csv.z
  segpress locate --mount --nearest --points mount_nodes.txt mount.csv.gz`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)

	locateField.register(locateCmd)
	locateCmd.Flags().StringVarP(&locatePoints, "points", "p", "", "Companion file of node coordinates [required]")
	locateCmd.MarkFlagRequired("points")
	locateCmd.Flags().BoolVar(&locateMount, "mount", false, "FILE is a telescope mount export")
	locateCmd.Flags().BoolVar(&locateNearest, "nearest", false, "Use the nearest sample instead of an exact match")
	locateCmd.Flags().StringVarP(&locateOutput, "output", "o", "", "Write to file instead of stdout")
}

func runLocate(cmd *cobra.Command, args []string) (err error) {
	var src spatial.Source
	if locateMount {
		m, err := ingest.LoadMount(args[0])
		if err != nil {
			return err
		}
		src = m
	} else {
		f, err := locateField.load(args[0])
		if err != nil {
			return err
		}
		src = f
	}
	index, err := spatial.NewIndex(src)
	if err != nil {
		return err
	}
	points, err := ingest.ReadPoints(locatePoints)
	if err != nil {
		return err
	}

	w, closeOutput, err := output(cmd, locateOutput)
	if err != nil {
		return err
	}
	defer closeInto(&err, closeOutput)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "node\tsample\tx [m]\ty [m]\tz [m]\tpressure [Pa]\tarea [m^2]\tdistance [m]\t\n")
	var missing int
	for i, p := range points {
		var (
			m  spatial.Match
			ok = true
		)
		if locateNearest {
			m = index.Nearest(p)
		} else {
			m, ok = index.LocateAtPoint(p)
		}
		if !ok {
			missing++
			fmt.Fprintf(tw, "%d\t-\t%.6f\t%.6f\t%.6f\t-\t-\t-\t\n", i, p.X, p.Y, p.Z)
			continue
		}
		fmt.Fprintf(tw, "%d\t%d\t%.6f\t%.6f\t%.6f\t%.3f\t%.6g\t%.3g\t\n",
			i, m.Index, p.X, p.Y, p.Z, m.Pressure, r3.Norm(m.Area), m.Distance)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if missing > 0 {
		log.Warnf("%d of %d nodes of %s have no sample in %s", missing, len(points), locatePoints, args[0])
	}
	return nil
}
