package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/windloads/segpress/internal/geometry"
	"github.com/windloads/segpress/internal/report"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	forcesField fieldFlags
	forcesChart bool
)

var forcesCmd = &cobra.Command{
	Use:   "forces FILE",
	Short: "Segment forces, moments and centers of pressure",
	Long: `Integrate the pressure over each segment of a mirror snapshot.

The force of a segment is the sum of p·A over its samples, the center of
pressure the force weighted mean of their positions and the moment is
taken about the mirror-wide origin as cop × force.

Examples:
  segpress forces M1p_M1p_400.csv.z
  segpress forces -m M2 --chart M2p_M2p_400.csv.z`,
	Args: cobra.ExactArgs(1),
	RunE: runForces,
}

func init() {
	rootCmd.AddCommand(forcesCmd)

	forcesField.register(forcesCmd)
	forcesCmd.Flags().BoolVar(&forcesChart, "chart", false, "Show an ASCII bar chart of the segment Fz")
}

func runForces(cmd *cobra.Command, args []string) error {
	field, err := forcesField.load(args[0])
	if err != nil {
		return err
	}
	segments, err := field.SegmentsExertion()
	if err != nil {
		return err
	}
	total, err := field.MirrorExertion()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printHeader(w, fmt.Sprintf("%s SEGMENT EXERTION", field.Mirror().Name()))

	printSection(w, "FORCES [N]")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\tFx\tFy\tFz\t|F|\t\n")
	for i, e := range segments {
		fmt.Fprintf(tw, "S%d\t%.3f\t%.3f\t%.3f\t%.3f\t\n", i+1, e.Force.X, e.Force.Y, e.Force.Z, r3.Norm(e.Force))
	}
	fmt.Fprintf(tw, "total\t%.3f\t%.3f\t%.3f\t%.3f\t\n", total.Force.X, total.Force.Y, total.Force.Z, r3.Norm(total.Force))
	tw.Flush()
	fmt.Fprintln(w)

	printSection(w, "MOMENTS [N.m]")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\tMx\tMy\tMz\t\n")
	for i, e := range segments {
		fmt.Fprintf(tw, "S%d\t%.3f\t%.3f\t%.3f\t\n", i+1, e.Moment.X, e.Moment.Y, e.Moment.Z)
	}
	fmt.Fprintf(tw, "total\t%.3f\t%.3f\t%.3f\t\n", total.Moment.X, total.Moment.Y, total.Moment.Z)
	tw.Flush()
	fmt.Fprintln(w)

	printSection(w, "CENTERS OF PRESSURE [m]")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\tx\ty\tz\t\n")
	for i, e := range segments {
		c := e.CenterOfPressure
		fmt.Fprintf(tw, "S%d\t%.4f\t%.4f\t%.4f\t\n", i+1, c.X, c.Y, c.Z)
	}
	tw.Flush()
	fmt.Fprintln(w)

	lines := []string{
		fmt.Sprintf("Force  = (%.3f, %.3f, %.3f) N", total.Force.X, total.Force.Y, total.Force.Z),
		fmt.Sprintf("Moment = (%.3f, %.3f, %.3f) N.m", total.Moment.X, total.Moment.Y, total.Moment.Z),
		fmt.Sprintf("Normal force Σ -p|A| = %.3f N", field.TotalForce()),
	}
	fmt.Fprint(w, report.Box(fmt.Sprintf("%s TOTAL", field.Mirror().Name()), lines))

	if forcesChart {
		fz := make([]float64, geometry.NumSegments)
		for i, e := range segments {
			fz[i] = e.Force.Z
		}
		fmt.Fprint(w, report.BarChart("SEGMENT Fz", segmentLabels(), fz, " N", 40))
	}
	fmt.Fprintln(w)
	return nil
}
