package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/windloads/segpress/internal/geometry"
	"github.com/windloads/segpress/internal/report"
)

var (
	statsField  fieldFlags
	statsFormat string
	statsOutput string
	statsChart  bool
	statsRadius float64
	statsASM    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Area weighted pressure statistics of a mirror snapshot",
	Long: `Compute the area weighted mean and standard deviation of the pressure
over each segment and over the whole mirror, together with the segment
forces, moments and centers of pressure.

FILE is a CFD export, optionally gzip or bzip2 compressed, with the columns
Area in TCS[i|j|k], Pressure (Pa) and X|Y|Z (m).

Examples:
  segpress stats M1p_M1p_400.csv.z
  segpress stats -m M2 --format json -o m2.json M2p_M2p_400.csv.z
  segpress stats --geometry M1.csv.bz2 M1p.csv.bz2 --chart`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsField.register(statsCmd)
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "table", "Output format: table, json or msgpack")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "", "Write to file instead of stdout")
	statsCmd.Flags().BoolVar(&statsChart, "chart", false, "Show ASCII bar charts of the segment statistics")
	statsCmd.Flags().Float64Var(&statsRadius, "radius", 0, "Also report the statistics within this radius of the optical axis (m)")
	statsCmd.Flags().BoolVar(&statsASM, "asm", false, "Report the differential pressure across the adaptive secondary reference bodies")
}

func runStats(cmd *cobra.Command, args []string) (err error) {
	if statsFormat != "table" && (statsChart || statsASM || statsRadius > 0) {
		return fmt.Errorf("--chart, --asm and --radius need --format table")
	}
	field, err := statsField.load(args[0])
	if err != nil {
		return err
	}
	summary, err := report.Summarize(field)
	if err != nil {
		return err
	}

	w, closeOutput, err := output(cmd, statsOutput)
	if err != nil {
		return err
	}
	defer closeInto(&err, closeOutput)

	switch statsFormat {
	case "json":
		return report.WriteJSON(w, summary)
	case "msgpack":
		return report.WriteMsgpack(w, summary)
	case "table":
	default:
		return fmt.Errorf("unknown format %q, expected table, json or msgpack", statsFormat)
	}

	printHeader(w, fmt.Sprintf("%s PRESSURE STATISTICS", summary.Mirror))
	fmt.Fprintf(w, "  File: %s\n", args[0])
	fmt.Fprintf(w, "  Samples: %d\n\n", summary.Samples)

	printSection(w, "SEGMENTS")
	if err := report.WriteTable(w, summary); err != nil {
		return err
	}
	fmt.Fprintln(w)

	printSection(w, "MIRROR")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Area:\t%.3f m^2\n", summary.Area)
	fmt.Fprintf(tw, "  Mean pressure:\t%.3f Pa\n", summary.Mean)
	fmt.Fprintf(tw, "  Pressure std:\t%.3f Pa\n", summary.Std)
	fmt.Fprintf(tw, "  Normal force (Σ -p|A|):\t%.3f N\n", summary.TotalForce)
	if statsRadius > 0 {
		mean, err := field.MirrorMeanWithin(statsRadius)
		if err != nil {
			return err
		}
		std, err := field.MirrorStdWithin(statsRadius)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "  Mean pressure (r < %gm):\t%.3f Pa\n", statsRadius, mean)
		fmt.Fprintf(tw, "  Pressure std (r < %gm):\t%.3f Pa\n", statsRadius, std)
	}
	tw.Flush()
	fmt.Fprintln(w)

	if statsASM {
		printSection(w, "ASM DIFFERENTIAL PRESSURE")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  Segment\tMean [Pa]\tΔp min [Pa]\tΔp max [Pa]\n")
		for sid := 1; sid <= geometry.NumSegments; sid++ {
			mean, dp, err := field.ASMDifferentialPressure(sid)
			if err != nil {
				return err
			}
			lo, hi := dp[0], dp[0]
			for _, v := range dp[1:] {
				lo, hi = min(lo, v), max(hi, v)
			}
			fmt.Fprintf(tw, "  S%d\t%.3f\t%.3f\t%.3f\n", sid, mean, lo, hi)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	if statsChart {
		means := make([]float64, len(summary.Segments))
		stds := make([]float64, len(summary.Segments))
		for i, seg := range summary.Segments {
			means[i], stds[i] = seg.Mean, seg.Std
		}
		fmt.Fprint(w, report.BarChart("SEGMENT MEAN PRESSURE", segmentLabels(), means, " Pa", 40))
		fmt.Fprint(w, report.BarChart("SEGMENT PRESSURE STD", segmentLabels(), stds, " Pa", 40))
		fmt.Fprintln(w)
	}
	return nil
}
