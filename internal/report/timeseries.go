package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/windloads/segpress/internal/geometry"
)

// Snapshot is the summary of one time step
type Snapshot struct {
	Time    float64 // s
	Summary *Summary
}

// TimeSeriesHeader returns the column names written by WriteTimeSeries
func TimeSeriesHeader() []string {
	h := []string{"Time [s]", "Mean [Pa]"}
	for sid := 1; sid <= geometry.NumSegments; sid++ {
		h = append(h, fmt.Sprintf("S%d Mean [Pa]", sid))
	}
	for sid := 1; sid <= geometry.NumSegments; sid++ {
		h = append(h, fmt.Sprintf("S%d Std [Pa]", sid))
	}
	for sid := 1; sid <= geometry.NumSegments; sid++ {
		for _, c := range []string{"Fx [N]", "Fy [N]", "Fz [N]", "Mx [N.m]", "My [N.m]", "Mz [N.m]", "CoPx [m]", "CoPy [m]", "CoPz [m]"} {
			h = append(h, fmt.Sprintf("S%d %s", sid, c))
		}
	}
	return h
}

// WriteTimeSeries writes one CSV row per snapshot in ascending time
func WriteTimeSeries(w io.Writer, snapshots []Snapshot) error {
	sorted := append([]Snapshot(nil), snapshots...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	cw := csv.NewWriter(w)
	if err := cw.Write(TimeSeriesHeader()); err != nil {
		return err
	}
	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, snap := range sorted {
		s := snap.Summary
		if len(s.Segments) != geometry.NumSegments {
			return fmt.Errorf("snapshot at %gs has %d segments", snap.Time, len(s.Segments))
		}
		row := []string{format(snap.Time), format(s.Mean)}
		for _, seg := range s.Segments {
			row = append(row, format(seg.Mean))
		}
		for _, seg := range s.Segments {
			row = append(row, format(seg.Std))
		}
		for _, seg := range s.Segments {
			for _, v := range []Vec{seg.Force, seg.Moment, seg.CenterOfPressure} {
				row = append(row, format(v[0]), format(v[1]), format(v[2]))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
