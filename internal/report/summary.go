// Package report condenses pressure fields into summaries and writes them
// as tables, JSON, msgpack, ASCII bar charts and CSV time series.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/windloads/segpress/internal/geometry"
	"github.com/windloads/segpress/internal/pressure"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a 3-vector as written in reports
type Vec [3]float64

func vec(v r3.Vec) Vec { return Vec{v.X, v.Y, v.Z} }

// SegmentSummary holds the statistics and exertion of one segment
type SegmentSummary struct {
	ID               int     `json:"id" msgpack:"id"`
	Samples          int     `json:"samples" msgpack:"samples"`
	Area             float64 `json:"area" msgpack:"area"`              // m²
	Mean             float64 `json:"mean" msgpack:"mean"`              // Pa
	Std              float64 `json:"std" msgpack:"std"`                // Pa
	Force            Vec     `json:"force" msgpack:"force"`            // N
	Moment           Vec     `json:"moment" msgpack:"moment"`          // N·m
	CenterOfPressure Vec     `json:"center_of_pressure" msgpack:"cop"` // m
}

// Summary holds the statistics and exertion of a mirror snapshot
type Summary struct {
	Mirror     string           `json:"mirror" msgpack:"mirror"`
	Samples    int              `json:"samples" msgpack:"samples"`
	Area       float64          `json:"area" msgpack:"area"`               // m²
	Mean       float64          `json:"mean" msgpack:"mean"`               // Pa
	Std        float64          `json:"std" msgpack:"std"`                 // Pa
	Force      Vec              `json:"force" msgpack:"force"`             // N
	Moment     Vec              `json:"moment" msgpack:"moment"`           // N·m
	TotalForce float64          `json:"total_force" msgpack:"total_force"` // N, Σ -p·|A|
	Segments   []SegmentSummary `json:"segments" msgpack:"segments"`
}

// Summarize computes the summary of f. Every segment must have samples.
func Summarize(f *pressure.Field) (*Summary, error) {
	mean, err := f.MirrorMean()
	if err != nil {
		return nil, err
	}
	std, err := f.MirrorStd()
	if err != nil {
		return nil, err
	}
	s := &Summary{
		Mirror:     f.Mirror().Name(),
		Samples:    f.Len(),
		Area:       f.MirrorArea(),
		Mean:       mean,
		Std:        std,
		TotalForce: f.TotalForce(),
		Segments:   make([]SegmentSummary, geometry.NumSegments),
	}

	areas := f.SegmentsArea()
	for sid := 1; sid <= geometry.NumSegments; sid++ {
		seg := &s.Segments[sid-1]
		seg.ID = sid
		seg.Area = areas[sid-1]
		if seg.Samples, err = f.SegmentSize(sid); err != nil {
			return nil, err
		}
		if seg.Mean, err = f.SegmentMean(sid); err != nil {
			return nil, err
		}
		if seg.Std, err = f.SegmentStd(sid); err != nil {
			return nil, err
		}
		e, err := f.SegmentPressureIntegral(sid)
		if err != nil {
			return nil, err
		}
		seg.Force = vec(e.Force)
		seg.Moment = vec(e.Moment)
		seg.CenterOfPressure = vec(*e.CenterOfPressure)

		for k := range s.Force {
			s.Force[k] += seg.Force[k]
			s.Moment[k] += seg.Moment[k]
		}
	}
	return s, nil
}

// WriteTable writes s as aligned text columns
func WriteTable(w io.Writer, s *Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tsamples\tarea [m^2]\tmean [Pa]\tstd [Pa]\tFx [N]\tFy [N]\tFz [N]\tMx [N.m]\tMy [N.m]\tMz [N.m]\tCoPx [m]\tCoPy [m]\tCoPz [m]\t\n", s.Mirror)
	for _, seg := range s.Segments {
		fmt.Fprintf(tw, "S%d\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t\n",
			seg.ID, seg.Samples, seg.Area, seg.Mean, seg.Std,
			seg.Force[0], seg.Force[1], seg.Force[2],
			seg.Moment[0], seg.Moment[1], seg.Moment[2],
			seg.CenterOfPressure[0], seg.CenterOfPressure[1], seg.CenterOfPressure[2])
	}
	fmt.Fprintf(tw, "total\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t\t\t\t\n",
		s.Samples, s.Area, s.Mean, s.Std,
		s.Force[0], s.Force[1], s.Force[2],
		s.Moment[0], s.Moment[1], s.Moment[2])
	return tw.Flush()
}

// WriteJSON writes s as indented JSON
func WriteJSON(w io.Writer, s *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteMsgpack writes s in msgpack encoding
func WriteMsgpack(w io.Writer, s *Summary) error {
	return msgpack.NewEncoder(w).Encode(s)
}

// ReadMsgpack reads a summary written by WriteMsgpack
func ReadMsgpack(r io.Reader) (*Summary, error) {
	var s Summary
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
