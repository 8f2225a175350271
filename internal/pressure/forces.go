package pressure

import (
	"fmt"
	"math"

	"github.com/windloads/segpress/internal/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

// Forces returns the force p·A of every member of segment sid (N)
func (f *Field) Forces(sid int) ([]r3.Vec, error) {
	mask, err := f.mask(sid)
	if err != nil {
		return nil, err
	}
	forces := make([]r3.Vec, 0, f.maskSize[sid-1])
	for i, ok := range mask {
		if ok {
			forces = append(forces, r3.Scale(f.pressure[i], f.areaVec[i]))
		}
	}
	return forces, nil
}

// SegmentForce returns the force on segment sid (N)
func (f *Field) SegmentForce(sid int) (r3.Vec, error) {
	forces, err := f.Forces(sid)
	if err != nil {
		return r3.Vec{}, err
	}
	return SumVectors(forces), nil
}

// SegmentsForce returns the force summed over all segments (N)
func (f *Field) SegmentsForce() (r3.Vec, error) {
	var total r3.Vec
	for sid := 1; sid <= geometry.NumSegments; sid++ {
		force, err := f.SegmentForce(sid)
		if err != nil {
			return r3.Vec{}, err
		}
		total = r3.Add(total, force)
	}
	return total, nil
}

// TotalForce returns the normal force over the whole mirror, Σ -p·|A| (N)
func (f *Field) TotalForce() float64 {
	var force float64
	for i, p := range f.pressure {
		force -= p * f.area[i]
	}
	return force
}

// CenterOfPressure returns the center of pressure of segment sid in the
// mirror-wide frame (m).
//
// Each coordinate is the force-weighted mean Σ(F_k·x_k)/ΣF_k. Along an axis
// with no net force the coordinate falls back to the mean weighted by the
// force magnitude, then to the area centroid of the members.
func (f *Field) CenterOfPressure(sid int) (r3.Vec, error) {
	cop, _, err := f.integrate(sid)
	return cop, err
}

// SegmentPressureIntegral returns the exertion of segment sid: the force, the
// center of pressure and the moment cop × force about the mirror-wide origin.
// The moment is derived from the aggregated force and center of pressure,
// not summed from the moments of the samples.
func (f *Field) SegmentPressureIntegral(sid int) (Exertion, error) {
	cop, force, err := f.integrate(sid)
	if err != nil {
		return Exertion{}, err
	}
	return Exertion{
		Force:            force,
		Moment:           r3.Cross(cop, force),
		CenterOfPressure: &cop,
	}, nil
}

// SegmentsExertion returns the exertion of every segment
func (f *Field) SegmentsExertion() ([]Exertion, error) {
	out := make([]Exertion, geometry.NumSegments)
	for sid := 1; sid <= geometry.NumSegments; sid++ {
		e, err := f.SegmentPressureIntegral(sid)
		if err != nil {
			return nil, err
		}
		out[sid-1] = e
	}
	return out, nil
}

// MirrorExertion sums the force and moment of every segment; the result has
// no center of pressure
func (f *Field) MirrorExertion() (Exertion, error) {
	segments, err := f.SegmentsExertion()
	if err != nil {
		return Exertion{}, err
	}
	var total Exertion
	for _, e := range segments {
		total.Force = r3.Add(total.Force, e.Force)
		total.Moment = r3.Add(total.Moment, e.Moment)
	}
	return total, nil
}

func (f *Field) integrate(sid int) (cop, force r3.Vec, err error) {
	mask, err := f.mask(sid)
	if err != nil {
		return r3.Vec{}, r3.Vec{}, err
	}
	if f.maskSize[sid-1] == 0 {
		return r3.Vec{}, r3.Vec{}, &EmptySelectionError{What: fmt.Sprintf("center of pressure of segment %d", sid)}
	}

	var (
		moment   [3]float64 // Σ F_k·x_k
		sum      [3]float64 // Σ F_k
		weighted r3.Vec     // Σ |F|·x
		weight   float64    // Σ |F|
		centroid r3.Vec     // Σ |A|·x
		area     float64
	)
	for i, ok := range mask {
		if !ok {
			continue
		}
		df := r3.Scale(f.pressure[i], f.areaVec[i])
		x := f.xyz[i]
		moment[0] += df.X * x.X
		moment[1] += df.Y * x.Y
		moment[2] += df.Z * x.Z
		sum[0] += df.X
		sum[1] += df.Y
		sum[2] += df.Z

		w := r3.Norm(df)
		weighted = r3.Add(weighted, r3.Scale(w, x))
		weight += w
		centroid = r3.Add(centroid, r3.Scale(f.area[i], x))
		area += f.area[i]
	}

	fallback := [3]float64{math.NaN(), math.NaN(), math.NaN()}
	switch {
	case weight != 0:
		fallback = [3]float64{weighted.X / weight, weighted.Y / weight, weighted.Z / weight}
	case area != 0:
		fallback = [3]float64{centroid.X / area, centroid.Y / area, centroid.Z / area}
	}

	var c [3]float64
	for k := range c {
		if sum[k] != 0 {
			c[k] = moment[k] / sum[k]
		} else {
			c[k] = fallback[k]
		}
		if math.IsNaN(c[k]) {
			return r3.Vec{}, r3.Vec{}, &EmptySelectionError{What: fmt.Sprintf("center of pressure of segment %d (zero area)", sid)}
		}
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, r3.Vec{X: sum[0], Y: sum[1], Z: sum[2]}, nil
}

// SumVectors returns the componentwise sum of vs
func SumVectors(vs []r3.Vec) r3.Vec {
	var s r3.Vec
	for _, v := range vs {
		s = r3.Add(s, v)
	}
	return s
}
