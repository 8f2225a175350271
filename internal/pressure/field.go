package pressure

import (
	"iter"
	"math"

	"github.com/windloads/segpress/internal/geometry"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultAreaTolerance bounds the difference between an area vector norm and
// an ingested area magnitude, relative to the magnitude when it exceeds 1 m²
const DefaultAreaTolerance = 1e-14

// Field holds the surface pressure samples of one mirror snapshot.
//
// Positions stay in the mirror-wide frame for the lifetime of the field;
// local-frame views are derived per query. The segment masks are computed
// once by NewField and never change.
type Field struct {
	mirror *geometry.Mirror

	pressure []float64 // Pa
	area     []float64 // m², norm of areaVec
	areaVec  []r3.Vec  // m²
	xyz      []r3.Vec  // m

	masks    [geometry.NumSegments]Selection
	maskSize [geometry.NumSegments]int
}

type options struct {
	magnitude        []float64
	tolerance        float64
	requirePartition bool
}

// Option configures NewField
type Option func(*options)

// WithAreaMagnitude cross-checks the area vectors against independently
// ingested area magnitudes
func WithAreaMagnitude(magnitude []float64) Option {
	return func(o *options) { o.magnitude = magnitude }
}

// WithAreaTolerance overrides DefaultAreaTolerance
func WithAreaTolerance(tol float64) Option {
	return func(o *options) { o.tolerance = tol }
}

// WithPartitionCheck toggles the check that every sample belongs to exactly
// as many segments as the masks count in total, i.e. that the sum of the
// mask sizes equals the number of samples. It is on by default.
func WithPartitionCheck(on bool) Option {
	return func(o *options) { o.requirePartition = on }
}

// NewField builds a field from parallel arrays and computes the segment
// masks. NewField takes ownership of the slices.
func NewField(mirror *geometry.Mirror, pressure []float64, areaVec, xyz []r3.Vec, opts ...Option) (*Field, error) {
	o := options{tolerance: DefaultAreaTolerance, requirePartition: true}
	for _, opt := range opts {
		opt(&o)
	}

	if mirror == nil {
		return nil, &geometry.GeometryError{Reason: "no mirror"}
	}
	n := len(pressure)
	if n == 0 {
		return nil, &EmptySelectionError{What: "field has no samples"}
	}
	if len(areaVec) != n {
		return nil, &LengthError{What: "area vectors", Got: len(areaVec), Len: n}
	}
	if len(xyz) != n {
		return nil, &LengthError{What: "positions", Got: len(xyz), Len: n}
	}

	f := &Field{
		mirror:   mirror,
		pressure: pressure,
		area:     make([]float64, n),
		areaVec:  areaVec,
		xyz:      xyz,
	}
	for i, a := range areaVec {
		f.area[i] = r3.Norm(a)
	}

	if o.magnitude != nil {
		if err := checkAreas(f.area, o.magnitude, o.tolerance); err != nil {
			return nil, err
		}
	}

	var members int
	for sid := 1; sid <= geometry.NumSegments; sid++ {
		mask, err := f.radialFilter(sid, -1, -1)
		if err != nil {
			return nil, err
		}
		f.masks[sid-1] = mask
		f.maskSize[sid-1] = mask.Count()
		members += f.maskSize[sid-1]
	}
	if o.requirePartition && members != n {
		return nil, &PartitionError{Samples: n, Members: members}
	}

	return f, nil
}

func checkAreas(norms, magnitude []float64, tol float64) error {
	if len(magnitude) != len(norms) {
		return &LengthError{What: "area magnitudes", Got: len(magnitude), Len: len(norms)}
	}
	for i, a := range norms {
		if math.Abs(a-magnitude[i]) > tol*math.Max(1, math.Abs(magnitude[i])) {
			return &AreaMismatchError{Index: i, Magnitude: magnitude[i], Norm: a}
		}
	}
	return nil
}

// radialFilter selects the samples whose radius in the local frame of
// segment sid is within [rIn, rOut); negative bounds default to the
// segment bounds of the mirror
func (f *Field) radialFilter(sid int, rIn, rOut float64) (Selection, error) {
	tr, err := f.mirror.Transform(sid)
	if err != nil {
		return nil, err
	}
	in, out, _ := f.mirror.SegmentBounds(sid)
	if rIn < 0 {
		rIn = in
	}
	if rOut < 0 {
		rOut = out
	}
	sel := make(Selection, len(f.xyz))
	for i, p := range f.xyz {
		l := tr.ToLocal(p)
		r := math.Hypot(l.X, l.Y)
		sel[i] = r >= rIn && r < rOut
	}
	return sel, nil
}

// Mirror returns the mirror the field was sampled on
func (f *Field) Mirror() *geometry.Mirror { return f.mirror }

// Len returns the number of samples
func (f *Field) Len() int { return len(f.pressure) }

// Sample returns sample i
func (f *Field) Sample(i int) Sample {
	return Sample{Pressure: f.pressure[i], Area: f.areaVec[i], Position: f.xyz[i]}
}

// PA iterates over the (pressure, area magnitude) pairs
func (f *Field) PA() iter.Seq2[float64, float64] {
	return f.pa(nil)
}

// SegmentPA iterates over the (pressure, area magnitude) pairs of segment sid
func (f *Field) SegmentPA(sid int) (iter.Seq2[float64, float64], error) {
	mask, err := f.mask(sid)
	if err != nil {
		return nil, err
	}
	return f.pa(mask), nil
}

func (f *Field) pa(sel Selection) iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		for i, p := range f.pressure {
			if sel != nil && !sel[i] {
				continue
			}
			if !yield(p, f.area[i]) {
				return
			}
		}
	}
}

// SegmentXY iterates over the (x, y) positions of the members of segment
// sid, in the segment local frame
func (f *Field) SegmentXY(sid int) (iter.Seq2[float64, float64], error) {
	mask, err := f.mask(sid)
	if err != nil {
		return nil, err
	}
	tr, _ := f.mirror.Transform(sid)
	return func(yield func(float64, float64) bool) {
		for i, p := range f.xyz {
			if !mask[i] {
				continue
			}
			l := tr.ToLocal(p)
			if !yield(l.X, l.Y) {
				return
			}
		}
	}, nil
}

// SegmentSamples iterates over the members of segment sid, positions in the
// mirror-wide frame
func (f *Field) SegmentSamples(sid int) (iter.Seq[Sample], error) {
	mask, err := f.mask(sid)
	if err != nil {
		return nil, err
	}
	return func(yield func(Sample) bool) {
		for i := range f.pressure {
			if mask[i] && !yield(f.Sample(i)) {
				return
			}
		}
	}, nil
}

// LocalPositions returns every sample position in the local frame of
// segment sid. The field itself is left untouched.
func (f *Field) LocalPositions(sid int) ([]r3.Vec, error) {
	tr, err := f.mirror.Transform(sid)
	if err != nil {
		return nil, err
	}
	local := make([]r3.Vec, len(f.xyz))
	for i, p := range f.xyz {
		local[i] = tr.ToLocal(p)
	}
	return local, nil
}

// SegmentMask returns a copy of the membership mask of segment sid
func (f *Field) SegmentMask(sid int) (Selection, error) {
	mask, err := f.mask(sid)
	if err != nil {
		return nil, err
	}
	return append(Selection(nil), mask...), nil
}

// SegmentSize returns the number of members of segment sid
func (f *Field) SegmentSize(sid int) (int, error) {
	if err := geometry.ValidSegment(sid); err != nil {
		return 0, err
	}
	return f.maskSize[sid-1], nil
}

func (f *Field) mask(sid int) (Selection, error) {
	if err := geometry.ValidSegment(sid); err != nil {
		return nil, err
	}
	return f.masks[sid-1], nil
}

// LocalRadialFilter selects the samples whose radius in the local frame of
// segment sid lies within [rIn, rOut). A negative bound falls back to the
// segment bounds: the center hole radius (or 0) and the exo radius.
func (f *Field) LocalRadialFilter(sid int, rIn, rOut float64) (Selection, error) {
	return f.radialFilter(sid, rIn, rOut)
}

// WithinRadius selects the samples with hypot(x, y) < radius in the
// mirror-wide frame
func (f *Field) WithinRadius(radius float64) Selection {
	sel := make(Selection, len(f.xyz))
	for i, p := range f.xyz {
		sel[i] = math.Hypot(p.X, p.Y) < radius
	}
	return sel
}

// SegmentArea returns the area of segment sid (m²)
func (f *Field) SegmentArea(sid int) (float64, error) {
	mask, err := f.mask(sid)
	if err != nil {
		return 0, err
	}
	var a float64
	for i, ok := range mask {
		if ok {
			a += f.area[i]
		}
	}
	return a, nil
}

// SegmentsArea returns the area of each segment (m²)
func (f *Field) SegmentsArea() []float64 {
	areas := make([]float64, geometry.NumSegments)
	for sid := 1; sid <= geometry.NumSegments; sid++ {
		areas[sid-1], _ = f.SegmentArea(sid)
	}
	return areas
}

// MirrorArea returns the area of the whole mirror (m²)
func (f *Field) MirrorArea() float64 {
	return floats.Sum(f.area)
}

func (f *Field) axisRange(axis func(r3.Vec) float64) (min, max float64) {
	v := make([]float64, len(f.xyz))
	for i, p := range f.xyz {
		v[i] = axis(p)
	}
	return floats.Min(v), floats.Max(v)
}

// XRange returns the range of the x coordinates (m)
func (f *Field) XRange() (min, max float64) {
	return f.axisRange(func(p r3.Vec) float64 { return p.X })
}

// YRange returns the range of the y coordinates (m)
func (f *Field) YRange() (min, max float64) {
	return f.axisRange(func(p r3.Vec) float64 { return p.Y })
}

// ZRange returns the range of the z coordinates (m)
func (f *Field) ZRange() (min, max float64) {
	return f.axisRange(func(p r3.Vec) float64 { return p.Z })
}
