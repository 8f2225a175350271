package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// GeometryError reports an invalid segment id or a degenerate transform
type GeometryError struct {
	Segment int
	Reason  string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("segment %d: %s", e.Segment, e.Reason)
}

// Transform is the rigid map between a segment local frame and the
// mirror-wide frame: p = Rotation*l + Origin
type Transform struct {
	Rotation *r3.Mat
	Origin   r3.Vec
}

// ToLocal maps a mirror-wide position into the segment local frame
func (t Transform) ToLocal(p r3.Vec) r3.Vec {
	return t.Rotation.MulVecTrans(r3.Sub(p, t.Origin))
}

// FromLocal maps a segment local position into the mirror-wide frame
func (t Transform) FromLocal(l r3.Vec) r3.Vec {
	return r3.Add(t.Rotation.MulVec(l), t.Origin)
}

// Mirror is a segmented mirror: its layout constants and the rigid transform
// of every segment. A Mirror is immutable and safe for concurrent use.
type Mirror struct {
	Type   MirrorType
	Layout Layout

	segments [NumSegments]Transform
}

// NewMirror builds the segment transforms of a mirror from its layout.
//
// Outer segments 1..6 are spaced by 60 degrees in azimuth starting at the
// layout clocking angle; their vertex sits on the parent surface at the
// off-axis distance and their local z axis is the parent surface normal
// there. The center segment shares the parent vertex and axes.
func NewMirror(t MirrorType, layout Layout) (*Mirror, error) {
	if layout.ExoRadius <= 0 {
		return nil, &GeometryError{Segment: 0, Reason: fmt.Sprintf("exo radius must be positive, got %g", layout.ExoRadius)}
	}
	if layout.CenterHoleRadius < 0 || layout.CenterHoleRadius >= layout.ExoRadius {
		return nil, &GeometryError{Segment: CenterSegment, Reason: fmt.Sprintf("center hole radius %g outside [0, %g)", layout.CenterHoleRadius, layout.ExoRadius)}
	}
	if layout.RadiusOfCurvature <= 0 {
		return nil, &GeometryError{Segment: 0, Reason: fmt.Sprintf("radius of curvature must be positive, got %g", layout.RadiusOfCurvature)}
	}
	sense := layout.Sense
	if sense == 0 {
		sense = 1
	}

	m := &Mirror{Type: t, Layout: layout}

	// Parent surface slope and sag at the outer segment vertex
	tilt := math.Atan(layout.OffAxisDistance / layout.RadiusOfCurvature)
	sag := layout.OffAxisDistance * layout.OffAxisDistance / (2 * layout.RadiusOfCurvature)

	for sid := 1; sid < CenterSegment; sid++ {
		alpha := layout.Clocking + float64(sid-1)*math.Pi/3
		theta := -sense * tilt
		m.segments[sid-1] = Transform{
			Rotation: rotationZY(alpha, theta),
			Origin: r3.Vec{
				X: layout.OffAxisDistance * math.Cos(alpha),
				Y: layout.OffAxisDistance * math.Sin(alpha),
				Z: layout.VertexZ + sense*sag,
			},
		}
	}
	m.segments[CenterSegment-1] = Transform{
		Rotation: rotationZY(0, 0),
		Origin:   r3.Vec{Z: layout.VertexZ},
	}

	for i, tr := range m.segments {
		if det := tr.Rotation.Det(); math.Abs(det-1) > 1e-9 {
			return nil, &GeometryError{Segment: i + 1, Reason: fmt.Sprintf("rotation determinant %g is not 1", det)}
		}
	}
	return m, nil
}

// rotationZY returns Rz(alpha)*Ry(theta)
func rotationZY(alpha, theta float64) *r3.Mat {
	ca, sa := math.Cos(alpha), math.Sin(alpha)
	ct, st := math.Cos(theta), math.Sin(theta)
	return r3.NewMat([]float64{
		ca * ct, -sa, ca * st,
		sa * ct, ca, sa * st,
		-st, 0, ct,
	})
}

// M1 returns the primary mirror with its default layout
func M1() *Mirror {
	m, err := NewMirror(MirrorM1, M1Layout())
	if err != nil {
		panic(err)
	}
	return m
}

// M2 returns the secondary mirror with its default layout
func M2() *Mirror {
	m, err := NewMirror(MirrorM2, M2Layout())
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns "M1" or "M2"
func (m *Mirror) Name() string { return m.Type.String() }

// ValidSegment checks that sid is within [1, NumSegments]
func ValidSegment(sid int) error {
	if sid < 1 || sid > NumSegments {
		return &GeometryError{Segment: sid, Reason: fmt.Sprintf("segment id must be within [1, %d]", NumSegments)}
	}
	return nil
}

// Transform returns the rigid transform of segment sid
func (m *Mirror) Transform(sid int) (Transform, error) {
	if err := ValidSegment(sid); err != nil {
		return Transform{}, err
	}
	return m.segments[sid-1], nil
}

// ToLocal maps a mirror-wide position into the local frame of segment sid
func (m *Mirror) ToLocal(sid int, p r3.Vec) (r3.Vec, error) {
	t, err := m.Transform(sid)
	if err != nil {
		return r3.Vec{}, err
	}
	return t.ToLocal(p), nil
}

// FromLocal maps a position in the local frame of segment sid into the
// mirror-wide frame
func (m *Mirror) FromLocal(sid int, l r3.Vec) (r3.Vec, error) {
	t, err := m.Transform(sid)
	if err != nil {
		return r3.Vec{}, err
	}
	return t.FromLocal(l), nil
}

// SegmentBounds returns the local radial interval [rIn, rOut) of the
// samples that belong to segment sid
func (m *Mirror) SegmentBounds(sid int) (rIn, rOut float64, err error) {
	if err = ValidSegment(sid); err != nil {
		return 0, 0, err
	}
	if sid == CenterSegment {
		rIn = m.Layout.CenterHoleRadius
	}
	return rIn, m.Layout.ExoRadius, nil
}
