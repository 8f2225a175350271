package geometry

import "fmt"

// Segmented mirror constants

const (
	// NumSegments is the number of segments of either mirror
	NumSegments = 7

	// CenterSegment is the on-axis segment id
	CenterSegment = 7
)

// M1 (primary mirror) layout
const (
	M1ExoRadius         = 4.5        // m, segment clear aperture radius plus overlap margin
	M1CenterHoleRadius  = 2.75 * 0.5 // m, central obstruction of the center segment
	M1OffAxisDistance   = 8.71       // m, outer segment vertex distance to the optical axis
	M1RadiusOfCurvature = 36.0       // m, parent surface radius of curvature at the vertex
	M1VertexZ           = 3.9        // m, parent vertex height in the mirror-wide frame
)

// M2 (secondary mirror) layout
const (
	M2ExoRadius         = 0.55    // m
	M2OffAxisDistance   = 1.08774 // m
	M2RadiusOfCurvature = 4.1683  // m
	M2VertexZ           = 24.16   // m, M1 vertex plus the 20.26 m primary-secondary spacing
)

// MirrorType identifies one of the two segmented mirrors
type MirrorType int

const (
	MirrorM1 MirrorType = iota + 1
	MirrorM2
)

// String returns the mirror name used in file names and reports
func (t MirrorType) String() string {
	switch t {
	case MirrorM1:
		return "M1"
	case MirrorM2:
		return "M2"
	}
	return fmt.Sprintf("MirrorType(%d)", int(t))
}

// ParseMirrorType converts "M1"/"m1" or "M2"/"m2" into a MirrorType
func ParseMirrorType(name string) (MirrorType, error) {
	switch name {
	case "M1", "m1":
		return MirrorM1, nil
	case "M2", "m2":
		return MirrorM2, nil
	}
	return 0, fmt.Errorf("unknown mirror %q, expected M1 or M2", name)
}

// Layout holds the constants that place the segments of a mirror in the
// mirror-wide frame and bound the samples that belong to each of them
type Layout struct {
	ExoRadius         float64 // m, samples at or beyond this local radius are not members
	CenterHoleRadius  float64 // m, center segment only, 0 for none
	OffAxisDistance   float64 // m, outer segment vertex to optical axis
	RadiusOfCurvature float64 // m, parent vertex radius of curvature
	VertexZ           float64 // m, parent vertex height
	Clocking          float64 // rad, azimuth of segment 1
	Sense             float64 // +1 surface opens towards +z, -1 towards -z
}

// M1Layout returns the default primary mirror layout
func M1Layout() Layout {
	return Layout{
		ExoRadius:         M1ExoRadius,
		CenterHoleRadius:  M1CenterHoleRadius,
		OffAxisDistance:   M1OffAxisDistance,
		RadiusOfCurvature: M1RadiusOfCurvature,
		VertexZ:           M1VertexZ,
		Sense:             1,
	}
}

// M2Layout returns the default secondary mirror layout
func M2Layout() Layout {
	return Layout{
		ExoRadius:         M2ExoRadius,
		OffAxisDistance:   M2OffAxisDistance,
		RadiusOfCurvature: M2RadiusOfCurvature,
		VertexZ:           M2VertexZ,
		Sense:             -1,
	}
}

// DefaultLayout returns the built-in layout of the given mirror type
func DefaultLayout(t MirrorType) (Layout, error) {
	switch t {
	case MirrorM1:
		return M1Layout(), nil
	case MirrorM2:
		return M2Layout(), nil
	}
	return Layout{}, fmt.Errorf("no layout for %v", t)
}
