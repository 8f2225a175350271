package pressure

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is one CFD mesh node of a pressure snapshot
type Sample struct {
	Pressure float64 // Pa
	Area     r3.Vec  // m², along the outward surface normal, magnitude is the cell area
	Position r3.Vec  // m, mirror-wide frame
}

// Force returns the force p·A applied at the sample (N)
func (s Sample) Force() r3.Vec {
	return r3.Scale(s.Pressure, s.Area)
}

// Exertion is the mechanical load on a segment
type Exertion struct {
	Force  r3.Vec // N
	Moment r3.Vec // N·m, about the mirror-wide origin

	// CenterOfPressure is nil when the exertion was summed without one
	CenterOfPressure *r3.Vec // m
}

// Selection flags the samples of a field taking part in a computation.
// Its length always matches the field it was built from.
type Selection []bool

// Count returns the number of selected samples
func (s Selection) Count() int {
	var n int
	for _, ok := range s {
		if ok {
			n++
		}
	}
	return n
}

// Union returns the samples selected by s or o
func (s Selection) Union(o Selection) Selection {
	mustMatch(s, o)
	u := make(Selection, len(s))
	for i := range s {
		u[i] = s[i] || o[i]
	}
	return u
}

// Intersect returns the samples selected by both s and o
func (s Selection) Intersect(o Selection) Selection {
	mustMatch(s, o)
	u := make(Selection, len(s))
	for i := range s {
		u[i] = s[i] && o[i]
	}
	return u
}

// Not returns the complement of s
func (s Selection) Not() Selection {
	u := make(Selection, len(s))
	for i, ok := range s {
		u[i] = !ok
	}
	return u
}

// All returns a selection of n samples, all selected
func All(n int) Selection {
	s := make(Selection, n)
	for i := range s {
		s[i] = true
	}
	return s
}

func mustMatch(s, o Selection) {
	if len(s) != len(o) {
		panic(fmt.Sprintf("pressure: selection length mismatch %d != %d", len(s), len(o)))
	}
}

// EmptySelectionError reports a statistic requested over zero samples
type EmptySelectionError struct {
	What string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("empty selection: %s", e.What)
}

// AreaMismatchError reports an area vector whose norm disagrees with the
// independently ingested area magnitude
type AreaMismatchError struct {
	Index     int
	Magnitude float64 // m², ingested
	Norm      float64 // m², recomputed from the area vector
}

func (e *AreaMismatchError) Error() string {
	return fmt.Sprintf("sample %d: area magnitude %g does not match area vector norm %g (diff %g)",
		e.Index, e.Magnitude, e.Norm, e.Norm-e.Magnitude)
}

// PartitionError reports segment masks that do not partition the field
type PartitionError struct {
	Samples int
	Members int // sum of the segment mask sizes
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("data length (%d) and segment filter length (%d) do not match", e.Samples, e.Members)
}

// LengthError reports parallel inputs of different length
type LengthError struct {
	What     string
	Got, Len int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: length %d, expected %d", e.What, e.Got, e.Len)
}
