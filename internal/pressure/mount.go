package pressure

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mount holds the surface pressure samples of the telescope mount, which
// has no segments
type Mount struct {
	Name string // source file name

	pressure []float64 // Pa
	areaVec  []r3.Vec  // m²
	xyz      []r3.Vec  // m
}

// NewMount builds a mount from parallel arrays. NewMount takes ownership of
// the slices.
func NewMount(name string, pressure []float64, areaVec, xyz []r3.Vec) (*Mount, error) {
	n := len(pressure)
	if n == 0 {
		return nil, &EmptySelectionError{What: "mount has no samples"}
	}
	if len(areaVec) != n {
		return nil, &LengthError{What: "area vectors", Got: len(areaVec), Len: n}
	}
	if len(xyz) != n {
		return nil, &LengthError{What: "positions", Got: len(xyz), Len: n}
	}
	return &Mount{Name: name, pressure: pressure, areaVec: areaVec, xyz: xyz}, nil
}

// Len returns the number of samples
func (m *Mount) Len() int { return len(m.pressure) }

// Sample returns sample i
func (m *Mount) Sample(i int) Sample {
	return Sample{Pressure: m.pressure[i], Area: m.areaVec[i], Position: m.xyz[i]}
}

// MeanPressure returns the arithmetic mean of the pressure samples (Pa)
func (m *Mount) MeanPressure() float64 {
	return floats.Sum(m.pressure) / float64(len(m.pressure))
}

// MedianPressure returns the median of the pressure samples (Pa)
func (m *Mount) MedianPressure() float64 {
	sorted := append([]float64(nil), m.pressure...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// PressureRange returns the minimum and maximum pressure (Pa)
func (m *Mount) PressureRange() (min, max float64) {
	return floats.Min(m.pressure), floats.Max(m.pressure)
}

// AreaMagnitudes returns the norm of each area vector (m²)
func (m *Mount) AreaMagnitudes() []float64 {
	a := make([]float64, len(m.areaVec))
	for i, v := range m.areaVec {
		a[i] = r3.Norm(v)
	}
	return a
}

// TotalArea returns the sum of the area magnitudes (m²)
func (m *Mount) TotalArea() float64 {
	return floats.Sum(m.AreaMagnitudes())
}

// Bounds returns the per axis minimum and maximum of the sample positions (m)
func (m *Mount) Bounds() (min, max r3.Vec) {
	min, max = m.xyz[0], m.xyz[0]
	for _, p := range m.xyz[1:] {
		min = r3.Vec{X: fmin(min.X, p.X), Y: fmin(min.Y, p.Y), Z: fmin(min.Z, p.Z)}
		max = r3.Vec{X: fmax(max.X, p.X), Y: fmax(max.Y, p.Y), Z: fmax(max.Z, p.Z)}
	}
	return min, max
}

func fmin(a, b float64) float64 {
	if b < a {
		return b
	}
	return a
}

func fmax(a, b float64) float64 {
	if b > a {
		return b
	}
	return a
}

// String summarizes the mount pressure and extent
func (m *Mount) String() string {
	var sb strings.Builder
	pmin, pmax := m.PressureRange()
	lo, hi := m.Bounds()
	fmt.Fprintf(&sb, "%s [%d]:\n", m.Name, m.Len())
	sb.WriteString(" - pressure:\n")
	fmt.Fprintf(&sb, "  - mean  : %.3fpa\n", m.MeanPressure())
	fmt.Fprintf(&sb, "  - median: %.3fpa\n", m.MedianPressure())
	fmt.Fprintf(&sb, "  - minmax: (%.3f, %.3f)pa\n", pmin, pmax)
	fmt.Fprintf(&sb, " - total area: %.3fm^2\n", m.TotalArea())
	sb.WriteString(" - volume:\n")
	fmt.Fprintf(&sb, "  - x minmax: (%.3f, %.3f)m\n", lo.X, hi.X)
	fmt.Fprintf(&sb, "  - y minmax: (%.3f, %.3f)m\n", lo.Y, hi.Y)
	fmt.Fprintf(&sb, "  - z minmax: (%.3f, %.3f)m", lo.Z, hi.Z)
	return sb.String()
}
