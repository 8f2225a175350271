package pressure

import (
	"fmt"
	"math"

	"github.com/windloads/segpress/internal/geometry"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// selected gathers the pressures and area magnitudes of the selection
func (f *Field) selected(sel Selection, what string) (ps, as []float64, err error) {
	if len(sel) != len(f.pressure) {
		return nil, nil, &LengthError{What: "selection", Got: len(sel), Len: len(f.pressure)}
	}
	for i, ok := range sel {
		if ok {
			ps = append(ps, f.pressure[i])
			as = append(as, f.area[i])
		}
	}
	if len(ps) == 0 {
		return nil, nil, &EmptySelectionError{What: what}
	}
	if floats.Sum(as) == 0 {
		return nil, nil, &EmptySelectionError{What: what + " (zero area)"}
	}
	return ps, as, nil
}

// Mean returns the area-weighted mean pressure over the selection (Pa)
func (f *Field) Mean(sel Selection) (float64, error) {
	ps, as, err := f.selected(sel, "mean")
	if err != nil {
		return 0, err
	}
	return stat.Mean(ps, as), nil
}

// Variance returns the area-weighted pressure variance about mean over the
// selection (Pa²)
func (f *Field) Variance(sel Selection, mean float64) (float64, error) {
	ps, as, err := f.selected(sel, "variance")
	if err != nil {
		return 0, err
	}
	var pa float64
	for i, p := range ps {
		d := p - mean
		pa += d * d * as[i]
	}
	return pa / floats.Sum(as), nil
}

// Std returns the area-weighted pressure standard deviation about mean over
// the selection (Pa)
func (f *Field) Std(sel Selection, mean float64) (float64, error) {
	v, err := f.Variance(sel, mean)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// MeanVariance returns the area-weighted mean and the variance about it
func (f *Field) MeanVariance(sel Selection) (mean, variance float64, err error) {
	if mean, err = f.Mean(sel); err != nil {
		return 0, 0, err
	}
	variance, err = f.Variance(sel, mean)
	return mean, variance, err
}

func (f *Field) segmentSelection(sid int) (Selection, error) {
	mask, err := f.mask(sid)
	if err != nil {
		return nil, err
	}
	if f.maskSize[sid-1] == 0 {
		return nil, &EmptySelectionError{What: fmt.Sprintf("segment %d has no samples", sid)}
	}
	return mask, nil
}

// SegmentMean returns the mean pressure over segment sid (Pa)
func (f *Field) SegmentMean(sid int) (float64, error) {
	mask, err := f.segmentSelection(sid)
	if err != nil {
		return 0, err
	}
	return f.Mean(mask)
}

// SegmentVariance returns the pressure variance over segment sid (Pa²)
func (f *Field) SegmentVariance(sid int) (float64, error) {
	mask, err := f.segmentSelection(sid)
	if err != nil {
		return 0, err
	}
	_, v, err := f.MeanVariance(mask)
	return v, err
}

// SegmentStd returns the pressure standard deviation over segment sid (Pa)
func (f *Field) SegmentStd(sid int) (float64, error) {
	v, err := f.SegmentVariance(sid)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

func (f *Field) perSegment(stat func(int) (float64, error)) ([]float64, error) {
	out := make([]float64, geometry.NumSegments)
	for sid := 1; sid <= geometry.NumSegments; sid++ {
		v, err := stat(sid)
		if err != nil {
			return nil, err
		}
		out[sid-1] = v
	}
	return out, nil
}

// SegmentsMean returns the mean pressure of each segment (Pa)
func (f *Field) SegmentsMean() ([]float64, error) { return f.perSegment(f.SegmentMean) }

// SegmentsVariance returns the pressure variance of each segment (Pa²)
func (f *Field) SegmentsVariance() ([]float64, error) { return f.perSegment(f.SegmentVariance) }

// SegmentsStd returns the pressure standard deviation of each segment (Pa)
func (f *Field) SegmentsStd() ([]float64, error) { return f.perSegment(f.SegmentStd) }

// MirrorMean returns the mean pressure over the whole mirror (Pa)
func (f *Field) MirrorMean() (float64, error) {
	return f.Mean(All(f.Len()))
}

// MirrorVariance returns the pressure variance over the whole mirror (Pa²)
func (f *Field) MirrorVariance() (float64, error) {
	_, v, err := f.MeanVariance(All(f.Len()))
	return v, err
}

// MirrorStd returns the pressure standard deviation over the whole mirror (Pa)
func (f *Field) MirrorStd() (float64, error) {
	v, err := f.MirrorVariance()
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// MirrorMeanWithin returns the mean pressure over the samples within radius
// of the optical axis (Pa)
func (f *Field) MirrorMeanWithin(radius float64) (float64, error) {
	return f.Mean(f.WithinRadius(radius))
}

// MirrorVarianceWithin returns the pressure variance over the samples within
// radius of the optical axis (Pa²)
func (f *Field) MirrorVarianceWithin(radius float64) (float64, error) {
	_, v, err := f.MeanVariance(f.WithinRadius(radius))
	return v, err
}

// MirrorStdWithin returns the pressure standard deviation over the samples
// within radius of the optical axis (Pa)
func (f *Field) MirrorStdWithin(radius float64) (float64, error) {
	v, err := f.MirrorVarianceWithin(radius)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// ASMDifferentialPressure returns the mean pressure of segment sid and the
// differential pressure (p - 1.1·mean)/3 seen by each of its members
// across the adaptive secondary reference body
func (f *Field) ASMDifferentialPressure(sid int) (mean float64, dp []float64, err error) {
	if mean, err = f.SegmentMean(sid); err != nil {
		return 0, nil, err
	}
	mask := f.masks[sid-1]
	dp = make([]float64, 0, f.maskSize[sid-1])
	for i, ok := range mask {
		if ok {
			dp = append(dp, (f.pressure[i]-1.1*mean)/3)
		}
	}
	return mean, dp, nil
}
