package vase

import "math"
import "sort"

import "gonum.org/v1/gonum/floats"
import "gonum.org/v1/gonum/spatial/r2"

// A Path is the planar loop of one layer: its points in print order with the
// cumulative arc length at each point. Cum[0] is 0 and Cum[len-1] is Total.
type Path struct {
	Points []r2.Vec
	Cum    []float64
	Total  float64
}

// NewPath derives the arc-length parameterization for a point sequence.
func NewPath(points []r2.Vec) *Path {
	p := &Path{Points: points}
	if len(points) == 0 {
		return p
	}

	segs := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		segs[i] = r2.Norm(r2.Sub(points[i], points[i-1]))
	}
	p.Cum = make([]float64, len(points))
	floats.CumSum(p.Cum, segs)
	p.Total = p.Cum[len(p.Cum)-1]
	return p
}

// PointAt interpolates the planar position at arc length s, clamped to
// [0, Total].
func (p *Path) PointAt(s float64) r2.Vec {
	if s <= 0 {
		return p.Points[0]
	}
	if s >= p.Total {
		return p.Points[len(p.Points)-1]
	}

	i := sort.SearchFloat64s(p.Cum, s)
	// Cum[i-1] < s <= Cum[i]
	seg := p.Cum[i] - p.Cum[i-1]
	if seg == 0 {
		return p.Points[i]
	}
	t := (s - p.Cum[i-1]) / seg
	return r2.Add(r2.Scale(1-t, p.Points[i-1]), r2.Scale(t, p.Points[i]))
}

// A ResampledPath is a path re-expressed at uniform arc-length spacing. All
// points sit at offsets 0, d, 2d, ... except the last, which sits exactly at
// Total so the tail of the path is never truncated.
type ResampledPath struct {
	Points  []r2.Vec
	Spacing float64
	Total   float64
}

// Resample re-parameterizes the path at the given spacing. The result always
// has at least 2 points.
func (p *Path) Resample(spacing float64) *ResampledPath {
	r := &ResampledPath{Spacing: spacing, Total: p.Total}

	n := int(math.Ceil(p.Total/spacing - 1e-9))
	if n < 1 {
		n = 1
	}
	for k := 0; k < n; k++ {
		r.Points = append(r.Points, p.PointAt(float64(k)*spacing))
	}
	r.Points = append(r.Points, p.PointAt(p.Total))
	return r
}

// At interpolates the resampled path at arc length s. The uniform spacing
// makes bracketing O(1); only the final segment may be shorter than Spacing.
func (r *ResampledPath) At(s float64) r2.Vec {
	last := len(r.Points) - 1
	if s <= 0 || last == 0 {
		return r.Points[0]
	}
	if s >= r.Total {
		return r.Points[last]
	}

	i := int(s / r.Spacing)
	if i >= last {
		i = last - 1
	}
	lo := float64(i) * r.Spacing
	hi := float64(i+1) * r.Spacing
	if i+1 == last {
		hi = r.Total
	}
	if hi == lo {
		return r.Points[i]
	}
	t := (s - lo) / (hi - lo)
	return r2.Add(r2.Scale(1-t, r.Points[i]), r2.Scale(t, r.Points[i+1]))
}

// Path converts the resampled form back into an arc-length path, for feeding
// one resampling into another.
func (r *ResampledPath) Path() *Path {
	return NewPath(r.Points)
}
