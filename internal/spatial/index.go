// Package spatial resolves coordinates from independently generated meshes
// against the samples of a pressure field.
package spatial

import (
	"math"
	"sort"

	"github.com/windloads/segpress/internal/pressure"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Source is a set of samples addressable by index. Both *pressure.Field and
// *pressure.Mount are sources.
type Source interface {
	Len() int
	Sample(i int) pressure.Sample
}

// Match is a sample found by a query
type Match struct {
	pressure.Sample
	Index    int     // position of the sample in its source
	Distance float64 // m, from the query point
}

// Index is a k-d tree over the sample positions of a source. It is
// read-only once built and safe for concurrent queries.
type Index struct {
	src  Source
	tree *kdtree.Tree
}

// NewIndex builds the index of every sample of src
func NewIndex(src Source) (*Index, error) {
	n := src.Len()
	if n == 0 {
		return nil, &pressure.EmptySelectionError{What: "spatial index over no samples"}
	}
	pts := make(nodes, n)
	for i := range pts {
		pts[i] = node{Vec: src.Sample(i).Position, index: i}
	}
	return &Index{src: src, tree: kdtree.New(pts, false)}, nil
}

// Len returns the number of indexed samples
func (x *Index) Len() int { return x.tree.Count }

// LocateAtPoint returns the sample whose position equals p exactly
func (x *Index) LocateAtPoint(p r3.Vec) (Match, bool) {
	m := x.Nearest(p)
	if m.Position != p {
		return Match{}, false
	}
	return m, true
}

// Nearest returns the sample closest to p
func (x *Index) Nearest(p r3.Vec) Match {
	c, d := x.tree.Nearest(node{Vec: p})
	return x.match(c, d)
}

// NearestN returns the n samples closest to p, nearest first
func (x *Index) NearestN(p r3.Vec, n int) []Match {
	if n <= 0 {
		return nil
	}
	k := kdtree.NewNKeeper(n)
	x.tree.NearestSet(k, node{Vec: p})
	return x.matches(k.Heap)
}

// WithinRadius returns the samples no farther than radius from p, nearest
// first
func (x *Index) WithinRadius(p r3.Vec, radius float64) []Match {
	if radius < 0 {
		return nil
	}
	k := kdtree.NewDistKeeper(radius * radius)
	x.tree.NearestSet(k, node{Vec: p})
	return x.matches(k.Heap)
}

// LocateAll resolves every point exactly. It returns the matches in query
// order and the indices of the points with no sample.
func (x *Index) LocateAll(points []r3.Vec) (matches []Match, missing []int) {
	for i, p := range points {
		m, ok := x.LocateAtPoint(p)
		if !ok {
			missing = append(missing, i)
			continue
		}
		matches = append(matches, m)
	}
	return matches, missing
}

func (x *Index) match(c kdtree.Comparable, dist float64) Match {
	nd := c.(node)
	return Match{Sample: x.src.Sample(nd.index), Index: nd.index, Distance: math.Sqrt(dist)}
}

func (x *Index) matches(h kdtree.Heap) []Match {
	out := make([]Match, 0, len(h))
	for _, cd := range h {
		// keeper sentinel
		if cd.Comparable == nil {
			continue
		}
		out = append(out, x.match(cd.Comparable, cd.Dist))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// node is an indexed sample position
type node struct {
	r3.Vec
	index int
}

func coord(v r3.Vec, d kdtree.Dim) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Compare returns the signed distance of n from the plane through c
// perpendicular to dimension d
func (n node) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return coord(n.Vec, d) - coord(c.(node).Vec, d)
}

// Dims returns 3
func (n node) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between n and c
func (n node) Distance(c kdtree.Comparable) float64 {
	d := r3.Sub(n.Vec, c.(node).Vec)
	return r3.Dot(d, d)
}

type nodes []node

func (p nodes) Index(i int) kdtree.Comparable         { return p[i] }
func (p nodes) Len() int                              { return len(p) }
func (p nodes) Pivot(d kdtree.Dim) int                { return plane{nodes: p, Dim: d}.Pivot() }
func (p nodes) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts nodes along one dimension
type plane struct {
	kdtree.Dim
	nodes
}

func (p plane) Less(i, j int) bool {
	return coord(p.nodes[i].Vec, p.Dim) < coord(p.nodes[j].Vec, p.Dim)
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.nodes = p.nodes[start:end]
	return p
}
func (p plane) Swap(i, j int) { p.nodes[i], p.nodes[j] = p.nodes[j], p.nodes[i] }
