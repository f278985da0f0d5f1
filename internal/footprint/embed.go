// Package footprint answers spatial-coverage questions about tile catalogs:
// which tiles cover a sky position, which positions fall inside a tile, and
// how tiles map onto nested sky pixels.
//
// Angular queries are run in Euclidean space by embedding positions on the
// unit sphere, where an angular separation corresponds to a chord of length
// 2*sin(angle/2). Indices are built fresh per query batch and never shared.
package footprint

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/banshee-data/footprint.report/internal/refdata"
	"github.com/banshee-data/footprint.report/internal/units"
)

// spherePoint is a unit-sphere embedding of one catalog row or query
// position, tagged with its index in the source slice.
type spherePoint struct {
	vec [3]float64
	idx int
}

func embedPoint(raDeg, decDeg float64, idx int) spherePoint {
	theta := units.Colatitude(decDeg)
	phi := units.DegToRad(raDeg)
	r := math.Sin(theta)
	return spherePoint{
		vec: [3]float64{r * math.Cos(phi), r * math.Sin(phi), math.Cos(theta)},
		idx: idx,
	}
}

func embedRADec(ra, dec []float64) spherePoints {
	pts := make(spherePoints, len(ra))
	for i := range ra {
		pts[i] = embedPoint(ra[i], dec[i], i)
	}
	return pts
}

func embedTiles(tiles []refdata.Tile) spherePoints {
	pts := make(spherePoints, len(tiles))
	for i, t := range tiles {
		pts[i] = embedPoint(t.RA, t.Dec, i)
	}
	return pts
}

// chordSq converts an angular radius in degrees to the squared chord
// threshold the KD-tree queries compare against.
func chordSq(radiusDeg float64) float64 {
	c := units.ChordForAngle(units.DegToRad(radiusDeg))
	return c * c
}

// Compare, Dims and Distance implement kdtree.Comparable with squared
// Euclidean (chord) distances.
func (p spherePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(spherePoint)
	return p.vec[d] - q.vec[d]
}

func (p spherePoint) Dims() int { return 3 }

func (p spherePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(spherePoint)
	var s float64
	for i := range p.vec {
		d := p.vec[i] - q.vec[i]
		s += d * d
	}
	return s
}

// spherePoints implements kdtree.Interface.
type spherePoints []spherePoint

func (p spherePoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p spherePoints) Len() int                              { return len(p) }
func (p spherePoints) Pivot(d kdtree.Dim) int                { return plane{points: p, dim: d}.Pivot() }
func (p spherePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane is the sort plumbing kdtree uses to median-split spherePoints.
type plane struct {
	points spherePoints
	dim    kdtree.Dim
}

func (p plane) Len() int           { return len(p.points) }
func (p plane) Less(i, j int) bool { return p.points[i].vec[p.dim] < p.points[j].vec[p.dim] }
func (p plane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
