package footprint

import (
	"errors"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/banshee-data/footprint.report/internal/focalplane"
	"github.com/banshee-data/footprint.report/internal/refdata"
)

// Queries answers coverage questions over tile catalogs. The TileRadius
// cache supplies the default query radius whenever a caller passes
// radiusDeg <= 0.
type Queries struct {
	tileRadius *focalplane.TileRadius
}

// NewQueries returns a Queries using tr for the default radius. tr may be
// nil if callers always pass an explicit radius.
func NewQueries(tr *focalplane.TileRadius) *Queries {
	return &Queries{tileRadius: tr}
}

// Radius resolves an explicit query radius in degrees, falling back to the
// positioner envelope on the sky when radiusDeg <= 0.
func (q *Queries) Radius(radiusDeg float64) (float64, error) {
	if radiusDeg > 0 {
		return radiusDeg, nil
	}
	if q.tileRadius == nil {
		return 0, errors.New("no radius given and no tile-radius cache configured")
	}
	return q.tileRadius.Deg()
}

// IsInFootprint reports, per query position, whether any tile center lies
// within radiusDeg, plus the index of the nearest tile. A point is covered
// iff its chord distance to the nearest center is strictly below
// 2*sin(radius/2). With an empty catalog every point is uncovered and the
// nearest index is -1.
func (q *Queries) IsInFootprint(tiles []refdata.Tile, ra, dec []float64, radiusDeg float64) (covered []bool, nearest []int, err error) {
	if len(ra) != len(dec) {
		return nil, nil, &focalplane.ShapeError{RALen: len(ra), DecLen: len(dec)}
	}
	radius, err := q.Radius(radiusDeg)
	if err != nil {
		return nil, nil, err
	}

	covered = make([]bool, len(ra))
	nearest = make([]int, len(ra))
	if len(tiles) == 0 {
		for i := range nearest {
			nearest[i] = -1
		}
		return covered, nearest, nil
	}

	tree := kdtree.New(embedTiles(tiles), false)
	threshold := chordSq(radius)
	for i, p := range embedRADec(ra, dec) {
		got, dist := tree.Nearest(p)
		nearest[i] = got.(spherePoint).idx
		covered[i] = dist < threshold
	}
	return covered, nearest, nil
}

// TilesCoveringPoints returns, per query position, the indices of every
// tile whose center lies within radiusDeg. Index order within each set is
// unspecified.
func (q *Queries) TilesCoveringPoints(tiles []refdata.Tile, ra, dec []float64, radiusDeg float64) ([][]int, error) {
	if len(ra) != len(dec) {
		return nil, &focalplane.ShapeError{RALen: len(ra), DecLen: len(dec)}
	}
	radius, err := q.Radius(radiusDeg)
	if err != nil {
		return nil, err
	}

	out := make([][]int, len(ra))
	if len(tiles) == 0 {
		for i := range out {
			out[i] = []int{}
		}
		return out, nil
	}

	tree := kdtree.New(embedTiles(tiles), false)
	threshold := chordSq(radius)
	for i, p := range embedRADec(ra, dec) {
		out[i] = withinSq(tree, p, threshold)
	}
	return out, nil
}

// PointsInTiles is the transpose query: the index is built over the query
// positions and each tile center runs one range query against it. ra and
// dec must be equal-length flat slices.
func (q *Queries) PointsInTiles(tiles []refdata.Tile, ra, dec []float64, radiusDeg float64) ([][]int, error) {
	if len(ra) != len(dec) {
		return nil, &focalplane.ShapeError{RALen: len(ra), DecLen: len(dec)}
	}
	radius, err := q.Radius(radiusDeg)
	if err != nil {
		return nil, err
	}

	out := make([][]int, len(tiles))
	if len(ra) == 0 {
		for i := range out {
			out[i] = []int{}
		}
		return out, nil
	}

	tree := kdtree.New(embedRADec(ra, dec), false)
	threshold := chordSq(radius)
	for i, p := range embedTiles(tiles) {
		out[i] = withinSq(tree, p, threshold)
	}
	return out, nil
}

// withinSq collects the indices of tree members with squared chord
// distance at most sq from p.
func withinSq(tree *kdtree.Tree, p spherePoint, sq float64) []int {
	keeper := kdtree.NewDistKeeper(sq)
	tree.NearestSet(keeper, p)
	idx := make([]int, 0, keeper.Len())
	for _, c := range keeper.Heap {
		if c.Comparable == nil {
			// The keeper's initial sentinel.
			continue
		}
		idx = append(idx, c.Comparable.(spherePoint).idx)
	}
	return idx
}
