package focalplane

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/banshee-data/footprint.report/internal/refdata"
)

// Tables is the slice of the reference-table provider the tile-radius
// cache consumes.
type Tables interface {
	Positioners() ([]refdata.Positioner, error)
	Platescale() ([]refdata.PlatescaleSample, error)
}

// TileRadius memoizes the outer radius of the positioner layout, in mm on
// the plate and in degrees on the sky. Both values are pure functions of
// the static reference tables, so each is computed at most once per cache
// and then reused; callers share one TileRadius rather than a package
// global. A failed table load is memoized the same way: every later call
// returns the same error, so recovery from a transient read failure needs
// a fresh TileRadius.
type TileRadius struct {
	tables Tables

	mmOnce sync.Once
	mm     float64
	mmErr  error

	degOnce sync.Once
	deg     float64
	degErr  error
}

// NewTileRadius returns an empty cache over the given tables. Nothing is
// loaded until MM or Deg is first called.
func NewTileRadius(tables Tables) *TileRadius {
	return &TileRadius{tables: tables}
}

// MM returns the largest sqrt(X²+Y²) over the positioner table.
func (r *TileRadius) MM() (float64, error) {
	r.mmOnce.Do(func() {
		pos, err := r.tables.Positioners()
		if err != nil {
			r.mmErr = fmt.Errorf("loading positioner table: %w", err)
			return
		}
		if len(pos) == 0 {
			r.mmErr = errors.New("positioner table is empty")
			return
		}
		for _, p := range pos {
			if d := math.Sqrt(p.X*p.X + p.Y*p.Y); d > r.mm {
				r.mm = d
			}
		}
	})
	return r.mm, r.mmErr
}

// Deg converts MM to an angular radius on the sky by quadratic
// interpolation of the platescale table.
func (r *TileRadius) Deg() (float64, error) {
	r.degOnce.Do(func() {
		mm, err := r.MM()
		if err != nil {
			r.degErr = err
			return
		}
		ps, err := r.tables.Platescale()
		if err != nil {
			r.degErr = fmt.Errorf("loading platescale table: %w", err)
			return
		}
		if len(ps) < 3 {
			r.degErr = fmt.Errorf("platescale table needs at least 3 samples, have %d", len(ps))
			return
		}
		xs := make([]float64, len(ps))
		ys := make([]float64, len(ps))
		for i, s := range ps {
			xs[i] = s.RadiusMM
			ys[i] = s.ThetaDeg
		}
		r.deg = quadInterp(xs, ys, mm)
	})
	return r.deg, r.degErr
}

// quadInterp evaluates the Lagrange quadratic through the three samples
// bracketing x. xs must be strictly increasing.
func quadInterp(xs, ys []float64, x float64) float64 {
	lo := sort.SearchFloat64s(xs, x) - 1
	if lo < 0 {
		lo = 0
	}
	if lo > len(xs)-3 {
		lo = len(xs) - 3
	}
	x0, x1, x2 := xs[lo], xs[lo+1], xs[lo+2]
	y0, y1, y2 := ys[lo], ys[lo+1], ys[lo+2]
	l0 := (x - x1) * (x - x2) / ((x0 - x1) * (x0 - x2))
	l1 := (x - x0) * (x - x2) / ((x1 - x0) * (x1 - x2))
	l2 := (x - x0) * (x - x1) / ((x2 - x0) * (x2 - x1))
	return y0*l0 + y1*l1 + y2*l2
}
