package focalplane

import (
	"errors"
	"math"
	"testing"

	"github.com/banshee-data/footprint.report/internal/refdata"
)

// fakeTables counts loads so memoization is observable.
type fakeTables struct {
	pos []refdata.Positioner
	ps  []refdata.PlatescaleSample

	posCalls int
	psCalls  int
	posErr   error
}

func (f *fakeTables) Positioners() ([]refdata.Positioner, error) {
	f.posCalls++
	return f.pos, f.posErr
}

func (f *fakeTables) Platescale() ([]refdata.PlatescaleSample, error) {
	f.psCalls++
	return f.ps, nil
}

// quadScale samples theta(r) = 2e-6 r^2 + 4e-3 r, a curve a three-point
// quadratic reproduces exactly.
func quadScale(r float64) float64 { return 2e-6*r*r + 4e-3*r }

func quadSamples() []refdata.PlatescaleSample {
	var out []refdata.PlatescaleSample
	for r := 0.0; r <= 500; r += 50 {
		out = append(out, refdata.PlatescaleSample{RadiusMM: r, ThetaDeg: quadScale(r)})
	}
	return out
}

func TestTileRadiusMM(t *testing.T) {
	tables := &fakeTables{
		pos: []refdata.Positioner{
			{Fiber: 0, X: 3, Y: 4},
			{Fiber: 1, X: 1, Y: 1},
			{Fiber: 2, X: -2, Y: 0},
		},
		ps: quadSamples(),
	}
	tr := NewTileRadius(tables)

	mm, err := tr.MM()
	if err != nil {
		t.Fatalf("MM: %v", err)
	}
	if mm != 5 {
		t.Errorf("MM = %v, want 5", mm)
	}
}

func TestTileRadiusMemoized(t *testing.T) {
	tables := &fakeTables{
		pos: []refdata.Positioner{{Fiber: 0, X: 100, Y: 0}},
		ps:  quadSamples(),
	}
	tr := NewTileRadius(tables)

	for i := 0; i < 3; i++ {
		if _, err := tr.MM(); err != nil {
			t.Fatalf("MM call %d: %v", i, err)
		}
		if _, err := tr.Deg(); err != nil {
			t.Fatalf("Deg call %d: %v", i, err)
		}
	}
	if tables.posCalls != 1 {
		t.Errorf("positioner table loaded %d times, want 1", tables.posCalls)
	}
	if tables.psCalls != 1 {
		t.Errorf("platescale table loaded %d times, want 1", tables.psCalls)
	}
}

func TestTileRadiusDeg(t *testing.T) {
	tables := &fakeTables{
		pos: []refdata.Positioner{{Fiber: 0, X: 240, Y: 70}},
		ps:  quadSamples(),
	}
	tr := NewTileRadius(tables)

	deg, err := tr.Deg()
	if err != nil {
		t.Fatalf("Deg: %v", err)
	}
	want := quadScale(250) // sqrt(240^2 + 70^2)
	if math.Abs(deg-want) > 1e-12 {
		t.Errorf("Deg = %v, want %v", deg, want)
	}
}

func TestTileRadiusErrors(t *testing.T) {
	loadErr := errors.New("table gone")
	tables := &fakeTables{posErr: loadErr, ps: quadSamples()}
	tr := NewTileRadius(tables)

	if _, err := tr.MM(); !errors.Is(err, loadErr) {
		t.Errorf("MM error = %v, want wrapped %v", err, loadErr)
	}
	// Deg depends on MM, so it fails the same way, and the failed load is
	// memoized too.
	if _, err := tr.Deg(); !errors.Is(err, loadErr) {
		t.Errorf("Deg error = %v, want wrapped %v", err, loadErr)
	}
	if tables.posCalls != 1 {
		t.Errorf("positioner table loaded %d times, want 1", tables.posCalls)
	}

	empty := NewTileRadius(&fakeTables{ps: quadSamples()})
	if _, err := empty.MM(); err == nil {
		t.Error("MM with empty positioner table = nil, want error")
	}

	short := NewTileRadius(&fakeTables{
		pos: []refdata.Positioner{{X: 1}},
		ps:  quadSamples()[:2],
	})
	if _, err := short.Deg(); err == nil {
		t.Error("Deg with 2 platescale samples = nil, want error")
	}
}

func TestQuadInterp(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = x * x // exactly representable by any 3-point window
	}
	for _, x := range []float64{0, 0.5, 1.7, 2.0, 3.9, 4.0} {
		if got := quadInterp(xs, ys, x); math.Abs(got-x*x) > 1e-12 {
			t.Errorf("quadInterp(%v) = %v, want %v", x, got, x*x)
		}
	}
	// Outside the table the edge window extrapolates; still exact for a
	// quadratic.
	if got := quadInterp(xs, ys, 4.5); math.Abs(got-4.5*4.5) > 1e-12 {
		t.Errorf("quadInterp(4.5) = %v, want %v", got, 4.5*4.5)
	}
}
