package footprint

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/footprint.report/internal/refdata"
)

// gridPix is a rectangular lat/long pixelization standing in for the real
// nested scheme: nside rows of colatitude by 2*nside columns of azimuth,
// indexed row-major. Discs include pixels whose centers lie within the
// radius plus half a pixel, which keeps center pixels in even for small
// radii.
type gridPix struct{}

func (gridPix) grid(nside int64) (rows, cols int64) { return nside, 2 * nside }

func (g gridPix) AngToPix(nside int64, theta, phi float64) (int64, error) {
	rows, cols := g.grid(nside)
	phi = math.Mod(phi, 2*math.Pi)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	r := int64(theta / math.Pi * float64(rows))
	if r >= rows {
		r = rows - 1
	}
	c := int64(phi / (2 * math.Pi) * float64(cols))
	if c >= cols {
		c = cols - 1
	}
	return r*cols + c, nil
}

func (g gridPix) PixToAng(nside, pix int64) (theta, phi float64, err error) {
	rows, cols := g.grid(nside)
	if pix < 0 || pix >= rows*cols {
		return 0, 0, fmt.Errorf("pixel %d out of range for nside %d", pix, nside)
	}
	r, c := pix/cols, pix%cols
	theta = (float64(r) + 0.5) * math.Pi / float64(rows)
	phi = (float64(c) + 0.5) * 2 * math.Pi / float64(cols)
	return theta, phi, nil
}

func (g gridPix) Resolution(nside int64) (float64, error) {
	return math.Pi / float64(nside), nil
}

func (g gridPix) QueryDisc(nside int64, vec [3]float64, radius float64) ([]int64, error) {
	rows, cols := g.grid(nside)
	res, _ := g.Resolution(nside)
	var out []int64
	for pix := int64(0); pix < rows*cols; pix++ {
		theta, phi, _ := g.PixToAng(nside, pix)
		s := math.Sin(theta)
		dot := s*math.Cos(phi)*vec[0] + s*math.Sin(phi)*vec[1] + math.Cos(theta)*vec[2]
		if dot > 1 {
			dot = 1
		} else if dot < -1 {
			dot = -1
		}
		if math.Acos(dot) <= radius+res/2 {
			out = append(out, pix)
		}
	}
	return out, nil
}

const testNside = 64

func newTestMapper() *Mapper {
	return NewMapper(gridPix{}, NewQueries(nil))
}

func TestRADecToPix(t *testing.T) {
	m := newTestMapper()
	ra := []float64{0, 90, 350.2, 10}
	dec := []float64{0, 45, -20, 90}

	pix, err := m.RADecToPix(testNside, ra, dec)
	if err != nil {
		t.Fatalf("RADecToPix: %v", err)
	}
	g := gridPix{}
	for i, p := range pix {
		// The pixel center must pixelize back to the same index.
		theta, phi, err := g.PixToAng(testNside, p)
		if err != nil {
			t.Fatalf("PixToAng(%d): %v", p, err)
		}
		back, err := g.AngToPix(testNside, theta, phi)
		if err != nil {
			t.Fatal(err)
		}
		if back != p {
			t.Errorf("pixel %d for (%v, %v) does not round-trip: got %d", p, ra[i], dec[i], back)
		}
	}
}

func TestTilesToPixelsUnion(t *testing.T) {
	m := newTestMapper()
	tiles := []refdata.Tile{
		{TileID: 1, RA: 0, Dec: 0},
		{TileID: 2, RA: 2, Dec: 0},
	}

	perTile, err := m.TilePixels(testNside, tiles, 3.0)
	if err != nil {
		t.Fatalf("TilePixels: %v", err)
	}
	if len(perTile[0]) == 0 || len(perTile[1]) == 0 {
		t.Fatal("disc queries returned no pixels")
	}

	union, err := m.TilesToPixels(testNside, tiles, 3.0)
	if err != nil {
		t.Fatalf("TilesToPixels: %v", err)
	}
	for i := 1; i < len(union); i++ {
		if union[i] <= union[i-1] {
			t.Fatalf("union not sorted strictly ascending at %d: %v", i, union[i])
		}
	}

	seen := make(map[int64]struct{})
	var want []int64
	for _, pix := range perTile {
		for _, p := range pix {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				want = append(want, p)
			}
		}
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	if diff := cmp.Diff(want, union); diff != "" {
		t.Errorf("union mismatch (-want +got):\n%s", diff)
	}
}

func TestTilesToPixelsContainsCenters(t *testing.T) {
	m := newTestMapper()
	tiles := []refdata.Tile{{TileID: 1, RA: 123.4, Dec: -21.0}}

	union, err := m.TilesToPixels(testNside, tiles, 1.6)
	if err != nil {
		t.Fatalf("TilesToPixels: %v", err)
	}
	center, err := m.RADecToPix(testNside, []float64{123.4}, []float64{-21.0})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, p := range union {
		if p == center[0] {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("pixel %d containing the tile center missing from %v", center[0], union)
	}
}

func TestTileIDsToPixels(t *testing.T) {
	m := newTestMapper()
	catalog := []refdata.Tile{
		{TileID: 10, RA: 0, Dec: 0},
		{TileID: 20, RA: 90, Dec: 30},
	}

	got, err := m.TileIDsToPixels(testNside, catalog, []int64{10, 20}, 2.0)
	if err != nil {
		t.Fatalf("TileIDsToPixels: %v", err)
	}
	want, err := m.TilesToPixels(testNside, catalog, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pixel union mismatch (-want +got):\n%s", diff)
	}
}

func TestTileIDsToPixelsNotFound(t *testing.T) {
	m := newTestMapper()
	catalog := []refdata.Tile{{TileID: 10, RA: 0, Dec: 0}}

	_, err := m.TileIDsToPixels(testNside, catalog, []int64{10, 999, 998, 999}, 2.0)
	var notFound *TileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("TileIDsToPixels with unknown IDs = %v, want TileNotFoundError", err)
	}
	if diff := cmp.Diff([]int64{999, 998}, notFound.IDs); diff != "" {
		t.Errorf("missing IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestPixelsToTiles(t *testing.T) {
	m := newTestMapper()
	tiles := []refdata.Tile{
		{TileID: 1, RA: 0, Dec: 0},
		{TileID: 2, RA: 90, Dec: 0},
	}

	pixNear, err := m.RADecToPix(testNside, []float64{0, 90, 180}, []float64{0, 0, -45})
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.PixelsToTiles(testNside, pixNear[:1], tiles, 2.0)
	if err != nil {
		t.Fatalf("PixelsToTiles: %v", err)
	}
	if diff := cmp.Diff([]int{0}, got); diff != "" {
		t.Errorf("tiles for first pixel (-want +got):\n%s", diff)
	}

	got, err = m.PixelsToTiles(testNside, pixNear[:2], tiles, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 1}, got); diff != "" {
		t.Errorf("tiles for both pixels (-want +got):\n%s", diff)
	}

	got, err = m.PixelsToTiles(testNside, pixNear[2:], tiles, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("tiles for the far pixel = %v, want none", got)
	}
}

func TestResolveTileIDsOrder(t *testing.T) {
	catalog := []refdata.Tile{
		{TileID: 30, RA: 3, Dec: 0},
		{TileID: 10, RA: 1, Dec: 0},
		{TileID: 20, RA: 2, Dec: 0},
	}
	got, err := ResolveTileIDs(catalog, []int64{20, 10})
	if err != nil {
		t.Fatalf("ResolveTileIDs: %v", err)
	}
	// Catalog order, not request order.
	wantIDs := []int64{10, 20}
	if len(got) != len(wantIDs) {
		t.Fatalf("resolved %d tiles, want %d", len(got), len(wantIDs))
	}
	for i := range wantIDs {
		if got[i].TileID != wantIDs[i] {
			t.Errorf("resolved[%d].TileID = %d, want %d", i, got[i].TileID, wantIDs[i])
		}
	}
}

func TestTileRADec(t *testing.T) {
	catalog := []refdata.Tile{{TileID: 42, RA: 150.5, Dec: -12.25}}

	ra, dec, err := TileRADec(catalog, 42)
	if err != nil {
		t.Fatalf("TileRADec(42): %v", err)
	}
	if ra != 150.5 || dec != -12.25 {
		t.Errorf("TileRADec(42) = (%v, %v), want (150.5, -12.25)", ra, dec)
	}

	_, _, err = TileRADec(catalog, 7)
	var notFound *TileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("TileRADec(7) = %v, want TileNotFoundError", err)
	}
	if len(notFound.IDs) != 1 || notFound.IDs[0] != 7 {
		t.Errorf("TileNotFoundError.IDs = %v, want [7]", notFound.IDs)
	}
}
