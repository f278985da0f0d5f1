package footprint

import (
	"fmt"
	"sort"

	"github.com/banshee-data/footprint.report/internal/focalplane"
	"github.com/banshee-data/footprint.report/internal/refdata"
	"github.com/banshee-data/footprint.report/internal/units"
)

// Pixelizer is the external nested-scheme sky pixelization this package
// orchestrates. Implementations convert between directions and pixel
// indices at a given nside resolution parameter.
type Pixelizer interface {
	// AngToPix returns the nested pixel index containing the direction
	// (theta, phi) in radians, theta being the colatitude.
	AngToPix(nside int64, theta, phi float64) (int64, error)
	// PixToAng returns the center direction of pix as (theta, phi) radians.
	PixToAng(nside, pix int64) (theta, phi float64, err error)
	// QueryDisc returns every pixel overlapping the disc of the given
	// angular radius in radians around the unit vector vec, inclusive of
	// boundary pixels.
	QueryDisc(nside int64, vec [3]float64, radius float64) ([]int64, error)
	// Resolution returns the approximate angular size of one pixel at
	// nside, in radians.
	Resolution(nside int64) (float64, error)
}

// TileNotFoundError reports tile IDs absent from the catalog.
type TileNotFoundError struct {
	IDs []int64
}

func (e *TileNotFoundError) Error() string {
	return fmt.Sprintf("tile IDs not in catalog: %v", e.IDs)
}

// Mapper maps tiles and sky positions onto nested pixels.
type Mapper struct {
	pix     Pixelizer
	queries *Queries
}

// NewMapper returns a Mapper over the given pixelization, sharing queries
// for the coarse spatial passes and the default radius.
func NewMapper(pix Pixelizer, queries *Queries) *Mapper {
	return &Mapper{pix: pix, queries: queries}
}

// RADecToPix returns the nested pixel index for each sky position in
// degrees.
func (m *Mapper) RADecToPix(nside int64, ra, dec []float64) ([]int64, error) {
	if len(ra) != len(dec) {
		return nil, &focalplane.ShapeError{RALen: len(ra), DecLen: len(dec)}
	}
	out := make([]int64, len(ra))
	for i := range ra {
		p, err := m.pix.AngToPix(nside, units.Colatitude(dec[i]), units.DegToRad(ra[i]))
		if err != nil {
			return nil, fmt.Errorf("pixelizing (%v, %v): %w", ra[i], dec[i], err)
		}
		out[i] = p
	}
	return out, nil
}

// TilePixels returns, per tile, the pixels whose disc of radiusDeg around
// the tile center they overlap. radiusDeg <= 0 selects the catalog default.
func (m *Mapper) TilePixels(nside int64, tiles []refdata.Tile, radiusDeg float64) ([][]int64, error) {
	radius, err := m.queries.Radius(radiusDeg)
	if err != nil {
		return nil, err
	}
	out := make([][]int64, len(tiles))
	for i, t := range tiles {
		pix, err := m.pix.QueryDisc(nside, embedPoint(t.RA, t.Dec, i).vec, units.DegToRad(radius))
		if err != nil {
			return nil, fmt.Errorf("disc query for tile %d: %w", t.TileID, err)
		}
		out[i] = pix
	}
	return out, nil
}

// TilesToPixels returns the sorted, de-duplicated union of TilePixels.
func (m *Mapper) TilesToPixels(nside int64, tiles []refdata.Tile, radiusDeg float64) ([]int64, error) {
	perTile, err := m.TilePixels(nside, tiles, radiusDeg)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{})
	union := make([]int64, 0)
	for _, pix := range perTile {
		for _, p := range pix {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				union = append(union, p)
			}
		}
	}
	sort.Slice(union, func(i, j int) bool { return union[i] < union[j] })
	return union, nil
}

// TileIDsToPixels resolves tile IDs against the catalog and returns the
// union of their pixels. Unknown IDs fail with a TileNotFoundError naming
// exactly the missing ones.
func (m *Mapper) TileIDsToPixels(nside int64, catalog []refdata.Tile, tileids []int64, radiusDeg float64) ([]int64, error) {
	tiles, err := ResolveTileIDs(catalog, tileids)
	if err != nil {
		return nil, err
	}
	return m.TilesToPixels(nside, tiles, radiusDeg)
}

// PixelsToTiles returns the ascending indices of tiles whose pixel sets
// intersect pixels. A coarse pass with TilesCoveringPoints at radius plus
// one pixel size bounds the candidates cheaply; each candidate is then
// checked exactly against its own disc query.
func (m *Mapper) PixelsToTiles(nside int64, pixels []int64, tiles []refdata.Tile, radiusDeg float64) ([]int, error) {
	radius, err := m.queries.Radius(radiusDeg)
	if err != nil {
		return nil, err
	}
	res, err := m.pix.Resolution(nside)
	if err != nil {
		return nil, err
	}

	ra := make([]float64, len(pixels))
	dec := make([]float64, len(pixels))
	for i, p := range pixels {
		theta, phi, err := m.pix.PixToAng(nside, p)
		if err != nil {
			return nil, fmt.Errorf("center of pixel %d: %w", p, err)
		}
		ra[i] = units.RadToDeg(phi)
		dec[i] = 90.0 - units.RadToDeg(theta)
	}

	coarse, err := m.queries.TilesCoveringPoints(tiles, ra, dec, radius+units.RadToDeg(res))
	if err != nil {
		return nil, err
	}
	candidates := make([]int, 0)
	seen := make(map[int]struct{})
	for _, set := range coarse {
		for _, ti := range set {
			if _, ok := seen[ti]; !ok {
				seen[ti] = struct{}{}
				candidates = append(candidates, ti)
			}
		}
	}

	wanted := make(map[int64]struct{}, len(pixels))
	for _, p := range pixels {
		wanted[p] = struct{}{}
	}

	matched := make([]int, 0, len(candidates))
	for _, ti := range candidates {
		t := tiles[ti]
		pix, err := m.pix.QueryDisc(nside, embedPoint(t.RA, t.Dec, ti).vec, units.DegToRad(radius))
		if err != nil {
			return nil, fmt.Errorf("disc query for tile %d: %w", t.TileID, err)
		}
		for _, p := range pix {
			if _, ok := wanted[p]; ok {
				matched = append(matched, ti)
				break
			}
		}
	}
	sort.Ints(matched)
	return matched, nil
}

// ResolveTileIDs returns the catalog rows matching tileids, in catalog
// order. Unknown IDs produce a TileNotFoundError listing exactly the
// missing ones.
func ResolveTileIDs(catalog []refdata.Tile, tileids []int64) ([]refdata.Tile, error) {
	want := make(map[int64]bool, len(tileids))
	for _, id := range tileids {
		want[id] = false
	}
	matched := make([]refdata.Tile, 0, len(tileids))
	for _, t := range catalog {
		if _, ok := want[t.TileID]; ok && !want[t.TileID] {
			want[t.TileID] = true
			matched = append(matched, t)
		}
	}
	var missing []int64
	seen := make(map[int64]struct{})
	for _, id := range tileids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if !want[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &TileNotFoundError{IDs: missing}
	}
	return matched, nil
}

// TileRADec returns the center (ra, dec) in degrees for tileid. An unknown
// ID is a TileNotFoundError, never a silent zero position.
func TileRADec(catalog []refdata.Tile, tileid int64) (ra, dec float64, err error) {
	for _, t := range catalog {
		if t.TileID == tileid {
			return t.RA, t.Dec, nil
		}
	}
	return 0, 0, &TileNotFoundError{IDs: []int64{tileid}}
}
