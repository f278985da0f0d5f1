// Package refdata loads the read-only reference tables behind the focal
// plane model: the positioner layout, the platescale samples and the tile
// catalog. Tables live in a SQLite database whose location is resolved from
// the SKYMODEL_DB environment variable; each table is read into an
// immutable in-memory slice and the geometry code never touches the
// database again.
package refdata

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// EnvVar names the environment variable holding the reference database path.
const EnvVar = "SKYMODEL_DB"

// Positioner is one fiber positioner at a fixed location on the focal
// plane. X, Y and Z are in mm.
type Positioner struct {
	Fiber      int64
	Positioner int64
	Spectro    int64
	X, Y, Z    float64
}

// PlatescaleSample pairs a focal-plane radius in mm with the matching
// angular separation from the boresight in degrees.
type PlatescaleSample struct {
	RadiusMM float64
	ThetaDeg float64
}

// Tile is one catalog pointing. TileID is the unique identity; RA and Dec
// are degrees. ObsConditions is the observing-conditions bitmask carried
// through from the catalog.
type Tile struct {
	TileID        int64
	RA, Dec       float64
	Pass          int64
	InDesi        bool
	Program       string
	ObsConditions int64
}

// DB wraps the reference database connection.
type DB struct {
	*sql.DB
}

// Open opens the reference database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference database %s: %w", path, err)
	}
	return &DB{db}, nil
}

// OpenEnv opens the reference database at the path named by SKYMODEL_DB.
func OpenEnv() (*DB, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, fmt.Errorf("%s is not set; it must point at the reference database", EnvVar)
	}
	return Open(path)
}

// Positioners returns the positioner table ordered by fiber number.
func (db *DB) Positioners() ([]Positioner, error) {
	rows, err := db.Query(`SELECT fiber, positioner, spectro, x, y, z FROM positioners ORDER BY fiber`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positioners: %w", err)
	}
	defer rows.Close()

	var out []Positioner
	for rows.Next() {
		var p Positioner
		if err := rows.Scan(&p.Fiber, &p.Positioner, &p.Spectro, &p.X, &p.Y, &p.Z); err != nil {
			return nil, fmt.Errorf("failed to scan positioner row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Platescale returns the platescale samples in ascending radius order, the
// order interpolation expects.
func (db *DB) Platescale() ([]PlatescaleSample, error) {
	rows, err := db.Query(`SELECT radius_mm, theta_deg FROM platescale ORDER BY radius_mm`)
	if err != nil {
		return nil, fmt.Errorf("failed to query platescale: %w", err)
	}
	defer rows.Close()

	var out []PlatescaleSample
	for rows.Next() {
		var s PlatescaleSample
		if err := rows.Scan(&s.RadiusMM, &s.ThetaDeg); err != nil {
			return nil, fmt.Errorf("failed to scan platescale row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Tiles returns the tile catalog ordered by tile ID.
func (db *DB) Tiles() ([]Tile, error) {
	rows, err := db.Query(`SELECT tileid, ra, dec, pass, in_desi, program, obsconditions FROM tiles ORDER BY tileid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tiles: %w", err)
	}
	defer rows.Close()

	var out []Tile
	for rows.Next() {
		var t Tile
		var inDesi int64
		if err := rows.Scan(&t.TileID, &t.RA, &t.Dec, &t.Pass, &inDesi, &t.Program, &t.ObsConditions); err != nil {
			return nil, fmt.Errorf("failed to scan tile row: %w", err)
		}
		t.InDesi = inDesi != 0
		out = append(out, t)
	}
	return out, rows.Err()
}
