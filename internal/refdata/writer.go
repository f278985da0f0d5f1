package refdata

import (
	"fmt"
)

// InsertPositioners writes the positioner table in one transaction.
func (db *DB) InsertPositioners(pos []Positioner) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO positioners (fiber, positioner, spectro, x, y, z) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare positioner insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pos {
		if _, err := stmt.Exec(p.Fiber, p.Positioner, p.Spectro, p.X, p.Y, p.Z); err != nil {
			return fmt.Errorf("failed to insert positioner %d: %w", p.Fiber, err)
		}
	}
	return tx.Commit()
}

// InsertPlatescale writes the platescale samples in one transaction.
func (db *DB) InsertPlatescale(samples []PlatescaleSample) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO platescale (radius_mm, theta_deg) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare platescale insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(s.RadiusMM, s.ThetaDeg); err != nil {
			return fmt.Errorf("failed to insert platescale sample at %v mm: %w", s.RadiusMM, err)
		}
	}
	return tx.Commit()
}

// InsertTiles writes the tile catalog in one transaction.
func (db *DB) InsertTiles(tiles []Tile) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO tiles (tileid, ra, dec, pass, in_desi, program, obsconditions) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare tile insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tiles {
		inDesi := 0
		if t.InDesi {
			inDesi = 1
		}
		if _, err := stmt.Exec(t.TileID, t.RA, t.Dec, t.Pass, inDesi, t.Program, t.ObsConditions); err != nil {
			return fmt.Errorf("failed to insert tile %d: %w", t.TileID, err)
		}
	}
	return tx.Commit()
}

// RecordImport stores one import_meta row identifying an import batch.
func (db *DB) RecordImport(importID, source string) error {
	if _, err := db.Exec(`INSERT INTO import_meta (import_id, source) VALUES (?, ?)`, importID, source); err != nil {
		return fmt.Errorf("failed to record import %s: %w", importID, err)
	}
	return nil
}
