// Command refdata-import builds a reference database from CSV exports of
// the positioner layout, platescale table and tile catalog. Each run is
// tagged with an import batch ID in the import_meta table.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/banshee-data/footprint.report/internal/refdata"
)

func main() {
	dbPath := flag.String("db", "", "Reference database to create or update (required)")
	positionersCSV := flag.String("positioners", "", "Positioner CSV: fiber,positioner,spectro,x,y,z")
	platescaleCSV := flag.String("platescale", "", "Platescale CSV: radius_mm,theta_deg")
	tilesCSV := flag.String("tiles", "", "Tile catalog CSV: tileid,ra,dec,pass,in_desi,program,obsconditions")
	source := flag.String("source", "", "Free-form label describing where the inputs came from")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("-db is required")
	}

	db, err := refdata.Open(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.MigrateUp(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if *positionersCSV != "" {
		pos, err := readPositioners(*positionersCSV)
		if err != nil {
			log.Fatalf("read positioners: %v", err)
		}
		if err := db.InsertPositioners(pos); err != nil {
			log.Fatalf("insert positioners: %v", err)
		}
		log.Printf("imported %d positioners", len(pos))
	}

	if *platescaleCSV != "" {
		samples, err := readPlatescale(*platescaleCSV)
		if err != nil {
			log.Fatalf("read platescale: %v", err)
		}
		if err := db.InsertPlatescale(samples); err != nil {
			log.Fatalf("insert platescale: %v", err)
		}
		log.Printf("imported %d platescale samples", len(samples))
	}

	if *tilesCSV != "" {
		tiles, err := readTiles(*tilesCSV)
		if err != nil {
			log.Fatalf("read tiles: %v", err)
		}
		if err := db.InsertTiles(tiles); err != nil {
			log.Fatalf("insert tiles: %v", err)
		}
		log.Printf("imported %d tiles", len(tiles))
	}

	importID := uuid.NewString()
	if err := db.RecordImport(importID, *source); err != nil {
		log.Fatalf("record import: %v", err)
	}
	log.Printf("import %s complete", importID)
}

// readRows reads a CSV file, skipping the header row, and requires the
// given number of fields per record.
func readRows(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields

	// header
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readPositioners(path string) ([]refdata.Positioner, error) {
	rows, err := readRows(path, 6)
	if err != nil {
		return nil, err
	}
	out := make([]refdata.Positioner, 0, len(rows))
	for i, rec := range rows {
		var p refdata.Positioner
		if p.Fiber, err = strconv.ParseInt(rec[0], 10, 64); err != nil {
			return nil, fmt.Errorf("row %d fiber: %w", i+2, err)
		}
		if p.Positioner, err = strconv.ParseInt(rec[1], 10, 64); err != nil {
			return nil, fmt.Errorf("row %d positioner: %w", i+2, err)
		}
		if p.Spectro, err = strconv.ParseInt(rec[2], 10, 64); err != nil {
			return nil, fmt.Errorf("row %d spectro: %w", i+2, err)
		}
		if p.X, err = strconv.ParseFloat(rec[3], 64); err != nil {
			return nil, fmt.Errorf("row %d x: %w", i+2, err)
		}
		if p.Y, err = strconv.ParseFloat(rec[4], 64); err != nil {
			return nil, fmt.Errorf("row %d y: %w", i+2, err)
		}
		if p.Z, err = strconv.ParseFloat(rec[5], 64); err != nil {
			return nil, fmt.Errorf("row %d z: %w", i+2, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func readPlatescale(path string) ([]refdata.PlatescaleSample, error) {
	rows, err := readRows(path, 2)
	if err != nil {
		return nil, err
	}
	out := make([]refdata.PlatescaleSample, 0, len(rows))
	for i, rec := range rows {
		var s refdata.PlatescaleSample
		if s.RadiusMM, err = strconv.ParseFloat(rec[0], 64); err != nil {
			return nil, fmt.Errorf("row %d radius_mm: %w", i+2, err)
		}
		if s.ThetaDeg, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("row %d theta_deg: %w", i+2, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func readTiles(path string) ([]refdata.Tile, error) {
	rows, err := readRows(path, 7)
	if err != nil {
		return nil, err
	}
	out := make([]refdata.Tile, 0, len(rows))
	for i, rec := range rows {
		var t refdata.Tile
		if t.TileID, err = strconv.ParseInt(rec[0], 10, 64); err != nil {
			return nil, fmt.Errorf("row %d tileid: %w", i+2, err)
		}
		if t.RA, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("row %d ra: %w", i+2, err)
		}
		if t.Dec, err = strconv.ParseFloat(rec[2], 64); err != nil {
			return nil, fmt.Errorf("row %d dec: %w", i+2, err)
		}
		if t.Pass, err = strconv.ParseInt(rec[3], 10, 64); err != nil {
			return nil, fmt.Errorf("row %d pass: %w", i+2, err)
		}
		inDesi, err := strconv.ParseBool(rec[4])
		if err != nil {
			return nil, fmt.Errorf("row %d in_desi: %w", i+2, err)
		}
		t.InDesi = inDesi
		t.Program = rec[5]
		if t.ObsConditions, err = strconv.ParseInt(rec[6], 10, 64); err != nil {
			return nil, fmt.Errorf("row %d obsconditions: %w", i+2, err)
		}
		out = append(out, t)
	}
	return out, nil
}
