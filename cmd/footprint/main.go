// Command footprint answers coverage queries against the tile catalog:
// for each query position it reports whether the position falls inside the
// observed footprint and which tile center is nearest.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/banshee-data/footprint.report/internal/config"
	"github.com/banshee-data/footprint.report/internal/focalplane"
	"github.com/banshee-data/footprint.report/internal/footprint"
	"github.com/banshee-data/footprint.report/internal/refdata"
	"github.com/banshee-data/footprint.report/internal/version"
)

func main() {
	configPath := flag.String("config", "", "Optional JSON tuning file")
	dbPath := flag.String("db", "", "Reference database path (default: $SKYMODEL_DB)")
	raList := flag.String("ra", "", "Comma-separated RA values in degrees")
	decList := flag.String("dec", "", "Comma-separated Dec values in degrees")
	radius := flag.Float64("radius", 0, "Query radius in degrees (0 = derive from the positioner table)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	ra, err := parseFloats(*raList)
	if err != nil {
		log.Fatalf("parse -ra: %v", err)
	}
	dec, err := parseFloats(*decList)
	if err != nil {
		log.Fatalf("parse -dec: %v", err)
	}
	if len(ra) == 0 {
		log.Fatal("no query positions; pass -ra and -dec")
	}

	path := *dbPath
	if path == "" {
		path = cfg.GetDatabasePath()
	}
	var db *refdata.DB
	if path == "" {
		db, err = refdata.OpenEnv()
	} else {
		db, err = refdata.Open(path)
	}
	if err != nil {
		log.Fatalf("open reference database: %v", err)
	}
	defer db.Close()

	tiles, err := db.Tiles()
	if err != nil {
		log.Fatalf("load tile catalog: %v", err)
	}

	queries := footprint.NewQueries(focalplane.NewTileRadius(db))
	r := *radius
	if r <= 0 {
		r = cfg.GetTileRadiusDeg()
	}
	covered, nearest, err := queries.IsInFootprint(tiles, ra, dec, r)
	if err != nil {
		log.Fatalf("footprint query: %v", err)
	}

	fmt.Println("ra,dec,covered,nearest_tileid")
	for i := range ra {
		tileID := int64(-1)
		if nearest[i] >= 0 {
			tileID = tiles[nearest[i]].TileID
		}
		fmt.Printf("%g,%g,%t,%d\n", ra[i], dec[i], covered[i], tileID)
	}
}

func parseFloats(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
