// Command offsets-plot generates a random offset field and renders its
// magnitude as a heatmap, for eyeballing the correlation structure at
// different exponents and smoothing scales.
package main

import (
	"flag"
	"log"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/footprint.report/internal/offsets"
)

// fieldGrid adapts a Field to plotter.GridXYZ, exposing the vector
// magnitude per cell.
type fieldGrid struct {
	f *offsets.Field
}

func (g fieldGrid) Dims() (c, r int) { return g.f.N, g.f.N }
func (g fieldGrid) X(c int) float64  { return float64(c) }
func (g fieldGrid) Y(r int) float64  { return float64(r) }
func (g fieldGrid) Z(c, r int) float64 {
	dx, dy := g.f.At(r, c)
	return math.Hypot(dx, dy)
}

func main() {
	rms := flag.Float64("rms", 1.0, "Target RMS vector magnitude")
	exponent := flag.Float64("exponent", -1.0, "Power-spectrum exponent")
	n := flag.Int("n", 256, "Grid size (n x n)")
	seed := flag.Uint64("seed", 1, "Random seed")
	smoothing := flag.Float64("smoothing", 0.05, "Gaussian low-pass smoothing scale (0 disables)")
	out := flag.String("out", "offsets.png", "Output image path")
	flag.Parse()

	field, err := offsets.Generate(*rms, *exponent, *n, *seed, *smoothing)
	if err != nil {
		log.Fatalf("generate field: %v", err)
	}
	log.Printf("generated %dx%d field, realized RMS %.6g", field.N, field.N, field.RMS())

	p := plot.New()
	p.Title.Text = "offset field magnitude"
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"

	pal := moreland.SmoothBlueRed().Palette(255)
	p.Add(plotter.NewHeatMap(fieldGrid{field}, pal))

	if err := p.Save(6*vg.Inch, 6*vg.Inch, *out); err != nil {
		log.Fatalf("save plot: %v", err)
	}
	log.Printf("wrote %s", *out)
}
