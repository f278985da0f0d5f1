// Package offsets synthesizes correlated 2D random vector fields for
// calibration-offset studies. A field is built in the frequency domain with
// a power-law spectrum and inverse-transformed to real space, so
// neighbouring cells carry correlated offsets rather than white noise.
package offsets

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Defaults for centroid-offset fields.
const (
	centroidExponent  = -1.0
	centroidGridSize  = 256
	centroidSmoothing = 0.05
)

// Field holds the two components of a generated offset field on an n×n
// grid, stored row-major. Values carry the units of the requested RMS.
// A Field is immutable once produced.
type Field struct {
	N      int
	DX, DY []float64
}

// At returns the offset vector at row i, column j.
func (f *Field) At(i, j int) (dx, dy float64) {
	return f.DX[i*f.N+j], f.DY[i*f.N+j]
}

// RMS returns the realized root-mean-square vector magnitude.
func (f *Field) RMS() float64 {
	var sumSq float64
	for i := range f.DX {
		sumSq += f.DX[i]*f.DX[i] + f.DY[i]*f.DY[i]
	}
	return math.Sqrt(sumSq / float64(len(f.DX)))
}

// Generate synthesizes a random vector field with power spectrum
// |k|^exponent on an n×n grid, rescaled so the realized RMS magnitude
// equals rms exactly. The zero-frequency cell is left empty, which removes
// the field's mean. smoothing > 0 applies a frequency-domain Gaussian
// low-pass with var = (n*smoothing)²/2, suppressing structure near the
// grid scale.
//
// Identical (rms, exponent, n, seed, smoothing) yields bit-identical output
// on every platform: all draws come from a PCG stream seeded by seed, and
// the PCG sequence is fixed by the language specification rather than by
// the platform or Go release.
func Generate(rms, exponent float64, n int, seed uint64, smoothing float64) (*Field, error) {
	if n < 2 {
		return nil, fmt.Errorf("grid size must be at least 2, got %d", n)
	}
	if rms <= 0 {
		return nil, fmt.Errorf("rms must be positive, got %v", rms)
	}
	if smoothing < 0 {
		return nil, fmt.Errorf("smoothing must be non-negative, got %v", smoothing)
	}

	src := rand.NewPCG(seed, seed)
	gauss := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	phase := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src}

	var variance float64
	if smoothing > 0 {
		ns := float64(n) * smoothing
		variance = ns * ns / 2.0
	}

	// Row-major spectrum over the standard FFT frequency bins. Cells are
	// visited in a fixed order so the draw sequence is reproducible.
	freq := fftFreq(n)
	spectrum := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k2 := freq[i]*freq[i] + freq[j]*freq[j]
			if k2 == 0 {
				continue
			}
			amp := math.Pow(math.Sqrt(k2), exponent/2.0) * gauss.Rand()
			cell := cmplx.Rect(amp, phase.Rand())
			if smoothing > 0 {
				cell *= complex(math.Exp(-k2*variance)/(2*math.Pi), 0)
			}
			spectrum[i*n+j] = cell
		}
	}

	grid := ifft2(spectrum, n)

	f := &Field{N: n, DX: make([]float64, n*n), DY: make([]float64, n*n)}
	var sumSq float64
	for i, c := range grid {
		f.DX[i] = real(c)
		f.DY[i] = imag(c)
		sumSq += f.DX[i]*f.DX[i] + f.DY[i]*f.DY[i]
	}
	scale := rms / math.Sqrt(sumSq/float64(n*n))
	floats.Scale(scale, f.DX)
	floats.Scale(scale, f.DY)
	return f, nil
}

// GenerateCentroidOffsets generates the standard centroid-offset field: a
// 256×256 grid with a |k|^-1 spectrum and 0.05 smoothing.
func GenerateCentroidOffsets(rms float64, seed uint64) (*Field, error) {
	return Generate(rms, centroidExponent, centroidGridSize, seed, centroidSmoothing)
}

// fftFreq returns the standard FFT sample frequencies for an n-point
// transform in cycles per sample: the non-negative bins first, then the
// negative half.
func fftFreq(n int) []float64 {
	f := make([]float64, n)
	half := (n + 1) / 2
	for i := 0; i < half; i++ {
		f[i] = float64(i) / float64(n)
	}
	for i := half; i < n; i++ {
		f[i] = float64(i-n) / float64(n)
	}
	return f
}

// ifft2 computes the normalized 2D inverse FFT of a row-major n×n
// spectrum. fourier's Sequence is the unnormalized inverse, so the result
// is scaled by 1/n² after both passes.
func ifft2(spectrum []complex128, n int) []complex128 {
	fft := fourier.NewCmplxFFT(n)
	out := make([]complex128, n*n)

	for i := 0; i < n; i++ {
		fft.Sequence(out[i*n:(i+1)*n], spectrum[i*n:(i+1)*n])
	}

	col := make([]complex128, n)
	res := make([]complex128, n)
	norm := complex(float64(n)*float64(n), 0)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			col[i] = out[i*n+j]
		}
		fft.Sequence(res, col)
		for i := 0; i < n; i++ {
			out[i*n+j] = res[i] / norm
		}
	}
	return out
}
