// Package focalplane models the geometry between sky coordinates (RA/Dec
// in degrees) and physical positions on the telescope focal plane (mm).
package focalplane

import "math"

// Plate-scale polynomial coefficients, highest order first.
var plateCoeff = [4]float64{8.297e5, -1750.0, 1.394e4, 0.0}

// Newton-Raphson parameters for PlateAngles.
const (
	newtonStep = 1e-5 // finite-difference step, radians
	newtonTol  = 1e-8 // residual tolerance, mm
)

// PlateDist returns the radial distance on the plate in mm for an angular
// separation theta from the boresight in radians. The cubic fit is
// evaluated by Horner's rule.
func PlateDist(theta float64) float64 {
	radius := 0.0
	for _, p := range plateCoeff {
		radius = theta*radius + p
	}
	return radius
}

// PlateDists is the elementwise form of PlateDist.
func PlateDists(theta []float64) []float64 {
	out := make([]float64, len(theta))
	for i, t := range theta {
		out[i] = PlateDist(t)
	}
	return out
}

// PlateAngles inverts PlateDists by Newton-Raphson with a finite-difference
// derivative. All elements iterate together until the worst residual drops
// below newtonTol, so already-converged elements keep receiving vanishingly
// small updates. Do not converge elements individually: the shared loop
// keeps iteration counts reproducible.
func PlateAngles(radius []float64) []float64 {
	guess := make([]float64, len(radius))
	resid := make([]float64, len(radius))
	for i, r := range radius {
		resid[i] = PlateDist(guess[i]) - r
	}
	for anyExceeds(resid, newtonTol) {
		for i := range guess {
			derivative := (PlateDist(guess[i]+newtonStep) - PlateDist(guess[i])) / newtonStep
			guess[i] -= resid[i] / derivative
		}
		for i, r := range radius {
			resid[i] = PlateDist(guess[i]) - r
		}
	}
	return guess
}

// PlateAngle is the scalar form of PlateAngles.
func PlateAngle(radius float64) float64 {
	return PlateAngles([]float64{radius})[0]
}

func anyExceeds(v []float64, tol float64) bool {
	for _, x := range v {
		if math.Abs(x) > tol {
			return true
		}
	}
	return false
}
