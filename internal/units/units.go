// Package units provides shared angle conversions for the focal-plane and
// footprint code.
package units

import "math"

// Conversion factors between degrees and radians.
const (
	DegPerRad = 180.0 / math.Pi
	RadPerDeg = math.Pi / 180.0
)

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * RadPerDeg }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * DegPerRad }

// Colatitude returns the polar angle in radians for a declination in degrees.
func Colatitude(decDeg float64) float64 { return DegToRad(90.0 - decDeg) }

// ChordForAngle returns the straight-line distance between two points on the
// unit sphere separated by the given angle in radians: 2*sin(angle/2).
func ChordForAngle(rad float64) float64 { return 2.0 * math.Sin(rad/2.0) }
