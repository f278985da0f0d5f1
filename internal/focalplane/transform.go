package focalplane

import (
	"fmt"
	"math"

	"github.com/banshee-data/footprint.report/internal/units"
)

// Transform converts between sky coordinates and focal-plane positions for
// the current telescope pointing. The pointing is replaced wholesale by
// SetTelePointing, never partially updated. The zero Transform points at
// (0, 0).
type Transform struct {
	ra, dec float64 // degrees
}

// NewTransform returns a Transform pointing at (ra, dec) degrees.
func NewTransform(ra, dec float64) (*Transform, error) {
	t := &Transform{}
	if err := t.SetTelePointing(ra, dec); err != nil {
		return nil, err
	}
	return t, nil
}

// SetTelePointing validates and replaces the telescope pointing, in degrees.
func (t *Transform) SetTelePointing(ra, dec float64) error {
	if err := CheckRADec([]float64{ra}, []float64{dec}); err != nil {
		return err
	}
	t.ra = ra
	t.dec = dec
	return nil
}

// Pointing returns the current pointing in degrees.
func (t *Transform) Pointing() (ra, dec float64) {
	return t.ra, t.dec
}

// RADecToXY converts sky positions in degrees to focal-plane (x, y) in mm
// for the current pointing. The object vector is rotated so the pointing
// lands on the polar axis (an azimuthal rotation followed by a polar tilt);
// the rotated vector's planar magnitude is the sine of the angular
// separation, which PlateDist maps to a plate radius. An object at the
// boresight comes out within 1e-6 mm of (0, 0).
func (t *Transform) RADecToXY(ra, dec []float64) (x, y []float64, err error) {
	if err := CheckRADec(ra, dec); err != nil {
		return nil, nil, err
	}

	tileTheta := units.Colatitude(t.dec)
	tilePhi := units.DegToRad(t.ra)
	tHat0 := math.Sin(tileTheta) * math.Cos(tilePhi)
	tHat1 := math.Sin(tileTheta) * math.Sin(tilePhi)
	tHat2 := math.Cos(tileTheta)

	// Angles of the pointing's own unit vector drive both rotations. The
	// 1e-12 keeps sinTheta nonzero when the pointing sits at a pole; it
	// also keeps the x/theta, y/theta ratios finite at the boresight.
	cosTheta := tHat2
	sinTheta := math.Sqrt(1.0-cosTheta*cosTheta) + 1e-12
	cosPhi := tHat0 / sinTheta
	sinPhi := tHat1 / sinTheta

	x = make([]float64, len(ra))
	y = make([]float64, len(ra))
	for i := range ra {
		objTheta := units.Colatitude(dec[i])
		objPhi := units.DegToRad(ra[i])
		oHat0 := math.Sin(objTheta) * math.Cos(objPhi)
		oHat1 := math.Sin(objTheta) * math.Sin(objPhi)
		oHat2 := math.Cos(objTheta)

		// Rotation about z by pi/2-phi: cos(pi/2-phi) = sin(phi),
		// sin(pi/2-phi) = cos(phi).
		nHat0 := sinPhi*oHat0 - cosPhi*oHat1
		nHat1 := cosPhi*oHat0 + sinPhi*oHat1
		nHat2 := oHat2

		// Rotation about x by theta.
		nnHat0 := nHat0
		nnHat1 := cosTheta*nHat1 - sinTheta*nHat2

		theta := math.Sqrt(nnHat0*nnHat0 + nnHat1*nnHat1)
		radius := PlateDist(theta)
		x[i] = radius * nnHat0 / theta
		y[i] = radius * nnHat1 / theta
	}
	return x, y, nil
}

// XYToRADec converts focal-plane (x, y) in mm back to sky positions in
// degrees for the current pointing. It applies the same rotation
// decomposition as RADecToXY in reverse order, with PlateAngle recovering
// the angular separation from the plate radius.
func (t *Transform) XYToRADec(x, y []float64) (ra, dec []float64, err error) {
	if len(x) != len(y) {
		return nil, nil, &ShapeError{RALen: len(x), DecLen: len(y)}
	}

	tileTheta := units.Colatitude(t.dec)
	tilePhi := units.DegToRad(t.ra)
	tHat0 := math.Sin(tileTheta) * math.Cos(tilePhi)
	tHat1 := math.Sin(tileTheta) * math.Sin(tilePhi)
	tHat2 := math.Cos(tileTheta)

	cosTheta := tHat2
	sinTheta := math.Sqrt(1.0-cosTheta*cosTheta) + 1e-10
	cosPhi := tHat0 / sinTheta
	sinPhi := tHat1 / sinTheta

	ra = make([]float64, len(x))
	dec = make([]float64, len(x))
	for i := range x {
		radius := math.Hypot(x[i], y[i])
		objTheta := PlateAngle(radius)
		objPhi := math.Atan2(y[i], x[i])
		oHat0 := math.Sin(objTheta) * math.Cos(objPhi)
		oHat1 := math.Sin(objTheta) * math.Sin(objPhi)
		oHat2 := math.Cos(objTheta)

		// Rotation about x by -theta.
		nHat0 := oHat0
		nHat1 := cosTheta*oHat1 + sinTheta*oHat2
		nHat2 := -sinTheta*oHat1 + cosTheta*oHat2

		// Rotation about z by -(pi/2-phi).
		nnHat0 := sinPhi*nHat0 + cosPhi*nHat1
		nnHat1 := -cosPhi*nHat0 + sinPhi*nHat1
		nnHat2 := nHat2

		dec[i] = 90.0 - units.RadToDeg(math.Acos(nnHat2))
		// Rounding can leave the first wrap at exactly 360 (a negative
		// angle within one ulp of zero); the second wrap clears it. Both
		// passes are required.
		raDeg := wrap360(units.RadToDeg(math.Atan2(nnHat1, nnHat0)))
		ra[i] = wrap360(raDeg)
	}

	if err := CheckRADec(ra, dec); err != nil {
		return nil, nil, err
	}
	return ra, dec, nil
}

// RADecToPos reports which positioners cover each sky position. The
// positioner-coverage query is part of the contract but is not realized;
// every call fails with ErrUnimplemented rather than returning an empty
// result.
func (t *Transform) RADecToPos(ra, dec []float64) ([][]int64, error) {
	return nil, fmt.Errorf("radec2pos: %w", ErrUnimplemented)
}

// wrap360 maps an angle in degrees onto [0, 360) with a floored modulo.
func wrap360(deg float64) float64 {
	m := math.Mod(deg, 360.0)
	if m < 0 {
		m += 360.0
	}
	return m
}
