package focalplane

import (
	"errors"
	"fmt"
)

// ErrUnimplemented marks operations that belong to the interface contract
// but are intentionally not realized. Callers get it wrapped with the
// operation name; test with errors.Is.
var ErrUnimplemented = errors.New("operation not implemented")

// CoordinateError reports an RA or Dec value outside its valid range.
// Index is the element's position in the input slice.
type CoordinateError struct {
	Field string // "ra" or "dec"
	Value float64
	Index int
}

func (e *CoordinateError) Error() string {
	if e.Field == "ra" {
		return fmt.Sprintf("invalid coordinate: ra[%d] = %v, must satisfy 0 <= ra < 360", e.Index, e.Value)
	}
	return fmt.Sprintf("invalid coordinate: dec[%d] = %v, must satisfy -90 <= dec <= 90", e.Index, e.Value)
}

// ShapeError reports paired coordinate slices whose lengths do not match.
// The spatial queries share this type.
type ShapeError struct {
	RALen, DecLen int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape mismatch: ra has %d elements, dec has %d; equal-length flat slices required", e.RALen, e.DecLen)
}

// CheckRADec validates paired RA/Dec slices elementwise before any
// transform work. RA must satisfy 0 <= ra < 360 and Dec -90 <= dec <= 90.
func CheckRADec(ra, dec []float64) error {
	if len(ra) != len(dec) {
		return &ShapeError{RALen: len(ra), DecLen: len(dec)}
	}
	for i, r := range ra {
		if r < 0 || r >= 360 {
			return &CoordinateError{Field: "ra", Value: r, Index: i}
		}
	}
	for i, d := range dec {
		if d < -90 || d > 90 {
			return &CoordinateError{Field: "dec", Value: d, Index: i}
		}
	}
	return nil
}
