package l200geom

import "math"

// ToCartesian converts a position from the internal left-handed cylindrical
// convention to the right-handed Cartesian GDML frame:
//
//	X = r * cos(phi)
//	Y = -r * sin(phi)
//	Z = z + z0
//
// phi is given in degrees, measured clockwise from the warm-north reference
// direction (string 11); the negated Y term performs the left-handed to
// right-handed flip. z is measured from the top face of the top plate and
// grows upward; z0 shifts it into the global frame without inverting the
// axis.
//
// HPGe strings, the top assembly and the calibration hardware are specified
// in the internal convention and must go through this function. The fiber
// modules are specified in output coordinates already and must not.
func ToCartesian(phiDeg, r, z, z0 float64) (x, y, zOut float64) {
	phi := phiDeg * math.Pi / 180
	return r * math.Cos(phi), -r * math.Sin(phi), z + z0
}
