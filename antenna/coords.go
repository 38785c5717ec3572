package antenna

import (
	"math"

	"github.com/wiless/vlib"
)

// FarFieldRadius is the radius (in the array frame units) at which far-field points are placed
// before local element angles are re-derived.
const FarFieldRadius = 999.0

// OriginEps is added to the radius in CartesianToSpherical so that the origin maps to a finite triple.
const OriginEps = 1e-15

// SphericalToCartesian converts (r, theta, phi) in radians to cartesian coordinates.
// theta is measured from +z, phi from +x in the xy-plane.
func SphericalToCartesian(r, theta, phi float64) (x, y, z float64) {
	x = r * math.Cos(phi) * math.Sin(theta)
	y = r * math.Sin(phi) * math.Sin(theta)
	z = r * math.Cos(theta)
	return x, y, z
}

// CartesianToSpherical is the inverse of SphericalToCartesian. It never fails, at the origin it
// returns (OriginEps, pi/2, 0).
func CartesianToSpherical(x, y, z float64) (r, theta, phi float64) {
	r = math.Sqrt(x*x+y*y+z*z) + OriginEps
	theta = math.Acos(z / r)
	phi = math.Atan2(y, x)
	return r, theta, phi
}

// FarFieldPoint returns the point at FarFieldRadius in direction (theta, phi), radians.
func FarFieldPoint(theta, phi float64) vlib.Location3D {
	x, y, z := SphericalToCartesian(FarFieldRadius, theta, phi)
	return vlib.Location3D{X: x, Y: y, Z: z}
}

// LocalAngles translates point by -origin and returns the spherical angles of the result.
func LocalAngles(point, origin vlib.Location3D) (theta, phi float64) {
	_, theta, phi = CartesianToSpherical(point.X-origin.X, point.Y-origin.Y, point.Z-origin.Z)
	return theta, phi
}

func Radian(degree float64) float64 {
	return degree * math.Pi / 180.0
}

func Degree(radian float64) float64 {
	return radian * 180.0 / math.Pi
}

// Wrap0To360 wraps the input angle to [0,360)
func Wrap0To360(degree float64) float64 {
	degree = math.Mod(degree, 360)
	if degree < 0 {
		degree += 360
	}
	return degree
}
