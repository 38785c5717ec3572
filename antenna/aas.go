// Implements the plane wave phase delay seen by the elements of an array
package antenna

import (
	"math"
	"math/cmplx"

	"github.com/wiless/vlib"
)

// SpeedOfLight in m/s, as used by every wavelength computation of the package.
const SpeedOfLight float64 = 3.0e8

// Wavelength returns the free space wavelength in meters for freqHz.
func Wavelength(freqHz float64) float64 {
	return SpeedOfLight / freqHz
}

// WaveNumber returns k = 2*pi/lambda.
func WaveNumber(wavelength float64) float64 {
	return 2 * math.Pi / wavelength
}

// RelativePhase returns the phase (radians) of a plane wave arriving from direction (theta, phi)
// at an element displaced by pos from the origin, referred to the phase at the origin.
// theta and phi are in radians. wavelength must be positive.
func RelativePhase(pos vlib.Location3D, wavelength, theta, phi float64) float64 {
	k := WaveNumber(wavelength)
	xv := pos.X * math.Sin(theta) * math.Cos(phi)
	yv := pos.Y * math.Sin(theta) * math.Sin(phi)
	zv := pos.Z * math.Cos(theta)
	return k * (xv + yv + zv)
}

// SteeringPhase is the static phase weight that brings an element at pos in phase with the
// origin for a wave from (theta0, phi0), pointing the main beam there.
func SteeringPhase(pos vlib.Location3D, wavelength, theta0, phi0 float64) float64 {
	return -RelativePhase(pos, wavelength, theta0, phi0)
}

// Phasor returns e^(j*phase)
func Phasor(phase float64) complex128 {
	return cmplx.Exp(complex(0.0, phase))
}
