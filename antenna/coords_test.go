package antenna_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wiless/farfield/antenna"
	"github.com/wiless/vlib"
)

func TestSphericalRoundTrip(t *testing.T) {
	cases := []struct{ r, theta, phi float64 }{
		{1, 0.1, 0},
		{999, math.Pi / 4, math.Pi / 3},
		{0.5, math.Pi / 2, -math.Pi / 2},
		{12, 3.0, 5.5},
		{3, 1.2, -7},
	}
	for _, c := range cases {
		x, y, z := antenna.SphericalToCartesian(c.r, c.theta, c.phi)
		r, theta, phi := antenna.CartesianToSpherical(x, y, z)
		assert.InDelta(t, c.r, r, 1e-9)
		assert.InDelta(t, c.theta, theta, 1e-9)
		// phi is only defined mod 2pi
		d := math.Remainder(c.phi-phi, 2*math.Pi)
		assert.InDelta(t, 0, d, 1e-9)
	}
}

func TestCartesianToSphericalOrigin(t *testing.T) {
	r, theta, phi := antenna.CartesianToSpherical(0, 0, 0)
	assert.False(t, math.IsNaN(r) || math.IsNaN(theta) || math.IsNaN(phi))
	assert.InDelta(t, antenna.OriginEps, r, 1e-30)
	assert.InDelta(t, math.Pi/2, theta, 1e-12)
	assert.Equal(t, 0.0, phi)
}

func TestLocalAngles(t *testing.T) {
	p := antenna.FarFieldPoint(0, 0)
	assert.InDelta(t, antenna.FarFieldRadius, p.Z, 1e-9)

	theta, _ := antenna.LocalAngles(p, vlib.Location3D{})
	assert.InDelta(t, 0, theta, 1e-9)

	// an element displaced along x sees boresight slightly tilted towards -x
	theta, phi := antenna.LocalAngles(p, vlib.Location3D{X: 1})
	assert.InDelta(t, math.Atan(1/antenna.FarFieldRadius), theta, 1e-9)
	assert.InDelta(t, math.Pi, math.Abs(phi), 1e-9)
}

func TestDegreeRadian(t *testing.T) {
	assert.InDelta(t, math.Pi, antenna.Radian(180), 1e-15)
	assert.InDelta(t, 90, antenna.Degree(math.Pi/2), 1e-12)
	assert.InDelta(t, 350, antenna.Wrap0To360(-10), 1e-12)
	assert.InDelta(t, 10, antenna.Wrap0To360(370), 1e-12)
}
