package antenna_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wiless/farfield/antenna"
	"github.com/wiless/vlib"
)

func TestDesignPatch14GHz(t *testing.T) {
	g, err := antenna.DesignPatch(3.66, 0.101e-3, 14e9)
	require.NoError(t, err)

	// lambda/2 patch at 14GHz, lambda ~ 21.4mm in air
	assert.True(t, g.W > 1e-3 && g.W < 10e-3, "W=%v", g.W)
	assert.True(t, g.L > 1e-3 && g.L < 10e-3, "L=%v", g.L)
	assert.InDelta(t, 7.02e-3, g.W, 0.05e-3)
	assert.InDelta(t, 5.58e-3, g.L, 0.05e-3)
	assert.Equal(t, 0.101e-3, g.H)
	assert.Equal(t, 3.66, g.Er)
}

func TestDesignPatchRejectsBadInput(t *testing.T) {
	_, err := antenna.DesignPatch(3.66, 0.101e-3, 0)
	assert.ErrorIs(t, err, antenna.ErrInvalidFrequency)
	_, err = antenna.DesignPatch(3.66, 0, 14e9)
	assert.ErrorIs(t, err, antenna.ErrInvalidSubstrate)
	_, err = antenna.DesignPatch(0.5, 1e-3, 14e9)
	assert.ErrorIs(t, err, antenna.ErrInvalidSubstrate)
}

func TestEffectivePermittivityBounds(t *testing.T) {
	ereff := antenna.EffectivePermittivity(3.66, 0.101e-3, 7e-3)
	assert.True(t, ereff > 1 && ereff < 3.66)
	assert.True(t, antenna.FringeExtension(ereff, 7e-3, 0.101e-3) > 0)
}

func testPatch(t *testing.T) antenna.PatchGeometry {
	g, err := antenna.DesignPatch(3.66, 0.101e-3, 14e9)
	require.NoError(t, err)
	return g
}

func TestPatchFunctionBehindGroundPlane(t *testing.T) {
	g := testPatch(t)
	for theta := 90.001; theta <= 180; theta += 7.3 {
		for phi := 0.0; phi < 360; phi += 45 {
			assert.Equal(t, 0.0, antenna.PatchFunction(theta, phi, 14e9, g))
		}
	}
}

func TestPatchFunctionPeakNearUnity(t *testing.T) {
	g := testPatch(t)
	peak := antenna.PatchFunction(0, 0, 14e9, g)
	assert.InDelta(t, 1, peak, 0.01)

	fields := antenna.PatchFields(360, 90, 14e9, g)
	for phi := range fields {
		for theta := range fields[phi] {
			v := fields[phi][theta]
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "phi=%d theta=%d", phi, theta)
			assert.True(t, math.Abs(v) <= peak+1e-6, "phi=%d theta=%d v=%v", phi, theta, v)
		}
	}
}

func TestPatchFunctionRollsOffAtEdge(t *testing.T) {
	g := testPatch(t)
	assert.True(t, math.Abs(antenna.PatchFunction(89.9, 90, 14e9, g)) < 0.01)
	assert.InDelta(t, 1, antenna.EdgeRollOff(0), 1e-3)
	assert.True(t, antenna.EdgeRollOff(90) < 1e-3)
}

func TestPatchPatternUsesLocalFrame(t *testing.T) {
	g := testPatch(t)
	p := antenna.Patch{PatchGeometry: g, FreqHz: 14e9}
	assert.Equal(t, antenna.RealPart, p.Representation())
	d := antenna.DirectionDeg(20, 30)
	assert.InDelta(t, antenna.PatchFunction(20, 30, 14e9, g), p.Gain(d, vlib.Location3D{}), 1e-9)
	assert.Equal(t, 0.0, p.Gain(antenna.DirectionDeg(120, 30), vlib.Location3D{X: 0.01}))
}
