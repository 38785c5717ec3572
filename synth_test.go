package farfield_test

import (
	"context"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wiless/farfield"
	"github.com/wiless/farfield/antenna"
	"github.com/wiless/farfield/deployment"
)

const freq = 14e9

func TestZeroAmplitudeLeavesSeed(t *testing.T) {
	el := deployment.NewElement(0.01, -0.02, 0)
	el.Amplitude = 0
	for _, p := range []antenna.ElementPattern{antenna.Isotropic{}, antenna.NewHorn()} {
		g := farfield.ComputeElementField(el, freq, p)
		require.NoError(t, g.Validate())
		for phi := range g {
			for theta := range g[phi] {
				assert.InDelta(t, farfield.FieldSeed, g[phi][theta], 1e-24)
			}
		}
	}
}

func TestIsotropicAtOriginIsUnity(t *testing.T) {
	g := farfield.ComputeElementField(deployment.NewElement(0, 0, 0), freq, antenna.Isotropic{})
	for phi := range g {
		for theta := range g[phi] {
			assert.InDelta(t, 1, g.At(phi, theta), 1e-8)
		}
	}
}

func TestTwoElementBroadside(t *testing.T) {
	lambda := antenna.Wavelength(freq)
	arr, err := deployment.GenerateLinearArray(2, lambda/2)
	require.NoError(t, err)

	af, err := farfield.ComputeArrayFactor(arr, freq)
	require.NoError(t, err)
	for phi := 0; phi < farfield.NPhi; phi++ {
		assert.InDelta(t, 2, af.At(phi, 0), 1e-8)
	}
	peak, _, theta := farfield.Peak(af)
	assert.InDelta(t, 2, peak, 1e-8)
	assert.Equal(t, 0, theta)

	// endfire along x the two half wavelength spaced elements cancel
	assert.True(t, af.At(0, 89) < 0.1)
}

func TestElementFieldRepresentation(t *testing.T) {
	el := deployment.Element{Amplitude: 1, PhaseWeight: math.Pi / 3}
	el.Location.X = 0.004

	c := farfield.ComputeElementComplex(el, freq, antenna.NewHorn())
	g := farfield.ComputeElementField(el, freq, antenna.NewHorn())
	assert.Equal(t, real(c[10][20]), g[10][20])

	iso := farfield.ComputeElementField(el, freq, antenna.Isotropic{})
	ci := farfield.ComputeElementComplex(el, freq, antenna.Isotropic{})
	assert.InDelta(t, cmplx.Abs(ci[10][20]), iso[10][20], 1e-15)
}

func TestElementFieldIsPure(t *testing.T) {
	job := farfield.Job{FreqHz: freq, Pattern: *antenna.NewPatternSetting(antenna.PatchPattern).AddParam("Er", 3.66).AddParam("H", 0.101e-3)}
	el := deployment.NewElement(0.01, 0.005, 0)
	a, err := farfield.ElementField(job, el)
	require.NoError(t, err)
	b, err := farfield.ElementField(job, el)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = farfield.ElementField(farfield.Job{FreqHz: 0}, el)
	assert.ErrorIs(t, err, antenna.ErrInvalidFrequency)
}

func TestMonolithicMatchesPerElement(t *testing.T) {
	lambda := antenna.Wavelength(freq)
	arr, err := deployment.GenerateRectangularArray(3, 2, 0.6*lambda)
	require.NoError(t, err)
	arr = arr.Steer(lambda, 20, 45)

	for _, p := range []antenna.ElementPattern{antenna.NewHorn(), antenna.Patch{PatchGeometry: antenna.PatchGeometry{W: 7.02e-3, L: 5.58e-3, H: 0.101e-3, Er: 3.66}, FreqHz: freq}} {
		mono, err := farfield.SynthesizeArray(arr, freq, p)
		require.NoError(t, err)

		grids := make([]farfield.FieldGrid, len(arr))
		for i, el := range arr {
			grids[i] = farfield.ComputeElementField(el, freq, p)
		}
		sum, err := farfield.SumFields(grids)
		require.NoError(t, err)

		for phi := range mono {
			for theta := range mono[phi] {
				// the per element path carries one seed per grid
				assert.InDelta(t, mono[phi][theta], sum[phi][theta], 1e-7)
			}
		}
	}
}

func TestSteeredPeakMoves(t *testing.T) {
	lambda := antenna.Wavelength(freq)
	arr, err := deployment.GenerateRectangularArray(4, 4, lambda/2)
	require.NoError(t, err)

	af, err := farfield.ComputeArrayFactor(arr.Steer(lambda, 30, 0), freq)
	require.NoError(t, err)
	peak, phi, theta := farfield.Peak(af)
	assert.InDelta(t, 16, peak, 1e-6)
	assert.Equal(t, 30, theta)
	assert.Equal(t, 0, phi)
}

func TestSynthesizeEmptyArray(t *testing.T) {
	_, err := farfield.ComputeArrayFactor(nil, freq)
	assert.ErrorIs(t, err, farfield.ErrEmptyArray)
}

type serialExecutor struct{ calls int }

func (s *serialExecutor) Run(_ context.Context, job farfield.Job, arr deployment.ElementArray) ([]farfield.FieldGrid, error) {
	s.calls++
	result := make([]farfield.FieldGrid, len(arr))
	for i, el := range arr {
		g, err := farfield.ElementField(job, el)
		if err != nil {
			return nil, err
		}
		result[i] = g
	}
	return result, nil
}

func TestComputeArrayFieldRouting(t *testing.T) {
	lambda := antenna.Wavelength(freq)
	arr, err := deployment.GenerateLinearArray(3, lambda/2)
	require.NoError(t, err)
	exec := new(serialExecutor)

	iso := farfield.Job{FreqHz: freq}
	g, err := farfield.ComputeArrayField(context.Background(), exec, iso, arr)
	require.NoError(t, err)
	assert.Equal(t, 0, exec.calls, "magnitude patterns are not fanned out")
	assert.InDelta(t, 3, g.At(0, 0), 1e-8)

	horn := farfield.Job{FreqHz: freq, Pattern: antenna.PatternSetting{Type: antenna.HornPattern}}
	g, err = farfield.ComputeArrayField(context.Background(), exec, horn, arr)
	require.NoError(t, err)
	assert.Equal(t, 1, exec.calls)
	mono, _ := farfield.SynthesizeArray(arr, freq, antenna.NewHorn())
	assert.InDelta(t, mono.At(7, 7), g.At(7, 7), 1e-7)

	_, err = farfield.ComputeArrayField(context.Background(), exec, horn, nil)
	assert.ErrorIs(t, err, farfield.ErrEmptyArray)
}

func TestJobAdditive(t *testing.T) {
	assert.ErrorIs(t, farfield.Job{FreqHz: freq}.Additive(), farfield.ErrNotAdditive)
	assert.NoError(t, farfield.Job{FreqHz: freq, Pattern: antenna.PatternSetting{Type: antenna.HornPattern}}.Additive())
	assert.NoError(t, farfield.Job{Pattern: antenna.PatternSetting{Type: antenna.PatchPattern}}.Additive())
}
