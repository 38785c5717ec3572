package farfield

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/farfield/antenna"
	"github.com/wiless/farfield/deployment"
)

// direction of the grid cell (phi, theta) in integer degree
func cellDirection(phi, theta int) antenna.Direction {
	return antenna.DirectionDeg(float64(theta), float64(phi))
}

// contribution returns gain*amplitude*e^j(phase+phaseWeight) of el for dir, 0 when the pattern
// gives no gain there.
func contribution(el deployment.Element, wavelength float64, pattern antenna.ElementPattern, dir antenna.Direction) complex128 {
	gain := pattern.Gain(dir, el.Location)
	if gain == 0 {
		return 0
	}
	phase := antenna.RelativePhase(el.Location, wavelength, dir.Theta, dir.Phi)
	return complex(gain*el.Amplitude, 0) * antenna.Phasor(phase+el.PhaseWeight)
}

// ComputeElementComplex returns the seeded complex field of a single element over the sampling grid.
func ComputeElementComplex(el deployment.Element, freqHz float64, pattern antenna.ElementPattern) ComplexGrid {
	wavelength := antenna.Wavelength(freqHz)
	g := NewComplexGrid()
	for theta := 0; theta < NTheta; theta++ {
		for phi := 0; phi < NPhi; phi++ {
			g[phi][theta] = complex(FieldSeed, 0) + contribution(el, wavelength, pattern, cellDirection(phi, theta))
		}
	}
	return g
}

// ComputeElementField returns the field of a single element over the sampling grid, reduced to
// the representation of its pattern (magnitude for isotropic array factor studies, real part for
// horn and patch studies). It is a pure function of its inputs.
func ComputeElementField(el deployment.Element, freqHz float64, pattern antenna.ElementPattern) FieldGrid {
	return ComputeElementComplex(el, freqHz, pattern).Reduce(pattern.Representation())
}

// ElementField builds the pattern described by job and computes the grid of el.
func ElementField(job Job, el deployment.Element) (FieldGrid, error) {
	pattern, err := job.NewPattern()
	if err != nil {
		return nil, err
	}
	return ComputeElementField(el, job.FreqHz, pattern), nil
}

// SynthesizeArray sums all elements of arr inside every cell before reducing the cell to the
// representation of pattern. This is the monolithic O(360*90*N) evaluation.
func SynthesizeArray(arr deployment.ElementArray, freqHz float64, pattern antenna.ElementPattern) (FieldGrid, error) {
	if err := arr.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyArray, err)
	}
	wavelength := antenna.Wavelength(freqHz)
	rep := pattern.Representation()
	g := NewFieldGrid()
	for theta := 0; theta < NTheta; theta++ {
		for phi := 0; phi < NPhi; phi++ {
			dir := cellDirection(phi, theta)
			sum := complex(FieldSeed, 0)
			for _, el := range arr {
				sum += contribution(el, wavelength, pattern, dir)
			}
			g[phi][theta] = rep.Apply(sum)
		}
	}
	return g, nil
}

// ComputeArrayFactor is the isotropic array factor magnitude of arr.
func ComputeArrayFactor(arr deployment.ElementArray, freqHz float64) (FieldGrid, error) {
	return SynthesizeArray(arr, freqHz, antenna.Isotropic{})
}

// Executor fans the element computations of a job out and returns one grid per element, in
// element order. Implementations live in package dispatch.
type Executor interface {
	Run(ctx context.Context, job Job, arr deployment.ElementArray) ([]FieldGrid, error)
}

// ComputeArrayField evaluates arr for job. Coherent (real part) patterns are computed per element
// through exec and summed by SumFields. A magnitude is not additive across elements, so magnitude
// patterns are synthesized monolithically.
func ComputeArrayField(ctx context.Context, exec Executor, job Job, arr deployment.ElementArray) (CompositePattern, error) {
	pattern, err := job.NewPattern()
	if err != nil {
		return nil, err
	}
	if pattern.Representation() == antenna.Magnitude {
		log.Debugf("%s pattern: monolithic synthesis of %d elements", pattern.Type(), len(arr))
		return SynthesizeArray(arr, job.FreqHz, pattern)
	}
	if err := arr.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyArray, err)
	}
	grids, err := exec.Run(ctx, job, arr)
	if err != nil {
		return nil, fmt.Errorf("element fields: %w", err)
	}
	if len(grids) != len(arr) {
		return nil, fmt.Errorf("element fields: got %d grids for %d elements", len(grids), len(arr))
	}
	return SumFields(grids)
}
