// Package farfield synthesizes the far-field pattern of a phased array by summing the
// contributions of its elements over a fixed theta/phi sampling grid.
package farfield

import (
	"errors"
	"fmt"

	"github.com/wiless/farfield/antenna"
	"github.com/wiless/vlib"
)

// The sampling grid: phi in [0,360) and theta in [0,90), 1 degree steps.
const (
	NPhi   = 360
	NTheta = 90
)

// FieldSeed is added to every accumulated cell so that downstream dB conversion never sees log(0).
const FieldSeed = 1e-9

var (
	ErrEmptyArray    = errors.New("farfield: nothing to sum")
	ErrShapeMismatch = fmt.Errorf("farfield: grid is not %dx%d", NPhi, NTheta)
	ErrNotAdditive   = errors.New("farfield: magnitude element grids do not sum to the array field")
)

// FieldGrid holds one real sample per cell, indexed [phi][theta] in integer degree.
type FieldGrid vlib.MatrixF

// CompositePattern is the cell-wise sum of independently computed element grids.
type CompositePattern = FieldGrid

// ComplexGrid holds the full complex field, indexed [phi][theta].
type ComplexGrid vlib.MatrixC

func NewFieldGrid() FieldGrid {
	return FieldGrid(vlib.NewMatrixF(NPhi, NTheta))
}

func NewComplexGrid() ComplexGrid {
	return ComplexGrid(vlib.NewMatrixC(NPhi, NTheta))
}

// Validate checks that g covers the full sampling grid.
func (g FieldGrid) Validate() error {
	if len(g) != NPhi {
		return fmt.Errorf("%w: %d phi rows", ErrShapeMismatch, len(g))
	}
	for phi := range g {
		if len(g[phi]) != NTheta {
			return fmt.Errorf("%w: phi=%d has %d theta samples", ErrShapeMismatch, phi, len(g[phi]))
		}
	}
	return nil
}

// At returns the sample at integer degree (phi, theta).
func (g FieldGrid) At(phi, theta int) float64 {
	return g[phi][theta]
}

// Reduce converts every cell of c using r.
func (c ComplexGrid) Reduce(r antenna.Representation) FieldGrid {
	g := NewFieldGrid()
	for phi := range c {
		for theta := range c[phi] {
			g[phi][theta] = r.Apply(c[phi][theta])
		}
	}
	return g
}

// Job is the read-only input shared by every element computation of a run.
type Job struct {
	FreqHz  float64                `json:"freqHz"`
	Pattern antenna.PatternSetting `json:"pattern"`
}

func (j Job) Wavelength() float64 {
	return antenna.Wavelength(j.FreqHz)
}

func (j Job) NewPattern() (antenna.ElementPattern, error) {
	return antenna.NewPattern(j.Pattern, j.FreqHz)
}

// Additive checks that the element grids of j can be combined by SumFields. Magnitude patterns
// fail with ErrNotAdditive, their array field needs SynthesizeArray.
func (j Job) Additive() error {
	if j.Pattern.Type.Representation() == antenna.Magnitude {
		return fmt.Errorf("%w: %s pattern", ErrNotAdditive, j.Pattern.Type)
	}
	return nil
}
