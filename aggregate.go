package farfield

import (
	"fmt"
	"math"

	"github.com/wiless/farfield/antenna"
	"github.com/wiless/vlib"
	"gonum.org/v1/gonum/floats"
)

// SumFields adds the real valued grids cell by cell on top of a FieldSeed seed.
// All grids must be NPhi x NTheta, the sum waits for the complete set and is
// independent of the order of grids up to rounding.
func SumFields(grids []FieldGrid) (CompositePattern, error) {
	if len(grids) == 0 {
		return nil, ErrEmptyArray
	}
	for i, g := range grids {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("grid %d: %w", i, err)
		}
	}
	result := NewFieldGrid()
	for phi := range result {
		row := result[phi]
		floats.AddConst(FieldSeed, row)
		for _, g := range grids {
			floats.Add(row, g[phi])
		}
	}
	return result, nil
}

// MustSumFields is like SumFields but panics on a precondition violation.
func MustSumFields(grids []FieldGrid) CompositePattern {
	result, err := SumFields(grids)
	if err != nil {
		panic(err)
	}
	return result
}

// ToDB returns 20*log10|E| of every cell.
func ToDB(g FieldGrid) FieldGrid {
	result := FieldGrid(vlib.NewMatrixF(len(g), 0))
	for phi := range g {
		row := make([]float64, len(g[phi]))
		for theta, v := range g[phi] {
			row[theta] = 2 * vlib.Db(math.Abs(v))
		}
		result[phi] = row
	}
	return result
}

// Cut returns the theta samples of g at phiDeg, e.g. 0 for the E-plane and 90 for the H-plane.
// phiDeg is wrapped into [0,360).
func Cut(g FieldGrid, phiDeg int) []float64 {
	phi := int(antenna.Wrap0To360(float64(phiDeg)))
	result := make([]float64, len(g[phi]))
	copy(result, g[phi])
	return result
}

// Peak returns the maximum of g and its (phi, theta) cell.
func Peak(g FieldGrid) (value float64, phi, theta int) {
	value = math.Inf(-1)
	for p := range g {
		if len(g[p]) == 0 {
			continue
		}
		t := floats.MaxIdx(g[p])
		if g[p][t] > value {
			value, phi, theta = g[p][t], p, t
		}
	}
	return value, phi, theta
}

// Extent returns the minimum and maximum of g, as used to scale the axes of a plot.
func Extent(g FieldGrid) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for p := range g {
		if len(g[p]) == 0 {
			continue
		}
		min = math.Min(min, floats.Min(g[p]))
		max = math.Max(max, floats.Max(g[p]))
	}
	return min, max
}
