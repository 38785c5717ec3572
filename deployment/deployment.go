package deployment

import (
	"errors"
	"fmt"

	"github.com/wiless/farfield/antenna"
	"github.com/wiless/vlib"
)

var (
	ErrEmptyArray   = errors.New("deployment: element array is empty")
	ErrInvalidCount = errors.New("deployment: element counts must be >= 1 and spacing >= 0")
	ErrBadTuple     = errors.New("deployment: element tuple needs 5 values")
)

// Element is a single radiator of the array.
// Location is in meters in the array frame, PhaseWeight is a static excitation phase in radians.
type Element struct {
	Location    vlib.Location3D
	Amplitude   float64
	PhaseWeight float64
}

// NewElement returns a unit amplitude, zero phase element at (x,y,z).
func NewElement(x, y, z float64) Element {
	return Element{Location: vlib.Location3D{X: x, Y: y, Z: z}, Amplitude: 1}
}

// Tuple returns the element as {x, y, z, amplitude, phaseWeight}.
func (e Element) Tuple() [5]float64 {
	return [5]float64{e.Location.X, e.Location.Y, e.Location.Z, e.Amplitude, e.PhaseWeight}
}

// ElementFromTuple is the inverse of Element.Tuple.
func ElementFromTuple(v []float64) (Element, error) {
	if len(v) != 5 {
		return Element{}, fmt.Errorf("%w, got %d", ErrBadTuple, len(v))
	}
	return Element{Location: vlib.Location3D{X: v[0], Y: v[1], Z: v[2]}, Amplitude: v[3], PhaseWeight: v[4]}, nil
}

// ElementArray is an ordered set of elements. Order does not change the physics but indexes the
// per element results when elements are processed independently.
type ElementArray []Element

func (a ElementArray) Validate() error {
	if len(a) == 0 {
		return ErrEmptyArray
	}
	return nil
}

// Steer returns a copy of the array whose phase weights point the main beam at (theta0, phi0),
// angles in degree.
func (a ElementArray) Steer(wavelength, theta0, phi0 float64) ElementArray {
	result := make(ElementArray, len(a))
	t0, p0 := antenna.Radian(theta0), antenna.Radian(phi0)
	for i, e := range a {
		e.PhaseWeight = antenna.SteeringPhase(e.Location, wavelength, t0, p0)
		result[i] = e
	}
	return result
}

// start of n points spaced by spacing and centred on 0
func centredStart(n int, spacing float64) float64 {
	return -((float64(n)/2 - 1) + 0.5) * spacing
}

// GenerateLinearArray drops n elements along x, centred on the origin.
func GenerateLinearArray(n int, spacing float64) (ElementArray, error) {
	return GenerateRectangularArray(n, 1, spacing)
}

// GenerateRectangularArray drops xCount*yCount unit amplitude, zero phase elements on a grid in
// the z=0 plane centred on the origin. Elements are ordered row-major, y outer and x inner.
// A single row lies on the x axis.
func GenerateRectangularArray(xCount, yCount int, spacing float64) (ElementArray, error) {
	if xCount < 1 || yCount < 1 || spacing < 0 {
		return nil, fmt.Errorf("%w: x=%d y=%d spacing=%v", ErrInvalidCount, xCount, yCount, spacing)
	}
	result := make(ElementArray, 0, xCount*yCount)
	y := centredStart(yCount, spacing)
	for iy := 0; iy < yCount; iy++ {
		x := centredStart(xCount, spacing)
		for ix := 0; ix < xCount; ix++ {
			result = append(result, NewElement(x, y, 0))
			x += spacing
		}
		y += spacing
	}
	return result, nil
}
