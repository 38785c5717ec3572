package antenna

import (
	"math"

	"github.com/wiless/vlib"
)

// HornTaperExponent is the q of the cos^q(theta) horn approximation. It is a tuning value, not a
// physical constant.
const HornTaperExponent = 28.0

// Representation is the form in which a synthesizer stores the accumulated complex field of a cell.
type Representation int

const (
	// Magnitude stores |E|, the power envelope of a pure array factor study.
	Magnitude Representation = iota
	// RealPart stores Re(E), the coherent field used by horn and patch studies.
	RealPart
)

var Representations = [...]string{
	"Magnitude",
	"RealPart",
}

func (r Representation) String() string {
	if int(r) < 0 || int(r) >= len(Representations) {
		return "Unknown-Representation"
	}
	return Representations[r]
}

// Apply reduces the complex sample v according to r.
func (r Representation) Apply(v complex128) float64 {
	if r == RealPart {
		return real(v)
	}
	return math.Hypot(real(v), imag(v))
}

// Direction is a global far-field direction in radians, theta from +z and phi from +x.
type Direction struct {
	Theta float64
	Phi   float64
}

// DirectionDeg builds a Direction from angles in degree.
func DirectionDeg(thetaDeg, phiDeg float64) Direction {
	return Direction{Theta: Radian(thetaDeg), Phi: Radian(phiDeg)}
}

// ElementPattern is the directional gain of a single radiating element located at origin.
// Implementations must be safe for concurrent use and must return 0 instead of failing for
// directions outside their valid domain.
type ElementPattern interface {
	Gain(dir Direction, origin vlib.Location3D) float64
	Representation() Representation
	Type() PatternType
}

// Isotropic is a point source radiating equally in all directions.
type Isotropic struct{}

func (Isotropic) Gain(Direction, vlib.Location3D) float64 { return 1.0 }

func (Isotropic) Representation() Representation { return Magnitude }

func (Isotropic) Type() PatternType { return IsotropicPattern }

// Horn approximates a tapered horn aperture by cos^Q of the local theta.
// No radiation is modelled for global directions behind the aperture plane.
type Horn struct {
	Q float64
}

// NewHorn returns a Horn with the default taper.
func NewHorn() Horn {
	return Horn{Q: HornTaperExponent}
}

func (h Horn) Gain(dir Direction, origin vlib.Location3D) float64 {
	if dir.Theta > math.Pi/2 {
		return 0
	}
	q := h.Q
	if q == 0 {
		q = HornTaperExponent
	}
	thetaLocal, _ := LocalAngles(FarFieldPoint(dir.Theta, dir.Phi), origin)
	// a local theta past 90 keeps the sign of cos^Q, even Q stays positive; a fractional Q
	// has no real power of a negative cosine and gives 0
	g := math.Pow(math.Cos(thetaLocal), q)
	if math.IsNaN(g) {
		return 0
	}
	return g
}

func (Horn) Representation() Representation { return RealPart }

func (Horn) Type() PatternType { return HornPattern }

// Patch is a rectangular microstrip patch resonating in TM010 at FreqHz.
type Patch struct {
	PatchGeometry
	FreqHz float64
}

func (p Patch) Gain(dir Direction, origin vlib.Location3D) float64 {
	thetaLocal, phiLocal := LocalAngles(FarFieldPoint(dir.Theta, dir.Phi), origin)
	return PatchFunction(Degree(thetaLocal), Degree(phiLocal), p.FreqHz, p.PatchGeometry)
}

func (Patch) Representation() Representation { return RealPart }

func (Patch) Type() PatternType { return PatchPattern }
