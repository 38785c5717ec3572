package antenna

import (
	"errors"
	"math"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/vlib"
)

const (
	// PatchRollOff controls how sharply the patch pattern is suppressed towards theta=90,
	// 1 is sharp and 0 is soft.
	PatchRollOff = 0.5
	// PatchUnityNorm normalises the peak of the patch element pattern to unity.
	PatchUnityNorm = 1.0006
	// SingularityEps replaces exact zero angles before they reach a trigonometric division.
	SingularityEps = 1e-9
)

var (
	ErrInvalidFrequency = errors.New("antenna: frequency must be positive")
	ErrInvalidSubstrate = errors.New("antenna: substrate needs h > 0 and Er >= 1")
)

// PatchGeometry describes a rectangular microstrip patch, lengths in meters.
type PatchGeometry struct {
	W  float64 `json:"W" mapstructure:"W"`
	L  float64 `json:"L" mapstructure:"L"`
	H  float64 `json:"H" mapstructure:"H"`
	Er float64 `json:"Er" mapstructure:"ER"`
}

// EffectivePermittivity of a microstrip line of width w on a substrate of height h.
func EffectivePermittivity(er, h, w float64) float64 {
	return (er+1)/2 + (er-1)/2*math.Pow(1+12*(h/w), -0.5)
}

// FringeExtension is the length dL added at each radiating edge by the fringing fields.
func FringeExtension(ereff, w, h float64) float64 {
	f1 := (ereff + 0.3) * (w/h + 0.264)
	f2 := (ereff - 0.258) * (w/h + 0.8)
	return h * 0.412 * (f1 / f2)
}

// DesignPatch returns the geometry of a lambda/2 rectangular patch on a substrate of relative
// permittivity er and thickness h (m) resonating at freqHz.
func DesignPatch(er, h, freqHz float64) (PatchGeometry, error) {
	if freqHz <= 0 {
		return PatchGeometry{}, ErrInvalidFrequency
	}
	if h <= 0 || er < 1 {
		return PatchGeometry{}, ErrInvalidSubstrate
	}
	lambda := Wavelength(freqHz)
	w := (SpeedOfLight / (2 * freqHz)) * math.Sqrt(2/(er+1))
	ereff := EffectivePermittivity(er, h, w)
	dL := FringeExtension(ereff, w, h)
	lambdag := lambda / math.Sqrt(ereff)
	l := lambdag/2 - 2*dL

	log.Debugf("Patch design @%gHz Er=%g h=%gm : W=%gm L=%gm", freqHz, er, h, w, l)
	return PatchGeometry{W: w, L: l, H: h, Er: er}, nil
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(x) / x
}

// PatchFunction returns the total E-field of a TM010 rectangular patch for the direction
// (thetaInDeg, phiInDeg) in the array frame. The E-field is parallel to the model x-axis,
// so the direction is first rotated into the model frame (x<-z, y<-x, z<-y).
// Directions with thetaInDeg > 90 lie behind the ground plane and return 0.
// Reference C.A. Balanis 2nd Ed. p745.
func PatchFunction(thetaInDeg, phiInDeg, freqHz float64, g PatchGeometry) float64 {
	if thetaInDeg > 90 {
		return 0
	}
	k0 := WaveNumber(Wavelength(freqHz))

	thetaIn, phiIn := Radian(thetaInDeg), Radian(phiInDeg)
	xff, yff, zff := SphericalToCartesian(FarFieldRadius, thetaIn, phiIn)
	_, theta, phi := CartesianToSpherical(zff, xff, yff)
	if theta == 0 {
		theta = SingularityEps
	}
	if phi == 0 {
		phi = SingularityEps
	}

	ereff := EffectivePermittivity(g.Er, g.H, g.W)
	leff := g.L + 2*FringeExtension(ereff, g.W, g.H)
	weff := g.W
	heff := g.H * math.Sqrt(g.Er)

	// E-plane
	fphi := sinc(k0*heff*math.Cos(phi)/2) * math.Cos((k0*leff/2)*math.Sin(phi))
	// H-plane
	ftheta := sinc((k0*heff/2)*math.Sin(theta)) * sinc((k0*weff/2)*math.Cos(theta)) * math.Sin(theta)

	return ftheta * fphi * EdgeRollOff(thetaInDeg) * PatchUnityNorm
}

// EdgeRollOff is 1 away from the ground plane edge and drops (as 1/x^2) to 0 at theta=90,
// replacing the hard truncation of the H-plane pattern.
func EdgeRollOff(thetaDeg float64) float64 {
	f := 1 / (math.Pow(PatchRollOff*(math.Abs(thetaDeg)-90), 2) + 0.001)
	return 1 / (f + 1)
}

// PatchFields evaluates the patch element alone over the [phi][theta] degree grid.
func PatchFields(nphi, ntheta int, freqHz float64, g PatchGeometry) vlib.MatrixF {
	fields := vlib.NewMatrixF(nphi, ntheta)
	for phi := 0; phi < nphi; phi++ {
		for theta := 0; theta < ntheta; theta++ {
			fields[phi][theta] = PatchFunction(float64(theta), float64(phi), freqHz, g)
		}
	}
	return fields
}
