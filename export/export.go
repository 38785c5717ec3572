// Package export renders a composite pattern for inspection: a Matlab script holding the
// complete grid and the principal cuts, and a PNG plot of the E-plane and H-plane cuts in dB.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wiless/farfield"
	"github.com/wiless/vlib"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Principal planes of the cuts.
const (
	EPlanePhi = 0
	HPlanePhi = 90
)

// DynamicRange is the span in dB shown below the peak of a cut plot.
const DynamicRange = 60.0

// errWriter keeps the first write error, vlib.Matlab does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func thetaAxis() vlib.VectorF {
	theta := vlib.NewVectorF(farfield.NTheta)
	for i := range theta {
		theta[i] = float64(i)
	}
	return theta
}

// WriteMatlab writes a script defining theta, the dB cuts Eplane and Hplane and the linear grid
// E (phi rows, theta columns), then plotting both cuts.
func WriteMatlab(w io.Writer, g farfield.FieldGrid, freqHz float64) error {
	if err := g.Validate(); err != nil {
		return err
	}
	db := farfield.ToDB(g)

	ew := &errWriter{w: w}
	var matlab vlib.Matlab
	matlab.SetDefaults()
	matlab.SetWriter(ew)
	matlab.Silent = true
	matlab.Command(fmt.Sprintf("freqHz=%g;", freqHz))
	matlab.Export("theta", thetaAxis())
	matlab.Export("Eplane", vlib.VectorF(farfield.Cut(db, EPlanePhi)))
	matlab.Export("Hplane", vlib.VectorF(farfield.Cut(db, HPlanePhi)))

	var sb strings.Builder
	sb.WriteString("E=[")
	for phi := range g {
		for theta, v := range g[phi] {
			if theta > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%g", v)
		}
		sb.WriteString(";\n")
	}
	sb.WriteString("];")
	matlab.Command(sb.String())
	matlab.Command("figure;plot(theta,Eplane,theta,Hplane);grid on;")
	matlab.Command("legend('E-plane','H-plane');xlabel('\\theta (deg)');ylabel('dB');")
	matlab.Close()
	return ew.err
}

func cutXYs(cut []float64) plotter.XYs {
	pts := make(plotter.XYs, len(cut))
	for theta, v := range cut {
		pts[theta] = plotter.XY{X: float64(theta), Y: v}
	}
	return pts
}

// SaveCutsPNG plots the E-plane and H-plane cuts of g in dB into fname.
func SaveCutsPNG(fname string, g farfield.FieldGrid, freqHz float64) error {
	if err := g.Validate(); err != nil {
		return err
	}
	db := farfield.ToDB(g)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Far-field cuts @ %.3g GHz", freqHz/1e9)
	p.X.Label.Text = "theta (deg)"
	p.Y.Label.Text = "20 log10|E| (dB)"
	p.Add(plotter.NewGrid())
	if err := plotutil.AddLines(p,
		"E-plane", cutXYs(farfield.Cut(db, EPlanePhi)),
		"H-plane", cutXYs(farfield.Cut(db, HPlanePhi)),
	); err != nil {
		return err
	}
	// set after adding the lines, Add widens the axes to the data
	min, max := farfield.Extent(db)
	p.Y.Max = max + 3
	p.Y.Min = math.Max(min, max-DynamicRange)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, fname); err != nil {
		return fmt.Errorf("save %s: %w", fname, err)
	}
	return nil
}
