package table_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wiless/farfield"
	"github.com/wiless/farfield/antenna"
	"github.com/wiless/farfield/deployment"
	"github.com/wiless/farfield/table"
)

func TestElementColumn(t *testing.T) {
	el := deployment.Element{Amplitude: 0.5, PhaseWeight: -1.25}
	el.Location.X, el.Location.Y, el.Location.Z = 0.0107, -0.0053, 0

	var buf bytes.Buffer
	require.NoError(t, table.WriteElement(&buf, el))
	assert.Equal(t, 5, strings.Count(buf.String(), "\n"))

	got, err := table.ReadElement(&buf)
	require.NoError(t, err)
	assert.Equal(t, el, got)
}

func TestReadElementRow(t *testing.T) {
	got, err := table.ReadElement(strings.NewReader("% x,y,z,amp,phase\n1, 2, 3, 1, 0\n"))
	require.NoError(t, err)
	assert.Equal(t, deployment.NewElement(1, 2, 3), got)

	_, err = table.ReadElement(strings.NewReader("1 2 3\n"))
	assert.ErrorIs(t, err, table.ErrBadRow)

	_, err = table.ReadElement(strings.NewReader("1 2 x 4 5\n"))
	assert.ErrorIs(t, err, table.ErrBadRow)
}

func TestPhysicsAndJob(t *testing.T) {
	job := farfield.Job{FreqHz: 14e9, Pattern: *antenna.NewPatternSetting(antenna.PatchPattern).
		AddParam("er", 3.66).AddParam("h", 0.101e-3)}

	p, err := table.PhysicsFromJob(job)
	require.NoError(t, err)
	assert.InDelta(t, 7.019e-3, p.W, 1e-6)
	assert.InDelta(t, 5.583e-3, p.L, 1e-6)

	var buf bytes.Buffer
	require.NoError(t, table.WritePhysics(&buf, p))
	got, err := table.ReadPhysics(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	back := got.Job(antenna.PatchPattern)
	g, err := back.Pattern.PatchGeometry(back.FreqHz)
	require.NoError(t, err)
	assert.Equal(t, p.Geometry(), g)

	iso, err := table.PhysicsFromJob(farfield.Job{FreqHz: 1e9})
	require.NoError(t, err)
	assert.Equal(t, table.Physics{FreqHz: 1e9}, iso)

	_, err = table.ReadPhysics(strings.NewReader("1\n2\n"))
	assert.ErrorIs(t, err, table.ErrBadRow)
}

func TestGridRoundTrip(t *testing.T) {
	g := farfield.NewFieldGrid()
	for phi := range g {
		for theta := range g[phi] {
			g[phi][theta] = float64(phi)*1e-3 - float64(theta)/7
		}
	}
	fname := filepath.Join(t.TempDir(), "composite.csv")
	require.NoError(t, table.SaveGrid(fname, g))

	got, err := table.LoadGrid(fname)
	require.NoError(t, err)
	assert.Equal(t, g, got)
}

func TestGridShape(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, table.WriteGrid(&buf, farfield.NewFieldGrid()[:3]), farfield.ErrShapeMismatch)

	_, err := table.ReadGrid(strings.NewReader("1,2,3\n4,5,6\n"))
	assert.ErrorIs(t, err, farfield.ErrShapeMismatch)

	_, err = table.ReadGrid(strings.NewReader("1,a\n"))
	assert.ErrorIs(t, err, table.ErrBadRow)
}
