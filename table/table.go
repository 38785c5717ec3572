// Package table reads and writes the plain numeric tables exchanged between the orchestrator and
// the element workers: element.csv, physics.csv and the 360x90 field grids.
package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wiless/farfield"
	"github.com/wiless/farfield/antenna"
	"github.com/wiless/farfield/deployment"
)

var ErrBadRow = errors.New("table: malformed row")

// numbers are written with full float64 precision
func format(v float64) string {
	return strconv.FormatFloat(v, 'e', 18, 64)
}

// readValues returns every number found in r, one or many per line, separated by comma or blanks.
// Lines starting with % or # are comments.
func readValues(r io.Reader) ([]float64, error) {
	var result []float64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '%' || text[0] == '#' {
			continue
		}
		for _, field := range strings.FieldsFunc(text, func(c rune) bool { return c == ',' || c == ' ' || c == '\t' }) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadRow, line, err)
			}
			result = append(result, v)
		}
	}
	return result, scanner.Err()
}

func writeColumn(w io.Writer, values []float64) error {
	bw := bufio.NewWriter(w)
	for _, v := range values {
		if _, err := bw.WriteString(format(v) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteElement writes el as the column {x, y, z, amplitude, phaseWeight}.
func WriteElement(w io.Writer, el deployment.Element) error {
	t := el.Tuple()
	return writeColumn(w, t[:])
}

// ReadElement accepts the five values of an element either as a column or as a single row.
func ReadElement(r io.Reader) (deployment.Element, error) {
	values, err := readValues(r)
	if err != nil {
		return deployment.Element{}, err
	}
	el, err := deployment.ElementFromTuple(values)
	if err != nil {
		return el, fmt.Errorf("%w: %v", ErrBadRow, err)
	}
	return el, nil
}

// Physics is the set of physical parameters shared by all element workers of a run.
type Physics struct {
	FreqHz float64
	W      float64
	L      float64
	H      float64
	Er     float64
}

func (p Physics) values() []float64 {
	return []float64{p.FreqHz, p.W, p.L, p.H, p.Er}
}

// Geometry returns the patch geometry part of p.
func (p Physics) Geometry() antenna.PatchGeometry {
	return antenna.PatchGeometry{W: p.W, L: p.L, H: p.H, Er: p.Er}
}

// Job returns the job computing ptype elements with the physics of p.
// The patch parameters are only attached for the patch pattern.
func (p Physics) Job(ptype antenna.PatternType) farfield.Job {
	s := antenna.NewPatternSetting(ptype)
	if ptype == antenna.PatchPattern {
		s.AddParam("W", p.W).AddParam("L", p.L).AddParam("H", p.H).AddParam("ER", p.Er)
	}
	return farfield.Job{FreqHz: p.FreqHz, Pattern: *s}
}

// PhysicsFromJob designs the patch of job when needed and returns the resulting physics.
// Non patch jobs carry zero geometry.
func PhysicsFromJob(job farfield.Job) (Physics, error) {
	p := Physics{FreqHz: job.FreqHz}
	if job.Pattern.Type != antenna.PatchPattern {
		return p, nil
	}
	g, err := job.Pattern.PatchGeometry(job.FreqHz)
	if err != nil {
		return p, err
	}
	p.W, p.L, p.H, p.Er = g.W, g.L, g.H, g.Er
	return p, nil
}

func WritePhysics(w io.Writer, p Physics) error {
	return writeColumn(w, p.values())
}

func ReadPhysics(r io.Reader) (Physics, error) {
	values, err := readValues(r)
	if err != nil {
		return Physics{}, err
	}
	if len(values) != 5 {
		return Physics{}, fmt.Errorf("%w: physics needs 5 values, got %d", ErrBadRow, len(values))
	}
	return Physics{FreqHz: values[0], W: values[1], L: values[2], H: values[3], Er: values[4]}, nil
}

// WriteGrid writes g as NPhi rows of NTheta comma separated values.
func WriteGrid(w io.Writer, g farfield.FieldGrid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	record := make([]string, farfield.NTheta)
	for phi := range g {
		for theta, v := range g[phi] {
			record[theta] = format(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadGrid reads a grid written by WriteGrid and checks its shape.
func ReadGrid(r io.Reader) (farfield.FieldGrid, error) {
	cr := csv.NewReader(r)
	cr.Comment = '%'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRow, err)
	}
	g := make(farfield.FieldGrid, len(records))
	for phi, record := range records {
		row := make([]float64, len(record))
		for theta, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: phi=%d theta=%d: %v", ErrBadRow, phi, theta, err)
			}
			row[theta] = v
		}
		g[phi] = row
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// SaveGrid writes g into the file fname.
func SaveGrid(fname string, g farfield.FieldGrid) error {
	fid, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := WriteGrid(fid, g); err != nil {
		fid.Close()
		return fmt.Errorf("%s: %w", fname, err)
	}
	return fid.Close()
}

// LoadGrid reads the grid stored in the file fname.
func LoadGrid(fname string) (farfield.FieldGrid, error) {
	fid, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fid.Close()
	g, err := ReadGrid(fid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return g, nil
}

// SaveElement and LoadElement are the file forms of WriteElement and ReadElement.
func SaveElement(fname string, el deployment.Element) error {
	fid, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := WriteElement(fid, el); err != nil {
		fid.Close()
		return err
	}
	return fid.Close()
}

func LoadElement(fname string) (deployment.Element, error) {
	fid, err := os.Open(fname)
	if err != nil {
		return deployment.Element{}, err
	}
	defer fid.Close()
	return ReadElement(fid)
}

func SavePhysics(fname string, p Physics) error {
	fid, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := WritePhysics(fid, p); err != nil {
		fid.Close()
		return err
	}
	return fid.Close()
}

func LoadPhysics(fname string) (Physics, error) {
	fid, err := os.Open(fname)
	if err != nil {
		return Physics{}, err
	}
	defer fid.Close()
	return ReadPhysics(fid)
}
