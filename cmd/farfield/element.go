package main

import (
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/wiless/farfield"
	"github.com/wiless/farfield/antenna"
	"github.com/wiless/farfield/table"
)

// prepare writes the inputs of a file based run: element<N>.csv per element and physics.csv.
func newPrepareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "write the element and physics tables of the configured array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := cfg.Job()
			if err != nil {
				return err
			}
			physics, err := table.PhysicsFromJob(job)
			if err != nil {
				return err
			}
			arr, err := cfg.Elements()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
				return err
			}
			if err := table.SavePhysics(filepath.Join(cfg.OutputDir, "physics.csv"), physics); err != nil {
				return err
			}
			for i, el := range arr {
				if err := table.SaveElement(filepath.Join(cfg.OutputDir, elementName(i)), el); err != nil {
					return err
				}
			}
			log.Infof("Prepared %d elements in %s", len(arr), cfg.OutputDir)
			return nil
		},
	}
}

// patternOf parses the --pattern flag, the configured pattern when empty.
func patternOf(flag string) (antenna.PatternType, error) {
	if flag == "" {
		flag = cfg.Pattern
	}
	return antenna.ParsePatternType(flag)
}

// element computes the grid of one element from its tables, the unit of work of a file based run.
// Only coherent patterns can be split this way, an isotropic array needs run.
func newElementCmd() *cobra.Command {
	var elementFile, physicsFile, pattern, out string
	cmd := &cobra.Command{
		Use:   "element",
		Short: "compute the field grid of a single element",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ptype, err := patternOf(pattern)
			if err != nil {
				return err
			}
			el, err := table.LoadElement(elementFile)
			if err != nil {
				return err
			}
			physics, err := table.LoadPhysics(physicsFile)
			if err != nil {
				return err
			}
			job := physics.Job(ptype)
			if err := job.Additive(); err != nil {
				return err
			}
			grid, err := farfield.ElementField(job, el)
			if err != nil {
				return err
			}
			return table.SaveGrid(out, grid)
		},
	}
	cmd.Flags().StringVar(&elementFile, "element", "element.csv", "element table")
	cmd.Flags().StringVar(&physicsFile, "physics", "physics.csv", "physics table")
	cmd.Flags().StringVar(&pattern, "pattern", "", "element pattern (default from config)")
	cmd.Flags().StringVar(&out, "out", "result.csv", "output grid")
	return cmd
}

// aggregate sums the element grids of a file based run.
func newAggregateCmd() *cobra.Command {
	var dir, pattern string
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "sum the element result grids of a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ptype, err := patternOf(pattern)
			if err != nil {
				return err
			}
			physics, perr := table.LoadPhysics(filepath.Join(dir, "physics.csv"))
			if perr != nil {
				log.Debugf("no physics table in %s, using the configured frequency", dir)
				physics = table.Physics{FreqHz: cfg.FreqHz}
			}
			if err := physics.Job(ptype).Additive(); err != nil {
				return err
			}

			files, err := filepath.Glob(filepath.Join(dir, "elementresult*.csv"))
			if err != nil {
				return err
			}
			sort.Strings(files)
			grids := make([]farfield.FieldGrid, 0, len(files))
			for _, f := range files {
				g, err := table.LoadGrid(f)
				if err != nil {
					return err
				}
				grids = append(grids, g)
			}
			composite, err := farfield.SumFields(grids)
			if err != nil {
				return err
			}
			log.Infof("Aggregated %d element grids", len(grids))
			return writeResults(dir, composite, physics.FreqHz)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory holding elementresult<N>.csv")
	cmd.Flags().StringVar(&pattern, "pattern", "", "element pattern of the grids (default from config)")
	return cmd
}
