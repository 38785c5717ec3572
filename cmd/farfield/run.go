package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/wiless/farfield"
	"github.com/wiless/farfield/deployment"
	"github.com/wiless/farfield/dispatch"
	"github.com/wiless/farfield/export"
	"github.com/wiless/farfield/table"
	"github.com/wiless/vlib"
)

// RunInfo is the manifest written next to the results of a run.
type RunInfo struct {
	ID        string        `json:"id"`
	Started   time.Time     `json:"started"`
	Duration  string        `json:"duration"`
	Job       farfield.Job  `json:"job"`
	Physics   table.Physics `json:"physics"`
	Elements  int           `json:"elements"`
	Executor  string        `json:"executor"`
	Peak      float64       `json:"peak"`
	PeakPhi   int           `json:"peakPhi"`
	PeakTheta int           `json:"peakTheta"`
}

// keepingExecutor stores every element grid returned by the wrapped executor.
type keepingExecutor struct {
	farfield.Executor
	dir string
}

func (k keepingExecutor) Run(ctx context.Context, job farfield.Job, arr deployment.ElementArray) ([]farfield.FieldGrid, error) {
	grids, err := k.Executor.Run(ctx, job, arr)
	if err != nil {
		return nil, err
	}
	for i, g := range grids {
		if err := table.SaveGrid(filepath.Join(k.dir, elementResultName(i)), g); err != nil {
			return nil, err
		}
	}
	return grids, nil
}

func elementName(i int) string       { return fmt.Sprintf("element%d.csv", i) }
func elementResultName(i int) string { return fmt.Sprintf("elementresult%d.csv", i) }

func newRunCmd() *cobra.Command {
	var (
		workers        int
		out            string
		keep, useRedis bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "synthesize the composite pattern of the configured array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// flags win over the loaded config
			flags := cmd.Flags()
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("out") {
				cfg.OutputDir = out
			}
			if flags.Changed("keep-elements") {
				cfg.KeepElements = keep
			}
			if flags.Changed("redis") {
				cfg.Redis.Enabled = useRedis
			}
			return run(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "element workers, 0 for all cores")
	cmd.Flags().StringVar(&out, "out", ".", "output directory")
	cmd.Flags().BoolVar(&keep, "keep-elements", false, "keep per element tables")
	cmd.Flags().BoolVar(&useRedis, "redis", false, "dispatch elements to redis workers")
	return cmd
}

func run(ctx context.Context) error {
	info := RunInfo{ID: uuid.NewString(), Started: time.Now()}
	logger := log.WithField("run", info.ID)

	job, err := cfg.Job()
	if err != nil {
		return err
	}
	arr, err := cfg.Elements()
	if err != nil {
		return err
	}
	if info.Physics, err = table.PhysicsFromJob(job); err != nil {
		return err
	}
	info.Job, info.Elements = job, len(arr)
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}

	var exec farfield.Executor = dispatch.NewLocalExecutor(cfg.Workers)
	info.Executor = "local"
	if cfg.Redis.Enabled {
		client, err := dispatch.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		exec = dispatch.NewRedisExecutor(client, cfg.Redis)
		info.Executor = "redis"
	}
	if cfg.KeepElements {
		for i, el := range arr {
			if err := table.SaveElement(filepath.Join(cfg.OutputDir, elementName(i)), el); err != nil {
				return err
			}
		}
		exec = keepingExecutor{Executor: exec, dir: cfg.OutputDir}
	}

	logger.WithFields(log.Fields{"pattern": job.Pattern.Type, "elements": len(arr), "executor": info.Executor}).Info("Synthesizing")
	composite, err := farfield.ComputeArrayField(ctx, exec, job, arr)
	if err != nil {
		return err
	}
	info.Peak, info.PeakPhi, info.PeakTheta = farfield.Peak(composite)
	info.Duration = time.Since(info.Started).String()
	logger.Infof("Peak %.4g at phi=%d theta=%d (%s)", info.Peak, info.PeakPhi, info.PeakTheta, info.Duration)

	if err := writeResults(cfg.OutputDir, composite, job.FreqHz); err != nil {
		return err
	}
	vlib.SaveStructure(info, filepath.Join(cfg.OutputDir, "run.json"), true)
	return nil
}

// writeResults stores composite.csv, pattern.m and cuts.png into dir.
func writeResults(dir string, composite farfield.CompositePattern, freqHz float64) error {
	if err := table.SaveGrid(filepath.Join(dir, "composite.csv"), composite); err != nil {
		return err
	}
	fid, err := os.Create(filepath.Join(dir, "pattern.m"))
	if err != nil {
		return err
	}
	if err := export.WriteMatlab(fid, composite, freqHz); err != nil {
		fid.Close()
		return err
	}
	if err := fid.Close(); err != nil {
		return err
	}
	return export.SaveCutsPNG(filepath.Join(dir, "cuts.png"), composite, freqHz)
}
