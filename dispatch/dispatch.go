// Package dispatch fans the per element field computations of an array out to workers, either
// goroutines of the current process or remote workers fed through a Redis queue, and collects
// the element grids back in element order.
package dispatch

import (
	"context"
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/farfield"
	"github.com/wiless/farfield/deployment"
	"golang.org/x/sync/errgroup"
)

// ElementFunc computes the grid of a single element, farfield.ElementField by default.
type ElementFunc func(job farfield.Job, el deployment.Element) (farfield.FieldGrid, error)

// LocalExecutor computes the elements on a bounded pool of goroutines.
type LocalExecutor struct {
	Workers int
	Compute ElementFunc
}

// NewLocalExecutor returns an executor running at most workers elements at once,
// runtime.GOMAXPROCS(0) when workers <= 0.
func NewLocalExecutor(workers int) *LocalExecutor {
	return &LocalExecutor{Workers: workers}
}

func (l *LocalExecutor) workers() int {
	if l.Workers > 0 {
		return l.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Run implements farfield.Executor. The first failing element cancels the elements not yet
// started and its error is returned.
func (l *LocalExecutor) Run(ctx context.Context, job farfield.Job, arr deployment.ElementArray) ([]farfield.FieldGrid, error) {
	if err := arr.Validate(); err != nil {
		return nil, err
	}
	compute := l.Compute
	if compute == nil {
		compute = farfield.ElementField
	}
	grids := make([]farfield.FieldGrid, len(arr))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers())
	for i, el := range arr {
		i, el := i, el
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			grid, err := compute(job, el)
			if err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			grids[i] = grid
			log.Debugf("element %d/%d done", i+1, len(arr))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return grids, nil
}
