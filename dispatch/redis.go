package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/wiless/farfield"
	"github.com/wiless/farfield/deployment"
	"github.com/wiless/farfield/table"
)

const (
	DefaultPrefix = "farfield"
	// DefaultTimeout bounds a remote run when no timeout is configured.
	DefaultTimeout = 10 * time.Minute
	// ResultTTL bounds the lifetime of result keys left behind by an aborted run.
	ResultTTL = time.Hour
	pollEvery = time.Second
)

var (
	ErrWorker = errors.New("dispatch: worker failed")
	// ErrStaleTask is returned by Worker.Handle for a task whose run has ended.
	ErrStaleTask = errors.New("dispatch: run of task is gone")
)

// Keys of the queue, all under a common prefix:
//
//	<prefix>:tasks           list of JSON Task
//	<prefix>:run:<run>       marker holding the element count while the run is live
//	<prefix>:results:<run>   hash element index -> grid CSV
//	<prefix>:errors:<run>    hash element index -> error text
//	<prefix>:done:<run>      list of finished element indexes
type keys string

func (k keys) tasks() string              { return string(k) + ":tasks" }
func (k keys) run(run string) string     { return string(k) + ":run:" + run }
func (k keys) results(run string) string { return string(k) + ":results:" + run }
func (k keys) errors(run string) string  { return string(k) + ":errors:" + run }
func (k keys) done(run string) string    { return string(k) + ":done:" + run }

func keysOf(prefix string) keys {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return keys(prefix)
}

// RedisConfig holds the connection settings of the queue.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	Enabled  bool          `mapstructure:"enabled"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// NewRedisClient connects to the server of cfg and checks it with a ping.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.Ping(pctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	log.Infof("Connected to redis at %s", cfg.Addr)
	return client, nil
}

// RedisExecutor queues one Task per element and waits for remote workers to post every result.
// Timeout bounds the run, DefaultTimeout when 0.
type RedisExecutor struct {
	Client  *redis.Client
	Prefix  string
	Timeout time.Duration
}

// NewRedisExecutor returns an executor using the prefix and timeout of cfg.
func NewRedisExecutor(client *redis.Client, cfg RedisConfig) *RedisExecutor {
	return &RedisExecutor{Client: client, Prefix: cfg.Prefix, Timeout: cfg.Timeout}
}

// Run implements farfield.Executor. When the run fails or times out its tasks still queued are
// withdrawn and its keys removed, so that workers skip whatever they already popped.
func (r *RedisExecutor) Run(ctx context.Context, job farfield.Job, arr deployment.ElementArray) (grids []farfield.FieldGrid, err error) {
	if err := arr.Validate(); err != nil {
		return nil, err
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	k := keysOf(r.Prefix)
	run := uuid.NewString()
	logger := log.WithFields(log.Fields{"run": run, "elements": len(arr)})

	payloads := make([]string, len(arr))
	for i, el := range arr {
		payload, err := NewTask(run, i, el, job).Marshal()
		if err != nil {
			return nil, err
		}
		payloads[i] = string(payload)
	}
	defer func() {
		cleanup := r.Client.Pipeline()
		cleanup.Del(context.Background(), k.run(run), k.results(run), k.errors(run), k.done(run))
		if err != nil {
			for _, payload := range payloads {
				cleanup.LRem(context.Background(), k.tasks(), 1, payload)
			}
		}
		if _, cerr := cleanup.Exec(context.Background()); cerr != nil {
			logger.Warnf("cleanup: %v", cerr)
		}
	}()

	pipe := r.Client.Pipeline()
	pipe.Set(ctx, k.run(run), len(arr), timeout+ResultTTL)
	for _, payload := range payloads {
		pipe.RPush(ctx, k.tasks(), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("queue tasks: %w", err)
	}
	logger.Info("Tasks queued")

	if err := r.wait(ctx, k, run, len(arr)); err != nil {
		return nil, err
	}
	fields, err := r.Client.HGetAll(ctx, k.results(run)).Result()
	if err != nil {
		return nil, fmt.Errorf("collect results: %w", err)
	}
	grids = make([]farfield.FieldGrid, len(arr))
	for i := range grids {
		csv, ok := fields[strconv.Itoa(i)]
		if !ok {
			return nil, fmt.Errorf("element %d: no result", i)
		}
		if grids[i], err = table.ReadGrid(strings.NewReader(csv)); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	logger.Info("Results collected")
	return grids, nil
}

// wait blocks until n results are stored or a worker reports an error.
func (r *RedisExecutor) wait(ctx context.Context, k keys, run string, n int) error {
	for {
		failed, err := r.Client.HGetAll(ctx, k.errors(run)).Result()
		if err != nil {
			return err
		}
		for idx, msg := range failed {
			return fmt.Errorf("%w: element %s: %s", ErrWorker, idx, msg)
		}
		count, err := r.Client.HLen(ctx, k.results(run)).Result()
		if err != nil {
			return err
		}
		if int(count) >= n {
			return nil
		}
		_, err = r.Client.BLPop(ctx, pollEvery, k.done(run)).Result()
		if err != nil && err != redis.Nil {
			if ctx.Err() != nil {
				return fmt.Errorf("waiting for %d/%d results: %w", count, n, ctx.Err())
			}
			return err
		}
	}
}

// Worker pops tasks from the queue, computes the element grid and posts it back.
type Worker struct {
	Client  *redis.Client
	Prefix  string
	Compute ElementFunc
}

// Serve handles tasks until ctx is cancelled. A failing task is reported to its run and does
// not stop the worker.
func (w *Worker) Serve(ctx context.Context) error {
	k := keysOf(w.Prefix)
	log.Infof("Worker waiting on %s", k.tasks())
	for {
		res, err := w.Client.BLPop(ctx, pollEvery, k.tasks()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		switch err := w.Handle(ctx, []byte(res[1])); {
		case errors.Is(err, ErrStaleTask):
			log.Debug(err)
		case err != nil:
			log.Warnf("task failed: %v", err)
		}
	}
}

// Handle runs a single task payload. Running a task twice overwrites the same result, a task
// of a run that has ended is dropped with ErrStaleTask.
func (w *Worker) Handle(ctx context.Context, payload []byte) error {
	task, err := UnmarshalTask(payload)
	if err != nil {
		return err
	}
	k := keysOf(w.Prefix)
	idx := strconv.Itoa(task.Index)
	live, err := w.Client.Exists(ctx, k.run(task.Run)).Result()
	if err != nil {
		return err
	}
	if live == 0 {
		return fmt.Errorf("%w: run %s element %s", ErrStaleTask, task.Run, idx)
	}
	compute := w.Compute
	if compute == nil {
		compute = farfield.ElementField
	}

	var (
		grid farfield.FieldGrid
		buf  bytes.Buffer
	)
	el, err := task.Elem()
	if err == nil {
		grid, err = compute(task.Job, el)
	}
	if err == nil {
		err = table.WriteGrid(&buf, grid)
	}

	pipe := w.Client.TxPipeline()
	if err != nil {
		pipe.HSet(ctx, k.errors(task.Run), idx, err.Error())
		pipe.Expire(ctx, k.errors(task.Run), ResultTTL)
	} else {
		pipe.HSet(ctx, k.results(task.Run), idx, buf.String())
		pipe.Expire(ctx, k.results(task.Run), ResultTTL)
	}
	pipe.RPush(ctx, k.done(task.Run), idx)
	pipe.Expire(ctx, k.done(task.Run), ResultTTL)
	if _, perr := pipe.Exec(ctx); perr != nil {
		return fmt.Errorf("post result of element %s: %w", idx, perr)
	}
	if err != nil {
		return fmt.Errorf("run %s element %s: %w", task.Run, idx, err)
	}
	log.WithFields(log.Fields{"run": task.Run, "element": task.Index}).Debug("element done")
	return nil
}
