package main

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Runner launches pipeline runs in the background. It refuses to start a
// second run for credentials whose previous run has not finished.
type Runner struct {
	pipeline *Pipeline
	logger   Logger
	timeout  time.Duration

	wg       sync.WaitGroup
	mu       sync.Mutex
	inFlight map[string]string // access token -> run ID
}

func NewRunner(pipeline *Pipeline, timeout time.Duration, logger Logger) *Runner {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Runner{
		pipeline: pipeline,
		logger:   logger,
		timeout:  timeout,
		inFlight: make(map[string]string),
	}
}

func generateRunID() string {
	return uuid.New().String()[:8]
}

// RunPipeline starts a run and returns immediately. onLog receives each line
// as the run progresses, from the run's goroutine. The returned channel yields
// exactly one RunResult and may be ignored.
func (r *Runner) RunPipeline(ctx context.Context, creds Credentials, onLog func(string)) (<-chan RunResult, error) {
	id := generateRunID()
	if !r.claim(creds, id) {
		return nil, ErrRunInFlight
	}

	results := make(chan RunResult, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		runCtx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		r.logger.Log("[%s] Starting pipeline run", id)
		res := r.pipeline.Run(runCtx, id, creds, onLog)
		if res.Err != nil {
			r.logger.Log("[%s] Run ended with %s error: %v", id, FailureKind(res.Err), res.Err)
		} else {
			r.logger.Log("[%s] Run complete (%d bytes)", id, len(res.Storefront))
		}
		r.release(creds)
		results <- res
		close(results)
	}()

	return results, nil
}

func (r *Runner) claim(creds Credentials, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inFlight[creds.AccessToken]; busy {
		return false
	}
	r.inFlight[creds.AccessToken] = id
	return true
}

func (r *Runner) release(creds Credentials) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, creds.AccessToken)
}

// InFlight returns the number of runs still executing.
func (r *Runner) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inFlight)
}

// Wait blocks until every started run has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
