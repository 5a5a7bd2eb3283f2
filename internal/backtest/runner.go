package backtest

import (
	"context"
	"fmt"
	"sync"

	"options-backtester/internal/models"
	"options-backtester/internal/performance"
)

// Job is one named backtest in a batch run.
type Job struct {
	Name   string
	Config RunConfig
}

// RunMany executes independent backtests concurrently on a worker pool.
// Runs share no mutable state; each synthetic run owns its seeded random
// source, so results are reproducible regardless of scheduling order.
func (e *Engine) RunMany(ctx context.Context, jobs []Job, workers int) (map[string]*models.BacktestResult, error) {
	results := make(map[string]*models.BacktestResult, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	pool := performance.NewWorkerPool(workers)
	pool.Start()
	defer pool.Stop()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)

	for _, job := range jobs {
		job := job
		wg.Add(1)
		task := func() {
			defer wg.Done()
			result, err := e.Run(ctx, job.Config)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("backtest %q: %w", job.Name, err)
				}
				return
			}
			results[job.Name] = result
		}
		if !pool.Submit(task) {
			wg.Done()
			return nil, fmt.Errorf("backtest %q: worker pool rejected job", job.Name)
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
