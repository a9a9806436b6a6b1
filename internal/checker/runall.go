package checker

import (
	"context"
	"sync"

	"buildcheck.io/buildcheck/internal/pkg/worker"
	"buildcheck.io/buildcheck/internal/report"
)

// TargetResult pairs a target directory with its check outcome. Report
// is nil exactly when Err is set.
type TargetResult struct {
	Target string
	Report *report.Report
	Err    error
}

// RunAll checks every target concurrently on the pool. Results come
// back in input order regardless of completion order. Targets are
// independent: one load failure never suppresses another target's
// report.
func (c *Checker) RunAll(ctx context.Context, pool *worker.Pool, targets []string) []TargetResult {
	results := make([]TargetResult, len(targets))

	// The pool drops queued tasks whose submission context is cancelled,
	// which would leave the join hanging. Submit with a background
	// context and handle cancellation inside the task instead.
	var wg sync.WaitGroup
	for i, target := range targets {
		i, target := i, target
		if err := ctx.Err(); err != nil {
			results[i] = TargetResult{Target: target, Err: err}
			continue
		}

		wg.Add(1)
		err := pool.Submit(context.Background(), func(context.Context) {
			defer wg.Done()
			rep, err := c.CheckTarget(ctx, target)
			results[i] = TargetResult{Target: target, Report: rep, Err: err}
		})
		if err != nil {
			wg.Done()
			results[i] = TargetResult{Target: target, Err: err}
		}
	}
	wg.Wait()

	return results
}
