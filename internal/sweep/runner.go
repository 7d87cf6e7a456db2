// Package sweep runs batches of independent backtest trials in
// parallel. Each trial owns its engine and portfolio state; only the
// immutable price history is shared. A failing trial records its
// error and never cancels its siblings.
package sweep

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/schlafen318/dual-momentum-sub001/internal/backtest"
	"github.com/schlafen318/dual-momentum-sub001/pkg/logger"
)

// TrialFunc executes one fully-specified backtest.
type TrialFunc func(ctx context.Context) (*backtest.Result, error)

// Trial is one unit of sweep work.
type Trial struct {
	// Name identifies the trial in results and logs, typically the
	// parameter combination ("lookback=120,top_n=2").
	Name string

	Run TrialFunc
}

// TrialResult pairs a trial with its outcome. Exactly one of Result
// and Err is set.
type TrialResult struct {
	Index   int              `json:"index"`
	Name    string           `json:"name"`
	Result  *backtest.Result `json:"result,omitempty"`
	Err     error            `json:"-"`
	Elapsed time.Duration    `json:"elapsed"`
}

// Failed reports whether the trial ended in an error.
func (r TrialResult) Failed() bool { return r.Err != nil }

// Runner schedules trials over a bounded worker pool
// ⭐ SSOT: 병렬 실행은 여기서만, 엔진은 트라이얼당 1개
type Runner struct {
	workers int
	log     *logger.Logger
}

// NewRunner creates a runner. Workers <= 0 means one per CPU.
func NewRunner(workers int, log *logger.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{workers: workers, log: log}
}

// Run executes every trial and returns results ordered by trial
// index. Cancelling the context stops scheduling new trials and is
// recorded as the error of every trial that never ran.
func (r *Runner) Run(ctx context.Context, trials []Trial) []TrialResult {
	results := make([]TrialResult, len(trials))
	if len(trials) == 0 {
		return results
	}

	r.log.WithFields(map[string]interface{}{
		"trials":  len(trials),
		"workers": r.workers,
	}).Info("Sweep started")
	started := time.Now()

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i := range trials {
		i := i
		trial := trials[i]
		g.Go(func() error {
			results[i] = r.runOne(ctx, i, trial)
			return nil
		})
	}
	// Trial errors live in the results, never in the group.
	_ = g.Wait()

	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}
	r.log.WithFields(map[string]interface{}{
		"trials":  len(trials),
		"failed":  failed,
		"elapsed": time.Since(started).String(),
	}).Info("Sweep completed")

	return results
}

func (r *Runner) runOne(ctx context.Context, index int, trial Trial) TrialResult {
	out := TrialResult{Index: index, Name: trial.Name}

	select {
	case <-ctx.Done():
		out.Err = ctx.Err()
		return out
	default:
	}

	started := time.Now()
	result, err := trial.Run(ctx)
	out.Elapsed = time.Since(started)

	if err != nil {
		out.Err = err
		r.log.WithError(err).WithFields(map[string]interface{}{
			"trial": trial.Name,
			"index": index,
		}).Warn("Trial failed")
		return out
	}
	out.Result = result
	return out
}
