package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/poiesic/summarit/core"
)

// dispatch runs one model call per input on the worker pool and returns the
// outputs in input order. ordinals[i] names the summary or chunk input i was
// drawn from and is what a failure reports. Once a call fails for good no
// further calls are started; calls already running are allowed to finish,
// and the first failure is returned as a *core.ModelInvocationError.
func (p *Pipeline) dispatch(ctx context.Context, stage string, round int, inputs []string, ordinals []int, instructions string) ([]string, error) {
	logger := p.logger.With("stage", stage, "round", round)
	logger.Debug("dispatching calls", "calls", len(inputs))

	tracker := p.newTracker(stage, round, len(inputs))

	var (
		outputs  = make([]string, len(inputs))
		wg       sync.WaitGroup
		failed   atomic.Bool
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			failed.Store(true)
		})
	}

	for i, input := range inputs {
		if failed.Load() || ctx.Err() != nil {
			break
		}

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if failed.Load() {
				return
			}

			output, attempts, err := p.invoke(ctx, input, instructions)
			if err != nil {
				logger.Warn("model call failed", "ordinal", ordinals[i], "attempts", attempts, "err", err)
				fail(&core.ModelInvocationError{
					Stage:    stage,
					Round:    round,
					Ordinal:  ordinals[i],
					Attempts: attempts,
					Err:      err,
				})
				return
			}

			outputs[i] = output
			if tracker != nil {
				tracker.Increment(1)
			}
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("submit %s call %d: %w", stage, i, err))
		}
	}

	// Barrier: every call of this batch completes before we return.
	wg.Wait()

	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		if tracker != nil {
			tracker.Abort()
		}
		return nil, firstErr
	}

	if tracker != nil {
		tracker.Finish()
		logger.Debug("calls complete", "calls", len(inputs), "elapsed", tracker.Elapsed())
	}
	return outputs, nil
}

// invoke makes one model call with retries, each attempt bounded by
// CallTimeout. It returns the number of attempts made.
func (p *Pipeline) invoke(ctx context.Context, text, instructions string) (string, int, error) {
	var (
		output   string
		attempts int
	)

	err := RetryWithBackoff(ctx, func() error {
		attempts++
		callCtx, cancel := context.WithTimeout(ctx, p.config.CallTimeout)
		defer cancel()

		out, err := p.summarizer.Summarize(callCtx, text, instructions)
		if err != nil {
			return err
		}
		output = out
		return nil
	}, p.config.MaxAttempts, p.config.RetryDelay)

	return output, attempts, err
}

// newTracker returns a progress tracker for one batch, or nil when progress
// reporting is off.
func (p *Pipeline) newTracker(stage string, round, total int) *ProgressTracker {
	if p.progress == nil {
		return nil
	}

	label := stage
	if round > 0 {
		label = fmt.Sprintf("%s round %d", stage, round)
	}
	tracker := NewProgressTracker(p.progress, label, total, progressInterval)
	tracker.Start()
	return tracker
}
