// Package supervisor implements the reconnect/backoff loop that owns a
// sequence of gateway.Machine runs, the external collaborator spec.md §1
// describes as "consumes the completion value of a session." Grounded on
// wrapper/session.go's reconnect()/Reconnect() and session_manager.go's
// invalidSessionWaitTime wait-before-retry, generalized into a growing,
// capped backoff (a function of the attempt count) the way other_examples'
// arikawa gateway.go's ReconnectDelay does.
package supervisor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/corvusdev/gatelink/gateway"
)

// Factory builds a new Machine for the next connection attempt, given the
// resume data carried over from the previous one (nil on the very first
// attempt).
type Factory func(ctx context.Context, prior *gateway.ResumeData) (*gateway.Machine, error)

// Backoff computes the wait-before-reconnect delay for the nth consecutive
// failed attempt (0-indexed), matching the shape of
// other_examples' ReconnectDelay option.
type Backoff func(attempt int) time.Duration

// DefaultBackoff waits one second on invalid-session/rate-limit style
// terminations, matching wrapper/session.go's fixed invalidSessionWaitTime,
// then grows by a second per consecutive failure up to a 30-second cap.
func DefaultBackoff(attempt int) time.Duration {
	wait := time.Duration(1+attempt) * time.Second

	const ceiling = 30 * time.Second
	if wait > ceiling {
		wait = ceiling
	}

	return wait
}

// Run drives an unbounded sequence of sessions: build, run to completion,
// honor the outcome's Wait hint, and rebuild with carried resume data.
// It returns only when ctx is cancelled or build returns an error.
func Run(ctx context.Context, build Factory, backoff Backoff) error {
	if backoff == nil {
		backoff = DefaultBackoff
	}

	var prior *gateway.ResumeData

	var attempt atomic.Int32

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		machine, err := build(ctx, prior)
		if err != nil {
			return fmt.Errorf("supervisor: building session: %w", err)
		}

		runErr := make(chan error, 1)
		go func() { runErr <- machine.Run(ctx) }()

		// Started resolves independently of Outcome; watch it in the
		// background so a session that never reaches Ready/Resumed can't
		// block the outcome wait below.
		go func() {
			if v, err := machine.Started().Wait(ctx); err == nil && v == nil {
				attempt.Store(0)
			}
		}()

		outcome, outcomeErr := machine.Outcome().Wait(ctx)
		if outcomeErr != nil {
			return outcomeErr
		}

		<-runErr

		prior = outcome.Resume

		if outcome.Err != nil {
			attempt.Add(1)

			gateway.Logger.Warn().Err(outcome.Err).Msg("supervisor: session ended with error, reconnecting")
		}

		if outcome.Wait {
			select {
			case <-time.After(backoff(int(attempt.Load()))):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
