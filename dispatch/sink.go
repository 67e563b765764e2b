// Package dispatch implements the downstream half of the gateway tee:
// a bounded Sink the session state machine forwards every inbound message
// to, and a thin command-refinement layer above it. Spec.md scopes the
// application cache/dispatch routing this package would normally own as
// "a secondary file... specified only as a sink contract" — this package
// is intentionally thin.
package dispatch

import (
	"context"

	"github.com/corvusdev/gatelink/gateway"
)

// Sink is a bounded gateway.Sink: every inbound message is pushed onto a
// buffered channel for a downstream consumer to drain. Grounded on the
// general shape of wrapper/session_listener.go's "go bot.handle(...)"
// dispatch call, generalized into an explicit bounded channel so
// backpressure (spec.md §5) is visible rather than hidden in a goroutine
// spawn per event.
type Sink struct {
	out  chan gateway.Message
	done chan struct{}
}

// NewSink constructs a Sink with the given channel capacity. A capacity of
// 0 gives the strictest backpressure: the state machine stalls until a
// consumer is actively receiving.
func NewSink(capacity int) *Sink {
	return &Sink{
		out:  make(chan gateway.Message, capacity),
		done: make(chan struct{}),
	}
}

// Dispatch implements gateway.Sink.
func (s *Sink) Dispatch(ctx context.Context, msg gateway.Message) error {
	select {
	case <-s.done:
		return gateway.ErrDispatchClosed
	default:
	}

	select {
	case s.out <- msg:
		return nil
	case <-s.done:
		return gateway.ErrDispatchClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Messages returns the channel a consumer drains. It is never closed, not
// even by Close, so a consumer must select on it alongside Done rather than
// range over it directly.
func (s *Sink) Messages() <-chan gateway.Message {
	return s.out
}

// Done reports when Close has been called, so a consumer's drain loop can
// stop selecting on Messages.
func (s *Sink) Done() <-chan struct{} {
	return s.done
}

// Close signals the machine that the downstream consumer is gone; the next
// Dispatch call (or one already blocked) returns ErrDispatchClosed. out is
// deliberately left open rather than closed, since Dispatch may still be
// mid-send when Close runs and closing a channel a sender is writing to
// panics.
func (s *Sink) Close() {
	close(s.done)
}
