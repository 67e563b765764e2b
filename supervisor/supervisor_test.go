package supervisor

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/corvusdev/gatelink/gateway"
)

func TestDefaultBackoffGrowsAndCaps(t *testing.T) {
	if got := DefaultBackoff(0); got != time.Second {
		t.Fatalf("got %v, want 1s on the first attempt", got)
	}

	if got := DefaultBackoff(4); got != 5*time.Second {
		t.Fatalf("got %v, want 5s on the fifth attempt", got)
	}

	if got := DefaultBackoff(1000); got != 30*time.Second {
		t.Fatalf("got %v, want the 30s ceiling for a large attempt count", got)
	}
}

// blockingTransport never produces a frame; ReadMessage only returns once
// ctx is cancelled, simulating a connection that is alive but silent.
type blockingTransport struct{}

func (blockingTransport) ReadMessage(ctx context.Context) (gateway.MessageKind, io.Reader, error) {
	<-ctx.Done()

	return 0, nil, ctx.Err()
}

func (blockingTransport) WriteMessage(ctx context.Context, kind gateway.MessageKind, data []byte) error {
	return nil
}

func (blockingTransport) Close(code int, reason string) error { return nil }

type discardSink struct{}

func (discardSink) Dispatch(ctx context.Context, msg gateway.Message) error { return nil }

func TestRunStopsWhenContextCancelled(t *testing.T) {
	build := func(ctx context.Context, prior *gateway.ResumeData) (*gateway.Machine, error) {
		external := make(chan gateway.Message)
		return gateway.NewMachine(gateway.GatewaySettings{Token: "tok"}, prior, blockingTransport{}, discardSink{}, external), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	err := Run(ctx, build, nil)
	if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want a context cancellation error", err)
	}
}

func TestRunPropagatesFactoryError(t *testing.T) {
	boom := errors.New("boom")

	build := func(ctx context.Context, prior *gateway.ResumeData) (*gateway.Machine, error) {
		return nil, boom
	}

	err := Run(context.Background(), build, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want %v", err, boom)
	}
}

