package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corvusdev/gatelink/gateway"
)

func TestSinkDispatchAndDrain(t *testing.T) {
	sink := NewSink(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := sink.Dispatch(ctx, gateway.HeartbeatAckMessage{}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	select {
	case msg := <-sink.Messages():
		if _, ok := msg.(gateway.HeartbeatAckMessage); !ok {
			t.Fatalf("got %T, want HeartbeatAckMessage", msg)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for dispatched message")
	}
}

func TestSinkDispatchBlocksWhenFull(t *testing.T) {
	sink := NewSink(1)

	ctx := context.Background()
	if err := sink.Dispatch(ctx, gateway.HeartbeatAckMessage{}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	blockedCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := sink.Dispatch(blockedCtx, gateway.HeartbeatAckMessage{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want context.DeadlineExceeded (sink full, no consumer)", err)
	}
}

func TestSinkCloseSignalsDoneAndRejectsFurtherDispatch(t *testing.T) {
	sink := NewSink(0)

	sink.Close()

	select {
	case <-sink.Done():
	default:
		t.Fatal("Done should be readable immediately after Close")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := sink.Dispatch(ctx, gateway.HeartbeatAckMessage{}); !errors.Is(err, gateway.ErrDispatchClosed) {
		t.Fatalf("got %v, want ErrDispatchClosed", err)
	}
}
