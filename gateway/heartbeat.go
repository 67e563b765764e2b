package gateway

import (
	"context"
	"time"
)

// heartbeatSender pushes a Heartbeat onto the machine's outbound control
// path. Machine supplies a closure that forwards to (*Machine).sendControl.
type heartbeatSender func(ctx context.Context, msg HeartbeatMessage) error

// Heartbeat drives the periodic liveness protocol described in spec.md
// §4.3/§4.4: an immediate first beat, then one beat per interval, failing
// the session the moment a beat finds the prior one still unacknowledged.
// Grounded on wrapper/session_heartbeat.go's pulse/beat/respond split, with
// the acks counter replaced by state's ackPending flag.
type Heartbeat struct {
	interval time.Duration
	state    *State
	send     heartbeatSender
}

// NewHeartbeat constructs a Heartbeat for the interval announced in Hello.
func NewHeartbeat(intervalMS int, state *State, send heartbeatSender) *Heartbeat {
	return &Heartbeat{
		interval: time.Duration(intervalMS) * time.Millisecond,
		state:    state,
		send:     send,
	}
}

// Run beats once immediately and then on every tick of the interval,
// returning a LivenessTimeoutError the first time a tick finds the prior
// beat unacknowledged. It returns when ctx is cancelled or a beat fails to
// send.
func (h *Heartbeat) Run(ctx context.Context) error {
	if err := h.tick(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := h.tick(ctx); err != nil {
				return err
			}
		}
	}
}

// tick fails the heartbeat if the previous beat was never acknowledged,
// otherwise sends a new beat and marks it pending.
func (h *Heartbeat) tick(ctx context.Context) error {
	if h.state.AckPending() {
		return LivenessTimeoutError{}
	}

	h.state.SetAckPending(true)

	return h.send(ctx, HeartbeatMessage{Seq: h.state.LastSeq()})
}

// OnAck must be called whenever a HeartbeatACK arrives, clearing the pending
// flag so the next tick may proceed. A server-initiated Heartbeat request is
// not an ack: the machine answers it by calling tick directly.
func (h *Heartbeat) OnAck() {
	h.state.OnHeartbeatAck()
}
