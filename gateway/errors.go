package gateway

import (
	"errors"
	"fmt"
)

// Error actions, mirroring the teacher's ErrorEvent.Action vocabulary.
const (
	ActionRead      = "reading"
	ActionWrite     = "writing"
	ActionMarshal   = "marshalling"
	ActionUnmarshal = "unmarshalling"
)

// DecodeErrorKind distinguishes the ways an inbound payload can fail to decode.
type DecodeErrorKind int

const (
	// DecodeErrorBadJSON indicates the payload was not valid JSON.
	DecodeErrorBadJSON DecodeErrorKind = iota

	// DecodeErrorUnknownOp indicates the payload used an opcode this client
	// does not understand. The message is ignored rather than failing the
	// session (see machine.go).
	DecodeErrorUnknownOp

	// DecodeErrorBadDispatch indicates well-formed JSON whose data payload
	// did not match the structure its opcode promised (a Dispatch missing
	// its sequence number or event name, or a malformed Hello, Heartbeat or
	// InvalidSession payload).
	DecodeErrorBadDispatch
)

// DecodeError represents a failure to decode an inbound Gateway payload.
type DecodeError struct {
	Kind DecodeErrorKind
	Op   int
	Err  error
}

func (e DecodeError) Error() string {
	switch e.Kind {
	case DecodeErrorUnknownOp:
		return fmt.Sprintf("gateway: unknown opcode %d", e.Op)
	case DecodeErrorBadDispatch:
		return fmt.Errorf("gateway: bad dispatch payload: %w", e.Err).Error()
	default:
		return fmt.Errorf("gateway: bad payload: %w", e.Err).Error()
	}
}

func (e DecodeError) Unwrap() error { return e.Err }

// EncodingTooLargeError is returned by encode when the serialised payload
// is 4096 bytes or more, the Gateway's outbound frame limit.
type EncodingTooLargeError struct {
	Size int
}

func (e EncodingTooLargeError) Error() string {
	return fmt.Sprintf("gateway: outbound payload of %d bytes is not under the 4096-byte limit", e.Size)
}

// InvalidPayloadError is returned when an outbound payload fails a
// structural precondition beyond the size cap (e.g. a StatusUpdate carrying
// an activity type bots may not broadcast).
type InvalidPayloadError struct {
	Reason string
}

func (e InvalidPayloadError) Error() string {
	return fmt.Sprintf("gateway: invalid outbound payload: %s", e.Reason)
}

// LivenessTimeoutError indicates a heartbeat tick found the prior heartbeat
// unacknowledged by the peer.
type LivenessTimeoutError struct{}

func (e LivenessTimeoutError) Error() string {
	return "gateway: no HeartbeatACK received since the prior heartbeat"
}

// AbruptTerminationError indicates the host stream was torn down without an
// orderly close (e.g. the process is exiting) while futures were pending.
type AbruptTerminationError struct{}

func (e AbruptTerminationError) Error() string {
	return "gateway: session terminated abruptly"
}

// TransportError wraps a failure surfaced by the underlying Transport.
type TransportError struct {
	Err error
}

func (e TransportError) Error() string {
	return fmt.Errorf("gateway: transport error: %w", e.Err).Error()
}

func (e TransportError) Unwrap() error { return e.Err }

// ProtocolViolationError indicates a message arrived in a state the
// Discord Gateway protocol does not allow, e.g. a Dispatch before Hello.
type ProtocolViolationError struct {
	Reason string
}

func (e ProtocolViolationError) Error() string {
	return fmt.Sprintf("gateway: protocol violation: %s", e.Reason)
}

// NonResumableCloseError indicates the transport observed a Gateway close
// code that the Discord docs mark as not safe to resume from (e.g.
// AuthenticationFailed, InvalidSeq). A Transport implementation returns
// this from ReadMessage so the machine discards resume data instead of
// carrying it into the next connection attempt.
type NonResumableCloseError struct {
	Code int
}

func (e NonResumableCloseError) Error() string {
	return fmt.Sprintf("gateway: non-resumable close code %d", e.Code)
}

// ErrDispatchClosed is returned by a Sink to signal that the downstream
// consumer is gone; the machine treats this as a clean termination that keeps
// the current resume data and does not ask for a wait (the "downstream
// cancel" path of the state machine).
var ErrDispatchClosed = errors.New("gateway: dispatch sink closed")

// errMissingDispatchFields indicates a Dispatch envelope arrived without
// both a sequence number and an event name.
var errMissingDispatchFields = errors.New("gateway: dispatch payload missing sequence number or event name")
