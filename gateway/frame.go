package gateway

import (
	"compress/zlib"
	"context"
	"fmt"
	"io"
)

// MessageKind distinguishes the two WebSocket frame kinds the Gateway
// uses, mirroring switchupcb/websocket's MessageType values so a Transport
// implementation backed by that library needs no translation.
type MessageKind int

const (
	MessageText   MessageKind = 1
	MessageBinary MessageKind = 2
)

// Transport is the byte-message duplex the core depends on (spec.md §1:
// "the WebSocket connection is consumed as a byte-message duplex"). A
// concrete implementation lives in the transport package, backed by
// github.com/switchupcb/websocket; tests substitute a fake.
type Transport interface {
	// ReadMessage blocks until the next inbound frame is available,
	// returning its kind and a reader over its body.
	ReadMessage(ctx context.Context) (MessageKind, io.Reader, error)

	// WriteMessage sends a single outbound frame of the given kind.
	WriteMessage(ctx context.Context, kind MessageKind, data []byte) error

	// Close tears down the connection, sending code/reason as a WebSocket
	// close frame when the connection is still healthy enough to do so.
	Close(code int, reason string) error
}

// readFrame reads one inbound frame from t, inflating zlib-compressed
// binary frames, and decodes it into a Message. Grounded on
// wrapper/socket/socket.go's Read, generalized from "unmarshal into dst"
// to "decode into a tagged Message" since this module's wire types are a
// closed Message interface rather than per-call destination pointers.
func readFrame(ctx context.Context, t Transport) (Message, error) {
	kind, reader, err := t.ReadMessage(ctx)
	if err != nil {
		return nil, TransportError{Err: err}
	}

	buf := getBuffer()
	defer putBuffer(buf)

	switch kind {
	case MessageText:
		if _, err := buf.ReadFrom(reader); err != nil {
			return nil, TransportError{Err: fmt.Errorf("%s: %w", ActionRead, err)}
		}

	case MessageBinary:
		zr, err := zlib.NewReader(reader)
		if err != nil {
			return nil, TransportError{Err: fmt.Errorf("%s: zlib: %w", ActionRead, err)}
		}
		defer zr.Close()

		if _, err := buf.ReadFrom(zr); err != nil {
			return nil, TransportError{Err: fmt.Errorf("%s: %w", ActionRead, err)}
		}

	default:
		return nil, TransportError{Err: fmt.Errorf("received unknown message kind %d from transport", kind)}
	}

	msg, err := decode(buf.Bytes())
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// writeFrame encodes msg and writes it to t as a single text frame. The
// client always sends text regardless of whether the inbound stream is
// zlib-compressed binary (spec.md §6); only the Gateway ever sends
// compressed binary frames.
func writeFrame(ctx context.Context, t Transport, msg Message) error {
	data, err := encode(msg)
	if err != nil {
		return err
	}

	if err := t.WriteMessage(ctx, MessageText, data); err != nil {
		return TransportError{Err: fmt.Errorf("%s: %w", ActionWrite, err)}
	}

	return nil
}
