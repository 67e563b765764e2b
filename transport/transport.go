// Package transport adapts github.com/switchupcb/websocket to the
// gateway.Transport interface, so the session state machine depends only
// on "a byte-message duplex" and never imports a WebSocket library
// directly. Grounded on wrapper/socket/socket.go's direct use of
// websocket.Conn.Reader/Writer.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/switchupcb/websocket"

	"github.com/corvusdev/gatelink/gateway"
)

// WebSocket wraps a dialed *websocket.Conn to satisfy gateway.Transport.
type WebSocket struct {
	conn *websocket.Conn
}

// Dial connects to endpoint and returns a ready gateway.Transport.
// Grounded on wrapper/session.go's websocket.Dial(s.Context, s.Endpoint, nil).
func Dial(ctx context.Context, endpoint string) (*WebSocket, error) {
	conn, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", endpoint, err)
	}

	return &WebSocket{conn: conn}, nil
}

func (w *WebSocket) ReadMessage(ctx context.Context) (gateway.MessageKind, io.Reader, error) {
	kind, reader, err := w.conn.Reader(ctx)
	if err != nil {
		var closeErr websocket.CloseError
		if errors.As(err, &closeErr) {
			if isGracefulClose(closeErr.Code) {
				return 0, nil, io.EOF
			}

			if !Resumable(int(closeErr.Code)) {
				return 0, nil, gateway.NonResumableCloseError{Code: int(closeErr.Code)}
			}
		}

		return 0, nil, err
	}

	switch kind {
	case websocket.MessageText:
		return gateway.MessageText, reader, nil
	case websocket.MessageBinary:
		return gateway.MessageBinary, reader, nil
	default:
		return 0, nil, fmt.Errorf("transport: unexpected message type %v", kind)
	}
}

func (w *WebSocket) WriteMessage(ctx context.Context, kind gateway.MessageKind, data []byte) error {
	var wsKind websocket.MessageType

	switch kind {
	case gateway.MessageText:
		wsKind = websocket.MessageText
	case gateway.MessageBinary:
		wsKind = websocket.MessageBinary
	default:
		return fmt.Errorf("transport: unexpected message kind %v", kind)
	}

	writer, err := w.conn.Writer(ctx, wsKind)
	if err != nil {
		return err
	}

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()

		return err
	}

	return writer.Close()
}

func (w *WebSocket) Close(code int, reason string) error {
	return w.conn.Close(websocket.StatusCode(code), reason)
}

// isGracefulClose reports whether a close code represents a clean end of
// the stream rather than a failure the session should propagate, mirroring
// wrapper/session.go's handling of FlagClientCloseEventCodeNormal/Away.
func isGracefulClose(code websocket.StatusCode) bool {
	switch int(code) {
	case FlagClientCloseEventCodeNormal, FlagClientCloseEventCodeAway:
		return true
	default:
		return false
	}
}
