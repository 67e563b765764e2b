package gateway

import (
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// init mirrors the teacher's wrapper/log.go: quiet by default, nanosecond
// timestamps so log lines interleave correctly under concurrent goroutines.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Logger is the package-level logger used by gateway and supervisor. Callers may replace it (e.g. with a multi-writer) before
// connecting.
var Logger = zerolog.New(os.Stdout)

// Log context keys, named after wrapper/log.go's LogCtx* constants.
const (
	logCtxCorrelation = "xid"
	logCtxSession     = "session"
	logCtxPayload     = "payload"
	logCtxOpcode      = "opcode"
	logCtxData        = "data"
	logCtxEvent       = "event"
)

// logSession returns a log event scoped to a session and its correlation id.
func logSession(log *zerolog.Event, xid, sessionID string) *zerolog.Event {
	return log.Timestamp().Str(logCtxCorrelation, xid).Str(logCtxSession, sessionID)
}

// logPayload attaches opcode and data fields, mirroring wrapper/log.go's
// LogPayload.
func logPayload(log *zerolog.Event, op int, data json.RawMessage) *zerolog.Event {
	return log.Dict(logCtxPayload, zerolog.Dict().
		Int(logCtxOpcode, op).
		Bytes(logCtxData, data),
	)
}

// logDispatch attaches the dispatch event name.
func logDispatch(log *zerolog.Event, eventName string) *zerolog.Event {
	return log.Str(logCtxEvent, eventName)
}
