package gateway

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeHeartbeat(t *testing.T) {
	seq := int64(42)

	data, err := encode(HeartbeatMessage{Seq: &seq})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	msg, err := decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	hb, ok := msg.(HeartbeatMessage)
	if !ok {
		t.Fatalf("decode returned %T, want HeartbeatMessage", msg)
	}

	if hb.Seq == nil || *hb.Seq != seq {
		t.Fatalf("got seq %v, want %d", hb.Seq, seq)
	}
}

func TestEncodeTooLarge(t *testing.T) {
	huge := strings.Repeat("x", maxOutboundFrameBytes)

	_, err := encode(IdentifyMessage{Token: huge})

	var tooLarge EncodingTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("got %v, want EncodingTooLargeError", err)
	}
}

func TestEncodeStatusUpdateRejectsCustomActivity(t *testing.T) {
	msg := StatusUpdateMessage{
		GatewayPresenceUpdate: GatewayPresenceUpdate{
			Status:     "online",
			Activities: []Activity{{Name: "Spotify", Type: ActivityTypeCustom}},
		},
	}

	_, err := encode(msg)

	var invalid InvalidPayloadError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidPayloadError", err)
	}
}

func TestEncodeStatusUpdateAllowsPlaying(t *testing.T) {
	msg := StatusUpdateMessage{
		GatewayPresenceUpdate: GatewayPresenceUpdate{
			Status:     "online",
			Activities: []Activity{{Name: "chess", Type: ActivityTypePlaying}},
		},
	}

	if _, err := encode(msg); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestDecodeHello(t *testing.T) {
	msg, err := decode([]byte(`{"op":10,"d":{"heartbeat_interval":45000}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	hello, ok := msg.(HelloMessage)
	if !ok {
		t.Fatalf("decode returned %T, want HelloMessage", msg)
	}

	if hello.HeartbeatIntervalMS != 45000 {
		t.Fatalf("got interval %d, want 45000", hello.HeartbeatIntervalMS)
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	_, err := decode([]byte(`{"op":99}`))

	var decErr DecodeError
	if !errors.As(err, &decErr) || decErr.Kind != DecodeErrorUnknownOp {
		t.Fatalf("got %v, want DecodeError{Kind: DecodeErrorUnknownOp}", err)
	}
}

func TestDecodeDispatchMissingFields(t *testing.T) {
	_, err := decode([]byte(`{"op":0,"d":{}}`))

	var decErr DecodeError
	if !errors.As(err, &decErr) || decErr.Kind != DecodeErrorBadDispatch {
		t.Fatalf("got %v, want DecodeError{Kind: DecodeErrorBadDispatch}", err)
	}
}

func TestDecodeBadJSON(t *testing.T) {
	_, err := decode([]byte(`not json`))

	var decErr DecodeError
	if !errors.As(err, &decErr) || decErr.Kind != DecodeErrorBadJSON {
		t.Fatalf("got %v, want DecodeError{Kind: DecodeErrorBadJSON}", err)
	}
}

func TestDecodeReadyExtractsSessionID(t *testing.T) {
	msg, err := decode([]byte(`{"op":0,"s":1,"t":"READY","d":{"session_id":"abc123"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	dispatch, ok := msg.(DispatchMessage)
	if !ok {
		t.Fatalf("decode returned %T, want DispatchMessage", msg)
	}

	ready, err := decodeReady(dispatch.Raw)
	if err != nil {
		t.Fatalf("decodeReady: %v", err)
	}

	if ready.SessionID != "abc123" {
		t.Fatalf("got session id %q, want abc123", ready.SessionID)
	}
}
