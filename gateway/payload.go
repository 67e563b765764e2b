package gateway

import (
	"runtime"
	"strconv"

	json "github.com/goccy/go-json"
)

// maxOutboundFrameBytes is the Discord Gateway's outbound frame size limit.
// https://discord.com/developers/docs/topics/gateway#sending-events
const maxOutboundFrameBytes = 4096

// Gateway Opcodes.
// https://discord.com/developers/docs/topics/opcodes-and-status-codes#gateway-gateway-opcodes
const (
	OpDispatch            = 0
	OpHeartbeat           = 1
	OpIdentify            = 2
	OpPresenceUpdate      = 3
	OpVoiceStateUpdate    = 4
	OpResume              = 6
	OpReconnect           = 7
	OpRequestGuildMembers = 8
	OpInvalidSession      = 9
	OpHello               = 10
	OpHeartbeatACK        = 11
)

// Dispatch event names the machine assigns meaning to. All other event
// names pass through the tee opaque to the core (spec.md §3's DispatchEvent).
const (
	EventNameReady   = "READY"
	EventNameResumed = "RESUMED"
)

// envelope is the wire-level Gateway Payload Structure.
// https://discord.com/developers/docs/topics/gateway#payloads-gateway-payload-structure
type envelope struct {
	Op    int             `json:"op"`
	Data  json.RawMessage `json:"d,omitempty"`
	Seq   *int64          `json:"s,omitempty"`
	Event *string         `json:"t,omitempty"`
}

// Message is the tagged variant over Gateway opcodes described in spec.md §3.
// Concrete implementations are the *Message types below; machine.go
// type-switches over them.
type Message interface {
	opcode() int
}

// HelloMessage is sent once by the server immediately after connecting.
type HelloMessage struct {
	HeartbeatIntervalMS int
}

func (HelloMessage) opcode() int { return OpHello }

// IdentifyConnectionProperties describes the client to the Gateway.
type IdentifyConnectionProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// IdentifyMessage is the client's initial handshake.
type IdentifyMessage struct {
	Token              string                       `json:"token"`
	Properties         IdentifyConnectionProperties `json:"properties"`
	Compress           bool                         `json:"compress,omitempty"`
	LargeThreshold     int                          `json:"large_threshold,omitempty"`
	Shard              *[2]int                      `json:"shard,omitempty"`
	Presence           *GatewayPresenceUpdate       `json:"presence,omitempty"`
	GuildSubscriptions bool                         `json:"guild_subscriptions,omitempty"`
	Intents            uint64                       `json:"intents"`
}

func (IdentifyMessage) opcode() int { return OpIdentify }

// ResumeMessage re-attaches to a prior session.
type ResumeMessage struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
}

func (ResumeMessage) opcode() int { return OpResume }

// HeartbeatMessage carries the last observed sequence number, sent in
// either direction.
type HeartbeatMessage struct {
	Seq *int64 `json:"d"`
}

func (HeartbeatMessage) opcode() int { return OpHeartbeat }

// MarshalJSON encodes a Heartbeat as its bare sequence number (or null),
// which is what the envelope's "d" field carries for this opcode.
func (h HeartbeatMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Seq)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (h *HeartbeatMessage) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &h.Seq)
}

// HeartbeatAckMessage acknowledges a client Heartbeat.
type HeartbeatAckMessage struct{}

func (HeartbeatAckMessage) opcode() int { return OpHeartbeatACK }

// DispatchMessage is a server-initiated application event. Raw is the
// undecoded event payload, forwarded to the dispatch sink untouched; the
// machine only attempts to decode it further for Ready (see Ready below).
type DispatchMessage struct {
	Seq       int64
	EventName string
	Raw       json.RawMessage
}

func (DispatchMessage) opcode() int { return OpDispatch }

// Ready carries the fields the core cares about from a READY dispatch; all
// other Ready fields are opaque to the core and remain in Raw for the sink.
type Ready struct {
	SessionID string `json:"session_id"`
}

// Resumed carries no state-relevant fields.
type Resumed struct{}

// ReconnectMessage asks the client to disconnect and resume.
type ReconnectMessage struct{}

func (ReconnectMessage) opcode() int { return OpReconnect }

// InvalidSessionMessage declares that the current session is invalid;
// Resumable governs whether the client may attempt a Resume.
type InvalidSessionMessage struct {
	Resumable bool
}

func (InvalidSessionMessage) opcode() int { return OpInvalidSession }

// StatusUpdateMessage is an outbound presence update. It embeds
// GatewayPresenceUpdate directly (rather than nesting it under a named
// field) so its JSON encoding is the presence object itself, matching the
// Gateway's flat "d" payload for this opcode.
type StatusUpdateMessage struct {
	GatewayPresenceUpdate
}

func (StatusUpdateMessage) opcode() int { return OpPresenceUpdate }

// RequestGuildMembersMessage requests a guild's member list over the
// Gateway. Passthrough outbound: the core never inspects its fields.
type RequestGuildMembersMessage struct {
	GuildID   string   `json:"guild_id"`
	Query     *string  `json:"query,omitempty"`
	Limit     int      `json:"limit"`
	Presences *bool    `json:"presences,omitempty"`
	UserIDs   []string `json:"user_ids,omitempty"`
	Nonce     *string  `json:"nonce,omitempty"`
}

func (RequestGuildMembersMessage) opcode() int { return OpRequestGuildMembers }

// VoiceStateUpdateMessage requests a voice channel join/leave over the
// Gateway. Passthrough outbound: the core never inspects its fields.
type VoiceStateUpdateMessage struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	SelfMute  bool   `json:"self_mute"`
	SelfDeaf  bool   `json:"self_deaf"`
}

func (VoiceStateUpdateMessage) opcode() int { return OpVoiceStateUpdate }

// GatewayPresenceUpdate is the client's self-presence.
// https://discord.com/developers/docs/topics/gateway-events#update-presence
type GatewayPresenceUpdate struct {
	Since      *int64     `json:"since"`
	Status     string     `json:"status"`
	Activities []Activity `json:"activities"`
	AFK        bool       `json:"afk"`
}

// Activity status types a bot presence may broadcast.
// https://discord.com/developers/docs/topics/gateway-events#activity-object-activity-types
const (
	ActivityTypePlaying   = 0
	ActivityTypeStreaming = 1
	ActivityTypeListening = 2
	ActivityTypeWatching  = 3
	ActivityTypeCustom    = 4
	ActivityTypeCompeting = 5
)

// Activity is a reduced projection of Discord's Activity Object — only the
// fields a bot presence update needs.
type Activity struct {
	Name  string  `json:"name"`
	Type  int     `json:"type"`
	URL   *string `json:"url,omitempty"`
	State *string `json:"state,omitempty"`
}

// canSend reports whether a bot is permitted to broadcast this activity
// type over the Gateway. Discord rejects Custom and Streaming activities
// from bot presence updates; this is the "can-send" predicate design
// note 9c leaves unspecified by the original.
func (a Activity) canSend() bool {
	switch a.Type {
	case ActivityTypePlaying, ActivityTypeListening, ActivityTypeWatching, ActivityTypeCompeting:
		return true
	default:
		return false
	}
}

// encode serialises msg to its wire envelope, enforcing the 4096-byte
// outbound cap and the StatusUpdate can-send precondition.
func encode(msg Message) ([]byte, error) {
	if su, ok := msg.(StatusUpdateMessage); ok {
		for _, activity := range su.Activities {
			if !activity.canSend() {
				return nil, InvalidPayloadError{Reason: "activity type " + strconv.Itoa(activity.Type) + " may not be sent by a bot presence update"}
			}
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(envelope{Op: msg.opcode(), Data: data})
	if err != nil {
		return nil, err
	}

	if len(out) >= maxOutboundFrameBytes {
		return nil, EncodingTooLargeError{Size: len(out)}
	}

	return out, nil
}

// decode parses a raw Gateway frame into a typed Message.
func decode(text []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(text, &env); err != nil {
		return nil, DecodeError{Kind: DecodeErrorBadJSON, Err: err}
	}

	switch env.Op {
	case OpHello:
		var hello struct {
			HeartbeatInterval int `json:"heartbeat_interval"`
		}
		if err := json.Unmarshal(env.Data, &hello); err != nil {
			return nil, DecodeError{Kind: DecodeErrorBadDispatch, Op: env.Op, Err: err}
		}

		return HelloMessage{HeartbeatIntervalMS: hello.HeartbeatInterval}, nil

	case OpDispatch:
		if env.Seq == nil || env.Event == nil {
			return nil, DecodeError{Kind: DecodeErrorBadDispatch, Op: env.Op, Err: errMissingDispatchFields}
		}

		return DispatchMessage{Seq: *env.Seq, EventName: *env.Event, Raw: env.Data}, nil

	case OpHeartbeat:
		var hb HeartbeatMessage
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &hb); err != nil {
				return nil, DecodeError{Kind: DecodeErrorBadDispatch, Op: env.Op, Err: err}
			}
		}

		return hb, nil

	case OpHeartbeatACK:
		return HeartbeatAckMessage{}, nil

	case OpReconnect:
		return ReconnectMessage{}, nil

	case OpInvalidSession:
		var resumable bool
		if err := json.Unmarshal(env.Data, &resumable); err != nil {
			return nil, DecodeError{Kind: DecodeErrorBadDispatch, Op: env.Op, Err: err}
		}

		return InvalidSessionMessage{Resumable: resumable}, nil

	default:
		return nil, DecodeError{Kind: DecodeErrorUnknownOp, Op: env.Op}
	}
}

// decodeReady extracts the Ready fields relevant to session state.
func decodeReady(raw json.RawMessage) (Ready, error) {
	var ready Ready
	err := json.Unmarshal(raw, &ready)

	return ready, err
}

// clientProperties builds IdentifyConnectionProperties the way
// wrapper/session.go's initial() does, from the running process.
func clientProperties() IdentifyConnectionProperties {
	return IdentifyConnectionProperties{
		OS:      runtime.GOOS,
		Browser: modulePath,
		Device:  modulePath,
	}
}

const modulePath = "github.com/corvusdev/gatelink"
