package transport

// Client-initiated WebSocket close codes.
// https://www.rfc-editor.org/rfc/rfc6455#section-7.4.1
const (
	FlagClientCloseEventCodeNormal    = 1000
	FlagClientCloseEventCodeAway      = 1001
	FlagClientCloseEventCodeReconnect = 3000
)

// GatewayCloseEventCode describes a Gateway-initiated close code: whether
// the client may resume after receiving it, and a human explanation.
// Grounded on disgo.go's GatewayCloseEventCode table.
type GatewayCloseEventCode struct {
	Code        int
	Resumable   bool
	Description string
	Explanation string
}

var (
	FlagGatewayCloseEventCodeUnknownError = GatewayCloseEventCode{
		Code: 4000, Resumable: true,
		Description: "Unknown error",
		Explanation: "We're not sure what went wrong. Try reconnecting?",
	}
	FlagGatewayCloseEventCodeUnknownOpcode = GatewayCloseEventCode{
		Code: 4001, Resumable: true,
		Description: "Unknown opcode",
		Explanation: "You sent an invalid Gateway opcode or an invalid payload for an opcode. Don't do that!",
	}
	FlagGatewayCloseEventCodeDecodeError = GatewayCloseEventCode{
		Code: 4002, Resumable: true,
		Description: "Decode error",
		Explanation: "You sent an invalid payload to us. Don't do that!",
	}
	FlagGatewayCloseEventCodeNotAuthenticated = GatewayCloseEventCode{
		Code: 4003, Resumable: false,
		Description: "Not authenticated",
		Explanation: "You sent us a payload prior to identifying.",
	}
	FlagGatewayCloseEventCodeAuthenticationFailed = GatewayCloseEventCode{
		Code: 4004, Resumable: false,
		Description: "Authentication failed",
		Explanation: "The account token sent with your identify payload is incorrect.",
	}
	FlagGatewayCloseEventCodeAlreadyAuthenticated = GatewayCloseEventCode{
		Code: 4005, Resumable: true,
		Description: "Already authenticated",
		Explanation: "You sent more than one identify payload. Don't do that!",
	}
	FlagGatewayCloseEventCodeInvalidSeq = GatewayCloseEventCode{
		Code: 4007, Resumable: false,
		Description: "Invalid seq",
		Explanation: "The sequence sent when resuming the session was invalid. Reconnect and start a new session.",
	}
	FlagGatewayCloseEventCodeRateLimited = GatewayCloseEventCode{
		Code: 4008, Resumable: true,
		Description: "Rate limited",
		Explanation: "You're sending payloads to us too quickly. Slow it down!",
	}
	FlagGatewayCloseEventCodeSessionTimed = GatewayCloseEventCode{
		Code: 4009, Resumable: false,
		Description: "Session timed out",
		Explanation: "Your session timed out. Reconnect and start a new one.",
	}
	FlagGatewayCloseEventCodeInvalidShard = GatewayCloseEventCode{
		Code: 4010, Resumable: false,
		Description: "Invalid shard",
		Explanation: "You sent us an invalid shard when identifying.",
	}
	FlagGatewayCloseEventCodeShardingRequired = GatewayCloseEventCode{
		Code: 4011, Resumable: false,
		Description: "Sharding required",
		Explanation: "The session would have handled too many guilds - you are required to shard your connection.",
	}
	FlagGatewayCloseEventCodeInvalidAPIVersion = GatewayCloseEventCode{
		Code: 4012, Resumable: false,
		Description: "Invalid API version",
		Explanation: "You sent an invalid version for the gateway.",
	}
	FlagGatewayCloseEventCodeInvalidIntent = GatewayCloseEventCode{
		Code: 4013, Resumable: false,
		Description: "Invalid intent(s)",
		Explanation: "You sent an invalid intent for a Gateway Intent.",
	}
	FlagGatewayCloseEventCodeDisallowedIntent = GatewayCloseEventCode{
		Code: 4014, Resumable: false,
		Description: "Disallowed intent(s)",
		Explanation: "You sent a disallowed intent for a Gateway Intent you have not been approved for.",
	}

	GatewayCloseEventCodes = map[int]*GatewayCloseEventCode{
		FlagGatewayCloseEventCodeUnknownError.Code:          &FlagGatewayCloseEventCodeUnknownError,
		FlagGatewayCloseEventCodeUnknownOpcode.Code:         &FlagGatewayCloseEventCodeUnknownOpcode,
		FlagGatewayCloseEventCodeDecodeError.Code:           &FlagGatewayCloseEventCodeDecodeError,
		FlagGatewayCloseEventCodeNotAuthenticated.Code:      &FlagGatewayCloseEventCodeNotAuthenticated,
		FlagGatewayCloseEventCodeAuthenticationFailed.Code:  &FlagGatewayCloseEventCodeAuthenticationFailed,
		FlagGatewayCloseEventCodeAlreadyAuthenticated.Code:  &FlagGatewayCloseEventCodeAlreadyAuthenticated,
		FlagGatewayCloseEventCodeInvalidSeq.Code:            &FlagGatewayCloseEventCodeInvalidSeq,
		FlagGatewayCloseEventCodeRateLimited.Code:           &FlagGatewayCloseEventCodeRateLimited,
		FlagGatewayCloseEventCodeSessionTimed.Code:          &FlagGatewayCloseEventCodeSessionTimed,
		FlagGatewayCloseEventCodeInvalidShard.Code:          &FlagGatewayCloseEventCodeInvalidShard,
		FlagGatewayCloseEventCodeShardingRequired.Code:      &FlagGatewayCloseEventCodeShardingRequired,
		FlagGatewayCloseEventCodeInvalidAPIVersion.Code:     &FlagGatewayCloseEventCodeInvalidAPIVersion,
		FlagGatewayCloseEventCodeInvalidIntent.Code:         &FlagGatewayCloseEventCodeInvalidIntent,
		FlagGatewayCloseEventCodeDisallowedIntent.Code:      &FlagGatewayCloseEventCodeDisallowedIntent,
	}
)

// Resumable reports whether a Gateway close code permits a Resume attempt,
// defaulting to true for unrecognised codes (matching Discord's documented
// "unknown codes are safe to resume after" guidance).
func Resumable(code int) bool {
	if c, ok := GatewayCloseEventCodes[code]; ok {
		return c.Resumable
	}

	return true
}
