package gateway

// GatewaySettings configures a Machine's handshake. It is read-only once
// passed to NewMachine; the machine never mutates it (spec.md §3).
type GatewaySettings struct {
	Token          string
	Shard          *[2]int
	LargeThreshold int
	Presence       *GatewayPresenceUpdate
	Intents        uint64
	GuildSubscribe bool
	LogReceivedWS  bool
	LogSentWS      bool
}
