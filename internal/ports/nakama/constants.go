package nakama

const (
	// RpcQuickMatch pairs a client with any open public match, creating one
	// when none is waiting.
	RpcQuickMatch = "quick_match"
	// RpcCreateInvite creates a private match plus an invite record and token.
	RpcCreateInvite = "create_invite"
	// RpcAcceptInvite redeems an invite token for its match id.
	RpcAcceptInvite = "accept_invite"

	// MatchNameChess21 is the authoritative match handler name registered with
	// Nakama.
	MatchNameChess21 = "chess21_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpSubmitMove  int64 = 1
	OpDrawCard    int64 = 2
	OpStand       int64 = 3
	OpToggleClock int64 = 4

	// Server -> Client events
	OpMatchAssigned int64 = 101
	OpMatchReady    int64 = 102
	OpMoveApplied   int64 = 103
	OpMoveRejected  int64 = 104
	OpDuelStarted   int64 = 105
	OpDuelUpdate    int64 = 106
	OpResolution    int64 = 107
	OpClockUpdate   int64 = 108
	OpOpponentLeft  int64 = 109
)
