package app

import "chess21/internal/domain"

// EventKind identifies emitted match events for dispatch to participants.
type EventKind string

const (
	EventMatchAssigned EventKind = "match_assigned"
	EventMatchReady    EventKind = "match_ready"
	EventMoveApplied   EventKind = "move_applied"
	EventMoveRejected  EventKind = "move_rejected"
	EventDuelStarted   EventKind = "duel_started"
	EventDuelUpdate    EventKind = "duel_update"
	EventResolution    EventKind = "resolution"
	EventClockUpdate   EventKind = "clock_update"
	EventOpponentLeft  EventKind = "opponent_left"
)

// Event is a match event with optional targeted recipients. Deferred events
// are held back by the dispatcher for the resolution-delay window before
// delivery; the state they describe is already applied.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // connection ids; empty means broadcast
	Deferred   bool
}

type MatchAssignedPayload struct {
	MatchID string `json:"match_id,omitempty"`
	Side    string `json:"side"` // "white" | "black"
}

type MatchReadyPayload struct {
	FEN      string       `json:"fen"`
	Captured domain.Tally `json:"captured"`
}

type MoveAppliedPayload struct {
	Move domain.Move  `json:"move"`
	FEN  string       `json:"fen"`
	Turn domain.Color `json:"turn"`
}

type MoveRejectedPayload struct {
	Reason string `json:"reason"`
}

type DuelStartedPayload struct {
	AttackerID    string             `json:"attacker_id"`
	DefenderID    string             `json:"defender_id"`
	AttackerHand  []domain.Card      `json:"attacker_hand"`
	HouseUpCard   domain.Card        `json:"house_up_card"`
	Move          domain.Move        `json:"move"`
	CaptureSquare string             `json:"capture_square"`
	Kind          domain.CaptureKind `json:"kind"`
}

type DuelUpdatePayload struct {
	AttackerHand  []domain.Card `json:"attacker_hand"`
	HouseHand     []domain.Card `json:"house_hand"`
	AttackerScore int           `json:"attacker_score"`
	HouseScore    int           `json:"house_score,omitempty"`
}

type ResolutionPayload struct {
	FEN         string       `json:"fen"`
	Turn        domain.Color `json:"turn"`
	AttackerWon bool         `json:"attacker_won"`
	Note        string       `json:"note,omitempty"`
	Ended       bool         `json:"ended"`
	EndMessage  string       `json:"end_message,omitempty"`
	Captured    domain.Tally `json:"captured"`
	WinnerID    string       `json:"winner_id,omitempty"`
	LoserID     string       `json:"loser_id,omitempty"`
}

type ClockUpdatePayload struct {
	WhiteMs int64        `json:"white_ms"`
	BlackMs int64        `json:"black_ms"`
	Active  domain.Color `json:"active"`
	Paused  bool         `json:"paused"`
}

type OpponentLeftPayload struct {
	Message string `json:"message"`
}
