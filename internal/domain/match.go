package domain

import (
	"math/rand"
	"time"
)

// Phase represents the lifecycle stage of a match.
type Phase string

const (
	// PhaseNormal is regular play where moves are submitted.
	PhaseNormal Phase = "normal"
	// PhaseDuel is the blackjack sub-round adjudicating a pending capture.
	PhaseDuel Phase = "duel"
	// PhaseEnded is terminal; no further mutation happens after it.
	PhaseEnded Phase = "ended"
)

// Color identifies a chess side, matching the board engine's "w"/"b".
type Color string

const (
	White Color = "w"
	Black Color = "b"
)

// Other returns the opposing color.
func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

// Name returns the long side name used in participant assignments.
func (c Color) Name() string {
	if c == White {
		return "white"
	}
	return "black"
}

// CaptureKind classifies the contested move held during a duel.
type CaptureKind string

const (
	KindCapture   CaptureKind = "CAPTURE"
	KindEnPassant CaptureKind = "EN_PASSANT"
	KindPromotion CaptureKind = "PROMOTION"
)

// Move is a from/to square pair with an optional promotion piece.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// PendingCapture is a contested move stored while its duel is live.
type PendingCapture struct {
	Move          Move
	AttackerID    string
	DefenderID    string
	CaptureSquare string // differs from Move.To for en passant
	Kind          CaptureKind
}

// Duel holds the live card state for a contested capture.
type Duel struct {
	Deck         []Card
	AttackerHand []Card
	HouseHand    []Card
	HouseDrawing bool // guards against re-entrant house draw scheduling
}

// NewDuel shuffles a fresh deck and deals the opening hands: two cards to the
// attacker and a single up-card to the house.
func NewDuel(rng *rand.Rand) *Duel {
	d := &Duel{Deck: ShuffleDeck(rng, NewDeck())}
	a1, _ := d.Draw()
	a2, _ := d.Draw()
	up, _ := d.Draw()
	d.AttackerHand = []Card{a1, a2}
	d.HouseHand = []Card{up}
	return d
}

// Draw consumes the top card of the deck.
func (d *Duel) Draw() (Card, bool) {
	if len(d.Deck) == 0 {
		return Card{}, false
	}
	c := d.Deck[len(d.Deck)-1]
	d.Deck = d.Deck[:len(d.Deck)-1]
	return c, true
}

// PieceInfo describes a piece removed from the board, for display tallies.
type PieceInfo struct {
	Type  string `json:"type"` // "p","n","b","r","q","k"
	Color Color  `json:"color"`
}

// Tally lists captured pieces by the capturing side. Display-only.
type Tally struct {
	White []PieceInfo `json:"white"`
	Black []PieceInfo `json:"black"`
}

// Add records a removed piece under the side that captured it.
func (t *Tally) Add(p PieceInfo) {
	if p.Color == White {
		t.Black = append(t.Black, p)
	} else {
		t.White = append(t.White, p)
	}
}

// Clock tracks per-side remaining time in milliseconds.
type Clock struct {
	WhiteMs  int64
	BlackMs  int64
	Active   Color
	Paused   bool
	LastTick time.Time
}

// Remaining returns the remaining milliseconds for a side.
func (c *Clock) Remaining(side Color) int64 {
	if side == White {
		return c.WhiteMs
	}
	return c.BlackMs
}

// Debit subtracts elapsed milliseconds from a side, floored at zero.
func (c *Clock) Debit(side Color, ms int64) {
	if side == White {
		c.WhiteMs = max(0, c.WhiteMs-ms)
	} else {
		c.BlackMs = max(0, c.BlackMs-ms)
	}
}

// Match holds the full mutable state of one game.
type Match struct {
	Phase        Phase
	Participants map[string]Color // connection id -> side, at most 2
	Pending      *PendingCapture
	Duel         *Duel
	Captured     Tally
	Clock        Clock
	WinnerID     string
	LoserID      string
	EndMessage   string
}

// NewMatch creates a match in normal phase with both clocks at initialClockMs,
// paused until the second participant binds.
func NewMatch(initialClockMs int64) *Match {
	return &Match{
		Phase:        PhaseNormal,
		Participants: map[string]Color{},
		Clock: Clock{
			WhiteMs:  initialClockMs,
			BlackMs:  initialClockMs,
			Active:   White,
			Paused:   true,
			LastTick: time.Now(),
		},
	}
}

// AddParticipant binds a connection id to a side. The first joiner takes
// firstSide, the second takes whichever side remains. Returns false when the
// match already holds two other participants.
func (m *Match) AddParticipant(id string, firstSide Color) (Color, bool) {
	if side, ok := m.Participants[id]; ok {
		return side, true
	}
	switch len(m.Participants) {
	case 0:
		m.Participants[id] = firstSide
		return firstSide, true
	case 1:
		for _, taken := range m.Participants {
			side := taken.Other()
			m.Participants[id] = side
			return side, true
		}
	}
	return "", false
}

// RemoveParticipant unbinds a connection id.
func (m *Match) RemoveParticipant(id string) {
	delete(m.Participants, id)
}

// Started reports whether both sides are bound.
func (m *Match) Started() bool {
	return len(m.Participants) == 2
}

// SideOf returns the side bound to a connection id.
func (m *Match) SideOf(id string) (Color, bool) {
	side, ok := m.Participants[id]
	return side, ok
}

// OpponentOf returns the other participant's connection id, or "".
func (m *Match) OpponentOf(id string) string {
	for other := range m.Participants {
		if other != id {
			return other
		}
	}
	return ""
}

// ParticipantBySide returns the connection id bound to a side, or "".
func (m *Match) ParticipantBySide(side Color) string {
	for id, s := range m.Participants {
		if s == side {
			return id
		}
	}
	return ""
}
