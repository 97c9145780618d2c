package domain

import (
	"math/rand"
	"testing"
	"time"
)

func TestAddParticipantAssignsSides(t *testing.T) {
	m := NewMatch(600000)

	side, ok := m.AddParticipant("u1", White)
	if !ok || side != White {
		t.Fatalf("first joiner side = %s ok=%v, want white", side, ok)
	}
	if m.Started() {
		t.Fatalf("match should not start with one participant")
	}

	side, ok = m.AddParticipant("u2", White)
	if !ok || side != Black {
		t.Fatalf("second joiner side = %s ok=%v, want black", side, ok)
	}
	if !m.Started() {
		t.Fatalf("match should start with two participants")
	}

	if _, ok := m.AddParticipant("u3", White); ok {
		t.Fatalf("third joiner should be rejected")
	}

	// Re-adding an existing participant returns the bound side.
	side, ok = m.AddParticipant("u1", Black)
	if !ok || side != White {
		t.Fatalf("rejoin side = %s ok=%v, want white", side, ok)
	}
}

func TestAddParticipantFirstSideBlack(t *testing.T) {
	m := NewMatch(600000)
	side, _ := m.AddParticipant("host", Black)
	if side != Black {
		t.Fatalf("host side = %s, want black", side)
	}
	side, _ = m.AddParticipant("guest", Black)
	if side != White {
		t.Fatalf("guest side = %s, want white", side)
	}
}

func TestOpponentLookups(t *testing.T) {
	m := NewMatch(600000)
	m.AddParticipant("u1", White)
	m.AddParticipant("u2", White)

	if got := m.OpponentOf("u1"); got != "u2" {
		t.Fatalf("opponent of u1 = %q, want u2", got)
	}
	if got := m.ParticipantBySide(Black); got != "u2" {
		t.Fatalf("black participant = %q, want u2", got)
	}

	m.RemoveParticipant("u2")
	if got := m.OpponentOf("u1"); got != "" {
		t.Fatalf("opponent after leave = %q, want empty", got)
	}
}

func TestNewDuelDealsTwoAndOne(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	d := NewDuel(rng)
	if len(d.AttackerHand) != 2 {
		t.Fatalf("attacker hand = %d cards, want 2", len(d.AttackerHand))
	}
	if len(d.HouseHand) != 1 {
		t.Fatalf("house hand = %d cards, want 1", len(d.HouseHand))
	}
	if len(d.Deck) != 49 {
		t.Fatalf("deck = %d cards, want 49", len(d.Deck))
	}
	if d.HouseDrawing {
		t.Fatalf("duel should not start in house drawing state")
	}
}

func TestDuelDrawExhaustsDeck(t *testing.T) {
	d := &Duel{Deck: []Card{{Rank: "2", Suit: "S"}}}
	if _, ok := d.Draw(); !ok {
		t.Fatalf("draw from one-card deck should succeed")
	}
	if _, ok := d.Draw(); ok {
		t.Fatalf("draw from empty deck should fail")
	}
}

func TestTallyAddCreditsCapturer(t *testing.T) {
	var tally Tally
	tally.Add(PieceInfo{Type: "n", Color: Black})
	tally.Add(PieceInfo{Type: "p", Color: White})

	if len(tally.White) != 1 || tally.White[0].Type != "n" {
		t.Fatalf("white tally = %v, want the black knight", tally.White)
	}
	if len(tally.Black) != 1 || tally.Black[0].Type != "p" {
		t.Fatalf("black tally = %v, want the white pawn", tally.Black)
	}
}

func TestClockDebitFloorsAtZero(t *testing.T) {
	c := Clock{WhiteMs: 300, BlackMs: 500, LastTick: time.Now()}
	c.Debit(White, 1000)
	if c.WhiteMs != 0 {
		t.Fatalf("white ms = %d, want 0", c.WhiteMs)
	}
	c.Debit(Black, 200)
	if c.BlackMs != 300 {
		t.Fatalf("black ms = %d, want 300", c.BlackMs)
	}
	if c.Remaining(Black) != 300 {
		t.Fatalf("remaining black = %d, want 300", c.Remaining(Black))
	}
}
