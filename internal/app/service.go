package app

import (
	"errors"
	"math/rand"
	"time"

	"chess21/internal/domain"
	"chess21/internal/ports"
)

// Rejection errors double as the wire reason codes sent to clients, so their
// messages are stable strings.
var (
	ErrMatchNotFound    = errors.New("Room not found.")
	ErrDuelActive       = errors.New("Blackjack phase active.")
	ErrGameOver         = errors.New("Game is over.")
	ErrInvalidMove      = errors.New("Invalid move payload.")
	ErrIllegalMove      = errors.New("Illegal move.")
	ErrNotYourTurn      = errors.New("Not your turn.")
	ErrKingCapture      = errors.New("King cannot be captured.")
	ErrNoOpponent       = errors.New("Opponent not ready.")
	ErrDuelInactive     = errors.New("Blackjack phase inactive.")
	ErrNotAttacker      = errors.New("Only attacker can hit.")
	ErrNotAttackerStand = errors.New("Only attacker can stand.")
	ErrHouseDrawing     = errors.New("House is drawing.")
	ErrDeckUnavailable  = errors.New("Deck unavailable.")
	ErrRoomFull         = errors.New("Room is full.")
)

// Service contains the match use-cases operating on domain state and a board.
// It validates inbound actions against the match phase, runs the duel and
// capture resolution rules, and emits the resulting events. Scheduling of
// paced steps (house draws, deferred resolution delivery) belongs to the
// dispatcher that owns the match loop.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

// StartMatch marks the match as underway once both sides are bound: the clock
// starts for the board's side to move and the opening position is announced.
func (s *Service) StartMatch(m *domain.Match, board ports.Board) []Event {
	s.syncClock(m, board, false)
	return []Event{
		{Kind: EventMatchReady, Payload: MatchReadyPayload{FEN: board.FEN(), Captured: m.Captured}},
		{Kind: EventClockUpdate, Payload: clockPayload(m)},
	}
}

// SubmitMove validates a move request in normal play. Non-capturing moves
// apply immediately; capture-class moves (ordinary capture, en passant,
// promotion) are stored as a pending capture and open a duel instead.
func (s *Service) SubmitMove(m *domain.Match, board ports.Board, actorID string, req domain.Move) ([]Event, error) {
	switch m.Phase {
	case domain.PhaseDuel:
		return nil, ErrDuelActive
	case domain.PhaseEnded:
		return nil, ErrGameOver
	}
	if req.From == "" || req.To == "" {
		return nil, ErrInvalidMove
	}
	side, ok := m.SideOf(actorID)
	if !ok || side != board.SideToMove() {
		return nil, ErrNotYourTurn
	}
	legal := board.FindLegalMove(req)
	if legal == nil {
		return nil, ErrIllegalMove
	}

	switch {
	case legal.IsPromotion:
		mv := legal.Move
		if mv.Promotion == "" {
			mv.Promotion = "q"
		}
		return s.beginDuel(m, actorID, domain.PendingCapture{
			Move:          mv,
			CaptureSquare: mv.To,
			Kind:          domain.KindPromotion,
		})
	case legal.IsEnPassant:
		return s.beginDuel(m, actorID, domain.PendingCapture{
			Move:          legal.Move,
			CaptureSquare: enPassantCaptureSquare(legal.Move),
			Kind:          domain.KindEnPassant,
		})
	}

	if piece, occupied := board.PieceAt(legal.Move.To); occupied {
		if piece.Type == "k" {
			return nil, ErrKingCapture
		}
		return s.beginDuel(m, actorID, domain.PendingCapture{
			Move:          legal.Move,
			CaptureSquare: legal.Move.To,
			Kind:          domain.KindCapture,
		})
	}

	if err := board.Apply(legal.Move); err != nil {
		return nil, ErrIllegalMove
	}
	s.syncClock(m, board, false)
	return []Event{
		{Kind: EventMoveApplied, Payload: MoveAppliedPayload{Move: legal.Move, FEN: board.FEN(), Turn: board.SideToMove()}},
		{Kind: EventClockUpdate, Payload: clockPayload(m)},
	}, nil
}

func (s *Service) beginDuel(m *domain.Match, actorID string, pending domain.PendingCapture) ([]Event, error) {
	defenderID := m.OpponentOf(actorID)
	if defenderID == "" {
		return nil, ErrNoOpponent
	}
	pending.AttackerID = actorID
	pending.DefenderID = defenderID
	m.Pending = &pending
	m.Duel = domain.NewDuel(s.rng)
	m.Phase = domain.PhaseDuel
	return []Event{{
		Kind: EventDuelStarted,
		Payload: DuelStartedPayload{
			AttackerID:    pending.AttackerID,
			DefenderID:    pending.DefenderID,
			AttackerHand:  m.Duel.AttackerHand,
			HouseUpCard:   m.Duel.HouseHand[0],
			Move:          pending.Move,
			CaptureSquare: pending.CaptureSquare,
			Kind:          pending.Kind,
		},
	}}, nil
}

// DrawCard deals one card to the attacker's hand. An attacker bust resolves
// the duel immediately as a defender win without the house playing.
func (s *Service) DrawCard(m *domain.Match, board ports.Board, actorID string) ([]Event, error) {
	if m.Phase != domain.PhaseDuel || m.Duel == nil {
		return nil, ErrDuelInactive
	}
	if m.Pending == nil || m.Pending.AttackerID != actorID {
		return nil, ErrNotAttacker
	}
	if m.Duel.HouseDrawing {
		return nil, ErrHouseDrawing
	}
	card, ok := m.Duel.Draw()
	if !ok {
		return nil, ErrDeckUnavailable
	}
	m.Duel.AttackerHand = append(m.Duel.AttackerHand, card)

	score := domain.HandScore(m.Duel.AttackerHand)
	events := []Event{{
		Kind: EventDuelUpdate,
		Payload: DuelUpdatePayload{
			AttackerHand:  m.Duel.AttackerHand,
			HouseHand:     m.Duel.HouseHand,
			AttackerScore: score,
		},
	}}
	if score > 21 {
		resolved, err := s.resolveDuel(m, board, domain.OutcomeDefender)
		return append(events, resolved...), err
	}
	return events, nil
}

// Stand hands the duel to the house. The house's paced drawing sequence is
// driven by the dispatcher through HouseDrawStep; a stand while the house is
// already drawing is ignored.
func (s *Service) Stand(m *domain.Match, actorID string) error {
	if m.Phase != domain.PhaseDuel || m.Duel == nil {
		return ErrDuelInactive
	}
	if m.Pending == nil || m.Pending.AttackerID != actorID {
		return ErrNotAttackerStand
	}
	if m.Duel.HouseDrawing {
		return nil
	}
	m.Duel.HouseDrawing = true
	return nil
}

// HouseDrawStep advances the house's drawing sequence by one step: either the
// house draws a card, or, once it must stop, the duel outcome is computed
// and resolved. The returned done flag reports whether the sequence finished.
func (s *Service) HouseDrawStep(m *domain.Match, board ports.Board) ([]Event, bool, error) {
	if m.Phase != domain.PhaseDuel || m.Duel == nil || !m.Duel.HouseDrawing {
		return nil, true, nil
	}
	d := m.Duel

	if !domain.HouseMustDraw(d.HouseHand) || len(d.Deck) == 0 {
		d.HouseDrawing = false
		outcome := domain.DuelOutcome(d.AttackerHand, d.HouseHand)
		events := []Event{{
			Kind: EventDuelUpdate,
			Payload: DuelUpdatePayload{
				AttackerHand:  d.AttackerHand,
				HouseHand:     d.HouseHand,
				AttackerScore: domain.HandScore(d.AttackerHand),
				HouseScore:    domain.HandScore(d.HouseHand),
			},
		}}
		resolved, err := s.resolveDuel(m, board, outcome)
		return append(events, resolved...), true, err
	}

	card, _ := d.Draw()
	d.HouseHand = append(d.HouseHand, card)
	return []Event{{
		Kind: EventDuelUpdate,
		Payload: DuelUpdatePayload{
			AttackerHand:  d.AttackerHand,
			HouseHand:     d.HouseHand,
			AttackerScore: domain.HandScore(d.AttackerHand),
			HouseScore:    domain.HandScore(d.HouseHand),
		},
	}}, false, nil
}

// ToggleClock flips the pause flag. Ignored after the match ended.
func (s *Service) ToggleClock(m *domain.Match) []Event {
	if m.Phase == domain.PhaseEnded {
		return nil
	}
	m.Clock.Paused = !m.Clock.Paused
	m.Clock.LastTick = time.Now()
	return []Event{{Kind: EventClockUpdate, Payload: clockPayload(m)}}
}

// TickClock debits elapsed wall time from the active side and ends the match
// on a time forfeit. Run once per dispatcher tick.
func (s *Service) TickClock(m *domain.Match, board ports.Board, now time.Time) []Event {
	if m.Phase == domain.PhaseEnded || m.Clock.Paused || !m.Started() {
		return nil
	}
	elapsed := now.Sub(m.Clock.LastTick).Milliseconds()
	if elapsed <= 0 {
		return nil
	}
	m.Clock.Debit(m.Clock.Active, elapsed)
	m.Clock.LastTick = now

	if m.Clock.Remaining(m.Clock.Active) > 0 {
		return []Event{{Kind: EventClockUpdate, Payload: clockPayload(m)}}
	}

	loserSide := m.Clock.Active
	m.Phase = domain.PhaseEnded
	m.Pending = nil
	m.Duel = nil
	m.Clock.Paused = true
	m.WinnerID = m.ParticipantBySide(loserSide.Other())
	m.LoserID = m.ParticipantBySide(loserSide)
	if loserSide == domain.White {
		m.EndMessage = "White ran out of time."
	} else {
		m.EndMessage = "Black ran out of time."
	}
	return []Event{
		{Kind: EventResolution, Payload: ResolutionPayload{
			FEN:        board.FEN(),
			Turn:       board.SideToMove(),
			Note:       "Time expired.",
			Ended:      true,
			EndMessage: m.EndMessage,
			Captured:   m.Captured,
			WinnerID:   m.WinnerID,
			LoserID:    m.LoserID,
		}},
		{Kind: EventClockUpdate, Payload: clockPayload(m)},
	}
}

// resolveDuel applies a finished duel through the capture resolver, leaves the
// duel phase and emits the deferred resolution broadcast. A resolver error is
// returned alongside the events so the dispatcher can log it; the match still
// transitions and clients still see the resulting position.
func (s *Service) resolveDuel(m *domain.Match, board ports.Board, outcome domain.Outcome) ([]Event, error) {
	res, resErr := resolveCapture(board, m, outcome)
	m.Pending = nil
	m.Duel = nil
	if res.Ended {
		m.Phase = domain.PhaseEnded
		m.WinnerID = res.WinnerID
		m.LoserID = res.LoserID
		m.EndMessage = res.EndMessage
	} else {
		m.Phase = domain.PhaseNormal
	}
	s.syncClock(m, board, m.Phase == domain.PhaseEnded)
	return []Event{
		{Kind: EventResolution, Deferred: true, Payload: ResolutionPayload{
			FEN:         board.FEN(),
			Turn:        board.SideToMove(),
			AttackerWon: res.AttackerWon,
			Note:        res.Note,
			Ended:       res.Ended,
			EndMessage:  res.EndMessage,
			Captured:    m.Captured,
			WinnerID:    res.WinnerID,
			LoserID:     res.LoserID,
		}},
		{Kind: EventClockUpdate, Deferred: true, Payload: clockPayload(m)},
	}, resErr
}

// syncClock re-aligns the clock's active side with the board's side to move.
// Must run after any mutation that can change whose turn it is.
func (s *Service) syncClock(m *domain.Match, board ports.Board, paused bool) {
	m.Clock.Active = board.SideToMove()
	m.Clock.Paused = paused
	m.Clock.LastTick = time.Now()
}

func clockPayload(m *domain.Match) ClockUpdatePayload {
	return ClockUpdatePayload{
		WhiteMs: m.Clock.WhiteMs,
		BlackMs: m.Clock.BlackMs,
		Active:  m.Clock.Active,
		Paused:  m.Clock.Paused,
	}
}

// enPassantCaptureSquare locates the passed pawn: same file as the landing
// square, same rank as the origin.
func enPassantCaptureSquare(mv domain.Move) string {
	return string(mv.To[0]) + string(mv.From[1])
}
