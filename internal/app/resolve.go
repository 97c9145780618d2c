package app

import (
	"fmt"

	"chess21/internal/domain"
	"chess21/internal/ports"
)

// resolution is the structural consequence of a finished duel.
type resolution struct {
	AttackerWon bool
	Note        string
	Ended       bool
	EndMessage  string
	WinnerID    string
	LoserID     string
}

// resolveCapture translates a duel outcome into board mutation and tally
// updates. It does not touch the match phase or clock; the caller owns those.
// Board mutations here replay moves already validated as legal, so a non-nil
// error means the engine and the match state disagree; the resolution built so
// far is returned with it.
//
// The side to move is still the attacker's when this runs: the contested move
// was never applied. Every outcome except an applied attacker win and the
// terminal king capture ends the attacker's turn by forcing the move to the
// defender.
func resolveCapture(board ports.Board, m *domain.Match, outcome domain.Outcome) (resolution, error) {
	pending := m.Pending
	res := resolution{AttackerWon: outcome == domain.OutcomeAttacker}
	if pending == nil {
		return res, nil
	}
	attackerSide, _ := m.SideOf(pending.AttackerID)
	defenderSide := attackerSide.Other()

	switch {
	case outcome == domain.OutcomePush:
		res.Note = "Push: no pieces captured."

	case pending.Kind == domain.KindPromotion:
		if res.AttackerWon {
			if piece, ok := board.PieceAt(pending.CaptureSquare); ok {
				m.Captured.Add(piece)
			}
			if err := board.Apply(pending.Move); err != nil {
				return res, fmt.Errorf("apply promotion: %w", err)
			}
			res.Note = "Promotion won; pawn becomes a " + promotionName(pending.Move.Promotion) + "."
		} else {
			if pawn, ok := board.PieceAt(pending.Move.From); ok {
				m.Captured.Add(pawn)
			}
			if err := board.Remove(pending.Move.From); err != nil {
				return res, fmt.Errorf("remove promoting pawn: %w", err)
			}
			res.Note = "Promotion lost; pawn disappears."
		}

	case res.AttackerWon:
		if piece, ok := board.PieceAt(pending.CaptureSquare); ok {
			m.Captured.Add(piece)
		}
		if err := board.Apply(pending.Move); err != nil {
			return res, fmt.Errorf("apply contested move: %w", err)
		}

	default: // defender won a capture or en passant duel
		attackerPiece, ok := board.PieceAt(pending.Move.From)
		if ok {
			m.Captured.Add(attackerPiece)
		}
		if ok && attackerPiece.Type == "k" {
			res.Ended = true
			res.EndMessage = "King was eaten after losing blackjack. Game over."
			res.Note = res.EndMessage
			res.WinnerID = pending.DefenderID
			res.LoserID = pending.AttackerID
			if err := board.Remove(pending.Move.From); err != nil {
				return res, fmt.Errorf("remove king: %w", err)
			}
		} else {
			// Prefer a legal retreat: the defender's piece takes the attacker
			// on its own square. Searching requires the defender to be on move.
			if err := board.ForceTurn(defenderSide); err != nil {
				return res, fmt.Errorf("hand turn to defender: %w", err)
			}
			if rm := board.FindLegalMove(domain.Move{From: pending.Move.To, To: pending.Move.From}); rm != nil {
				if err := board.Apply(rm.Move); err != nil {
					return res, fmt.Errorf("apply reverse capture: %w", err)
				}
				res.Note = "Capture canceled; the attacker was taken."
			} else {
				if err := board.Remove(pending.Move.From); err != nil {
					return res, fmt.Errorf("remove attacker: %w", err)
				}
				res.Note = "Attacker lost; defender captures the attacker."
			}
		}
	}

	if !res.Ended && !res.AttackerWon {
		if err := board.ForceTurn(defenderSide); err != nil {
			return res, fmt.Errorf("hand turn to defender: %w", err)
		}
	}

	if !res.Ended {
		if over, msg := board.Status(); over {
			res.Ended = true
			res.EndMessage = msg
		}
	}
	return res, nil
}

func promotionName(letter string) string {
	switch letter {
	case "r":
		return "rook"
	case "b":
		return "bishop"
	case "n":
		return "knight"
	default:
		return "queen"
	}
}
