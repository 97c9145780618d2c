package app

import (
	"errors"
	"strings"
	"testing"

	"chess21/internal/domain"
	"chess21/internal/ports"
)

func pendingCapture(kind domain.CaptureKind, mv domain.Move, captureSquare string) *domain.Match {
	m := domain.NewMatch(600000)
	m.AddParticipant("white-player", domain.White)
	m.AddParticipant("black-player", domain.White)
	m.Pending = &domain.PendingCapture{
		Move:          mv,
		AttackerID:    "white-player",
		DefenderID:    "black-player",
		CaptureSquare: captureSquare,
		Kind:          kind,
	}
	return m
}

func TestResolveCapturePushLeavesBoardAndSwapsTurn(t *testing.T) {
	m := pendingCapture(domain.KindCapture, domain.Move{From: "e4", To: "d5"}, "d5")
	board := newFakeBoard()
	board.pieces["e4"] = domain.PieceInfo{Type: "n", Color: domain.White}
	board.pieces["d5"] = domain.PieceInfo{Type: "p", Color: domain.Black}

	res, err := resolveCapture(board, m, domain.OutcomePush)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if res.AttackerWon || res.Ended {
		t.Fatalf("push must not win or end: %+v", res)
	}
	if res.Note != "Push: no pieces captured." {
		t.Fatalf("note = %q", res.Note)
	}
	if len(board.applied) != 0 || len(board.removed) != 0 {
		t.Fatalf("push must not touch the board")
	}
	if board.turn != domain.Black {
		t.Fatalf("turn = %s, want black after push", board.turn)
	}
	if len(m.Captured.White)+len(m.Captured.Black) != 0 {
		t.Fatalf("push must not tally captures")
	}
}

func TestResolveCaptureAttackerWinApplies(t *testing.T) {
	m := pendingCapture(domain.KindCapture, domain.Move{From: "e4", To: "d5"}, "d5")
	board := newFakeBoard()
	board.pieces["e4"] = domain.PieceInfo{Type: "n", Color: domain.White}
	board.pieces["d5"] = domain.PieceInfo{Type: "p", Color: domain.Black}

	res, err := resolveCapture(board, m, domain.OutcomeAttacker)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if !res.AttackerWon || res.Ended {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if len(board.applied) != 1 || board.applied[0].To != "d5" {
		t.Fatalf("applied = %v, want the capture", board.applied)
	}
	if len(m.Captured.White) != 1 || m.Captured.White[0].Type != "p" {
		t.Fatalf("white tally = %v, want the black pawn", m.Captured.White)
	}
	// Applying the move flipped the turn; no forced swap on a win.
	if len(board.forced) != 0 {
		t.Fatalf("forced = %v, want none", board.forced)
	}
}

func TestResolveCaptureDefenderWinPrefersReverseCapture(t *testing.T) {
	m := pendingCapture(domain.KindCapture, domain.Move{From: "e4", To: "d5"}, "d5")
	board := newFakeBoard()
	board.pieces["e4"] = domain.PieceInfo{Type: "n", Color: domain.White}
	board.pieces["d5"] = domain.PieceInfo{Type: "p", Color: domain.Black}
	board.legal = []ports.LegalMove{{Move: domain.Move{From: "d5", To: "e4"}, IsCapture: true}}

	res, err := resolveCapture(board, m, domain.OutcomeDefender)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if res.AttackerWon || res.Ended {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if res.Note != "Capture canceled; the attacker was taken." {
		t.Fatalf("note = %q", res.Note)
	}
	if len(board.applied) != 1 || board.applied[0].From != "d5" || board.applied[0].To != "e4" {
		t.Fatalf("applied = %v, want the reverse capture", board.applied)
	}
	if len(board.removed) != 0 {
		t.Fatalf("reverse capture must not also remove")
	}
	if len(m.Captured.Black) != 1 || m.Captured.Black[0].Type != "n" {
		t.Fatalf("black tally = %v, want the white knight", m.Captured.Black)
	}
}

func TestResolveCaptureDefenderWinRemovesWhenNoReverse(t *testing.T) {
	m := pendingCapture(domain.KindCapture, domain.Move{From: "e4", To: "d5"}, "d5")
	board := newFakeBoard()
	board.pieces["e4"] = domain.PieceInfo{Type: "n", Color: domain.White}
	board.pieces["d5"] = domain.PieceInfo{Type: "p", Color: domain.Black}

	res, err := resolveCapture(board, m, domain.OutcomeDefender)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if res.Note != "Attacker lost; defender captures the attacker." {
		t.Fatalf("note = %q", res.Note)
	}
	if len(board.removed) != 1 || board.removed[0] != "e4" {
		t.Fatalf("removed = %v, want e4", board.removed)
	}
	if board.turn != domain.Black {
		t.Fatalf("turn = %s, want black", board.turn)
	}
}

func TestResolveCaptureKingAttackerLossEndsMatch(t *testing.T) {
	m := pendingCapture(domain.KindCapture, domain.Move{From: "e1", To: "e2"}, "e2")
	board := newFakeBoard()
	board.pieces["e1"] = domain.PieceInfo{Type: "k", Color: domain.White}
	board.pieces["e2"] = domain.PieceInfo{Type: "p", Color: domain.Black}

	res, err := resolveCapture(board, m, domain.OutcomeDefender)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if !res.Ended {
		t.Fatalf("losing a duel with the king must end the match")
	}
	if !strings.Contains(res.EndMessage, "King was eaten") {
		t.Fatalf("end message = %q", res.EndMessage)
	}
	if res.WinnerID != "black-player" || res.LoserID != "white-player" {
		t.Fatalf("winner/loser = %s/%s", res.WinnerID, res.LoserID)
	}
	if len(board.removed) != 1 || board.removed[0] != "e1" {
		t.Fatalf("removed = %v, want the king square", board.removed)
	}
	if len(m.Captured.Black) != 1 || m.Captured.Black[0].Type != "k" {
		t.Fatalf("black tally = %v, want the white king", m.Captured.Black)
	}
}

func TestResolveCapturePromotionWin(t *testing.T) {
	m := pendingCapture(domain.KindPromotion, domain.Move{From: "b7", To: "a8", Promotion: "q"}, "a8")
	board := newFakeBoard()
	board.pieces["b7"] = domain.PieceInfo{Type: "p", Color: domain.White}
	board.pieces["a8"] = domain.PieceInfo{Type: "r", Color: domain.Black}

	res, err := resolveCapture(board, m, domain.OutcomeAttacker)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if res.Note != "Promotion won; pawn becomes a queen." {
		t.Fatalf("note = %q", res.Note)
	}
	if len(board.applied) != 1 {
		t.Fatalf("promotion win must apply the move")
	}
	if len(m.Captured.White) != 1 || m.Captured.White[0].Type != "r" {
		t.Fatalf("white tally = %v, want the black rook", m.Captured.White)
	}
}

func TestResolveCapturePromotionLossRemovesPawn(t *testing.T) {
	m := pendingCapture(domain.KindPromotion, domain.Move{From: "b7", To: "b8", Promotion: "q"}, "b8")
	board := newFakeBoard()
	board.pieces["b7"] = domain.PieceInfo{Type: "p", Color: domain.White}

	res, err := resolveCapture(board, m, domain.OutcomeDefender)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if res.Note != "Promotion lost; pawn disappears." {
		t.Fatalf("note = %q", res.Note)
	}
	if len(board.removed) != 1 || board.removed[0] != "b7" {
		t.Fatalf("removed = %v, want the pawn square", board.removed)
	}
	if len(m.Captured.Black) != 1 || m.Captured.Black[0].Type != "p" {
		t.Fatalf("black tally = %v, want the white pawn", m.Captured.Black)
	}
	if board.turn != domain.Black {
		t.Fatalf("turn = %s, want black", board.turn)
	}
}

func TestResolveCapturePicksUpTerminalStatus(t *testing.T) {
	m := pendingCapture(domain.KindCapture, domain.Move{From: "e4", To: "d5"}, "d5")
	board := newFakeBoard()
	board.pieces["e4"] = domain.PieceInfo{Type: "q", Color: domain.White}
	board.pieces["d5"] = domain.PieceInfo{Type: "p", Color: domain.Black}
	board.over = true
	board.overMsg = "Checkmate. White wins."

	res, err := resolveCapture(board, m, domain.OutcomeAttacker)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if !res.Ended || res.EndMessage != "Checkmate. White wins." {
		t.Fatalf("resolution = %+v, want checkmate end", res)
	}
}

func TestResolveCaptureReportsEngineFailure(t *testing.T) {
	m := pendingCapture(domain.KindCapture, domain.Move{From: "e4", To: "d5"}, "d5")
	board := newFakeBoard()
	board.pieces["e4"] = domain.PieceInfo{Type: "n", Color: domain.White}
	board.pieces["d5"] = domain.PieceInfo{Type: "p", Color: domain.Black}
	board.applyErr = errors.New("position corrupt")

	_, err := resolveCapture(board, m, domain.OutcomeAttacker)
	if err == nil {
		t.Fatalf("engine failure on the winning capture must surface")
	}
	if !errors.Is(err, board.applyErr) {
		t.Fatalf("err = %v, want wrapped engine error", err)
	}
}
