package chessengine

import (
	"fmt"
	"strings"

	"chess21/internal/domain"
	"chess21/internal/ports"

	"github.com/notnil/chess"
)

// Board adapts github.com/notnil/chess to the ports.Board capability. Piece
// removal and forced turn swaps are not moves the engine knows, so both are
// done by FEN surgery and a position reload.
type Board struct {
	game *chess.Game
}

// NewBoard returns a board at the standard starting position.
func NewBoard() *Board {
	return &Board{game: chess.NewGame()}
}

// NewBoardFromFEN returns a board at the given position.
func NewBoardFromFEN(fen string) (*Board, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid fen: %w", err)
	}
	return &Board{game: chess.NewGame(opt)}, nil
}

func (b *Board) SideToMove() domain.Color {
	return domain.Color(b.game.Position().Turn().String())
}

func (b *Board) FEN() string {
	return b.game.FEN()
}

func (b *Board) LegalMoves() []ports.LegalMove {
	valid := b.game.ValidMoves()
	moves := make([]ports.LegalMove, 0, len(valid))
	for _, mv := range valid {
		moves = append(moves, toLegalMove(mv))
	}
	return moves
}

// FindLegalMove resolves a from/to(/promotion) request against the legal set.
// A blank promotion prefers the queen promotion when one exists, matching how
// clients submit promotion moves without a picker.
func (b *Board) FindLegalMove(req domain.Move) *ports.LegalMove {
	if req.From == "" || req.To == "" {
		return nil
	}
	var plain, queen *chess.Move
	for _, mv := range b.game.ValidMoves() {
		if mv.S1().String() != req.From || mv.S2().String() != req.To {
			continue
		}
		promo := promoLetter(mv)
		if req.Promotion != "" {
			if promo == req.Promotion {
				lm := toLegalMove(mv)
				return &lm
			}
			continue
		}
		if promo == "q" {
			queen = mv
		}
		if promo == "" && plain == nil {
			plain = mv
		}
	}
	if queen != nil {
		lm := toLegalMove(queen)
		return &lm
	}
	if plain != nil {
		lm := toLegalMove(plain)
		return &lm
	}
	return nil
}

func (b *Board) Apply(req domain.Move) error {
	for _, mv := range b.game.ValidMoves() {
		if mv.S1().String() != req.From || mv.S2().String() != req.To {
			continue
		}
		promo := promoLetter(mv)
		if req.Promotion != "" && promo != req.Promotion {
			continue
		}
		if req.Promotion == "" && promo != "" && promo != "q" {
			continue
		}
		return b.game.Move(mv)
	}
	return fmt.Errorf("no legal move %s-%s", req.From, req.To)
}

func (b *Board) PieceAt(square string) (domain.PieceInfo, bool) {
	sq, err := parseSquare(square)
	if err != nil {
		return domain.PieceInfo{}, false
	}
	p := b.game.Position().Board().Piece(sq)
	if p == chess.NoPiece {
		return domain.PieceInfo{}, false
	}
	return domain.PieceInfo{
		Type:  p.Type().String(),
		Color: domain.Color(p.Color().String()),
	}, true
}

func (b *Board) Remove(square string) error {
	if _, err := parseSquare(square); err != nil {
		return err
	}
	fields := strings.Fields(b.game.FEN())
	if len(fields) != 6 {
		return fmt.Errorf("malformed fen %q", b.game.FEN())
	}
	placement, err := clearSquare(fields[0], square)
	if err != nil {
		return err
	}
	fields[0] = placement
	fields[3] = "-" // surgery invalidates any en passant target
	return b.reload(strings.Join(fields, " "))
}

func (b *Board) ForceTurn(side domain.Color) error {
	fields := strings.Fields(b.game.FEN())
	if len(fields) != 6 {
		return fmt.Errorf("malformed fen %q", b.game.FEN())
	}
	fields[1] = string(side)
	fields[3] = "-"
	return b.reload(strings.Join(fields, " "))
}

func (b *Board) Status() (bool, string) {
	switch b.game.Position().Status() {
	case chess.Checkmate:
		if b.SideToMove() == domain.White {
			return true, "Checkmate. Black wins."
		}
		return true, "Checkmate. White wins."
	case chess.Stalemate:
		return true, "Stalemate. Game drawn."
	}
	return false, ""
}

func (b *Board) reload(fen string) error {
	opt, err := chess.FEN(fen)
	if err != nil {
		return fmt.Errorf("reload position: %w", err)
	}
	b.game = chess.NewGame(opt)
	return nil
}

func toLegalMove(mv *chess.Move) ports.LegalMove {
	return ports.LegalMove{
		Move: domain.Move{
			From:      mv.S1().String(),
			To:        mv.S2().String(),
			Promotion: promoLetter(mv),
		},
		IsCapture:   mv.HasTag(chess.Capture) || mv.HasTag(chess.EnPassant),
		IsEnPassant: mv.HasTag(chess.EnPassant),
		IsPromotion: mv.Promo() != chess.NoPieceType,
	}
}

func promoLetter(mv *chess.Move) string {
	if mv.Promo() == chess.NoPieceType {
		return ""
	}
	return mv.Promo().String()
}

func parseSquare(s string) (chess.Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, fmt.Errorf("invalid square %q", s)
	}
	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	return chess.Square(rank*8 + file), nil
}

// clearSquare blanks one square in a FEN placement field.
func clearSquare(placement, square string) (string, error) {
	rows := strings.Split(placement, "/")
	if len(rows) != 8 {
		return "", fmt.Errorf("malformed placement %q", placement)
	}
	file := int(square[0] - 'a')
	rankIdx := 7 - int(square[1]-'1') // rows run from rank 8 down to rank 1

	cells := make([]byte, 0, 8)
	for i := 0; i < len(rows[rankIdx]); i++ {
		ch := rows[rankIdx][i]
		if ch >= '1' && ch <= '8' {
			for n := 0; n < int(ch-'0'); n++ {
				cells = append(cells, '1')
			}
			continue
		}
		cells = append(cells, ch)
	}
	if len(cells) != 8 {
		return "", fmt.Errorf("malformed rank %q", rows[rankIdx])
	}
	cells[file] = '1'

	var sb strings.Builder
	run := 0
	for _, ch := range cells {
		if ch == '1' {
			run++
			continue
		}
		if run > 0 {
			sb.WriteByte(byte('0' + run))
			run = 0
		}
		sb.WriteByte(ch)
	}
	if run > 0 {
		sb.WriteByte(byte('0' + run))
	}
	rows[rankIdx] = sb.String()
	return strings.Join(rows, "/"), nil
}

var _ ports.Board = (*Board)(nil)
