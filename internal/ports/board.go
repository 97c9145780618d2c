package ports

import "chess21/internal/domain"

// LegalMove is a legal move as reported by the rules engine, with the flags
// the dispatcher needs to classify it.
type LegalMove struct {
	Move        domain.Move
	IsCapture   bool
	IsEnPassant bool
	IsPromotion bool
}

// Board is the rules-engine capability consumed by the core: position state,
// legal-move enumeration and mutation. Implementations are mutable by
// reference and owned by a single match.
type Board interface {
	// SideToMove returns the color whose turn it is.
	SideToMove() domain.Color

	// LegalMoves enumerates the legal moves for the side to move.
	LegalMoves() []LegalMove

	// FindLegalMove resolves a from/to(/promotion) request against the legal
	// set, preferring a queen promotion when the request leaves it blank.
	// Returns nil when no legal move matches.
	FindLegalMove(mv domain.Move) *LegalMove

	// Apply plays a legal move, mutating the position and flipping the turn.
	Apply(mv domain.Move) error

	// PieceAt returns the piece on a square, if any.
	PieceAt(square string) (domain.PieceInfo, bool)

	// Remove deletes the piece on a square without moving anything.
	Remove(square string) error

	// ForceTurn hands the move to the given color without a move being played.
	ForceTurn(side domain.Color) error

	// Status reports whether the position is terminal and, if so, a
	// human-readable end message.
	Status() (over bool, message string)

	// FEN renders the current position.
	FEN() string
}
