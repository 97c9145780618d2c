package ports

import "context"

// MatchResult describes a decided match for the results ledger.
type MatchResult struct {
	MatchID  string
	WinnerID string
	LoserID  string
	Reason   string // e.g. "king_captured", "time_expired", "opponent_left"
}

// ResultsPort records win/loss tallies per user at the end of a match.
type ResultsPort interface {
	// RecordResult bumps the winner's and loser's counters for one match.
	RecordResult(ctx context.Context, result MatchResult) error
}
