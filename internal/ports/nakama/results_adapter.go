package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chess21/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	resultsCollection = "results"
	recordKey         = "record_v1"
)

// playerRecord is the cumulative win/loss ledger stored per user.
type playerRecord struct {
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	UpdatedAt string `json:"updated_at"`
}

// NakamaResultsAdapter implements ports.ResultsPort on Nakama storage. Each
// decided match appends one result object and bumps both players' records.
type NakamaResultsAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaResultsAdapter creates a new results adapter.
func NewNakamaResultsAdapter(nk runtime.NakamaModule) *NakamaResultsAdapter {
	return &NakamaResultsAdapter{nk: nk}
}

// RecordResult persists the match outcome and updates both players' ledgers.
func (a *NakamaResultsAdapter) RecordResult(ctx context.Context, result ports.MatchResult) error {
	if result.WinnerID == "" || result.LoserID == "" {
		return fmt.Errorf("result requires both winner and loser")
	}

	entry := map[string]interface{}{
		"match_id":  result.MatchID,
		"winner_id": result.WinnerID,
		"loser_id":  result.LoserID,
		"reason":    result.Reason,
		"ended_at":  time.Now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      resultsCollection,
			Key:             fmt.Sprintf("match_%s", result.MatchID),
			UserID:          result.WinnerID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if err := a.bumpRecord(ctx, result.WinnerID, true); err != nil {
		return err
	}
	return a.bumpRecord(ctx, result.LoserID, false)
}

func (a *NakamaResultsAdapter) bumpRecord(ctx context.Context, userID string, won bool) error {
	reads := []*runtime.StorageRead{
		{Collection: resultsCollection, Key: recordKey, UserID: userID},
	}
	objects, err := a.nk.StorageRead(ctx, reads)
	if err != nil {
		return fmt.Errorf("failed to read record for user %s: %w", userID, err)
	}

	var record playerRecord
	version := ""
	if len(objects) > 0 {
		if err := json.Unmarshal([]byte(objects[0].Value), &record); err != nil {
			return fmt.Errorf("failed to unmarshal record for user %s: %w", userID, err)
		}
		version = objects[0].Version
	}

	if won {
		record.Wins++
	} else {
		record.Losses++
	}
	record.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      resultsCollection,
			Key:             recordKey,
			UserID:          userID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write record for user %s: %w", userID, err)
	}
	return nil
}

var _ ports.ResultsPort = (*NakamaResultsAdapter)(nil)
