package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"chess21/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const inviteCollection = "invites"

// NakamaInviteStoreAdapter implements ports.InviteStorePort on Nakama storage.
// Invites are stored under the inviter so the accept path can look them up by
// the inviter ID carried in the token.
type NakamaInviteStoreAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaInviteStoreAdapter creates a new invite store adapter.
func NewNakamaInviteStoreAdapter(nk runtime.NakamaModule) *NakamaInviteStoreAdapter {
	return &NakamaInviteStoreAdapter{nk: nk}
}

// CreateInvite stores a new invite record. Version "*" rejects duplicates.
func (a *NakamaInviteStoreAdapter) CreateInvite(ctx context.Context, invite ports.Invite) error {
	value, err := json.Marshal(invite)
	if err != nil {
		return fmt.Errorf("failed to marshal invite: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      inviteCollection,
			Key:             invite.ID,
			UserID:          invite.InviterID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write invite %s: %w", invite.ID, err)
	}
	return nil
}

// GetInvite loads an invite by its inviter and ID.
func (a *NakamaInviteStoreAdapter) GetInvite(ctx context.Context, inviterID, inviteID string) (ports.Invite, error) {
	reads := []*runtime.StorageRead{
		{Collection: inviteCollection, Key: inviteID, UserID: inviterID},
	}
	objects, err := a.nk.StorageRead(ctx, reads)
	if err != nil {
		return ports.Invite{}, fmt.Errorf("failed to read invite %s: %w", inviteID, err)
	}
	if len(objects) == 0 {
		return ports.Invite{}, fmt.Errorf("invite %s not found", inviteID)
	}

	var invite ports.Invite
	if err := json.Unmarshal([]byte(objects[0].Value), &invite); err != nil {
		return ports.Invite{}, fmt.Errorf("failed to unmarshal invite %s: %w", inviteID, err)
	}
	return invite, nil
}

// UpdateInvite overwrites the stored invite record.
func (a *NakamaInviteStoreAdapter) UpdateInvite(ctx context.Context, invite ports.Invite) error {
	value, err := json.Marshal(invite)
	if err != nil {
		return fmt.Errorf("failed to marshal invite: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      inviteCollection,
			Key:             invite.ID,
			UserID:          invite.InviterID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to update invite %s: %w", invite.ID, err)
	}
	return nil
}

var _ ports.InviteStorePort = (*NakamaInviteStoreAdapter)(nil)
