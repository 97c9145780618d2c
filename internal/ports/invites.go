package ports

import "context"

// Invite is a record in the invite directory binding an invitation to a match.
type Invite struct {
	ID        string `json:"id"`
	MatchID   string `json:"match_id"`
	InviterID string `json:"inviter_id"`
	InviteeID string `json:"invitee_id,omitempty"` // empty = open invite
	Status    string `json:"status"`               // "pending" | "accepted"
	CreatedAt string `json:"created_at"`
}

// InviteStorePort is the invite directory consumed for matchmaking by
// invitation. Clients watch their own records through the platform's realtime
// listeners; the core only creates, reads and updates them.
type InviteStorePort interface {
	// CreateInvite writes a new invite record owned by the inviter.
	CreateInvite(ctx context.Context, inv Invite) error

	// GetInvite loads an invite record by id.
	GetInvite(ctx context.Context, inviterID, inviteID string) (Invite, error)

	// UpdateInvite rewrites an existing invite record.
	UpdateInvite(ctx context.Context, inv Invite) error
}
