package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"chess21/internal/app"
	"chess21/internal/config"
	"chess21/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	inviteSecretEnvKey = "chess21_invite_secret"
	inviteIssuer       = "chess21"
)

// CreateInviteRequest lets the inviter pick their side and optionally lock the
// invite to one friend.
type CreateInviteRequest struct {
	Side      string `json:"side"`       // "white" | "black", default white
	InviteeID string `json:"invitee_id"` // optional; empty = open invite
}

// CreateInviteResponse carries the new match and its shareable token.
type CreateInviteResponse struct {
	InviteID string `json:"invite_id"`
	MatchID  string `json:"match_id"`
	Token    string `json:"token"`
}

// AcceptInviteRequest is the payload for redeeming an invite token.
type AcceptInviteRequest struct {
	Token string `json:"token"`
}

// AcceptInviteResponse returns the match the accepting player should join.
type AcceptInviteResponse struct {
	MatchID string `json:"match_id"`
}

func rpcCreateInvite(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("user id not found", 16) // UNAUTHENTICATED
	}

	var req CreateInviteRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid payload", 3) // INVALID_ARGUMENT
		}
	}
	side := "white"
	if req.Side == "black" {
		side = "black"
	}

	tokens := inviteTokenService(ctx)
	if tokens == nil {
		return "", runtime.NewError("invites are not configured", 9) // FAILED_PRECONDITION
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameChess21, map[string]interface{}{
		"private":    true,
		"first_side": side,
	})
	if err != nil {
		logger.Error("rpcCreateInvite [User:%s]: MatchCreate error: %v", userID, err)
		return "", err
	}

	invite := ports.Invite{
		ID:        fmt.Sprintf("invite-%s-%d", userID, time.Now().UnixNano()),
		MatchID:   matchID,
		InviterID: userID,
		InviteeID: req.InviteeID,
		Status:    "pending",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	store := NewNakamaInviteStoreAdapter(nk)
	if err := store.CreateInvite(ctx, invite); err != nil {
		logger.Error("rpcCreateInvite [User:%s]: %v", userID, err)
		return "", err
	}

	token, err := tokens.GenerateToken(app.InviteClaims{
		InviteID:  invite.ID,
		MatchID:   matchID,
		InviterID: userID,
		InviteeID: req.InviteeID,
	})
	if err != nil {
		logger.Error("rpcCreateInvite [User:%s]: token error: %v", userID, err)
		return "", err
	}

	resp := CreateInviteResponse{InviteID: invite.ID, MatchID: matchID, Token: token}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

func rpcAcceptInvite(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("user id not found", 16) // UNAUTHENTICATED
	}

	var req AcceptInviteRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.Token == "" {
		return "", runtime.NewError("invalid payload", 3) // INVALID_ARGUMENT
	}

	tokens := inviteTokenService(ctx)
	if tokens == nil {
		return "", runtime.NewError("invites are not configured", 9) // FAILED_PRECONDITION
	}

	claims, err := tokens.ParseToken(req.Token)
	if err != nil {
		logger.Debug("rpcAcceptInvite [User:%s]: bad token: %v", userID, err)
		return "", runtime.NewError("invalid invite token", 7) // PERMISSION_DENIED
	}
	if claims.InviteeID != "" && claims.InviteeID != userID {
		return "", runtime.NewError("invite is for another player", 7)
	}
	if claims.InviterID == userID {
		return "", runtime.NewError("cannot accept your own invite", 9)
	}

	store := NewNakamaInviteStoreAdapter(nk)
	invite, err := store.GetInvite(ctx, claims.InviterID, claims.InviteID)
	if err != nil {
		logger.Error("rpcAcceptInvite [User:%s]: %v", userID, err)
		return "", runtime.NewError("invite not found", 5) // NOT_FOUND
	}
	if invite.Status == "accepted" && invite.InviteeID != userID {
		return "", runtime.NewError("invite already accepted", 9)
	}

	invite.Status = "accepted"
	invite.InviteeID = userID
	if err := store.UpdateInvite(ctx, invite); err != nil {
		logger.Error("rpcAcceptInvite [User:%s]: %v", userID, err)
		return "", err
	}

	resp := AcceptInviteResponse{MatchID: invite.MatchID}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

// inviteTokenService builds a token service from the runtime environment.
// Returns nil when no signing secret is configured.
func inviteTokenService(ctx context.Context) *app.InviteTokenService {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env[inviteSecretEnvKey]
	if secret == "" {
		return nil
	}
	ttl := time.Duration(config.GetGameConfig().InviteTokenTTLHours) * time.Hour
	return app.NewInviteTokenService(secret, inviteIssuer, ttl)
}
