package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// InviteClaims is the content of a signed invite token.
type InviteClaims struct {
	InviteID  string
	MatchID   string
	InviterID string
	InviteeID string // empty = open invite, anyone with the token may accept
}

// InviteTokenService mints and verifies the signed tokens that carry an
// invitation to a specific match.
type InviteTokenService struct {
	secret string
	issuer string
	ttl    time.Duration
}

// NewInviteTokenService constructs the service. ttl <= 0 defaults to 24h.
func NewInviteTokenService(secret, issuer string, ttl time.Duration) *InviteTokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &InviteTokenService{secret: secret, issuer: issuer, ttl: ttl}
}

// GenerateToken signs an invite token binding the invite and match ids.
func (s *InviteTokenService) GenerateToken(c InviteClaims) (string, error) {
	if s == nil || s.secret == "" {
		return "", fmt.Errorf("invite token service is not configured")
	}
	if c.InviteID == "" || c.MatchID == "" {
		return "", fmt.Errorf("invite id and match id are required")
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": c.InviterID,
		"exp": time.Now().Add(s.ttl).Unix(),
		"inv": c.InviteID,
		"mid": c.MatchID,
	}
	if c.InviteeID != "" {
		claims["aud"] = c.InviteeID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// ParseToken verifies a token's signature and expiry and returns its claims.
func (s *InviteTokenService) ParseToken(tokenString string) (InviteClaims, error) {
	if s == nil || s.secret == "" {
		return InviteClaims{}, fmt.Errorf("invite token service is not configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return InviteClaims{}, fmt.Errorf("invalid invite token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return InviteClaims{}, fmt.Errorf("invalid invite token")
	}

	out := InviteClaims{
		InviteID:  stringClaim(claims, "inv"),
		MatchID:   stringClaim(claims, "mid"),
		InviterID: stringClaim(claims, "sub"),
		InviteeID: stringClaim(claims, "aud"),
	}
	if out.InviteID == "" || out.MatchID == "" {
		return InviteClaims{}, fmt.Errorf("invite token is missing required claims")
	}
	return out, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
