package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"chess21/internal/ports"
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdated reports whether the generated display name was applied.
	ProfileUpdated bool
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service.
// accounts must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{accounts: accounts, rng: rng}
}

// OnboardNewUser initializes the profile for a newly created account with a
// generated display name so opponents see something friendlier than a UUID.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}
	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		return Result{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return Result{ProfileUpdated: true}, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Gambit", "Royal", "Swift", "Bold", "Lucky", "Sly", "Silent", "Wild", "Sharp", "Grand"}
	nouns := []string{"Knight", "Rook", "Bishop", "Pawn", "Dealer", "Ace", "Duke", "Baron", "Jack", "Queen"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
