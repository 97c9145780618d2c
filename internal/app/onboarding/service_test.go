package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

type fakeAccountPort struct {
	updateErr error
	updates   []string
}

func (f *fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	f.updates = append(f.updates, displayName)
	return f.updateErr
}

func TestOnboardNewUser_SetsGeneratedDisplayName(t *testing.T) {
	accounts := &fakeAccountPort{}
	service := NewService(accounts, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if !result.ProfileUpdated {
		t.Fatalf("Expected profile to be updated")
	}
	if len(accounts.updates) != 1 {
		t.Fatalf("Expected 1 profile update, got %d", len(accounts.updates))
	}
	if accounts.updates[0] == "" {
		t.Fatalf("Expected a generated display name, got empty string")
	}
}

func TestOnboardNewUser_ProfileUpdateFailure(t *testing.T) {
	accounts := &fakeAccountPort{updateErr: errors.New("account service down")}
	service := NewService(accounts, rand.New(rand.NewSource(1)))

	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatalf("Expected error when profile update fails")
	}
}

func TestGenerateFriendlyName_Deterministic(t *testing.T) {
	a := NewService(&fakeAccountPort{}, rand.New(rand.NewSource(7)))
	b := NewService(&fakeAccountPort{}, rand.New(rand.NewSource(7)))

	if a.generateFriendlyName() != b.generateFriendlyName() {
		t.Fatalf("Expected identical names from identical seeds")
	}
}
