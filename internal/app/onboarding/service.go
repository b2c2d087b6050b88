package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"minusauction/internal/ports"
)

// Service gives newly created accounts a company-style display name, which
// becomes their team name when they join a room without choosing one.
type Service struct {
	accounts ports.AccountPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service. accounts must be non-nil; rng
// may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		rng:      rng,
	}
}

// OnboardNewUser assigns a generated display name to userID and returns it.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (string, error) {
	if s.accounts == nil {
		return "", fmt.Errorf("onboarding service not configured")
	}

	displayName := s.generateTeamName()
	if err := s.accounts.SetDisplayName(ctx, userID, displayName); err != nil {
		return "", fmt.Errorf("failed to set display name: %w", err)
	}
	return displayName, nil
}

func (s *Service) generateTeamName() string {
	adjectives := []string{"Bold", "Silent", "Rapid", "Prime", "Golden", "Iron", "Lucky", "Northern", "Clever", "Steady"}
	nouns := []string{"Ventures", "Holdings", "Capital", "Partners", "Works", "Labs", "Builders", "Group", "Systems", "Trading"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(90) + 10

	return fmt.Sprintf("%s %s %d", adj, noun, num)
}
