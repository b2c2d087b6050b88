package nakama

import (
	"context"
	"fmt"

	"minusauction/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
)

// accountClient is the slice of runtime.NakamaModule the account adapter needs.
type accountClient interface {
	AccountGetId(ctx context.Context, userID string) (*api.Account, error)
	AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error
}

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk accountClient
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk accountClient) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// DisplayName returns the display name of the account, falling back to its username.
func (a *NakamaAccountAdapter) DisplayName(ctx context.Context, userID string) (string, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get account: %w", err)
	}
	user := account.GetUser()
	if user == nil {
		return "", fmt.Errorf("account %s has no user", userID)
	}
	if user.GetDisplayName() != "" {
		return user.GetDisplayName(), nil
	}
	return user.GetUsername(), nil
}

// SetDisplayName updates only the display name; empty fields are left unchanged.
func (a *NakamaAccountAdapter) SetDisplayName(ctx context.Context, userID, displayName string) error {
	if err := a.nk.AccountUpdateId(ctx, userID, "", nil, displayName, "", "", "", ""); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
