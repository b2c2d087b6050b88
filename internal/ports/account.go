package ports

import "context"

// AccountPort defines the interface for reading and updating account profiles.
type AccountPort interface {
	// DisplayName returns the profile name shown for the given user.
	// Returns an error if the account cannot be read.
	DisplayName(ctx context.Context, userID string) (string, error)
	// SetDisplayName replaces the profile name shown for the given user.
	SetDisplayName(ctx context.Context, userID, displayName string) error
}
