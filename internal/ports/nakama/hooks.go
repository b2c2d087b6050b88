package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"minusauction/internal/app/onboarding"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// afterAuthenticateDevice names freshly created accounts so their team has a
// default name. Failures are logged and never fail the authentication.
func afterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	if out == nil || !out.GetCreated() {
		return nil
	}

	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		resolved, err := userIDFromSessionToken(out.GetToken())
		if err != nil {
			logger.Warn("afterAuthenticateDevice: Could not resolve new user: %v", err)
			return nil
		}
		userID = resolved
	}

	name, err := onboarding.NewService(NewNakamaAccountAdapter(nk), nil).OnboardNewUser(ctx, userID)
	if err != nil {
		logger.Warn("afterAuthenticateDevice [User:%s]: %v", userID, err)
		return nil
	}
	logger.Info("afterAuthenticateDevice [User:%s]: onboarded as %q", userID, name)
	return nil
}

// userIDFromSessionToken reads the uid claim of a session token Nakama has just
// issued. The signature is not checked.
func userIDFromSessionToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}
	uid, _ := claims["uid"].(string)
	if uid == "" {
		return "", fmt.Errorf("session token missing uid")
	}
	return uid, nil
}
