package nakama

import (
	"context"
	"database/sql"

	"minusauction/internal/advisor"
	"minusauction/internal/app"
	"minusauction/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(GameConfigPath); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	adminService = app.NewAdminService(env[EnvAdminPassword], env[EnvTokenSecret], cfg.AdminTokenTTL())
	if env[EnvAdminPassword] == "" || env[EnvTokenSecret] == "" {
		logger.Warn("InitModule: Admin credentials missing from env, admin login disabled.")
	}

	if key := env[EnvGeminiAPIKey]; key != "" {
		gemini, err := advisor.NewGemini(ctx, key, cfg.AdvisorModel, cfg.AdvisorTimeout())
		if err != nil {
			logger.Warn("InitModule: Advisor unavailable: %v", err)
		} else {
			advisorPort = gemini
		}
	} else {
		logger.Info("InitModule: %s not set, advice falls back to fixed text.", EnvGeminiAPIKey)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(afterAuthenticateDevice); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameMinusAuction, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(adminService), nil
	}); err != nil {
		return err
	}

	logger.Info("Minus Auction Go module loaded.")
	return nil
}
