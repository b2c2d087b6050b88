package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"minusauction/internal/app"
	"minusauction/internal/domain"
	"minusauction/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// gRPC status codes used by RPC errors.
const (
	codeInvalidArgument  = 3
	codeNotFound         = 5
	codePermissionDenied = 7
	codeInternal         = 13
)

var (
	adminService *app.AdminService
	advisorPort  ports.AdvisorPort
)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcAdminLogin: rpcAdminLogin,
		RpcCreateRoom: rpcCreateRoom,
		RpcFindRoom:   rpcFindRoom,
		RpcGetAdvice:  rpcGetAdvice,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

// rpcAdminLogin exchanges the admin password for a signed session token.
//
// Payload: {"password": "..."}  Returns: {"token": "..."}
func rpcAdminLogin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req adminLoginRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	token, err := adminService.Login(userID, req.Password)
	switch {
	case errors.Is(err, app.ErrBadPassword):
		logger.Warn("rpcAdminLogin [User:%s]: bad password", userID)
		return "", runtime.NewError("Invalid password", codePermissionDenied)
	case errors.Is(err, app.ErrAdminDisabled):
		return "", runtime.NewError("Admin login is not configured", codeInternal)
	case err != nil:
		logger.Error("rpcAdminLogin [User:%s]: %v", userID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}

	logger.Info("rpcAdminLogin [User:%s]: admin session issued", userID)
	return encode(adminLoginResponse{Token: token})
}

// rpcCreateRoom creates a room administered by the caller.
//
// Payload: {"token": "...", "roomName": "...", "maxTeams": 8}  Returns: {"matchId": "..."}
func rpcCreateRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req createRoomRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}
	if err := verifyAdmin(userID, req.Token); err != nil {
		logger.Warn("rpcCreateRoom [User:%s]: %v", userID, err)
		return "", runtime.NewError("Admin token required", codePermissionDenied)
	}

	cfg := domain.Config{RoomName: req.RoomName, MaxTeams: req.MaxTeams}.Normalize()
	if err := cfg.Validate(); err != nil {
		return "", runtime.NewError(err.Error(), codeInvalidArgument)
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameMinusAuction, map[string]interface{}{
		"roomName": cfg.RoomName,
		"maxTeams": cfg.MaxTeams,
		"creator":  userID,
	})
	if err != nil {
		logger.Error("rpcCreateRoom [User:%s]: MatchCreate error: %v", userID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}

	logger.Info("rpcCreateRoom [User:%s]: Created room %q as %s", userID, cfg.RoomName, matchID)
	return encode(createRoomResponse{MatchID: matchID})
}

// rpcGetAdvice asks the advisor about the caller's team, or any team for admins.
//
// Payload: {"matchId": "...", "playerId": "...", "token": "..."}  Returns: {"advice": "...", "fallback": false}
func rpcGetAdvice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req adviceRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.MatchID == "" {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	target := req.PlayerID
	if target == "" {
		target = userID
	}
	if target != userID {
		if err := verifyAdmin(userID, req.Token); err != nil {
			return "", runtime.NewError("Admin token required", codePermissionDenied)
		}
	}

	raw, err := nk.MatchSignal(ctx, req.MatchID, SignalSnapshot)
	if err != nil || raw == "" {
		logger.Warn("rpcGetAdvice [User:%s]: snapshot of %s unavailable: %v", userID, req.MatchID, err)
		return "", runtime.NewError("Match not found", codeNotFound)
	}
	var game domain.GameState
	if err := json.Unmarshal([]byte(raw), &game); err != nil {
		logger.Error("rpcGetAdvice [User:%s]: bad snapshot: %v", userID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}

	result := app.NewService(nil, advisorPort).Advice(ctx, game, target)
	if result.Err != nil {
		logger.Warn("rpcGetAdvice [User:%s]: advisor fallback: %v", userID, result.Err)
	}
	return encode(adviceResponse{Advice: result.Text, Fallback: result.Fallback})
}

// verifyAdmin checks that token is a valid admin session issued to userID.
func verifyAdmin(userID, token string) error {
	sub, err := adminService.Verify(token)
	if err != nil {
		return err
	}
	if sub != userID {
		return app.ErrInvalidToken
	}
	return nil
}
