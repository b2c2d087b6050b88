package nakama

import (
	"context"
	"database/sql"

	"minusauction/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// findRoomQuery matches rooms still accepting teams.
const findRoomQuery = "+label.open:T +label.game:" + domain.GameName + " +label.phase:" + string(domain.PhaseLobby)

// rpcFindRoom returns an open lobby, creating a default room if none exists.
//
// Returns: {"matchId": "...", "isNew": false}
func rpcFindRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	limit := 10
	authoritative := true
	minSize := 0
	maxSize := domain.MaxTeams

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, findRoomQuery)
	if err != nil {
		logger.Error("rpcFindRoom [User:%s]: MatchList error: %v", userID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}

	if len(matches) > 0 {
		logger.Info("rpcFindRoom [User:%s]: Found existing room %s", userID, matches[0].MatchId)
		return encode(FindRoomResponse{MatchID: matches[0].MatchId, IsNew: false})
	}

	// Quick-join rooms have no admin; their first team controls them.
	matchID, err := nk.MatchCreate(ctx, MatchNameMinusAuction, map[string]interface{}{})
	if err != nil {
		logger.Error("rpcFindRoom [User:%s]: MatchCreate error: %v", userID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}

	logger.Info("rpcFindRoom [User:%s]: Created new room %s", userID, matchID)
	return encode(FindRoomResponse{MatchID: matchID, IsNew: true})
}
