package nakama

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"minusauction/internal/domain"
)

// Match message payloads. Clients exchange JSON.

type joinTeamRequest struct {
	Name     string `json:"name"`
	ColorIdx int    `json:"colorIdx"`
}

type actionRequest struct {
	PlayerID string `json:"playerId"`
	Action   string `json:"action"`
}

type resetRequest struct {
	Mode string `json:"mode"`
}

type resetEvent struct {
	Mode string `json:"mode"`
}

type gameFinishedEvent struct {
	Standings  []domain.Standing `json:"standings"`
	HiddenCard *int              `json:"hiddenCard"`
}

type errorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPC payloads.

type adminLoginRequest struct {
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
}

type createRoomRequest struct {
	Token    string `json:"token"`
	RoomName string `json:"roomName"`
	MaxTeams int    `json:"maxTeams"`
}

type createRoomResponse struct {
	MatchID string `json:"matchId"`
}

// FindRoomResponse is the payload returned to clients when requesting a lobby-capable room.
type FindRoomResponse struct {
	MatchID string `json:"matchId"`
	IsNew   bool   `json:"isNew"`
}

type adviceRequest struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

type adviceResponse struct {
	Advice   string `json:"advice"`
	Fallback bool   `json:"fallback"`
}

// decode unmarshals a client payload; an empty payload leaves v untouched.
func decode(data []byte, v interface{}) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func encode(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// intParam reads an integer match parameter. Values may arrive as any number
// type or as a numeric string depending on the caller.
func intParam(params map[string]interface{}, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func stringParam(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}
