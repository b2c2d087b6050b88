package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"minusauction/internal/app"
	"minusauction/internal/bot"
	"minusauction/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode     int64
	data       []byte
	recipients []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	messages  []sentMessage
	lastLabel string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.messages = append(md.messages, sentMessage{opCode: opCode, data: append([]byte(nil), data...), recipients: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.lastLabel = label
	return nil
}

// last returns the most recent message with opCode.
func (md *mockDispatcher) last(t *testing.T, opCode int64) sentMessage {
	t.Helper()
	for i := len(md.messages) - 1; i >= 0; i-- {
		if md.messages[i].opCode == opCode {
			return md.messages[i]
		}
	}
	t.Fatalf("no message with opcode %d sent", opCode)
	return sentMessage{}
}

func (md *mockDispatcher) count(opCode int64) int {
	n := 0
	for _, m := range md.messages {
		if m.opCode == opCode {
			n++
		}
	}
	return n
}

// fakePresence overrides the presence getters the handler reads.
type fakePresence struct {
	runtime.Presence
	userID string
}

func (p *fakePresence) GetUserId() string    { return p.userID }
func (p *fakePresence) GetSessionId() string { return "session-" + p.userID }
func (p *fakePresence) GetUsername() string  { return "user_" + p.userID }

type fakeMatchData struct {
	runtime.MatchData
	userID string
	opCode int64
	data   []byte
}

func (m *fakeMatchData) GetUserId() string   { return m.userID }
func (m *fakeMatchData) GetUsername() string { return "user_" + m.userID }
func (m *fakeMatchData) GetOpCode() int64    { return m.opCode }
func (m *fakeMatchData) GetData() []byte     { return m.data }

func matchData(userID string, opCode int64, payload string) runtime.MatchData {
	return &fakeMatchData{userID: userID, opCode: opCode, data: []byte(payload)}
}

type fakeResults struct {
	calls     int
	matchID   string
	standings []domain.Standing
}

func (f *fakeResults) RecordResults(ctx context.Context, matchID string, standings []domain.Standing) error {
	f.calls++
	f.matchID = matchID
	f.standings = standings
	return nil
}

type fakeAccounts struct {
	name string
	err  error
}

func (f fakeAccounts) DisplayName(ctx context.Context, userID string) (string, error) {
	return f.name, f.err
}

func (f fakeAccounts) SetDisplayName(ctx context.Context, userID, displayName string) error {
	return f.err
}

type matchHarness struct {
	t        *testing.T
	handler  *matchHandler
	state    *MatchState
	dispatch *mockDispatcher
	tick     int64
}

func newHarness(t *testing.T, admin *app.AdminService, params map[string]interface{}) *matchHarness {
	t.Helper()
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_MATCH_ID, "match-1")
	handler := newMatchHandler(admin)
	raw, _, _ := handler.MatchInit(ctx, noopLogger{}, nil, nil, params)
	state, ok := raw.(*MatchState)
	if !ok {
		t.Fatalf("MatchInit returned %T", raw)
	}
	return &matchHarness{t: t, handler: handler, state: state, dispatch: &mockDispatcher{}}
}

func (h *matchHarness) join(userIDs ...string) {
	presences := make([]runtime.Presence, 0, len(userIDs))
	for _, id := range userIDs {
		presences = append(presences, &fakePresence{userID: id})
	}
	h.handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, h.dispatch, h.tick, h.state, presences)
}

func (h *matchHarness) loop(messages ...runtime.MatchData) {
	h.tick++
	h.handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, h.dispatch, h.tick, h.state, messages)
}

func (h *matchHarness) joinTeams(userIDs ...string) {
	h.join(userIDs...)
	var msgs []runtime.MatchData
	for i, id := range userIDs {
		msgs = append(msgs, matchData(id, OpJoinTeam, fmt.Sprintf(`{"name":"Team %s","colorIdx":%d}`, id, i)))
	}
	h.loop(msgs...)
}

func decodeError(t *testing.T, msg sentMessage) errorEvent {
	t.Helper()
	var ev errorEvent
	if err := json.Unmarshal(msg.data, &ev); err != nil {
		t.Fatalf("decode error event: %v", err)
	}
	return ev
}

func TestMatchInitLabel(t *testing.T) {
	handler := newMatchHandler(nil)
	raw, tickRate, label := handler.MatchInit(context.Background(), noopLogger{}, nil, nil, map[string]interface{}{
		"roomName": "Finals",
		"maxTeams": float64(6),
	})
	state := raw.(*MatchState)
	if tickRate <= 0 {
		t.Fatalf("tick rate = %d", tickRate)
	}
	if state.Game.Phase != domain.PhaseLobby || state.Game.Config.MaxTeams != 6 {
		t.Fatalf("initial game = %+v", state.Game)
	}

	var got map[string]interface{}
	if err := json.Unmarshal([]byte(label), &got); err != nil {
		t.Fatalf("label is not JSON: %v", err)
	}
	want := map[string]interface{}{
		"open":      true,
		"game":      domain.GameName,
		"phase":     string(domain.PhaseLobby),
		"room":      "Finals",
		"teams":     float64(0),
		"max_teams": float64(6),
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("label[%s] = %v, want %v", k, got[k], v)
		}
	}

	if raw, _, _ := handler.MatchInit(context.Background(), noopLogger{}, nil, nil, map[string]interface{}{"maxTeams": 2}); raw != nil {
		t.Fatal("invalid room config should abort MatchInit")
	}
}

func TestJoinTeamAndStart(t *testing.T) {
	h := newHarness(t, nil, map[string]interface{}{"maxTeams": 6})
	h.joinTeams("u1", "u2", "u3")

	if n := len(h.state.Game.Players); n != 3 {
		t.Fatalf("teams = %d, want 3", n)
	}

	// Too few teams.
	h.loop(matchData("u1", OpStartGame, ""))
	if ev := decodeError(t, h.dispatch.last(t, OpError)); ev.Code != ErrCodeBadRequest {
		t.Fatalf("error code = %d, want %d", ev.Code, ErrCodeBadRequest)
	}

	h.state.Accounts = fakeAccounts{name: "Display Four"}
	h.join("u4")
	h.loop(matchData("u4", OpJoinTeam, `{}`))
	if p, _ := h.state.Game.Player("u4"); p.Name != "Display Four" {
		t.Fatalf("team name = %q, want account display name", p.Name)
	}

	// Only the first team controls a room without admins.
	h.loop(matchData("u2", OpStartGame, ""))
	msg := h.dispatch.last(t, OpError)
	if ev := decodeError(t, msg); ev.Code != ErrCodeForbidden {
		t.Fatalf("error code = %d, want %d", ev.Code, ErrCodeForbidden)
	}
	if len(msg.recipients) != 1 || msg.recipients[0].GetUserId() != "u2" {
		t.Fatal("error should only go to the sender")
	}
	if h.state.Game.Phase != domain.PhaseLobby {
		t.Fatal("rejected start changed the phase")
	}

	h.loop(matchData("u1", OpStartGame, ""))
	if h.state.Game.Phase != domain.PhasePlaying {
		t.Fatalf("phase = %s, want PLAYING", h.state.Game.Phase)
	}
	var snapshot domain.GameState
	if err := json.Unmarshal(h.dispatch.last(t, OpStateUpdate).data, &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.HiddenCard != nil || snapshot.CurrentCard == nil {
		t.Fatalf("broadcast snapshot hidden=%v current=%v", snapshot.HiddenCard, snapshot.CurrentCard)
	}

	// Late teams are refused once the auction runs.
	h.join("u5")
	h.loop(matchData("u5", OpJoinTeam, `{"name":"Late"}`))
	if ev := decodeError(t, h.dispatch.last(t, OpError)); ev.Code != ErrCodeConflict {
		t.Fatalf("error code = %d, want %d", ev.Code, ErrCodeConflict)
	}
}

func TestActionAuthorization(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.joinTeams("u1", "u2", "u3", "u4")
	h.loop(matchData("u1", OpStartGame, ""))

	current, _ := h.state.Game.CurrentPlayer()
	other := h.state.Game.Players[(h.state.Game.CurrentPlayerIndex+1)%4]

	h.loop(matchData(other.ID, OpAction, `{"action":"pass"}`))
	if ev := decodeError(t, h.dispatch.last(t, OpError)); ev.Code != ErrCodeForbidden {
		t.Fatalf("error code = %d, want %d", ev.Code, ErrCodeForbidden)
	}
	h.loop(matchData(other.ID, OpAction, fmt.Sprintf(`{"playerId":%q,"action":"pass"}`, current.ID)))
	if h.state.Game.Pot != 0 {
		t.Fatal("acting for another team should be rejected")
	}
	h.loop(matchData(current.ID, OpAction, `{"action":"fold"}`))
	if ev := decodeError(t, h.dispatch.last(t, OpError)); ev.Code != ErrCodeBadRequest {
		t.Fatalf("error code = %d, want %d", ev.Code, ErrCodeBadRequest)
	}

	h.loop(matchData(current.ID, OpAction, `{"action":"pass"}`))
	if h.state.Game.Pot != 1 {
		t.Fatalf("pot = %d, want 1", h.state.Game.Pot)
	}
	if next, _ := h.state.Game.CurrentPlayer(); next.ID != other.ID {
		t.Fatalf("turn went to %s, want %s", next.ID, other.ID)
	}
}

func TestAdminJoinAndDelegatedAction(t *testing.T) {
	admin := app.NewAdminService("pw", "secret", time.Hour)
	token, err := admin.Login("admin", "pw")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}

	h := newHarness(t, admin, map[string]interface{}{"roomName": "Hall"})
	tests := []struct {
		name     string
		userID   string
		metadata map[string]string
		accept   bool
	}{
		{name: "spectator", userID: "viewer", accept: true},
		{name: "garbage token", userID: "admin", metadata: map[string]string{MetadataAdminToken: "nope"}},
		{name: "stolen token", userID: "intruder", metadata: map[string]string{MetadataAdminToken: token}},
		{name: "admin", userID: "admin", metadata: map[string]string{MetadataAdminToken: token}, accept: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, _ := h.handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, h.dispatch, 0, h.state, &fakePresence{userID: tt.userID}, tt.metadata)
			if ok != tt.accept {
				t.Fatalf("accepted = %t, want %t", ok, tt.accept)
			}
		})
	}
	if !h.state.Admins["admin"] || h.state.Admins["intruder"] || h.state.Admins["viewer"] {
		t.Fatalf("admins = %v", h.state.Admins)
	}

	h.join("admin")
	h.joinTeams("u1", "u2", "u3", "u4")
	h.loop(matchData("u1", OpStartGame, ""))
	if h.state.Game.Phase != domain.PhaseLobby {
		t.Fatal("teams may not start an administered room")
	}
	h.loop(matchData("admin", OpStartGame, ""))
	if h.state.Game.Phase != domain.PhasePlaying {
		t.Fatal("admin start failed")
	}

	current, _ := h.state.Game.CurrentPlayer()
	h.loop(matchData("admin", OpAction, fmt.Sprintf(`{"playerId":%q,"action":"take"}`, current.ID)))
	if p, _ := h.state.Game.Player(current.ID); len(p.Cards) != 1 {
		t.Fatalf("delegated take not applied: %+v", p)
	}

	// Control stays with admins while none is connected.
	h.handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, h.dispatch, h.tick, h.state, []runtime.Presence{&fakePresence{userID: "admin"}})
	for _, op := range []int64{OpReset, OpStartGame, OpAddBot} {
		h.loop(matchData("u1", op, `{"mode":"full"}`))
		if ev := decodeError(t, h.dispatch.last(t, OpError)); ev.Code != ErrCodeForbidden {
			t.Fatalf("opcode %d: error code = %d, want %d", op, ev.Code, ErrCodeForbidden)
		}
	}
	if h.state.Game.Phase != domain.PhasePlaying || len(h.state.Game.Players) != 4 {
		t.Fatalf("team took over an administered room: phase=%s teams=%d", h.state.Game.Phase, len(h.state.Game.Players))
	}

	if _, ok, _ := h.handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, h.dispatch, h.tick, h.state, &fakePresence{userID: "admin"}, map[string]string{MetadataAdminToken: token}); !ok {
		t.Fatal("returning admin rejected")
	}
	h.join("admin")
	h.loop(matchData("admin", OpReset, `{"mode":"full"}`))
	if h.state.Game.Phase != domain.PhaseLobby || len(h.state.Game.Players) != 0 {
		t.Fatalf("full reset = %+v", h.state.Game)
	}
	if h.dispatch.count(OpResetDone) != 1 {
		t.Fatal("reset event not broadcast")
	}
}

func TestBotsPlayToFinish(t *testing.T) {
	h := newHarness(t, nil, map[string]interface{}{"maxTeams": 4, "creator": "admin"})
	h.state.BotDelayTicks = 2
	results := &fakeResults{}
	h.state.Results = results

	h.join("admin")
	h.joinTeams("u1")
	h.loop(matchData("admin", OpAddBot, ""))
	if ev := decodeError(t, h.dispatch.last(t, OpError)); ev.Code != ErrCodeForbidden {
		t.Fatalf("error code = %d, want %d when bots are disabled", ev.Code, ErrCodeForbidden)
	}

	h.state.BotsEnabled = true
	h.loop(
		matchData("admin", OpAddBot, ""),
		matchData("admin", OpAddBot, ""),
		matchData("admin", OpAddBot, ""),
	)
	if len(h.state.Bots) != 3 || len(h.state.Game.Players) != 4 {
		t.Fatalf("bots=%d teams=%d", len(h.state.Bots), len(h.state.Game.Players))
	}
	for _, p := range h.state.Game.Players[1:] {
		if !bot.IsBot(p.ID) {
			t.Fatalf("team %s should be a bot", p.ID)
		}
	}

	h.loop(matchData("admin", OpStartGame, ""))
	for steps := 0; h.state.Game.Phase == domain.PhasePlaying; steps++ {
		if steps > 20000 {
			t.Fatal("auction did not finish")
		}
		var msgs []runtime.MatchData
		if current, _ := h.state.Game.CurrentPlayer(); current.ID == "u1" {
			msgs = append(msgs, matchData("u1", OpAction, `{"action":"take"}`))
		}
		h.loop(msgs...)
	}

	if h.state.Game.Phase != domain.PhaseFinished {
		t.Fatalf("phase = %s", h.state.Game.Phase)
	}
	var finished gameFinishedEvent
	if err := json.Unmarshal(h.dispatch.last(t, OpGameFinished).data, &finished); err != nil {
		t.Fatalf("decode finish: %v", err)
	}
	if len(finished.Standings) != 4 || finished.HiddenCard == nil {
		t.Fatalf("finish event = %+v", finished)
	}

	h.loop()
	if results.calls != 1 || results.matchID != "match-1" {
		t.Fatalf("results calls=%d match=%q", results.calls, results.matchID)
	}
	if len(results.standings) != 1 || results.standings[0].PlayerID != "u1" {
		t.Fatalf("recorded standings = %+v", results.standings)
	}
}

func TestBotWaitsConfiguredTicks(t *testing.T) {
	h := newHarness(t, nil, map[string]interface{}{"creator": "admin"})
	h.state.BotsEnabled = true
	h.state.BotDelayTicks = 3
	h.join("admin")
	h.loop(
		matchData("admin", OpAddBot, ""),
		matchData("admin", OpAddBot, ""),
		matchData("admin", OpAddBot, ""),
		matchData("admin", OpAddBot, ""),
	)
	h.loop(matchData("admin", OpStartGame, ""))
	startTurn := h.state.Game.TurnCount

	// The start tick schedules the first move three ticks ahead.
	h.loop()
	h.loop()
	if h.state.Game.TurnCount != startTurn {
		t.Fatal("bot acted before its delay elapsed")
	}
	h.loop()
	if h.state.Game.TurnCount != startTurn+1 {
		t.Fatalf("turn count = %d, want %d", h.state.Game.TurnCount, startTurn+1)
	}
}

func TestMatchLeave(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.joinTeams("u1", "u2")

	leave := func(ids ...string) interface{} {
		var presences []runtime.Presence
		for _, id := range ids {
			presences = append(presences, &fakePresence{userID: id})
		}
		return h.handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, h.dispatch, h.tick, h.state, presences)
	}

	if got := leave("u2"); got == nil {
		t.Fatal("match should survive while a human remains")
	}
	if p, _ := h.state.Game.Player("u2"); p.Online {
		t.Fatal("leaving team should be marked offline")
	}

	h.join("u2")
	if p, _ := h.state.Game.Player("u2"); !p.Online {
		t.Fatal("returning team should be marked online")
	}

	if got := leave("u1", "u2"); got != nil {
		t.Fatal("match should terminate when no humans remain")
	}
}

func TestMatchSignalSnapshot(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.joinTeams("u1", "u2", "u3", "u4")
	h.loop(matchData("u1", OpStartGame, ""))

	_, raw := h.handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, h.dispatch, h.tick, h.state, SignalSnapshot)
	var snapshot domain.GameState
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.HiddenCard != nil || len(snapshot.Players) != 4 {
		t.Fatalf("snapshot = %+v", snapshot)
	}

	if _, raw := h.handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, h.dispatch, h.tick, h.state, "bogus"); raw != "" {
		t.Fatalf("unknown signal answered %q", raw)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("wrap: %w", app.ErrUnauthorized), want: ErrCodeForbidden},
		{err: app.ErrNotAdmin, want: ErrCodeForbidden},
		{err: app.ErrRoomFull, want: ErrCodeConflict},
		{err: domain.ErrNotPlaying, want: ErrCodeConflict},
		{err: domain.ErrInvalidAction, want: ErrCodeBadRequest},
		{err: errors.New("other"), want: ErrCodeBadRequest},
	}
	for _, tt := range tests {
		if got := errorCode(tt.err); got != tt.want {
			t.Errorf("errorCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestIntParam(t *testing.T) {
	params := map[string]interface{}{
		"int":    7,
		"float":  float64(8),
		"string": "9",
		"bad":    "x",
	}
	tests := []struct {
		key  string
		want int
	}{
		{key: "int", want: 7},
		{key: "float", want: 8},
		{key: "string", want: 9},
		{key: "bad", want: 5},
		{key: "missing", want: 5},
	}
	for _, tt := range tests {
		if got := intParam(params, tt.key, 5); got != tt.want {
			t.Errorf("intParam(%s) = %d, want %d", tt.key, got, tt.want)
		}
	}
}
