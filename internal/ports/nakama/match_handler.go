package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"minusauction/internal/app"
	"minusauction/internal/bot"
	"minusauction/internal/config"
	"minusauction/internal/domain"
	"minusauction/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Game            domain.GameState            `json:"game"`             // Single authoritative room snapshot
	MatchID         string                      `json:"match_id"`         // Nakama match id, key for stored results
	Tick            int64                       `json:"tick"`             // Current tick of the match
	Presences       map[string]runtime.Presence `json:"-"`                // Map UserId -> Presence for targeted messaging
	Admins          map[string]bool             `json:"admins"`           // Connected users holding a verified admin token
	Administered    bool                        `json:"administered"`     // Set once an admin created or joined the room; never cleared
	App             *app.Service                `json:"-"`                // Use-cases operating on Game
	BotsEnabled     bool                        `json:"bots_enabled"`     // Whether AI teams may be added
	BotLevel        bot.BotLevel                `json:"bot_level"`        // Default brain for added bots
	BotDelayTicks   int64                       `json:"bot_delay_ticks"`  // Ticks a bot waits before acting
	BotWaitUntil    int64                       `json:"bot_wait_until"`   // Tick when the bot on turn should act
	Bots            map[string]*bot.Agent       `json:"-"`                // Active bot agents
	ResultsRecorded bool                        `json:"results_recorded"` // Set once standings of a finished game are stored
	Results         ports.ResultsPort           `json:"-"`                // Interface to Nakama storage
	Accounts        ports.AccountPort           `json:"-"`                // Interface to Nakama accounts
}

// humanPresenceCount counts connected non-bot users.
func (ms *MatchState) humanPresenceCount() int {
	count := 0
	for userID := range ms.Presences {
		if !bot.IsBot(userID) {
			count++
		}
	}
	return count
}

// ownerID returns the first human team in the roster, or "" if none exist.
func (ms *MatchState) ownerID() string {
	for _, p := range ms.Game.Players {
		if !bot.IsBot(p.ID) {
			return p.ID
		}
	}
	return ""
}

// canControl reports whether userID may start, reset or add bots. Administered
// rooms are controlled by admins only, even while none is connected; quick-join
// rooms by their first team.
func (ms *MatchState) canControl(userID string) bool {
	if ms.Administered {
		return ms.Admins[userID]
	}
	return userID != "" && userID == ms.ownerID()
}

type matchHandler struct {
	admin *app.AdminService
}

func newMatchHandler(admin *app.AdminService) *matchHandler {
	return &matchHandler{admin: admin}
}

// MatchInit is called when the match is created.
//
// Params: roomName (string), maxTeams (number), creator (admin user id, optional).
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := config.LoadGameConfig(GameConfigPath); err != nil {
		logger.Warn("MatchInit: Could not load game config, using defaults: %v", err)
	}
	if err := bot.LoadIdentities(BotIdentitiesPath); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	cfg := config.GetGameConfig()

	level, err := bot.ParseBotLevel(cfg.BotLevel)
	if err != nil {
		logger.Warn("MatchInit: %v, falling back to %s", err, bot.BotLevelCautious)
		level = bot.BotLevelCautious
	}

	svc := app.NewService(nil, nil)
	lobby, _, err := svc.CreateRoom(domain.Config{
		RoomName: stringParam(params, "roomName"),
		MaxTeams: intParam(params, "maxTeams", cfg.DefaultMaxTeams),
	})
	if err != nil {
		logger.Error("MatchInit: Invalid room config: %v", err)
		return nil, 0, ""
	}

	state := &MatchState{
		Game:          lobby,
		Presences:     make(map[string]runtime.Presence),
		Admins:        make(map[string]bool),
		App:           svc,
		BotLevel:      level,
		BotDelayTicks: int64(cfg.BotDelayTicks),
		Bots:          make(map[string]*bot.Agent),
	}
	if nk != nil {
		state.Results = NewNakamaResultsAdapter(nk)
		state.Accounts = NewNakamaAccountAdapter(nk)
	}
	if creator := stringParam(params, "creator"); creator != "" {
		state.Admins[creator] = true
		state.Administered = true
	}
	state.MatchID, _ = ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env[EnvBotsEnabled]; ok {
		state.BotsEnabled = val == "true"
	}

	label, err := encodeLabel(state.Game)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	logger.Info("MatchInit: Room %q created (max teams %d).", state.Game.Config.RoomName, state.Game.Config.MaxTeams)
	return state, cfg.TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if token := metadata[MetadataAdminToken]; token != "" {
		sub, err := mh.admin.Verify(token)
		if err != nil || sub != presence.GetUserId() {
			logger.Warn("MatchJoinAttempt: User %s presented an invalid admin token: %v", presence.GetUserId(), err)
			return matchState, false, "invalid admin token"
		}
		matchState.Admins[presence.GetUserId()] = true
		matchState.Administered = true
		logger.Info("MatchJoinAttempt: User %s joins as admin.", presence.GetUserId())
	}

	// Anyone may watch; joining the roster happens through OpJoinTeam.
	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	changed := false
	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		if matchState.Game.PlayerIndex(p.GetUserId()) >= 0 {
			matchState.Game = matchState.App.SetOnline(matchState.Game, p.GetUserId(), true)
			changed = true
			logger.Debug("MatchJoin: Team %s reconnected.", p.GetUserId())
		}
	}

	if changed {
		mh.publish(ctx, matchState, dispatcher, logger, stateUpdatedEvent(matchState.Game))
		return matchState
	}

	// Bring the newcomers up to date.
	recipients := make([]string, 0, len(presences))
	for _, p := range presences {
		recipients = append(recipients, p.GetUserId())
	}
	ev := stateUpdatedEvent(matchState.Game)
	ev.Recipients = recipients
	mh.publish(ctx, matchState, dispatcher, logger, ev)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		delete(matchState.Admins, p.GetUserId())
		matchState.Game = matchState.App.SetOnline(matchState.Game, p.GetUserId(), false)
		logger.Debug("MatchLeave: User %s left.", p.GetUserId())
	}

	if matchState.humanPresenceCount() == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.publish(ctx, matchState, dispatcher, logger, stateUpdatedEvent(matchState.Game))
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// Messages of one tick are applied in arrival order against the latest snapshot.
	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpJoinTeam:
			mh.handleJoinTeam(ctx, matchState, dispatcher, logger, msg)
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpAction:
			mh.handleAction(ctx, matchState, dispatcher, logger, msg)
		case OpReset:
			mh.handleReset(ctx, matchState, dispatcher, logger, msg)
		case OpAddBot:
			mh.handleAddBot(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.processBots(ctx, matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) handleJoinTeam(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var req joinTeamRequest
	if err := decode(msg.GetData(), &req); err != nil {
		mh.reject(state, dispatcher, logger, senderID, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" && state.Accounts != nil {
		if displayName, err := state.Accounts.DisplayName(ctx, senderID); err != nil {
			logger.Warn("handleJoinTeam: Could not read account of %s: %v", senderID, err)
		} else {
			name = displayName
		}
	}
	if name == "" {
		name = msg.GetUsername()
	}

	next, events, err := state.App.Join(state.Game, app.JoinRequest{PlayerID: senderID, Name: name, ColorIdx: req.ColorIdx})
	mh.apply(ctx, state, dispatcher, logger, senderID, next, events, err)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	logger.Info("StartGame: Request received from %s (teams=%d)", senderID, len(state.Game.Players))

	if !state.canControl(senderID) {
		mh.reject(state, dispatcher, logger, senderID, app.ErrNotAdmin)
		return
	}

	next, events, err := state.App.StartGame(state.Game)
	mh.apply(ctx, state, dispatcher, logger, senderID, next, events, err)
}

func (mh *matchHandler) handleAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var req actionRequest
	if err := decode(msg.GetData(), &req); err != nil {
		mh.reject(state, dispatcher, logger, senderID, err)
		return
	}
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		mh.reject(state, dispatcher, logger, senderID, err)
		return
	}

	next, events, err := state.App.Act(state.Game, app.ActionRequest{
		ActorID:  senderID,
		PlayerID: req.PlayerID,
		Action:   action,
		Admin:    state.Admins[senderID],
	})
	mh.apply(ctx, state, dispatcher, logger, senderID, next, events, err)
}

func (mh *matchHandler) handleReset(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !state.canControl(senderID) {
		mh.reject(state, dispatcher, logger, senderID, app.ErrNotAdmin)
		return
	}

	var req resetRequest
	if err := decode(msg.GetData(), &req); err != nil {
		mh.reject(state, dispatcher, logger, senderID, err)
		return
	}
	mode, err := app.ParseResetMode(req.Mode)
	if err != nil {
		mh.reject(state, dispatcher, logger, senderID, err)
		return
	}

	next, events, err := state.App.Reset(state.Game, mode)
	if err == nil && mode == app.ResetFull {
		state.Bots = make(map[string]*bot.Agent)
	}
	mh.apply(ctx, state, dispatcher, logger, senderID, next, events, err)
}

func (mh *matchHandler) handleAddBot(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !state.canControl(senderID) {
		mh.reject(state, dispatcher, logger, senderID, app.ErrNotAdmin)
		return
	}
	if !state.BotsEnabled {
		mh.reject(state, dispatcher, logger, senderID, errBotsDisabled)
		return
	}

	identity := bot.GetBotIdentity(len(state.Bots))
	level, err := bot.ParseBotLevel(identity.Level)
	if err != nil {
		level = state.BotLevel
	}
	botID := bot.NewBotID()
	agent, err := bot.NewAgent(botID, identity.Name, level)
	if err != nil {
		logger.Error("handleAddBot: Failed to create bot agent for %s: %v", botID, err)
		return
	}

	next, events, err := state.App.Join(state.Game, app.JoinRequest{PlayerID: botID, Name: identity.Name, ColorIdx: identity.ColorIdx})
	if err == nil {
		state.Bots[botID] = agent
		logger.Info("handleAddBot: Added bot %s (%s, %s)", identity.Name, botID, level)
	}
	mh.apply(ctx, state, dispatcher, logger, senderID, next, events, err)
}

var errBotsDisabled = errors.New("bots are disabled on this server")

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game.Phase != domain.PhasePlaying {
		state.BotWaitUntil = 0
		return
	}
	current, ok := state.Game.CurrentPlayer()
	if !ok || !bot.IsBot(current.ID) {
		// Not a bot turn, reset wait if it was set
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		state.BotWaitUntil = state.Tick + state.BotDelayTicks
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", current.ID, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[current.ID]
	if !exists {
		var err error
		agent, err = bot.NewAgent(current.ID, current.Name, state.BotLevel)
		if err != nil {
			logger.Error("processBots: Failed to create fallback agent: %v", err)
			return
		}
		state.Bots[current.ID] = agent
	}

	action, err := agent.Play(state.Game)
	if err != nil {
		logger.Warn("processBots: Bot %s failed to decide, taking: %v", current.ID, err)
	}

	next, events, err := state.App.Act(state.Game, app.ActionRequest{ActorID: current.ID, Action: action})
	if err != nil {
		logger.Error("processBots: Bot %s action %s rejected: %v", current.ID, action, err)
		return
	}
	mh.apply(ctx, state, dispatcher, logger, current.ID, next, events, nil)
}

// apply commits a use-case result: on error the sender is told and the snapshot
// is kept; otherwise the new snapshot replaces it and its events go out.
func (mh *matchHandler) apply(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, next domain.GameState, events []app.Event, err error) {
	if err != nil {
		mh.reject(state, dispatcher, logger, senderID, err)
		return
	}
	if len(events) == 0 {
		return
	}

	state.Game = next
	if next.Phase != domain.PhaseFinished {
		state.ResultsRecorded = false
	}

	mh.publish(ctx, state, dispatcher, logger, events...)

	mh.updateLabel(state, dispatcher, logger)
	if next.Phase == domain.PhaseFinished && !state.ResultsRecorded {
		mh.recordResults(ctx, state, logger)
	}
}

func (mh *matchHandler) publish(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events ...app.Event) {
	pub := &dispatcherPublisher{state: state, dispatcher: dispatcher, logger: logger}
	if err := app.PublishAll(ctx, pub, events); err != nil {
		logger.Error("Failed to publish events: %v", err)
	}
}

func (mh *matchHandler) recordResults(ctx context.Context, state *MatchState, logger runtime.Logger) {
	state.ResultsRecorded = true
	if state.Results == nil {
		return
	}

	standings := make([]domain.Standing, 0, len(state.Game.Players))
	for _, s := range domain.Standings(state.Game) {
		if !bot.IsBot(s.PlayerID) {
			standings = append(standings, s)
		}
	}
	if err := state.Results.RecordResults(ctx, state.MatchID, standings); err != nil {
		logger.Error("Failed to record results: %v", err)
	}
}

// reject answers the sender with an error event; the room state is left as is.
func (mh *matchHandler) reject(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, err error) {
	logger.Warn("Rejected request from %s: %v", userID, err)
	if bot.IsBot(userID) {
		return
	}
	mh.sendError(state, dispatcher, logger, userID, errorCode(err), "action rejected, please retry: "+err.Error())
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, app.ErrUnauthorized), errors.Is(err, app.ErrNotAdmin), errors.Is(err, errBotsDisabled):
		return ErrCodeForbidden
	case errors.Is(err, app.ErrNotInLobby), errors.Is(err, app.ErrRoomFull), errors.Is(err, domain.ErrNotPlaying):
		return ErrCodeConflict
	default:
		return ErrCodeBadRequest
	}
}

// sendError sends an error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(errorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	if err := dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send error to %s: %v", userID, err)
	}
}

// encodeLabel renders the match label as JSON through a protobuf Struct.
func encodeLabel(game domain.GameState) (string, error) {
	l := domain.ComputeLabel(game)
	label, err := structpb.NewStruct(map[string]interface{}{
		"open":      l.Open,
		"game":      l.Game,
		"phase":     l.Phase,
		"room":      l.Room,
		"teams":     l.Teams,
		"max_teams": l.MaxTeams,
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := encodeLabel(state.Game)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

// MatchSignal answers SignalSnapshot with the public room snapshot as JSON.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	if data != SignalSnapshot {
		logger.Warn("MatchSignal: Unknown signal %q", data)
		return matchState, ""
	}

	snapshot, err := json.Marshal(matchState.Game.Public())
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal snapshot: %v", err)
		return matchState, ""
	}
	return matchState, string(snapshot)
}
