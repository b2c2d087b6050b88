package nakama

const (
	// RPC ids registered with Nakama.
	RpcAdminLogin = "admin_login"
	RpcCreateRoom = "create_room"
	RpcFindRoom   = "find_room"
	RpcGetAdvice  = "get_advice"

	// MatchNameMinusAuction is the authoritative match handler name registered with Nakama.
	MatchNameMinusAuction = "minus_auction_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpJoinTeam  int64 = 1
	OpStartGame int64 = 2
	OpAction    int64 = 3
	OpReset     int64 = 4
	OpAddBot    int64 = 5

	// Server -> Client events
	OpStateUpdate  int64 = 101
	OpResetDone    int64 = 102
	OpGameFinished int64 = 103
	OpError        int64 = 104
)

// Runtime environment keys.
const (
	EnvAdminPassword = "minus_auction_admin_password"
	EnvTokenSecret   = "minus_auction_token_secret"
	EnvGeminiAPIKey  = "gemini_api_key"
	EnvBotsEnabled   = "minus_auction_bots_enabled"
)

const (
	GameConfigPath    = "data/game_config.json"
	BotIdentitiesPath = "data/bot_identities.json"

	// ResultsCollection holds one storage object per finished match and human team.
	ResultsCollection = "minus_auction_results"

	// MetadataAdminToken carries an admin session token in match join metadata.
	MetadataAdminToken = "admin_token"

	// SignalSnapshot asks a running match for its public state.
	SignalSnapshot = "snapshot"
)

// Error codes carried by OpError.
const (
	ErrCodeBadRequest = 400
	ErrCodeForbidden  = 403
	ErrCodeConflict   = 409
)
