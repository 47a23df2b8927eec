package types

type AppState struct {
	ActiveSessionID string `json:"active_session_id"`
}
