package services

// EventBroadcaster — то, что сервисам нужно от websocket-хаба.
type EventBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// Event — конверт для сообщений в комнату турнира.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// CatchEventPayload отправляется при подаче и рассмотрении улова.
type CatchEventPayload struct {
	CatchID      int      `json:"catch_id"`
	TournamentID int      `json:"tournament_id"`
	UserID       int      `json:"user_id"`
	Status       string   `json:"status"`
	Points       *float64 `json:"points,omitempty"`
}

// LeaderboardEventPayload отправляется после пересчёта рангов.
type LeaderboardEventPayload struct {
	TournamentID int `json:"tournament_id"`
}

// TournamentStatusEventPayload отправляется при смене статуса турнира.
type TournamentStatusEventPayload struct {
	TournamentID int    `json:"tournament_id"`
	OldStatus    string `json:"old_status"`
	NewStatus    string `json:"new_status"`
}
