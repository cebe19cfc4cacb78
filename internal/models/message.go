package models

import "time"

type ChatMessage struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatHistoryItem is one entry of a room's history as sent to clients,
// oldest first, with the timestamp rendered as local hour:minute.
type ChatHistoryItem struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Text     string `json:"text"`
	Time     string `json:"time"`
}
