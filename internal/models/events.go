package models

import "encoding/json"

// WSMessage is the envelope for every inbound and outbound socket
// frame. Event selects the handler; the remaining fields are payload,
// all optional, serialized only when set.
type WSMessage struct {
	Event    string `json:"event"`
	RoomID   string `json:"room_id,omitempty"`
	RoomName string `json:"room_name,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// Owner operations
	Target string `json:"target,omitempty"`
	Reason string `json:"reason,omitempty"`
	Active *bool  `json:"active,omitempty"`

	// File tree operations
	FileID      string `json:"file_id,omitempty"`
	Name        string `json:"name,omitempty"`
	NewName     string `json:"new_name,omitempty"`
	ParentDirID string `json:"parent_dir_id,omitempty"`
	Content     string `json:"content,omitempty"`

	// Chat
	MessageID string `json:"message_id,omitempty"`
	Text      string `json:"text,omitempty"`

	// Presence
	Status    string          `json:"status,omitempty"`
	Cursor    *CursorPosition `json:"cursor,omitempty"`
	Typing    *bool           `json:"typing,omitempty"`
	Selection *SelectionRange `json:"selection,omitempty"`

	// WebRTC signaling, relayed untouched
	Signal json.RawMessage `json:"signal,omitempty"`

	Edit *EditRoomRequest `json:"edit,omitempty"`

	// Outbound payloads
	Message     string            `json:"message,omitempty"`
	DisplayName string            `json:"display_name,omitempty"`
	IsOwner     bool              `json:"is_owner,omitempty"`
	Valid       *bool             `json:"valid,omitempty"`
	Banned      *bool             `json:"banned,omitempty"`
	User        *SessionInfo      `json:"user,omitempty"`
	Members     []SessionInfo     `json:"members,omitempty"`
	Pending     []PendingUser     `json:"pending,omitempty"`
	Tree        []*FileNode       `json:"tree,omitempty"`
	History     []ChatHistoryItem `json:"history,omitempty"`
	Info        *RoomInfo         `json:"info,omitempty"`
	Timestamp   int64             `json:"timestamp,omitempty"`
}
