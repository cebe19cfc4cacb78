package models

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

type CursorPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type SelectionRange struct {
	Start CursorPosition `json:"start"`
	End   CursorPosition `json:"end"`
}

// SessionInfo is the wire snapshot of one live connection. Username is
// the raw persistent identity; DisplayName may carry a collision suffix
// and is what other clients render.
type SessionInfo struct {
	Username    string          `json:"username"`
	DisplayName string          `json:"display_name"`
	RoomID      string          `json:"room_id"`
	Status      string          `json:"status"`
	Cursor      *CursorPosition `json:"cursor,omitempty"`
	Typing      bool            `json:"typing"`
	Selection   *SelectionRange `json:"selection,omitempty"`
	IsOwner     bool            `json:"is_owner"`
	Photo       string          `json:"photo,omitempty"`
}

// PresenceUpdate is a partial merge into a live entry; nil fields are
// left untouched. Last write wins, no versioning.
type PresenceUpdate struct {
	Status    *string         `json:"status,omitempty"`
	Cursor    *CursorPosition `json:"cursor,omitempty"`
	Typing    *bool           `json:"typing,omitempty"`
	Selection *SelectionRange `json:"selection,omitempty"`
	Photo     *string         `json:"photo,omitempty"`
}
