package models

// Member is the durable admission state for a (room, user) pair. It
// persists across disconnects; only live presence is ephemeral.
// A banned member is never active — the stores enforce that flipping
// is_banned on also flips is_active off.
type Member struct {
	RoomID    string  `json:"room_id"`
	Username  string  `json:"username"`
	IsActive  bool    `json:"is_active"`
	IsBanned  bool    `json:"is_banned"`
	BanReason *string `json:"ban_reason,omitempty"`
	Photo     *string `json:"photo,omitempty"`
}

// PendingUser is a member awaiting owner approval.
type PendingUser struct {
	Username string  `json:"username"`
	Photo    *string `json:"photo,omitempty"`
}
