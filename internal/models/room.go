package models

import "time"

type Room struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	OwnerName    string    `json:"owner_name"`
	PasswordHash *string   `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsDelete     bool      `json:"is_delete"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoomStatus is the answer to a status check. An absent room reports
// {false, false} with an empty OwnerName; callers that need to tell
// "missing" from "deleted" apart must look at OwnerName.
type RoomStatus struct {
	IsActive  bool   `json:"is_active"`
	IsDeleted bool   `json:"is_deleted"`
	OwnerName string `json:"owner_name,omitempty"`
}

// RoomInfo is the public view of a room. The password hash is never
// exposed, only whether one is set.
type RoomInfo struct {
	RoomID      string    `json:"room_id"`
	RoomName    string    `json:"room_name"`
	OwnerName   string    `json:"owner_name"`
	HasPassword bool      `json:"has_password"`
	IsActive    bool      `json:"is_active"`
	MemberCount int       `json:"member_count"`
	OnlineCount int       `json:"online_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// EditRoomRequest carries an owner's partial room update. Nil fields are
// left untouched; a request with no fields set is a no-op.
type EditRoomRequest struct {
	RoomID   string  `json:"room_id"`
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	IsDelete *bool   `json:"is_delete,omitempty"`
}
