package storage

import (
	"context"
	"errors"

	"github.com/softgeniusinnovations/code-editor-server/internal/models"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrMemberNotFound = errors.New("member not found")
	// ErrDuplicateMember surfaces the (room_id, username) uniqueness
	// constraint. The admission engine treats it as "already exists",
	// not as a failure.
	ErrDuplicateMember = errors.New("member already exists")
	ErrFileNotFound    = errors.New("file not found")
)

// RoomStore is the durable record of rooms.
type RoomStore interface {
	Get(ctx context.Context, roomID string) (*models.Room, error)
	Insert(ctx context.Context, room *models.Room) error
	// UpdateFlags issues an unconditional update: a missing room id is
	// a silent no-op, not an error.
	UpdateFlags(ctx context.Context, roomID string, isActive, isDelete bool) error
	UpdateName(ctx context.Context, roomID, name string) error
	UpdatePassword(ctx context.Context, roomID string, passwordHash *string) error
}

// MemberStore is the durable record of per-(room, user) admission state.
type MemberStore interface {
	Get(ctx context.Context, roomID, username string) (*models.Member, error)
	Insert(ctx context.Context, member *models.Member) error
	SetActive(ctx context.Context, roomID, username string, active bool) error
	Delete(ctx context.Context, roomID, username string) error
	// SetBan with banned=true also clears is_active: a banned member is
	// never active. Unbanning clears the reason but does not restore
	// active status.
	SetBan(ctx context.Context, roomID, username string, banned bool, reason string) error
	SetPhoto(ctx context.Context, roomID, username, photo string) error
	ListPending(ctx context.Context, roomID string) ([]models.PendingUser, error)
	CountActive(ctx context.Context, roomID string) (int, error)
}

// FileStore is the durable hierarchical file/directory record per room,
// mirrored to an on-disk backing store keyed by room id and path.
type FileStore interface {
	ProvisionRoom(ctx context.Context, roomID string) error
	CreateFile(ctx context.Context, roomID, name, content, creator string, parentDirID, explicitID string) (string, error)
	CreateDirectory(ctx context.Context, roomID, name, creator string, parentDirID string) (string, error)
	UpdateContent(ctx context.Context, roomID, fileID, content string) error
	Rename(ctx context.Context, roomID, id, newName string) error
	Delete(ctx context.Context, roomID, id string) error
	GetTree(ctx context.Context, roomID string) ([]*models.FileNode, error)
	GetContent(ctx context.Context, roomID, fileID string) (string, error)
}

// ChatStore persists room chat history.
type ChatStore interface {
	Append(ctx context.Context, roomID, messageID, username, text string) error
	History(ctx context.Context, roomID string) ([]models.ChatHistoryItem, error)
}
