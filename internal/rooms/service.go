package rooms

import (
	"context"
	"errors"

	"github.com/softgeniusinnovations/code-editor-server/internal/models"
	"github.com/softgeniusinnovations/code-editor-server/internal/storage"
	"github.com/softgeniusinnovations/code-editor-server/internal/utils"
)

// ErrNotOwner is returned from owner-gated operations when the
// requester is not the stored owner. No state is mutated.
var ErrNotOwner = errors.New("only the room owner can do that")

// CreateOutcome is the result of a create attempt.
type CreateOutcome int

const (
	// CreateCreated: no prior record existed, room inserted.
	CreateCreated CreateOutcome = iota
	// CreateExists: a live room with this id already exists; the call
	// is an idempotent no-op.
	CreateExists
	// CreateRefused: the id belongs to a soft-deleted room. Silent
	// resurrection is refused; only the owner can reactivate it.
	CreateRefused
)

// Service is the room lifecycle manager: creation, status checks,
// reactivation, owner verification, password handling and edits.
type Service struct {
	rooms   storage.RoomStore
	members storage.MemberStore
	files   storage.FileStore
	hasher  PasswordHasher
}

func NewService(rooms storage.RoomStore, members storage.MemberStore, files storage.FileStore, hasher PasswordHasher) *Service {
	return &Service{rooms: rooms, members: members, files: files, hasher: hasher}
}

// CreateRoom inserts a new room. A non-blank password is hashed; a
// blank one is stored as null. When ownerName is given the owner is
// inserted as an admitted member and the room's file namespace is
// provisioned.
func (s *Service) CreateRoom(ctx context.Context, roomID, roomName, password, ownerName string) (CreateOutcome, error) {
	existing, err := s.rooms.Get(ctx, roomID)
	if err == nil {
		if existing.IsDelete {
			return CreateRefused, nil
		}
		return CreateExists, nil
	}
	if !errors.Is(err, storage.ErrRoomNotFound) {
		return 0, err
	}

	var hash *string
	if !IsBlankPassword(password) {
		h, err := s.hasher.Hash(password)
		if err != nil {
			return 0, err
		}
		hash = &h
	}

	room := &models.Room{
		ID:           roomID,
		Name:         roomName,
		OwnerName:    ownerName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.rooms.Insert(ctx, room); err != nil {
		return 0, err
	}

	if ownerName != "" {
		member := &models.Member{RoomID: roomID, Username: ownerName, IsActive: true}
		if err := s.members.Insert(ctx, member); err != nil && !errors.Is(err, storage.ErrDuplicateMember) {
			return 0, err
		}
	}

	if err := s.files.ProvisionRoom(ctx, roomID); err != nil {
		utils.LogError(err, "ProvisionRoom")
	}
	return CreateCreated, nil
}

// ReactivateRoom clears the deleted flag and reopens the room. The
// update is unconditional: an unknown id is a silent no-op.
func (s *Service) ReactivateRoom(ctx context.Context, roomID string) error {
	return s.rooms.UpdateFlags(ctx, roomID, true, false)
}

// CheckRoomStatus reports the room's flags. An absent room comes back
// as {inactive, not deleted} with no owner name.
func (s *Service) CheckRoomStatus(ctx context.Context, roomID string) (models.RoomStatus, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			return models.RoomStatus{}, nil
		}
		return models.RoomStatus{}, err
	}
	return models.RoomStatus{
		IsActive:  room.IsActive,
		IsDeleted: room.IsDelete,
		OwnerName: room.OwnerName,
	}, nil
}

// IsOwner reports whether username is the stored owner. False for a
// nonexistent room.
func (s *Service) IsOwner(ctx context.Context, roomID, username string) (bool, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}
	return room.OwnerName == username, nil
}

// VerifyPassword checks a candidate against the stored hash. The room
// must be active; a room without a password accepts any candidate.
func (s *Service) VerifyPassword(ctx context.Context, roomID, candidate string) (bool, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}
	if !room.IsActive || room.IsDelete {
		return false, nil
	}
	if room.PasswordHash == nil {
		return true, nil
	}
	return s.hasher.Verify(candidate, *room.PasswordHash), nil
}

// GetRoomInfo aggregates the room row with the admitted member count.
// The caller fills in the live connection count.
func (s *Service) GetRoomInfo(ctx context.Context, roomID string) (*models.RoomInfo, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	count, err := s.members.CountActive(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &models.RoomInfo{
		RoomID:      room.ID,
		RoomName:    room.Name,
		OwnerName:   room.OwnerName,
		HasPassword: room.PasswordHash != nil,
		IsActive:    room.IsActive,
		MemberCount: count,
		CreatedAt:   room.CreatedAt,
	}, nil
}

// EditRoom applies an owner's partial update. Each recognized field is
// updated independently; a request with none set succeeds without
// touching anything.
func (s *Service) EditRoom(ctx context.Context, req models.EditRoomRequest, requestingUser string) error {
	room, err := s.rooms.Get(ctx, req.RoomID)
	if err != nil {
		return err
	}
	if room.OwnerName != requestingUser {
		return ErrNotOwner
	}

	if req.Name != nil {
		if err := s.rooms.UpdateName(ctx, req.RoomID, *req.Name); err != nil {
			return err
		}
	}
	if req.Password != nil {
		var hash *string
		if !IsBlankPassword(*req.Password) {
			h, err := s.hasher.Hash(*req.Password)
			if err != nil {
				return err
			}
			hash = &h
		}
		if err := s.rooms.UpdatePassword(ctx, req.RoomID, hash); err != nil {
			return err
		}
	}
	if req.IsActive != nil || req.IsDelete != nil {
		isActive := room.IsActive
		isDelete := room.IsDelete
		if req.IsActive != nil {
			isActive = *req.IsActive
		}
		if req.IsDelete != nil {
			isDelete = *req.IsDelete
		}
		if err := s.rooms.UpdateFlags(ctx, req.RoomID, isActive, isDelete); err != nil {
			return err
		}
	}
	return nil
}
