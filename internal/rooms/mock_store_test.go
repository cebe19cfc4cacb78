package rooms_test

import (
	"context"
	"errors"
	"sort"

	"github.com/softgeniusinnovations/code-editor-server/internal/models"
	"github.com/softgeniusinnovations/code-editor-server/internal/storage"
)

// In-memory stand-ins for the persistent stores, mirroring the
// semantics of the Postgres implementations (including the uniqueness
// constraint on (room_id, username)).

type fakeRoomStore struct {
	rooms map[string]*models.Room
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{rooms: make(map[string]*models.Room)}
}

func (s *fakeRoomStore) Get(ctx context.Context, roomID string) (*models.Room, error) {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, storage.ErrRoomNotFound
	}
	copied := *room
	return &copied, nil
}

func (s *fakeRoomStore) Insert(ctx context.Context, room *models.Room) error {
	if _, ok := s.rooms[room.ID]; ok {
		return errors.New("duplicate room id")
	}
	copied := *room
	s.rooms[room.ID] = &copied
	return nil
}

func (s *fakeRoomStore) UpdateFlags(ctx context.Context, roomID string, isActive, isDelete bool) error {
	// Unconditional update: unknown ids are silently ignored.
	if room, ok := s.rooms[roomID]; ok {
		room.IsActive = isActive
		room.IsDelete = isDelete
	}
	return nil
}

func (s *fakeRoomStore) UpdateName(ctx context.Context, roomID, name string) error {
	if room, ok := s.rooms[roomID]; ok {
		room.Name = name
	}
	return nil
}

func (s *fakeRoomStore) UpdatePassword(ctx context.Context, roomID string, passwordHash *string) error {
	if room, ok := s.rooms[roomID]; ok {
		room.PasswordHash = passwordHash
	}
	return nil
}

type fakeMemberStore struct {
	members map[string]*models.Member
	// forceDuplicateOn simulates losing the concurrent-insert race:
	// Insert for this username fails with ErrDuplicateMember after
	// planting the given record, as if another handler won.
	forceDuplicateOn string
	planted          *models.Member
}

func newFakeMemberStore() *fakeMemberStore {
	return &fakeMemberStore{members: make(map[string]*models.Member)}
}

func memberKey(roomID, username string) string {
	return roomID + "/" + username
}

func (s *fakeMemberStore) Get(ctx context.Context, roomID, username string) (*models.Member, error) {
	m, ok := s.members[memberKey(roomID, username)]
	if !ok {
		return nil, storage.ErrMemberNotFound
	}
	copied := *m
	return &copied, nil
}

func (s *fakeMemberStore) Insert(ctx context.Context, member *models.Member) error {
	key := memberKey(member.RoomID, member.Username)
	if member.Username == s.forceDuplicateOn {
		planted := *s.planted
		s.members[key] = &planted
		return storage.ErrDuplicateMember
	}
	if _, ok := s.members[key]; ok {
		return storage.ErrDuplicateMember
	}
	copied := *member
	s.members[key] = &copied
	return nil
}

func (s *fakeMemberStore) SetActive(ctx context.Context, roomID, username string, active bool) error {
	m, ok := s.members[memberKey(roomID, username)]
	if !ok {
		return storage.ErrMemberNotFound
	}
	m.IsActive = active
	return nil
}

func (s *fakeMemberStore) Delete(ctx context.Context, roomID, username string) error {
	key := memberKey(roomID, username)
	if _, ok := s.members[key]; !ok {
		return storage.ErrMemberNotFound
	}
	delete(s.members, key)
	return nil
}

func (s *fakeMemberStore) SetBan(ctx context.Context, roomID, username string, banned bool, reason string) error {
	m, ok := s.members[memberKey(roomID, username)]
	if !ok {
		return storage.ErrMemberNotFound
	}
	if banned {
		m.IsBanned = true
		m.BanReason = &reason
		m.IsActive = false
	} else {
		m.IsBanned = false
		m.BanReason = nil
	}
	return nil
}

func (s *fakeMemberStore) SetPhoto(ctx context.Context, roomID, username, photo string) error {
	m, ok := s.members[memberKey(roomID, username)]
	if !ok {
		return storage.ErrMemberNotFound
	}
	m.Photo = &photo
	return nil
}

func (s *fakeMemberStore) ListPending(ctx context.Context, roomID string) ([]models.PendingUser, error) {
	var pending []models.PendingUser
	for _, m := range s.members {
		if m.RoomID == roomID && !m.IsActive && !m.IsBanned {
			pending = append(pending, models.PendingUser{Username: m.Username, Photo: m.Photo})
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Username < pending[j].Username })
	return pending, nil
}

func (s *fakeMemberStore) CountActive(ctx context.Context, roomID string) (int, error) {
	count := 0
	for _, m := range s.members {
		if m.RoomID == roomID && m.IsActive {
			count++
		}
	}
	return count, nil
}

type fakeFileStore struct {
	provisioned []string
	nodes       map[string][]*models.FileNode
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{nodes: make(map[string][]*models.FileNode)}
}

func (s *fakeFileStore) ProvisionRoom(ctx context.Context, roomID string) error {
	s.provisioned = append(s.provisioned, roomID)
	return nil
}

func (s *fakeFileStore) CreateFile(ctx context.Context, roomID, name, content, creator string, parentDirID, explicitID string) (string, error) {
	id := explicitID
	if id == "" {
		id = name
	}
	node := &models.FileNode{ID: id, RoomID: roomID, Name: name, Type: models.NodeTypeFile, Content: content, CreatedBy: creator}
	if parentDirID != "" {
		node.ParentDirID = &parentDirID
	}
	s.nodes[roomID] = append(s.nodes[roomID], node)
	return id, nil
}

func (s *fakeFileStore) CreateDirectory(ctx context.Context, roomID, name, creator string, parentDirID string) (string, error) {
	node := &models.FileNode{ID: name, RoomID: roomID, Name: name, Type: models.NodeTypeDirectory, CreatedBy: creator}
	if parentDirID != "" {
		node.ParentDirID = &parentDirID
	}
	s.nodes[roomID] = append(s.nodes[roomID], node)
	return name, nil
}

func (s *fakeFileStore) UpdateContent(ctx context.Context, roomID, fileID, content string) error {
	for _, n := range s.nodes[roomID] {
		if n.ID == fileID {
			n.Content = content
			return nil
		}
	}
	return storage.ErrFileNotFound
}

func (s *fakeFileStore) Rename(ctx context.Context, roomID, id, newName string) error {
	for _, n := range s.nodes[roomID] {
		if n.ID == id {
			n.Name = newName
			return nil
		}
	}
	return storage.ErrFileNotFound
}

func (s *fakeFileStore) Delete(ctx context.Context, roomID, id string) error {
	nodes := s.nodes[roomID]
	for i, n := range nodes {
		if n.ID == id {
			s.nodes[roomID] = append(nodes[:i], nodes[i+1:]...)
			return nil
		}
	}
	return storage.ErrFileNotFound
}

func (s *fakeFileStore) GetTree(ctx context.Context, roomID string) ([]*models.FileNode, error) {
	return storage.BuildTree(s.nodes[roomID]), nil
}

func (s *fakeFileStore) GetContent(ctx context.Context, roomID, fileID string) (string, error) {
	for _, n := range s.nodes[roomID] {
		if n.ID == fileID {
			return n.Content, nil
		}
	}
	return "", storage.ErrFileNotFound
}
