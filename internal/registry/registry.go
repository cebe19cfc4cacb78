package registry

import (
	"fmt"
	"sync"

	"github.com/softgeniusinnovations/code-editor-server/internal/models"
	"github.com/softgeniusinnovations/code-editor-server/internal/utils"

	"github.com/gofiber/websocket/v2"
)

// Entry is one live connection admitted to a room. Entries exist only
// while the socket is open; nothing here is persisted.
type Entry struct {
	ConnID      string
	Conn        *websocket.Conn
	RoomID      string
	Username    string
	DisplayName string
	Status      string
	Cursor      *models.CursorPosition
	Typing      bool
	Selection   *models.SelectionRange
	IsOwner     bool
	Photo       string
}

func (e *Entry) Info() models.SessionInfo {
	return models.SessionInfo{
		Username:    e.Username,
		DisplayName: e.DisplayName,
		RoomID:      e.RoomID,
		Status:      e.Status,
		Cursor:      e.Cursor,
		Typing:      e.Typing,
		Selection:   e.Selection,
		IsOwner:     e.IsOwner,
		Photo:       e.Photo,
	}
}

// pendingConn is a connection whose join awaits owner approval. It is
// deliberately not an Entry: no session exists until admission is
// confirmed.
type pendingConn struct {
	connID   string
	conn     *websocket.Conn
	roomID   string
	username string
}

// Registry is the process-wide table of live connections, one entry
// per admitted socket, keyed by connection id. It is the source of
// truth for "who is here now", independent of persisted membership.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	pending map[string]*pendingConn
}

func New() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		pending: make(map[string]*pendingConn),
	}
}

// Register adds an entry after admission succeeded and assigns its
// display name, suffixed if the base collides with another live entry
// in the same room. The stored entry is returned by value.
func (r *Registry) Register(e Entry) Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Status == "" {
		e.Status = models.StatusOnline
	}
	e.DisplayName = r.uniqueDisplayNameLocked(e.RoomID, e.Username)
	stored := e
	r.entries[e.ConnID] = &stored
	return e
}

// Remove drops the entry for a closed connection and returns it, if
// one existed.
func (r *Registry) Remove(connID string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connID]
	if !ok {
		return Entry{}, false
	}
	delete(r.entries, connID)
	return *e, true
}

func (r *Registry) FindByConnection(connID string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[connID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (r *Registry) FindByRoom(roomID string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Entry
	for _, e := range r.entries {
		if e.RoomID == roomID {
			result = append(result, *e)
		}
	}
	return result
}

func (r *Registry) FindByUsernameInRoom(roomID, username string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.RoomID == roomID && e.Username == username {
			return *e, true
		}
	}
	return Entry{}, false
}

// RoomInfos returns wire snapshots of every live entry in a room.
func (r *Registry) RoomInfos(roomID string) []models.SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var infos []models.SessionInfo
	for _, e := range r.entries {
		if e.RoomID == roomID {
			infos = append(infos, e.Info())
		}
	}
	return infos
}

// UpdatePresence merges the set fields of upd into the entry.
// Last write wins; there is no versioning.
func (r *Registry) UpdatePresence(connID string, upd models.PresenceUpdate) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connID]
	if !ok {
		return Entry{}, false
	}
	if upd.Status != nil {
		e.Status = *upd.Status
	}
	if upd.Cursor != nil {
		e.Cursor = upd.Cursor
	}
	if upd.Typing != nil {
		e.Typing = *upd.Typing
	}
	if upd.Selection != nil {
		e.Selection = upd.Selection
	}
	if upd.Photo != nil {
		e.Photo = *upd.Photo
	}
	return *e, true
}

// UniqueDisplayName resolves a display collision against the room's
// live entries by appending _1, _2, ... until free. Persistent
// membership keys on the raw username; only the live display name is
// suffixed.
func (r *Registry) UniqueDisplayName(roomID, base string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.uniqueDisplayNameLocked(roomID, base)
}

func (r *Registry) uniqueDisplayNameLocked(roomID, base string) string {
	taken := make(map[string]bool)
	for _, e := range r.entries {
		if e.RoomID == roomID {
			taken[e.DisplayName] = true
		}
	}
	if !taken[base] {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

// AddPending parks a connection whose join awaits approval.
func (r *Registry) AddPending(connID string, conn *websocket.Conn, roomID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[connID] = &pendingConn{connID: connID, conn: conn, roomID: roomID, username: username}
}

// TakePending removes and returns the parked connection for a (room,
// user) pair, if one is still connected.
func (r *Registry) TakePending(roomID, username string) (connID string, conn *websocket.Conn, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.pending {
		if p.roomID == roomID && p.username == username {
			delete(r.pending, id)
			return p.connID, p.conn, true
		}
	}
	return "", nil, false
}

// RemovePending drops a parked connection on disconnect.
func (r *Registry) RemovePending(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, connID)
}

// Broadcast sends a payload to every live connection in a room,
// optionally excluding one connection (usually the sender).
func (r *Registry) Broadcast(roomID string, payload interface{}, excludeConnID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, e := range r.entries {
		if e.RoomID != roomID || id == excludeConnID || e.Conn == nil {
			continue
		}
		if err := utils.SendJSON(e.Conn, payload); err != nil {
			utils.LogError(err, "Broadcast")
			// Let the connection's read loop handle the disconnect.
		}
	}
}

// SendTo sends a payload to a single connection by id.
func (r *Registry) SendTo(connID string, payload interface{}) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[connID]; ok && e.Conn != nil {
		utils.LogError(utils.SendJSON(e.Conn, payload), "SendTo")
	}
}
