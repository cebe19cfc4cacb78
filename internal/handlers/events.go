package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/softgeniusinnovations/code-editor-server/internal/models"
	"github.com/softgeniusinnovations/code-editor-server/internal/registry"
	"github.com/softgeniusinnovations/code-editor-server/internal/rooms"
	"github.com/softgeniusinnovations/code-editor-server/internal/storage"
	"github.com/softgeniusinnovations/code-editor-server/internal/utils"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// HandleMessage dispatches one inbound frame.
func (h *Handler) HandleMessage(c *websocket.Conn, connID string, msgType int, raw []byte) {
	if msgType != websocket.TextMessage {
		return
	}

	var msg models.WSMessage
	if err := utils.SafeJSONParse(raw, &msg); err != nil {
		utils.LogError(err, "JSON Parse")
		return
	}

	switch msg.Event {
	case "create-room":
		h.handleCreateRoom(c, &msg)
	case "join-request":
		h.handleJoinRequest(c, connID, &msg)
	case "check-room-password":
		h.handleCheckPassword(c, &msg)
	case "get-room-info":
		h.handleRoomInfo(c, connID, &msg)
	case "get-pending-users":
		h.handlePendingUsers(c, connID)
	case "approve-user":
		h.handleApprove(c, connID, &msg)
	case "reject-user":
		h.handleReject(c, connID, &msg)
	case "update-user-status":
		h.handleUpdateUserStatus(c, connID, &msg)
	case "ban-user":
		h.handleBan(c, connID, &msg)
	case "unban-user":
		h.handleUnban(c, connID, &msg)
	case "edit-room-request":
		h.handleEditRoom(c, connID, &msg)
	case "create-file", "create-directory", "update-file",
		"rename-file", "rename-directory", "delete-file",
		"delete-directory", "get-tree", "get-file-content":
		h.handleFileEvent(c, connID, &msg)
	case "send-message":
		h.handleSendMessage(c, connID, &msg)
	case "get-chat-history":
		h.handleChatHistory(c, connID)
	case "typing-start", "typing-pause", "cursor-move",
		"selection-change", "presence-update":
		h.handlePresence(c, connID, &msg)
	case "webrtc-offer", "webrtc-answer", "webrtc-ice-candidate":
		h.handleSignal(c, connID, &msg)
	default:
		log.Printf("Unknown event: %s", msg.Event)
	}
}

func sendError(c *websocket.Conn, message string) {
	utils.LogError(utils.SendJSON(c, models.WSMessage{Event: "error", Message: message}), "SendError")
}

func (h *Handler) handleCreateRoom(c *websocket.Conn, msg *models.WSMessage) {
	if msg.RoomName == "" || msg.Username == "" {
		sendError(c, "room name and username are required")
		return
	}
	roomID := msg.RoomID
	if roomID == "" {
		roomID = uuid.New().String()
	}

	outcome, err := h.rooms.CreateRoom(context.Background(), roomID, msg.RoomName, msg.Password, msg.Username)
	if err != nil {
		utils.LogError(err, "CreateRoom")
		sendError(c, "failed to create room")
		return
	}
	if outcome == rooms.CreateRefused {
		sendError(c, "This room is no longer available")
		return
	}
	utils.SendJSON(c, models.WSMessage{
		Event:    "room-created",
		RoomID:   roomID,
		RoomName: msg.RoomName,
	})
}

func (h *Handler) handleJoinRequest(c *websocket.Conn, connID string, msg *models.WSMessage) {
	if msg.RoomID == "" || msg.Username == "" {
		sendError(c, "room id and username are required")
		return
	}

	res, err := h.admission.Join(context.Background(), rooms.JoinRequest{
		RoomID:   msg.RoomID,
		RoomName: msg.RoomName,
		Username: msg.Username,
		Password: msg.Password,
	})
	if err != nil {
		utils.LogError(err, "Join")
		sendError(c, "failed to join room")
		return
	}

	switch res.Decision {
	case rooms.Rejected:
		sendError(c, res.Reason)
	case rooms.Pending:
		h.registry.AddPending(connID, c, msg.RoomID, msg.Username)
		utils.SendJSON(c, models.WSMessage{
			Event:   "join-pending",
			RoomID:  msg.RoomID,
			Message: res.Reason,
		})
	case rooms.Admitted:
		h.completeJoin(c, connID, msg.RoomID, msg.Username, res.IsOwner)
	}
}

// completeJoin registers the live session and sends the joiner the
// current room state. It runs only after persistence has confirmed
// admission.
func (h *Handler) completeJoin(c *websocket.Conn, connID, roomID, username string, isOwner bool) {
	ctx := context.Background()

	photo := ""
	if m, err := h.members.Get(ctx, roomID, username); err == nil && m.Photo != nil {
		photo = *m.Photo
	}

	entry := h.registry.Register(registry.Entry{
		ConnID:   connID,
		Conn:     c,
		RoomID:   roomID,
		Username: username,
		IsOwner:  isOwner,
		Photo:    photo,
	})

	tree, err := h.files.GetTree(ctx, roomID)
	if err != nil {
		utils.LogError(err, "GetTree")
	}
	history, err := h.chat.History(ctx, roomID)
	if err != nil {
		utils.LogError(err, "ChatHistory")
	}

	utils.SendJSON(c, models.WSMessage{
		Event:       "join-accepted",
		RoomID:      roomID,
		Username:    username,
		DisplayName: entry.DisplayName,
		IsOwner:     isOwner,
		Members:     h.registry.RoomInfos(roomID),
		Tree:        tree,
		History:     history,
	})

	info := entry.Info()
	h.registry.Broadcast(roomID, models.WSMessage{
		Event:  "user-joined",
		RoomID: roomID,
		User:   &info,
	}, connID)
}

func (h *Handler) handleCheckPassword(c *websocket.Conn, msg *models.WSMessage) {
	if msg.RoomID == "" {
		sendError(c, "room id is required")
		return
	}
	ok, err := h.rooms.VerifyPassword(context.Background(), msg.RoomID, msg.Password)
	if err != nil {
		utils.LogError(err, "VerifyPassword")
		sendError(c, "failed to check password")
		return
	}
	event := "password-incorrect"
	if ok {
		event = "password-valid"
	}
	utils.SendJSON(c, models.WSMessage{Event: event, RoomID: msg.RoomID, Valid: &ok})
}

func (h *Handler) handleRoomInfo(c *websocket.Conn, connID string, msg *models.WSMessage) {
	roomID := msg.RoomID
	if roomID == "" {
		if entry, ok := h.registry.FindByConnection(connID); ok {
			roomID = entry.RoomID
		}
	}
	if roomID == "" {
		sendError(c, "room id is required")
		return
	}
	info, err := h.rooms.GetRoomInfo(context.Background(), roomID)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			sendError(c, "room not found")
			return
		}
		utils.LogError(err, "GetRoomInfo")
		sendError(c, "failed to fetch room info")
		return
	}
	info.OnlineCount = len(h.registry.FindByRoom(roomID))
	utils.SendJSON(c, models.WSMessage{Event: "room-info-response", RoomID: roomID, Info: info})
}

// boundEntry resolves the sender's live entry; most events are only
// valid for a connection already admitted to a room.
func (h *Handler) boundEntry(c *websocket.Conn, connID string) (registry.Entry, bool) {
	entry, ok := h.registry.FindByConnection(connID)
	if !ok {
		sendError(c, "join a room first")
	}
	return entry, ok
}

func (h *Handler) handlePendingUsers(c *websocket.Conn, connID string) {
	entry, ok := h.boundEntry(c, connID)
	if !ok {
		return
	}
	pending, err := h.admission.ListPending(context.Background(), entry.RoomID, entry.Username)
	if err != nil {
		h.sendOwnerOpError(c, err, "ListPending")
		return
	}
	utils.SendJSON(c, models.WSMessage{Event: "pending-users-list", RoomID: entry.RoomID, Pending: pending})
}

func (h *Handler) handleApprove(c *websocket.Conn, connID string, msg *models.WSMessage) {
	entry, ok := h.boundEntry(c, connID)
	if !ok {
		return
	}
	if msg.Target == "" {
		sendError(c, "target username is required")
		return
	}
	if err := h.admission.Approve(context.Background(), entry.RoomID, entry.Username, msg.Target); err != nil {
		h.sendOwnerOpError(c, err, "Approve")
		return
	}

	h.registry.Broadcast(entry.RoomID, models.WSMessage{
		Event:    "user-approved",
		RoomID:   entry.RoomID,
		Username: msg.Target,
	}, "")

	// Deferred admission: if the approved user is still waiting on a
	// parked connection, finish their join now.
	if pendingID, pendingConn, ok := h.registry.TakePending(entry.RoomID, msg.Target); ok {
		h.completeJoin(pendingConn, pendingID, entry.RoomID, msg.Target, false)
	}
}

func (h *Handler) handleReject(c *websocket.Conn, connID string, msg *models.WSMessage) {
	entry, ok := h.boundEntry(c, connID)
	if !ok {
		return
	}
	if msg.Target == "" {
		sendError(c, "target username is required")
		return
	}
	if err := h.admission.Reject(context.Background(), entry.RoomID, entry.Username, msg.Target); err != nil {
		h.sendOwnerOpError(c, err, "Reject")
		return
	}
	if _, pendingConn, ok := h.registry.TakePending(entry.RoomID, msg.Target); ok {
		utils.SendJSON(pendingConn, models.WSMessage{
			Event:   "join-rejected",
			RoomID:  entry.RoomID,
			Message: "Your join request was rejected",
		})
	}
	utils.SendJSON(c, models.WSMessage{Event: "user-rejected", RoomID: entry.RoomID, Username: msg.Target})
}

func (h *Handler) handleUpdateUserStatus(c *websocket.Conn, connID string, msg *models.WSMessage) {
	entry, ok := h.boundEntry(c, connID)
	if !ok {
		return
	}
	if msg.Target == "" || msg.Active == nil {
		sendError(c, "target username and active flag are required")
		return
	}
	if err := h.admission.SetMemberActive(context.Background(), entry.RoomID, entry.Username, msg.Target, *msg.Active); err != nil {
		h.sendOwnerOpError(c, err, "SetMemberActive")
		return
	}
	h.registry.Broadcast(entry.RoomID, models.WSMessage{
		Event:    "user-status-updated",
		RoomID:   entry.RoomID,
		Username: msg.Target,
		Active:   msg.Active,
	}, "")
}

func (h *Handler) handleBan(c *websocket.Conn, connID string, msg *models.WSMessage) {
	entry, ok := h.boundEntry(c, connID)
	if !ok {
		return
	}
	if msg.Target == "" {
		sendError(c, "target username is required")
		return
	}
	if err := h.admission.Ban(context.Background(), entry.RoomID, entry.Username, msg.Target, msg.Reason); err != nil {
		h.sendOwnerOpError(c, err, "Ban")
		return
	}

	banned := true
	h.registry.Broadcast(entry.RoomID, models.WSMessage{
		Event:    "user-banned-status",
		RoomID:   entry.RoomID,
		Username: msg.Target,
		Banned:   &banned,
		Reason:   msg.Reason,
	}, "")

	// A banned member loses their connection on the spot.
	if target, ok := h.registry.FindByUsernameInRoom(entry.RoomID, msg.Target); ok {
		h.registry.SendTo(target.ConnID, models.WSMessage{
			Event:   "force-disconnect",
			RoomID:  entry.RoomID,
			Message: "You have been banned from this room",
			Reason:  msg.Reason,
		})
		if target.Conn != nil {
			target.Conn.Close()
		}
	}
}

func (h *Handler) handleUnban(c *websocket.Conn, connID string, msg *models.WSMessage) {
	entry, ok := h.boundEntry(c, connID)
	if !ok {
		return
	}
	if msg.Target == "" {
		sendError(c, "target username is required")
		return
	}
	if err := h.admission.Unban(context.Background(), entry.RoomID, entry.Username, msg.Target); err != nil {
		h.sendOwnerOpError(c, err, "Unban")
		return
	}
	banned := false
	h.registry.Broadcast(entry.RoomID, models.WSMessage{
		Event:    "user-banned-status",
		RoomID:   entry.RoomID,
		Username: msg.Target,
		Banned:   &banned,
	}, "")
}

func (h *Handler) handleEditRoom(c *websocket.Conn, connID string, msg *models.WSMessage) {
	entry, ok := h.boundEntry(c, connID)
	if !ok {
		return
	}
	if msg.Edit == nil {
		// Nothing to change is a successful no-op.
		utils.SendJSON(c, models.WSMessage{Event: "edit-room-response", RoomID: entry.RoomID})
		return
	}

	req := *msg.Edit
	req.RoomID = entry.RoomID
	if err := h.rooms.EditRoom(context.Background(), req, entry.Username); err != nil {
		h.sendOwnerOpError(c, err, "EditRoom")
		return
	}
	utils.SendJSON(c, models.WSMessage{Event: "edit-room-response", RoomID: entry.RoomID})

	info, err := h.rooms.GetRoomInfo(context.Background(), entry.RoomID)
	if err != nil {
		utils.LogError(err, "GetRoomInfo")
		return
	}
	info.OnlineCount = len(h.registry.FindByRoom(entry.RoomID))
	h.registry.Broadcast(entry.RoomID, models.WSMessage{
		Event:  "room-info-response",
		RoomID: entry.RoomID,
		Info:   info,
	}, "")
}

// sendOwnerOpError maps owner-gated operation failures to the
// distinct denial vs. generic failure messages.
func (h *Handler) sendOwnerOpError(c *websocket.Conn, err error, context string) {
	switch {
	case errors.Is(err, rooms.ErrNotOwner):
		sendError(c, "only the room owner can do that")
	case errors.Is(err, storage.ErrMemberNotFound):
		sendError(c, "no such member in this room")
	case errors.Is(err, storage.ErrRoomNotFound):
		sendError(c, "room not found")
	default:
		utils.LogError(err, context)
		sendError(c, "operation failed")
	}
}
