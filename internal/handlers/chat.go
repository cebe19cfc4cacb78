package handlers

import (
	"context"
	"time"

	"github.com/softgeniusinnovations/code-editor-server/internal/models"
	"github.com/softgeniusinnovations/code-editor-server/internal/utils"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// handleSendMessage persists the message first and broadcasts only on
// confirmed success, so nobody ever sees a message the server failed
// to record.
func (h *Handler) handleSendMessage(c *websocket.Conn, connID string, msg *models.WSMessage) {
	entry, ok := h.boundEntry(c, connID)
	if !ok {
		return
	}
	if msg.Text == "" {
		sendError(c, "message text is required")
		return
	}

	messageID := msg.MessageID
	if messageID == "" {
		messageID = uuid.New().String()
	}

	if err := h.chat.Append(context.Background(), entry.RoomID, messageID, entry.Username, msg.Text); err != nil {
		utils.LogError(err, "ChatAppend")
		sendError(c, "failed to send message")
		return
	}

	h.registry.Broadcast(entry.RoomID, models.WSMessage{
		Event:       "receive-message",
		RoomID:      entry.RoomID,
		MessageID:   messageID,
		Username:    entry.Username,
		DisplayName: entry.DisplayName,
		Text:        msg.Text,
		Timestamp:   time.Now().UnixMilli(),
	}, connID)
}

func (h *Handler) handleChatHistory(c *websocket.Conn, connID string) {
	entry, ok := h.boundEntry(c, connID)
	if !ok {
		return
	}
	history, err := h.chat.History(context.Background(), entry.RoomID)
	if err != nil {
		utils.LogError(err, "ChatHistory")
		sendError(c, "failed to load chat history")
		return
	}
	utils.SendJSON(c, models.WSMessage{
		Event:   "chat-history-response",
		RoomID:  entry.RoomID,
		History: history,
	})
}

// handlePresence merges cursor/typing/selection/status updates into
// the live entry and rebroadcasts the same event carrying the full
// entry, excluding the sender.
func (h *Handler) handlePresence(c *websocket.Conn, connID string, msg *models.WSMessage) {
	entry, ok := h.boundEntry(c, connID)
	if !ok {
		return
	}

	upd := models.PresenceUpdate{
		Cursor:    msg.Cursor,
		Typing:    msg.Typing,
		Selection: msg.Selection,
	}
	switch msg.Event {
	case "typing-start":
		typing := true
		upd.Typing = &typing
	case "typing-pause":
		typing := false
		upd.Typing = &typing
	case "presence-update":
		if msg.Status != "" {
			status := msg.Status
			upd.Status = &status
		}
	}

	updated, ok := h.registry.UpdatePresence(connID, upd)
	if !ok {
		return
	}
	info := updated.Info()
	h.registry.Broadcast(entry.RoomID, models.WSMessage{
		Event:  msg.Event,
		RoomID: entry.RoomID,
		User:   &info,
	}, connID)
}
