package handlers

import (
	"github.com/softgeniusinnovations/code-editor-server/internal/models"

	"github.com/gofiber/websocket/v2"
)

// handleSignal relays WebRTC signaling frames. The server keeps no
// signaling state: the payload passes through untouched, either to a
// named target in the room or to everyone but the sender.
func (h *Handler) handleSignal(c *websocket.Conn, connID string, msg *models.WSMessage) {
	entry, ok := h.boundEntry(c, connID)
	if !ok {
		return
	}

	out := models.WSMessage{
		Event:       msg.Event,
		RoomID:      entry.RoomID,
		Username:    entry.Username,
		DisplayName: entry.DisplayName,
		Signal:      msg.Signal,
	}

	if msg.Target != "" {
		if target, ok := h.registry.FindByUsernameInRoom(entry.RoomID, msg.Target); ok {
			h.registry.SendTo(target.ConnID, out)
		}
		return
	}
	h.registry.Broadcast(entry.RoomID, out, connID)
}
