package handlers

import (
	"log"

	"github.com/softgeniusinnovations/code-editor-server/internal/models"
	"github.com/softgeniusinnovations/code-editor-server/internal/registry"
	"github.com/softgeniusinnovations/code-editor-server/internal/rooms"
	"github.com/softgeniusinnovations/code-editor-server/internal/storage"
	"github.com/softgeniusinnovations/code-editor-server/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Handler routes inbound socket events to the lifecycle manager, the
// admission engine and the stores, and fans resulting state changes
// out through the registry.
type Handler struct {
	rooms     *rooms.Service
	admission *rooms.Admission
	members   storage.MemberStore
	files     storage.FileStore
	chat      storage.ChatStore
	registry  *registry.Registry
}

func NewHandler(roomSvc *rooms.Service, admission *rooms.Admission, members storage.MemberStore, files storage.FileStore, chat storage.ChatStore, reg *registry.Registry) *Handler {
	return &Handler{
		rooms:     roomSvc,
		admission: admission,
		members:   members,
		files:     files,
		chat:      chat,
		registry:  reg,
	}
}

// WebSocketHandler runs the read loop for one connection.
func (h *Handler) WebSocketHandler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		// Every connection gets its own id; the registry keys on it.
		connID := uuid.New().String()

		defer h.disconnect(connID, c)

		utils.SendJSON(c, models.WSMessage{
			Event:   "connected",
			Message: "Welcome to the collaboration server",
		})

		for {
			msgType, msg, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("error: %v", err)
				}
				break
			}
			h.HandleMessage(c, connID, msgType, msg)
		}
	})
}

// disconnect removes the connection from the registry and tells the
// room. Any in-flight store operation started by this connection is
// left to complete; its late broadcasts simply reach nobody.
func (h *Handler) disconnect(connID string, c *websocket.Conn) {
	h.registry.RemovePending(connID)
	if entry, ok := h.registry.Remove(connID); ok {
		info := entry.Info()
		h.registry.Broadcast(entry.RoomID, models.WSMessage{
			Event:  "user-disconnected",
			RoomID: entry.RoomID,
			User:   &info,
		}, connID)
	}
	c.Close()
}

// WSUpgradeMiddleware upgrades the connection to WebSocket.
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
