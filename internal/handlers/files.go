package handlers

import (
	"context"
	"errors"

	"github.com/softgeniusinnovations/code-editor-server/internal/models"
	"github.com/softgeniusinnovations/code-editor-server/internal/storage"
	"github.com/softgeniusinnovations/code-editor-server/internal/utils"

	"github.com/gofiber/websocket/v2"
)

// handleFileEvent serves the file/directory operations. Mutations are
// rebroadcast under the same event name to the room, excluding the
// sender; a missing target id is a hard failure surfaced to the
// sender, never swallowed.
func (h *Handler) handleFileEvent(c *websocket.Conn, connID string, msg *models.WSMessage) {
	entry, ok := h.boundEntry(c, connID)
	if !ok {
		return
	}
	ctx := context.Background()
	roomID := entry.RoomID

	switch msg.Event {
	case "create-file":
		if msg.Name == "" {
			sendError(c, "file name is required")
			return
		}
		id, err := h.files.CreateFile(ctx, roomID, msg.Name, msg.Content, entry.Username, msg.ParentDirID, msg.FileID)
		if err != nil {
			h.sendFileOpError(c, err, "CreateFile")
			return
		}
		msg.FileID = id

	case "create-directory":
		if msg.Name == "" {
			sendError(c, "directory name is required")
			return
		}
		id, err := h.files.CreateDirectory(ctx, roomID, msg.Name, entry.Username, msg.ParentDirID)
		if err != nil {
			h.sendFileOpError(c, err, "CreateDirectory")
			return
		}
		msg.FileID = id

	case "update-file":
		if msg.FileID == "" {
			sendError(c, "file id is required")
			return
		}
		if err := h.files.UpdateContent(ctx, roomID, msg.FileID, msg.Content); err != nil {
			h.sendFileOpError(c, err, "UpdateContent")
			return
		}

	case "rename-file", "rename-directory":
		if msg.FileID == "" || msg.NewName == "" {
			sendError(c, "file id and new name are required")
			return
		}
		if err := h.files.Rename(ctx, roomID, msg.FileID, msg.NewName); err != nil {
			h.sendFileOpError(c, err, "Rename")
			return
		}

	case "delete-file", "delete-directory":
		if msg.FileID == "" {
			sendError(c, "file id is required")
			return
		}
		if err := h.files.Delete(ctx, roomID, msg.FileID); err != nil {
			h.sendFileOpError(c, err, "Delete")
			return
		}

	case "get-tree":
		tree, err := h.files.GetTree(ctx, roomID)
		if err != nil {
			h.sendFileOpError(c, err, "GetTree")
			return
		}
		utils.SendJSON(c, models.WSMessage{Event: "tree-response", RoomID: roomID, Tree: tree})
		return

	case "get-file-content":
		if msg.FileID == "" {
			sendError(c, "file id is required")
			return
		}
		content, err := h.files.GetContent(ctx, roomID, msg.FileID)
		if err != nil {
			h.sendFileOpError(c, err, "GetContent")
			return
		}
		utils.SendJSON(c, models.WSMessage{
			Event:   "file-content-response",
			RoomID:  roomID,
			FileID:  msg.FileID,
			Content: content,
		})
		return
	}

	out := *msg
	out.RoomID = roomID
	out.Username = entry.DisplayName
	h.registry.Broadcast(roomID, out, connID)
}

func (h *Handler) sendFileOpError(c *websocket.Conn, err error, context string) {
	if errors.Is(err, storage.ErrFileNotFound) {
		sendError(c, "file or directory not found")
		return
	}
	utils.LogError(err, context)
	sendError(c, "file operation failed")
}
