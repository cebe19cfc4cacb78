package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/softgeniusinnovations/code-editor-server/internal/models"
	"github.com/softgeniusinnovations/code-editor-server/internal/storage"
	"github.com/softgeniusinnovations/code-editor-server/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// UploadPhotoHandler stores a member's photo and records its URL on
// the membership record. If the member is currently connected, the
// live entry is updated and the room is told.
func (h *Handler) UploadPhotoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		roomID := c.Params("room_id")
		username := c.Query("username")
		if username == "" {
			username = c.FormValue("username")
		}
		if roomID == "" || username == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "room id and username are required"})
		}

		// Expect a multipart form file named "photo"
		fileHeader, err := c.FormFile("photo")
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "photo file is required"})
		}

		uploadDir := utils.GetEnv("UPLOAD_DIR", "uploads")
		if err := os.MkdirAll(uploadDir, 0755); err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create upload dir"})
		}

		// Generate unique filename preserving extension
		ext := filepath.Ext(fileHeader.Filename)
		filename := fmt.Sprintf("%s_%s_%d%s", roomID, username, time.Now().UnixNano(), ext)
		destPath := filepath.Join(uploadDir, filename)

		if err := c.SaveFile(fileHeader, destPath); err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save file"})
		}

		base := utils.GetEnv("BASE_URL", "")
		var url string
		if base == "" {
			url = "/uploads/" + filename
		} else {
			url = fmt.Sprintf("%s/uploads/%s", base, filename)
		}

		if err := h.members.SetPhoto(c.Context(), roomID, username, url); err != nil {
			// Clean up the file if the record update fails.
			_ = os.Remove(destPath)
			if errors.Is(err, storage.ErrMemberNotFound) {
				return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "no such member in this room"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update member"})
		}

		if entry, ok := h.registry.FindByUsernameInRoom(roomID, username); ok {
			if updated, ok := h.registry.UpdatePresence(entry.ConnID, models.PresenceUpdate{Photo: &url}); ok {
				info := updated.Info()
				h.registry.Broadcast(roomID, models.WSMessage{
					Event:  "user-status-updated",
					RoomID: roomID,
					User:   &info,
				}, "")
			}
		}

		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"room_id":  roomID,
			"username": username,
			"photo":    url,
		})
	}
}
