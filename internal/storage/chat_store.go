package storage

import (
	"context"

	"github.com/softgeniusinnovations/code-editor-server/internal/db"
	"github.com/softgeniusinnovations/code-editor-server/internal/models"
)

type PgChatStore struct{}

func NewPgChatStore() *PgChatStore {
	return &PgChatStore{}
}

func (s *PgChatStore) Append(ctx context.Context, roomID, messageID, username, text string) error {
	query := `INSERT INTO messages (id, room_id, username, content) VALUES ($1, $2, $3, $4)`
	_, err := db.Pool.Exec(ctx, query, messageID, roomID, username, text)
	return err
}

func (s *PgChatStore) History(ctx context.Context, roomID string) ([]models.ChatHistoryItem, error) {
	query := `SELECT id, username, content, created_at FROM messages WHERE room_id = $1 ORDER BY created_at ASC`
	rows, err := db.Pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.ChatHistoryItem
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.Username, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, models.ChatHistoryItem{
			ID:       msg.ID,
			Username: msg.Username,
			Text:     msg.Text,
			Time:     msg.CreatedAt.Local().Format("15:04"),
		})
	}
	return history, rows.Err()
}
