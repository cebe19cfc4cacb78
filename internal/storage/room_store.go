package storage

import (
	"context"
	"errors"

	"github.com/softgeniusinnovations/code-editor-server/internal/db"
	"github.com/softgeniusinnovations/code-editor-server/internal/models"

	"github.com/jackc/pgx/v5"
)

type PgRoomStore struct{}

func NewPgRoomStore() *PgRoomStore {
	return &PgRoomStore{}
}

func (s *PgRoomStore) Get(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	query := `SELECT id, name, owner_name, password_hash, is_active, is_delete, created_at FROM rooms WHERE id = $1`
	err := db.Pool.QueryRow(ctx, query, roomID).Scan(
		&room.ID, &room.Name, &room.OwnerName, &room.PasswordHash,
		&room.IsActive, &room.IsDelete, &room.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (s *PgRoomStore) Insert(ctx context.Context, room *models.Room) error {
	query := `INSERT INTO rooms (id, name, owner_name, password_hash, is_active, is_delete) VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
	return db.Pool.QueryRow(ctx, query,
		room.ID, room.Name, room.OwnerName, room.PasswordHash, room.IsActive, room.IsDelete,
	).Scan(&room.CreatedAt)
}

func (s *PgRoomStore) UpdateFlags(ctx context.Context, roomID string, isActive, isDelete bool) error {
	query := `UPDATE rooms SET is_active = $2, is_delete = $3 WHERE id = $1`
	_, err := db.Pool.Exec(ctx, query, roomID, isActive, isDelete)
	return err
}

func (s *PgRoomStore) UpdateName(ctx context.Context, roomID, name string) error {
	query := `UPDATE rooms SET name = $2 WHERE id = $1`
	_, err := db.Pool.Exec(ctx, query, roomID, name)
	return err
}

func (s *PgRoomStore) UpdatePassword(ctx context.Context, roomID string, passwordHash *string) error {
	query := `UPDATE rooms SET password_hash = $2 WHERE id = $1`
	_, err := db.Pool.Exec(ctx, query, roomID, passwordHash)
	return err
}
