package storage

import (
	"context"
	"errors"

	"github.com/softgeniusinnovations/code-editor-server/internal/db"
	"github.com/softgeniusinnovations/code-editor-server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type PgMemberStore struct{}

func NewPgMemberStore() *PgMemberStore {
	return &PgMemberStore{}
}

func (s *PgMemberStore) Get(ctx context.Context, roomID, username string) (*models.Member, error) {
	var m models.Member
	query := `SELECT room_id, username, is_active, is_banned, ban_reason, photo FROM room_members WHERE room_id = $1 AND username = $2`
	err := db.Pool.QueryRow(ctx, query, roomID, username).Scan(
		&m.RoomID, &m.Username, &m.IsActive, &m.IsBanned, &m.BanReason, &m.Photo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *PgMemberStore) Insert(ctx context.Context, member *models.Member) error {
	query := `INSERT INTO room_members (room_id, username, is_active, is_banned, ban_reason, photo) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := db.Pool.Exec(ctx, query,
		member.RoomID, member.Username, member.IsActive, member.IsBanned, member.BanReason, member.Photo,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateMember
		}
		return err
	}
	return nil
}

func (s *PgMemberStore) SetActive(ctx context.Context, roomID, username string, active bool) error {
	query := `UPDATE room_members SET is_active = $3 WHERE room_id = $1 AND username = $2`
	tag, err := db.Pool.Exec(ctx, query, roomID, username, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *PgMemberStore) Delete(ctx context.Context, roomID, username string) error {
	query := `DELETE FROM room_members WHERE room_id = $1 AND username = $2`
	tag, err := db.Pool.Exec(ctx, query, roomID, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *PgMemberStore) SetBan(ctx context.Context, roomID, username string, banned bool, reason string) error {
	var query string
	var args []interface{}
	if banned {
		// Banning forces the member inactive in the same statement.
		query = `UPDATE room_members SET is_banned = TRUE, ban_reason = $3, is_active = FALSE WHERE room_id = $1 AND username = $2`
		args = []interface{}{roomID, username, reason}
	} else {
		query = `UPDATE room_members SET is_banned = FALSE, ban_reason = NULL WHERE room_id = $1 AND username = $2`
		args = []interface{}{roomID, username}
	}
	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *PgMemberStore) SetPhoto(ctx context.Context, roomID, username, photo string) error {
	query := `UPDATE room_members SET photo = $3 WHERE room_id = $1 AND username = $2`
	tag, err := db.Pool.Exec(ctx, query, roomID, username, photo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *PgMemberStore) ListPending(ctx context.Context, roomID string) ([]models.PendingUser, error) {
	query := `SELECT username, photo FROM room_members WHERE room_id = $1 AND is_active = FALSE AND is_banned = FALSE ORDER BY username`
	rows, err := db.Pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []models.PendingUser
	for rows.Next() {
		var p models.PendingUser
		if err := rows.Scan(&p.Username, &p.Photo); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (s *PgMemberStore) CountActive(ctx context.Context, roomID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM room_members WHERE room_id = $1 AND is_active = TRUE`
	if err := db.Pool.QueryRow(ctx, query, roomID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
