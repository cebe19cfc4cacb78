package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/softgeniusinnovations/code-editor-server/internal/db"
	"github.com/softgeniusinnovations/code-editor-server/internal/models"
	"github.com/softgeniusinnovations/code-editor-server/internal/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgFileStore keeps the file tree in Postgres and mirrors file contents
// to disk under <storageDir>/<roomID>/<name>. The database row is
// authoritative; mirror failures are logged and otherwise ignored.
type PgFileStore struct {
	storageDir string
}

func NewPgFileStore(storageDir string) *PgFileStore {
	return &PgFileStore{storageDir: storageDir}
}

func (s *PgFileStore) ProvisionRoom(ctx context.Context, roomID string) error {
	return os.MkdirAll(filepath.Join(s.storageDir, roomID), 0755)
}

func (s *PgFileStore) CreateFile(ctx context.Context, roomID, name, content, creator string, parentDirID, explicitID string) (string, error) {
	id := explicitID
	if id == "" {
		id = uuid.New().String()
	}
	query := `INSERT INTO files (id, room_id, name, type, parent_dir_id, content, created_by) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := db.Pool.Exec(ctx, query, id, roomID, name, models.NodeTypeFile, nullable(parentDirID), content, creator)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Same id created twice, keep the first insert.
			return id, nil
		}
		return "", err
	}
	s.mirrorWrite(roomID, name, content)
	return id, nil
}

func (s *PgFileStore) CreateDirectory(ctx context.Context, roomID, name, creator string, parentDirID string) (string, error) {
	id := uuid.New().String()
	query := `INSERT INTO files (id, room_id, name, type, parent_dir_id, created_by) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := db.Pool.Exec(ctx, query, id, roomID, name, models.NodeTypeDirectory, nullable(parentDirID), creator)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PgFileStore) UpdateContent(ctx context.Context, roomID, fileID, content string) error {
	query := `UPDATE files SET content = $3 WHERE room_id = $1 AND id = $2 AND type = 'file' RETURNING name`
	var name string
	err := db.Pool.QueryRow(ctx, query, roomID, fileID, content).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrFileNotFound
		}
		return err
	}
	s.mirrorWrite(roomID, name, content)
	return nil
}

func (s *PgFileStore) Rename(ctx context.Context, roomID, id, newName string) error {
	var oldName, nodeType string
	err := db.Pool.QueryRow(ctx, `SELECT name, type FROM files WHERE room_id = $1 AND id = $2`, roomID, id).Scan(&oldName, &nodeType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrFileNotFound
		}
		return err
	}
	if _, err := db.Pool.Exec(ctx, `UPDATE files SET name = $3 WHERE room_id = $1 AND id = $2`, roomID, id, newName); err != nil {
		return err
	}
	if nodeType == models.NodeTypeFile {
		s.mirrorRename(roomID, oldName, newName)
	}
	return nil
}

// Delete removes a node; for directories the whole subtree goes with it.
func (s *PgFileStore) Delete(ctx context.Context, roomID, id string) error {
	nodes, err := s.loadNodes(ctx, roomID)
	if err != nil {
		return err
	}
	var target *models.FileNode
	for _, n := range nodes {
		if n.ID == id {
			target = n
			break
		}
	}
	if target == nil {
		return ErrFileNotFound
	}

	doomed := subtreeIDs(nodes, id)
	query := `DELETE FROM files WHERE room_id = $1 AND id = ANY($2)`
	if _, err := db.Pool.Exec(ctx, query, roomID, doomed); err != nil {
		return err
	}

	idSet := make(map[string]bool, len(doomed))
	for _, d := range doomed {
		idSet[d] = true
	}
	for _, n := range nodes {
		if idSet[n.ID] && n.Type == models.NodeTypeFile {
			s.mirrorRemove(roomID, n.Name)
		}
	}
	return nil
}

func (s *PgFileStore) GetTree(ctx context.Context, roomID string) ([]*models.FileNode, error) {
	nodes, err := s.loadNodes(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return BuildTree(nodes), nil
}

func (s *PgFileStore) GetContent(ctx context.Context, roomID, fileID string) (string, error) {
	var content *string
	query := `SELECT content FROM files WHERE room_id = $1 AND id = $2 AND type = 'file'`
	err := db.Pool.QueryRow(ctx, query, roomID, fileID).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrFileNotFound
		}
		return "", err
	}
	if content == nil {
		return "", nil
	}
	return *content, nil
}

func (s *PgFileStore) loadNodes(ctx context.Context, roomID string) ([]*models.FileNode, error) {
	query := `SELECT id, name, type, parent_dir_id, COALESCE(content, ''), created_by, created_at FROM files WHERE room_id = $1 ORDER BY created_at`
	rows, err := db.Pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []*models.FileNode
	for rows.Next() {
		n := &models.FileNode{RoomID: roomID}
		if err := rows.Scan(&n.ID, &n.Name, &n.Type, &n.ParentDirID, &n.Content, &n.CreatedBy, &n.CreatedAt); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *PgFileStore) mirrorWrite(roomID, name, content string) {
	dir := filepath.Join(s.storageDir, roomID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		utils.LogError(err, "FileMirrorMkdir")
		return
	}
	utils.LogError(os.WriteFile(filepath.Join(dir, name), []byte(content), 0644), "FileMirrorWrite")
}

func (s *PgFileStore) mirrorRename(roomID, oldName, newName string) {
	dir := filepath.Join(s.storageDir, roomID)
	err := os.Rename(filepath.Join(dir, oldName), filepath.Join(dir, newName))
	if err != nil && !os.IsNotExist(err) {
		utils.LogError(err, "FileMirrorRename")
	}
}

func (s *PgFileStore) mirrorRemove(roomID, name string) {
	err := os.Remove(filepath.Join(s.storageDir, roomID, name))
	if err != nil && !os.IsNotExist(err) {
		utils.LogError(err, "FileMirrorRemove")
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
