package models

import "time"

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"
)

// FileNode is one record in a room's virtual file tree. ParentDirID is
// nil for root-level nodes; a parent id that no longer resolves is
// treated as root when the tree is rebuilt.
type FileNode struct {
	ID          string      `json:"id"`
	RoomID      string      `json:"-"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	ParentDirID *string     `json:"parent_dir_id,omitempty"`
	Content     string      `json:"content,omitempty"`
	CreatedBy   string      `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	Children    []*FileNode `json:"children,omitempty"`
}
