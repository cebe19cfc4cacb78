package storage

import (
	"testing"

	"github.com/softgeniusinnovations/code-editor-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// TestBuildTreeOrphanParentBecomesRoot: a node whose declared parent
// was never materialized degrades to root placement, never an error.
func TestBuildTreeOrphanParentBecomesRoot(t *testing.T) {
	nodes := []*models.FileNode{
		{ID: "1", Name: "src", Type: models.NodeTypeDirectory},
		{ID: "2", Name: "main.go", Type: models.NodeTypeFile, ParentDirID: strPtr("1")},
		{ID: "3", Name: "orphan.txt", Type: models.NodeTypeFile, ParentDirID: strPtr("99")},
	}

	roots := BuildTree(nodes)
	require.Len(t, roots, 2)

	byID := map[string]*models.FileNode{}
	for _, r := range roots {
		byID[r.ID] = r
	}
	require.Contains(t, byID, "1")
	require.Contains(t, byID, "3")

	require.Len(t, byID["1"].Children, 1)
	assert.Equal(t, "2", byID["1"].Children[0].ID)
	assert.Empty(t, byID["3"].Children)
}

func TestBuildTreeNestedDirectories(t *testing.T) {
	nodes := []*models.FileNode{
		{ID: "a", Name: "src", Type: models.NodeTypeDirectory},
		{ID: "b", Name: "pkg", Type: models.NodeTypeDirectory, ParentDirID: strPtr("a")},
		{ID: "c", Name: "util.go", Type: models.NodeTypeFile, ParentDirID: strPtr("b")},
		{ID: "d", Name: "README.md", Type: models.NodeTypeFile},
	}

	roots := BuildTree(nodes)
	require.Len(t, roots, 2)

	var src *models.FileNode
	for _, r := range roots {
		if r.ID == "a" {
			src = r
		}
	}
	require.NotNil(t, src)
	require.Len(t, src.Children, 1)
	require.Len(t, src.Children[0].Children, 1)
	assert.Equal(t, "c", src.Children[0].Children[0].ID)
}

func TestBuildTreeEmpty(t *testing.T) {
	assert.Empty(t, BuildTree(nil))
}

// TestSubtreeIDsCollectsDescendants backs the recursive directory
// delete: the doomed set is the node plus everything under it.
func TestSubtreeIDsCollectsDescendants(t *testing.T) {
	nodes := []*models.FileNode{
		{ID: "a", Type: models.NodeTypeDirectory},
		{ID: "b", Type: models.NodeTypeDirectory, ParentDirID: strPtr("a")},
		{ID: "c", Type: models.NodeTypeFile, ParentDirID: strPtr("b")},
		{ID: "d", Type: models.NodeTypeFile},
	}

	ids := subtreeIDs(nodes, "a")
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids)

	assert.Equal(t, []string{"d"}, subtreeIDs(nodes, "d"))
}
