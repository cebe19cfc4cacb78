package storage

import "github.com/softgeniusinnovations/code-editor-server/internal/models"

// BuildTree links flat file records into a forest by parent_dir_id.
// A node whose declared parent is unknown (never materialized, or the
// implicit root) becomes a root node; orphans never fail the build.
func BuildTree(nodes []*models.FileNode) []*models.FileNode {
	byID := make(map[string]*models.FileNode, len(nodes))
	for _, n := range nodes {
		n.Children = nil
		byID[n.ID] = n
	}

	var roots []*models.FileNode
	for _, n := range nodes {
		if n.ParentDirID != nil {
			if parent, ok := byID[*n.ParentDirID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// subtreeIDs returns id and every id reachable through parent links.
func subtreeIDs(nodes []*models.FileNode, id string) []string {
	children := make(map[string][]string)
	for _, n := range nodes {
		if n.ParentDirID != nil {
			children[*n.ParentDirID] = append(children[*n.ParentDirID], n.ID)
		}
	}

	ids := []string{id}
	for i := 0; i < len(ids); i++ {
		ids = append(ids, children[ids[i]]...)
	}
	return ids
}
