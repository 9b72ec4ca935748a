package services

import "ledgerdesk/internal/models"

// CategoryNode is a category with its resolved children, ready for
// nested rendering. Nodes are shallow copies: the builder never aliases
// the caller's Category values.
type CategoryNode struct {
	models.Category
	Children []*CategoryNode `json:"children"`
}

// BuildCategoryTree converts a flat, ordered category list (already
// filtered to one type) into a forest of root nodes.
//
// Two passes: the first indexes a copy of every record by id; the
// second links each record under its parent. A record whose ParentID is
// nil becomes a root, and so does a record whose ParentID matches no id
// in the input; dangling references are kept as roots rather than
// dropped. Children preserve the relative order of the input.
func BuildCategoryTree(categories []models.Category) []*CategoryNode {
	byID := make(map[uint]*CategoryNode, len(categories))
	for i := range categories {
		node := &CategoryNode{Category: categories[i], Children: []*CategoryNode{}}
		node.Category.Children = nil
		byID[categories[i].ID] = node
	}

	roots := make([]*CategoryNode, 0, len(categories))
	for i := range categories {
		node := byID[categories[i].ID]
		if categories[i].ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := byID[*categories[i].ParentID]
		if !ok {
			// Orphan: keep it visible as a root.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots
}

// CountTreeNodes returns the total number of nodes in the forest.
func CountTreeNodes(roots []*CategoryNode) int {
	n := 0
	for _, r := range roots {
		n += 1 + CountTreeNodes(r.Children)
	}
	return n
}
