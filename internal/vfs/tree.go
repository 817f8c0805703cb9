package vfs

import "fmt"

// Tree queries answer "children of X" and "ancestors of X" from the
// adjacency index maintained by the store, in O(children) and O(depth).

// ChildrenOf returns the direct children of a folder (nil = root) in
// insertion order.
func (s *Store) ChildrenOf(parentID *string) []*Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.children[parentKey(parentID)]
	out := make([]*Item, 0, len(ids))
	for _, itemID := range ids {
		out = append(out, s.items[itemID].Clone())
	}
	return out
}

// AncestorsOf returns the chain of parents from root down to the item's
// immediate parent, for breadcrumbs. Root-level items yield an empty chain;
// unknown ids return ErrNotFound.
func (s *Store) AncestorsOf(itemID string) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}

	var chain []*Item
	seen := map[string]bool{item.ID: true}
	for cur := item.ParentID; cur != nil; {
		parent, ok := s.items[*cur]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		chain = append(chain, parent.Clone())
		cur = parent.ParentID
	}

	// Walked child->root; breadcrumbs read root->parent.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// HasChildren reports whether a folder has any direct children.
func (s *Store) HasChildren(itemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.children[itemID]) > 0
}

// ChildCount returns the number of direct children, the derived value
// behind the "N files" display string.
func (s *Store) ChildCount(itemID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.children[itemID])
}

// FolderNode is a nested view of the folder hierarchy for the sidebar.
type FolderNode struct {
	Item     *Item         `json:"item"`
	Children []*FolderNode `json:"children,omitempty"`
}

// FolderTree builds the nested folder hierarchy (folders only) in two
// passes over the flat records.
func (s *Store) FolderTree() []*FolderNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make(map[string]*FolderNode)
	for _, itemID := range s.order {
		item := s.items[itemID]
		if item.IsFolder() {
			nodes[item.ID] = &FolderNode{Item: item.Clone()}
		}
	}

	var roots []*FolderNode
	for _, itemID := range s.order {
		node, ok := nodes[itemID]
		if !ok {
			continue
		}
		parent := node.Item.ParentID
		if parent == nil {
			roots = append(roots, node)
			continue
		}
		if parentNode, ok := nodes[*parent]; ok {
			parentNode.Children = append(parentNode.Children, node)
		} else {
			roots = append(roots, node)
		}
	}
	return roots
}

// isDescendantLocked reports whether candidate sits somewhere below
// ancestor: walking up from candidate's parent must reach ancestor. Callers
// hold the store lock.
func (s *Store) isDescendantLocked(candidateID, ancestorID string) bool {
	seen := make(map[string]bool)
	cur, ok := s.items[candidateID]
	if !ok {
		return false
	}
	for cur.ParentID != nil {
		if *cur.ParentID == ancestorID {
			return true
		}
		if seen[*cur.ParentID] {
			return false
		}
		seen[*cur.ParentID] = true
		parent, ok := s.items[*cur.ParentID]
		if !ok {
			return false
		}
		cur = parent
	}
	return false
}
