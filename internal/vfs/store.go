package vfs

import (
	"fmt"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/cloudpane/backend/internal/shared/id"
)

// rootKey indexes root-level items (ParentID == nil) in the adjacency map.
const rootKey = ""

// Store is the single source of truth for all items. It keeps insertion
// order and maintains a parent->children adjacency index on every mutation
// so tree queries never rescan the full list.
//
// Mutations are all-or-nothing: validation happens before any state change.
type Store struct {
	mu       sync.RWMutex
	items    map[string]*Item
	order    []string
	children map[string][]string

	now func() time.Time
}

// NewStore creates an empty item store.
func NewStore() *Store {
	return &Store{
		items:    make(map[string]*Item),
		children: make(map[string][]string),
		now:      time.Now,
	}
}

// WithClock overrides the store clock. Used by tests for deterministic
// timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func parentKey(parentID *string) string {
	if parentID == nil {
		return rootKey
	}
	return *parentID
}

func validateName(name string) error {
	err := validation.Validate(strings.TrimSpace(name),
		validation.Required,
		validation.Length(1, 255),
	)
	if err != nil {
		return fmt.Errorf("name %q: %v: %w", name, err, ErrValidation)
	}
	return nil
}

// Insert adds an item to the store. An empty ID is assigned; a zero
// ModifiedAt is stamped with the current time. The parent, when given, must
// exist and be a folder.
func (s *Store) Insert(item *Item) (*Item, error) {
	if err := validateName(item.Name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkParentLocked(item.ParentID); err != nil {
		return nil, err
	}

	stored := item.Clone()
	if stored.ID == "" {
		stored.ID = id.NewItemID().String()
	}
	if stored.ModifiedAt.IsZero() {
		stored.ModifiedAt = s.now()
	}
	if _, exists := s.items[stored.ID]; exists {
		return nil, fmt.Errorf("item %s already present: %w", stored.ID, ErrValidation)
	}

	s.insertLocked(stored)
	return stored.Clone(), nil
}

// InsertAll adds a batch atomically. Every name and parent reference is
// validated before any item is stored, so a failure anywhere in the batch
// leaves the store unchanged.
func (s *Store) InsertAll(items []*Item) ([]*Item, error) {
	for _, item := range items {
		if err := validateName(item.Name); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prepared := make([]*Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if err := s.checkParentLocked(item.ParentID); err != nil {
			return nil, err
		}
		stored := item.Clone()
		if stored.ID == "" {
			stored.ID = id.NewItemID().String()
		}
		if stored.ModifiedAt.IsZero() {
			stored.ModifiedAt = s.now()
		}
		if _, exists := s.items[stored.ID]; exists || seen[stored.ID] {
			return nil, fmt.Errorf("item %s already present: %w", stored.ID, ErrValidation)
		}
		seen[stored.ID] = true
		prepared = append(prepared, stored)
	}

	out := make([]*Item, 0, len(prepared))
	for _, stored := range prepared {
		s.insertLocked(stored)
		out = append(out, stored.Clone())
	}
	return out, nil
}

// CreateFolder creates a folder under parentID (nil = root). Blank names are
// rejected with ErrValidation rather than silently ignored.
func (s *Store) CreateFolder(name string, parentID *string) (*Item, error) {
	return s.Insert(&Item{
		Name:     strings.TrimSpace(name),
		Kind:     KindFolder,
		ParentID: parentID,
	})
}

// CreateFile creates a leaf item whose kind is inferred from the name.
func (s *Store) CreateFile(name string, byteSize int64, categoryID, parentID *string) (*Item, error) {
	return s.Insert(&Item{
		Name:       strings.TrimSpace(name),
		Kind:       KindFromName(name),
		ByteSize:   byteSize,
		CategoryID: categoryID,
		ParentID:   parentID,
	})
}

// Get returns a copy of the item, or ErrNotFound.
func (s *Store) Get(itemID string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	return item.Clone(), nil
}

// Patch describes a partial update. Nil fields are left untouched;
// ClearCategory removes the category reference.
type Patch struct {
	Name          *string
	Starred       *bool
	ByteSize      *int64
	CategoryID    *string
	ClearCategory bool
}

// Update merges a patch into an item and bumps ModifiedAt. Unknown ids
// return ErrNotFound instead of failing silently.
func (s *Store) Update(itemID string, patch Patch) (*Item, error) {
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}

	if patch.Name != nil {
		item.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Starred != nil {
		item.Starred = *patch.Starred
	}
	if patch.ByteSize != nil {
		item.ByteSize = *patch.ByteSize
	}
	if patch.ClearCategory {
		item.CategoryID = nil
	} else if patch.CategoryID != nil {
		v := *patch.CategoryID
		item.CategoryID = &v
	}
	item.ModifiedAt = s.now()

	return item.Clone(), nil
}

// Rename changes an item's display name.
func (s *Store) Rename(itemID, name string) (*Item, error) {
	return s.Update(itemID, Patch{Name: &name})
}

// ToggleStar flips the starred flag and returns the updated item.
func (s *Store) ToggleStar(itemID string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	item.Starred = !item.Starred
	item.ModifiedAt = s.now()
	return item.Clone(), nil
}

// AssignCategory sets or clears (nil) the category reference.
func (s *Store) AssignCategory(itemID string, categoryID *string) (*Item, error) {
	if categoryID == nil {
		return s.Update(itemID, Patch{ClearCategory: true})
	}
	return s.Update(itemID, Patch{CategoryID: categoryID})
}

// Remove deletes an item. Folders cascade to all descendants, so the store
// never holds orphaned children.
func (s *Store) Remove(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[itemID]; !ok {
		return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	s.removeCascadeLocked(itemID)
	return nil
}

// BulkRemove deletes a set of items, cascading folders. Ids that no longer
// exist are skipped silently (stale selections) and the count of removed
// top-level items is returned.
func (s *Store) BulkRemove(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, itemID := range ids {
		if _, ok := s.items[itemID]; !ok {
			continue
		}
		s.removeCascadeLocked(itemID)
		removed++
	}
	return removed
}

// Move reparents items into the target folder. The whole operation is
// rejected before any state changes when the target is missing, not a
// folder, one of the moved ids, or a descendant of a moved folder.
func (s *Store) Move(ids []string, targetFolderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.items[targetFolderID]
	if !ok {
		return fmt.Errorf("target %s: %w", targetFolderID, ErrNotFound)
	}
	if !target.IsFolder() {
		return fmt.Errorf("target %s: %w", targetFolderID, ErrNotAFolder)
	}

	moved := make([]*Item, 0, len(ids))
	for _, itemID := range ids {
		item, ok := s.items[itemID]
		if !ok {
			continue // stale selection
		}
		if itemID == targetFolderID {
			return fmt.Errorf("move %s into itself: %w", itemID, ErrCycleDetected)
		}
		if item.IsFolder() && s.isDescendantLocked(targetFolderID, itemID) {
			return fmt.Errorf("move %s under its descendant %s: %w", itemID, targetFolderID, ErrCycleDetected)
		}
		moved = append(moved, item)
	}

	for _, item := range moved {
		s.detachLocked(item)
		v := targetFolderID
		item.ParentID = &v
		item.ModifiedAt = s.now()
		key := parentKey(item.ParentID)
		s.children[key] = append(s.children[key], item.ID)
	}
	return nil
}

// Copy duplicates items into the target folder (nil = root) with fresh ids,
// fresh timestamps, and "Copy of" names. Originals are left untouched;
// folder copies are shallow. Stale ids are skipped.
func (s *Store) Copy(ids []string, targetFolderID *string) ([]*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkParentLocked(targetFolderID); err != nil {
		return nil, err
	}

	copies := make([]*Item, 0, len(ids))
	for _, itemID := range ids {
		original, ok := s.items[itemID]
		if !ok {
			continue // stale selection
		}
		dup := original.Clone()
		dup.ID = id.NewItemID().String()
		dup.Name = "Copy of " + original.Name
		dup.ModifiedAt = s.now()
		dup.ParentID = nil
		if targetFolderID != nil {
			v := *targetFolderID
			dup.ParentID = &v
		}
		s.insertLocked(dup)
		copies = append(copies, dup.Clone())
	}
	return copies, nil
}

// ClearCategory removes a category reference from every item carrying it.
// Returns the number of items touched. Used when a category is deleted.
func (s *Store) ClearCategory(categoryID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleared := 0
	for _, itemID := range s.order {
		item := s.items[itemID]
		if item.CategoryID != nil && *item.CategoryID == categoryID {
			item.CategoryID = nil
			cleared++
		}
	}
	return cleared
}

// Items returns copies of all items in insertion order.
func (s *Store) Items() []*Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Item, 0, len(s.order))
	for _, itemID := range s.order {
		out = append(out, s.items[itemID].Clone())
	}
	return out
}

// Len returns the number of items in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// TotalBytes sums leaf sizes, for the storage usage panel.
func (s *Store) TotalBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, item := range s.items {
		if !item.IsFolder() {
			total += item.ByteSize
		}
	}
	return total
}

// checkParentLocked validates a parent reference: it must resolve to an
// existing folder.
func (s *Store) checkParentLocked(parentID *string) error {
	if parentID == nil {
		return nil
	}
	parent, ok := s.items[*parentID]
	if !ok {
		return fmt.Errorf("parent %s: %w", *parentID, ErrNotFound)
	}
	if !parent.IsFolder() {
		return fmt.Errorf("parent %s: %w", *parentID, ErrNotAFolder)
	}
	return nil
}

func (s *Store) insertLocked(item *Item) {
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	key := parentKey(item.ParentID)
	s.children[key] = append(s.children[key], item.ID)
}

// detachLocked unlinks an item from its current parent's child list.
func (s *Store) detachLocked(item *Item) {
	key := parentKey(item.ParentID)
	kids := s.children[key]
	for i, kid := range kids {
		if kid == item.ID {
			s.children[key] = append(kids[:i], kids[i+1:]...)
			break
		}
	}
}

func (s *Store) removeCascadeLocked(itemID string) {
	// Children first, depth-first over a snapshot of the child list.
	kids := append([]string(nil), s.children[itemID]...)
	for _, kid := range kids {
		s.removeCascadeLocked(kid)
	}

	item := s.items[itemID]
	s.detachLocked(item)
	delete(s.children, itemID)
	delete(s.items, itemID)
	for i, ordered := range s.order {
		if ordered == itemID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
