package vfs

import (
	"fmt"
	"sync"

	"github.com/cloudpane/backend/internal/shared/id"
)

// Category is a user-defined tag with an independent lifecycle from items.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Categories manages the category set. Deleting a category cascade-nulls
// the CategoryID of every referencing item, so the store never holds
// dangling references.
type Categories struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Category
	store *Store
}

// NewCategories creates a category manager bound to an item store.
func NewCategories(store *Store) *Categories {
	return &Categories{
		byID:  make(map[string]*Category),
		store: store,
	}
}

// SeedDefaults installs the stock dashboard categories into an empty
// manager.
func (c *Categories) SeedDefaults() {
	defaults := []struct{ name, color string }{
		{"Documents", "blue"},
		{"Images", "green"},
		{"Videos", "purple"},
		{"Audio", "yellow"},
		{"Code", "red"},
		{"Archives", "gray"},
	}
	for _, d := range defaults {
		if _, err := c.Create(d.name, d.color); err != nil {
			return
		}
	}
}

// Create adds a category. Blank names are rejected with ErrValidation.
func (c *Categories) Create(name, color string) (*Category, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cat := &Category{
		ID:    id.NewCategoryID().String(),
		Name:  name,
		Color: color,
	}
	c.byID[cat.ID] = cat
	c.order = append(c.order, cat.ID)

	out := *cat
	return &out, nil
}

// Get returns a category or ErrNotFound.
func (c *Categories) Get(categoryID string) (*Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cat, ok := c.byID[categoryID]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	out := *cat
	return &out, nil
}

// List returns all categories in creation order.
func (c *Categories) List() []*Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Category, 0, len(c.order))
	for _, categoryID := range c.order {
		cat := *c.byID[categoryID]
		out = append(out, &cat)
	}
	return out
}

// Rename changes a category's display name.
func (c *Categories) Rename(categoryID, name string) (*Category, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cat, ok := c.byID[categoryID]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	cat.Name = name
	out := *cat
	return &out, nil
}

// Delete removes a category and clears it from every referencing item.
// Returns how many items were touched.
func (c *Categories) Delete(categoryID string) (int, error) {
	c.mu.Lock()
	if _, ok := c.byID[categoryID]; !ok {
		c.mu.Unlock()
		return 0, fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	delete(c.byID, categoryID)
	for i, ordered := range c.order {
		if ordered == categoryID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	return c.store.ClearCategory(categoryID), nil
}
