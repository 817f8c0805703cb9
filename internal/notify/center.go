// Package notify implements the dashboard notification center: an ordered
// list of user-facing messages (the toast/tray surface), persisted through
// the key-value store and broadcast on the event bus.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cloudpane/backend/internal/events"
	"github.com/cloudpane/backend/internal/kvstore"
	"github.com/cloudpane/backend/internal/shared/id"
)

// Type is the notification severity.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// ErrNotFound marks operations on an unknown notification id.
var ErrNotFound = errors.New("notification not found")

// Notification is one entry, newest first in the center's list.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

// UnmarshalJSON revives the timestamp field: persisted lists may carry it
// either as an RFC3339 string or as epoch milliseconds (the formats older
// shells wrote).
func (n *Notification) UnmarshalJSON(data []byte) error {
	type alias Notification
	aux := struct {
		*alias
		Timestamp json.RawMessage `json:"timestamp"`
	}{alias: (*alias)(n)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Timestamp) == 0 || string(aux.Timestamp) == "null" {
		return nil
	}

	var asString string
	if err := json.Unmarshal(aux.Timestamp, &asString); err == nil {
		ts, err := time.Parse(time.RFC3339, asString)
		if err != nil {
			return fmt.Errorf("revive timestamp %q: %w", asString, err)
		}
		n.Timestamp = ts
		return nil
	}

	millis, err := strconv.ParseInt(string(aux.Timestamp), 10, 64)
	if err != nil {
		return fmt.Errorf("revive timestamp %s: %w", aux.Timestamp, err)
	}
	n.Timestamp = time.UnixMilli(millis).UTC()
	return nil
}

// Center manages the notification list. Every Add also publishes on the
// event bus so connected dashboards can toast it.
type Center struct {
	mu    sync.Mutex
	list  []*Notification
	store *kvstore.Store
	bus   *events.Bus
	now   func() time.Time
}

// NewCenter creates a center, loading any persisted notifications. A
// corrupt persisted list is discarded rather than blocking startup.
func NewCenter(store *kvstore.Store, bus *events.Bus) *Center {
	c := &Center{
		store: store,
		bus:   bus,
		now:   time.Now,
	}

	raw, err := store.GetRaw(kvstore.KeyNotifications)
	if err == nil {
		var list []*Notification
		if json.Unmarshal(raw, &list) == nil {
			c.list = list
		}
	}
	return c
}

// WithClock overrides the clock for deterministic tests.
func (c *Center) WithClock(now func() time.Time) *Center {
	c.now = now
	return c
}

// Add creates a notification, persists the list, and broadcasts it.
func (c *Center) Add(title, message string, typ Type) *Notification {
	n := &Notification{
		ID:        id.NewNotificationID().String(),
		Title:     title,
		Message:   message,
		Type:      typ,
		Timestamp: c.now(),
	}

	c.mu.Lock()
	c.list = append([]*Notification{n}, c.list...)
	c.persistLocked()
	c.mu.Unlock()

	if c.bus != nil {
		c.bus.Publish(events.TopicNotification, *n)
	}
	return n
}

// Error is shorthand for Add with the error severity.
func (c *Center) Error(title, message string) *Notification {
	return c.Add(title, message, TypeError)
}

// List returns a copy of all notifications, newest first.
func (c *Center) List() []*Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Notification, 0, len(c.list))
	for _, n := range c.list {
		cp := *n
		out = append(out, &cp)
	}
	return out
}

// UnreadCount returns how many notifications are unread.
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, n := range c.list {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkRead flags one notification as read.
func (c *Center) MarkRead(notificationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.list {
		if n.ID == notificationID {
			n.Read = true
			c.persistLocked()
			return nil
		}
	}
	return fmt.Errorf("%s: %w", notificationID, ErrNotFound)
}

// MarkAllRead flags everything as read.
func (c *Center) MarkAllRead() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.list {
		n.Read = true
	}
	c.persistLocked()
}

// Remove deletes one notification.
func (c *Center) Remove(notificationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.list {
		if n.ID == notificationID {
			c.list = append(c.list[:i], c.list[i+1:]...)
			c.persistLocked()
			return nil
		}
	}
	return fmt.Errorf("%s: %w", notificationID, ErrNotFound)
}

// Clear deletes all notifications.
func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = nil
	c.persistLocked()
}

// persistLocked writes the list through the kv store. Persistence errors
// do not fail the operation; the in-memory list stays authoritative.
func (c *Center) persistLocked() {
	if c.store == nil {
		return
	}
	_ = c.store.Set(kvstore.KeyNotifications, c.list)
}
