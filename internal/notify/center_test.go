package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudpane/backend/internal/events"
	"github.com/cloudpane/backend/internal/kvstore"
)

func newTestCenter(t *testing.T) (*Center, *kvstore.Store) {
	t.Helper()
	store, err := kvstore.Open("")
	require.NoError(t, err)
	return NewCenter(store, nil), store
}

func TestAddOrdersNewestFirst(t *testing.T) {
	c, _ := newTestCenter(t)

	c.Add("Upload complete", "report.pdf uploaded", TypeSuccess)
	c.Add("Low storage", "90% of quota used", TypeWarning)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Low storage", list[0].Title)
	assert.Equal(t, "Upload complete", list[1].Title)
	assert.Equal(t, 2, c.UnreadCount())
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	c, _ := newTestCenter(t)

	n1 := c.Add("one", "", TypeInfo)
	c.Add("two", "", TypeInfo)

	require.NoError(t, c.MarkRead(n1.ID))
	assert.Equal(t, 1, c.UnreadCount())

	assert.ErrorIs(t, c.MarkRead("ntf_missing"), ErrNotFound)

	c.MarkAllRead()
	assert.Equal(t, 0, c.UnreadCount())
}

func TestRemoveAndClear(t *testing.T) {
	c, _ := newTestCenter(t)

	n := c.Add("gone soon", "", TypeInfo)
	c.Add("stays", "", TypeInfo)

	require.NoError(t, c.Remove(n.ID))
	assert.ErrorIs(t, c.Remove(n.ID), ErrNotFound)
	require.Len(t, c.List(), 1)

	c.Clear()
	assert.Empty(t, c.List())
	assert.Equal(t, 0, c.UnreadCount())
}

func TestAddPublishesOnBus(t *testing.T) {
	store, err := kvstore.Open("")
	require.NoError(t, err)

	bus := events.NewBus(4)
	defer bus.Close()
	ch, cancel := bus.Subscribe(events.TopicNotification)
	defer cancel()

	c := NewCenter(store, bus)
	c.Error("Transfer failed", "could not move 2 items")

	select {
	case evt := <-ch:
		n, ok := evt.Payload.(Notification)
		require.True(t, ok)
		assert.Equal(t, "Transfer failed", n.Title)
		assert.Equal(t, TypeError, n.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification event")
	}
}

func TestPersistsAcrossCenters(t *testing.T) {
	store, err := kvstore.Open("")
	require.NoError(t, err)

	first := NewCenter(store, nil)
	first.Add("persisted", "still here", TypeInfo)

	second := NewCenter(store, nil)
	list := second.List()
	require.Len(t, list, 1)
	assert.Equal(t, "persisted", list[0].Title)
	assert.False(t, list[0].Timestamp.IsZero())
}

func TestTimestampRevivalFormats(t *testing.T) {
	store, err := kvstore.Open("")
	require.NoError(t, err)

	// Older shells persisted timestamps as epoch milliseconds; the current
	// one writes RFC3339. Both must revive.
	raw := `[
		{"id":"ntf_a","title":"legacy","type":"info","read":false,"timestamp":1735689600000},
		{"id":"ntf_b","title":"modern","type":"info","read":true,"timestamp":"2026-02-01T10:00:00Z"}
	]`
	require.NoError(t, store.Set(kvstore.KeyNotifications, mustRaw(t, raw)))

	c := NewCenter(store, nil)
	list := c.List()
	require.Len(t, list, 2)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), list[0].Timestamp)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), list[1].Timestamp)
	assert.Equal(t, 1, c.UnreadCount())
}

func TestCorruptPersistedListIsDiscarded(t *testing.T) {
	store, err := kvstore.Open("")
	require.NoError(t, err)
	require.NoError(t, store.Set(kvstore.KeyNotifications, "not a list"))

	c := NewCenter(store, nil)
	assert.Empty(t, c.List())
}

type rawJSON string

func (r rawJSON) MarshalJSON() ([]byte, error) { return []byte(r), nil }

func mustRaw(t *testing.T, s string) rawJSON {
	t.Helper()
	return rawJSON(s)
}
