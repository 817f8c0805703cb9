// Package events provides the typed in-process pub/sub bus that decouples
// the storage view, the sidebar tree, and the notification center. It
// replaces the ad hoc broadcast events the dashboard previously relied on
// with named topics and structured payloads.
package events

import (
	"sync"
	"time"
)

// Topic names a broadcast channel.
type Topic string

const (
	TopicCategorySelected Topic = "category.selected"
	TopicFolderSelected   Topic = "folder.selected"
	TopicFolderCreated    Topic = "folder.created"
	TopicDragStarted      Topic = "drag.started"
	TopicDragEnded        Topic = "drag.ended"
	TopicItemsDropped     Topic = "items.dropped"
	TopicNotification     Topic = "notification"
	TopicTaskProgress     Topic = "task.progress"
)

// Event is one published message.
type Event struct {
	Topic   Topic       `json:"topic"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

type subscriber struct {
	topics map[Topic]bool // nil subscribes to everything
	ch     chan Event
}

// Bus is a non-blocking fan-out bus. Publish never waits: a subscriber
// whose buffer is full misses the event, which keeps a stalled WebSocket
// client from backing up the whole UI.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	buffer int
	closed bool
}

// NewBus creates a bus whose subscriber channels hold up to buffer events.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{
		subs:   make(map[int]*subscriber),
		buffer: buffer,
	}
}

// Subscribe registers for the given topics (none = all). The returned
// cancel func detaches the subscriber and closes its channel; it is safe to
// call more than once.
func (b *Bus) Subscribe(topics ...Topic) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, b.buffer)}
	if len(topics) > 0 {
		sub.topics = make(map[Topic]bool, len(topics))
		for _, t := range topics {
			sub.topics[t] = true
		}
	}

	if b.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	subID := b.nextID
	b.nextID++
	b.subs[subID] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[subID]; ok {
				delete(b.subs, subID)
				close(sub.ch)
			}
		})
	}
	return sub.ch, cancel
}

// Publish broadcasts an event to every matching subscriber without
// blocking.
func (b *Bus) Publish(topic Topic, payload interface{}) {
	evt := Event{Topic: topic, Payload: payload, At: time.Now()}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.subs {
		if sub.topics != nil && !sub.topics[topic] {
			continue
		}
		select {
		case sub.ch <- evt:
		default: // slow subscriber drops
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for subID, sub := range b.subs {
		delete(b.subs, subID)
		close(sub.ch)
	}
}
