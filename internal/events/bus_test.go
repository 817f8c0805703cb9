package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBus(4)
	defer b.Close()

	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish(TopicFolderCreated, map[string]string{"id": "itm_1"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		evt := recv(t, ch)
		assert.Equal(t, TopicFolderCreated, evt.Topic)
		assert.False(t, evt.At.IsZero())
	}
}

func TestTopicFiltering(t *testing.T) {
	b := NewBus(4)
	defer b.Close()

	ch, cancel := b.Subscribe(TopicDragStarted, TopicDragEnded)
	defer cancel()

	b.Publish(TopicNotification, "ignored")
	b.Publish(TopicDragStarted, "seen")

	evt := recv(t, ch)
	assert.Equal(t, TopicDragStarted, evt.Topic)
	assert.Equal(t, "seen", evt.Payload)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected event: %+v", extra)
	default:
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBus(1)
	defer b.Close()

	ch, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(TopicTaskProgress, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	evt := recv(t, ch)
	assert.Equal(t, TopicTaskProgress, evt.Topic)
}

func TestCancelStopsDelivery(t *testing.T) {
	b := NewBus(4)
	defer b.Close()

	ch, cancel := b.Subscribe()
	cancel()
	cancel() // idempotent

	_, open := <-ch
	assert.False(t, open)
}

func TestCloseShutsAllChannels(t *testing.T) {
	b := NewBus(4)

	ch, _ := b.Subscribe()
	b.Close()
	b.Close() // idempotent

	_, open := <-ch
	require.False(t, open)

	// Publishing after close is a no-op.
	b.Publish(TopicNotification, "late")
}
