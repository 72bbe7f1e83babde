package fanout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastsToAllSubscribers(t *testing.T) {
	h := NewHub(nil)
	ch1, unsub1 := h.Subscribe()
	defer unsub1()
	ch2, unsub2 := h.Subscribe()
	defer unsub2()

	h.Broadcast([]byte("one"))
	h.Broadcast([]byte("two"))
	h.Broadcast([]byte("three"))

	for _, ch := range []chan []byte{ch1, ch2} {
		assert.Equal(t, "one", string(<-ch))
		assert.Equal(t, "two", string(<-ch))
		assert.Equal(t, "three", string(<-ch))
	}
}

func TestHubDropsSlowSubscriberWithoutAffectingOthers(t *testing.T) {
	h := NewHub(nil)
	slow, unsubSlow := h.Subscribe()
	defer unsubSlow()
	fast, unsubFast := h.Subscribe()
	defer unsubFast()

	for i := 0; i < broadcastBufferSize+10; i++ {
		h.Broadcast([]byte("x"))
		<-fast // the fast subscriber keeps up with every message
	}

	// The slow subscriber's channel should have been closed (Lagged).
	select {
	case _, ok := <-slow:
		if ok {
			// drain until closed, bounded by buffer size
			drained := 1
			for range slow {
				drained++
				if drained > broadcastBufferSize+20 {
					t.Fatal("slow subscriber channel was never closed")
				}
			}
		}
	case <-time.After(time.Second):
		t.Fatal("expected slow subscriber channel to be readable or closed")
	}

	// The fast subscriber is still subscribed and receives later messages.
	h.Broadcast([]byte("y"))
	require.Greater(t, len(fast), 0)
	assert.Equal(t, "y", string(<-fast))
}
