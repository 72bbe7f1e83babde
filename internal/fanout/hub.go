// Package fanout implements the Fan-out Core: it bridges the hot-path
// pub/sub channel to many viewer sockets and serves the static road
// geometry and health endpoints.
package fanout

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/opentraffic/citysim/internal/obs"
)

const broadcastBufferSize = 1000

// Hub is the single-producer/many-consumer broadcast used by Mode A. Every
// subscriber gets its own bounded channel; a subscriber that can't keep up
// has its channel closed and is dropped rather than blocking the others.
type Hub struct {
	mu      sync.Mutex
	subs    map[chan []byte]struct{}
	metrics *obs.FanoutMetrics
}

// NewHub returns an empty hub.
func NewHub(metrics *obs.FanoutMetrics) *Hub {
	return &Hub{subs: make(map[chan []byte]struct{}), metrics: metrics}
}

// Subscribe registers a new receiver and returns its channel plus an
// unsubscribe function the caller must defer.
func (h *Hub) Subscribe() (ch chan []byte, unsubscribe func()) {
	ch = make(chan []byte, broadcastBufferSize)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
}

// Broadcast forwards payload to every subscriber. A subscriber whose buffer
// is full (Lagged) is disconnected instead of blocking delivery to the
// others.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- payload:
		default:
			delete(h.subs, ch)
			close(ch)
			if h.metrics != nil {
				h.metrics.BroadcastDrops.Inc()
			}
		}
	}
}

// SubscribeToUpdates runs until ctx is cancelled, forwarding every message
// on the vehicles:update pub/sub channel to Broadcast. Per spec, a lost
// connection logs and terminates this task; viewers stay connected but
// receive nothing further.
func SubscribeToUpdates(ctx context.Context, client *redis.Client, hub *Hub, logger *log.Entry) {
	sub := client.Subscribe(ctx, "vehicles:update")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				logger.Warn("pub/sub connection lost, viewers will receive no further updates")
				return
			}
			hub.Broadcast([]byte(msg.Payload))
		}
	}
}
