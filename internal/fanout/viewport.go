package fanout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const viewportPollInterval = 100 * time.Millisecond

// ViewportFrame is one Mode B poll result: every vehicle currently within
// radius_km of (lat, lon).
type ViewportFrame struct {
	ID    string  `json:"id"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Speed float64 `json:"speed"`
}

type vehicleMeta struct {
	Speed     float64 `json:"speed"`
	Timestamp int64   `json:"timestamp"`
}

// QueryViewport runs one GEOSEARCH radius query against vehicles:current
// and resolves each hit's speed from its metadata key (0 if absent or
// expired).
func QueryViewport(ctx context.Context, client *redis.Client, lat, lon, radiusKm float64) ([]ViewportFrame, error) {
	hits, err := client.GeoSearchLocation(ctx, "vehicles:current", &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  lon,
			Latitude:   lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
		},
		WithCoord: true,
	}).Result()
	if err != nil {
		return nil, err
	}

	frames := make([]ViewportFrame, 0, len(hits))
	for _, h := range hits {
		speed := 0.0
		raw, err := client.Get(ctx, "vehicle:"+h.Name+":meta").Result()
		if err == nil {
			var m vehicleMeta
			if json.Unmarshal([]byte(raw), &m) == nil {
				speed = m.Speed
			}
		}
		frames = append(frames, ViewportFrame{ID: h.Name, Lat: h.Latitude, Lon: h.Longitude, Speed: speed})
	}
	return frames, nil
}

// ServeViewport polls QueryViewport every 100ms and sends each frame as a
// JSON text message over send, until ctx is cancelled. A query failure is
// logged and retried on the next tick rather than ending the connection.
func ServeViewport(ctx context.Context, client *redis.Client, lat, lon, radiusKm float64, send func([]byte) error, logger *log.Entry) {
	ticker := time.NewTicker(viewportPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frames, err := QueryViewport(ctx, client, lat, lon, radiusKm)
			if err != nil {
				logger.WithError(err).Warn("viewport query failed, retrying next tick")
				continue
			}
			payload, err := json.Marshal(frames)
			if err != nil {
				continue
			}
			if err := send(payload); err != nil {
				return
			}
		}
	}
}
