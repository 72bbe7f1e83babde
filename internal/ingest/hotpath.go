package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opentraffic/citysim/internal/errs"
	"github.com/opentraffic/citysim/internal/wire"
)

const metaTTL = 60 * time.Second

const (
	geoKey        = "vehicles:current"
	updateChannel = "vehicles:update"
)

// HotPath maintains the live geospatial index, per-vehicle metadata, and
// pub/sub notifications backing the real-time viewer.
type HotPath struct {
	client *redis.Client
}

// NewHotPath wraps an already-constructed client.
func NewHotPath(client *redis.Client) *HotPath {
	return &HotPath{client: client}
}

type meta struct {
	Speed     float64 `json:"speed"`
	Timestamp int64   `json:"timestamp"`
}

type updatePayload struct {
	ID    string  `json:"id"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Speed float64 `json:"speed"`
}

// Upsert runs the three hot-path steps (geo upsert, metadata TTL, pub/sub
// notify) for p. Each step is attempted even if an earlier one fails; all
// failures are joined into the returned error.
func (h *HotPath) Upsert(ctx context.Context, p wire.VehiclePosition) error {
	var errGeo, errMeta, errPub error

	if err := h.client.GeoAdd(ctx, geoKey, &redis.GeoLocation{
		Name:      p.VehicleID,
		Longitude: p.Longitude,
		Latitude:  p.Latitude,
	}).Err(); err != nil {
		errGeo = errs.Cache("geoadd vehicles:current", err)
	}

	m, _ := json.Marshal(meta{Speed: p.Speed, Timestamp: p.Timestamp})
	if err := h.client.Set(ctx, fmt.Sprintf("vehicle:%s:meta", p.VehicleID), m, metaTTL).Err(); err != nil {
		errMeta = errs.Cache("set vehicle meta", err)
	}

	payload, _ := json.Marshal(updatePayload{ID: p.VehicleID, Lat: p.Latitude, Lon: p.Longitude, Speed: p.Speed})
	if err := h.client.Publish(ctx, updateChannel, payload).Err(); err != nil {
		errPub = errs.Cache("publish vehicles:update", err)
	}

	return errors.Join(errGeo, errMeta, errPub)
}
