package ingest

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentraffic/citysim/internal/wire"
)

type fakeColdStore struct {
	added []wire.VehiclePosition
	err   error
}

func (f *fakeColdStore) Add(ctx context.Context, p wire.VehiclePosition) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, p)
	return nil
}

type fakeHotStore struct {
	upserted []wire.VehiclePosition
	err      error
}

func (f *fakeHotStore) Upsert(ctx context.Context, p wire.VehiclePosition) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, p)
	return nil
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestProcessDualWritesOnSuccess(t *testing.T) {
	cold := &fakeColdStore{}
	hot := &fakeHotStore{}
	p := &Processor{Batcher: cold, Hot: hot, Log: testLogger()}

	pos := wire.VehiclePosition{VehicleID: "car_1", Latitude: 1, Longitude: 2, Speed: 3, Timestamp: 100}
	err := p.Process(context.Background(), wire.Encode(pos))

	require.NoError(t, err)
	assert.Equal(t, []wire.VehiclePosition{pos}, cold.added)
	assert.Equal(t, []wire.VehiclePosition{pos}, hot.upserted)
}

func TestProcessMalformedRecordIsPoisonMessage(t *testing.T) {
	cold := &fakeColdStore{}
	hot := &fakeHotStore{}
	p := &Processor{Batcher: cold, Hot: hot, Log: testLogger()}

	err := p.Process(context.Background(), []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})

	assert.NoError(t, err, "poison messages must not block the offset commit")
	assert.Empty(t, cold.added)
	assert.Empty(t, hot.upserted)
}

func TestProcessColdPathFailureWithholdsOffset(t *testing.T) {
	cold := &fakeColdStore{err: errors.New("connection refused")}
	hot := &fakeHotStore{}
	p := &Processor{Batcher: cold, Hot: hot, Log: testLogger()}

	err := p.Process(context.Background(), wire.Encode(wire.VehiclePosition{VehicleID: "car_1"}))

	assert.Error(t, err)
	assert.Empty(t, hot.upserted, "hot path must not run once the cold path fails")
}

func TestProcessHotPathFailureWithholdsOffset(t *testing.T) {
	cold := &fakeColdStore{}
	hot := &fakeHotStore{err: errors.New("redis down")}
	p := &Processor{Batcher: cold, Hot: hot, Log: testLogger()}

	err := p.Process(context.Background(), wire.Encode(wire.VehiclePosition{VehicleID: "car_1"}))

	assert.Error(t, err)
	assert.Len(t, cold.added, 1, "cold path write already happened and is not rolled back")
}
