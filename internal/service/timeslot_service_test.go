package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type mockTimeslotRepo struct {
	slots    []models.Timeslot
	listHits int
}

func (m *mockTimeslotRepo) ListAll(ctx context.Context) ([]models.Timeslot, error) {
	m.listHits++
	return m.slots, nil
}

func (m *mockTimeslotRepo) FindByID(ctx context.Context, id string) (*models.Timeslot, error) {
	for _, slot := range m.slots {
		if slot.ID == id {
			s := slot
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

// fakeCatalogCache stores marshalled values like the Redis-backed repository.
type fakeCatalogCache struct {
	data map[string][]byte
}

func (f *fakeCatalogCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCatalogCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if f.data == nil {
		f.data = map[string][]byte{}
	}
	f.data[key] = raw
	return nil
}

func TestTimeslotAllReadThrough(t *testing.T) {
	repo := &mockTimeslotRepo{slots: []models.Timeslot{
		slotAt("slot-09", "09:00", 60),
		slotAt("slot-10", "10:00", 60),
	}}
	cache := &fakeCatalogCache{}
	svc := NewTimeslotService(repo, cache, nil, time.Hour, nil)

	first, err := svc.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, repo.listHits)

	// second read is served from cache
	second, err := svc.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Equal(t, 1, repo.listHits)
}

func TestTimeslotByIDFromCachedCatalog(t *testing.T) {
	repo := &mockTimeslotRepo{slots: []models.Timeslot{slotAt("slot-09", "09:00", 60)}}
	cache := &fakeCatalogCache{}
	svc := NewTimeslotService(repo, cache, nil, time.Hour, nil)

	_, err := svc.All(context.Background())
	require.NoError(t, err)

	slot, err := svc.ByID(context.Background(), "slot-09")
	require.NoError(t, err)
	assert.Equal(t, "09:00", slot.StartTime)

	_, err = svc.ByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTimeslotWorksWithoutCache(t *testing.T) {
	repo := &mockTimeslotRepo{slots: []models.Timeslot{slotAt("slot-09", "09:00", 60)}}
	svc := NewTimeslotService(repo, nil, nil, time.Hour, nil)

	slots, err := svc.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, slots, 1)

	slot, err := svc.ByID(context.Background(), "slot-09")
	require.NoError(t, err)
	assert.Equal(t, "slot-09", slot.ID)
}
