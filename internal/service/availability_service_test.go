package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type mockOccupancyReader struct {
	roomEvents  []models.Event
	staffEvents []models.Event
	err         error
}

func (m *mockOccupancyReader) ListByRoomSlot(ctx context.Context, roomID string, date time.Time, timeslotID string) ([]models.Event, error) {
	return m.roomEvents, m.err
}

func (m *mockOccupancyReader) ListByStaffSlot(ctx context.Context, staffID string, date time.Time, timeslotID string) ([]models.Event, error) {
	return m.staffEvents, m.err
}

func TestRoomIsFree(t *testing.T) {
	reader := &mockOccupancyReader{}
	svc := NewAvailabilityService(reader)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	free, err := svc.RoomIsFree(context.Background(), "room-a", date, "slot-10", "")
	require.NoError(t, err)
	assert.True(t, free)

	reader.roomEvents = []models.Event{{ID: "evt-1", RoomID: "room-a"}}
	free, err = svc.RoomIsFree(context.Background(), "room-a", date, "slot-10", "")
	require.NoError(t, err)
	assert.False(t, free)
}

func TestRoomIsFreeExcludesOwnEvent(t *testing.T) {
	reader := &mockOccupancyReader{roomEvents: []models.Event{{ID: "evt-1", RoomID: "room-a"}}}
	svc := NewAvailabilityService(reader)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	free, err := svc.RoomIsFree(context.Background(), "room-a", date, "slot-10", "evt-1")
	require.NoError(t, err)
	assert.True(t, free)

	// a second occupying event still blocks
	reader.roomEvents = append(reader.roomEvents, models.Event{ID: "evt-2", RoomID: "room-a"})
	free, err = svc.RoomIsFree(context.Background(), "room-a", date, "slot-10", "evt-1")
	require.NoError(t, err)
	assert.False(t, free)
}

func TestStaffIsFreeExcludesOwnEvent(t *testing.T) {
	reader := &mockOccupancyReader{staffEvents: []models.Event{{ID: "evt-1", StaffID: "staff-1"}}}
	svc := NewAvailabilityService(reader)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	free, err := svc.StaffIsFree(context.Background(), "staff-1", date, "slot-10", "evt-1")
	require.NoError(t, err)
	assert.True(t, free)

	free, err = svc.StaffIsFree(context.Background(), "staff-1", date, "slot-10", "")
	require.NoError(t, err)
	assert.False(t, free)
}

func TestAvailabilityWrapsStorageErrors(t *testing.T) {
	reader := &mockOccupancyReader{err: errors.New("connection reset")}
	svc := NewAvailabilityService(reader)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	_, err := svc.RoomIsFree(context.Background(), "room-a", date, "slot-10", "")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrStorage.Code, appErr.Code)
}
