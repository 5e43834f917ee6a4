package service

import (
	"context"
	"time"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type availabilityEventReader interface {
	ListByRoomSlot(ctx context.Context, roomID string, date time.Time, timeslotID string) ([]models.Event, error)
	ListByStaffSlot(ctx context.Context, staffID string, date time.Time, timeslotID string) ([]models.Event, error)
}

// AvailabilityService answers whether a room or staff member is free on a
// (date, timeslot) composite key. The timetable grid is built from the fixed
// timeslot catalog, so that key, not a raw time range, is the unit of
// conflict detection.
type AvailabilityService struct {
	events availabilityEventReader
}

// NewAvailabilityService wires the event reader.
func NewAvailabilityService(events availabilityEventReader) *AvailabilityService {
	return &AvailabilityService{events: events}
}

// RoomIsFree reports whether no event occupies the room at (date, timeslot).
// excludeEventID, when non-empty, is not counted as a conflict so an event
// being edited does not collide with itself.
func (s *AvailabilityService) RoomIsFree(ctx context.Context, roomID string, date time.Time, timeslotID, excludeEventID string) (bool, error) {
	occupying, err := s.events.ListByRoomSlot(ctx, roomID, date, timeslotID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to query room occupancy")
	}
	return noneBut(occupying, excludeEventID), nil
}

// StaffIsFree reports whether the staff member has no event at (date, timeslot).
func (s *AvailabilityService) StaffIsFree(ctx context.Context, staffID string, date time.Time, timeslotID, excludeEventID string) (bool, error) {
	occupying, err := s.events.ListByStaffSlot(ctx, staffID, date, timeslotID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to query staff occupancy")
	}
	return noneBut(occupying, excludeEventID), nil
}

func noneBut(events []models.Event, excludeEventID string) bool {
	for _, event := range events {
		if excludeEventID != "" && event.ID == excludeEventID {
			continue
		}
		return false
	}
	return true
}
