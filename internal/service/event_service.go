package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type eventStore interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	ListRoster(ctx context.Context, eventID string) ([]string, error)
}

// EventService manages the lifecycle of placed events. Placement changes go
// back through full constraint validation with the event's own id excluded,
// so an event never conflicts with itself.
type EventService struct {
	events      eventStore
	constraints eventValidator
	logger      *zap.Logger
}

// NewEventService wires the event lifecycle service.
func NewEventService(events eventStore, constraints eventValidator, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{events: events, constraints: constraints, logger: logger}
}

// List returns events matching the query plus the total row count.
func (s *EventService) List(ctx context.Context, query dto.EventQuery) ([]models.Event, int, error) {
	filter := models.EventFilter{
		ModuleID:   query.ModuleID,
		RoomID:     query.RoomID,
		StaffID:    query.StaffID,
		TimeslotID: query.TimeslotID,
		Tag:        query.Tag,
		Page:       query.Page,
		PageSize:   query.PageSize,
		SortBy:     query.SortBy,
		SortOrder:  query.SortOrder,
	}
	if query.DateFrom != "" {
		from, err := time.Parse("2006-01-02", query.DateFrom)
		if err != nil {
			return nil, 0, appErrors.Clone(appErrors.ErrValidation, "from must be formatted as 2006-01-02")
		}
		filter.DateFrom = from
	}
	if query.DateTo != "" {
		to, err := time.Parse("2006-01-02", query.DateTo)
		if err != nil {
			return nil, 0, appErrors.Clone(appErrors.ErrValidation, "to must be formatted as 2006-01-02")
		}
		filter.DateTo = to
	}

	events, total, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list events")
	}
	return events, total, nil
}

// Get loads one event with its roster.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load event")
	}
	roster, err := s.events.ListRoster(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load event roster")
	}
	event.StudentIDs = roster
	return event, nil
}

// Update applies a patch. When the patch moves the event in space or time,
// the new placement must pass every hard constraint first.
func (s *EventService) Update(ctx context.Context, id string, req dto.UpdateEventRequest) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load event")
	}

	moved := false
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as 2006-01-02")
		}
		event.Date = date
		moved = true
	}
	if req.TimeslotID != nil {
		event.TimeslotID = *req.TimeslotID
		moved = true
	}
	if req.RoomID != nil {
		event.RoomID = *req.RoomID
		moved = true
	}
	if req.StaffID != nil {
		event.StaffID = *req.StaffID
		moved = true
	}
	if req.Tag != nil {
		event.Tag = models.EventTag(strings.ToUpper(*req.Tag))
	}
	if req.StudentIDs != nil {
		event.StudentIDs = req.StudentIDs
		event.StudentCount = len(req.StudentIDs)
	}

	if moved || req.StudentIDs != nil {
		report, err := s.constraints.ValidateEvent(ctx, Candidate{
			RoomID:         event.RoomID,
			StaffID:        event.StaffID,
			ModuleID:       event.ModuleID,
			Date:           event.Date,
			TimeslotID:     event.TimeslotID,
			StudentCount:   event.StudentCount,
			ExcludeEventID: event.ID,
		})
		if err != nil {
			return nil, err
		}
		if !report.CanSchedule() {
			return nil, appErrors.Clone(appErrors.ErrConflict, report.HardViolations[0].Message)
		}
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update event")
	}
	s.logger.Sugar().Infow("event updated", "event_id", event.ID, "moved", moved)
	return event, nil
}

// Delete removes an event and its roster.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete event")
	}
	s.logger.Sugar().Infow("event deleted", "event_id", id)
	return nil
}
