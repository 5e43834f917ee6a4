package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type mockEventStore struct {
	events  map[string]models.Event
	rosters map[string][]string
	updated *models.Event
	deleted []string
}

func (m *mockEventStore) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	var out []models.Event
	for _, e := range m.events {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (m *mockEventStore) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if e, ok := m.events[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEventStore) Update(ctx context.Context, event *models.Event) error {
	m.events[event.ID] = *event
	m.updated = event
	return nil
}

func (m *mockEventStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.events[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.events, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockEventStore) ListRoster(ctx context.Context, eventID string) ([]string, error) {
	return m.rosters[eventID], nil
}

type mockConstraintValidator struct {
	lastCandidate Candidate
	report        models.ValidationReport
}

func (m *mockConstraintValidator) ValidateEvent(ctx context.Context, candidate Candidate) (models.ValidationReport, error) {
	m.lastCandidate = candidate
	return m.report, nil
}

func newEventFixture() (*EventService, *mockEventStore, *mockConstraintValidator) {
	store := &mockEventStore{
		events: map[string]models.Event{
			"evt-1": {
				ID:         "evt-1",
				Title:      "Databases",
				Date:       time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
				TimeslotID: "slot-10",
				RoomID:     "room-a",
				StaffID:    "staff-1",
				ModuleID:   "module-1",
			},
		},
		rosters: map[string][]string{"evt-1": {"stu-1", "stu-2"}},
	}
	validator := &mockConstraintValidator{}
	return NewEventService(store, validator, nil), store, validator
}

func TestEventGetLoadsRoster(t *testing.T) {
	svc, _, _ := newEventFixture()

	event, err := svc.Get(context.Background(), "evt-1")
	require.NoError(t, err)

	assert.Equal(t, "Databases", event.Title)
	assert.Equal(t, []string{"stu-1", "stu-2"}, event.StudentIDs)
}

func TestEventGetNotFound(t *testing.T) {
	svc, _, _ := newEventFixture()

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestEventUpdateTitleOnlySkipsValidation(t *testing.T) {
	svc, store, validator := newEventFixture()
	title := "Databases II"

	event, err := svc.Update(context.Background(), "evt-1", dto.UpdateEventRequest{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Databases II", event.Title)
	assert.Equal(t, "", validator.lastCandidate.RoomID)
	require.NotNil(t, store.updated)
}

func TestEventUpdateMoveRevalidatesExcludingSelf(t *testing.T) {
	svc, _, validator := newEventFixture()
	room := "room-b"

	_, err := svc.Update(context.Background(), "evt-1", dto.UpdateEventRequest{RoomID: &room})
	require.NoError(t, err)

	assert.Equal(t, "room-b", validator.lastCandidate.RoomID)
	assert.Equal(t, "evt-1", validator.lastCandidate.ExcludeEventID)
}

func TestEventUpdateMoveRejectedOnHardViolation(t *testing.T) {
	svc, store, validator := newEventFixture()
	validator.report = models.ValidationReport{
		HardViolations: []models.Violation{{
			ConstraintID: models.ConstraintRoomConflict,
			Message:      "room is already booked for this date and timeslot",
		}},
	}
	room := "room-b"

	_, err := svc.Update(context.Background(), "evt-1", dto.UpdateEventRequest{RoomID: &room})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Nil(t, store.updated)
}

func TestEventUpdateRosterRecountsStudents(t *testing.T) {
	svc, _, validator := newEventFixture()

	event, err := svc.Update(context.Background(), "evt-1", dto.UpdateEventRequest{
		StudentIDs: []string{"stu-1", "stu-2", "stu-3"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, event.StudentCount)
	assert.Equal(t, 3, validator.lastCandidate.StudentCount)
}

func TestEventDelete(t *testing.T) {
	svc, store, _ := newEventFixture()

	require.NoError(t, svc.Delete(context.Background(), "evt-1"))
	assert.Equal(t, []string{"evt-1"}, store.deleted)

	err := svc.Delete(context.Background(), "evt-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestEventListParsesDateBounds(t *testing.T) {
	svc, _, _ := newEventFixture()

	_, _, err := svc.List(context.Background(), dto.EventQuery{DateFrom: "not-a-date"})
	require.Error(t, err)

	events, total, err := svc.List(context.Background(), dto.EventQuery{DateFrom: "2026-09-01", DateTo: "2026-09-30"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, events, 1)
}
