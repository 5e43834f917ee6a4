package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

const eventColumns = "id, title, description, date, timeslot_id, module_id, course_id, room_id, staff_id, student_count, tag, created_at, updated_at"

// EventRepository provides persistence for timetabled events and their
// student rosters.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events with optional filtering and pagination.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	base := "FROM events WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ModuleID != "" {
		conditions = append(conditions, fmt.Sprintf("module_id = $%d", len(args)+1))
		args = append(args, filter.ModuleID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.StaffID != "" {
		conditions = append(conditions, fmt.Sprintf("staff_id = $%d", len(args)+1))
		args = append(args, filter.StaffID)
	}
	if filter.TimeslotID != "" {
		conditions = append(conditions, fmt.Sprintf("timeslot_id = $%d", len(args)+1))
		args = append(args, filter.TimeslotID)
	}
	if filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("tag = $%d", len(args)+1))
		args = append(args, filter.Tag)
	}
	if !filter.DateFrom.IsZero() {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "date"
	}
	allowedSorts := map[string]bool{
		"date":       true,
		"title":      true,
		"room_id":    true,
		"staff_id":   true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", eventColumns, base, sortBy, order, size, offset)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	return events, total, nil
}

// FindByID loads an event by id.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// ListByRoomSlot returns events occupying the given room on (date, timeslot).
func (r *EventRepository) ListByRoomSlot(ctx context.Context, roomID string, date time.Time, timeslotID string) ([]models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE room_id = $1 AND date = $2 AND timeslot_id = $3", eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, roomID, date, timeslotID); err != nil {
		return nil, fmt.Errorf("list events by room slot: %w", err)
	}
	return events, nil
}

// ListByStaffSlot returns events the staff member has on (date, timeslot).
func (r *EventRepository) ListByStaffSlot(ctx context.Context, staffID string, date time.Time, timeslotID string) ([]models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE staff_id = $1 AND date = $2 AND timeslot_id = $3", eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, staffID, date, timeslotID); err != nil {
		return nil, fmt.Errorf("list events by staff slot: %w", err)
	}
	return events, nil
}

// ListByStaffAndDate returns all events a staff member teaches on a date,
// ordered for gap analysis.
func (r *EventRepository) ListByStaffAndDate(ctx context.Context, staffID string, date time.Time) ([]models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE staff_id = $1 AND date = $2 ORDER BY timeslot_id ASC", eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, staffID, date); err != nil {
		return nil, fmt.Errorf("list events by staff and date: %w", err)
	}
	return events, nil
}

// ListBetween returns all events in the inclusive date range, ordered by
// date then timeslot, for export rendering.
func (r *EventRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE date >= $1 AND date <= $2 ORDER BY date ASC, timeslot_id ASC, room_id ASC", eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, from, to); err != nil {
		return nil, fmt.Errorf("list events between: %w", err)
	}
	return events, nil
}

// Create stores a new event and its student roster in one transaction.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create event: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO events (id, title, description, date, timeslot_id, module_id, course_id, room_id, staff_id, student_count, tag, created_at, updated_at) VALUES (:id, :title, :description, :date, :timeslot_id, :module_id, :course_id, :room_id, :staff_id, :student_count, :tag, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	if err = insertRoster(ctx, tx, event.ID, event.StudentIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create event: %w", err)
	}
	return nil
}

// Update modifies an event and, when a roster is supplied, replaces its
// student associations.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update event: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE events SET title = :title, description = :description, date = :date, timeslot_id = :timeslot_id, module_id = :module_id, course_id = :course_id, room_id = :room_id, staff_id = :staff_id, student_count = :student_count, tag = :tag, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	if event.StudentIDs != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM event_students WHERE event_id = $1`, event.ID); err != nil {
			return fmt.Errorf("clear event roster: %w", err)
		}
		if err = insertRoster(ctx, tx, event.ID, event.StudentIDs); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update event: %w", err)
	}
	return nil
}

// Delete removes an event together with its roster associations.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete event: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM event_students WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete event roster: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete event: %w", err)
	}
	return nil
}

// ListRoster returns the student ids enrolled on an event.
func (r *EventRepository) ListRoster(ctx context.Context, eventID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT student_id FROM event_students WHERE event_id = $1 ORDER BY student_id ASC`, eventID); err != nil {
		return nil, fmt.Errorf("list event roster: %w", err)
	}
	return ids, nil
}

func insertRoster(ctx context.Context, tx *sqlx.Tx, eventID string, studentIDs []string) error {
	for _, studentID := range studentIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO event_students (event_id, student_id) VALUES ($1, $2)`, eventID, studentID); err != nil {
			return fmt.Errorf("insert event roster row: %w", err)
		}
	}
	return nil
}
