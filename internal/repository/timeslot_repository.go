package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

const timeslotColumns = "id, start_time, end_time, duration_minutes, created_at, updated_at"

// TimeslotRepository provides read access to the timeslot catalog.
type TimeslotRepository struct {
	db *sqlx.DB
}

// NewTimeslotRepository creates a new timeslot repository.
func NewTimeslotRepository(db *sqlx.DB) *TimeslotRepository {
	return &TimeslotRepository{db: db}
}

// ListAll returns the full catalog ordered by start time.
func (r *TimeslotRepository) ListAll(ctx context.Context) ([]models.Timeslot, error) {
	query := fmt.Sprintf("SELECT %s FROM timeslots ORDER BY start_time ASC", timeslotColumns)
	var slots []models.Timeslot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list timeslots: %w", err)
	}
	return slots, nil
}

// FindByID loads a timeslot by id.
func (r *TimeslotRepository) FindByID(ctx context.Context, id string) (*models.Timeslot, error) {
	query := fmt.Sprintf("SELECT %s FROM timeslots WHERE id = $1", timeslotColumns)
	var slot models.Timeslot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}
