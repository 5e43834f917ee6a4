package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

const staffColumns = "id, full_name, email, department_id, active, created_at, updated_at"

// StaffRepository provides read access to staff for scheduling.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository creates a new staff repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// ListByDepartment returns active staff, narrowed to a department when one is
// given. An empty department id means the whole roster.
func (r *StaffRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.Staff, error) {
	var staff []models.Staff
	if departmentID == "" {
		query := fmt.Sprintf("SELECT %s FROM staff WHERE active = TRUE ORDER BY full_name ASC", staffColumns)
		if err := r.db.SelectContext(ctx, &staff, query); err != nil {
			return nil, fmt.Errorf("list staff: %w", err)
		}
		return staff, nil
	}
	query := fmt.Sprintf("SELECT %s FROM staff WHERE active = TRUE AND department_id = $1 ORDER BY full_name ASC", staffColumns)
	if err := r.db.SelectContext(ctx, &staff, query, departmentID); err != nil {
		return nil, fmt.Errorf("list staff by department: %w", err)
	}
	return staff, nil
}

// FindByID loads a staff member by id.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	query := fmt.Sprintf("SELECT %s FROM staff WHERE id = $1", staffColumns)
	var member models.Staff
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}
