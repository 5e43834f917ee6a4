package dto

import "github.com/noah-isme/uni-timetable-api/internal/models"

// CheckConstraintsRequest carries a candidate event for validation.
type CheckConstraintsRequest struct {
	RoomID         string `json:"roomId" validate:"required"`
	StaffID        string `json:"staffId" validate:"required"`
	ModuleID       string `json:"moduleId"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeslotID     string `json:"timeslotId" validate:"required"`
	StudentCount   int    `json:"studentCount" validate:"min=0"`
	ExcludeEventID string `json:"excludeEventId"`
}

// CheckConstraintsResponse returns the full validation report.
type CheckConstraintsResponse struct {
	HardViolations []models.Violation `json:"hardViolations"`
	SoftWarnings   []models.Violation `json:"softWarnings"`
	Positives      []models.Violation `json:"positives,omitempty"`
	CanSchedule    bool               `json:"canSchedule"`
}
