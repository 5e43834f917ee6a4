package dto

import (
	"time"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// Scheduling strategies selectable by caller intent.
const (
	StrategyDirect = "direct"
	StrategySearch = "search"
)

// EventRequest captures everything the scheduler needs to place one event.
// Optional fields have documented defaults and are resolved once at the
// boundary rather than re-derived throughout the engine.
type EventRequest struct {
	Title        string          `json:"title" validate:"required"`
	Description  string          `json:"description"`
	ModuleID     string          `json:"moduleId" validate:"required"`
	StudentCount int             `json:"studentCount" validate:"min=0"`
	StudentIDs   []string        `json:"studentIds"`
	Tag          models.EventTag `json:"tag"`

	// DurationMinutes defaults to 60.
	DurationMinutes int `json:"durationMinutes" validate:"omitempty,min=15,max=480"`

	PreferredRoomIDs  []string `json:"preferredRoomIds"`
	PreferredStaffIDs []string `json:"preferredStaffIds"`

	// PreferredDate/PreferredTimeslotID name an exact window for direct
	// placement. PreferredStart ("15:04") only biases scoring and the
	// fallback search.
	PreferredDate       string `json:"preferredDate" validate:"omitempty,datetime=2006-01-02"`
	PreferredTimeslotID string `json:"preferredTimeslotId"`
	PreferredStart      string `json:"preferredStart" validate:"omitempty,datetime=15:04"`

	// AllowedWeekdays uses ISO numbering (1=Monday..7=Sunday); defaults to 1-5.
	AllowedWeekdays []int `json:"allowedWeekdays" validate:"omitempty,dive,min=1,max=7"`

	// Strategy defaults to "search" when no exact window is given, "direct"
	// otherwise.
	Strategy string `json:"strategy" validate:"omitempty,oneof=direct search"`

	// MaxAttempts bounds the fallback window probing; 0 uses the configured
	// default.
	MaxAttempts int `json:"maxAttempts" validate:"omitempty,min=1,max=50"`
}

// ScheduleOutcome reports one scheduling attempt. A "no feasible assignment"
// result is a normal outcome, not an error.
type ScheduleOutcome struct {
	Success  bool               `json:"success"`
	Event    *models.Event      `json:"event,omitempty"`
	Message  string             `json:"message,omitempty"`
	Warnings []models.Violation `json:"warnings,omitempty"`
	Score    float64            `json:"score,omitempty"`
}

// BatchPreferences apply request-wide defaults to every batch entry.
type BatchPreferences struct {
	DurationMinutes int      `json:"durationMinutes" validate:"omitempty,min=15,max=480"`
	AllowedWeekdays []int    `json:"allowedWeekdays" validate:"omitempty,dive,min=1,max=7"`
	Strategy        string   `json:"strategy" validate:"omitempty,oneof=direct search"`
	PreferredRooms  []string `json:"preferredRooms"`
}

// BatchScheduleRequest schedules many events in priority order.
type BatchScheduleRequest struct {
	Events      []EventRequest   `json:"events" validate:"required,min=1,dive"`
	Preferences BatchPreferences `json:"preferences"`
}

// BatchResult pairs one request with its outcome.
type BatchResult struct {
	Request EventRequest  `json:"request"`
	Success bool          `json:"success"`
	Event   *models.Event `json:"event,omitempty"`
	Message string        `json:"message,omitempty"`
	Retried bool          `json:"retried"`
}

// BatchScheduleResponse aggregates per-event outcomes and totals.
type BatchScheduleResponse struct {
	TotalSuccess int           `json:"totalSuccess"`
	TotalFailure int           `json:"totalFailure"`
	Results      []BatchResult `json:"results"`
}

// Batch job lifecycle states.
const (
	BatchJobQueued    = "QUEUED"
	BatchJobRunning   = "RUNNING"
	BatchJobCompleted = "COMPLETED"
	BatchJobFailed    = "FAILED"
)

// BatchJobResponse describes an asynchronous batch scheduling job.
type BatchJobResponse struct {
	JobID      string                 `json:"jobId"`
	Status     string                 `json:"status"`
	EnqueuedAt time.Time              `json:"enqueuedAt"`
	Result     *BatchScheduleResponse `json:"result,omitempty"`
	Error      string                 `json:"error,omitempty"`
}
