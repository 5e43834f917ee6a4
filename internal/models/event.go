package models

import "time"

// EventTag categorises a timetabled event.
type EventTag string

const (
	EventTagClass   EventTag = "CLASS"
	EventTagExam    EventTag = "EXAM"
	EventTagMeeting EventTag = "MEETING"
)

// Event is a placed timetable entry: a module taught by a staff member in a
// room at a concrete date and timeslot.
type Event struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description,omitempty"`
	Date         time.Time `db:"date" json:"date"`
	TimeslotID   string    `db:"timeslot_id" json:"timeslot_id"`
	ModuleID     string    `db:"module_id" json:"module_id"`
	CourseID     string    `db:"course_id" json:"course_id,omitempty"`
	RoomID       string    `db:"room_id" json:"room_id"`
	StaffID      string    `db:"staff_id" json:"staff_id"`
	StudentCount int       `db:"student_count" json:"student_count"`
	Tag          EventTag  `db:"tag" json:"tag"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	// StudentIDs is the roster; loaded on demand, not a column.
	StudentIDs []string `db:"-" json:"student_ids,omitempty"`
}

// EventFilter describes query params for listing events.
type EventFilter struct {
	ModuleID   string
	RoomID     string
	StaffID    string
	TimeslotID string
	Tag        string
	DateFrom   time.Time
	DateTo     time.Time
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// EventPatch carries the mutable fields of a reschedule/update.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *time.Time
	TimeslotID  *string
	RoomID      *string
	StaffID     *string
	Tag         *EventTag
	StudentIDs  []string
}
