package dto

// UpdateEventRequest patches a placed event. Nil fields are left untouched;
// room/staff/timeslot changes are re-validated with the event's own id
// excluded from conflict checks.
type UpdateEventRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Date        *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	TimeslotID  *string  `json:"timeslotId"`
	RoomID      *string  `json:"roomId"`
	StaffID     *string  `json:"staffId"`
	Tag         *string  `json:"tag"`
	StudentIDs  []string `json:"studentIds"`
}

// EventQuery filters event listings.
type EventQuery struct {
	ModuleID   string `form:"moduleId"`
	RoomID     string `form:"roomId"`
	StaffID    string `form:"staffId"`
	TimeslotID string `form:"timeslotId"`
	Tag        string `form:"tag"`
	DateFrom   string `form:"from"`
	DateTo     string `form:"to"`
	Page       int    `form:"page"`
	PageSize   int    `form:"limit"`
	SortBy     string `form:"sort"`
	SortOrder  string `form:"order"`
}
