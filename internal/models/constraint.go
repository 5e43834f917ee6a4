package models

// ConstraintKind distinguishes blocking rules from advisory ones.
type ConstraintKind string

const (
	ConstraintHard ConstraintKind = "HARD"
	ConstraintSoft ConstraintKind = "SOFT"
)

// Constraint identifiers for the fixed rule catalog.
const (
	ConstraintRoomConflict    = "ROOM_CONFLICT"
	ConstraintStaffConflict   = "STAFF_CONFLICT"
	ConstraintRoomCapacity    = "ROOM_CAPACITY"
	ConstraintInvalidTimeslot = "INVALID_TIMESLOT"
	ConstraintPreferredHours  = "STAFF_PREFERRED_HOURS"
	ConstraintLunchHour       = "STAFF_LUNCH_HOUR"
	ConstraintBackToBack      = "BACK_TO_BACK_SPACING"
)

// Constraint describes one rule of the catalog. Hard rules are structurally
// fixed in the evaluator; soft rules carry a weight and an enabled flag.
type Constraint struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description,omitempty"`
	Kind        ConstraintKind `db:"kind" json:"kind"`
	Category    string         `db:"category" json:"category"`
	Weight      int            `db:"weight" json:"weight"`
	Enabled     bool           `db:"enabled" json:"enabled"`
}

// Violation records a single rule outcome inside a validation report.
type Violation struct {
	ConstraintID string `json:"constraint_id"`
	Message      string `json:"message"`
}

// ValidationReport is the full outcome of validating one candidate event.
// Positives carry advisory signals that raise an assignment's score, such as
// an optimal back-to-back gap.
type ValidationReport struct {
	HardViolations []Violation `json:"hard_violations"`
	SoftWarnings   []Violation `json:"soft_warnings"`
	Positives      []Violation `json:"positives,omitempty"`
}

// CanSchedule reports whether the candidate may be placed.
func (r ValidationReport) CanSchedule() bool {
	return len(r.HardViolations) == 0
}
