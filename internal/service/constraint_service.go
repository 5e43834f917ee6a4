package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

// Preferred teaching window boundaries in minutes since midnight.
const (
	idealDayStart = 9*60 + 30  // 09:30
	idealDayEnd   = 16*60 + 30 // 16:30
	lunchStart    = 12 * 60    // 12:00
	lunchEnd      = 13 * 60    // 13:00

	optimalGapMaxMinutes     = 30
	inefficientGapMaxMinutes = 120
)

// Candidate is a candidate event under validation. ExcludeEventID supports
// re-validating an event that is being edited in place.
type Candidate struct {
	RoomID         string
	StaffID        string
	ModuleID       string
	Date           time.Time
	TimeslotID     string
	StudentCount   int
	ExcludeEventID string
}

type availabilityChecker interface {
	RoomIsFree(ctx context.Context, roomID string, date time.Time, timeslotID, excludeEventID string) (bool, error)
	StaffIsFree(ctx context.Context, staffID string, date time.Time, timeslotID, excludeEventID string) (bool, error)
}

type constraintRoomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type constraintTimeslotReader interface {
	ByID(ctx context.Context, id string) (*models.Timeslot, error)
}

type staffDayReader interface {
	ListByStaffAndDate(ctx context.Context, staffID string, date time.Time) ([]models.Event, error)
}

// ConstraintService evaluates the fixed rule catalog against one candidate
// event and assembles the full validation report. It is the single source of
// truth for "can this event be placed here."
type ConstraintService struct {
	availability availabilityChecker
	rooms        constraintRoomReader
	timeslots    constraintTimeslotReader
	staffDays    staffDayReader
	logger       *zap.Logger
}

// NewConstraintService wires validator dependencies.
func NewConstraintService(
	availability availabilityChecker,
	rooms constraintRoomReader,
	timeslots constraintTimeslotReader,
	staffDays staffDayReader,
	logger *zap.Logger,
) *ConstraintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConstraintService{
		availability: availability,
		rooms:        rooms,
		timeslots:    timeslots,
		staffDays:    staffDays,
		logger:       logger,
	}
}

// ValidateEvent runs every hard check, then every soft check, and returns the
// complete report. Hard checks all run even when an earlier one has failed:
// callers need the full violation list, not just the first. A missing
// timeslot short-circuits to a single hard violation because no other rule
// can be evaluated without slot boundaries.
func (s *ConstraintService) ValidateEvent(ctx context.Context, candidate Candidate) (models.ValidationReport, error) {
	var report models.ValidationReport

	if candidate.RoomID == "" || candidate.StaffID == "" || candidate.TimeslotID == "" || candidate.Date.IsZero() {
		return report, appErrors.Clone(appErrors.ErrValidation, "roomId, staffId, date and timeslotId are required")
	}

	slot, err := s.timeslots.ByID(ctx, candidate.TimeslotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, appErrors.ErrNotFound) {
			report.HardViolations = append(report.HardViolations, models.Violation{
				ConstraintID: models.ConstraintInvalidTimeslot,
				Message:      "invalid timeslot",
			})
			return report, nil
		}
		return report, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load timeslot")
	}

	if err := s.checkRoomConflict(ctx, candidate, &report); err != nil {
		return report, err
	}
	if err := s.checkStaffConflict(ctx, candidate, &report); err != nil {
		return report, err
	}
	if err := s.checkRoomCapacity(ctx, candidate, &report); err != nil {
		return report, err
	}

	s.checkPreferredHours(*slot, &report)
	if err := s.checkBackToBack(ctx, candidate, *slot, &report); err != nil {
		return report, err
	}

	return report, nil
}

func (s *ConstraintService) checkRoomConflict(ctx context.Context, candidate Candidate, report *models.ValidationReport) error {
	free, err := s.availability.RoomIsFree(ctx, candidate.RoomID, candidate.Date, candidate.TimeslotID, candidate.ExcludeEventID)
	if err != nil {
		return err
	}
	if !free {
		report.HardViolations = append(report.HardViolations, models.Violation{
			ConstraintID: models.ConstraintRoomConflict,
			Message:      "room is already booked for this date and timeslot",
		})
	}
	return nil
}

func (s *ConstraintService) checkStaffConflict(ctx context.Context, candidate Candidate, report *models.ValidationReport) error {
	free, err := s.availability.StaffIsFree(ctx, candidate.StaffID, candidate.Date, candidate.TimeslotID, candidate.ExcludeEventID)
	if err != nil {
		return err
	}
	if !free {
		report.HardViolations = append(report.HardViolations, models.Violation{
			ConstraintID: models.ConstraintStaffConflict,
			Message:      "staff member already has an event at this date and timeslot",
		})
	}
	return nil
}

func (s *ConstraintService) checkRoomCapacity(ctx context.Context, candidate Candidate, report *models.ValidationReport) error {
	room, err := s.rooms.FindByID(ctx, candidate.RoomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			report.HardViolations = append(report.HardViolations, models.Violation{
				ConstraintID: models.ConstraintRoomCapacity,
				Message:      "room not found",
			})
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load room")
	}
	if room.Capacity < candidate.StudentCount {
		report.HardViolations = append(report.HardViolations, models.Violation{
			ConstraintID: models.ConstraintRoomCapacity,
			Message:      fmt.Sprintf("room capacity %d is below required %d", room.Capacity, candidate.StudentCount),
		})
	}
	return nil
}

// checkPreferredHours flags starts outside the ideal teaching window and
// starts inside the lunch window. The lunch message takes precedence when
// both would apply.
func (s *ConstraintService) checkPreferredHours(slot models.Timeslot, report *models.ValidationReport) {
	start, err := slot.StartMinutes()
	if err != nil {
		s.logger.Warn("timeslot with unparsable start time", zap.String("timeslot_id", slot.ID), zap.Error(err))
		return
	}

	inLunch := start >= lunchStart && start < lunchEnd
	outsideIdeal := start < idealDayStart || start > idealDayEnd

	switch {
	case inLunch:
		report.SoftWarnings = append(report.SoftWarnings, models.Violation{
			ConstraintID: models.ConstraintLunchHour,
			Message:      "event starts during the lunch hour (12:00-13:00)",
		})
	case outsideIdeal:
		report.SoftWarnings = append(report.SoftWarnings, models.Violation{
			ConstraintID: models.ConstraintPreferredHours,
			Message:      "event starts outside preferred teaching hours (09:30-16:30)",
		})
	}
}

// checkBackToBack inspects every other event the staff member has that day.
// A gap in (0,30] minutes on either side is an optimal back-to-back booking;
// a gap in (30,120) is an inefficiency. One inefficiency anywhere on the day
// raises the warning and suppresses the positive signal.
func (s *ConstraintService) checkBackToBack(ctx context.Context, candidate Candidate, slot models.Timeslot, report *models.ValidationReport) error {
	sameDay, err := s.staffDays.ListByStaffAndDate(ctx, candidate.StaffID, candidate.Date)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load staff events for gap analysis")
	}

	candStart, err := slot.StartMinutes()
	if err != nil {
		return nil
	}
	candEnd, err := slot.EndMinutes()
	if err != nil {
		return nil
	}

	inefficient := false
	optimal := 0
	slotCache := map[string]*models.Timeslot{candidate.TimeslotID: &slot}

	for _, other := range sameDay {
		if candidate.ExcludeEventID != "" && other.ID == candidate.ExcludeEventID {
			continue
		}
		otherSlot, ok := slotCache[other.TimeslotID]
		if !ok {
			otherSlot, err = s.timeslots.ByID(ctx, other.TimeslotID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) || errors.Is(err, appErrors.ErrNotFound) {
					continue
				}
				return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load timeslot for gap analysis")
			}
			slotCache[other.TimeslotID] = otherSlot
		}
		otherStart, startErr := otherSlot.StartMinutes()
		otherEnd, endErr := otherSlot.EndMinutes()
		if startErr != nil || endErr != nil {
			continue
		}

		for _, gap := range []int{otherStart - candEnd, candStart - otherEnd} {
			if gap > 0 && gap <= optimalGapMaxMinutes {
				optimal++
			} else if gap > optimalGapMaxMinutes && gap < inefficientGapMaxMinutes {
				inefficient = true
			}
		}
	}

	if inefficient {
		report.SoftWarnings = append(report.SoftWarnings, models.Violation{
			ConstraintID: models.ConstraintBackToBack,
			Message:      "creates inefficient gaps for staff",
		})
		return nil
	}
	for i := 0; i < optimal; i++ {
		report.Positives = append(report.Positives, models.Violation{
			ConstraintID: models.ConstraintBackToBack,
			Message:      "optimal back-to-back booking",
		})
	}
	return nil
}
