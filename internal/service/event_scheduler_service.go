package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type schedulerRoomReader interface {
	ListWithMinCapacity(ctx context.Context, min int) ([]models.Room, error)
}

type schedulerStaffReader interface {
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Staff, error)
}

type schedulerModuleReader interface {
	FindByID(ctx context.Context, id string) (*models.Module, error)
}

type timeslotCatalog interface {
	All(ctx context.Context) ([]models.Timeslot, error)
	ByID(ctx context.Context, id string) (*models.Timeslot, error)
}

type eventWriter interface {
	Create(ctx context.Context, event *models.Event) error
}

type eventValidator interface {
	ValidateEvent(ctx context.Context, candidate Candidate) (models.ValidationReport, error)
}

type schedulerMetrics interface {
	ObserveSchedule(strategy string, success bool, duration time.Duration)
}

// Soft-warning penalties and bonuses applied when scoring a complete,
// hard-valid assignment.
const (
	scoreBase                = 100.0
	penaltyPreferredHours    = 20.0
	penaltyLunchHour         = 15.0
	penaltyBackToBack        = 10.0
	penaltyOther             = 5.0
	bonusPositiveSignal      = 10.0
	penaltyPerHourFromTarget = 5.0
)

// EventSchedulerConfig tunes the single-event search.
type EventSchedulerConfig struct {
	HorizonDays    int
	MaxAttempts    int
	SearchDeadline time.Duration
}

// EventSchedulerService finds a room, staff member and timeslot for one event
// request, either by direct placement of a requested window or by a pruned
// backtracking search over the candidate space.
type EventSchedulerService struct {
	rooms        schedulerRoomReader
	staff        schedulerStaffReader
	modules      schedulerModuleReader
	timeslots    timeslotCatalog
	events       eventWriter
	availability availabilityChecker
	constraints  eventValidator
	metrics      schedulerMetrics
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          EventSchedulerConfig

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewEventSchedulerService wires scheduler dependencies.
func NewEventSchedulerService(
	rooms schedulerRoomReader,
	staff schedulerStaffReader,
	modules schedulerModuleReader,
	timeslots timeslotCatalog,
	events eventWriter,
	availability availabilityChecker,
	constraints eventValidator,
	metrics schedulerMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg EventSchedulerConfig,
) *EventSchedulerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 30
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &EventSchedulerService{
		rooms:        rooms,
		staff:        staff,
		modules:      modules,
		timeslots:    timeslots,
		events:       events,
		availability: availability,
		constraints:  constraints,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SeedRand replaces the random source used by the fallback window probe.
func (s *EventSchedulerService) SeedRand(seed int64) {
	s.rngMu.Lock()
	s.rng = rand.New(rand.NewSource(seed))
	s.rngMu.Unlock()
}

// scheduleRequest is the boundary-resolved form of an EventRequest.
type scheduleRequest struct {
	dto.EventRequest

	duration       int
	weekdays       []time.Weekday
	strategy       string
	attempts       int
	preferredDate  time.Time
	preferredStart int // minutes since midnight, -1 when absent
}

// Schedule attempts to place one event. attemptBudget overrides the
// configured default when positive; the batch scheduler passes a larger
// budget on its retry pass. A "no feasible assignment" result is returned as
// a structured failure, never as an error.
func (s *EventSchedulerService) Schedule(ctx context.Context, req dto.EventRequest, attemptBudget int) (*dto.ScheduleOutcome, error) {
	started := time.Now()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event request")
	}

	sreq, err := s.resolve(req, attemptBudget)
	if err != nil {
		return nil, err
	}

	module, err := s.modules.FindByID(ctx, req.ModuleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.finish(sreq.strategy, started, failure("module not found")), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load module")
	}

	searchCtx := ctx
	cancel := func() {}
	if s.cfg.SearchDeadline > 0 {
		searchCtx, cancel = context.WithTimeout(ctx, s.cfg.SearchDeadline)
	}
	defer cancel()

	var outcome *dto.ScheduleOutcome
	switch sreq.strategy {
	case dto.StrategyDirect:
		outcome, err = s.scheduleDirect(searchCtx, ctx, sreq, module)
	default:
		outcome, err = s.scheduleSearch(searchCtx, ctx, sreq, module)
	}
	if err != nil {
		return nil, err
	}
	return s.finish(sreq.strategy, started, outcome), nil
}

func (s *EventSchedulerService) resolve(req dto.EventRequest, attemptBudget int) (scheduleRequest, error) {
	sreq := scheduleRequest{EventRequest: req, preferredStart: -1}

	sreq.duration = req.DurationMinutes
	if sreq.duration <= 0 {
		sreq.duration = 60
	}

	if len(req.AllowedWeekdays) > 0 {
		for _, iso := range req.AllowedWeekdays {
			sreq.weekdays = append(sreq.weekdays, time.Weekday(iso%7))
		}
	} else {
		sreq.weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	}

	if req.PreferredDate != "" {
		date, err := time.Parse("2006-01-02", req.PreferredDate)
		if err != nil {
			return sreq, appErrors.Clone(appErrors.ErrValidation, "preferredDate must be formatted as 2006-01-02")
		}
		sreq.preferredDate = date
	}
	if req.PreferredStart != "" {
		minutes, err := models.ClockToMinutes(req.PreferredStart)
		if err != nil {
			return sreq, appErrors.Clone(appErrors.ErrValidation, "preferredStart must be formatted as 15:04")
		}
		sreq.preferredStart = minutes
	}

	sreq.strategy = req.Strategy
	if sreq.strategy == "" {
		if !sreq.preferredDate.IsZero() && req.PreferredTimeslotID != "" {
			sreq.strategy = dto.StrategyDirect
		} else {
			sreq.strategy = dto.StrategySearch
		}
	}

	sreq.attempts = attemptBudget
	if sreq.attempts <= 0 {
		sreq.attempts = req.MaxAttempts
	}
	if sreq.attempts <= 0 {
		sreq.attempts = s.cfg.MaxAttempts
	}

	if len(req.StudentIDs) > 0 {
		sreq.StudentCount = len(req.StudentIDs)
	}

	return sreq, nil
}

// scheduleDirect places the requested window, probing fallback windows when
// none was named. commitCtx survives the search deadline so a found
// assignment can still be persisted.
func (s *EventSchedulerService) scheduleDirect(ctx, commitCtx context.Context, sreq scheduleRequest, module *models.Module) (*dto.ScheduleOutcome, error) {
	date := sreq.preferredDate
	var slot *models.Timeslot
	var err error

	if !date.IsZero() && sreq.PreferredTimeslotID != "" {
		slot, err = s.timeslots.ByID(ctx, sreq.PreferredTimeslotID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) || errors.Is(err, appErrors.ErrNotFound) {
				return failure("timeslot not found"), nil
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load timeslot")
		}
	} else {
		date, slot, err = s.probeFallbackWindow(ctx, sreq, module)
		if err != nil {
			return nil, err
		}
		if slot == nil {
			return failure("exhausted search"), nil
		}
	}

	rooms, err := s.availableRooms(ctx, sreq.StudentCount, date, slot.ID)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return failure("no rooms with sufficient capacity"), nil
	}

	staff, err := s.availableStaff(ctx, module.DepartmentID, date, slot.ID)
	if err != nil {
		return nil, err
	}
	if len(staff) == 0 {
		return failure("no staff available"), nil
	}

	room := pickRoom(rooms, sreq.PreferredRoomIDs)
	member := pickStaff(staff, sreq.PreferredStaffIDs)

	report, err := s.constraints.ValidateEvent(ctx, Candidate{
		RoomID:       room.ID,
		StaffID:      member.ID,
		ModuleID:     sreq.ModuleID,
		Date:         date,
		TimeslotID:   slot.ID,
		StudentCount: sreq.StudentCount,
	})
	if err != nil {
		return nil, err
	}
	if !report.CanSchedule() {
		return failure(report.HardViolations[0].Message), nil
	}

	score := scoreAssignment(report, *slot, sreq.preferredStart)
	return s.commit(commitCtx, sreq, module, room, member, date, slot, report, score)
}

// scheduleSearch explores Room, then Staff, then Window in that fixed order:
// capacity is a cheap room-only filter pruned first, and temporal conflicts,
// the most expensive check, are deferred to last. The full cross-product is
// explored subject to pruning because a later candidate may score higher.
func (s *EventSchedulerService) scheduleSearch(ctx, commitCtx context.Context, sreq scheduleRequest, module *models.Module) (*dto.ScheduleOutcome, error) {
	roomDomain, err := s.rooms.ListWithMinCapacity(ctx, sreq.StudentCount)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list candidate rooms")
	}
	if len(roomDomain) == 0 {
		return failure("no rooms with sufficient capacity"), nil
	}

	staffDomain, err := s.staff.ListByDepartment(ctx, module.DepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list candidate staff")
	}
	if len(staffDomain) == 0 {
		return failure("no staff available"), nil
	}

	slotWindows, err := s.windowDomain(ctx, sreq)
	if err != nil {
		return nil, err
	}
	if len(slotWindows) == 0 {
		return failure("no timeslots match the requested duration"), nil
	}

	type assignment struct {
		room   models.Room
		member models.Staff
		date   time.Time
		slot   models.Timeslot
		report models.ValidationReport
		score  float64
	}
	best := assignment{score: math.Inf(-1)}
	found := false
	validSeen := 0
	expired := false

search:
	for _, room := range roomDomain {
		if room.Capacity < sreq.StudentCount {
			continue
		}
		for _, member := range staffDomain {
			for _, sw := range slotWindows {
				if ctx.Err() != nil {
					expired = true
					break search
				}

				roomFree, err := s.availability.RoomIsFree(ctx, room.ID, sw.date, sw.slot.ID, "")
				if err != nil {
					return nil, err
				}
				if !roomFree {
					continue
				}
				staffFree, err := s.availability.StaffIsFree(ctx, member.ID, sw.date, sw.slot.ID, "")
				if err != nil {
					return nil, err
				}
				if !staffFree {
					continue
				}

				report, err := s.constraints.ValidateEvent(ctx, Candidate{
					RoomID:       room.ID,
					StaffID:      member.ID,
					ModuleID:     sreq.ModuleID,
					Date:         sw.date,
					TimeslotID:   sw.slot.ID,
					StudentCount: sreq.StudentCount,
				})
				if err != nil {
					return nil, err
				}
				if !report.CanSchedule() {
					continue
				}

				score := scoreAssignment(report, sw.slot, sreq.preferredStart)
				validSeen++
				if score > best.score {
					best = assignment{room: room, member: member, date: sw.date, slot: sw.slot, report: report, score: score}
					found = true
				}
				if sreq.attempts > 0 && validSeen >= sreq.attempts {
					break search
				}
			}
		}
	}

	if !found {
		if expired {
			return failure("search deadline exceeded before a feasible assignment was found"), nil
		}
		return failure("exhausted search"), nil
	}

	slot := best.slot
	return s.commit(commitCtx, sreq, module, best.room, best.member, best.date, &slot, best.report, best.score)
}

type slotWindow struct {
	date time.Time
	slot models.Timeslot
}

// windowDomain enumerates candidate windows over the horizon and resolves
// each to the catalog timeslot with a matching start and duration. Windows
// without a catalog counterpart cannot be placed on the grid and are skipped.
func (s *EventSchedulerService) windowDomain(ctx context.Context, sreq scheduleRequest) ([]slotWindow, error) {
	catalog, err := s.timeslots.All(ctx)
	if err != nil {
		return nil, err
	}
	byStart := make(map[int]models.Timeslot, len(catalog))
	for _, slot := range catalog {
		start, err := slot.StartMinutes()
		if err != nil {
			continue
		}
		if slot.DurationMinutes == sreq.duration {
			byStart[start] = slot
		}
	}
	if len(byStart) == 0 {
		return nil, nil
	}

	from := midnight(time.Now().UTC()).AddDate(0, 0, 1)
	if !sreq.preferredDate.IsZero() && sreq.preferredDate.After(from) {
		from = sreq.preferredDate
	}
	to := from.AddDate(0, 0, s.cfg.HorizonDays-1)

	var result []slotWindow
	for _, window := range GenerateWindows(from, to, sreq.duration, sreq.weekdays) {
		startMin := window.Start.Hour()*60 + window.Start.Minute()
		slot, ok := byStart[startMin]
		if !ok {
			continue
		}
		result = append(result, slotWindow{date: window.Date(), slot: slot})
	}
	return result, nil
}

// probeFallbackWindow tries the caller's preferred start first, then up to
// the attempt budget of pseudo-random windows biased toward core teaching
// hours and standard slot boundaries, stopping at the first window with both
// a free room and free staff.
func (s *EventSchedulerService) probeFallbackWindow(ctx context.Context, sreq scheduleRequest, module *models.Module) (time.Time, *models.Timeslot, error) {
	catalog, err := s.timeslots.All(ctx)
	if err != nil {
		return time.Time{}, nil, err
	}
	byStart := make(map[int]models.Timeslot, len(catalog))
	for _, slot := range catalog {
		start, err := slot.StartMinutes()
		if err != nil {
			continue
		}
		if slot.DurationMinutes == sreq.duration {
			byStart[start] = slot
		}
	}

	if !sreq.preferredDate.IsZero() && sreq.preferredStart >= 0 {
		if slot, ok := byStart[sreq.preferredStart]; ok {
			ok, err := s.windowHasCapacity(ctx, sreq, module, sreq.preferredDate, slot.ID)
			if err != nil {
				return time.Time{}, nil, err
			}
			if ok {
				return sreq.preferredDate, &slot, nil
			}
		}
	}

	for attempt := 0; attempt < sreq.attempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		date, startMin := s.randomWindow()
		slot, ok := byStart[startMin]
		if !ok {
			continue
		}
		ok, err := s.windowHasCapacity(ctx, sreq, module, date, slot.ID)
		if err != nil {
			return time.Time{}, nil, err
		}
		if ok {
			return date, &slot, nil
		}
	}
	return time.Time{}, nil, nil
}

// randomWindow picks a weekday uniformly from Monday-Friday and a start time
// biased toward core hours: 70% in 10:00-15:00, otherwise split between an
// early 09:00 and a late 15:00-16:00 start, with minutes landing on :00/:30
// 70% of the time and :15/:45 otherwise.
func (s *EventSchedulerService) randomWindow() (time.Time, int) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	weekday := time.Monday + time.Weekday(s.rng.Intn(5))

	var hour int
	if s.rng.Float64() < 0.7 {
		hour = 10 + s.rng.Intn(5)
	} else if s.rng.Intn(2) == 0 {
		hour = 9
	} else {
		hour = 15 + s.rng.Intn(2)
	}

	var minute int
	if s.rng.Float64() < 0.7 {
		minute = []int{0, 30}[s.rng.Intn(2)]
	} else {
		minute = []int{15, 45}[s.rng.Intn(2)]
	}

	date := midnight(time.Now().UTC()).AddDate(0, 0, 1)
	for date.Weekday() != weekday {
		date = date.AddDate(0, 0, 1)
	}
	return date, hour*60 + minute
}

func (s *EventSchedulerService) windowHasCapacity(ctx context.Context, sreq scheduleRequest, module *models.Module, date time.Time, timeslotID string) (bool, error) {
	rooms, err := s.availableRooms(ctx, sreq.StudentCount, date, timeslotID)
	if err != nil {
		return false, err
	}
	if len(rooms) == 0 {
		return false, nil
	}
	staff, err := s.availableStaff(ctx, module.DepartmentID, date, timeslotID)
	if err != nil {
		return false, err
	}
	return len(staff) > 0, nil
}

func (s *EventSchedulerService) availableRooms(ctx context.Context, minCapacity int, date time.Time, timeslotID string) ([]models.Room, error) {
	candidates, err := s.rooms.ListWithMinCapacity(ctx, minCapacity)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list candidate rooms")
	}
	var free []models.Room
	for _, room := range candidates {
		ok, err := s.availability.RoomIsFree(ctx, room.ID, date, timeslotID, "")
		if err != nil {
			return nil, err
		}
		if ok {
			free = append(free, room)
		}
	}
	return free, nil
}

func (s *EventSchedulerService) availableStaff(ctx context.Context, departmentID string, date time.Time, timeslotID string) ([]models.Staff, error) {
	candidates, err := s.staff.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list candidate staff")
	}
	var free []models.Staff
	for _, member := range candidates {
		ok, err := s.availability.StaffIsFree(ctx, member.ID, date, timeslotID, "")
		if err != nil {
			return nil, err
		}
		if ok {
			free = append(free, member)
		}
	}
	return free, nil
}

func (s *EventSchedulerService) commit(ctx context.Context, sreq scheduleRequest, module *models.Module, room models.Room, member models.Staff, date time.Time, slot *models.Timeslot, report models.ValidationReport, score float64) (*dto.ScheduleOutcome, error) {
	tag := sreq.Tag
	if tag == "" {
		tag = models.EventTagClass
	}
	event := &models.Event{
		Title:        sreq.Title,
		Description:  sreq.Description,
		Date:         date,
		TimeslotID:   slot.ID,
		ModuleID:     module.ID,
		CourseID:     module.CourseID,
		RoomID:       room.ID,
		StaffID:      member.ID,
		StudentCount: sreq.StudentCount,
		Tag:          tag,
		StudentIDs:   sreq.StudentIDs,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to persist scheduled event")
	}

	return &dto.ScheduleOutcome{
		Success:  true,
		Event:    event,
		Message:  fmt.Sprintf("event scheduled in %s at %s on %s", room.Name, slot.StartTime, date.Format("2006-01-02")),
		Warnings: report.SoftWarnings,
		Score:    score,
	}, nil
}

func (s *EventSchedulerService) finish(strategy string, started time.Time, outcome *dto.ScheduleOutcome) *dto.ScheduleOutcome {
	if s.metrics != nil {
		s.metrics.ObserveSchedule(strategy, outcome.Success, time.Since(started))
	}
	return outcome
}

// scoreAssignment rates a complete, hard-valid assignment. Higher is better;
// ties keep the earlier candidate because callers require strict improvement.
func scoreAssignment(report models.ValidationReport, slot models.Timeslot, preferredStart int) float64 {
	score := scoreBase
	for _, warning := range report.SoftWarnings {
		switch warning.ConstraintID {
		case models.ConstraintPreferredHours:
			score -= penaltyPreferredHours
		case models.ConstraintLunchHour:
			score -= penaltyLunchHour
		case models.ConstraintBackToBack:
			score -= penaltyBackToBack
		default:
			score -= penaltyOther
		}
	}
	score += bonusPositiveSignal * float64(len(report.Positives))

	if preferredStart >= 0 {
		if start, err := slot.StartMinutes(); err == nil {
			hours := math.Abs(float64(start-preferredStart)) / 60.0
			score -= penaltyPerHourFromTarget * hours
		}
	}
	return score
}

func pickRoom(rooms []models.Room, preferred []string) models.Room {
	for _, id := range preferred {
		for _, room := range rooms {
			if room.ID == id {
				return room
			}
		}
	}
	return rooms[0]
}

func pickStaff(staff []models.Staff, preferred []string) models.Staff {
	for _, id := range preferred {
		for _, member := range staff {
			if member.ID == id {
				return member
			}
		}
	}
	return staff[0]
}

func failure(message string) *dto.ScheduleOutcome {
	return &dto.ScheduleOutcome{Success: false, Message: message}
}
