package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/jobs"
)

type batchEventScheduler interface {
	Schedule(ctx context.Context, req dto.EventRequest, attemptBudget int) (*dto.ScheduleOutcome, error)
}

// BatchSchedulerConfig tunes batch passes and async job retention.
type BatchSchedulerConfig struct {
	MaxAttempts   int
	RetryAttempts int
	JobTTL        time.Duration
	Workers       int
}

// BatchSchedulerService places many events in priority order: one pass with
// the standard attempt budget, then a retry pass with a larger budget for the
// events the first pass could not place. Events are committed sequentially so
// each placement constrains the next.
type BatchSchedulerService struct {
	scheduler batchEventScheduler
	validator *validator.Validate
	logger    *zap.Logger
	cfg       BatchSchedulerConfig

	store *batchJobStore
	queue *jobs.Queue
}

// NewBatchSchedulerService wires the batch scheduler and its background queue.
func NewBatchSchedulerService(scheduler batchEventScheduler, validate *validator.Validate, logger *zap.Logger, cfg BatchSchedulerConfig) *BatchSchedulerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 10
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 30 * time.Minute
	}

	s := &BatchSchedulerService{
		scheduler: scheduler,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		store:     newBatchJobStore(cfg.JobTTL),
	}
	s.queue = jobs.NewQueue("batch-schedule", s.processJob, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches queue workers and the job store janitor.
func (s *BatchSchedulerService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	s.store.startJanitor(ctx)
}

// Stop drains queue workers.
func (s *BatchSchedulerService) Stop() {
	s.queue.Stop()
}

// ScheduleBatch runs the two-pass batch synchronously and returns per-event
// outcomes in priority order.
func (s *BatchSchedulerService) ScheduleBatch(ctx context.Context, req dto.BatchScheduleRequest) (*dto.BatchScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch request")
	}

	ordered := orderByPriority(applyPreferences(req.Events, req.Preferences))

	results := make([]dto.BatchResult, len(ordered))
	for i, event := range ordered {
		outcome, err := s.scheduleOne(ctx, event, s.cfg.MaxAttempts)
		if err != nil {
			return nil, err
		}
		results[i] = dto.BatchResult{
			Request: event,
			Success: outcome.Success,
			Event:   outcome.Event,
			Message: outcome.Message,
		}
	}

	for i := range results {
		if results[i].Success {
			continue
		}
		outcome, err := s.scheduleOne(ctx, results[i].Request, s.cfg.RetryAttempts)
		if err != nil {
			return nil, err
		}
		results[i].Retried = true
		if outcome.Success {
			results[i].Success = true
			results[i].Event = outcome.Event
			results[i].Message = outcome.Message
		} else {
			results[i].Message = outcome.Message
		}
	}

	resp := &dto.BatchScheduleResponse{Results: results}
	for _, r := range results {
		if r.Success {
			resp.TotalSuccess++
		} else {
			resp.TotalFailure++
		}
	}
	s.logger.Sugar().Infow("batch schedule finished",
		"events", len(results),
		"succeeded", resp.TotalSuccess,
		"failed", resp.TotalFailure,
	)
	return resp, nil
}

// scheduleOne turns a per-event validation error into a failed result so one
// malformed entry cannot abort the whole batch.
func (s *BatchSchedulerService) scheduleOne(ctx context.Context, event dto.EventRequest, budget int) (*dto.ScheduleOutcome, error) {
	outcome, err := s.scheduler.Schedule(ctx, event, budget)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrValidation.Code {
			return &dto.ScheduleOutcome{Success: false, Message: appErr.Message}, nil
		}
		return nil, err
	}
	return outcome, nil
}

// EnqueueBatch records a job and hands the batch to the background queue.
func (s *BatchSchedulerService) EnqueueBatch(ctx context.Context, req dto.BatchScheduleRequest) (*dto.BatchJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch request")
	}

	job := &dto.BatchJobResponse{
		JobID:      uuid.NewString(),
		Status:     dto.BatchJobQueued,
		EnqueuedAt: time.Now().UTC(),
	}
	s.store.put(job)

	err := s.queue.Enqueue(jobs.Job{ID: job.JobID, Type: "batch-schedule", Payload: req})
	if err != nil {
		s.store.update(job.JobID, func(j *dto.BatchJobResponse) {
			j.Status = dto.BatchJobFailed
			j.Error = "queue unavailable"
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue batch job")
	}
	return job, nil
}

// Job returns the current state of an asynchronous batch job.
func (s *BatchSchedulerService) Job(jobID string) (*dto.BatchJobResponse, error) {
	job, ok := s.store.get(jobID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch job not found")
	}
	return job, nil
}

func (s *BatchSchedulerService) processJob(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.BatchScheduleRequest)
	if !ok {
		s.store.update(job.ID, func(j *dto.BatchJobResponse) {
			j.Status = dto.BatchJobFailed
			j.Error = "malformed job payload"
		})
		return fmt.Errorf("batch job %s: unexpected payload %T", job.ID, job.Payload)
	}

	s.store.update(job.ID, func(j *dto.BatchJobResponse) {
		j.Status = dto.BatchJobRunning
	})

	resp, err := s.ScheduleBatch(ctx, req)
	if err != nil {
		s.store.update(job.ID, func(j *dto.BatchJobResponse) {
			j.Status = dto.BatchJobFailed
			j.Error = err.Error()
		})
		return err
	}

	s.store.update(job.ID, func(j *dto.BatchJobResponse) {
		j.Status = dto.BatchJobCompleted
		j.Result = resp
	})
	return nil
}

// applyPreferences copies request-wide defaults onto entries that did not set
// their own.
func applyPreferences(events []dto.EventRequest, prefs dto.BatchPreferences) []dto.EventRequest {
	out := make([]dto.EventRequest, len(events))
	copy(out, events)
	for i := range out {
		if out[i].DurationMinutes == 0 && prefs.DurationMinutes > 0 {
			out[i].DurationMinutes = prefs.DurationMinutes
		}
		if len(out[i].AllowedWeekdays) == 0 && len(prefs.AllowedWeekdays) > 0 {
			out[i].AllowedWeekdays = prefs.AllowedWeekdays
		}
		if out[i].Strategy == "" && prefs.Strategy != "" {
			out[i].Strategy = prefs.Strategy
		}
		if len(out[i].PreferredRoomIDs) == 0 && len(prefs.PreferredRooms) > 0 {
			out[i].PreferredRoomIDs = prefs.PreferredRooms
		}
	}
	return out
}

// batchPriority ranks an entry for placement order. Larger cohorts are
// placed first because they have the fewest viable rooms; naming preferred
// rooms adds a small tiebreak since those requests are more constrained.
func batchPriority(event dto.EventRequest) int {
	p := 2 * event.StudentCount
	if len(event.PreferredRoomIDs) > 0 {
		p++
	}
	return p
}

// orderByPriority sorts descending and stably, so equal-priority entries keep
// their request order.
func orderByPriority(events []dto.EventRequest) []dto.EventRequest {
	out := make([]dto.EventRequest, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return batchPriority(out[i]) > batchPriority(out[j])
	})
	return out
}
