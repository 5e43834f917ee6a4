package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

type eventScheduler interface {
	Schedule(ctx context.Context, req dto.EventRequest, attemptBudget int) (*dto.ScheduleOutcome, error)
}

type batchScheduler interface {
	ScheduleBatch(ctx context.Context, req dto.BatchScheduleRequest) (*dto.BatchScheduleResponse, error)
	EnqueueBatch(ctx context.Context, req dto.BatchScheduleRequest) (*dto.BatchJobResponse, error)
	Job(jobID string) (*dto.BatchJobResponse, error)
}

// SchedulerHandler exposes single-event and batch scheduling endpoints.
type SchedulerHandler struct {
	scheduler eventScheduler
	batch     batchScheduler
}

// NewSchedulerHandler constructs SchedulerHandler.
func NewSchedulerHandler(scheduler eventScheduler, batch batchScheduler) *SchedulerHandler {
	return &SchedulerHandler{scheduler: scheduler, batch: batch}
}

// ScheduleEvent godoc
// @Summary Schedule a single event
// @Description Places one event by direct placement or backtracking search. A request that cannot be placed returns success=false, not an error status.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.EventRequest true "Event request"
// @Success 200 {object} response.Envelope
// @Router /scheduler/events [post]
func (h *SchedulerHandler) ScheduleEvent(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	outcome, err := h.scheduler.Schedule(c.Request.Context(), req, 0)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if outcome.Success {
		status = http.StatusCreated
	}
	response.JSON(c, status, outcome, nil)
}

// ScheduleBatch godoc
// @Summary Schedule a batch of events synchronously
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.BatchScheduleRequest true "Batch request"
// @Success 200 {object} response.Envelope
// @Router /scheduler/batch [post]
func (h *SchedulerHandler) ScheduleBatch(c *gin.Context) {
	var req dto.BatchScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	resp, err := h.batch.ScheduleBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// EnqueueBatch godoc
// @Summary Enqueue a batch scheduling job
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.BatchScheduleRequest true "Batch request"
// @Success 202 {object} response.Envelope
// @Router /scheduler/batch/jobs [post]
func (h *SchedulerHandler) EnqueueBatch(c *gin.Context) {
	var req dto.BatchScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	job, err := h.batch.EnqueueBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// BatchJob godoc
// @Summary Get the state of a batch scheduling job
// @Tags Scheduler
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /scheduler/batch/jobs/{id} [get]
func (h *SchedulerHandler) BatchJob(c *gin.Context) {
	job, err := h.batch.Job(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
