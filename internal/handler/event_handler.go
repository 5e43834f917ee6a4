package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

type eventManager interface {
	List(ctx context.Context, query dto.EventQuery) ([]models.Event, int, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	Update(ctx context.Context, id string, req dto.UpdateEventRequest) (*models.Event, error)
	Delete(ctx context.Context, id string) error
}

type timeslotLister interface {
	All(ctx context.Context) ([]models.Timeslot, error)
}

// EventHandler exposes timetable event endpoints.
type EventHandler struct {
	events    eventManager
	timeslots timeslotLister
}

// NewEventHandler constructs EventHandler.
func NewEventHandler(events eventManager, timeslots timeslotLister) *EventHandler {
	return &EventHandler{events: events, timeslots: timeslots}
}

// List godoc
// @Summary List timetable events
// @Tags Events
// @Produce json
// @Param moduleId query string false "Filter by module"
// @Param roomId query string false "Filter by room"
// @Param staffId query string false "Filter by staff"
// @Param timeslotId query string false "Filter by timeslot"
// @Param tag query string false "Filter by tag"
// @Param from query string false "Start date (2006-01-02)"
// @Param to query string false "End date (2006-01-02)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	var query dto.EventQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}

	events, total, err := h.events.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, &models.Pagination{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get one event with its roster
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Update godoc
// @Summary Update or reschedule an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.UpdateEventRequest true "Patch payload"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	event, err := h.events.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete an event
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Timeslots godoc
// @Summary List the timeslot catalog
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timeslots [get]
func (h *EventHandler) Timeslots(c *gin.Context) {
	slots, err := h.timeslots.All(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}
