package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

type constraintChecker interface {
	ValidateEvent(ctx context.Context, candidate service.Candidate) (models.ValidationReport, error)
}

// ConstraintHandler exposes candidate validation endpoints.
type ConstraintHandler struct {
	constraints constraintChecker
	validator   *validator.Validate
}

// NewConstraintHandler constructs ConstraintHandler.
func NewConstraintHandler(constraints constraintChecker, validate *validator.Validate) *ConstraintHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ConstraintHandler{constraints: constraints, validator: validate}
}

// Check godoc
// @Summary Validate a candidate event placement
// @Tags Constraints
// @Accept json
// @Produce json
// @Param payload body dto.CheckConstraintsRequest true "Candidate placement"
// @Success 200 {object} response.Envelope
// @Router /constraints/check [post]
func (h *ConstraintHandler) Check(c *gin.Context) {
	var req dto.CheckConstraintsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as 2006-01-02"))
		return
	}

	report, err := h.constraints.ValidateEvent(c.Request.Context(), service.Candidate{
		RoomID:         req.RoomID,
		StaffID:        req.StaffID,
		ModuleID:       req.ModuleID,
		Date:           date,
		TimeslotID:     req.TimeslotID,
		StudentCount:   req.StudentCount,
		ExcludeEventID: req.ExcludeEventID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.CheckConstraintsResponse{
		HardViolations: report.HardViolations,
		SoftWarnings:   report.SoftWarnings,
		Positives:      report.Positives,
		CanSchedule:    report.CanSchedule(),
	}, nil)
}
