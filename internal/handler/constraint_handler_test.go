package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/service"
)

type fakeConstraintSrv struct {
	report models.ValidationReport
	last   service.Candidate
}

func (f *fakeConstraintSrv) ValidateEvent(_ context.Context, candidate service.Candidate) (models.ValidationReport, error) {
	f.last = candidate
	return f.report, nil
}

func postJSON(t *testing.T, body interface{}, target string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	return rec, c
}

func TestConstraintCheckRejectsMissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewConstraintHandler(&fakeConstraintSrv{}, nil)

	rec, c := postJSON(t, dto.CheckConstraintsRequest{RoomID: "room-a"}, "/constraints/check")
	h.Check(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConstraintCheckReturnsReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeConstraintSrv{report: models.ValidationReport{
		SoftWarnings: []models.Violation{{
			ConstraintID: models.ConstraintPreferredHours,
			Message:      "event starts outside preferred teaching hours (09:30-16:30)",
		}},
	}}
	h := NewConstraintHandler(srv, nil)

	rec, c := postJSON(t, dto.CheckConstraintsRequest{
		RoomID:       "room-a",
		StaffID:      "staff-1",
		Date:         "2026-09-07",
		TimeslotID:   "slot-08",
		StudentCount: 25,
	}, "/constraints/check")
	h.Check(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "room-a", srv.last.RoomID)
	assert.Equal(t, 25, srv.last.StudentCount)

	var envelope struct {
		Data dto.CheckConstraintsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.CanSchedule)
	require.Len(t, envelope.Data.SoftWarnings, 1)
}

func TestConstraintCheckPropagatesExcludeID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeConstraintSrv{}
	h := NewConstraintHandler(srv, nil)

	rec, c := postJSON(t, dto.CheckConstraintsRequest{
		RoomID:         "room-a",
		StaffID:        "staff-1",
		Date:           "2026-09-07",
		TimeslotID:     "slot-10",
		ExcludeEventID: "evt-1",
	}, "/constraints/check")
	h.Check(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "evt-1", srv.last.ExcludeEventID)
}
