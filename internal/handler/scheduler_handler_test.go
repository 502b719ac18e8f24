package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
)

type generatorMock struct {
	captured dto.GenerateScheduleRequest
	response *dto.GenerateScheduleResponse
	err      error
}

func (m *generatorMock) Generate(_ context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	m.captured = req
	return m.response, m.err
}

type conflictMock struct {
	report models.ConflictReport
}

func (m *conflictMock) Validate(context.Context, dto.ValidateScheduleRequest) (models.ConflictReport, error) {
	return m.report, nil
}

func (m *conflictMock) Optimize(context.Context, dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error) {
	return &dto.OptimizeScheduleResponse{Conflicts: m.report}, nil
}

type jobMock struct {
	status *dto.JobStatusResponse
	err    error
}

func (m *jobMock) SubmitAsync(context.Context, dto.GenerateScheduleRequest) (*dto.AsyncGenerateResponse, error) {
	return &dto.AsyncGenerateResponse{JobID: "job-1", StatusURL: "/api/v1/schedule/jobs/job-1"}, nil
}

func (m *jobMock) GetStatus(string) (*dto.JobStatusResponse, error) {
	return m.status, m.err
}

func (m *jobMock) Cancel(string) (*dto.CancelJobResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CancelJobResponse{Success: true, Status: models.JobStatusCancelled}, nil
}

func postJSON(t *testing.T, h gin.HandlerFunc, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	h(c)
	return w
}

func TestSchedulerHandlerGenerate(t *testing.T) {
	mockGen := &generatorMock{response: &dto.GenerateScheduleResponse{Success: true}}
	handler := NewSchedulerHandler(mockGen, &conflictMock{}, &jobMock{})

	w := postJSON(t, handler.Generate, "/schedule/generate", []byte(`{"strategy":"greedy","workingDays":["MONDAY"]}`))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "greedy", mockGen.captured.Strategy)
	require.Equal(t, []string{"MONDAY"}, mockGen.captured.WorkingDays)
}

func TestSchedulerHandlerGenerateBadJSON(t *testing.T) {
	handler := NewSchedulerHandler(&generatorMock{}, &conflictMock{}, &jobMock{})

	w := postJSON(t, handler.Generate, "/schedule/generate", []byte(`{"strategy":`))

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchedulerHandlerGeneratePreconditionStatus(t *testing.T) {
	mockGen := &generatorMock{err: appErrors.Clone(appErrors.ErrPreconditionFailed, "no courses to schedule")}
	handler := NewSchedulerHandler(mockGen, &conflictMock{}, &jobMock{})

	w := postJSON(t, handler.Generate, "/schedule/generate", []byte(`{}`))

	require.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestSchedulerHandlerGenerateAsyncAccepted(t *testing.T) {
	handler := NewSchedulerHandler(&generatorMock{}, &conflictMock{}, &jobMock{})

	w := postJSON(t, handler.GenerateAsync, "/schedule/generate/async", []byte(`{}`))

	require.Equal(t, http.StatusAccepted, w.Code)
	var envelope struct {
		Data dto.AsyncGenerateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "job-1", envelope.Data.JobID)
}

func TestSchedulerHandlerJobStatusNotFound(t *testing.T) {
	mockJobs := &jobMock{err: appErrors.Clone(appErrors.ErrNotFound, "generation job not found")}
	handler := NewSchedulerHandler(&generatorMock{}, &conflictMock{}, mockJobs)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/schedule/jobs/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.JobStatus(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchedulerHandlerCancelJob(t *testing.T) {
	handler := NewSchedulerHandler(&generatorMock{}, &conflictMock{}, &jobMock{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/schedule/jobs/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	handler.CancelJob(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data dto.CancelJobResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Data.Success)
}

func TestSchedulerHandlerValidate(t *testing.T) {
	report := models.BuildConflictReport([]models.Conflict{
		{Type: models.ConflictTeacherDoubleBooking, Severity: models.SeverityCritical},
	})
	handler := NewSchedulerHandler(&generatorMock{}, &conflictMock{report: report}, &jobMock{})

	w := postJSON(t, handler.Validate, "/schedule/validate", []byte(`{"sessions":[{"course_id":"math"}]}`))

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.ConflictReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.False(t, envelope.Data.CanProceed)
}
