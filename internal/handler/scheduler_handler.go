package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
	"github.com/acadsync/scheduler-api/pkg/response"
)

type generatorAPI interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
}

type conflictAPI interface {
	Validate(ctx context.Context, req dto.ValidateScheduleRequest) (models.ConflictReport, error)
	Optimize(ctx context.Context, req dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error)
}

type jobAPI interface {
	SubmitAsync(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.AsyncGenerateResponse, error)
	GetStatus(id string) (*dto.JobStatusResponse, error)
	Cancel(id string) (*dto.CancelJobResponse, error)
}

// SchedulerHandler exposes timetable generation, validation and optimization.
type SchedulerHandler struct {
	generator generatorAPI
	conflicts conflictAPI
	jobs      jobAPI
}

// NewSchedulerHandler constructs handler.
func NewSchedulerHandler(generator generatorAPI, conflicts conflictAPI, jobs jobAPI) *SchedulerHandler {
	return &SchedulerHandler{generator: generator, conflicts: conflicts, jobs: jobs}
}

// Generate godoc
// @Summary Generate a timetable synchronously
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generation options"
// @Success 200 {object} response.Envelope
// @Router /schedule/generate [post]
func (h *SchedulerHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GenerateAsync godoc
// @Summary Queue a timetable generation job
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generation options"
// @Success 202 {object} response.Envelope
// @Router /schedule/generate/async [post]
func (h *SchedulerHandler) GenerateAsync(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	ack, err := h.jobs.SubmitAsync(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, ack, nil)
}

// JobStatus godoc
// @Summary Get the status of a generation job
// @Tags Schedule
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/jobs/{id} [get]
func (h *SchedulerHandler) JobStatus(c *gin.Context) {
	status, err := h.jobs.GetStatus(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// CancelJob godoc
// @Summary Cancel a generation job
// @Tags Schedule
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/jobs/{id} [delete]
func (h *SchedulerHandler) CancelJob(c *gin.Context) {
	result, err := h.jobs.Cancel(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Validate godoc
// @Summary Validate a schedule against all constraints
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ValidateScheduleRequest true "Sessions to validate"
// @Success 200 {object} response.Envelope
// @Router /schedule/validate [post]
func (h *SchedulerHandler) Validate(c *gin.Context) {
	var req dto.ValidateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	report, err := h.conflicts.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Optimize godoc
// @Summary Reduce conflicts in a schedule by local search
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.OptimizeScheduleRequest true "Sessions to optimize"
// @Success 200 {object} response.Envelope
// @Router /schedule/optimize [post]
func (h *SchedulerHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.conflicts.Optimize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
