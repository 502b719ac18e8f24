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

type timetableAPI interface {
	Get(ctx context.Context, id string) (*models.Timetable, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateTimetableStatusRequest) (*models.Timetable, error)
	ReplaceSessions(ctx context.Context, id string, req dto.ReplaceSessionsRequest) (*models.Timetable, error)
}

// TimetableHandler exposes stored timetable lookup and lifecycle transitions.
type TimetableHandler struct {
	service timetableAPI
}

// NewTimetableHandler constructs handler.
func NewTimetableHandler(svc timetableAPI) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Get godoc
// @Summary Fetch a timetable with its sessions
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	timetable, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// UpdateStatus godoc
// @Summary Activate or archive a timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.UpdateTimetableStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/status [put]
func (h *TimetableHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateTimetableStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	timetable, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// ReplaceSessions godoc
// @Summary Replace a timetable's sessions with an optimized set
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.ReplaceSessionsRequest true "Replacement sessions"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/sessions [put]
func (h *TimetableHandler) ReplaceSessions(c *gin.Context) {
	var req dto.ReplaceSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	timetable, err := h.service.ReplaceSessions(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}
