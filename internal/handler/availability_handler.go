package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	"github.com/acadsync/scheduler-api/internal/service"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
	"github.com/acadsync/scheduler-api/pkg/response"
)

type availabilityAPI interface {
	Resolve(ctx context.Context, resourceID string, date time.Time) (*service.ResolvedAvailability, error)
	SetAvailability(ctx context.Context, req dto.SetAvailabilityRequest) (*models.Availability, error)
	AddBlock(ctx context.Context, req dto.AddBlockRequest) (*models.Block, error)
}

// AvailabilityHandler manages resource availability declarations and lookups.
type AvailabilityHandler struct {
	service availabilityAPI
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(svc availabilityAPI) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Set godoc
// @Summary Declare or replace a weekly availability window
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.SetAvailabilityRequest true "Availability window"
// @Success 200 {object} response.Envelope
// @Router /availability [put]
func (h *AvailabilityHandler) Set(c *gin.Context) {
	var req dto.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	availability, err := h.service.SetAvailability(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

// AddBlock godoc
// @Summary Block a window on a specific date
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.AddBlockRequest true "Block window"
// @Success 201 {object} response.Envelope
// @Router /availability/blocks [post]
func (h *AvailabilityHandler) AddBlock(c *gin.Context) {
	var req dto.AddBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	block, err := h.service.AddBlock(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, block)
}

// Resolve godoc
// @Summary Resolve free intervals for a resource on a date
// @Tags Availability
// @Produce json
// @Param resourceId path string true "Resource ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /availability/{resourceId} [get]
func (h *AvailabilityHandler) Resolve(c *gin.Context) {
	dateRaw := c.Query("date")
	date, err := time.ParseInLocation("2006-01-02", dateRaw, time.UTC)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date query parameter must be YYYY-MM-DD"))
		return
	}
	resolved, err := h.service.Resolve(c.Request.Context(), c.Param("resourceId"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ResolvedAvailabilityResponse{
		ResourceID: resolved.ResourceID,
		Date:       resolved.Date,
		DayOfWeek:  string(resolved.DayOfWeek),
		Free:       dto.RangesFromIntervals(resolved.Free),
		Occupied:   dto.RangesFromIntervals(resolved.Occupied),
		Blocked:    dto.RangesFromIntervals(resolved.Blocked),
	}, nil)
}
