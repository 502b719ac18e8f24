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

type bookingAPI interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error)
	Cancel(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, query dto.BookingQuery) (*dto.BookingListResponse, error)
	CheckMeeting(ctx context.Context, resourceIDs []string, date, startTime, endTime string) (bool, []string, error)
}

// BookingHandler exposes ad hoc room reservations.
type BookingHandler struct {
	service bookingAPI
}

// NewBookingHandler constructs handler.
func NewBookingHandler(svc bookingAPI) *BookingHandler {
	return &BookingHandler{service: svc}
}

// Create godoc
// @Summary Book a room for a time window
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking request"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	booking, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param roomId query string false "Filter by room"
// @Param bookedBy query string false "Filter by booker"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	var query dto.BookingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	result, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Bookings, &result.Pagination)
}

// Cancel godoc
// @Summary Cancel an approved booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	booking, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

type checkMeetingRequest struct {
	ResourceIDs []string `json:"resourceIds" binding:"required,min=1"`
	Date        string   `json:"date" binding:"required"`
	StartTime   string   `json:"startTime" binding:"required"`
	EndTime     string   `json:"endTime" binding:"required"`
}

// CheckMeeting godoc
// @Summary Check whether resources share a free window
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body checkMeetingRequest true "Meeting query"
// @Success 200 {object} response.Envelope
// @Router /bookings/check [post]
func (h *BookingHandler) CheckMeeting(c *gin.Context) {
	var req checkMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	feasible, busy, err := h.service.CheckMeeting(c.Request.Context(), req.ResourceIDs, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"feasible": feasible, "busyResources": busy}, nil)
}
