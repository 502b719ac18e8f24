package dto

import "github.com/acadsync/scheduler-api/internal/models"

// CreateBookingRequest reserves a room for one date and time window.
type CreateBookingRequest struct {
	RoomID    string `json:"roomId" validate:"required"`
	BookedBy  string `json:"bookedBy" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required,len=5"`
	EndTime   string `json:"endTime" validate:"required,len=5"`
}

// BookingQuery filters the booking list endpoint.
type BookingQuery struct {
	RoomID   string `form:"roomId"`
	BookedBy string `form:"bookedBy"`
	Date     string `form:"date"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// BookingListResponse wraps a booking page.
type BookingListResponse struct {
	Bookings   []models.Booking  `json:"bookings"`
	Pagination models.Pagination `json:"-"`
}
