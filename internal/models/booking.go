package models

import "time"

// BookingStatus captures the booking lifecycle. The only legal transition is
// approved to cancelled.
type BookingStatus string

const (
	BookingStatusApproved  BookingStatus = "APPROVED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking reserves a room for a time window on a specific date.
type Booking struct {
	ID        string        `db:"id" json:"id"`
	RoomID    string        `db:"room_id" json:"room_id"`
	BookedBy  string        `db:"booked_by" json:"booked_by"`
	Date      time.Time     `db:"booking_date" json:"date"`
	StartTime string        `db:"start_time" json:"start_time"`
	EndTime   string        `db:"end_time" json:"end_time"`
	Status    BookingStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingFilter describes query params for listing bookings.
type BookingFilter struct {
	RoomID   string
	BookedBy string
	Date     *time.Time
	Status   BookingStatus
	Page     int
	PageSize int
}
