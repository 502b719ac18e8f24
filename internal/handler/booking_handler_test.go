package handler

import (
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

type bookingMock struct {
	captured dto.CreateBookingRequest
	err      error
}

func (m *bookingMock) Create(_ context.Context, req dto.CreateBookingRequest) (*models.Booking, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Booking{ID: "booking-1", RoomID: req.RoomID, Status: models.BookingStatusApproved}, nil
}

func (m *bookingMock) Cancel(_ context.Context, id string) (*models.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Booking{ID: id, Status: models.BookingStatusCancelled}, nil
}

func (m *bookingMock) List(context.Context, dto.BookingQuery) (*dto.BookingListResponse, error) {
	return &dto.BookingListResponse{
		Bookings:   []models.Booking{{ID: "booking-1"}},
		Pagination: models.Pagination{Page: 1, PageSize: 20, TotalItems: 1, TotalPages: 1},
	}, nil
}

func (m *bookingMock) CheckMeeting(context.Context, []string, string, string, string) (bool, []string, error) {
	return false, []string{"teacher-2"}, nil
}

func TestBookingHandlerCreate(t *testing.T) {
	mockSvc := &bookingMock{}
	handler := NewBookingHandler(mockSvc)

	w := postJSON(t, handler.Create, "/bookings", []byte(`{"roomId":"room-1","bookedBy":"teacher-1","date":"2025-06-02","startTime":"10:00","endTime":"11:00"}`))

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "room-1", mockSvc.captured.RoomID)
	require.Equal(t, "10:00", mockSvc.captured.StartTime)
}

func TestBookingHandlerCreateConflict(t *testing.T) {
	mockSvc := &bookingMock{err: appErrors.Clone(appErrors.ErrConflict, "an approved booking already occupies that window")}
	handler := NewBookingHandler(mockSvc)

	w := postJSON(t, handler.Create, "/bookings", []byte(`{"roomId":"room-1","bookedBy":"teacher-1","date":"2025-06-02","startTime":"10:00","endTime":"11:00"}`))

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandlerList(t *testing.T) {
	handler := NewBookingHandler(&bookingMock{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/bookings?roomId=room-1&page=1", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data       []models.Booking   `json:"data"`
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.NotNil(t, envelope.Pagination)
	require.Equal(t, 1, envelope.Pagination.TotalItems)
}

func TestBookingHandlerCheckMeeting(t *testing.T) {
	handler := NewBookingHandler(&bookingMock{})

	w := postJSON(t, handler.CheckMeeting, "/bookings/check", []byte(`{"resourceIds":["teacher-1","teacher-2"],"date":"2025-06-02","startTime":"10:00","endTime":"11:00"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data struct {
			Feasible      bool     `json:"feasible"`
			BusyResources []string `json:"busyResources"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.False(t, envelope.Data.Feasible)
	require.Equal(t, []string{"teacher-2"}, envelope.Data.BusyResources)
}
