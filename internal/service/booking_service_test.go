package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
	"github.com/acadsync/scheduler-api/pkg/interval"
)

func newBookingFixture(store *stubBookingStore, sessions *stubSessionSource) *BookingService {
	resources := &stubResources{rooms: []models.Room{
		{ID: "room-1", Name: "Lab A", Capacity: 30, Type: "lab"},
	}}
	resolver := &stubResolver{}
	return NewBookingService(store, resources, sessions, resolver, nil, nil)
}

func TestBookingCreateSucceeds(t *testing.T) {
	store := newStubBookingStore()
	svc := newBookingFixture(store, &stubSessionSource{})

	booking, err := svc.Create(context.Background(), dto.CreateBookingRequest{
		RoomID:    "room-1",
		BookedBy:  "teacher-1",
		Date:      "2025-06-02",
		StartTime: "10:00",
		EndTime:   "11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusApproved, booking.Status)
	assert.NotEmpty(t, booking.ID)
}

func TestBookingCreateRejectsOverlap(t *testing.T) {
	store := newStubBookingStore()
	svc := newBookingFixture(store, &stubSessionSource{})

	first := dto.CreateBookingRequest{
		RoomID: "room-1", BookedBy: "teacher-1", Date: "2025-06-02", StartTime: "10:00", EndTime: "11:00",
	}
	_, err := svc.Create(context.Background(), first)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateBookingRequest{
		RoomID: "room-1", BookedBy: "teacher-2", Date: "2025-06-02", StartTime: "10:30", EndTime: "11:30",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestBookingCreateAllowsTouchingWindows(t *testing.T) {
	store := newStubBookingStore()
	svc := newBookingFixture(store, &stubSessionSource{})

	_, err := svc.Create(context.Background(), dto.CreateBookingRequest{
		RoomID: "room-1", BookedBy: "teacher-1", Date: "2025-06-02", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateBookingRequest{
		RoomID: "room-1", BookedBy: "teacher-2", Date: "2025-06-02", StartTime: "11:00", EndTime: "12:00",
	})
	require.NoError(t, err)
}

func TestBookingCreateRejectsScheduledSessionCollision(t *testing.T) {
	store := newStubBookingStore()
	sessions := &stubSessionSource{sessions: []models.Session{
		{ID: "s-1", RoomID: "room-1", DayOfWeek: models.Monday, StartTime: "10:00", EndTime: "12:00"},
	}}
	svc := newBookingFixture(store, sessions)

	// 2025-06-02 is a Monday.
	_, err := svc.Create(context.Background(), dto.CreateBookingRequest{
		RoomID: "room-1", BookedBy: "teacher-1", Date: "2025-06-02", StartTime: "11:00", EndTime: "13:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestBookingConcurrentRequestsOnlyOneWins(t *testing.T) {
	store := newStubBookingStore()
	svc := newBookingFixture(store, &stubSessionSource{})

	const workers = 16
	var wg sync.WaitGroup
	var successes int32
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), dto.CreateBookingRequest{
				RoomID: "room-1", BookedBy: "teacher-1", Date: "2025-06-02", StartTime: "10:00", EndTime: "11:00",
			})
			if err == nil {
				atomic.AddInt32(&successes, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), successes)
}

func TestBookingCancelLifecycle(t *testing.T) {
	store := newStubBookingStore()
	svc := newBookingFixture(store, &stubSessionSource{})

	booking, err := svc.Create(context.Background(), dto.CreateBookingRequest{
		RoomID: "room-1", BookedBy: "teacher-1", Date: "2025-06-02", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	_, err = svc.Cancel(context.Background(), booking.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	_, err = svc.Cancel(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingCancelFreesWindow(t *testing.T) {
	store := newStubBookingStore()
	svc := newBookingFixture(store, &stubSessionSource{})

	booking, err := svc.Create(context.Background(), dto.CreateBookingRequest{
		RoomID: "room-1", BookedBy: "teacher-1", Date: "2025-06-02", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), booking.ID)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateBookingRequest{
		RoomID: "room-1", BookedBy: "teacher-2", Date: "2025-06-02", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)
}

func TestCheckMeetingReportsBusyResources(t *testing.T) {
	store := newStubBookingStore()
	resources := &stubResources{rooms: []models.Room{{ID: "room-1", Capacity: 30}}}
	resolver := &stubResolver{resolved: map[string]*ResolvedAvailability{
		"teacher-1": {ResourceID: "teacher-1", Free: []interval.Interval{mustInterval("09:00", "12:00")}},
		"teacher-2": {ResourceID: "teacher-2", Free: []interval.Interval{mustInterval("13:00", "15:00")}},
	}}
	svc := NewBookingService(store, resources, &stubSessionSource{}, resolver, nil, nil)

	feasible, busy, err := svc.CheckMeeting(context.Background(), []string{"teacher-1", "teacher-2"}, "2025-06-02", "10:00", "11:00")
	require.NoError(t, err)
	assert.False(t, feasible)
	assert.Equal(t, []string{"teacher-2"}, busy)

	feasible, busy, err = svc.CheckMeeting(context.Background(), []string{"teacher-1"}, "2025-06-02", "10:00", "11:00")
	require.NoError(t, err)
	assert.True(t, feasible)
	assert.Empty(t, busy)
}

func TestCheckMeetingConsidersApprovedBookings(t *testing.T) {
	store := newStubBookingStore()
	resources := &stubResources{rooms: []models.Room{{ID: "room-1", Capacity: 30}}}
	resolver := &stubResolver{resolved: map[string]*ResolvedAvailability{
		"room-1": {ResourceID: "room-1", Free: []interval.Interval{mustInterval("09:00", "17:00")}},
	}}
	svc := NewBookingService(store, resources, &stubSessionSource{}, resolver, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateBookingRequest{
		RoomID: "room-1", BookedBy: "teacher-1", Date: "2025-06-02", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	feasible, busy, err := svc.CheckMeeting(context.Background(), []string{"room-1"}, "2025-06-02", "10:30", "11:30")
	require.NoError(t, err)
	assert.False(t, feasible)
	assert.Equal(t, []string{"room-1"}, busy)
}
