package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	"github.com/acadsync/scheduler-api/pkg/interval"
)

func newAvailabilityFixture(store *stubAvailabilityStore, blocks *stubBlockStore, sessions *stubSessionSource) *AvailabilityService {
	return NewAvailabilityService(store, blocks, sessions, nil, nil, nil, AvailabilityServiceConfig{})
}

func TestAvailabilityResolveSubtractsSessionsAndBlocks(t *testing.T) {
	// Monday 2025-06-02, window 09:00-17:00, one session 10:00-11:00 and one
	// block 14:00-14:30 leave three free intervals.
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	store := &stubAvailabilityStore{
		active: map[string]map[models.DayOfWeek]*models.Availability{
			"teacher-1": {
				models.Monday: {ID: "a-1", ResourceID: "teacher-1", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "17:00", IsActive: true},
			},
		},
	}
	blocks := &stubBlockStore{blocks: []models.Block{
		{ID: "b-1", ResourceID: "teacher-1", Date: date, StartTime: "14:00", EndTime: "14:30"},
	}}
	sessions := &stubSessionSource{sessions: []models.Session{
		{ID: "s-1", TeacherID: "teacher-1", RoomID: "room-1", DayOfWeek: models.Monday, StartTime: "10:00", EndTime: "11:00"},
	}}

	svc := newAvailabilityFixture(store, blocks, sessions)
	resolved, err := svc.Resolve(context.Background(), "teacher-1", date)
	require.NoError(t, err)

	assert.Equal(t, models.Monday, resolved.DayOfWeek)
	require.Len(t, resolved.Free, 3)
	assert.Equal(t, mustInterval("09:00", "10:00"), resolved.Free[0])
	assert.Equal(t, mustInterval("11:00", "14:00"), resolved.Free[1])
	assert.Equal(t, mustInterval("14:30", "17:00"), resolved.Free[2])
}

func TestAvailabilityResolveNoDeclaredWindow(t *testing.T) {
	svc := newAvailabilityFixture(&stubAvailabilityStore{}, &stubBlockStore{}, &stubSessionSource{})

	resolved, err := svc.Resolve(context.Background(), "teacher-9", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, resolved.Free)
	assert.Empty(t, resolved.Occupied)
}

func TestAvailabilityResolveIgnoresOutOfWindowSessions(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	store := &stubAvailabilityStore{
		active: map[string]map[models.DayOfWeek]*models.Availability{
			"room-1": {
				models.Monday: {ID: "a-2", ResourceID: "room-1", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "12:00", IsActive: true},
			},
		},
	}
	sessions := &stubSessionSource{sessions: []models.Session{
		{ID: "s-2", RoomID: "room-1", DayOfWeek: models.Monday, StartTime: "18:00", EndTime: "19:00"},
	}}

	svc := newAvailabilityFixture(store, &stubBlockStore{}, sessions)
	resolved, err := svc.Resolve(context.Background(), "room-1", date)
	require.NoError(t, err)
	require.Len(t, resolved.Free, 1)
	assert.Equal(t, mustInterval("09:00", "12:00"), resolved.Free[0])
}

func TestAvailabilityWeeklyFreeMergesWindows(t *testing.T) {
	store := &stubAvailabilityStore{rows: []models.Availability{
		{ID: "a-3", ResourceID: "teacher-1", DayOfWeek: models.Monday, StartTime: "08:00", EndTime: "10:00"},
		{ID: "a-4", ResourceID: "teacher-1", DayOfWeek: models.Monday, StartTime: "10:00", EndTime: "12:00"},
		{ID: "a-5", ResourceID: "teacher-1", DayOfWeek: models.Tuesday, StartTime: "13:00", EndTime: "15:00"},
	}}

	svc := newAvailabilityFixture(store, &stubBlockStore{}, &stubSessionSource{})
	weekly, err := svc.WeeklyFree(context.Background(), "teacher-1")
	require.NoError(t, err)

	require.Len(t, weekly[models.Monday], 1)
	assert.Equal(t, interval.Interval{Start: 8 * 60, End: 12 * 60}, weekly[models.Monday][0])
	require.Len(t, weekly[models.Tuesday], 1)
}

func TestSetAvailabilityRejectsInvalidWindow(t *testing.T) {
	svc := newAvailabilityFixture(&stubAvailabilityStore{}, &stubBlockStore{}, &stubSessionSource{})

	_, err := svc.SetAvailability(context.Background(), dto.SetAvailabilityRequest{
		ResourceID: "teacher-1",
		DayOfWeek:  "MONDAY",
		StartTime:  "17:00",
		EndTime:    "09:00",
	})
	require.Error(t, err)
}

func TestSetAvailabilityStoresActiveRecord(t *testing.T) {
	store := &stubAvailabilityStore{}
	svc := newAvailabilityFixture(store, &stubBlockStore{}, &stubSessionSource{})

	availability, err := svc.SetAvailability(context.Background(), dto.SetAvailabilityRequest{
		ResourceID: "teacher-1",
		DayOfWeek:  "monday",
		StartTime:  "08:00",
		EndTime:    "16:00",
	})
	require.NoError(t, err)
	assert.Equal(t, models.Monday, availability.DayOfWeek)
	assert.True(t, availability.IsActive)
	require.NotNil(t, store.active["teacher-1"][models.Monday])
}
