package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/scheduler-api/internal/models"
)

func TestBuildGridSlotsWorkingWindow(t *testing.T) {
	grid, err := buildGrid([]models.DayOfWeek{models.Monday}, "08:00", "18:00", 60)
	require.NoError(t, err)
	assert.Len(t, grid.slots, 10)
	assert.Equal(t, "08:00", grid.slots[0].StartClock())
	assert.Equal(t, "18:00", grid.slots[9].EndClock())

	_, err = buildGrid([]models.DayOfWeek{models.Monday}, "09:00", "09:30", 60)
	require.Error(t, err, "window shorter than one slot")
}

func TestBuildDemandsScarcityOrdering(t *testing.T) {
	courses := []models.Course{
		{ID: "easy", Code: "EASY", WeeklyHours: 1, GroupSize: 10},
		{ID: "tight", Code: "TIGHT", WeeklyHours: 1, GroupSize: 10, RequiredRoomType: "lab"},
	}
	teachers := []models.Teacher{{ID: "teacher-1"}, {ID: "teacher-2"}}
	rooms := []models.Room{
		{ID: "room-1", Capacity: 20, Type: "lecture"},
		{ID: "room-2", Capacity: 20, Type: "lab"},
	}

	demands := buildDemands(courses, teachers, rooms, 60)
	require.Len(t, demands, 2)
	// The lab-constrained course has half the combinations, so it is placed
	// first regardless of course code order.
	assert.Equal(t, "tight", demands[0].course.ID)
	assert.Equal(t, 2, demands[0].combinations())
	assert.Equal(t, 4, demands[1].combinations())
}

func TestBuildDemandsExpandsWeeklyHours(t *testing.T) {
	courses := []models.Course{{ID: "math", Code: "MATH", WeeklyHours: 3, GroupSize: 10}}
	teachers := []models.Teacher{{ID: "teacher-1"}}
	rooms := []models.Room{{ID: "room-1", Capacity: 20}}

	demands := buildDemands(courses, teachers, rooms, 60)
	require.Len(t, demands, 3)
	for i, demand := range demands {
		assert.Equal(t, i, demand.ordinal)
	}

	halfHour := buildDemands(courses, teachers, rooms, 30)
	assert.Len(t, halfHour, 6)
}

func TestPlacementStateRejectsConflicts(t *testing.T) {
	grid, err := buildGrid([]models.DayOfWeek{models.Monday}, "09:00", "11:00", 60)
	require.NoError(t, err)
	teachers := []models.Teacher{{ID: "teacher-1", MaxWeeklyHours: 1}}
	state := newPlacementState(grid, teachers, nil, true)

	demand := sessionDemand{
		course:           models.Course{ID: "math", GroupID: "group-a"},
		eligibleTeachers: []string{"teacher-1"},
		eligibleRooms:    []string{"room-1"},
	}

	require.True(t, state.canPlace(demand, models.Monday, 0, "room-1", "teacher-1"))
	state.place(0, demand, models.Monday, 0, "room-1", "teacher-1")

	assert.False(t, state.canPlace(demand, models.Monday, 0, "room-1", "teacher-1"), "room busy")
	assert.False(t, state.canPlace(demand, models.Monday, 1, "room-1", "teacher-1"), "weekly hours cap reached")

	state.unplace([]sessionDemand{demand})
	assert.True(t, state.canPlace(demand, models.Monday, 0, "room-1", "teacher-1"))
	assert.Empty(t, state.sessions([]sessionDemand{demand}))
}
