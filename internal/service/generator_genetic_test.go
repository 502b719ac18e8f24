package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/scheduler-api/internal/models"
	"github.com/acadsync/scheduler-api/pkg/interval"
)

func geneticFitnessInput(t *testing.T, teachers []models.Teacher, demandCount int) *generationInput {
	t.Helper()
	grid, err := buildGrid([]models.DayOfWeek{models.Monday, models.Tuesday}, "08:00", "12:00", 60)
	require.NoError(t, err)

	demands := make([]sessionDemand, demandCount)
	for i := range demands {
		demands[i] = sessionDemand{
			course:           models.Course{ID: "course-1", Code: "C1"},
			eligibleTeachers: []string{teachers[0].ID},
			eligibleRooms:    []string{"room-1"},
			ordinal:          i,
		}
	}
	return &generationInput{
		grid:             grid,
		demands:          demands,
		teachers:         teachers,
		teacherAvail:     map[string]map[models.DayOfWeek][]interval.Interval{},
		availabilityHard: true,
	}
}

func TestFitnessPenalizesDisfavoredDay(t *testing.T) {
	teachers := []models.Teacher{{ID: "teacher-1", PreferredDays: []string{"MONDAY"}}}
	in := geneticFitnessInput(t, teachers, 1)

	onPreferred := assignmentPenalty(in, []int{0}, []gene{{day: 0, slot: 0}})
	assert.Zero(t, onPreferred)

	offPreferred := assignmentPenalty(in, []int{0}, []gene{{day: 1, slot: 0}})
	assert.Equal(t, 3, offPreferred)
}

func TestFitnessIgnoresDayWhenNoPreference(t *testing.T) {
	teachers := []models.Teacher{{ID: "teacher-1"}}
	in := geneticFitnessInput(t, teachers, 1)

	assert.Zero(t, assignmentPenalty(in, []int{0}, []gene{{day: 1, slot: 3}}))
}

func TestFitnessPenalizesDailyGaps(t *testing.T) {
	teachers := []models.Teacher{{ID: "teacher-1"}}
	in := geneticFitnessInput(t, teachers, 2)
	// Two demands target distinct rooms so only the gap term can fire.
	in.demands[1].eligibleRooms = []string{"room-2"}

	contiguous := assignmentPenalty(in, []int{0, 1}, []gene{{day: 0, slot: 0}, {day: 0, slot: 1}})
	assert.Zero(t, contiguous)

	withGap := assignmentPenalty(in, []int{0, 1}, []gene{{day: 0, slot: 0}, {day: 0, slot: 2}})
	assert.Equal(t, 1, withGap)

	acrossDays := assignmentPenalty(in, []int{0, 1}, []gene{{day: 0, slot: 0}, {day: 1, slot: 3}})
	assert.Zero(t, acrossDays, "gaps only count within one day")
}

func TestDaySlotGaps(t *testing.T) {
	assert.Zero(t, daySlotGaps(nil))
	assert.Zero(t, daySlotGaps([]int{2}))
	assert.Zero(t, daySlotGaps([]int{1, 2, 3}))
	assert.Equal(t, 2, daySlotGaps([]int{0, 3}))
	assert.Zero(t, daySlotGaps([]int{1, 1}), "double-booked slot is not a gap")
}

func TestTeacherPrefersDay(t *testing.T) {
	open := models.Teacher{ID: "teacher-1"}
	assert.True(t, open.PrefersDay(models.Friday))

	picky := models.Teacher{ID: "teacher-2", PreferredDays: []string{"MONDAY", "WEDNESDAY"}}
	assert.True(t, picky.PrefersDay(models.Monday))
	assert.False(t, picky.PrefersDay(models.Friday))
}
