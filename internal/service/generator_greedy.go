package service

import (
	"context"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
)

// greedyStrategy commits the first (day, slot, room, teacher) combination
// that satisfies every hard constraint, scanning in a fixed deterministic
// order. Unplaceable demands are recorded and the run continues.
type greedyStrategy struct{}

func (g *greedyStrategy) Name() string { return dto.StrategyGreedy }

func (g *greedyStrategy) Run(ctx context.Context, in *generationInput) (*strategyResult, error) {
	state := newPlacementState(in.grid, in.teachers, in.teacherAvail, in.availabilityHard)
	result := &strategyResult{}

	for idx, demand := range in.demands {
		if err := ctx.Err(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generation cancelled")
		}
		if demand.combinations() == 0 {
			result.unscheduled = append(result.unscheduled, dto.UnscheduledSession{
				CourseID: demand.course.ID,
				Reason:   "no eligible room/teacher combination",
			})
			continue
		}
		day, slot, roomID, teacherID, tried, found := firstFeasible(state, demand)
		result.iterations += tried
		if !found {
			result.unscheduled = append(result.unscheduled, dto.UnscheduledSession{
				CourseID: demand.course.ID,
				Reason:   "no slot satisfies all hard constraints",
			})
			continue
		}
		state.place(idx, demand, day, slot, roomID, teacherID)
	}

	result.sessions = state.sessions(in.demands)
	return result, nil
}

// firstFeasible scans day, slot, room, teacher in order and returns the first
// combination passing every hard constraint, with the number of combinations
// examined.
func firstFeasible(state *placementState, demand sessionDemand) (day models.DayOfWeek, slot int, roomID, teacherID string, tried int, found bool) {
	for _, d := range state.grid.days {
		for s := range state.grid.slots {
			for _, r := range demand.eligibleRooms {
				for _, t := range demand.eligibleTeachers {
					tried++
					if state.canPlace(demand, d, s, r, t) {
						return d, s, r, t, tried, true
					}
				}
			}
		}
	}
	return "", 0, "", "", tried, false
}
