package service

import (
	"context"

	"github.com/acadsync/scheduler-api/internal/dto"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
)

// backtrackingStrategy searches the same space as the greedy strategy but,
// when a demand cannot be placed, undoes a bounded number of the most recent
// placements and retries alternate combinations within the iteration budget.
// The best assignment found is returned even when the budget runs out.
type backtrackingStrategy struct{}

func (b *backtrackingStrategy) Name() string { return dto.StrategyConstraintSatisfaction }

// comboOf decodes a linear cursor into (day, slot, room, teacher) indexes so
// the scan order matches the greedy strategy exactly.
func comboOf(grid gridConfig, demand sessionDemand, cursor int) (dayIdx, slotIdx, roomIdx, teacherIdx int) {
	teachers := len(demand.eligibleTeachers)
	rooms := len(demand.eligibleRooms)
	teacherIdx = cursor % teachers
	cursor /= teachers
	roomIdx = cursor % rooms
	cursor /= rooms
	slotIdx = cursor % len(grid.slots)
	cursor /= len(grid.slots)
	dayIdx = cursor
	return
}

func (b *backtrackingStrategy) Run(ctx context.Context, in *generationInput) (*strategyResult, error) {
	state := newPlacementState(in.grid, in.teachers, in.teacherAvail, in.availabilityHard)
	result := &strategyResult{}

	var order []int
	for idx, demand := range in.demands {
		if demand.combinations() == 0 {
			result.unscheduled = append(result.unscheduled, dto.UnscheduledSession{
				CourseID: demand.course.ID,
				Reason:   "no eligible room/teacher combination",
			})
			continue
		}
		order = append(order, idx)
	}

	cursors := make([]int, len(order))
	retries := make([]int, len(order))
	skipped := make(map[int]bool)
	var bestPlaced []placement

	snapshotBest := func() {
		if len(state.placed) > len(bestPlaced) {
			bestPlaced = make([]placement, len(state.placed))
			copy(bestPlaced, state.placed)
		}
	}

	depth := 0
	iterations := 0
	for depth < len(order) && iterations < in.maxIterations {
		if iterations%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generation cancelled")
			}
		}
		demandIdx := order[depth]
		if skipped[demandIdx] {
			depth++
			if depth < len(order) {
				cursors[depth] = 0
			}
			continue
		}
		demand := in.demands[demandIdx]
		total := len(in.grid.days) * len(in.grid.slots) * demand.combinations()

		placedHere := false
		for cursors[depth] < total && iterations < in.maxIterations {
			cursor := cursors[depth]
			cursors[depth]++
			iterations++
			dayIdx, slotIdx, roomIdx, teacherIdx := comboOf(in.grid, demand, cursor)
			day := in.grid.days[dayIdx]
			roomID := demand.eligibleRooms[roomIdx]
			teacherID := demand.eligibleTeachers[teacherIdx]
			if state.canPlace(demand, day, slotIdx, roomID, teacherID) {
				state.place(demandIdx, demand, day, slotIdx, roomID, teacherID)
				placedHere = true
				break
			}
		}

		if placedHere {
			depth++
			if depth < len(order) {
				cursors[depth] = 0
			}
			snapshotBest()
			continue
		}
		if iterations >= in.maxIterations {
			break
		}

		if retries[depth] < in.backtrackDepth && len(state.placed) > 0 {
			retries[depth]++
			cursors[depth] = 0
			state.unplace(in.demands)
			depth--
			for depth > 0 && skipped[order[depth]] {
				depth--
			}
			continue
		}

		skipped[demandIdx] = true
		result.unscheduled = append(result.unscheduled, dto.UnscheduledSession{
			CourseID: demand.course.ID,
			Reason:   "no slot satisfies all hard constraints after backtracking",
		})
		depth++
		if depth < len(order) {
			cursors[depth] = 0
		}
	}

	snapshotBest()
	result.iterations = iterations

	if len(bestPlaced) > len(state.placed) {
		result.sessions = sessionsFromPlacements(in.grid, in.demands, bestPlaced)
		result.unscheduled = unscheduledFromPlacements(in.demands, order, bestPlaced, result.unscheduled)
	} else {
		result.sessions = state.sessions(in.demands)
		if depth < len(order) {
			placed := map[int]bool{}
			for _, p := range state.placed {
				placed[p.demandIdx] = true
			}
			for _, demandIdx := range order[depth:] {
				if placed[demandIdx] || skipped[demandIdx] {
					continue
				}
				result.unscheduled = append(result.unscheduled, dto.UnscheduledSession{
					CourseID: in.demands[demandIdx].course.ID,
					Reason:   "iteration budget exhausted",
				})
			}
		}
	}
	return result, nil
}

// unscheduledFromPlacements reports the solvable demands absent from the best
// assignment when the search ended on a worse branch.
func unscheduledFromPlacements(demands []sessionDemand, order []int, placed []placement, existing []dto.UnscheduledSession) []dto.UnscheduledSession {
	have := map[int]bool{}
	for _, p := range placed {
		have[p.demandIdx] = true
	}
	known := map[string]bool{}
	for _, item := range existing {
		known[item.CourseID+"/"+item.Reason] = true
	}
	out := existing
	for _, demandIdx := range order {
		if have[demandIdx] {
			continue
		}
		item := dto.UnscheduledSession{
			CourseID: demands[demandIdx].course.ID,
			Reason:   "iteration budget exhausted",
		}
		if known[item.CourseID+"/"+item.Reason] {
			continue
		}
		out = append(out, item)
	}
	return out
}
