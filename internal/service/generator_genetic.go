package service

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
)

// gene assigns one demand to a point in the search space. Indexes refer to
// the grid and to the demand's eligible lists.
type gene struct {
	day     int
	slot    int
	room    int
	teacher int
}

type chromosome struct {
	genes   []gene
	penalty int
}

// geneticStrategy evolves a population of complete assignments. Hard
// constraint violations dominate the penalty so feasible individuals always
// outrank infeasible ones. A zero seed derives one from the clock; any other
// seed reproduces the same run.
type geneticStrategy struct{}

func (g *geneticStrategy) Name() string { return dto.StrategyGenetic }

const hardViolationPenalty = 1000

func (g *geneticStrategy) Run(ctx context.Context, in *generationInput) (*strategyResult, error) {
	result := &strategyResult{}

	var solvable []int
	for idx, demand := range in.demands {
		if demand.combinations() == 0 {
			result.unscheduled = append(result.unscheduled, dto.UnscheduledSession{
				CourseID: demand.course.ID,
				Reason:   "no eligible room/teacher combination",
			})
			continue
		}
		solvable = append(solvable, idx)
	}
	if len(solvable) == 0 {
		return result, nil
	}

	seed := in.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	popSize := in.populationSize
	if popSize < 2 {
		popSize = 2
	}
	population := make([]chromosome, popSize)
	for i := range population {
		population[i] = chromosome{genes: randomGenes(rng, in, solvable)}
		population[i].penalty = assignmentPenalty(in, solvable, population[i].genes)
	}
	sortByPenalty(population)

	for generation := 0; generation < in.generations; generation++ {
		if err := ctx.Err(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generation cancelled")
		}
		result.generations = generation + 1
		if population[0].penalty == 0 {
			break
		}

		next := make([]chromosome, 0, popSize)
		elite := popSize / 10
		if elite < 1 {
			elite = 1
		}
		next = append(next, population[:elite]...)

		for len(next) < popSize {
			parentA := tournament(rng, population)
			parentB := tournament(rng, population)
			child := crossover(rng, parentA, parentB)
			mutate(rng, in, solvable, child.genes, in.mutationRate)
			child.penalty = assignmentPenalty(in, solvable, child.genes)
			next = append(next, child)
		}
		population = next
		sortByPenalty(population)
	}

	best := population[0]
	state := newPlacementState(in.grid, in.teachers, in.teacherAvail, in.availabilityHard)
	for pos, demandIdx := range solvable {
		demand := in.demands[demandIdx]
		gn := best.genes[pos]
		day := in.grid.days[gn.day]
		roomID := demand.eligibleRooms[gn.room]
		teacherID := demand.eligibleTeachers[gn.teacher]
		if state.canPlace(demand, day, gn.slot, roomID, teacherID) {
			state.place(demandIdx, demand, day, gn.slot, roomID, teacherID)
			continue
		}
		result.unscheduled = append(result.unscheduled, dto.UnscheduledSession{
			CourseID: demand.course.ID,
			Reason:   "best individual leaves this session in conflict",
		})
	}
	result.sessions = state.sessions(in.demands)
	result.iterations = result.generations * popSize
	return result, nil
}

func randomGenes(rng *rand.Rand, in *generationInput, solvable []int) []gene {
	genes := make([]gene, len(solvable))
	for pos, demandIdx := range solvable {
		genes[pos] = randomGene(rng, in, in.demands[demandIdx])
	}
	return genes
}

func randomGene(rng *rand.Rand, in *generationInput, demand sessionDemand) gene {
	return gene{
		day:     rng.Intn(len(in.grid.days)),
		slot:    rng.Intn(len(in.grid.slots)),
		room:    rng.Intn(len(demand.eligibleRooms)),
		teacher: rng.Intn(len(demand.eligibleTeachers)),
	}
}

// assignmentPenalty scores hard violations (double bookings, weekly-hours
// overruns, availability when it is a hard constraint) far above the soft
// preferences (availability when soft, disfavored days, heavy daily loads,
// idle slots between a teacher's sessions).
func assignmentPenalty(in *generationInput, solvable []int, genes []gene) int {
	type occupant struct {
		day  int
		slot int
	}
	roomUse := map[string]map[occupant]int{}
	teacherUse := map[string]map[occupant]int{}
	groupUse := map[string]map[occupant]int{}
	teacherMinutes := map[string]int{}
	teacherDaily := map[string]map[int][]int{}

	byID := map[string]models.Teacher{}
	for _, t := range in.teachers {
		byID[t.ID] = t
	}

	penalty := 0
	for pos, demandIdx := range solvable {
		demand := in.demands[demandIdx]
		gn := genes[pos]
		at := occupant{day: gn.day, slot: gn.slot}
		roomID := demand.eligibleRooms[gn.room]
		teacherID := demand.eligibleTeachers[gn.teacher]

		if roomUse[roomID] == nil {
			roomUse[roomID] = map[occupant]int{}
		}
		if roomUse[roomID][at] > 0 {
			penalty += hardViolationPenalty
		}
		roomUse[roomID][at]++

		if teacherUse[teacherID] == nil {
			teacherUse[teacherID] = map[occupant]int{}
		}
		if teacherUse[teacherID][at] > 0 {
			penalty += hardViolationPenalty
		}
		teacherUse[teacherID][at]++

		if demand.course.GroupID != "" {
			if groupUse[demand.course.GroupID] == nil {
				groupUse[demand.course.GroupID] = map[occupant]int{}
			}
			if groupUse[demand.course.GroupID][at] > 0 {
				penalty += hardViolationPenalty
			}
			groupUse[demand.course.GroupID][at]++
		}

		teacherMinutes[teacherID] += in.grid.slotDuration
		if max := byID[teacherID].MaxWeeklyHours; max > 0 && teacherMinutes[teacherID] > max*60 {
			penalty += hardViolationPenalty
		}

		day := in.grid.days[gn.day]
		available := true
		if weekly, known := in.teacherAvail[teacherID]; known && len(weekly) > 0 {
			available = fitsFreeSlot(weekly[day], in.grid.slots[gn.slot])
		}
		if !available {
			if in.availabilityHard {
				penalty += hardViolationPenalty
			} else {
				penalty += 10
			}
		}

		if !byID[teacherID].PrefersDay(day) {
			penalty += 3
		}

		if teacherDaily[teacherID] == nil {
			teacherDaily[teacherID] = map[int][]int{}
		}
		teacherDaily[teacherID][gn.day] = append(teacherDaily[teacherID][gn.day], gn.slot)
	}

	for _, days := range teacherDaily {
		for _, slots := range days {
			if len(slots) > maxDailySessions {
				penalty += len(slots) - maxDailySessions
			}
			penalty += daySlotGaps(slots)
		}
	}
	return penalty
}

// daySlotGaps counts the idle slots strictly between a teacher's first and
// last session of one day. Double-booked slots contribute nothing here; the
// hard penalty already covers them.
func daySlotGaps(slots []int) int {
	if len(slots) < 2 {
		return 0
	}
	minSlot, maxSlot := slots[0], slots[0]
	distinct := map[int]struct{}{slots[0]: {}}
	for _, s := range slots[1:] {
		if s < minSlot {
			minSlot = s
		}
		if s > maxSlot {
			maxSlot = s
		}
		distinct[s] = struct{}{}
	}
	return maxSlot - minSlot + 1 - len(distinct)
}

func sortByPenalty(population []chromosome) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].penalty < population[j].penalty
	})
}

func tournament(rng *rand.Rand, population []chromosome) chromosome {
	best := population[rng.Intn(len(population))]
	for i := 0; i < 2; i++ {
		candidate := population[rng.Intn(len(population))]
		if candidate.penalty < best.penalty {
			best = candidate
		}
	}
	return best
}

func crossover(rng *rand.Rand, a, b chromosome) chromosome {
	genes := make([]gene, len(a.genes))
	cut := rng.Intn(len(genes))
	copy(genes, a.genes[:cut])
	copy(genes[cut:], b.genes[cut:])
	return chromosome{genes: genes}
}

func mutate(rng *rand.Rand, in *generationInput, solvable []int, genes []gene, rate float64) {
	for pos := range genes {
		if rng.Float64() < rate {
			genes[pos] = randomGene(rng, in, in.demands[solvable[pos]])
		}
	}
}
