package service

import (
	"fmt"
	"sort"

	"github.com/acadsync/scheduler-api/internal/models"
	"github.com/acadsync/scheduler-api/pkg/interval"
)

// gridConfig is the discretised search space: working days crossed with
// fixed-duration slots inside the working-hours window.
type gridConfig struct {
	days         []models.DayOfWeek
	slots        []interval.Interval
	slotDuration int
}

func buildGrid(days []models.DayOfWeek, workStart, workEnd string, slotMinutes int) (gridConfig, error) {
	window, err := interval.FromClock(workStart, workEnd)
	if err != nil {
		return gridConfig{}, fmt.Errorf("invalid working-hours window: %w", err)
	}
	if slotMinutes <= 0 {
		return gridConfig{}, fmt.Errorf("slot duration must be positive")
	}
	var slots []interval.Interval
	for start := window.Start; start+slotMinutes <= window.End; start += slotMinutes {
		slots = append(slots, interval.Interval{Start: start, End: start + slotMinutes})
	}
	if len(slots) == 0 {
		return gridConfig{}, fmt.Errorf("working-hours window shorter than one slot")
	}
	return gridConfig{days: days, slots: slots, slotDuration: slotMinutes}, nil
}

// sessionDemand is one still-unplaced session of a course, with its
// precomputed eligible rooms and teachers.
type sessionDemand struct {
	course           models.Course
	eligibleTeachers []string
	eligibleRooms    []string
	ordinal          int
}

func (d sessionDemand) combinations() int {
	return len(d.eligibleTeachers) * len(d.eligibleRooms)
}

// buildDemands expands courses into per-session demands ordered by scarcity:
// fewest eligible combinations first, ties broken by descending weekly hours,
// then by course code for determinism.
func buildDemands(courses []models.Course, teachers []models.Teacher, rooms []models.Room, slotMinutes int) []sessionDemand {
	teacherIDs := make([]string, 0, len(teachers))
	teacherByID := make(map[string]models.Teacher, len(teachers))
	for _, t := range teachers {
		teacherIDs = append(teacherIDs, t.ID)
		teacherByID[t.ID] = t
	}
	sort.Strings(teacherIDs)

	roomIDs := make([]string, 0, len(rooms))
	roomByID := make(map[string]models.Room, len(rooms))
	for _, r := range rooms {
		roomIDs = append(roomIDs, r.ID)
		roomByID[r.ID] = r
	}
	sort.Strings(roomIDs)

	ordered := make([]models.Course, len(courses))
	copy(ordered, courses)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Code < ordered[j].Code })

	var demands []sessionDemand
	for _, course := range ordered {
		var eligT []string
		for _, id := range teacherIDs {
			if teacherByID[id].QualifiedFor(course.ID) {
				eligT = append(eligT, id)
			}
		}
		var eligR []string
		for _, id := range roomIDs {
			if roomByID[id].Suits(course.GroupSize, course.RequiredRoomType) {
				eligR = append(eligR, id)
			}
		}

		count := course.WeeklyHours * 60 / slotMinutes
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			demands = append(demands, sessionDemand{
				course:           course,
				eligibleTeachers: eligT,
				eligibleRooms:    eligR,
				ordinal:          i,
			})
		}
	}

	sort.SliceStable(demands, func(i, j int) bool {
		ci, cj := demands[i].combinations(), demands[j].combinations()
		if ci != cj {
			return ci < cj
		}
		if demands[i].course.WeeklyHours != demands[j].course.WeeklyHours {
			return demands[i].course.WeeklyHours > demands[j].course.WeeklyHours
		}
		if demands[i].course.Code != demands[j].course.Code {
			return demands[i].course.Code < demands[j].course.Code
		}
		return demands[i].ordinal < demands[j].ordinal
	})
	return demands
}

type gridKey struct {
	day  models.DayOfWeek
	slot int
}

// placement records one committed assignment.
type placement struct {
	demandIdx int
	day       models.DayOfWeek
	slot      int
	roomID    string
	teacherID string
}

// placementState tracks committed assignments and the occupancy they imply.
type placementState struct {
	grid             gridConfig
	teacherAvail     map[string]map[models.DayOfWeek][]interval.Interval
	teacherByID      map[string]models.Teacher
	availabilityHard bool

	roomBusy       map[string]map[gridKey]bool
	teacherBusy    map[string]map[gridKey]bool
	groupBusy      map[string]map[gridKey]bool
	teacherMinutes map[string]int

	placed []placement
}

func newPlacementState(grid gridConfig, teachers []models.Teacher, teacherAvail map[string]map[models.DayOfWeek][]interval.Interval, availabilityHard bool) *placementState {
	byID := make(map[string]models.Teacher, len(teachers))
	for _, t := range teachers {
		byID[t.ID] = t
	}
	return &placementState{
		grid:             grid,
		teacherAvail:     teacherAvail,
		teacherByID:      byID,
		availabilityHard: availabilityHard,
		roomBusy:         map[string]map[gridKey]bool{},
		teacherBusy:      map[string]map[gridKey]bool{},
		groupBusy:        map[string]map[gridKey]bool{},
		teacherMinutes:   map[string]int{},
	}
}

// teacherFree reports whether a slot sits inside the teacher's declared
// availability. A teacher with no declared windows is treated as available
// for the whole working grid.
func (ps *placementState) teacherFree(teacherID string, day models.DayOfWeek, slotIdx int) bool {
	weekly, known := ps.teacherAvail[teacherID]
	if !known || len(weekly) == 0 {
		return true
	}
	return fitsFreeSlot(weekly[day], ps.grid.slots[slotIdx])
}

func (ps *placementState) canPlace(d sessionDemand, day models.DayOfWeek, slotIdx int, roomID, teacherID string) bool {
	key := gridKey{day: day, slot: slotIdx}
	if ps.roomBusy[roomID][key] || ps.teacherBusy[teacherID][key] {
		return false
	}
	if d.course.GroupID != "" && ps.groupBusy[d.course.GroupID][key] {
		return false
	}
	teacher := ps.teacherByID[teacherID]
	if teacher.MaxWeeklyHours > 0 && ps.teacherMinutes[teacherID]+ps.grid.slotDuration > teacher.MaxWeeklyHours*60 {
		return false
	}
	if ps.availabilityHard && !ps.teacherFree(teacherID, day, slotIdx) {
		return false
	}
	return true
}

func markBusy(m map[string]map[gridKey]bool, id string, key gridKey, busy bool) {
	if id == "" {
		return
	}
	if m[id] == nil {
		m[id] = map[gridKey]bool{}
	}
	if busy {
		m[id][key] = true
	} else {
		delete(m[id], key)
	}
}

func (ps *placementState) place(demandIdx int, d sessionDemand, day models.DayOfWeek, slotIdx int, roomID, teacherID string) {
	key := gridKey{day: day, slot: slotIdx}
	markBusy(ps.roomBusy, roomID, key, true)
	markBusy(ps.teacherBusy, teacherID, key, true)
	markBusy(ps.groupBusy, d.course.GroupID, key, true)
	ps.teacherMinutes[teacherID] += ps.grid.slotDuration
	ps.placed = append(ps.placed, placement{demandIdx: demandIdx, day: day, slot: slotIdx, roomID: roomID, teacherID: teacherID})
}

// unplace undoes the most recent placement and returns it.
func (ps *placementState) unplace(demands []sessionDemand) placement {
	last := ps.placed[len(ps.placed)-1]
	ps.placed = ps.placed[:len(ps.placed)-1]
	key := gridKey{day: last.day, slot: last.slot}
	markBusy(ps.roomBusy, last.roomID, key, false)
	markBusy(ps.teacherBusy, last.teacherID, key, false)
	markBusy(ps.groupBusy, demands[last.demandIdx].course.GroupID, key, false)
	ps.teacherMinutes[last.teacherID] -= ps.grid.slotDuration
	return last
}

// sessions materialises the committed placements in deterministic order.
func (ps *placementState) sessions(demands []sessionDemand) []models.Session {
	return sessionsFromPlacements(ps.grid, demands, ps.placed)
}

func sessionsFromPlacements(grid gridConfig, demands []sessionDemand, placed []placement) []models.Session {
	ordered := make([]placement, len(placed))
	copy(ordered, placed)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].day != ordered[j].day {
			return ordered[i].day.Index() < ordered[j].day.Index()
		}
		if ordered[i].slot != ordered[j].slot {
			return ordered[i].slot < ordered[j].slot
		}
		return ordered[i].roomID < ordered[j].roomID
	})

	sessions := make([]models.Session, 0, len(ordered))
	for _, p := range ordered {
		slot := grid.slots[p.slot]
		course := demands[p.demandIdx].course
		sessions = append(sessions, models.Session{
			CourseID:  course.ID,
			TeacherID: p.teacherID,
			RoomID:    p.roomID,
			GroupID:   course.GroupID,
			DayOfWeek: p.day,
			StartTime: slot.StartClock(),
			EndTime:   slot.EndClock(),
		})
	}
	return sessions
}
