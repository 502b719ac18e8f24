package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	"github.com/acadsync/scheduler-api/pkg/config"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
	"github.com/acadsync/scheduler-api/pkg/interval"
)

type resourceReader interface {
	ListCourses(ctx context.Context, ids []string) ([]models.Course, error)
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
}

type weeklyAvailabilitySource interface {
	WeeklyFree(ctx context.Context, resourceID string) (map[models.DayOfWeek][]interval.Interval, error)
}

// ConflictService re-derives conflict reports for arbitrary schedules and
// runs a bounded local-search optimization pass.
type ConflictService struct {
	resources    resourceReader
	availability weeklyAvailabilitySource
	grid         gridConfig
	hardAvail    bool
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewConflictService wires the validator dependencies. The optimizer's move
// grid is derived from the configured working window.
func NewConflictService(
	resources resourceReader,
	availability weeklyAvailabilitySource,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.SchedulerConfig,
) (*ConflictService, error) {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	days := make([]models.DayOfWeek, 0, len(cfg.WorkingDays))
	for _, raw := range cfg.WorkingDays {
		day, ok := models.ParseDay(raw)
		if !ok {
			return nil, fmt.Errorf("unknown working day %q", raw)
		}
		days = append(days, day)
	}
	grid, err := buildGrid(days, cfg.WorkStart, cfg.WorkEnd, cfg.SlotDurationMinutes)
	if err != nil {
		return nil, err
	}
	return &ConflictService{
		resources:    resources,
		availability: availability,
		grid:         grid,
		hardAvail:    cfg.TeacherAvailabilityHard,
		validator:    validate,
		logger:       logger,
	}, nil
}

// Validate re-derives all pairwise conflicts for a schedule independently of
// its provenance.
func (s *ConflictService) Validate(ctx context.Context, req dto.ValidateScheduleRequest) (models.ConflictReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.ConflictReport{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validation payload")
	}
	sc, err := s.buildScheduleContext(ctx, req.Sessions)
	if err != nil {
		return models.ConflictReport{}, err
	}
	conflicts := detectScheduleConflicts(req.Sessions, sc)
	return models.BuildConflictReport(conflicts), nil
}

// Optimize runs a bounded local search seeded with the current assignment,
// moving only sessions implicated in a reported conflict.
func (s *ConflictService) Optimize(ctx context.Context, req dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimization payload")
	}
	maxMoves := req.MaxIterations
	if maxMoves <= 0 {
		maxMoves = 50
	}

	sessions := make([]models.Session, len(req.Sessions))
	copy(sessions, req.Sessions)
	ensureSessionKeys(sessions)

	sc, err := s.buildScheduleContext(ctx, sessions)
	if err != nil {
		return nil, err
	}

	conflicts := detectScheduleConflicts(sessions, sc)
	weight := conflictWeight(conflicts)
	moves := 0

	for moves < maxMoves && weight > 0 {
		if err := ctx.Err(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "optimization cancelled")
		}
		implicated := implicatedSessionKeys(conflicts)
		improved := false
		for idx := range sessions {
			if !implicated[sessionKey(sessions[idx])] {
				continue
			}
			candidate, ok := s.bestMoveFor(sessions, idx, sc, weight)
			if !ok {
				continue
			}
			sessions[idx] = candidate.session
			conflicts = candidate.conflicts
			weight = candidate.weight
			moves++
			improved = true
			break
		}
		if !improved {
			break
		}
	}

	report := models.BuildConflictReport(conflicts)
	return &dto.OptimizeScheduleResponse{Sessions: sessions, Conflicts: report, Moves: moves}, nil
}

type moveCandidate struct {
	session   models.Session
	conflicts []models.Conflict
	weight    float64
}

// bestMoveFor scans alternative (day, slot, room) placements for one session
// and returns the first that strictly lowers total conflict weight. The
// session keeps its original duration; only its start anchors to grid slots.
func (s *ConflictService) bestMoveFor(sessions []models.Session, idx int, sc scheduleContext, currentWeight float64) (moveCandidate, bool) {
	original := sessions[idx]
	course, hasCourse := sc.courses[original.CourseID]

	duration := s.grid.slotDuration
	if iv, ok := sessionInterval(original); ok {
		duration = iv.End - iv.Start
	}
	workEnd := s.grid.slots[len(s.grid.slots)-1].End

	roomIDs := make([]string, 0, len(sc.rooms)+1)
	roomIDs = append(roomIDs, original.RoomID)
	for id, room := range sc.rooms {
		if id == original.RoomID {
			continue
		}
		if hasCourse && !room.Suits(course.GroupSize, course.RequiredRoomType) {
			continue
		}
		roomIDs = append(roomIDs, id)
	}
	sort.Strings(roomIDs[1:])

	for _, day := range s.grid.days {
		for _, slot := range s.grid.slots {
			if slot.Start+duration > workEnd {
				break
			}
			for _, roomID := range roomIDs {
				if day == original.DayOfWeek && slot.StartClock() == original.StartTime && roomID == original.RoomID {
					continue
				}
				trial := original
				trial.DayOfWeek = day
				trial.StartTime = slot.StartClock()
				trial.EndTime = interval.Format(slot.Start + duration)
				trial.RoomID = roomID

				sessions[idx] = trial
				conflicts := detectScheduleConflicts(sessions, sc)
				weight := conflictWeight(conflicts)
				sessions[idx] = original
				if weight < currentWeight {
					return moveCandidate{session: trial, conflicts: conflicts, weight: weight}, true
				}
			}
		}
	}
	return moveCandidate{}, false
}

func (s *ConflictService) buildScheduleContext(ctx context.Context, sessions []models.Session) (scheduleContext, error) {
	sc := scheduleContext{
		courses:          map[string]models.Course{},
		rooms:            map[string]models.Room{},
		teacherAvail:     map[string]map[models.DayOfWeek][]interval.Interval{},
		roomAvail:        map[string]map[models.DayOfWeek][]interval.Interval{},
		availabilityHard: s.hardAvail,
	}

	courses, err := s.resources.ListCourses(ctx, nil)
	if err != nil {
		return sc, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	for _, course := range courses {
		sc.courses[course.ID] = course
	}

	rooms, err := s.resources.ListRooms(ctx)
	if err != nil {
		return sc, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	for _, room := range rooms {
		sc.rooms[room.ID] = room
	}

	seenTeacher := map[string]bool{}
	seenRoom := map[string]bool{}
	for _, session := range sessions {
		if session.TeacherID != "" && !seenTeacher[session.TeacherID] {
			seenTeacher[session.TeacherID] = true
			weekly, err := s.availability.WeeklyFree(ctx, session.TeacherID)
			if err != nil {
				return sc, err
			}
			sc.teacherAvail[session.TeacherID] = weekly
		}
		if session.RoomID != "" && !seenRoom[session.RoomID] {
			seenRoom[session.RoomID] = true
			weekly, err := s.availability.WeeklyFree(ctx, session.RoomID)
			if err != nil {
				return sc, err
			}
			sc.roomAvail[session.RoomID] = weekly
		}
	}
	return sc, nil
}

// --- Shared conflict derivation ---

type scheduleContext struct {
	courses          map[string]models.Course
	rooms            map[string]models.Room
	teacherAvail     map[string]map[models.DayOfWeek][]interval.Interval
	roomAvail        map[string]map[models.DayOfWeek][]interval.Interval
	availabilityHard bool
}

func sessionKey(s models.Session) string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("%s@%s/%s", s.CourseID, s.DayOfWeek, s.StartTime)
}

func ensureSessionKeys(sessions []models.Session) {
	for i := range sessions {
		if sessions[i].ID == "" {
			sessions[i].ID = sessionKey(sessions[i])
		}
	}
}

func sessionInterval(s models.Session) (interval.Interval, bool) {
	iv, err := interval.FromClock(s.StartTime, s.EndTime)
	if err != nil {
		return interval.Interval{}, false
	}
	return iv, true
}

// fitsFreeSlot is the subset test: the requested window must sit entirely
// inside at least one free interval.
func fitsFreeSlot(free []interval.Interval, requested interval.Interval) bool {
	for _, slot := range free {
		if interval.Contains(slot, requested) {
			return true
		}
	}
	return false
}

// detectScheduleConflicts computes the full conflict list for a schedule:
// pairwise room/teacher/group overlaps, teacher availability, room adequacy,
// and prerequisite co-scheduling.
func detectScheduleConflicts(sessions []models.Session, sc scheduleContext) []models.Conflict {
	var conflicts []models.Conflict

	addPairwise := func(kind models.ConflictType, keyOf func(models.Session) string, what string) {
		for i := 0; i < len(sessions); i++ {
			for j := i + 1; j < len(sessions); j++ {
				a, b := sessions[i], sessions[j]
				if a.DayOfWeek != b.DayOfWeek {
					continue
				}
				key := keyOf(a)
				if key == "" || key != keyOf(b) {
					continue
				}
				ivA, okA := sessionInterval(a)
				ivB, okB := sessionInterval(b)
				if !okA || !okB || !interval.Overlaps(ivA, ivB) {
					continue
				}
				conflicts = append(conflicts, models.Conflict{
					Type:     kind,
					Severity: models.DefaultSeverity(kind),
					Description: fmt.Sprintf("%s %s double-booked on %s between %s-%s and %s-%s",
						what, key, a.DayOfWeek, a.StartTime, a.EndTime, b.StartTime, b.EndTime),
					InvolvedIDs: []string{sessionKey(a), sessionKey(b)},
				})
			}
		}
	}

	addPairwise(models.ConflictRoomDoubleBooking, func(s models.Session) string { return s.RoomID }, "room")
	addPairwise(models.ConflictTeacherDoubleBooking, func(s models.Session) string { return s.TeacherID }, "teacher")
	addPairwise(models.ConflictGroupDoubleBooking, func(s models.Session) string { return s.GroupID }, "group")

	for _, session := range sessions {
		iv, ok := sessionInterval(session)
		if !ok {
			continue
		}

		if weekly, known := sc.teacherAvail[session.TeacherID]; known && len(weekly) > 0 {
			if !fitsFreeSlot(weekly[session.DayOfWeek], iv) {
				conflicts = append(conflicts, models.Conflict{
					Type:     models.ConflictTeacherUnavailable,
					Severity: models.DefaultSeverity(models.ConflictTeacherUnavailable),
					Description: fmt.Sprintf("teacher %s is not available on %s %s-%s",
						session.TeacherID, session.DayOfWeek, session.StartTime, session.EndTime),
					InvolvedIDs: []string{sessionKey(session)},
				})
			}
		}

		if weekly, known := sc.roomAvail[session.RoomID]; known && len(weekly) > 0 {
			if !fitsFreeSlot(weekly[session.DayOfWeek], iv) {
				conflicts = append(conflicts, models.Conflict{
					Type:     models.ConflictRoomUnavailable,
					Severity: models.DefaultSeverity(models.ConflictRoomUnavailable),
					Description: fmt.Sprintf("room %s is not available on %s %s-%s",
						session.RoomID, session.DayOfWeek, session.StartTime, session.EndTime),
					InvolvedIDs: []string{sessionKey(session)},
				})
			}
		}

		course, hasCourse := sc.courses[session.CourseID]
		room, hasRoom := sc.rooms[session.RoomID]
		if hasCourse && hasRoom {
			if course.GroupSize > 0 && room.Capacity < course.GroupSize {
				conflicts = append(conflicts, models.Conflict{
					Type:     models.ConflictCapacityExceeded,
					Severity: models.DefaultSeverity(models.ConflictCapacityExceeded),
					Description: fmt.Sprintf("room %s capacity %d below group size %d for course %s",
						session.RoomID, room.Capacity, course.GroupSize, course.Code),
					InvolvedIDs: []string{sessionKey(session)},
				})
			}
			if course.RequiredRoomType != "" && room.Type != course.RequiredRoomType {
				conflicts = append(conflicts, models.Conflict{
					Type:     models.ConflictRoomTypeMismatch,
					Severity: models.DefaultSeverity(models.ConflictRoomTypeMismatch),
					Description: fmt.Sprintf("room %s type %q does not match required %q for course %s",
						session.RoomID, room.Type, course.RequiredRoomType, course.Code),
					InvolvedIDs: []string{sessionKey(session)},
				})
			}
		}
	}

	conflicts = append(conflicts, detectDailyLoadConflicts(sessions)...)
	conflicts = append(conflicts, detectPrerequisiteConflicts(sessions, sc)...)
	return conflicts
}

// maxDailySessions is the per-teacher daily load above which a schedule is
// flagged, mirroring the generator's soft load objective.
const maxDailySessions = 4

// detectDailyLoadConflicts flags teachers assigned more than maxDailySessions
// sessions on a single day.
func detectDailyLoadConflicts(sessions []models.Session) []models.Conflict {
	type teacherDay struct {
		teacher string
		day     models.DayOfWeek
	}
	load := map[teacherDay][]string{}
	for _, session := range sessions {
		if session.TeacherID == "" {
			continue
		}
		key := teacherDay{teacher: session.TeacherID, day: session.DayOfWeek}
		load[key] = append(load[key], sessionKey(session))
	}

	var conflicts []models.Conflict
	for key, keys := range load {
		if len(keys) <= maxDailySessions {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			Type:     models.ConflictExcessiveDailyLoad,
			Severity: models.DefaultSeverity(models.ConflictExcessiveDailyLoad),
			Description: fmt.Sprintf("teacher %s has %d sessions on %s, above the daily limit of %d",
				key.teacher, len(keys), key.day, maxDailySessions),
			InvolvedIDs: keys,
		})
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Description < conflicts[j].Description })
	return conflicts
}

// detectPrerequisiteConflicts flags a group taking a course and one of its
// prerequisites in the same timetable.
func detectPrerequisiteConflicts(sessions []models.Session, sc scheduleContext) []models.Conflict {
	groupCourses := map[string]map[string]bool{}
	for _, session := range sessions {
		if session.GroupID == "" {
			continue
		}
		if groupCourses[session.GroupID] == nil {
			groupCourses[session.GroupID] = map[string]bool{}
		}
		groupCourses[session.GroupID][session.CourseID] = true
	}

	var conflicts []models.Conflict
	reported := map[string]bool{}
	for groupID, courseSet := range groupCourses {
		for courseID := range courseSet {
			course, ok := sc.courses[courseID]
			if !ok {
				continue
			}
			for _, prereq := range course.PrerequisiteIDs {
				if !courseSet[prereq] {
					continue
				}
				key := groupID + "/" + courseID + "/" + prereq
				if reported[key] {
					continue
				}
				reported[key] = true
				conflicts = append(conflicts, models.Conflict{
					Type:     models.ConflictPrerequisite,
					Severity: models.DefaultSeverity(models.ConflictPrerequisite),
					Description: fmt.Sprintf("group %s is scheduled for course %s and its prerequisite %s in the same timetable",
						groupID, courseID, prereq),
					InvolvedIDs: []string{groupID, courseID, prereq},
				})
			}
		}
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Description < conflicts[j].Description })
	return conflicts
}

func implicatedSessionKeys(conflicts []models.Conflict) map[string]bool {
	keys := map[string]bool{}
	for _, c := range conflicts {
		for _, id := range c.InvolvedIDs {
			keys[id] = true
		}
	}
	return keys
}

var severityWeights = map[models.Severity]float64{
	models.SeverityCritical: 25,
	models.SeverityHigh:     10,
	models.SeverityMedium:   4,
	models.SeverityLow:      1,
}

func conflictWeight(conflicts []models.Conflict) float64 {
	var total float64
	for _, c := range conflicts {
		total += severityWeights[c.Severity]
	}
	return total
}

// qualityScore derives the [0,100] schedule score from the conflict weight.
func qualityScore(conflicts []models.Conflict) float64 {
	score := 100 - conflictWeight(conflicts)
	if score < 0 {
		return 0
	}
	return score
}
