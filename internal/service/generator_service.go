package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	"github.com/acadsync/scheduler-api/pkg/config"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
	"github.com/acadsync/scheduler-api/pkg/interval"
)

type timetableWriter interface {
	CreateWithSessions(ctx context.Context, timetable *models.Timetable) error
}

// generationInput is the fully-resolved search problem handed to a strategy.
type generationInput struct {
	grid             gridConfig
	demands          []sessionDemand
	teachers         []models.Teacher
	teacherAvail     map[string]map[models.DayOfWeek][]interval.Interval
	availabilityHard bool

	maxIterations  int
	backtrackDepth int
	populationSize int
	generations    int
	mutationRate   float64
	seed           int64

	logger *zap.Logger
}

// strategyResult is what every strategy returns: committed sessions, demands
// it could not satisfy, and its work counters.
type strategyResult struct {
	sessions    []models.Session
	unscheduled []dto.UnscheduledSession
	iterations  int
	generations int
}

// generationStrategy is one closed member of the strategy registry.
type generationStrategy interface {
	Name() string
	Run(ctx context.Context, in *generationInput) (*strategyResult, error)
}

// GeneratorService places course sessions into (day, slot, room, teacher)
// tuples using a selectable strategy.
type GeneratorService struct {
	resources    resourceReader
	availability weeklyAvailabilitySource
	timetables   timetableWriter
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          config.SchedulerConfig
	strategies   map[string]generationStrategy
}

// NewGeneratorService wires the generator and resolves the strategy registry
// once at construction.
func NewGeneratorService(
	resources resourceReader,
	availability weeklyAvailabilitySource,
	timetables timetableWriter,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.SchedulerConfig,
) *GeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = dto.StrategyGreedy
	}
	s := &GeneratorService{
		resources:    resources,
		availability: availability,
		timetables:   timetables,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
	}
	s.strategies = map[string]generationStrategy{
		dto.StrategyGreedy:                 &greedyStrategy{},
		dto.StrategyConstraintSatisfaction: &backtrackingStrategy{},
		dto.StrategyGenetic:                &geneticStrategy{},
	}
	return s
}

// Generate runs one synchronous generation pass. Per-session unplaceability
// is reported data, never an error.
func (s *GeneratorService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}

	strategyName := req.Strategy
	if strategyName == "" {
		strategyName = s.cfg.DefaultStrategy
	}
	strategy, ok := s.strategies[strategyName]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown strategy %q", strategyName))
	}

	in, err := s.buildInput(ctx, req)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := strategy.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(started)

	sc := scheduleContext{
		courses:          map[string]models.Course{},
		rooms:            map[string]models.Room{},
		teacherAvail:     in.teacherAvail,
		roomAvail:        map[string]map[models.DayOfWeek][]interval.Interval{},
		availabilityHard: in.availabilityHard,
	}
	for _, d := range in.demands {
		sc.courses[d.course.ID] = d.course
	}
	rooms, err := s.resources.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	for _, room := range rooms {
		sc.rooms[room.ID] = room
	}
	for _, session := range result.sessions {
		if _, loaded := sc.roomAvail[session.RoomID]; loaded {
			continue
		}
		weekly, err := s.availability.WeeklyFree(ctx, session.RoomID)
		if err != nil {
			return nil, err
		}
		sc.roomAvail[session.RoomID] = weekly
	}

	conflicts := detectScheduleConflicts(result.sessions, sc)
	for _, item := range result.unscheduled {
		conflicts = append(conflicts, models.Conflict{
			Type:        models.ConflictUnscheduledSession,
			Severity:    models.DefaultSeverity(models.ConflictUnscheduledSession),
			Description: fmt.Sprintf("course %s: %s", item.CourseID, item.Reason),
			InvolvedIDs: []string{item.CourseID},
		})
	}
	report := models.BuildConflictReport(conflicts)
	score := qualityScore(conflicts)

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("timetable-%s", started.UTC().Format("20060102-150405"))
	}
	meta, _ := json.Marshal(map[string]interface{}{
		"strategy":    strategy.Name(),
		"iterations":  result.iterations,
		"generations": result.generations,
		"generatedAt": started.UTC(),
	})
	timetable := models.Timetable{
		Name:     name,
		Status:   models.TimetableStatusDraft,
		Score:    score,
		Meta:     meta,
		Sessions: result.sessions,
	}
	if s.timetables != nil {
		if err := s.timetables.CreateWithSessions(ctx, &timetable); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
		}
	}

	metrics := dto.GenerationMetrics{
		Strategy:      strategy.Name(),
		Elapsed:       elapsed,
		ElapsedMillis: elapsed.Milliseconds(),
		Iterations:    result.iterations,
		Generations:   result.generations,
		Placed:        len(result.sessions),
		Unplaced:      len(result.unscheduled),
		QualityScore:  score,
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration(strategy.Name(), elapsed, len(conflicts))
	}
	s.logger.Info("generation finished",
		zap.String("strategy", strategy.Name()),
		zap.Int("placed", metrics.Placed),
		zap.Int("unplaced", metrics.Unplaced),
		zap.Float64("score", score),
		zap.Duration("elapsed", elapsed),
	)

	return &dto.GenerateScheduleResponse{
		Success:     len(result.unscheduled) == 0 && report.CanProceed,
		Timetable:   timetable,
		Unscheduled: result.unscheduled,
		Conflicts:   report,
		Metrics:     metrics,
	}, nil
}

func (s *GeneratorService) buildInput(ctx context.Context, req dto.GenerateScheduleRequest) (*generationInput, error) {
	dayNames := req.WorkingDays
	if len(dayNames) == 0 {
		dayNames = s.cfg.WorkingDays
	}
	days := make([]models.DayOfWeek, 0, len(dayNames))
	for _, raw := range dayNames {
		day, ok := models.ParseDay(raw)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown working day %q", raw))
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workingDays must contain at least one day")
	}

	workStart := firstNonEmpty(req.WorkStart, s.cfg.WorkStart)
	workEnd := firstNonEmpty(req.WorkEnd, s.cfg.WorkEnd)
	slotMinutes := req.SlotDurationMinutes
	if slotMinutes <= 0 {
		slotMinutes = s.cfg.SlotDurationMinutes
	}
	grid, err := buildGrid(days, workStart, workEnd, slotMinutes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduling grid")
	}

	courses, err := s.resources.ListCourses(ctx, req.CourseIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	teachers, err := s.resources.ListTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	rooms, err := s.resources.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	if len(courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no courses to schedule")
	}
	if len(teachers) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no teachers available")
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no rooms available")
	}

	demands := buildDemands(courses, teachers, rooms, grid.slotDuration)
	if max := s.cfg.MaxSessionsPerRequest; max > 0 && len(demands) > max {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("request expands to %d sessions, above the %d limit", len(demands), max))
	}

	teacherAvail := make(map[string]map[models.DayOfWeek][]interval.Interval, len(teachers))
	for _, teacher := range teachers {
		weekly, err := s.availability.WeeklyFree(ctx, teacher.ID)
		if err != nil {
			return nil, err
		}
		teacherAvail[teacher.ID] = weekly
	}

	hard := s.cfg.TeacherAvailabilityHard
	if req.TeacherAvailabilityHard != nil {
		hard = *req.TeacherAvailabilityHard
	}

	in := &generationInput{
		grid:             grid,
		demands:          demands,
		teachers:         teachers,
		teacherAvail:     teacherAvail,
		availabilityHard: hard,
		maxIterations:    valueOrDefault(req.MaxIterations, s.cfg.MaxIterations, 5000),
		backtrackDepth:   valueOrDefault(req.BacktrackDepth, s.cfg.BacktrackDepth, 3),
		populationSize:   valueOrDefault(req.PopulationSize, s.cfg.PopulationSize, 40),
		generations:      valueOrDefault(req.Generations, s.cfg.Generations, 120),
		mutationRate:     req.MutationRate,
		seed:             req.Seed,
		logger:           s.logger,
	}
	if in.mutationRate <= 0 {
		in.mutationRate = s.cfg.MutationRate
	}
	if in.mutationRate <= 0 {
		in.mutationRate = 0.08
	}
	return in, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func valueOrDefault(value, configured, fallback int) int {
	if value > 0 {
		return value
	}
	if configured > 0 {
		return configured
	}
	return fallback
}
