package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
	"github.com/acadsync/scheduler-api/pkg/interval"
)

type availabilityStore interface {
	GetActive(ctx context.Context, resourceID string, day models.DayOfWeek) (*models.Availability, error)
	ListByResource(ctx context.Context, resourceID string) ([]models.Availability, error)
	ReplaceActive(ctx context.Context, availability *models.Availability) error
}

type blockStore interface {
	Create(ctx context.Context, block *models.Block) error
	ListByResourceDate(ctx context.Context, resourceID string, date time.Time) ([]models.Block, error)
}

type occupiedSessionSource interface {
	ListActiveSessionsByResourceDay(ctx context.Context, resourceID string, day models.DayOfWeek) ([]models.Session, error)
}

// ResolvedAvailability is a resource's computed free time for one date, with
// the raw occupied and blocked inputs kept for caller diagnostics.
type ResolvedAvailability struct {
	ResourceID string              `json:"resource_id"`
	Date       string              `json:"date"`
	DayOfWeek  models.DayOfWeek    `json:"day_of_week"`
	Free       []interval.Interval `json:"free"`
	Occupied   []interval.Interval `json:"occupied"`
	Blocked    []interval.Interval `json:"blocked"`
}

// AvailabilityService resolves free intervals and manages availability records.
type AvailabilityService struct {
	availabilities availabilityStore
	blocks         blockStore
	sessions       occupiedSessionSource
	cache          *redis.Client
	cacheTTL       time.Duration
	validator      *validator.Validate
	logger         *zap.Logger
}

// AvailabilityServiceConfig tunes resolution caching.
type AvailabilityServiceConfig struct {
	CacheTTL time.Duration
}

// NewAvailabilityService wires the resolver dependencies. A nil cache client
// disables caching.
func NewAvailabilityService(
	availabilities availabilityStore,
	blocks blockStore,
	sessions occupiedSessionSource,
	cache *redis.Client,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg AvailabilityServiceConfig,
) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &AvailabilityService{
		availabilities: availabilities,
		blocks:         blocks,
		sessions:       sessions,
		cache:          cache,
		cacheTTL:       cfg.CacheTTL,
		validator:      validate,
		logger:         logger,
	}
}

// Resolve computes the free intervals for a resource on a calendar date:
// declared weekly availability minus active timetable sessions minus
// date-exact blocks. A resource with no availability record for the day
// yields an empty free set.
func (s *AvailabilityService) Resolve(ctx context.Context, resourceID string, date time.Time) (*ResolvedAvailability, error) {
	if resourceID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resource id is required")
	}
	date = date.UTC()
	day := models.DayFromDate(date)

	if cached := s.cacheGet(ctx, resourceID, date); cached != nil {
		return cached, nil
	}

	result := &ResolvedAvailability{
		ResourceID: resourceID,
		Date:       date.Format("2006-01-02"),
		DayOfWeek:  day,
		Free:       []interval.Interval{},
		Occupied:   []interval.Interval{},
		Blocked:    []interval.Interval{},
	}

	availability, err := s.availabilities.GetActive(ctx, resourceID, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	base, err := interval.FromClock(availability.StartTime, availability.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored availability window is malformed")
	}

	sessions, err := s.sessions.ListActiveSessionsByResourceDay(ctx, resourceID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occupying sessions")
	}
	for _, session := range sessions {
		iv, err := interval.FromClock(session.StartTime, session.EndTime)
		if err != nil {
			s.logger.Warn("skipping malformed session interval", zap.String("session_id", session.ID))
			continue
		}
		result.Occupied = append(result.Occupied, iv)
	}

	blocks, err := s.blocks.ListByResourceDate(ctx, resourceID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blocks")
	}
	for _, block := range blocks {
		iv, err := interval.FromClock(block.StartTime, block.EndTime)
		if err != nil {
			s.logger.Warn("skipping malformed block interval", zap.String("block_id", block.ID))
			continue
		}
		result.Blocked = append(result.Blocked, iv)
	}

	free := interval.Subtract([]interval.Interval{base}, result.Occupied)
	free = interval.Subtract(free, result.Blocked)
	result.Free = free

	s.cacheSet(ctx, resourceID, date, result)
	return result, nil
}

// WeeklyFree returns the declared availability per weekday for a resource,
// used by the generator, which schedules by weekday rather than date.
func (s *AvailabilityService) WeeklyFree(ctx context.Context, resourceID string) (map[models.DayOfWeek][]interval.Interval, error) {
	rows, err := s.availabilities.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability")
	}
	weekly := make(map[models.DayOfWeek][]interval.Interval, len(rows))
	for _, row := range rows {
		iv, err := interval.FromClock(row.StartTime, row.EndTime)
		if err != nil {
			s.logger.Warn("skipping malformed availability window", zap.String("availability_id", row.ID))
			continue
		}
		weekly[row.DayOfWeek] = interval.Merge(append(weekly[row.DayOfWeek], iv))
	}
	return weekly, nil
}

// SetAvailability declares or replaces the weekly window for a resource/day,
// keeping at most one active record per pair.
func (s *AvailabilityService) SetAvailability(ctx context.Context, req dto.SetAvailabilityRequest) (*models.Availability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	day, ok := models.ParseDay(req.DayOfWeek)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day of week %q", req.DayOfWeek))
	}
	if _, err := interval.FromClock(req.StartTime, req.EndTime); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability window")
	}

	availability := &models.Availability{
		ResourceID: req.ResourceID,
		DayOfWeek:  day,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	if err := s.availabilities.ReplaceActive(ctx, availability); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store availability")
	}
	s.InvalidateResource(ctx, req.ResourceID)
	return availability, nil
}

// AddBlock records a one-off exception for a specific calendar day.
func (s *AvailabilityService) AddBlock(ctx context.Context, req dto.AddBlockRequest) (*models.Block, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block payload")
	}
	if _, err := interval.FromClock(req.StartTime, req.EndTime); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block window")
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid block date, expected YYYY-MM-DD")
	}

	block := &models.Block{
		ResourceID: req.ResourceID,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Reason:     req.Reason,
	}
	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store block")
	}
	s.InvalidateResource(ctx, req.ResourceID)
	return block, nil
}

func availabilityCacheKey(resourceID string, date time.Time) string {
	return fmt.Sprintf("avail:%s:%s", resourceID, date.Format("2006-01-02"))
}

func (s *AvailabilityService) cacheGet(ctx context.Context, resourceID string, date time.Time) *ResolvedAvailability {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, availabilityCacheKey(resourceID, date)).Bytes()
	if err != nil {
		return nil
	}
	var resolved ResolvedAvailability
	if err := json.Unmarshal(raw, &resolved); err != nil {
		return nil
	}
	return &resolved
}

func (s *AvailabilityService) cacheSet(ctx context.Context, resourceID string, date time.Time, resolved *ResolvedAvailability) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(resolved)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, availabilityCacheKey(resourceID, date), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("availability cache write failed", zap.Error(err))
	}
}

// InvalidateResource drops every cached resolution for a resource. Called on
// availability writes and on timetable lifecycle changes.
func (s *AvailabilityService) InvalidateResource(ctx context.Context, resourceID string) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, fmt.Sprintf("avail:%s:*", resourceID), 100).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Debug("availability cache invalidation failed", zap.Error(err))
		}
	}
}
