package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
)

type timetableStore interface {
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	UpdateStatus(ctx context.Context, id string, status models.TimetableStatus) error
	ReplaceSessions(ctx context.Context, timetableID string, sessions []models.Session) error
}

type resourceInvalidator interface {
	InvalidateResource(ctx context.Context, resourceID string)
}

// TimetableService manages the lifecycle of stored timetables. Status changes
// and session rewrites alter active occupancy, so both invalidate the cached
// availability of every touched teacher and room.
type TimetableService struct {
	store       timetableStore
	invalidator resourceInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTimetableService wires the lifecycle service.
func NewTimetableService(store timetableStore, invalidator resourceInvalidator, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{store: store, invalidator: invalidator, validator: validate, logger: logger}
}

// Get loads a timetable with its sessions.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.Timetable, error) {
	timetable, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return timetable, nil
}

// UpdateStatus activates or archives a timetable. The transition is rejected
// when the timetable already carries the requested status.
func (s *TimetableService) UpdateStatus(ctx context.Context, id string, req dto.UpdateTimetableStatusRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	timetable, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if timetable.Status == req.Status {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "timetable already has status "+string(req.Status))
	}
	if err := s.store.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable status")
	}
	timetable.Status = req.Status
	s.invalidateSessions(ctx, timetable.Sessions)
	s.logger.Info("timetable status changed",
		zap.String("timetable_id", id), zap.String("status", string(req.Status)))
	return timetable, nil
}

// ReplaceSessions rewrites a timetable's sessions, typically with the output
// of an optimization pass.
func (s *TimetableService) ReplaceSessions(ctx context.Context, id string, req dto.ReplaceSessionsRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sessions payload")
	}
	timetable, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceSessions(ctx, id, req.Sessions); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace timetable sessions")
	}
	// Both the displaced and the replacement sessions change occupancy.
	s.invalidateSessions(ctx, timetable.Sessions)
	s.invalidateSessions(ctx, req.Sessions)
	timetable.Sessions = req.Sessions
	return timetable, nil
}

func (s *TimetableService) invalidateSessions(ctx context.Context, sessions []models.Session) {
	if s.invalidator == nil {
		return
	}
	seen := map[string]bool{}
	for _, session := range sessions {
		for _, resourceID := range []string{session.TeacherID, session.RoomID} {
			if resourceID == "" || seen[resourceID] {
				continue
			}
			seen[resourceID] = true
			s.invalidator.InvalidateResource(ctx, resourceID)
		}
	}
}
