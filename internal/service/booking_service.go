package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	"github.com/acadsync/scheduler-api/internal/repository"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
	"github.com/acadsync/scheduler-api/pkg/interval"
)

type bookingStore interface {
	CreateIfFree(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	ListApprovedByRoomDate(ctx context.Context, roomID string, date time.Time) ([]models.Booking, error)
	ListApprovedByResourceDate(ctx context.Context, bookedBy string, date time.Time) ([]models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
}

type roomReader interface {
	GetRoom(ctx context.Context, id string) (*models.Room, error)
}

type availabilityResolver interface {
	Resolve(ctx context.Context, resourceID string, date time.Time) (*ResolvedAvailability, error)
}

// BookingService manages ad hoc room reservations on top of the active
// timetable. Overlap with an approved booking or an active session rejects
// the request.
type BookingService struct {
	bookings     bookingStore
	rooms        roomReader
	sessions     occupiedSessionSource
	availability availabilityResolver
	validator    *validator.Validate
	logger       *zap.Logger
}

func NewBookingService(
	bookings bookingStore,
	rooms roomReader,
	sessions occupiedSessionSource,
	availability availabilityResolver,
	validate *validator.Validate,
	logger *zap.Logger,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		bookings:     bookings,
		rooms:        rooms,
		sessions:     sessions,
		availability: availability,
		validator:    validate,
		logger:       logger,
	}
}

// Create reserves a room if and only if no approved booking and no active
// timetable session occupies an overlapping window on that date. The final
// booking-versus-booking check runs inside a serializable transaction so two
// concurrent requests for the same window cannot both succeed.
func (s *BookingService) Create(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	window, err := interval.FromClock(req.StartTime, req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking window")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	if _, err := s.rooms.GetRoom(ctx, req.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	day := models.DayFromDate(date)
	sessions, err := s.sessions.ListActiveSessionsByResourceDay(ctx, req.RoomID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room sessions")
	}
	for _, session := range sessions {
		occupied, ok := sessionInterval(session)
		if ok && interval.Overlaps(window, occupied) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "room is occupied by a scheduled session in that window")
		}
	}

	booking := &models.Booking{
		ID:        uuid.NewString(),
		RoomID:    req.RoomID,
		BookedBy:  req.BookedBy,
		Date:      date,
		StartTime: window.StartClock(),
		EndTime:   window.EndClock(),
		Status:    models.BookingStatusApproved,
	}
	if err := s.bookings.CreateIfFree(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrBookingOverlap) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "an approved booking already occupies that window")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("room_id", booking.RoomID),
		zap.String("date", req.Date),
	)
	return booking, nil
}

// Cancel moves an approved booking to cancelled. Cancelling a cancelled
// booking fails the precondition.
func (s *BookingService) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	if booking.Status != models.BookingStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only approved bookings can be cancelled")
	}
	if err := s.bookings.UpdateStatus(ctx, id, models.BookingStatusCancelled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel booking")
	}
	booking.Status = models.BookingStatusCancelled
	return booking, nil
}

// List pages bookings by the query filters.
func (s *BookingService) List(ctx context.Context, query dto.BookingQuery) (*dto.BookingListResponse, error) {
	filter := models.BookingFilter{
		RoomID:   query.RoomID,
		BookedBy: query.BookedBy,
		Status:   models.BookingStatus(query.Status),
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Date != "" {
		date, err := time.Parse("2006-01-02", query.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		filter.Date = &date
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	bookings, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	totalPages := (total + filter.PageSize - 1) / filter.PageSize
	return &dto.BookingListResponse{
		Bookings: bookings,
		Pagination: models.Pagination{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}, nil
}

// CheckMeeting reports whether every listed resource is simultaneously free
// for the requested window on the given date, considering availability,
// active sessions, blocks and approved bookings.
func (s *BookingService) CheckMeeting(ctx context.Context, resourceIDs []string, dateRaw, startTime, endTime string) (bool, []string, error) {
	if len(resourceIDs) == 0 {
		return false, nil, appErrors.Clone(appErrors.ErrValidation, "at least one resource id is required")
	}
	window, err := interval.FromClock(startTime, endTime)
	if err != nil {
		return false, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting window")
	}
	date, err := time.Parse("2006-01-02", dateRaw)
	if err != nil {
		return false, nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	var busy []string
	for _, resourceID := range resourceIDs {
		resolved, err := s.availability.Resolve(ctx, resourceID, date)
		if err != nil {
			return false, nil, err
		}
		free := fitsFreeSlot(resolved.Free, window)
		if free {
			bookings, err := s.bookings.ListApprovedByResourceDate(ctx, resourceID, date)
			if err != nil {
				return false, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings")
			}
			for _, booking := range bookings {
				occupied, err := interval.FromClock(booking.StartTime, booking.EndTime)
				if err == nil && interval.Overlaps(window, occupied) {
					free = false
					break
				}
			}
		}
		if !free {
			busy = append(busy, resourceID)
		}
	}
	return len(busy) == 0, busy, nil
}
