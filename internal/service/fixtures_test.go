package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/acadsync/scheduler-api/internal/models"
	"github.com/acadsync/scheduler-api/internal/repository"
	"github.com/acadsync/scheduler-api/pkg/interval"
)

// stubResources serves static collaborator records.
type stubResources struct {
	courses  []models.Course
	teachers []models.Teacher
	rooms    []models.Room
}

func (s *stubResources) ListCourses(_ context.Context, ids []string) ([]models.Course, error) {
	if len(ids) == 0 {
		return s.courses, nil
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Course
	for _, course := range s.courses {
		if want[course.ID] {
			out = append(out, course)
		}
	}
	return out, nil
}

func (s *stubResources) ListTeachers(_ context.Context) ([]models.Teacher, error) {
	return s.teachers, nil
}

func (s *stubResources) ListRooms(_ context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

func (s *stubResources) GetRoom(_ context.Context, id string) (*models.Room, error) {
	for _, room := range s.rooms {
		if room.ID == id {
			r := room
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

// stubWeeklyAvail returns pre-built weekly windows per resource.
type stubWeeklyAvail struct {
	weekly map[string]map[models.DayOfWeek][]interval.Interval
}

func (s *stubWeeklyAvail) WeeklyFree(_ context.Context, resourceID string) (map[models.DayOfWeek][]interval.Interval, error) {
	if w, ok := s.weekly[resourceID]; ok {
		return w, nil
	}
	return map[models.DayOfWeek][]interval.Interval{}, nil
}

// stubAvailabilityStore backs AvailabilityService tests with fixed records.
type stubAvailabilityStore struct {
	active map[string]map[models.DayOfWeek]*models.Availability
	rows   []models.Availability
}

func (s *stubAvailabilityStore) GetActive(_ context.Context, resourceID string, day models.DayOfWeek) (*models.Availability, error) {
	if byDay, ok := s.active[resourceID]; ok {
		if record, ok := byDay[day]; ok {
			return record, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubAvailabilityStore) ListByResource(_ context.Context, resourceID string) ([]models.Availability, error) {
	var out []models.Availability
	for _, row := range s.rows {
		if row.ResourceID == resourceID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubAvailabilityStore) ReplaceActive(_ context.Context, availability *models.Availability) error {
	if s.active == nil {
		s.active = map[string]map[models.DayOfWeek]*models.Availability{}
	}
	if s.active[availability.ResourceID] == nil {
		s.active[availability.ResourceID] = map[models.DayOfWeek]*models.Availability{}
	}
	availability.IsActive = true
	s.active[availability.ResourceID][availability.DayOfWeek] = availability
	return nil
}

type stubBlockStore struct {
	blocks []models.Block
}

func (s *stubBlockStore) Create(_ context.Context, block *models.Block) error {
	s.blocks = append(s.blocks, *block)
	return nil
}

func (s *stubBlockStore) ListByResourceDate(_ context.Context, resourceID string, date time.Time) ([]models.Block, error) {
	var out []models.Block
	for _, block := range s.blocks {
		if block.ResourceID == resourceID && block.Date.Equal(date) {
			out = append(out, block)
		}
	}
	return out, nil
}

type stubSessionSource struct {
	sessions []models.Session
}

func (s *stubSessionSource) ListActiveSessionsByResourceDay(_ context.Context, resourceID string, day models.DayOfWeek) ([]models.Session, error) {
	var out []models.Session
	for _, session := range s.sessions {
		if session.DayOfWeek != day {
			continue
		}
		if session.RoomID == resourceID || session.TeacherID == resourceID {
			out = append(out, session)
		}
	}
	return out, nil
}

// stubBookingStore approves at most one booking per overlapping window, with
// the check-and-insert held under one lock to mirror the serializable
// transaction in the real repository.
type stubBookingStore struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newStubBookingStore() *stubBookingStore {
	return &stubBookingStore{bookings: map[string]*models.Booking{}}
}

func (s *stubBookingStore) CreateIfFree(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	window, err := interval.FromClock(booking.StartTime, booking.EndTime)
	if err != nil {
		return err
	}
	for _, existing := range s.bookings {
		if existing.RoomID != booking.RoomID || existing.Status != models.BookingStatusApproved {
			continue
		}
		if !existing.Date.Equal(booking.Date) {
			continue
		}
		occupied, err := interval.FromClock(existing.StartTime, existing.EndTime)
		if err != nil {
			continue
		}
		if interval.Overlaps(window, occupied) {
			return repository.ErrBookingOverlap
		}
	}
	copied := *booking
	s.bookings[booking.ID] = &copied
	return nil
}

func (s *stubBookingStore) FindByID(_ context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *booking
	return &copied, nil
}

func (s *stubBookingStore) ListApprovedByRoomDate(_ context.Context, roomID string, date time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, booking := range s.bookings {
		if booking.RoomID == roomID && booking.Status == models.BookingStatusApproved && booking.Date.Equal(date) {
			out = append(out, *booking)
		}
	}
	return out, nil
}

func (s *stubBookingStore) ListApprovedByResourceDate(_ context.Context, bookedBy string, date time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, booking := range s.bookings {
		if booking.Status != models.BookingStatusApproved || !booking.Date.Equal(date) {
			continue
		}
		if booking.BookedBy == bookedBy || booking.RoomID == bookedBy {
			out = append(out, *booking)
		}
	}
	return out, nil
}

func (s *stubBookingStore) List(_ context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, booking := range s.bookings {
		if filter.RoomID != "" && booking.RoomID != filter.RoomID {
			continue
		}
		if filter.Status != "" && booking.Status != filter.Status {
			continue
		}
		out = append(out, *booking)
	}
	return out, len(out), nil
}

func (s *stubBookingStore) UpdateStatus(_ context.Context, id string, status models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return sql.ErrNoRows
	}
	booking.Status = status
	return nil
}

type stubTimetableWriter struct {
	mu    sync.Mutex
	saved []*models.Timetable
}

func (s *stubTimetableWriter) CreateWithSessions(_ context.Context, timetable *models.Timetable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	timetable.ID = "tt-1"
	s.saved = append(s.saved, timetable)
	return nil
}

// stubResolver serves canned availability resolutions for meeting checks.
type stubResolver struct {
	resolved map[string]*ResolvedAvailability
}

func (s *stubResolver) Resolve(_ context.Context, resourceID string, date time.Time) (*ResolvedAvailability, error) {
	if r, ok := s.resolved[resourceID]; ok {
		return r, nil
	}
	return &ResolvedAvailability{
		ResourceID: resourceID,
		Date:       date.Format("2006-01-02"),
		DayOfWeek:  models.DayFromDate(date),
		Free:       []interval.Interval{},
		Occupied:   []interval.Interval{},
		Blocked:    []interval.Interval{},
	}, nil
}

func mustInterval(start, end string) interval.Interval {
	iv, err := interval.FromClock(start, end)
	if err != nil {
		panic(err)
	}
	return iv
}
