package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadsync/scheduler-api/internal/models"
)

// ErrBookingOverlap signals that another approved booking already occupies the
// requested window. Distinguished so the service can map it to a conflict.
var ErrBookingOverlap = fmt.Errorf("overlapping approved booking exists")

// BookingRepository persists room bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateIfFree inserts the booking only if no overlapping approved booking
// exists for the same room and date. The overlap re-check and the insert run
// inside one serializable transaction so two concurrent requests for the same
// window cannot both commit.
func (r *BookingRepository) CreateIfFree(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Status = models.BookingStatusApproved

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin booking insert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Fixed-width HH:MM strings compare correctly as text.
	const overlapQuery = `SELECT COUNT(1) FROM bookings
		WHERE room_id = $1 AND booking_date = $2 AND status = $3
		AND start_time < $4 AND end_time > $5`
	var overlapping int
	if err = tx.GetContext(ctx, &overlapping, overlapQuery,
		booking.RoomID,
		booking.Date.UTC().Format("2006-01-02"),
		models.BookingStatusApproved,
		booking.EndTime,
		booking.StartTime,
	); err != nil {
		return fmt.Errorf("check booking overlap: %w", err)
	}
	if overlapping > 0 {
		err = ErrBookingOverlap
		return err
	}

	const insert = `INSERT INTO bookings (id, room_id, booked_by, booking_date, start_time, end_time, status, created_at, updated_at)
		VALUES (:id, :room_id, :booked_by, :booking_date, :start_time, :end_time, :status, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insert, booking); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking insert: %w", err)
	}
	return nil
}

// FindByID loads a booking.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	const query = `SELECT id, room_id, booked_by, booking_date, start_time, end_time, status, created_at, updated_at
		FROM bookings WHERE id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListApprovedByRoomDate returns approved bookings for a room on a date.
func (r *BookingRepository) ListApprovedByRoomDate(ctx context.Context, roomID string, date time.Time) ([]models.Booking, error) {
	const query = `SELECT id, room_id, booked_by, booking_date, start_time, end_time, status, created_at, updated_at
		FROM bookings WHERE room_id = $1 AND booking_date = $2 AND status = $3 ORDER BY start_time`
	var list []models.Booking
	if err := r.db.SelectContext(ctx, &list, query, roomID, date.UTC().Format("2006-01-02"), models.BookingStatusApproved); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return list, nil
}

// ListApprovedByResourceDate returns approved bookings held by a participant
// on a date, used by the meeting fit check.
func (r *BookingRepository) ListApprovedByResourceDate(ctx context.Context, bookedBy string, date time.Time) ([]models.Booking, error) {
	const query = `SELECT id, room_id, booked_by, booking_date, start_time, end_time, status, created_at, updated_at
		FROM bookings WHERE booked_by = $1 AND booking_date = $2 AND status = $3 ORDER BY start_time`
	var list []models.Booking
	if err := r.db.SelectContext(ctx, &list, query, bookedBy, date.UTC().Format("2006-01-02"), models.BookingStatusApproved); err != nil {
		return nil, fmt.Errorf("list participant bookings: %w", err)
	}
	return list, nil
}

// List returns a filtered booking page with the total row count.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	where := "WHERE 1=1"
	args := map[string]interface{}{}
	if filter.RoomID != "" {
		where += " AND room_id = :room_id"
		args["room_id"] = filter.RoomID
	}
	if filter.BookedBy != "" {
		where += " AND booked_by = :booked_by"
		args["booked_by"] = filter.BookedBy
	}
	if filter.Date != nil {
		where += " AND booking_date = :booking_date"
		args["booking_date"] = filter.Date.UTC().Format("2006-01-02")
	}
	if filter.Status != "" {
		where += " AND status = :status"
		args["status"] = filter.Status
	}

	countQuery := "SELECT COUNT(1) FROM bookings " + where
	rows, err := r.db.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	var total int
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan booking count: %w", err)
		}
	}
	rows.Close()

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	args["limit"] = filter.PageSize
	args["offset"] = (filter.Page - 1) * filter.PageSize

	listQuery := `SELECT id, room_id, booked_by, booking_date, start_time, end_time, status, created_at, updated_at
		FROM bookings ` + where + ` ORDER BY booking_date, start_time LIMIT :limit OFFSET :offset`
	listRows, err := r.db.NamedQueryContext(ctx, listQuery, args)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer listRows.Close()

	var list []models.Booking
	for listRows.Next() {
		var booking models.Booking
		if err := listRows.StructScan(&booking); err != nil {
			return nil, 0, fmt.Errorf("scan booking: %w", err)
		}
		list = append(list, booking)
	}
	return list, total, nil
}

// UpdateStatus transitions a booking's status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	const query = `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("booking status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
