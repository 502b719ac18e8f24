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

// TimetableRepository persists generated timetables and their sessions.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// CreateWithSessions stores a timetable and its sessions in one transaction.
func (r *TimetableRepository) CreateWithSessions(ctx context.Context, timetable *models.Timetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	timetable.CreatedAt = now
	timetable.UpdatedAt = now
	if timetable.Status == "" {
		timetable.Status = models.TimetableStatusDraft
	}
	if len(timetable.Meta) == 0 {
		timetable.Meta = []byte("{}")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin timetable insert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertTimetable = `INSERT INTO timetables (id, name, status, score, meta, created_at, updated_at)
		VALUES (:id, :name, :status, :score, :meta, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertTimetable, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}

	const insertSession = `INSERT INTO sessions (id, timetable_id, course_id, teacher_id, room_id, group_id, day_of_week, start_time, end_time, created_at)
		VALUES (:id, :timetable_id, :course_id, :teacher_id, :room_id, :group_id, :day_of_week, :start_time, :end_time, :created_at)`
	for i := range timetable.Sessions {
		session := &timetable.Sessions[i]
		if session.ID == "" {
			session.ID = uuid.NewString()
		}
		session.TimetableID = timetable.ID
		session.CreatedAt = now
		if _, err = tx.NamedExecContext(ctx, insertSession, session); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit timetable insert: %w", err)
	}
	return nil
}

// FindByID loads a timetable with its sessions.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	const query = `SELECT id, name, status, score, meta, created_at, updated_at FROM timetables WHERE id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	const sessionsQuery = `SELECT id, timetable_id, course_id, teacher_id, room_id, group_id, day_of_week, start_time, end_time, created_at
		FROM sessions WHERE timetable_id = $1 ORDER BY day_of_week, start_time`
	if err := r.db.SelectContext(ctx, &timetable.Sessions, sessionsQuery, id); err != nil {
		return nil, fmt.Errorf("load timetable sessions: %w", err)
	}
	return &timetable, nil
}

// ListActiveSessionsByResourceDay returns active-timetable sessions that
// occupy a resource, teacher or room, on a weekday.
func (r *TimetableRepository) ListActiveSessionsByResourceDay(ctx context.Context, resourceID string, day models.DayOfWeek) ([]models.Session, error) {
	const query = `SELECT s.id, s.timetable_id, s.course_id, s.teacher_id, s.room_id, s.group_id, s.day_of_week, s.start_time, s.end_time, s.created_at
		FROM sessions s JOIN timetables t ON t.id = s.timetable_id
		WHERE (s.teacher_id = $1 OR s.room_id = $1) AND s.day_of_week = $2 AND t.status = $3 ORDER BY s.start_time`
	var list []models.Session
	if err := r.db.SelectContext(ctx, &list, query, resourceID, day, models.TimetableStatusActive); err != nil {
		return nil, fmt.Errorf("list resource sessions: %w", err)
	}
	return list, nil
}

// UpdateStatus transitions a timetable's lifecycle status.
func (r *TimetableRepository) UpdateStatus(ctx context.Context, id string, status models.TimetableStatus) error {
	const query = `UPDATE timetables SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update timetable status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceSessions rewrites a timetable's sessions after optimization.
func (r *TimetableRepository) ReplaceSessions(ctx context.Context, timetableID string, sessions []models.Session) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM sessions WHERE timetable_id = $1`, timetableID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}

	now := time.Now().UTC()
	const insertSession = `INSERT INTO sessions (id, timetable_id, course_id, teacher_id, room_id, group_id, day_of_week, start_time, end_time, created_at)
		VALUES (:id, :timetable_id, :course_id, :teacher_id, :room_id, :group_id, :day_of_week, :start_time, :end_time, :created_at)`
	for i := range sessions {
		session := sessions[i]
		if session.ID == "" {
			session.ID = uuid.NewString()
		}
		session.TimetableID = timetableID
		session.CreatedAt = now
		if _, err = tx.NamedExecContext(ctx, insertSession, session); err != nil {
			return fmt.Errorf("insert replacement session: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit session replace: %w", err)
	}
	return nil
}
