package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/acadsync/scheduler-api/internal/models"
)

// ResourceRepository reads the collaborator-owned course, teacher, and room
// records the scheduler consumes.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository constructs the repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// ListCourses returns all courses, or only the given ids when provided.
func (r *ResourceRepository) ListCourses(ctx context.Context, ids []string) ([]models.Course, error) {
	query := `SELECT id, code, name, credits, weekly_hours, group_id, group_size, required_room_type, prerequisite_ids FROM courses`
	var list []models.Course
	var err error
	if len(ids) > 0 {
		err = r.db.SelectContext(ctx, &list, query+` WHERE id = ANY($1) ORDER BY code`, pq.Array(ids))
	} else {
		err = r.db.SelectContext(ctx, &list, query+` ORDER BY code`)
	}
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return list, nil
}

// ListTeachers returns all teachers.
func (r *ResourceRepository) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT id, name, qualifications, max_weekly_hours, preferred_days FROM teachers ORDER BY id`
	var list []models.Teacher
	if err := r.db.SelectContext(ctx, &list, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return list, nil
}

// ListRooms returns all rooms.
func (r *ResourceRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, capacity, room_type, equipment FROM rooms ORDER BY id`
	var list []models.Room
	if err := r.db.SelectContext(ctx, &list, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return list, nil
}

// GetRoom loads a single room.
func (r *ResourceRepository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	const query = `SELECT id, name, capacity, room_type, equipment FROM rooms WHERE id = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}
