package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus represents lifecycle phases for generated timetables.
type TimetableStatus string

const (
	TimetableStatusDraft    TimetableStatus = "DRAFT"
	TimetableStatusActive   TimetableStatus = "ACTIVE"
	TimetableStatusArchived TimetableStatus = "ARCHIVED"
)

// Session is one placed unit of instruction inside a timetable.
type Session struct {
	ID          string    `db:"id" json:"id"`
	TimetableID string    `db:"timetable_id" json:"timetable_id,omitempty"`
	CourseID    string    `db:"course_id" json:"course_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	RoomID      string    `db:"room_id" json:"room_id"`
	GroupID     string    `db:"group_id" json:"group_id,omitempty"`
	DayOfWeek   DayOfWeek `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Timetable owns an ordered list of sessions for one generation run.
type Timetable struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Status    TimetableStatus `db:"status" json:"status"`
	Score     float64         `db:"score" json:"score"`
	Meta      types.JSONText  `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`

	Sessions []Session `db:"-" json:"sessions,omitempty"`
}
