package models

import "github.com/lib/pq"

// Course is a read-only collaborator record consumed by the generator.
type Course struct {
	ID               string         `db:"id" json:"id"`
	Code             string         `db:"code" json:"code"`
	Name             string         `db:"name" json:"name"`
	Credits          int            `db:"credits" json:"credits"`
	WeeklyHours      int            `db:"weekly_hours" json:"weekly_hours"`
	GroupID          string         `db:"group_id" json:"group_id,omitempty"`
	GroupSize        int            `db:"group_size" json:"group_size"`
	RequiredRoomType string         `db:"required_room_type" json:"required_room_type,omitempty"`
	PrerequisiteIDs  pq.StringArray `db:"prerequisite_ids" json:"prerequisite_ids,omitempty"`
}

// Teacher is a read-only collaborator record consumed by the generator.
type Teacher struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Qualifications pq.StringArray `db:"qualifications" json:"qualifications"`
	MaxWeeklyHours int            `db:"max_weekly_hours" json:"max_weekly_hours"`
	PreferredDays  pq.StringArray `db:"preferred_days" json:"preferred_days,omitempty"`
}

// QualifiedFor reports whether the teacher may teach the course.
// An empty qualification list means unrestricted.
func (t Teacher) QualifiedFor(courseID string) bool {
	if len(t.Qualifications) == 0 {
		return true
	}
	for _, id := range t.Qualifications {
		if id == courseID {
			return true
		}
	}
	return false
}

// PrefersDay reports whether the teacher favors working on the given day.
// An empty preference list means any day is equally fine.
func (t Teacher) PrefersDay(day DayOfWeek) bool {
	if len(t.PreferredDays) == 0 {
		return true
	}
	for _, d := range t.PreferredDays {
		if parsed, ok := ParseDay(d); ok && parsed == day {
			return true
		}
	}
	return false
}

// Room is a read-only collaborator record consumed by the generator.
type Room struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Capacity  int            `db:"capacity" json:"capacity"`
	Type      string         `db:"room_type" json:"type"`
	Equipment pq.StringArray `db:"equipment" json:"equipment,omitempty"`
}

// Suits reports whether the room satisfies a course's size and type needs.
func (r Room) Suits(groupSize int, requiredType string) bool {
	if groupSize > 0 && r.Capacity < groupSize {
		return false
	}
	if requiredType != "" && r.Type != requiredType {
		return false
	}
	return true
}
