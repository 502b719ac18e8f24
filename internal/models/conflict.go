package models

// ConflictType classifies a collision between scheduled items.
type ConflictType string

const (
	ConflictRoomDoubleBooking    ConflictType = "room_double_booking"
	ConflictTeacherDoubleBooking ConflictType = "teacher_double_booking"
	ConflictGroupDoubleBooking   ConflictType = "group_double_booking"
	ConflictTeacherUnavailable   ConflictType = "teacher_unavailable"
	ConflictRoomUnavailable      ConflictType = "room_unavailable"
	ConflictCapacityExceeded     ConflictType = "capacity_exceeded"
	ConflictRoomTypeMismatch     ConflictType = "room_type_mismatch"
	ConflictPrerequisite         ConflictType = "prerequisite_violation"
	ConflictUnscheduledSession   ConflictType = "unscheduled_session"
	ConflictExcessiveDailyLoad   ConflictType = "excessive_daily_load"
)

// Severity ranks a conflict's blocking weight.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

var severityRank = map[Severity]int{
	SeverityCritical: 4,
	SeverityHigh:     3,
	SeverityMedium:   2,
	SeverityLow:      1,
}

// Rank returns the numeric weight of a severity, higher blocking harder.
func (s Severity) Rank() int {
	return severityRank[s]
}

// DefaultSeverity maps each conflict type to its baseline severity.
func DefaultSeverity(t ConflictType) Severity {
	switch t {
	case ConflictRoomDoubleBooking, ConflictTeacherDoubleBooking, ConflictGroupDoubleBooking:
		return SeverityCritical
	case ConflictTeacherUnavailable, ConflictRoomUnavailable, ConflictUnscheduledSession:
		return SeverityHigh
	case ConflictCapacityExceeded, ConflictRoomTypeMismatch, ConflictPrerequisite:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Conflict is one typed, severity-ranked collision.
type Conflict struct {
	Type        ConflictType `json:"type"`
	Severity    Severity     `json:"severity"`
	Description string       `json:"description"`
	InvolvedIDs []string     `json:"involved_ids,omitempty"`
}

// ConflictReport aggregates conflicts for a schedule. Never persisted apart
// from the schedule it describes.
type ConflictReport struct {
	Conflicts      []Conflict       `json:"conflicts"`
	Summary        map[Severity]int `json:"summary"`
	CanProceed     bool             `json:"can_proceed"`
	RequiresReview bool             `json:"requires_review"`
}

// BuildConflictReport derives summary counts and the proceed/review flags.
func BuildConflictReport(conflicts []Conflict) ConflictReport {
	report := ConflictReport{
		Conflicts:  conflicts,
		Summary:    make(map[Severity]int),
		CanProceed: true,
	}
	for _, c := range conflicts {
		report.Summary[c.Severity]++
		if c.Severity == SeverityCritical {
			report.CanProceed = false
		}
		if c.Severity.Rank() >= SeverityHigh.Rank() {
			report.RequiresReview = true
		}
	}
	return report
}
