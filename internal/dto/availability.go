package dto

import "github.com/acadsync/scheduler-api/pkg/interval"

// SetAvailabilityRequest declares or replaces a weekly availability window.
type SetAvailabilityRequest struct {
	ResourceID string `json:"resourceId" validate:"required"`
	DayOfWeek  string `json:"dayOfWeek" validate:"required"`
	StartTime  string `json:"startTime" validate:"required,len=5"`
	EndTime    string `json:"endTime" validate:"required,len=5"`
}

// AddBlockRequest subtracts a one-off window from a specific calendar day.
type AddBlockRequest struct {
	ResourceID string `json:"resourceId" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime  string `json:"startTime" validate:"required,len=5"`
	EndTime    string `json:"endTime" validate:"required,len=5"`
	Reason     string `json:"reason"`
}

// TimeRange is an interval rendered with HH:MM boundaries for API consumers.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ResolvedAvailabilityResponse lists free intervals plus the raw occupied and
// blocked inputs for audit visibility.
type ResolvedAvailabilityResponse struct {
	ResourceID string      `json:"resourceId"`
	Date       string      `json:"date"`
	DayOfWeek  string      `json:"dayOfWeek"`
	Free       []TimeRange `json:"free"`
	Occupied   []TimeRange `json:"occupied"`
	Blocked    []TimeRange `json:"blocked"`
}

// RangesFromIntervals converts minute intervals to HH:MM ranges.
func RangesFromIntervals(list []interval.Interval) []TimeRange {
	ranges := make([]TimeRange, 0, len(list))
	for _, iv := range list {
		ranges = append(ranges, TimeRange{Start: iv.StartClock(), End: iv.EndClock()})
	}
	return ranges
}
