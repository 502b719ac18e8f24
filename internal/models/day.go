package models

import (
	"strings"
	"time"
)

// DayOfWeek names a weekday using full uppercase English names at the boundary.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

var dayNameIndex = map[DayOfWeek]int{
	Monday:    1,
	Tuesday:   2,
	Wednesday: 3,
	Thursday:  4,
	Friday:    5,
	Saturday:  6,
	Sunday:    7,
}

var dayIndexName = map[int]DayOfWeek{
	1: Monday,
	2: Tuesday,
	3: Wednesday,
	4: Thursday,
	5: Friday,
	6: Saturday,
	7: Sunday,
}

// ParseDay normalises a weekday name, returning false for unknown values.
func ParseDay(raw string) (DayOfWeek, bool) {
	day := DayOfWeek(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := dayNameIndex[day]
	return day, ok
}

// Index returns the ISO weekday index (Monday=1) or 0 for unknown days.
func (d DayOfWeek) Index() int {
	return dayNameIndex[d]
}

// DayFromIndex maps an ISO weekday index back to its name.
func DayFromIndex(idx int) (DayOfWeek, bool) {
	day, ok := dayIndexName[idx]
	return day, ok
}

// DayFromDate derives the weekday of a calendar date, UTC-normalised.
func DayFromDate(date time.Time) DayOfWeek {
	switch date.UTC().Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}
