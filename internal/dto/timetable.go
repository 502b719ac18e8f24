package dto

import "github.com/acadsync/scheduler-api/internal/models"

// UpdateTimetableStatusRequest transitions a timetable between lifecycle
// phases. Only ACTIVE and ARCHIVED are reachable through the API; drafts are
// created by generation runs.
type UpdateTimetableStatusRequest struct {
	Status models.TimetableStatus `json:"status" validate:"required,oneof=ACTIVE ARCHIVED"`
}

// ReplaceSessionsRequest persists an optimized session set onto an existing
// timetable, replacing whatever it held.
type ReplaceSessionsRequest struct {
	Sessions []models.Session `json:"sessions" validate:"required,min=1,dive"`
}
