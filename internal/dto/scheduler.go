package dto

import (
	"time"

	"github.com/acadsync/scheduler-api/internal/models"
)

// Strategy identifiers accepted at the wire level.
const (
	StrategyGreedy                 = "greedy"
	StrategyConstraintSatisfaction = "constraint_satisfaction"
	StrategyGenetic                = "genetic"
)

// GenerateScheduleRequest instructs the generator to place one batch of course
// sessions. Zero values fall back to the configured scheduler defaults.
type GenerateScheduleRequest struct {
	Name                    string   `json:"name"`
	Strategy                string   `json:"strategy" validate:"omitempty,oneof=greedy constraint_satisfaction genetic"`
	CourseIDs               []string `json:"courseIds" validate:"omitempty,dive,required"`
	WorkingDays             []string `json:"workingDays" validate:"omitempty,min=1,dive,required"`
	WorkStart               string   `json:"workStart" validate:"omitempty,len=5"`
	WorkEnd                 string   `json:"workEnd" validate:"omitempty,len=5"`
	SlotDurationMinutes     int      `json:"slotDurationMinutes" validate:"omitempty,min=15,max=240"`
	MaxIterations           int      `json:"maxIterations" validate:"omitempty,min=1"`
	BacktrackDepth          int      `json:"backtrackDepth" validate:"omitempty,min=1,max=16"`
	PopulationSize          int      `json:"populationSize" validate:"omitempty,min=2,max=500"`
	Generations             int      `json:"generations" validate:"omitempty,min=1,max=5000"`
	MutationRate            float64  `json:"mutationRate" validate:"omitempty,gt=0,lte=1"`
	Seed                    int64    `json:"seed"`
	TeacherAvailabilityHard *bool    `json:"teacherAvailabilityHard"`
}

// GenerationMetrics summarises one generation run.
type GenerationMetrics struct {
	Strategy      string        `json:"strategy"`
	ElapsedMillis int64         `json:"elapsedMillis"`
	Iterations    int           `json:"iterations"`
	Generations   int           `json:"generations,omitempty"`
	Placed        int           `json:"placed"`
	Unplaced      int           `json:"unplaced"`
	QualityScore  float64       `json:"qualityScore"`
	Elapsed       time.Duration `json:"-"`
}

// UnscheduledSession reports a session the generator could not place.
type UnscheduledSession struct {
	CourseID string `json:"courseId"`
	Reason   string `json:"reason"`
}

// GenerateScheduleResponse returns the built timetable and its diagnostics.
type GenerateScheduleResponse struct {
	Success     bool                  `json:"success"`
	Timetable   models.Timetable      `json:"timetable"`
	Unscheduled []UnscheduledSession  `json:"unscheduled"`
	Conflicts   models.ConflictReport `json:"conflicts"`
	Metrics     GenerationMetrics     `json:"metrics"`
}

// AsyncGenerateResponse acknowledges an accepted background generation.
type AsyncGenerateResponse struct {
	JobID         string `json:"jobId"`
	StatusURL     string `json:"statusUrl"`
	EstimatedTime string `json:"estimatedTime"`
}

// JobStatusResponse exposes the lifecycle of an async generation job.
type JobStatusResponse struct {
	JobID      string                    `json:"jobId"`
	Status     models.JobStatus          `json:"status"`
	Result     *GenerateScheduleResponse `json:"result,omitempty"`
	Error      string                    `json:"error,omitempty"`
	CreatedAt  time.Time                 `json:"createdAt"`
	StartedAt  *time.Time                `json:"startedAt,omitempty"`
	FinishedAt *time.Time                `json:"finishedAt,omitempty"`
}

// CancelJobResponse reports the outcome of a cancellation request.
type CancelJobResponse struct {
	Success bool             `json:"success"`
	Status  models.JobStatus `json:"status"`
}

// ValidateScheduleRequest carries an arbitrary schedule for re-validation.
type ValidateScheduleRequest struct {
	Sessions []models.Session `json:"sessions" validate:"required,min=1,dive"`
}

// OptimizeScheduleRequest asks for a bounded local-search pass.
type OptimizeScheduleRequest struct {
	Sessions      []models.Session `json:"sessions" validate:"required,min=1,dive"`
	MaxIterations int              `json:"maxIterations" validate:"omitempty,min=1"`
}

// OptimizeScheduleResponse returns the improved schedule and remaining conflicts.
type OptimizeScheduleResponse struct {
	Sessions  []models.Session      `json:"sessions"`
	Conflicts models.ConflictReport `json:"conflicts"`
	Moves     int                   `json:"moves"`
}
