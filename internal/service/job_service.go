package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	"github.com/acadsync/scheduler-api/pkg/config"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
	"github.com/acadsync/scheduler-api/pkg/jobs"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
}

type generationPayload struct {
	jobID   string
	request dto.GenerateScheduleRequest
}

// JobService runs schedule generation in the background and tracks each
// job's lifecycle in an in-memory registry. Finished results are kept for a
// configurable TTL and pruned by a janitor goroutine.
type JobService struct {
	generator scheduleGenerator
	queue     *jobs.Queue
	metrics   *MetricsService
	logger    *zap.Logger

	resultTTL  time.Duration
	pruneEvery time.Duration
	statusPath string

	mu      sync.Mutex
	entries map[string]*models.GenerationJob
	cancels map[string]context.CancelFunc
}

// NewJobService builds the job manager and its worker queue. Call Start
// before submitting and Stop on shutdown.
func NewJobService(generator scheduleGenerator, metrics *MetricsService, logger *zap.Logger, apiPrefix string, cfg config.JobsConfig) *JobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	if cfg.PruneEvery <= 0 {
		cfg.PruneEvery = 10 * time.Minute
	}
	s := &JobService{
		generator:  generator,
		metrics:    metrics,
		logger:     logger,
		resultTTL:  cfg.ResultTTL,
		pruneEvery: cfg.PruneEvery,
		statusPath: apiPrefix + "/schedule/jobs",
		entries:    map[string]*models.GenerationJob{},
		cancels:    map[string]context.CancelFunc{},
	}
	s.queue = jobs.NewQueue("schedule-generation", s.run, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the workers and the result janitor.
func (s *JobService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.janitor(ctx)
}

// Stop drains the workers.
func (s *JobService) Stop() {
	s.queue.Stop()
}

// SubmitAsync registers a pending job and enqueues it.
func (s *JobService) SubmitAsync(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.AsyncGenerateResponse, error) {
	id := uuid.NewString()
	entry := &models.GenerationJob{
		ID:        id,
		Status:    models.JobStatusPending,
		Options:   req,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.entries[id] = entry
	s.mu.Unlock()

	err := s.queue.Enqueue(jobs.Job{
		ID:      id,
		Type:    "schedule.generate",
		Payload: generationPayload{jobID: id, request: req},
	})
	if err != nil {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue generation job")
	}
	if s.metrics != nil {
		s.metrics.JobStarted()
	}

	return &dto.AsyncGenerateResponse{
		JobID:         id,
		StatusURL:     fmt.Sprintf("%s/%s", s.statusPath, id),
		EstimatedTime: "30s",
	}, nil
}

// GetStatus returns a snapshot of one job.
func (s *JobService) GetStatus(id string) (*dto.JobStatusResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "generation job not found")
	}
	resp := &dto.JobStatusResponse{
		JobID:      entry.ID,
		Status:     entry.Status,
		Error:      entry.Error,
		CreatedAt:  entry.CreatedAt,
		StartedAt:  entry.StartedAt,
		FinishedAt: entry.FinishedAt,
	}
	if result, ok := entry.Result.(*dto.GenerateScheduleResponse); ok {
		resp.Result = result
	}
	return resp, nil
}

// Cancel stops a pending job immediately and requests cooperative
// cancellation of a running one. Terminal jobs fail the precondition.
func (s *JobService) Cancel(id string) (*dto.CancelJobResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "generation job not found")
	}
	if entry.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("job is already %s", entry.Status))
	}

	switch entry.Status {
	case models.JobStatusPending:
		s.finishLocked(entry, models.JobStatusCancelled, nil, "cancelled before start")
	case models.JobStatusRunning:
		if cancel, ok := s.cancels[id]; ok {
			cancel()
		}
	}
	return &dto.CancelJobResponse{Success: true, Status: entry.Status}, nil
}

// run executes one queued generation. Failures are recorded on the entry and
// never returned; the registry is the single owner of job outcomes.
func (s *JobService) run(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(generationPayload)
	if !ok {
		s.logger.Error("unexpected job payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}

	s.mu.Lock()
	entry, exists := s.entries[payload.jobID]
	if !exists || entry.Status != models.JobStatusPending {
		s.mu.Unlock()
		return nil
	}
	now := time.Now().UTC()
	entry.Status = models.JobStatusRunning
	entry.StartedAt = &now
	runCtx, cancel := context.WithCancel(ctx)
	s.cancels[payload.jobID] = cancel
	s.mu.Unlock()
	defer cancel()

	result, err := s.generator.Generate(runCtx, payload.request)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cancels, payload.jobID)
	if entry.Status != models.JobStatusRunning {
		return nil
	}
	switch {
	case err == nil:
		s.finishLocked(entry, models.JobStatusCompleted, result, "")
	case runCtx.Err() != nil && ctx.Err() == nil:
		s.finishLocked(entry, models.JobStatusCancelled, nil, "cancelled while running")
	default:
		s.finishLocked(entry, models.JobStatusFailed, nil, err.Error())
	}
	return nil
}

func (s *JobService) finishLocked(entry *models.GenerationJob, status models.JobStatus, result *dto.GenerateScheduleResponse, errMsg string) {
	now := time.Now().UTC()
	entry.Status = status
	entry.FinishedAt = &now
	entry.Error = errMsg
	if result != nil {
		entry.Result = result
	}
	if s.metrics != nil {
		s.metrics.JobFinished()
	}
	s.logger.Info("generation job finished",
		zap.String("job_id", entry.ID),
		zap.String("status", string(status)),
	)
}

// janitor drops terminal jobs once their results outlive the TTL.
func (s *JobService) janitor(ctx context.Context) {
	ticker := time.NewTicker(s.pruneEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.prune(time.Now().UTC())
		}
	}
}

func (s *JobService) prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.entries {
		if entry.Status.Terminal() && entry.FinishedAt != nil && now.Sub(*entry.FinishedAt) > s.resultTTL {
			delete(s.entries, id)
		}
	}
}
