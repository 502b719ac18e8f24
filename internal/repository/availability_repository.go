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

// AvailabilityRepository persists weekly availability declarations.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// GetActive returns the single active record for a resource and day, or
// sql.ErrNoRows when none exists.
func (r *AvailabilityRepository) GetActive(ctx context.Context, resourceID string, day models.DayOfWeek) (*models.Availability, error) {
	const query = `SELECT id, resource_id, day_of_week, start_time, end_time, is_active, created_at, updated_at
		FROM availabilities WHERE resource_id = $1 AND day_of_week = $2 AND is_active = TRUE`
	var availability models.Availability
	if err := r.db.GetContext(ctx, &availability, query, resourceID, day); err != nil {
		return nil, err
	}
	return &availability, nil
}

// ListByResource returns all active availability rows for a resource.
func (r *AvailabilityRepository) ListByResource(ctx context.Context, resourceID string) ([]models.Availability, error) {
	const query = `SELECT id, resource_id, day_of_week, start_time, end_time, is_active, created_at, updated_at
		FROM availabilities WHERE resource_id = $1 AND is_active = TRUE ORDER BY day_of_week`
	var list []models.Availability
	if err := r.db.SelectContext(ctx, &list, query, resourceID); err != nil {
		return nil, fmt.Errorf("list availabilities: %w", err)
	}
	return list, nil
}

// ReplaceActive deactivates any previous active row for the (resource, day)
// pair and inserts the new one inside a single transaction, preserving the
// one-active-record invariant.
func (r *AvailabilityRepository) ReplaceActive(ctx context.Context, availability *models.Availability) error {
	if availability.ID == "" {
		availability.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if availability.CreatedAt.IsZero() {
		availability.CreatedAt = now
	}
	availability.UpdatedAt = now
	availability.IsActive = true

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin replace availability: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const deactivate = `UPDATE availabilities SET is_active = FALSE, updated_at = $3
		WHERE resource_id = $1 AND day_of_week = $2 AND is_active = TRUE`
	if _, err = tx.ExecContext(ctx, deactivate, availability.ResourceID, availability.DayOfWeek, now); err != nil {
		return fmt.Errorf("deactivate availability: %w", err)
	}

	const insert = `INSERT INTO availabilities (id, resource_id, day_of_week, start_time, end_time, is_active, created_at, updated_at)
		VALUES (:id, :resource_id, :day_of_week, :start_time, :end_time, :is_active, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insert, availability); err != nil {
		return fmt.Errorf("insert availability: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace availability: %w", err)
	}
	return nil
}
