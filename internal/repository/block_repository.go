package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadsync/scheduler-api/internal/models"
)

// BlockRepository persists one-off availability exceptions.
type BlockRepository struct {
	db *sqlx.DB
}

// NewBlockRepository constructs the repository.
func NewBlockRepository(db *sqlx.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// Create inserts a block.
func (r *BlockRepository) Create(ctx context.Context, block *models.Block) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO blocks (id, resource_id, block_date, start_time, end_time, reason, created_at)
		VALUES (:id, :resource_id, :block_date, :start_time, :end_time, :reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("insert block: %w", err)
	}
	return nil
}

// ListByResourceDate returns blocks for a resource on an exact calendar date.
func (r *BlockRepository) ListByResourceDate(ctx context.Context, resourceID string, date time.Time) ([]models.Block, error) {
	const query = `SELECT id, resource_id, block_date, start_time, end_time, reason, created_at
		FROM blocks WHERE resource_id = $1 AND block_date = $2 ORDER BY start_time`
	var list []models.Block
	if err := r.db.SelectContext(ctx, &list, query, resourceID, date.UTC().Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return list, nil
}
