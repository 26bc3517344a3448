// Package history keeps a log of finished delivery runs.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Run is one finished delivery run
type Run struct {
	ID          uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	StartedAt   time.Time `gorm:"index" json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Destination string    `json:"destination"` // title, or "operator chat"
	Episodes    int       `json:"episodes"`
	Delivered   int       `json:"delivered"`
	Failed      int       `json:"failed"`
	RateLimited int       `json:"rate_limited"`
	ForwardMode bool      `json:"forward_mode"`
	TagRemove   bool      `json:"tag_remove"`
	Error       string    `json:"error,omitempty"`
}

// TableName keeps the table name stable across struct renames.
func (Run) TableName() string {
	return "delivery_runs"
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// DefaultLimit is used by Recent when limit <= 0.
const DefaultLimit = 10

// MaxLimit caps Recent.
const MaxLimit = 100

// Repository handles delivery_runs table operations
type Repository struct {
	db *gorm.DB
}

// NewRepository creates the repository and migrates the table.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, fmt.Errorf("migrate delivery_runs: %w", err)
	}
	return &Repository{db: db}, nil
}

// Record stores a finished run. A zero ID is replaced with a new one.
func (r *Repository) Record(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	var runs []Run
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Count returns the number of recorded runs.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Run{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}
