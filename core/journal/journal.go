package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"netbox-reconciler/core/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned by Get when no run has the given ID.
var ErrNotFound = errors.New("run not found")

// Run is one recorded reconciliation.
type Run struct {
	ID         string    `gorm:"primaryKey;type:char(36)" json:"id"`
	Kind       string    `gorm:"size:64;index" json:"kind"`
	Key        string    `gorm:"size:255;index" json:"key"`
	Intent     string    `gorm:"size:16" json:"intent"`
	Action     string    `gorm:"size:16" json:"action"`
	Changed    bool      `json:"changed"`
	CheckMode  bool      `json:"check_mode"`
	Stage      string    `gorm:"size:16" json:"stage"`
	ErrorCode  string    `gorm:"size:32" json:"error_code,omitempty"`
	Message    string    `gorm:"type:text" json:"message"`
	Source     string    `gorm:"size:16" json:"source"`
	ReportKey  string    `gorm:"size:512" json:"report_key,omitempty"`
	StartedAt  time.Time `gorm:"index" json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// TableName overrides the table name used by Run.
func (Run) TableName() string {
	return "reconcile_runs"
}

var requiredColumns = []string{
	"id", "kind", "key", "intent", "action", "changed", "check_mode",
	"stage", "error_code", "message", "source", "report_key", "started_at", "duration_ms",
}

// Filter narrows a journal listing.
type Filter struct {
	Kind  string
	Key   string
	Limit int
}

// Journal persists runs through GORM.
type Journal struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a journal on db.
func New(db *gorm.DB, logger *zap.Logger) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{db: db, logger: logger}
}

// Migrate creates or updates the runs table and checks its columns.
func (j *Journal) Migrate(ctx context.Context) error {
	if err := j.db.WithContext(ctx).AutoMigrate(&Run{}); err != nil {
		return fmt.Errorf("failed to migrate journal: %w", err)
	}

	missing, err := database.MissingColumns(j.db.WithContext(ctx), Run{}.TableName(), requiredColumns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("journal table %s is missing columns: %v", Run{}.TableName(), missing)
	}
	return nil
}

// Record stores run, assigning an ID and start time when unset.
func (j *Journal) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	if err := j.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}

	j.logger.Debug("Run recorded",
		zap.String("run_id", run.ID),
		zap.String("kind", run.Kind),
		zap.String("action", run.Action),
	)
	return nil
}

// Recent returns the latest runs matching filter, newest first.
func (j *Journal) Recent(ctx context.Context, filter Filter) ([]Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	q := j.db.WithContext(ctx).Model(&Run{})
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.Key != "" {
		q = q.Where("`key` = ?", filter.Key)
	}

	var runs []Run
	if err := q.Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with the given ID.
func (j *Journal) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := j.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &run, nil
}
