package stats

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Appender appends one row to the stats sheet.
type Appender interface {
	Append(ctx context.Context, values []any) error
}

// Exporter drains export jobs: it appends the stored row to the sheet with a
// small bounded retry count and linear backoff, then records the outcome.
type Exporter struct {
	db          *gorm.DB
	sheet       Appender
	maxAttempts int
	backoff     time.Duration
}

func NewExporter(db *gorm.DB, sheet Appender) *Exporter {
	return &Exporter{db: db, sheet: sheet, maxAttempts: 3, backoff: 2 * time.Second}
}

func (e *Exporter) Process(ctx context.Context, jobID string) error {
	_ = e.db.WithContext(ctx).Model(&ExportJob{}).
		Where("id = ? AND status = ?", jobID, JobQueued).
		Update("status", JobRunning).Error

	var job ExportJob
	if err := e.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		return err
	}
	if job.Status == JobSucceeded {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		lastErr = e.sheet.Append(ctx, Row(job.Row).Values())

		_ = e.db.WithContext(ctx).Model(&ExportJob{}).
			Where("id = ?", jobID).
			Update("attempts", gorm.Expr("attempts + 1")).Error

		if lastErr == nil {
			return e.db.WithContext(ctx).Model(&ExportJob{}).
				Where("id = ?", jobID).
				Updates(map[string]any{"status": JobSucceeded, "error": nil}).Error
		}

		if attempt < e.maxAttempts {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = e.maxAttempts
			case <-time.After(time.Duration(attempt) * e.backoff):
			}
		}
	}

	msg := lastErr.Error()
	_ = e.db.WithContext(ctx).Model(&ExportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{"status": JobFailed, "error": msg}).Error
	return lastErr
}
