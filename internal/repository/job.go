package repository

import (
	"context"
	"time"

	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *model.ScheduledJob) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to schedule job").
			String("kind", job.Kind).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Job scheduled").
		String("kind", job.Kind).
		Uint("job_id", job.ID).
		Any("run_at", job.RunAt).
		Log()

	return nil
}

// ClaimDue atomically moves due pending jobs to running and returns them.
// Row locking keeps two pollers from claiming the same job.
func (r *JobRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.ScheduledJob, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ClaimDue")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var jobs []model.ScheduledJob
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Raw(`SELECT * FROM scheduled_jobs
				WHERE status = ? AND run_at <= ? AND deleted_at IS NULL
				ORDER BY run_at
				LIMIT ?
				FOR UPDATE SKIP LOCKED`,
				model.JobStatusPending, now, limit).
			Scan(&jobs).Error; err != nil {
			return err
		}
		if len(jobs) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(jobs))
		for i := range jobs {
			ids = append(ids, jobs[i].ID)
		}
		return tx.Model(&model.ScheduledJob{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":   model.JobStatusRunning,
				"attempts": gorm.Expr("attempts + 1"),
			}).Error
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to claim due jobs").
			Err(err).
			Log()
		return nil, err
	}

	return jobs, nil
}

// ReclaimStale returns running jobs whose worker died back to pending so the
// next poll picks them up. A job still marked running after staleAfter is
// treated as abandoned.
func (r *JobRepository) ReclaimStale(ctx context.Context, now time.Time, staleAfter time.Duration) (int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ReclaimStale")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.ScheduledJob{}).
		Where("status = ? AND updated_at <= ?", model.JobStatusRunning, now.Add(-staleAfter)).
		Update("status", model.JobStatusPending)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to reclaim stale jobs").
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		logger.WarnWithContext(ctx, "Requeued abandoned running jobs").
			Int64("count", result.RowsAffected).
			Log()
	}

	return result.RowsAffected, nil
}

func (r *JobRepository) MarkDone(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.ScheduledJob{}).
		Where("id = ?", id).
		Update("status", model.JobStatusDone).Error
}

// MarkFailed records the error and either requeues the job or gives up.
func (r *JobRepository) MarkFailed(ctx context.Context, id uint, jobErr error, retryAt *time.Time) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "MarkFailed")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	updates := map[string]interface{}{
		"status":     model.JobStatusFailed,
		"last_error": jobErr.Error(),
	}
	if retryAt != nil {
		updates["status"] = model.JobStatusPending
		updates["run_at"] = *retryAt
	}

	if err := r.db.WithContext(ctx).Model(&model.ScheduledJob{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return err
	}

	logger.WarnWithContext(ctx, "Job attempt failed").
		Uint("job_id", id).
		Bool("will_retry", retryAt != nil).
		Err(jobErr).
		Log()

	return nil
}
