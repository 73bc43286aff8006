package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prep-study/pronto/internal/model"
	"github.com/prep-study/pronto/pkg/logger"
	"gorm.io/datatypes"
)

// Handler executes one job kind. Handlers must be idempotent: a job can run
// again after a crash between execution and acknowledgement.
type Handler func(ctx context.Context, payload []byte) error

type jobStore interface {
	Create(ctx context.Context, job *model.ScheduledJob) error
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.ScheduledJob, error)
	ReclaimStale(ctx context.Context, now time.Time, staleAfter time.Duration) (int64, error)
	MarkDone(ctx context.Context, id uint) error
	MarkFailed(ctx context.Context, id uint, jobErr error, retryAt *time.Time) error
}

// Scheduler persists deferred work and polls for due jobs. Pending jobs
// survive restarts because they live in the database, not in memory, and jobs
// abandoned mid-run by a crashed worker are requeued after staleAfter.
type Scheduler struct {
	repo       jobStore
	interval   time.Duration
	staleAfter time.Duration
	maxRetry   int

	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewScheduler(repo jobStore, interval time.Duration) *Scheduler {
	return &Scheduler{
		repo:       repo,
		interval:   interval,
		staleAfter: 5 * time.Minute,
		maxRetry:   3,
		handlers:   make(map[string]Handler),
	}
}

// Register binds a handler to a job kind. Must be called before Run.
func (s *Scheduler) Register(kind string, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[kind] = handler
}

// Schedule persists a job to run at or after notBefore.
func (s *Scheduler) Schedule(ctx context.Context, kind string, payload interface{}, notBefore time.Time) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	job := &model.ScheduledJob{
		Kind:    kind,
		Payload: datatypes.JSON(data),
		RunAt:   notBefore,
		Status:  model.JobStatusPending,
	}
	return s.repo.Create(ctx, job)
}

// Run polls for due jobs until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	logger.GetLogger().Info("Job scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.GetLogger().Info("Job scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.repo.ReclaimStale(ctx, time.Now(), s.staleAfter); err != nil {
		logger.ErrorWithContext(ctx, "Failed to reclaim stale jobs").
			Err(err).
			Log()
	}

	jobs, err := s.repo.ClaimDue(ctx, time.Now(), 50)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to poll due jobs").
			Err(err).
			Log()
		return
	}

	for i := range jobs {
		s.execute(ctx, &jobs[i])
	}
}

func (s *Scheduler) execute(ctx context.Context, job *model.ScheduledJob) {
	s.mu.RLock()
	handler, ok := s.handlers[job.Kind]
	s.mu.RUnlock()

	if !ok {
		logger.WarnWithContext(ctx, "No handler registered for job kind").
			String("kind", job.Kind).
			Uint("job_id", job.ID).
			Log()
		_ = s.repo.MarkFailed(ctx, job.ID, fmt.Errorf("no handler for kind %s", job.Kind), nil)
		return
	}

	if err := handler(ctx, []byte(job.Payload)); err != nil {
		var retryAt *time.Time
		if job.Attempts < s.maxRetry {
			t := time.Now().Add(s.interval * time.Duration(job.Attempts))
			retryAt = &t
		}
		_ = s.repo.MarkFailed(ctx, job.ID, err, retryAt)
		return
	}

	if err := s.repo.MarkDone(ctx, job.ID); err != nil {
		logger.ErrorWithContext(ctx, "Failed to mark job done").
			Uint("job_id", job.ID).
			Err(err).
			Log()
		return
	}

	logger.InfoWithContext(ctx, "Job executed").
		String("kind", job.Kind).
		Uint("job_id", job.ID).
		Log()
}
