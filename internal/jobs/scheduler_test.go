package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prep-study/pronto/internal/model"
)

// fakeJobStore keeps jobs in memory and mimics the repository's claim,
// reclaim and retry semantics.
type fakeJobStore struct {
	jobs         map[uint]*model.ScheduledJob
	runningSince map[uint]time.Time
	nextID       uint
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		jobs:         map[uint]*model.ScheduledJob{},
		runningSince: map[uint]time.Time{},
	}
}

func (f *fakeJobStore) add(job *model.ScheduledJob) *model.ScheduledJob {
	f.nextID++
	job.ID = f.nextID
	f.jobs[job.ID] = job
	return job
}

func (f *fakeJobStore) Create(_ context.Context, job *model.ScheduledJob) error {
	f.add(job)
	return nil
}

func (f *fakeJobStore) ClaimDue(_ context.Context, now time.Time, limit int) ([]model.ScheduledJob, error) {
	var claimed []model.ScheduledJob
	for id := uint(1); id <= f.nextID && len(claimed) < limit; id++ {
		job, ok := f.jobs[id]
		if !ok || job.Status != model.JobStatusPending || job.RunAt.After(now) {
			continue
		}
		job.Status = model.JobStatusRunning
		job.Attempts++
		f.runningSince[job.ID] = now
		claimed = append(claimed, *job)
	}
	return claimed, nil
}

func (f *fakeJobStore) ReclaimStale(_ context.Context, now time.Time, staleAfter time.Duration) (int64, error) {
	var reclaimed int64
	for id, job := range f.jobs {
		if job.Status != model.JobStatusRunning {
			continue
		}
		if since, ok := f.runningSince[id]; ok && !since.After(now.Add(-staleAfter)) {
			job.Status = model.JobStatusPending
			delete(f.runningSince, id)
			reclaimed++
		}
	}
	return reclaimed, nil
}

func (f *fakeJobStore) MarkDone(_ context.Context, id uint) error {
	job, ok := f.jobs[id]
	if !ok {
		return errors.New("job not found")
	}
	job.Status = model.JobStatusDone
	return nil
}

func (f *fakeJobStore) MarkFailed(_ context.Context, id uint, jobErr error, retryAt *time.Time) error {
	job, ok := f.jobs[id]
	if !ok {
		return errors.New("job not found")
	}
	job.LastError = jobErr.Error()
	if retryAt != nil {
		job.Status = model.JobStatusPending
		job.RunAt = *retryAt
		return nil
	}
	job.Status = model.JobStatusFailed
	return nil
}

func duePayload(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestScheduler_TickExecutesDueJob(t *testing.T) {
	store := newFakeJobStore()
	s := NewScheduler(store, time.Second)

	var got []byte
	s.Register("send_report", func(_ context.Context, payload []byte) error {
		got = payload
		return nil
	})

	payload := map[string]uint{"user_id": 7}
	if err := s.Schedule(context.Background(), "send_report", payload, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	s.tick(context.Background())

	if string(got) != string(duePayload(t, payload)) {
		t.Errorf("Handler received payload %s", got)
	}
	if store.jobs[1].Status != model.JobStatusDone {
		t.Errorf("Expected status done, got %q", store.jobs[1].Status)
	}
}

func TestScheduler_TickSkipsFutureJobs(t *testing.T) {
	store := newFakeJobStore()
	s := NewScheduler(store, time.Second)

	ran := false
	s.Register("later", func(context.Context, []byte) error {
		ran = true
		return nil
	})
	if err := s.Schedule(context.Background(), "later", nil, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	s.tick(context.Background())

	if ran {
		t.Error("A job before its run_at must not execute")
	}
	if store.jobs[1].Status != model.JobStatusPending {
		t.Errorf("Expected status pending, got %q", store.jobs[1].Status)
	}
}

func TestScheduler_TickReclaimsAbandonedJob(t *testing.T) {
	store := newFakeJobStore()
	s := NewScheduler(store, time.Second)

	ran := false
	s.Register("finalize", func(context.Context, []byte) error {
		ran = true
		return nil
	})

	// A worker claimed the job and died before acknowledging it.
	job := store.add(&model.ScheduledJob{
		Kind:   "finalize",
		RunAt:  time.Now().Add(-time.Hour),
		Status: model.JobStatusRunning,
	})
	store.runningSince[job.ID] = time.Now().Add(-time.Hour)

	s.tick(context.Background())

	if !ran {
		t.Error("Expected the abandoned job to be requeued and executed")
	}
	if job.Status != model.JobStatusDone {
		t.Errorf("Expected status done, got %q", job.Status)
	}
}

func TestScheduler_TickLeavesFreshRunningJobsAlone(t *testing.T) {
	store := newFakeJobStore()
	s := NewScheduler(store, time.Second)

	ran := false
	s.Register("finalize", func(context.Context, []byte) error {
		ran = true
		return nil
	})

	// Claimed moments ago by another worker that is still alive.
	job := store.add(&model.ScheduledJob{
		Kind:   "finalize",
		RunAt:  time.Now().Add(-time.Hour),
		Status: model.JobStatusRunning,
	})
	store.runningSince[job.ID] = time.Now()

	s.tick(context.Background())

	if ran {
		t.Error("A recently claimed job must not be stolen")
	}
	if job.Status != model.JobStatusRunning {
		t.Errorf("Expected status running, got %q", job.Status)
	}
}

func TestScheduler_FailedJobRetriesUntilMaxAttempts(t *testing.T) {
	store := newFakeJobStore()
	s := NewScheduler(store, time.Second)

	runs := 0
	s.Register("flaky", func(context.Context, []byte) error {
		runs++
		return errors.New("downstream unavailable")
	})
	if err := s.Schedule(context.Background(), "flaky", nil, time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	job := store.jobs[1]

	for i := 0; i < s.maxRetry; i++ {
		// Pull the retry back so the next tick sees it as due.
		job.RunAt = time.Now().Add(-time.Minute)
		s.tick(context.Background())
	}

	if runs != s.maxRetry {
		t.Errorf("Expected %d attempts, got %d", s.maxRetry, runs)
	}
	if job.Status != model.JobStatusFailed {
		t.Errorf("Expected status failed after retries, got %q", job.Status)
	}
	if job.LastError == "" {
		t.Error("Expected the last error to be recorded")
	}
}

func TestScheduler_UnknownKindMarksFailed(t *testing.T) {
	store := newFakeJobStore()
	s := NewScheduler(store, time.Second)

	if err := s.Schedule(context.Background(), "unregistered", nil, time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}

	s.tick(context.Background())

	if store.jobs[1].Status != model.JobStatusFailed {
		t.Errorf("Expected status failed, got %q", store.jobs[1].Status)
	}
}
