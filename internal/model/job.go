package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Scheduled job statuses.
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// Scheduled job kinds.
const (
	JobKindFinalizeAccountDeletion = "finalize_account_deletion"
)

// ScheduledJob is a durable unit of deferred work. Jobs survive restarts and
// are claimed by the poller once RunAt has passed.
type ScheduledJob struct {
	gorm.Model
	Kind      string         `gorm:"column:kind;size:64;not null;index:idx_jobs_due"`
	Payload   datatypes.JSON `gorm:"column:payload"`
	RunAt     time.Time      `gorm:"column:run_at;not null;index:idx_jobs_due"`
	Status    string         `gorm:"column:status;size:16;default:pending;not null;index:idx_jobs_due"`
	Attempts  int            `gorm:"column:attempts;default:0;not null"`
	LastError string         `gorm:"column:last_error;type:text"`
}
