package mailer

import (
	"context"
	"time"
)

// MailJob is the unit of work placed on the mail queue. The dispatcher
// publishes it; the worker renders and delivers it.
type MailJob struct {
	MessageID string    `json:"message_id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	EmailType string    `json:"email_type"`
	Header    string    `json:"header"`
	Message   string    `json:"message"`
	Name      string    `json:"name,omitempty"`
	Code      string    `json:"code,omitempty"`
	Link      string    `json:"link,omitempty"`
	QueuedAt  time.Time `json:"queued_at"`
}

// Dispatcher hands mail jobs to the delivery pipeline. Workflows never wait
// on delivery; a dispatch failure is logged by the caller, not returned to
// the end user.
type Dispatcher interface {
	Dispatch(ctx context.Context, job MailJob) error
}
