package mailer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prep-study/pronto/config"
	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/model"
	"github.com/prep-study/pronto/internal/repository"
	"github.com/prep-study/pronto/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/datatypes"
)

// Worker drains the mail queue: render, deliver with bounded retries, record
// the outcome in email history, ack. Delivery failures never propagate past
// the worker.
type Worker struct {
	cfg     *config.Config
	queue   *Queue
	sender  *SMTPSender
	history *repository.EmailHistoryRepository
}

func NewWorker(cfg *config.Config, queue *Queue, sender *SMTPSender, history *repository.EmailHistoryRepository) *Worker {
	return &Worker{
		cfg:     cfg,
		queue:   queue,
		sender:  sender,
		history: history,
	}
}

// Run consumes until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.queue.Consume()
	if err != nil {
		return err
	}

	logger.GetLogger().Info("Mail worker started")

	for {
		select {
		case <-ctx.Done():
			logger.GetLogger().Info("Mail worker stopping")
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				logger.GetLogger().Warn("Mail queue channel closed")
				return nil
			}
			w.handle(ctx, delivery)
		}
	}
}

func (w *Worker) handle(ctx context.Context, delivery amqp.Delivery) {
	var job MailJob
	if err := json.Unmarshal(delivery.Body, &job); err != nil {
		logger.ErrorWithContext(ctx, "Discarding malformed mail job").
			Err(err).
			Log()
		// Malformed payloads can never succeed; drop them.
		_ = delivery.Ack(false)
		return
	}

	status := constants.MailEventSent
	sendErr := w.deliverWithRetry(ctx, job)
	if sendErr != nil {
		status = constants.MailEventPermanentFail
		logger.ErrorWithContext(ctx, "Mail delivery failed after retries").
			String("to", job.To).
			String("email_type", job.EmailType).
			Int("retries", w.cfg.Mail.Retries).
			Err(sendErr).
			Log()
	}

	w.record(ctx, job, status, sendErr)

	// The job is acked either way: success is done, and exhausted retries
	// are recorded as a permanent failure rather than redelivered forever.
	_ = delivery.Ack(false)
}

func (w *Worker) deliverWithRetry(ctx context.Context, job MailJob) error {
	body, err := w.sender.Render(job)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= w.cfg.Mail.Retries; attempt++ {
		lastErr = w.sender.Send(job, body)
		if lastErr == nil {
			logger.InfoWithContext(ctx, "Mail delivered").
				String("to", job.To).
				String("email_type", job.EmailType).
				String("message_id", job.MessageID).
				Int("attempt", attempt).
				Log()
			return nil
		}

		logger.WarnWithContext(ctx, "Mail delivery attempt failed").
			String("to", job.To).
			Int("attempt", attempt).
			Err(lastErr).
			Log()

		if attempt < w.cfg.Mail.Retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.cfg.Mail.RetryDelay):
			}
		}
	}
	return lastErr
}

func (w *Worker) record(ctx context.Context, job MailJob, status string, sendErr error) {
	history := &model.EmailHistory{
		EmailType: job.EmailType,
		MessageID: job.MessageID,
		Status:    status,
		Email:     job.To,
		FromEmail: w.cfg.SMTP.From,
	}
	if sendErr != nil {
		detail, err := json.Marshal(map[string]string{"error": sendErr.Error()})
		if err == nil {
			history.ProviderResponse = datatypes.JSON(detail)
		}
	}

	if err := w.history.Create(ctx, history); err != nil {
		logger.ErrorWithContext(ctx, "Failed to record mail outcome").
			String("to", job.To).
			String("message_id", job.MessageID).
			Err(err).
			Log()
	}
}
