package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prep-study/pronto/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Queue is a durable RabbitMQ-backed mail queue. Messages are published
// persistent so queued mail survives a broker restart.
type Queue struct {
	conn  *amqp.Connection
	chn   *amqp.Channel
	queue string
}

func NewQueue(url, queueName string) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	chn, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = chn.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		chn.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	logger.GetLogger().Info("Mail queue ready",
		zap.String("queue", queueName),
	)

	return &Queue{conn: conn, chn: chn, queue: queueName}, nil
}

func (q *Queue) Close() error {
	if err := q.chn.Close(); err != nil {
		return err
	}
	return q.conn.Close()
}

// Dispatch publishes a mail job onto the queue.
func (q *Queue) Dispatch(ctx context.Context, job MailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal mail job: %w", err)
	}

	err = q.chn.PublishWithContext(
		ctx,
		"",      // default exchange
		q.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.MessageID,
			Body:         body,
		},
	)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to publish mail job").
			String("to", job.To).
			String("email_type", job.EmailType).
			Err(err).
			Log()
		return fmt.Errorf("failed to publish mail job: %w", err)
	}

	logger.InfoWithContext(ctx, "Mail job queued").
		String("to", job.To).
		String("email_type", job.EmailType).
		String("message_id", job.MessageID).
		Log()

	return nil
}

// Consume starts delivering queued jobs. Deliveries use manual ack so a
// crashed worker leaves the job on the queue.
func (q *Queue) Consume() (<-chan amqp.Delivery, error) {
	return q.chn.Consume(
		q.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
}
