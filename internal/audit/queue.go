// internal/audit/queue.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

const (
	eventQueue = "security_events"
	eventDLQ   = "security_events_dlq"
)

// QueueSink publishes security events to a durable RabbitMQ queue so the
// back-office and SIEM consumers can fan them out independently of this
// process.
type QueueSink struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  zerolog.Logger
}

func NewQueueSink(url string, logger zerolog.Logger) (*QueueSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	// Dead-letter events that consumers reject rather than losing them.
	if _, err := ch.QueueDeclare(eventDLQ, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare DLQ: %w", err)
	}
	args := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": eventDLQ,
	}
	if _, err := ch.QueueDeclare(eventQueue, true, false, false, false, args); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare event queue: %w", err)
	}

	return &QueueSink{conn: conn, channel: ch, logger: logger}, nil
}

func (q *QueueSink) Record(_ context.Context, ev SecurityEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		q.logger.Error().Err(err).Str("event_type", ev.Type).Msg("failed to encode security event")
		return
	}
	err = q.channel.Publish(
		"",         // default exchange
		eventQueue, // routing key (queue name)
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		q.logger.Error().Err(err).Str("event_type", ev.Type).Msg("failed to publish security event")
	}
}

func (q *QueueSink) Close() error {
	if err := q.channel.Close(); err != nil {
		return err
	}
	return q.conn.Close()
}
