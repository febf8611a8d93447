package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"receitamed/internal/usecase/interfaces"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var ErrNotificationChannelClosed = errors.New("notification channel closed")

const defaultNotificationQueue = "patient_notifications"

type notificationMessage struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	SentAt  string `json:"sent_at"`
}

// RabbitMQSender publishes patient notifications to a durable queue consumed
// by the messaging worker (push/e-mail fan-out happens there).
type RabbitMQSender struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   *zap.Logger
}

var _ interfaces.INotificationSender = (*RabbitMQSender)(nil)

func NewRabbitMQSender(url, queue string, log *zap.Logger) (*RabbitMQSender, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if queue == "" {
		queue = defaultNotificationQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	log.Info("notification publisher connected", zap.String("queue", queue))
	return &RabbitMQSender{conn: conn, ch: ch, queue: queue, log: log}, nil
}

func (s *RabbitMQSender) Notify(ctx context.Context, userID, title, message string) error {
	if s == nil || s.ch == nil {
		return ErrNotificationChannelClosed
	}
	body, err := json.Marshal(notificationMessage{
		UserID:  userID,
		Title:   title,
		Message: message,
		SentAt:  time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	return s.ch.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func (s *RabbitMQSender) Close() error {
	if s == nil {
		return nil
	}
	if s.ch != nil {
		s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// NopSender drops notifications; used when no broker is configured.
type NopSender struct{}

var _ interfaces.INotificationSender = (*NopSender)(nil)

func (NopSender) Notify(context.Context, string, string, string) error { return nil }
