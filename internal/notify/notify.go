// Package notify delivers account events. Senders never return errors to
// the caller: a failed delivery is logged and dropped.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"battlezone/internal/domain"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Message is the wire form of a published event
type Message struct {
	ID string `json:"id"`
	domain.Event
}

func newMessage(ev domain.Event) Message {
	return Message{ID: uuid.NewString(), Event: ev}
}

// LogSender writes events to the log. It stands in for AMQPSender when no
// broker is configured.
type LogSender struct {
	Logger *logrus.Logger
}

// Notify logs the event
func (s LogSender) Notify(_ context.Context, accountID uint, ev domain.Event) {
	l := s.Logger
	if l == nil {
		l = logrus.StandardLogger()
	}
	msg := newMessage(ev)
	l.WithFields(logrus.Fields{
		"event_id":     msg.ID,
		"account_id":   accountID,
		"type":         ev.Type,
		"reference_id": ev.ReferenceID,
		"amount":       ev.Amount,
	}).Info("Account notification")
}

// channel is the subset of *amqp.Channel used for publishing
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSender publishes events to a topic exchange with routing key
// "account.<type>".
type AMQPSender struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	timeout  time.Duration
	logger   *logrus.Logger
}

// NewAMQPSender dials url and declares exchange
func NewAMQPSender(url, exchange string, logger *logrus.Logger) (*AMQPSender, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	logger.WithField("exchange", exchange).Info("Notification publisher initialized")
	return &AMQPSender{conn: conn, ch: ch, exchange: exchange, timeout: 5 * time.Second, logger: logger}, nil
}

// RoutingKey is the key an event type is published under
func RoutingKey(t domain.EventType) string {
	return "account." + string(t)
}

// Notify publishes the event. Failures are logged.
func (s *AMQPSender) Notify(ctx context.Context, accountID uint, ev domain.Event) {
	ev.AccountID = accountID
	msg := newMessage(ev)
	fields := logrus.Fields{"event_id": msg.ID, "account_id": accountID, "type": ev.Type}
	if err := s.publish(ctx, msg); err != nil {
		s.logger.WithFields(fields).WithError(err).Warn("Notification dropped")
		return
	}
	s.logger.WithFields(fields).Debug("Notification published")
}

func (s *AMQPSender) publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch.PublishWithContext(
		ctx,
		s.exchange,           // exchange
		RoutingKey(msg.Type), // routing key
		false,                // mandatory
		false,                // immediate
		amqp.Publishing{
			MessageId:    msg.ID,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    msg.OccurredAt,
			DeliveryMode: amqp.Persistent, // Durable message
		},
	)
}

// Close closes the channel and connection
func (s *AMQPSender) Close() error {
	if err := s.ch.Close(); err != nil {
		s.logger.WithError(err).Warn("Error closing channel")
	}
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
