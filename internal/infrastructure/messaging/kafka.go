package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pubudu-echanneling/config"
	"pubudu-echanneling/internal/domain/entity"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Publisher delivers notification events to whatever sends mail and SMS.
type Publisher interface {
	Publish(ctx context.Context, event entity.NotificationEvent) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *logrus.Logger
}

// NewPublisher returns a Kafka publisher, or a log-only publisher when no
// brokers are configured.
func NewPublisher(cfg config.KafkaConfig, log *logrus.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		log.Warn("No Kafka brokers configured, notifications will only be logged")
		return NewLogPublisher(log)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.NotificationTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaPublisher(writer, cfg.NotificationTopic, log)
}

func newKafkaPublisher(writer messageWriter, topic string, log *logrus.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event entity.NotificationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	// keyed by user so one recipient's events stay ordered
	msg := kafka.Message{
		Key:   []byte(event.UserID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Type, p.topic, err)
	}

	p.log.WithFields(logrus.Fields{"type": event.Type, "topic": p.topic}).Debug("Notification published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type LogPublisher struct {
	log *logrus.Logger
}

func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event entity.NotificationEvent) error {
	p.log.WithFields(logrus.Fields{
		"type":    event.Type,
		"user_id": event.UserID,
		"subject": event.Subject,
	}).Info("Notification (not delivered, no broker)")
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
