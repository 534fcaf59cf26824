package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shaiso/Conveyor/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeBatchSubmit          MessageType = "batch.submit"
	MessageTypeAlertTerminal        MessageType = "alert.terminal"
	MessageTypeOptimizationDecision MessageType = "optimization.decision"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishBatch публикует батч задач на выполнение.
// Потребитель: координатор (очередь tasks.batches).
func (p *Publisher) PublishBatch(ctx context.Context, batch any) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeBatchSubmit,
		Payload:   batch,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeTasks, RoutingKeyBatches, msg)
}

// PublishAlert публикует терминальный alert.
// Потребители: дежурные каналы оповещения.
func (p *Publisher) PublishAlert(ctx context.Context, alert *domain.AlertRecord) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeAlertTerminal,
		Payload:   alert,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeAlerts, RoutingKeyTerminal, msg)
}

// RecordOptimization публикует решение цикла оптимизации.
// Реализует optimizer.AuditSink: дашборды слушают очередь audit.decisions.
func (p *Publisher) RecordOptimization(ctx context.Context, rec *domain.OptimizationRecommendation) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeOptimizationDecision,
		Payload:   rec,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeAudit, RoutingKeyDecisions, msg)
}
