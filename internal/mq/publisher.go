package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shaiso/Tradomata/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeCommandSubmitted MessageType = "command.submitted"
	MessageTypeStageChanged     MessageType = "stage.changed"
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

// CommandSubmittedPayload — payload для новой команды.
type CommandSubmittedPayload struct {
	CommandID uuid.UUID `json:"command_id"`
	Text      string    `json:"text"`
	Source    string    `json:"source,omitempty"`
	Priority  int       `json:"priority,omitempty"`
}

// StageChangedPayload — payload для перехода команды между стадиями.
type StageChangedPayload struct {
	CommandID uuid.UUID            `json:"command_id"`
	From      domain.CommandStatus `json:"from"`
	To        domain.CommandStatus `json:"to"`
	Detail    string               `json:"detail,omitempty"`
	At        time.Time            `json:"at"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
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

// PublishCommandSubmitted публикует новую команду для движка.
// Потребитель: Orchestrator.
func (p *Publisher) PublishCommandSubmitted(ctx context.Context, payload CommandSubmittedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeCommandSubmitted,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeCommands, RoutingKeySubmitted, msg)
}

// PublishStageChanged публикует событие перехода команды между стадиями.
// Потребители: внешние наблюдатели (UI, алерты).
func (p *Publisher) PublishStageChanged(ctx context.Context, ev domain.StageEvent) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeStageChanged,
		Payload: StageChangedPayload{
			CommandID: ev.CommandID,
			From:      ev.From,
			To:        ev.To,
			Detail:    ev.Detail,
			At:        ev.At,
		},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeEvents, RoutingKeyStage, msg)
}

// CommandTransitioned реализует observer sink Orchestrator'а поверх AMQP.
// Ошибка публикации логируется и не прерывает жизненный цикл команды.
func (p *Publisher) CommandTransitioned(ctx context.Context, ev domain.StageEvent) {
	if err := p.PublishStageChanged(ctx, ev); err != nil {
		p.logger.Warn("failed to publish stage event",
			"command_id", ev.CommandID,
			"to", ev.To,
			"error", err,
		)
	}
}
