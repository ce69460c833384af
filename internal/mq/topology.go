package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeCommands Exchange = "tradomata.commands"
	ExchangeEvents   Exchange = "tradomata.events"
	ExchangeDLQ      Exchange = "tradomata.dlq"
)

// Queues — имена очередей.
const (
	QueueCommandsSubmitted Queue = "commands.submitted"
	QueueCommandEvents     Queue = "commands.events"
	QueueDLQCommands       Queue = "dlq.commands"
)

// Routing keys.
const (
	RoutingKeySubmitted   RoutingKey = "submitted"
	RoutingKeyStage       RoutingKey = "stage"
	RoutingKeyDLQCommands RoutingKey = "commands"
)

// SetupTopology объявляет exchanges, queues и bindings.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeCommands, "direct"},
		{ExchangeEvents, "direct"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	// Аргументы для очередей с DLQ
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQCommands),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// commands.submitted — с DLQ (битые команды не должны крутиться вечно)
		{QueueCommandsSubmitted, dlqArgs},

		// commands.events — без DLQ (события для наблюдателей)
		{QueueCommandEvents, nil},

		// dlq.commands — сама DLQ очередь
		{QueueDLQCommands, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueCommandsSubmitted, RoutingKeySubmitted, ExchangeCommands},
		{QueueCommandEvents, RoutingKeyStage, ExchangeEvents},
		{QueueDLQCommands, RoutingKeyDLQCommands, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}
