package mq

import (
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
	ExchangeTasks  Exchange = "conveyor.tasks"
	ExchangeAlerts Exchange = "conveyor.alerts"
	ExchangeAudit  Exchange = "conveyor.audit"
)

// Queues — имена очередей.
const (
	QueueTaskBatches    Queue = "tasks.batches"
	QueueAlertsTerminal Queue = "alerts.terminal"
	QueueAuditDecisions Queue = "audit.decisions"
)

// Routing keys.
const (
	RoutingKeyBatches   RoutingKey = "batches"
	RoutingKeyTerminal  RoutingKey = "terminal"
	RoutingKeyDecisions RoutingKey = "decisions"
)

// SetupTopology создаёт обменники, очереди и привязки.
func SetupTopology(conn *Connection) error {
	return conn.WithChannel(func(ch *amqp.Channel) error {
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
	for _, name := range []Exchange{ExchangeTasks, ExchangeAlerts, ExchangeAudit} {
		err := ch.ExchangeDeclare(
			string(name), // name
			"direct",     // type
			true,         // durable
			false,        // auto-deleted
			false,        // internal
			false,        // no-wait
			nil,          // arguments
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	for _, name := range []Queue{QueueTaskBatches, QueueAlertsTerminal, QueueAuditDecisions} {
		_, err := ch.QueueDeclare(
			string(name), // name
			true,         // durable
			false,        // auto-delete
			false,        // exclusive
			false,        // no-wait
			nil,          // arguments
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue    Queue
		key      RoutingKey
		exchange Exchange
	}{
		{QueueTaskBatches, RoutingKeyBatches, ExchangeTasks},
		{QueueAlertsTerminal, RoutingKeyTerminal, ExchangeAlerts},
		{QueueAuditDecisions, RoutingKeyDecisions, ExchangeAudit},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),    // queue
			string(b.key),      // routing key
			string(b.exchange), // exchange
			false,              // no-wait
			nil,                // arguments
		)
		if err != nil {
			return err
		}
	}
	return nil
}
