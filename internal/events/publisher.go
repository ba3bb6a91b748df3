package events

import (
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderEvent is the message body published for every order lifecycle event.
type OrderEvent struct {
	OrderID   string    `json:"order_id"`
	OrderCode string    `json:"order_code"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher sends order lifecycle events to a RabbitMQ fanout exchange.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher connects to RabbitMQ and declares the order events exchange.
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
	}, nil
}

// PublishOrderEvent publishes a persistent JSON message for the given order.
func (p *Publisher) PublishOrderEvent(orderID, orderCode, event string) error {
	body, err := json.Marshal(OrderEvent{
		OrderID:   orderID,
		OrderCode: orderCode,
		Event:     event,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		ContentType:  "application/json",
		Body:         body,
	}

	return p.channel.Publish(
		p.exchange,
		"",
		false, // mandatory
		false, // immediate
		msg,
	)
}

// Close shuts down the channel and connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
