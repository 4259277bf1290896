package rabbitmq

import "github.com/streadway/amqp"

// Publisher publishes risk alerts to the alert exchange over one channel.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher wraps an open channel.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// Publish sends the message to the alert exchange under the routing key.
func (p *Publisher) Publish(routingKey string, message any) error {
	return PublishMessage(p.ch, AlertExchange, routingKey, message)
}
