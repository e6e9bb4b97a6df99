package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// ExchangeName is the topic exchange for a topic, also used as its routing key.
func ExchangeName(prefix string, topic ChangeTopic) string {
	return fmt.Sprintf("%s_%s", prefix, topic)
}

// DeclareTopic declares the durable topic exchange. Durable topics also get a named queue
// bound to it so messages survive until a consumer picks them up.
func DeclareTopic(ch *amqp.Channel, prefix string, topic ChangeTopic) error {
	name := ExchangeName(prefix, topic)
	if err := ch.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	if !topic.Durable() {
		return nil
	}
	q, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	if err = ch.QueueBind(q.Name, name, name, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", name, err)
	}
	return nil
}

func newPublishing(topic ChangeTopic, data any) (amqp.Publishing, error) {
	body, err := jsoncompat.Marshal(data)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s: %w", topic, err)
	}
	msg := amqp.Publishing{
		ContentType: "application/json",
		MessageId:   uuid.NewString(),
		Timestamp:   time.Now(),
		Type:        string(topic),
		Body:        body,
	}
	if topic.Durable() {
		msg.DeliveryMode = amqp.Persistent
	}
	return msg, nil
}

// RabbitPublisher opens a channel per message, publishes are rare enough for that.
type RabbitPublisher struct {
	conn   *amqp.Connection
	prefix string
}

func NewRabbitPublisher(conn *amqp.Connection, prefix string, topics ...ChangeTopic) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()
	for _, topic := range topics {
		if err = DeclareTopic(ch, prefix, topic); err != nil {
			return nil, err
		}
	}
	return &RabbitPublisher{conn: conn, prefix: prefix}, nil
}

func (p *RabbitPublisher) Publish(topic ChangeTopic, data any) error {
	msg, err := newPublishing(topic, data)
	if err != nil {
		return err
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	name := ExchangeName(p.prefix, topic)
	if err = ch.PublishWithContext(ctx, name, name, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}
	return nil
}
