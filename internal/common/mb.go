package common

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Exchange string

type Queue string

type BindingKey string

// Route ties a routing key on a direct exchange to the durable queue bound to it.
type Route struct {
	Exchange Exchange
	Key      BindingKey
	Queue    Queue
}

// UserCreatedRoute carries a UserCreatedMessage for every signup.
var UserCreatedRoute = Route{
	Exchange: "user_exchange",
	Key:      "user.created",
	Queue:    "user_created_queue",
}

// WelcomeMailConsumer is the consumer tag of the welcome email worker.
const WelcomeMailConsumer = "mailservice.welcome"

const consumerPrefetch = 10

type MessageProducer interface {
	Publish(ctx context.Context, route Route, body []byte) error
}

type MessageConsumer interface {
	Consume(queue Queue, consumer string) (<-chan amqp.Delivery, error)
}

// MessageBroker shares one AMQP channel between publishers and consumers. Calls on the channel
// are serialized by mu.
type MessageBroker struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewMessageBroker(uri string) (*MessageBroker, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("could not connect to AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	return &MessageBroker{conn: conn, ch: ch}, nil
}

// DeclareRoutes creates the exchange and queue of every route and binds them. Existing ones are left as they are.
func (mb *MessageBroker) DeclareRoutes(routes ...Route) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	for _, r := range routes {
		if err := mb.ch.ExchangeDeclare(string(r.Exchange), amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
			return fmt.Errorf("could not declare exchange %s: %w", r.Exchange, err)
		}

		if _, err := mb.ch.QueueDeclare(string(r.Queue), true, false, false, false, nil); err != nil {
			return fmt.Errorf("could not declare queue %s: %w", r.Queue, err)
		}

		if err := mb.ch.QueueBind(string(r.Queue), string(r.Key), string(r.Exchange), false, nil); err != nil {
			return fmt.Errorf("could not bind %s to %s: %w", r.Queue, r.Exchange, err)
		}
	}

	return nil
}

func (mb *MessageBroker) Publish(ctx context.Context, route Route, body []byte) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	err := mb.ch.PublishWithContext(ctx, string(route.Exchange), string(route.Key), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("could not publish to %s: %w", route.Key, err)
	}

	return nil
}

// Consume subscribes to queue under the given consumer tag. Deliveries must be acked by the caller.
func (mb *MessageBroker) Consume(queue Queue, consumer string) (<-chan amqp.Delivery, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if err := mb.ch.Qos(consumerPrefetch, 0, false); err != nil {
		return nil, fmt.Errorf("could not set prefetch: %w", err)
	}

	msgs, err := mb.ch.Consume(string(queue), consumer, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("could not consume %s: %w", queue, err)
	}

	return msgs, nil
}

func (mb *MessageBroker) Close() error {
	return errors.Join(mb.ch.Close(), mb.conn.Close())
}

// UserCreatedMessage is the body published on UserCreatedRoute after a signup.
type UserCreatedMessage struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
