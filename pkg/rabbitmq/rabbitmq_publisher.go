package rabbitmq

import (
	"context"
	"sync"
	"time"

	"group-mail/pkg/logger"
	"group-mail/pkg/utilities"

	amqp "github.com/rabbitmq/amqp091-go"
)

type PublisherAlias string

var (
	PublisherRegistry map[PublisherAlias]IRabbitmqPublisher
	oncePublisher     sync.Once
)

// GetPublisher returns nil when the alias is not configured.
func GetPublisher(alias PublisherAlias) IRabbitmqPublisher {
	return PublisherRegistry[alias]
}

func InitializePublisherRegistry(conn *amqp.Connection, publisherConfig []RabbitmqPublishersConfig) {
	oncePublisher.Do(func() {
		PublisherRegistry = make(map[PublisherAlias]IRabbitmqPublisher)

		for _, publisher := range publisherConfig {
			channel, err := conn.Channel()
			if err != nil {
				logger.Default().Panicf(err, "Could not obtain channel for publisher %s", publisher.PublisherAlias)
			}

			PublisherRegistry[publisher.PublisherAlias] = NewPublisher(
				channel,
				publisher.Exchange,
				publisher.RoutingKey,
			)
		}
	})
}

type RabbitmqPublisher struct {
	mu         sync.Mutex
	Channel    *amqp.Channel
	Exchange   string
	RoutingKey string
}

func NewPublisher(ch *amqp.Channel, exchange, routingKey string) *RabbitmqPublisher {
	return &RabbitmqPublisher{
		Channel:    ch,
		Exchange:   exchange,
		RoutingKey: routingKey,
	}
}

type IRabbitmqPublisher interface {
	Publish(body utilities.Serializable) error
}

func (rp *RabbitmqPublisher) Publish(body utilities.Serializable) error {
	json, err := body.Serialize()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	rp.mu.Lock()
	defer rp.mu.Unlock()

	return rp.Channel.PublishWithContext(
		ctx,
		rp.Exchange,
		rp.RoutingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         json,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		},
	)
}
