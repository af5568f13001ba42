package rabbitmq

import (
	"sync"

	"group-mail/pkg/logger"
	"group-mail/pkg/utilities"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ConsumerAlias string

var (
	ConsumerRegistry    map[ConsumerAlias]IRabbitmqConsumer
	onceConsumer        sync.Once
	initializedConsumer bool
)

func GetConsumer(alias ConsumerAlias) IRabbitmqConsumer {
	if !initializedConsumer {
		panic("Consumer registry not initialized: call InitializeConsumerRegistry() first")
	}
	return ConsumerRegistry[alias]
}

func InitializeConsumerRegistry(conn *amqp.Connection, consumerConfig []RabbitmqConsumerConfig) {
	onceConsumer.Do(func() {
		ConsumerRegistry = make(map[ConsumerAlias]IRabbitmqConsumer)

		for _, consumer := range consumerConfig {
			channel, err := conn.Channel()
			if err != nil {
				logger.Default().Panicf(err, "Could not obtain channel for consumer %s", consumer.ConsumerAlias)
			}

			ConsumerRegistry[consumer.ConsumerAlias] = NewConsumer(
				channel,
				consumer.QueueName,
				consumer.ConsumerTag,
			)
		}

		initializedConsumer = true
	})
}

type RabbitmqConsumer struct {
	Channel     *amqp.Channel
	QueueName   string
	ConsumerTag string
}

type IRabbitmqConsumer interface {
	StartConsuming(func(amqp.Delivery))
}

func NewConsumer(ch *amqp.Channel, queueName, consumerTag string) *RabbitmqConsumer {
	return &RabbitmqConsumer{
		Channel:     ch,
		QueueName:   queueName,
		ConsumerTag: consumerTag,
	}
}

// StartConsuming blocks until the delivery channel closes.
func (rc *RabbitmqConsumer) StartConsuming(messageHandler func(amqp.Delivery)) {
	msgs, err := rc.Channel.Consume(
		rc.QueueName,   // queue
		rc.ConsumerTag, // consumer
		true,           // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	utilities.FailOnError(err, "Failed to register a consumer")

	consumerLogger := logger.Default()
	consumerLogger.Infof("Waiting for messages in queue: %s", rc.QueueName)

	for d := range msgs {
		consumerLogger.Debugf("[%s] delivery %d received", rc.QueueName, d.DeliveryTag)
		handleSafely(rc, messageHandler, d)
	}
}

func handleSafely(rc *RabbitmqConsumer, messageHandler func(amqp.Delivery), d amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			logger.Default().Errorf(
				nil,
				"[%s] Recovered from panic for consumer: %s, %v",
				rc.QueueName,
				rc.ConsumerTag,
				r,
			)
		}
	}()

	messageHandler(d)
}
