package rabbitmq

import (
	"fmt"
	"net/url"
	"time"

	"group-mail/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	connectMaxRetries = 7
	connectFirstWait  = 1 * time.Second
)

// WorkerService is a long running background component started by the application.
type WorkerService interface {
	GetServiceName() string
	StartService()
}

func ConnectionString(cfg RabbitmqConfig) string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d/",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
	)
}

func ConnectToRabbitmq(cfg RabbitmqConfig) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	waitTime := connectFirstWait

	queueLogger := logger.Default()

	for i := 0; i < connectMaxRetries; i++ {
		conn, err = amqp.Dial(ConnectionString(cfg))
		if err == nil {
			return conn, nil
		}
		queueLogger.Warnf("Attempt %d failed: %v. Retrying in %v...", i+1, err, waitTime)
		time.Sleep(waitTime)
		waitTime *= 2
	}
	return nil, err
}

// DeclareTopology declares every configured exchange and queue and binds the queues.
func DeclareTopology(conn *amqp.Connection, cfg RabbitmqConfig) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	for _, exchange := range cfg.Exchanges {
		err := ch.ExchangeDeclare(
			exchange.ExchangeName,          // name
			exchange.ExchangeType.String(), // type
			true,                           // durable
			false,                          // auto-deleted
			false,                          // internal
			false,                          // no-wait
			nil,                            // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", exchange.ExchangeName, err)
		}
	}

	for _, queue := range cfg.Queues {
		_, err := ch.QueueDeclare(
			queue.QueueName, // name
			queue.Durable,   // durable
			false,           // delete when unused
			false,           // exclusive
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue.QueueName, err)
		}

		if queue.ExchangeBinding == "" {
			continue
		}
		err = ch.QueueBind(queue.QueueName, queue.RoutingKey, queue.ExchangeBinding, false, nil)
		if err != nil {
			return fmt.Errorf("bind queue %s: %w", queue.QueueName, err)
		}
	}

	return nil
}
