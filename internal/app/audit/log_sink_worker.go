package audit

import (
	"context"
	"encoding/json"
	"os"

	"group-mail/pkg/logger"
	"group-mail/pkg/rabbitmq"

	amqp "github.com/rabbitmq/amqp091-go"
)

const LogConsumerAlias rabbitmq.ConsumerAlias = "LogConsumer"

// LogSinkWorker stores log lines published by CreateRabbitmqLoggerSink.
type LogSinkWorker struct {
	service  Service
	consumer rabbitmq.IRabbitmqConsumer
	logger   *logger.Logger
}

func NewLogSinkWorker(service Service, consumer rabbitmq.IRabbitmqConsumer) *LogSinkWorker {
	// own logger without a sink, or stored lines would be published again
	dedicatedLogger := logger.New().WithOutput(os.Stdout)

	return &LogSinkWorker{
		service:  service,
		consumer: consumer,
		logger:   dedicatedLogger,
	}
}

func (w *LogSinkWorker) GetServiceName() string {
	return string(LogConsumerAlias)
}

func (w *LogSinkWorker) StartService() {
	w.logger.Info("Starting log sink worker")

	w.consumer.StartConsuming(func(d amqp.Delivery) {
		var logMessage rabbitmq.LoggerMessage

		if err := json.Unmarshal(d.Body, &logMessage); err != nil {
			w.logger.Errorf(err, "Failed to unmarshal log message")
			return
		}

		if err := w.service.ProcessLogMessage(context.Background(), logMessage); err != nil {
			w.logger.Errorf(err, "Failed to save log message to database")
		}
	})
}
