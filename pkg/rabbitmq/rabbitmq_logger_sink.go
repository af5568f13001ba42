package rabbitmq

import (
	"fmt"

	"group-mail/pkg/logger"
	"group-mail/pkg/utilities"
	"group-mail/pkg/utilities/timeutil"

	"github.com/rs/zerolog"
)

type LoggerMessage struct {
	Service   string           `json:"service"`
	Level     string           `json:"level"`
	Message   string           `json:"message"`
	Timestamp timeutil.TimeUTC `json:"timestamp"`
}

func (lm LoggerMessage) Serialize() ([]byte, error) {
	return utilities.Serialize(lm)
}

func CreateRabbitmqLoggerSink(service string, publisher IRabbitmqPublisher) logger.SinkFunc {
	return func(msg string, level zerolog.Level, timestamp timeutil.TimeUTC) {
		loggerMessage := LoggerMessage{
			Service:   service,
			Level:     level.String(),
			Message:   msg,
			Timestamp: timestamp,
		}

		err := publisher.Publish(loggerMessage)
		if err != nil {
			// not through the logger, it would recurse
			fmt.Printf("Failed to publish log message to RabbitMQ: %v\n", err)
		}
	}
}
