package delivery

import (
	"context"

	"group-mail/pkg/logger"
	"group-mail/pkg/rabbitmq"

	amqp "github.com/rabbitmq/amqp091-go"
)

const mailWorkerName = "MailWorker"

type MailWorker struct {
	service  *Service
	consumer rabbitmq.IRabbitmqConsumer
	logger   *logger.Logger
}

func NewMailWorker(service *Service, consumer rabbitmq.IRabbitmqConsumer, l *logger.Logger) *MailWorker {
	return &MailWorker{
		service:  service,
		consumer: consumer,
		logger:   l,
	}
}

func (w *MailWorker) GetServiceName() string {
	return mailWorkerName
}

func (w *MailWorker) StartService() {
	w.logger.Info("Starting mail worker")
	w.consumer.StartConsuming(w.handle)
}

func (w *MailWorker) handle(d amqp.Delivery) {
	job, err := ParseMailJob(d.Body)
	if err != nil {
		w.logger.Errorf(err, "Dropping mail job %d", d.DeliveryTag)
		return
	}

	// failures stay pending in the store and are picked up by the outbox
	if err := w.service.Deliver(context.Background(), job.RecordId); err != nil {
		w.logger.Errorf(err, "Mail job for %s failed", job.RecordId)
	}
}
