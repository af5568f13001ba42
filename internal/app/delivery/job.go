package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	"group-mail/pkg/rabbitmq"
	"group-mail/pkg/utilities"
)

const (
	MailPublisherAlias rabbitmq.PublisherAlias = "MailPublisher"
	MailConsumerAlias  rabbitmq.ConsumerAlias  = "MailConsumer"
)

// MailJob asks a worker to deliver one stored record.
type MailJob struct {
	RecordId string `json:"record_id"`
}

func (j MailJob) Serialize() ([]byte, error) {
	return utilities.Serialize(j)
}

func ParseMailJob(body []byte) (MailJob, error) {
	var job MailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return job, fmt.Errorf("mail job: %w", err)
	}
	if job.RecordId == "" {
		return job, fmt.Errorf("mail job: missing record id")
	}
	return job, nil
}

type Dispatcher interface {
	Dispatch(ctx context.Context, recordId string) error
}

// QueueDispatcher hands jobs to the mail queue; a MailWorker picks them up.
type QueueDispatcher struct {
	publisher rabbitmq.IRabbitmqPublisher
}

func NewQueueDispatcher(publisher rabbitmq.IRabbitmqPublisher) *QueueDispatcher {
	return &QueueDispatcher{publisher: publisher}
}

func (d *QueueDispatcher) Dispatch(_ context.Context, recordId string) error {
	if err := d.publisher.Publish(MailJob{RecordId: recordId}); err != nil {
		return fmt.Errorf("%w: publish %s: %w", ErrDispatch, recordId, err)
	}
	return nil
}

// InlineDispatcher delivers on the caller's goroutine.
type InlineDispatcher struct {
	service *Service
}

func NewInlineDispatcher(service *Service) *InlineDispatcher {
	return &InlineDispatcher{service: service}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, recordId string) error {
	return d.service.Deliver(ctx, recordId)
}
