package delivery

import (
	"context"

	"group-mail/internal/app/email"
	"group-mail/pkg/logger"

	"github.com/robfig/cron"
)

const outboxWorkerName = "MailOutboxCronWorker"

// OutboxWorker re-dispatches records still pending delivery.
type OutboxWorker struct {
	repository email.Repository
	dispatcher Dispatcher
	config     Config
	cron       *cron.Cron
	logger     *logger.Logger
}

func NewOutboxWorker(repository email.Repository, dispatcher Dispatcher, config Config, l *logger.Logger) *OutboxWorker {
	return &OutboxWorker{
		repository: repository,
		dispatcher: dispatcher,
		config:     config,
		cron:       cron.New(),
		logger:     l,
	}
}

func (ow *OutboxWorker) GetServiceName() string {
	return outboxWorkerName
}

func (ow *OutboxWorker) StartService() {
	schedule := ow.config.Schedule
	if schedule == "" {
		schedule = DefaultConfig().Schedule
	}

	err := ow.cron.AddFunc(schedule, func() { ow.RelayPending(context.Background()) })
	if err != nil {
		ow.logger.Errorf(err, "Could not add function to %s", outboxWorkerName)
		return
	}

	ow.cron.Start()
}

func (ow *OutboxWorker) Stop() error {
	ow.cron.Stop()
	return nil
}

// RelayPending dispatches one batch of pending records and returns how many
// were handed off without error.
func (ow *OutboxWorker) RelayPending(ctx context.Context) int {
	records, err := ow.repository.ListPendingDelivery(ctx, ow.config.BatchSize)
	if err != nil {
		ow.logger.Error(err, "Could not read pending mail from database")
		return 0
	}

	relayed := 0
	for _, record := range records {
		if err := ow.dispatcher.Dispatch(ctx, record.RecordId); err != nil {
			ow.logger.Errorf(err, "Could not relay %s", record.RecordId)
			continue
		}
		relayed++
	}

	if len(records) > 0 {
		ow.logger.Infof("Relayed %d/%d pending mails", relayed, len(records))
	}
	return relayed
}
