package audit

import (
	"context"

	"group-mail/pkg/rabbitmq"
)

type Service interface {
	Record(ctx context.Context, entry Entry) error
	GetEntries(ctx context.Context, outcome Outcome, limit, offset int) ([]Entry, error)
	ProcessLogMessage(ctx context.Context, msg rabbitmq.LoggerMessage) error
	GetLogEntries(ctx context.Context, limit, offset int) ([]LogEntry, error)
}

type auditService struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &auditService{repository: repository}
}

func (s *auditService) Record(ctx context.Context, entry Entry) error {
	if entry.Members == nil {
		entry.Members = []string{}
	}
	return s.repository.CreateEntry(ctx, &entry)
}

// GetEntries filters by outcome unless it is empty.
func (s *auditService) GetEntries(ctx context.Context, outcome Outcome, limit, offset int) ([]Entry, error) {
	if outcome == "" {
		return s.repository.GetEntries(ctx, limit, offset)
	}
	return s.repository.GetEntriesByOutcome(ctx, outcome, limit, offset)
}

func (s *auditService) ProcessLogMessage(ctx context.Context, msg rabbitmq.LoggerMessage) error {
	service := msg.Service
	if service == "" {
		service = "unknown"
	}

	return s.repository.CreateLogEntry(ctx, &LogEntry{
		Level:     msg.Level,
		Message:   msg.Message,
		Timestamp: msg.Timestamp.Time(),
		Service:   service,
	})
}

func (s *auditService) GetLogEntries(ctx context.Context, limit, offset int) ([]LogEntry, error) {
	return s.repository.GetLogEntries(ctx, limit, offset)
}
