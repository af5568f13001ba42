package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"group-mail/internal/app/email"
	"group-mail/internal/app/mailer"
	"group-mail/pkg/logger"
)

var (
	ErrDispatch       = errors.New("mail dispatch failed")
	ErrDeliveryFailed = errors.New("mail delivery failed")
)

type Config struct {
	MaxAttempts int
	Schedule    string
	BatchSize   int
	SendTimeout time.Duration
	GroupFooter bool
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		Schedule:    "@every 1m",
		BatchSize:   100,
		SendTimeout: 30 * time.Second,
		GroupFooter: true,
	}
}

type Service struct {
	repository email.Repository
	mailer     mailer.Mailer
	config     Config
	logger     *logger.Logger
}

func NewService(repository email.Repository, m mailer.Mailer, config Config, l *logger.Logger) *Service {
	return &Service{
		repository: repository,
		mailer:     m,
		config:     config,
		logger:     l,
	}
}

// Deliver sends a pending record and records the result. Records that are no
// longer pending are skipped, so a job delivered twice sends one mail.
func (s *Service) Deliver(ctx context.Context, recordId string) error {
	record, err := s.repository.Get(ctx, recordId)
	if err != nil {
		return fmt.Errorf("load %s: %w", recordId, err)
	}
	if record.DeliveryState != email.DeliveryPending {
		s.logger.Debugf("record %s already %s", recordId, record.DeliveryState)
		return nil
	}

	body := record.Message
	if s.config.GroupFooter {
		body = mailer.WithGroupFooter(body, record.Senders)
	}

	sendCtx := ctx
	if s.config.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.config.SendTimeout)
		defer cancel()
	}

	sendErr := s.mailer.Send(sendCtx, mailer.Message{
		To:      record.Recipient,
		Subject: record.Header,
		Body:    body,
	})
	if sendErr != nil {
		if err := s.repository.RecordDeliveryFailure(ctx, recordId, sendErr, s.config.MaxAttempts); err != nil {
			s.logger.Errorf(err, "could not record delivery failure for %s", recordId)
		}
		return fmt.Errorf("%w: %s: %w", ErrDeliveryFailed, recordId, sendErr)
	}

	if err := s.repository.MarkDelivered(ctx, recordId); err != nil {
		return fmt.Errorf("mark %s delivered: %w", recordId, err)
	}

	s.logger.Infof("record %s delivered to %s", recordId, record.Recipient)
	return nil
}
