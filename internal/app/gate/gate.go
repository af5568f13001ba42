// Package gate admits a message on behalf of a group only when the attached
// proof verifies against signals the server built itself.
package gate

import (
	"context"
	"fmt"
	"strings"

	"group-mail/internal/app/audit"
	"group-mail/internal/app/delivery"
	"group-mail/internal/app/email"
	"group-mail/pkg/logger"
	"group-mail/pkg/reasoncodes"
)

type SignalBuilder interface {
	BuildVector(ctx context.Context, usernames []string, message string) ([]string, error)
}

type Verifier interface {
	Verify(ctx context.Context, proof []byte, publicInputs []string) (bool, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Submission struct {
	Recipient *string
	Subject   string
	Body      string
	Members   []string
	Proof     string
}

type Decision struct {
	Outcome    audit.Outcome          `json:"outcome"`
	RecordId   string                 `json:"id,omitempty"`
	ReasonCode reasoncodes.ReasonCode `json:"reason_code"`
	Reason     string                 `json:"reason,omitempty"`
}

type Config struct {
	DefaultRecipient string
	MaxSubjectLength int
	MaxBodyLength    int
	MaxMembers       int
}

func DefaultConfig() Config {
	return Config{
		MaxSubjectLength: 998,
		MaxBodyLength:    1 << 20,
	}
}

type Gate struct {
	builder    SignalBuilder
	verifier   Verifier
	repository email.Repository
	dispatcher delivery.Dispatcher
	recorder   AuditRecorder
	config     Config
	logger     *logger.Logger
}

func New(
	builder SignalBuilder,
	v Verifier,
	repository email.Repository,
	dispatcher delivery.Dispatcher,
	recorder AuditRecorder,
	config Config,
	l *logger.Logger,
) *Gate {
	return &Gate{
		builder:    builder,
		verifier:   v,
		repository: repository,
		dispatcher: dispatcher,
		recorder:   recorder,
		config:     config,
		logger:     l,
	}
}

// Submit builds the public signals for the claimed group, verifies the proof
// and stores and dispatches the message when it holds. A rejected proof is not
// an error. Every outcome is written to the audit trail.
func (g *Gate) Submit(ctx context.Context, sub Submission) (Decision, error) {
	gateLogger := g.logger.WithContext(ctx)

	decision, err := g.decide(ctx, sub)
	if err != nil {
		decision.ReasonCode = ReasonFor(err)
		decision.Reason = err.Error()
		if decision.Outcome == "" {
			decision.Outcome = audit.OutcomeFailed
		}
		gateLogger.Warnf("Submission %s: %v", decision.Outcome, err)
	} else {
		gateLogger.Infof("Submission %s for %d members", decision.Outcome, len(sub.Members))
	}

	g.audit(ctx, sub, decision)
	return decision, err
}

func (g *Gate) decide(ctx context.Context, sub Submission) (Decision, error) {
	if err := g.validate(sub); err != nil {
		return Decision{Outcome: audit.OutcomeMalformed}, err
	}

	signals, err := g.builder.BuildVector(ctx, sub.Members, sub.Body)
	if err != nil {
		return Decision{}, fmt.Errorf("public signals: %w", err)
	}

	ok, err := g.verifier.Verify(ctx, []byte(sub.Proof), signals)
	if err != nil {
		if ReasonFor(err) == reasoncodes.ErrInvalidProofFormat {
			return Decision{Outcome: audit.OutcomeMalformed}, err
		}
		return Decision{}, err
	}
	if !ok {
		return Decision{
			Outcome:    audit.OutcomeRejected,
			ReasonCode: reasoncodes.ErrProofRejected,
			Reason:     "proof does not verify for this group and message",
		}, nil
	}

	record := &email.Record{
		Recipient:      g.recipient(sub),
		Header:         sub.Subject,
		Message:        sub.Body,
		Senders:        sub.Members,
		GroupSignature: sub.Proof,
		DeliveryState:  email.DeliveryPending,
	}
	if err := g.repository.Insert(ctx, record); err != nil {
		return Decision{}, fmt.Errorf("store record: %w", err)
	}

	// acceptance stands; the outbox retries undelivered records
	if err := g.dispatcher.Dispatch(ctx, record.RecordId); err != nil {
		g.logger.WithContext(ctx).Errorf(err, "Dispatch of %s deferred to outbox", record.RecordId)
	}

	return Decision{
		Outcome:    audit.OutcomeAccepted,
		RecordId:   record.RecordId,
		ReasonCode: reasoncodes.Accepted,
	}, nil
}

func (g *Gate) validate(sub Submission) error {
	if strings.TrimSpace(sub.Proof) == "" {
		return fmt.Errorf("%w: empty proof", ErrInvalidSubmission)
	}
	if g.config.MaxMembers > 0 && len(sub.Members) > g.config.MaxMembers {
		return fmt.Errorf("%w: %d members, at most %d", ErrInvalidSubmission, len(sub.Members), g.config.MaxMembers)
	}
	for i, member := range sub.Members {
		if strings.TrimSpace(member) == "" {
			return fmt.Errorf("%w: member %d is blank", ErrInvalidSubmission, i)
		}
	}
	if g.config.MaxSubjectLength > 0 && len(sub.Subject) > g.config.MaxSubjectLength {
		return fmt.Errorf("%w: subject longer than %d bytes", ErrInvalidSubmission, g.config.MaxSubjectLength)
	}
	if g.config.MaxBodyLength > 0 && len(sub.Body) > g.config.MaxBodyLength {
		return fmt.Errorf("%w: message longer than %d bytes", ErrInvalidSubmission, g.config.MaxBodyLength)
	}
	if sub.Recipient != nil && strings.TrimSpace(*sub.Recipient) == "" {
		return fmt.Errorf("%w: empty recipient", ErrInvalidSubmission)
	}
	if sub.Recipient == nil && g.config.DefaultRecipient == "" {
		return fmt.Errorf("%w: no recipient and no default configured", ErrInvalidSubmission)
	}
	return nil
}

func (g *Gate) recipient(sub Submission) string {
	if sub.Recipient != nil {
		return strings.TrimSpace(*sub.Recipient)
	}
	return g.config.DefaultRecipient
}

func (g *Gate) audit(ctx context.Context, sub Submission, decision Decision) {
	requestId, _ := ctx.Value(logger.RequestIdKey).(string)

	entry := audit.Entry{
		RequestId:  requestId,
		RecordId:   decision.RecordId,
		Members:    sub.Members,
		Outcome:    decision.Outcome,
		ReasonCode: decision.ReasonCode,
		Detail:     decision.Reason,
	}

	// written even when the request was cancelled
	auditCtx := context.WithoutCancel(ctx)
	if err := g.recorder.Record(auditCtx, entry); err != nil {
		g.logger.WithContext(ctx).Errorf(err, "Could not write audit entry")
	}
}
