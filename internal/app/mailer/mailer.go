package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"group-mail/pkg/logger"

	"github.com/wneessen/go-mail"
)

var ErrInvalidMessage = errors.New("invalid outgoing message")

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type TLSMode string

const (
	TLSMandatory     TLSMode = "mandatory"
	TLSOpportunistic TLSMode = "opportunistic"
	TLSNone          TLSMode = "none"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLS      TLSMode
	Timeout  time.Duration
}

type SMTPMailer struct {
	config Config
	logger *logger.Logger
}

func NewSMTPMailer(config Config, l *logger.Logger) *SMTPMailer {
	return &SMTPMailer{config: config, logger: l}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out, err := m.compose(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.config.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}

	m.logger.Debugf("mail sent to %s", msg.To)
	return nil
}

func (m *SMTPMailer) compose(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.config.From); err != nil {
		return nil, fmt.Errorf("%w: sender %q: %w", ErrInvalidMessage, m.config.From, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("%w: recipient %q: %w", ErrInvalidMessage, msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	return out, nil
}

func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{}
	if m.config.Port > 0 {
		opts = append(opts, mail.WithPort(m.config.Port))
	}
	if m.config.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.config.Timeout))
	}
	if m.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.config.Username),
			mail.WithPassword(m.config.Password),
		)
	}

	switch m.config.TLS {
	case TLSNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	case TLSOpportunistic:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	return opts
}

// WithGroupFooter appends the sign-off naming every claimed member.
func WithGroupFooter(body string, members []string) string {
	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\nBest,\nParticipant of a group:\n")
	for _, member := range members {
		b.WriteString(member)
		b.WriteString("\n")
	}
	return b.String()
}

// LogMailer only logs outgoing mail. Used when no SMTP host is configured.
type LogMailer struct {
	logger *logger.Logger
}

func NewLogMailer(l *logger.Logger) *LogMailer {
	return &LogMailer{logger: l}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("%w: empty recipient", ErrInvalidMessage)
	}
	m.logger.WithField("to", msg.To).Infof("mail %q not sent: smtp disabled", msg.Subject)
	return nil
}
