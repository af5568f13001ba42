package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"group-mail/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithGroupFooter(t *testing.T) {
	body := WithGroupFooter("hello", []string{"alice", "bob"})

	assert.Equal(t, "hello\n\nBest,\nParticipant of a group:\nalice\nbob\n", body)
}

func TestComposeRejectsBadRecipient(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "localhost", From: "gate@example.org"}, logger.Nop())

	_, err := m.compose(Message{To: "not an address", Subject: "s", Body: "b"})
	assert.True(t, errors.Is(err, ErrInvalidMessage))
}

func TestComposeRejectsBadSender(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "localhost", From: ""}, logger.Nop())

	_, err := m.compose(Message{To: "group@example.org"})
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestCompose(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "localhost", From: "gate@example.org"}, logger.Nop())

	msg, err := m.compose(Message{To: "group@example.org", Subject: "greetings", Body: "hello"})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: greetings")
	assert.Contains(t, buf.String(), "<group@example.org>")
	assert.Contains(t, buf.String(), "hello")
}

func TestClientOptionsAuth(t *testing.T) {
	plain := NewSMTPMailer(Config{Host: "localhost", TLS: TLSNone}, logger.Nop())
	authed := NewSMTPMailer(Config{Host: "localhost", Port: 2525, Username: "u", Password: "p"}, logger.Nop())

	assert.Len(t, plain.clientOptions(), 1)
	assert.Len(t, authed.clientOptions(), 5)
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logger.New().WithOutput(&buf))

	require.NoError(t, m.Send(context.Background(), Message{To: "group@example.org", Subject: "s"}))
	assert.Contains(t, buf.String(), "group@example.org")

	assert.ErrorIs(t, m.Send(context.Background(), Message{}), ErrInvalidMessage)
}
