package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"group-mail/internal/app/audit"
	"group-mail/internal/app/email"
	"group-mail/internal/app/keys"
	"group-mail/internal/app/signal"
	"group-mail/internal/app/verifier"
	"group-mail/pkg/logger"
	"group-mail/pkg/reasoncodes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeBuilder struct {
	vector []string
	err    error
	calls  int
}

func (b *fakeBuilder) BuildVector(_ context.Context, _ []string, _ string) ([]string, error) {
	b.calls++
	return b.vector, b.err
}

type fakeVerifier struct {
	ok    bool
	err   error
	proof []byte
	input []string
}

func (v *fakeVerifier) Verify(_ context.Context, proof []byte, inputs []string) (bool, error) {
	v.proof = proof
	v.input = inputs
	return v.ok, v.err
}

type fakeDispatcher struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (d *fakeDispatcher) Dispatch(_ context.Context, recordId string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, recordId)
	return d.err
}

type fakeRecorder struct {
	entries []audit.Entry
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, entry audit.Entry) error {
	r.entries = append(r.entries, entry)
	return r.err
}

func setupRepository(t *testing.T) email.Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&email.Record{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return email.NewRepository(db)
}

type harness struct {
	gate       *Gate
	builder    *fakeBuilder
	verifier   *fakeVerifier
	dispatcher *fakeDispatcher
	recorder   *fakeRecorder
	repository email.Repository
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		builder:    &fakeBuilder{vector: []string{"1", "2"}},
		verifier:   &fakeVerifier{ok: true},
		dispatcher: &fakeDispatcher{},
		recorder:   &fakeRecorder{},
		repository: setupRepository(t),
	}
	cfg := DefaultConfig()
	cfg.DefaultRecipient = "group@example.org"
	h.gate = New(h.builder, h.verifier, h.repository, h.dispatcher, h.recorder, cfg, logger.Nop())
	return h
}

func submission() Submission {
	return Submission{
		Subject: "hi",
		Body:    "hello",
		Members: []string{"bob", "alice"},
		Proof:   `{"pi_a":[]}`,
	}
}

func TestSubmitAccepted(t *testing.T) {
	h := newHarness(t)

	decision, err := h.gate.Submit(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, audit.OutcomeAccepted, decision.Outcome)
	assert.Equal(t, reasoncodes.Accepted, decision.ReasonCode)
	require.NotEmpty(t, decision.RecordId)

	assert.Equal(t, []byte(`{"pi_a":[]}`), h.verifier.proof)
	assert.Equal(t, []string{"1", "2"}, h.verifier.input)

	record, err := h.repository.Get(context.Background(), decision.RecordId)
	require.NoError(t, err)
	assert.Equal(t, "group@example.org", record.Recipient)
	assert.Equal(t, "hi", record.Header)
	assert.Equal(t, []string{"bob", "alice"}, record.Senders)
	assert.Equal(t, email.DeliveryPending, record.DeliveryState)

	assert.Equal(t, []string{decision.RecordId}, h.dispatcher.ids)
	require.Len(t, h.recorder.entries, 1)
	assert.Equal(t, audit.OutcomeAccepted, h.recorder.entries[0].Outcome)
	assert.Equal(t, decision.RecordId, h.recorder.entries[0].RecordId)
}

func TestSubmitExplicitRecipient(t *testing.T) {
	h := newHarness(t)
	to := " team@example.org "
	sub := submission()
	sub.Recipient = &to

	decision, err := h.gate.Submit(context.Background(), sub)
	require.NoError(t, err)

	record, err := h.repository.Get(context.Background(), decision.RecordId)
	require.NoError(t, err)
	assert.Equal(t, "team@example.org", record.Recipient)
}

func TestSubmitRejected(t *testing.T) {
	h := newHarness(t)
	h.verifier.ok = false

	decision, err := h.gate.Submit(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, audit.OutcomeRejected, decision.Outcome)
	assert.Equal(t, reasoncodes.ErrProofRejected, decision.ReasonCode)
	assert.Empty(t, decision.RecordId)
	assert.Empty(t, h.dispatcher.ids)

	records, err := h.repository.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.Len(t, h.recorder.entries, 1)
	assert.Equal(t, audit.OutcomeRejected, h.recorder.entries[0].Outcome)
}

func TestSubmitMalformedProof(t *testing.T) {
	h := newHarness(t)
	h.verifier.err = fmt.Errorf("%w: pi_a is not on the curve", verifier.ErrInvalidProofFormat)

	decision, err := h.gate.Submit(context.Background(), submission())
	assert.ErrorIs(t, err, verifier.ErrInvalidProofFormat)
	assert.Equal(t, audit.OutcomeMalformed, decision.Outcome)
	assert.Equal(t, reasoncodes.ErrInvalidProofFormat, decision.ReasonCode)
	assert.Equal(t, audit.OutcomeMalformed, h.recorder.entries[0].Outcome)
}

func TestSubmitBuildFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason reasoncodes.ReasonCode
	}{
		{"empty group", signal.ErrEmptyGroup, reasoncodes.ErrEmptyGroup},
		{"group too large", signal.ErrGroupTooLarge, reasoncodes.ErrGroupTooLarge},
		{"network", keys.ErrNetwork, reasoncodes.ErrKeyFetch},
		{"upstream status", keys.ErrNonSuccessResponse, reasoncodes.ErrKeyFetch},
		{"key data", keys.ErrMalformedKeyData, reasoncodes.ErrKeyData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.builder.err = fmt.Errorf("member alice: %w", tt.err)

			decision, err := h.gate.Submit(context.Background(), submission())
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, audit.OutcomeFailed, decision.Outcome)
			assert.Equal(t, tt.reason, decision.ReasonCode)
			assert.Nil(t, h.verifier.input)
			assert.Len(t, h.recorder.entries, 1)
		})
	}
}

func TestSubmitInvalid(t *testing.T) {
	blank := "  "
	tests := []struct {
		name   string
		mutate func(*Submission)
	}{
		{"empty proof", func(s *Submission) { s.Proof = "" }},
		{"blank member", func(s *Submission) { s.Members = []string{"alice", " "} }},
		{"long subject", func(s *Submission) { s.Subject = string(make([]byte, 999)) }},
		{"blank recipient", func(s *Submission) { s.Recipient = &blank }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			sub := submission()
			tt.mutate(&sub)

			decision, err := h.gate.Submit(context.Background(), sub)
			assert.ErrorIs(t, err, ErrInvalidSubmission)
			assert.Equal(t, audit.OutcomeMalformed, decision.Outcome)
			assert.Equal(t, reasoncodes.ErrInvalidRequest, decision.ReasonCode)
			assert.Zero(t, h.builder.calls)
		})
	}
}

func TestSubmitWithoutDefaultRecipient(t *testing.T) {
	h := newHarness(t)
	h.gate.config.DefaultRecipient = ""

	_, err := h.gate.Submit(context.Background(), submission())
	assert.ErrorIs(t, err, ErrInvalidSubmission)
}

func TestSubmitDispatchFailureStillAccepts(t *testing.T) {
	h := newHarness(t)
	h.dispatcher.err = errors.New("queue down")

	decision, err := h.gate.Submit(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, audit.OutcomeAccepted, decision.Outcome)

	pending, err := h.repository.ListPendingDelivery(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSubmitAuditFailureDoesNotChangeDecision(t *testing.T) {
	h := newHarness(t)
	h.recorder.err = errors.New("audit table locked")

	decision, err := h.gate.Submit(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, audit.OutcomeAccepted, decision.Outcome)
}

func TestSubmitRecordsRequestId(t *testing.T) {
	h := newHarness(t)
	ctx := context.WithValue(context.Background(), logger.RequestIdKey, "req-1")

	_, err := h.gate.Submit(ctx, submission())
	require.NoError(t, err)
	assert.Equal(t, "req-1", h.recorder.entries[0].RequestId)
}

func TestReasonFor(t *testing.T) {
	assert.Equal(t, reasoncodes.Accepted, ReasonFor(nil))
	assert.Equal(t, reasoncodes.ErrInvalidProofFormat, ReasonFor(verifier.ErrJSONParse))
	assert.Equal(t, reasoncodes.ErrVerifierResolution, ReasonFor(verifier.ErrKeySource))
	assert.Equal(t, reasoncodes.ErrVerifierResolution,
		ReasonFor(fmt.Errorf("%w: %w", verifier.ErrKeySource, verifier.ErrInvalidProofFormat)))
	assert.Equal(t, reasoncodes.ErrKeyData, ReasonFor(keys.ErrUnsupportedKeyType))
	assert.Equal(t, reasoncodes.ErrInternal, ReasonFor(context.Canceled))
}

func TestSubmitCorruptedVerifyingKeyIsServerFault(t *testing.T) {
	h := newHarness(t)
	// vk_alpha_1 is off the curve
	corrupted := `{"protocol":"groth16","curve":"bn128","vk_alpha_1":["1","5","1"],"IC":[["1","2","1"]]}`
	v := verifier.NewGroth16Verifier(verifier.StaticKeySource(corrupted), logger.Nop())

	cfg := DefaultConfig()
	cfg.DefaultRecipient = "group@example.org"
	g := New(h.builder, v, h.repository, h.dispatcher, h.recorder, cfg, logger.Nop())

	decision, err := g.Submit(context.Background(), submission())
	require.ErrorIs(t, err, verifier.ErrKeySource)
	assert.NotErrorIs(t, err, verifier.ErrInvalidProofFormat)
	assert.Equal(t, 1, strings.Count(err.Error(), verifier.ErrKeySource.Error()))

	assert.Equal(t, audit.OutcomeFailed, decision.Outcome)
	assert.Equal(t, reasoncodes.ErrVerifierResolution, decision.ReasonCode)
	assert.Empty(t, h.dispatcher.ids)
	require.Len(t, h.recorder.entries, 1)
	assert.Equal(t, audit.OutcomeFailed, h.recorder.entries[0].Outcome)
}

func TestSubmitRejectsTooManyMembersWithoutFetching(t *testing.T) {
	h := newHarness(t)
	cfg := DefaultConfig()
	cfg.DefaultRecipient = "group@example.org"
	cfg.MaxMembers = 2
	g := New(h.builder, h.verifier, h.repository, h.dispatcher, h.recorder, cfg, logger.Nop())

	sub := submission()
	sub.Members = []string{"alice", "bob", "carol"}

	decision, err := g.Submit(context.Background(), sub)
	require.ErrorIs(t, err, ErrInvalidSubmission)
	assert.Equal(t, audit.OutcomeMalformed, decision.Outcome)
	assert.Equal(t, reasoncodes.ErrInvalidRequest, decision.ReasonCode)
	assert.Zero(t, h.builder.calls)

	sub.Members = []string{"alice", "bob"}
	decision, err = g.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, audit.OutcomeAccepted, decision.Outcome)
}
