package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"group-mail/internal/app/audit"
	"group-mail/internal/app/email"
	"group-mail/internal/app/gate"
	"group-mail/internal/app/keys"
	"group-mail/internal/app/signal"
	"group-mail/pkg/reasoncodes"
	"group-mail/pkg/rest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeGate struct {
	decision gate.Decision
	err      error
	got      gate.Submission
}

func (g *fakeGate) Submit(_ context.Context, sub gate.Submission) (gate.Decision, error) {
	g.got = sub
	return g.decision, g.err
}

type fakeBuilder struct {
	signals []string
	err     error
}

func (b *fakeBuilder) BuildVector(_ context.Context, _ []string, _ string) ([]string, error) {
	return b.signals, b.err
}

func (b *fakeBuilder) Capacity() int { return 4 }

type testServer struct {
	router     *gin.Engine
	gate       *fakeGate
	builder    *fakeBuilder
	repository email.Repository
	routes     []rest.Route
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(append([]any{&email.Record{}}, audit.Models()...)...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s := &testServer{
		router:     gin.New(),
		gate:       &fakeGate{},
		builder:    &fakeBuilder{},
		repository: email.NewRepository(db),
	}

	s.routes = Routes(
		NewEmailHandler(s.gate, s.repository),
		NewSignalHandler(s.builder),
		audit.NewHandler(audit.NewService(audit.NewRepository(db))),
		NewHealthHandler("test"),
	)
	rest.Register(s.router, nil, s.routes)
	return s
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestSubmitEmailStatuses(t *testing.T) {
	tests := []struct {
		name     string
		decision gate.Decision
		err      error
		status   int
	}{
		{"accepted", gate.Decision{Outcome: audit.OutcomeAccepted, ReasonCode: reasoncodes.Accepted, RecordId: "r1"}, nil, http.StatusCreated},
		{"rejected", gate.Decision{Outcome: audit.OutcomeRejected, ReasonCode: reasoncodes.ErrProofRejected}, nil, http.StatusForbidden},
		{"malformed", gate.Decision{Outcome: audit.OutcomeMalformed, ReasonCode: reasoncodes.ErrInvalidProofFormat}, fmt.Errorf("bad proof"), http.StatusBadRequest},
		{"key host down", gate.Decision{Outcome: audit.OutcomeFailed, ReasonCode: reasoncodes.ErrKeyFetch}, keys.ErrNetwork, http.StatusBadGateway},
		{"bad key", gate.Decision{Outcome: audit.OutcomeFailed, ReasonCode: reasoncodes.ErrKeyData}, keys.ErrMalformedKeyData, http.StatusUnprocessableEntity},
		{"group too large", gate.Decision{Outcome: audit.OutcomeFailed, ReasonCode: reasoncodes.ErrGroupTooLarge}, signal.ErrGroupTooLarge, http.StatusBadRequest},
		{"no key", gate.Decision{Outcome: audit.OutcomeFailed, ReasonCode: reasoncodes.ErrVerifierResolution}, fmt.Errorf("no key"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupServer(t)
			s.gate.decision = tt.decision
			s.gate.err = tt.err

			w := s.do(http.MethodPost, "/v1/emails", map[string]any{
				"header":          "hi",
				"message":         "hello",
				"senders":         []string{"alice"},
				"group_signature": "{}",
			})
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), string(tt.decision.ReasonCode))
		})
	}
}

func TestSubmitEmailMapsFields(t *testing.T) {
	s := setupServer(t)
	s.gate.decision = gate.Decision{Outcome: audit.OutcomeAccepted, ReasonCode: reasoncodes.Accepted}

	w := s.do(http.MethodPost, "/v1/emails", `{
		"to": "team@example.org",
		"header": "hi",
		"message": "hello",
		"senders": ["bob", "alice"],
		"group_signature": {"pi_a": ["1", "2", "1"]}
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NotNil(t, s.gate.got.Recipient)
	assert.Equal(t, "team@example.org", *s.gate.got.Recipient)
	assert.Equal(t, "hi", s.gate.got.Subject)
	assert.Equal(t, "hello", s.gate.got.Body)
	assert.Equal(t, []string{"bob", "alice"}, s.gate.got.Members)
	assert.JSONEq(t, `{"pi_a": ["1", "2", "1"]}`, s.gate.got.Proof)
}

func TestSubmitEmailStringSignature(t *testing.T) {
	s := setupServer(t)
	s.gate.decision = gate.Decision{Outcome: audit.OutcomeAccepted, ReasonCode: reasoncodes.Accepted}

	w := s.do(http.MethodPost, "/v1/emails", `{"header":"h","message":"m","senders":["a"],"group_signature":"{\"pi_a\":[]}"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, s.gate.got.Recipient)
	assert.Equal(t, `{"pi_a":[]}`, s.gate.got.Proof)
}

func TestSubmitEmailInvalidJSON(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/v1/emails", `{"senders": "alice"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(reasoncodes.ErrUnmarshal))
}

func TestListAndGetEmails(t *testing.T) {
	s := setupServer(t)
	record := &email.Record{Recipient: "group@example.org", Message: "hello", Senders: []string{"alice"}, GroupSignature: "{}"}
	require.NoError(t, s.repository.Insert(context.Background(), record))

	w := s.do(http.MethodGet, "/v1/emails", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []email.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, record.RecordId, records[0].RecordId)

	w = s.do(http.MethodGet, "/v1/emails/"+record.RecordId, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"hello"`)

	w = s.do(http.MethodGet, "/v1/emails/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/v1/emails?limit=5000", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBuildSignals(t *testing.T) {
	s := setupServer(t)
	s.builder.signals = []string{"1", "2", "3"}

	w := s.do(http.MethodPost, "/v1/signals", map[string]any{"senders": []string{"alice"}, "message": "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp signalsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Capacity)
	assert.Equal(t, []string{"1", "2", "3"}, resp.PublicSignals)
}

func TestBuildSignalsErrors(t *testing.T) {
	s := setupServer(t)

	s.builder.err = fmt.Errorf("member alice: %w", keys.ErrNetwork)
	w := s.do(http.MethodPost, "/v1/signals", map[string]any{"senders": []string{"alice"}, "message": "hello"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	s.builder.err = signal.ErrEmptyGroup
	w = s.do(http.MethodPost, "/v1/signals", map[string]any{"senders": []string{}, "message": "hello"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(reasoncodes.ErrEmptyGroup))
}

func TestHealthAndAudit(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodGet, "/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = s.do(http.MethodGet, "/v1/audit", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	s := setupServer(t)
	limited := gin.New()
	rest.Register(limited, []rest.Middleware{rest.NewMiddleware("*", rest.BodyLimit(64))}, s.routes)

	body := fmt.Sprintf(`{"senders":["alice"],"message":%q}`, strings.Repeat("x", 128))
	for _, path := range []string{"/v1/emails", "/v1/signals"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = -1
		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, path)
		assert.Contains(t, w.Body.String(), string(reasoncodes.ErrRequestTooLarge), path)
	}
	assert.Empty(t, s.gate.got.Members)
}
