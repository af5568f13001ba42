package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"group-mail/internal/app/email"
	"group-mail/internal/app/gate"

	"github.com/gin-gonic/gin"
)

type Submitter interface {
	Submit(ctx context.Context, sub gate.Submission) (gate.Decision, error)
}

type EmailHandler struct {
	gate       Submitter
	repository email.Repository
}

func NewEmailHandler(g Submitter, repository email.Repository) *EmailHandler {
	return &EmailHandler{gate: g, repository: repository}
}

type submitEmailRequest struct {
	To             *string         `json:"to,omitempty"`
	Header         string          `json:"header"`
	Message        string          `json:"message"`
	Senders        []string        `json:"senders"`
	GroupSignature json.RawMessage `json:"group_signature"`
}

// proof accepts the signature either as a JSON string or as an inline object.
func (r submitEmailRequest) proof() string {
	raw := bytes.TrimSpace(r.GroupSignature)
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	return string(raw)
}

// SubmitEmail godoc
// @Summary      Submit an email on behalf of a group
// @Description  Relays the message when group_signature proves membership of one sender
// @Tags         Email
// @Accept       json
// @Produce      json
// @Param        body  body      submitEmailRequest  true  "Email"
// @Success      201  {object}  gate.Decision
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  gate.Decision
// @Failure      422  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/emails [post]
func (h *EmailHandler) SubmitEmail(c *gin.Context) {
	var req submitEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBindError(c, err)
		return
	}

	decision, err := h.gate.Submit(c.Request.Context(), gate.Submission{
		Recipient: req.To,
		Subject:   req.Header,
		Body:      req.Message,
		Members:   req.Senders,
		Proof:     req.proof(),
	})
	if err != nil {
		c.JSON(statusFor(decision.ReasonCode), errorResponse{Error: err.Error(), ReasonCode: decision.ReasonCode})
		return
	}

	c.JSON(statusFor(decision.ReasonCode), decision)
}

// ListEmails godoc
// @Summary      List accepted emails
// @Tags         Email
// @Produce      json
// @Param        limit   query  int  false  "page size (max 1000)"
// @Param        offset  query  int  false  "offset"
// @Success      200  {array}  email.Record
// @Router       /v1/emails [get]
func (h *EmailHandler) ListEmails(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 || limit > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 0 and 1000"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	records, err := h.repository.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve emails"})
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetEmail godoc
// @Summary      Get an accepted email
// @Tags         Email
// @Produce      json
// @Param        id   path      string  true  "Record ID"
// @Success      200  {object}  email.Record
// @Failure      404  {object}  map[string]string
// @Router       /v1/emails/{id} [get]
func (h *EmailHandler) GetEmail(c *gin.Context) {
	record, err := h.repository.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, email.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve email"})
		return
	}

	c.JSON(http.StatusOK, record)
}
