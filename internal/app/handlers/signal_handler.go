package handlers

import (
	"context"
	"net/http"

	"group-mail/internal/app/gate"

	"github.com/gin-gonic/gin"
)

type VectorBuilder interface {
	BuildVector(ctx context.Context, usernames []string, message string) ([]string, error)
	Capacity() int
}

type SignalHandler struct {
	builder VectorBuilder
}

func NewSignalHandler(builder VectorBuilder) *SignalHandler {
	return &SignalHandler{builder: builder}
}

type signalsRequest struct {
	Senders []string `json:"senders"`
	Message string   `json:"message"`
}

type signalsResponse struct {
	Capacity      int      `json:"capacity"`
	PublicSignals []string `json:"public_signals"`
}

// BuildSignals godoc
// @Summary      Public signals for a group and message
// @Description  Returns the public-signal vector a prover must commit to
// @Tags         Signals
// @Accept       json
// @Produce      json
// @Param        body  body      signalsRequest  true  "Group and message"
// @Success      200  {object}  signalsResponse
// @Failure      400  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/signals [post]
func (h *SignalHandler) BuildSignals(c *gin.Context) {
	var req signalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBindError(c, err)
		return
	}

	signals, err := h.builder.BuildVector(c.Request.Context(), req.Senders, req.Message)
	if err != nil {
		reason := gate.ReasonFor(err)
		c.JSON(statusFor(reason), errorResponse{Error: err.Error(), ReasonCode: reason})
		return
	}

	c.JSON(http.StatusOK, signalsResponse{
		Capacity:      h.builder.Capacity(),
		PublicSignals: signals,
	})
}
