package handlers

import (
	"errors"
	"net/http"

	"group-mail/pkg/reasoncodes"

	"github.com/gin-gonic/gin"
)

func statusFor(reason reasoncodes.ReasonCode) int {
	switch reason {
	case reasoncodes.Accepted:
		return http.StatusCreated
	case reasoncodes.ErrProofRejected:
		return http.StatusForbidden
	case reasoncodes.ErrUnmarshal,
		reasoncodes.ErrInvalidRequest,
		reasoncodes.ErrInvalidProofFormat,
		reasoncodes.ErrGroupTooLarge,
		reasoncodes.ErrEmptyGroup:
		return http.StatusBadRequest
	case reasoncodes.ErrRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case reasoncodes.ErrKeyFetch:
		return http.StatusBadGateway
	case reasoncodes.ErrKeyData, reasoncodes.ErrLimbOverflow:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error      string                 `json:"error"`
	ReasonCode reasoncodes.ReasonCode `json:"reason_code"`
}

func abortBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large", ReasonCode: reasoncodes.ErrRequestTooLarge})
		return
	}
	c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid JSON", ReasonCode: reasoncodes.ErrUnmarshal})
}
