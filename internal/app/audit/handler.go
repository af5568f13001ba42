package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 1000

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetEntries godoc
// @Summary Recent gate decisions
// @Produce json
// @Param limit query int false "page size (max 1000)"
// @Param offset query int false "offset"
// @Param outcome query string false "accepted, rejected, malformed or failed"
// @Success 200 {array} Entry
// @Router /v1/audit [get]
func (h *Handler) GetEntries(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	entries, err := h.service.GetEntries(c.Request.Context(), Outcome(c.Query("outcome")), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit entries"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetLogEntries godoc
// @Summary Forwarded log lines
// @Produce json
// @Success 200 {array} LogEntry
// @Router /v1/audit/logs [get]
func (h *Handler) GetLogEntries(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	entries, err := h.service.GetLogEntries(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve log entries"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func pagination(c *gin.Context) (int, int, bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return 0, 0, false
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return 0, 0, false
	}

	if limit > maxPageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit cannot exceed 1000"})
		return 0, 0, false
	}
	return limit, offset, true
}
