package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	started time.Time
	version string
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{started: time.Now(), version: version}
}

// Health godoc
// @Summary      Liveness
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /v1/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
