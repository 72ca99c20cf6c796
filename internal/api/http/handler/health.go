package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authgate/internal/model"
)

const healthProbeTimeout = 2 * time.Second

type healthResponse struct {
	Status       string `json:"status"`
	DurableStore string `json:"durableStore"`
}

// Health reports liveness and whether the durable store answers. The service
// keeps working on the in-memory store, so the status code is always 200.
type Health struct {
	pinger model.Pinger
}

// NewHealth creates a health handler. pinger is nil when no durable store is configured.
func NewHealth(pinger model.Pinger) *Health {
	return &Health{pinger: pinger}
}

func (h *Health) Check(c *gin.Context) {
	resp := healthResponse{Status: "ok", DurableStore: "disabled"}

	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
		defer cancel()

		resp.DurableStore = "up"
		if err := h.pinger.Ping(ctx); err != nil {
			resp.DurableStore = "down"
		}
	}

	c.JSON(http.StatusOK, resp)
}
