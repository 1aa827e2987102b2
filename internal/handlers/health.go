package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medconnect-server/internal/utils"
)

const pingTimeout = 3 * time.Second

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
	Driver string
	Ping   func(ctx context.Context) error
}

// NewHealthHandler creates a new HealthHandler. A nil ping always succeeds.
func NewHealthHandler(driver string, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{Driver: driver, Ping: ping}
}

// Health reports that the server is up.
func (h *HealthHandler) Health(c *gin.Context) {
	utils.Success(c, "Server is running", gin.H{"status": "ok", "time": time.Now().UTC()})
}

// Database reports whether the configured database answers a ping.
func (h *HealthHandler) Database(c *gin.Context) {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("driver", h.Driver).Msg("database ping failed")
			utils.Error(c, http.StatusServiceUnavailable, "Database is unreachable")
			return
		}
	}
	utils.Success(c, "Database is reachable", gin.H{"driver": h.Driver})
}
