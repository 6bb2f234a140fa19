package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadcrm/internal/middleware"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type RootHandler struct {
	store Pinger
	log   *zap.Logger
}

func NewRootHandler(store Pinger, log *zap.Logger) *RootHandler {
	return &RootHandler{store: store, log: log}
}

// Welcome godoc
// @Summary  API banner
// @Tags     Meta
// @Produce  json
// @Success  200  {object}  handlers.MessageResponse
// @Router   / [get]
func (h *RootHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "Welcome to the Advanced CRM API"})
}

// Health godoc
// @Summary  Liveness and store reachability
// @Tags     Meta
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  503  {object}  handlers.ErrorResponse
// @Router   /healthz [get]
func (h *RootHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		middleware.Logger(c, h.log).Warn("store ping failed", zap.Error(err))
		abortDetail(c, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
