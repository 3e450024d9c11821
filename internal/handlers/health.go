package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/services"
	"github.com/huangang/portfolio/internal/store"
	"gorm.io/gorm"
)

// HealthHandler reports the state of every subsystem.
type HealthHandler struct {
	db      *gorm.DB
	store   store.Store
	backend string
	queue   services.TaskQueue
	hub     *services.EventHub
}

func NewHealthHandler(db *gorm.DB, s store.Store, backend string, queue services.TaskQueue, hub *services.EventHub) *HealthHandler {
	return &HealthHandler{db: db, store: s, backend: backend, queue: queue, hub: hub}
}

// CheckHealth returns 503 when the database or the store cannot be reached.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	if h.db == nil {
		dbStatus = "disabled"
	} else if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	storeStatus := "ok"
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	keys, err := h.store.Keys(ctx)
	if err != nil {
		storeStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	queueMode := "sync"
	if h.queue != nil && h.queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	status := http.StatusOK
	if overall != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":  overall,
		"service": "portfolio",
		"components": gin.H{
			"database":    dbStatus,
			"store":       storeStatus,
			"storage":     h.backend,
			"store_keys":  len(keys),
			"queue_mode":  queueMode,
			"sse_clients": h.hub.ClientCount(),
		},
	})
}
