package handlers

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/services"
	"github.com/huangang/portfolio/pkg/logger"
	"gorm.io/gorm"
)

var startTime = time.Now()

type MetricsHandler struct {
	db            *gorm.DB
	colleges      *services.CollegeService
	announcements *services.AnnouncementService
	modules       *services.ModuleService
	backup        *services.BackupService
	queue         services.TaskQueue
	hub           *services.EventHub
}

func NewMetricsHandler(db *gorm.DB, colleges *services.CollegeService, announcements *services.AnnouncementService,
	modules *services.ModuleService, backup *services.BackupService, queue services.TaskQueue, hub *services.EventHub) *MetricsHandler {
	return &MetricsHandler{
		db:            db,
		colleges:      colleges,
		announcements: announcements,
		modules:       modules,
		backup:        backup,
		queue:         queue,
		hub:           hub,
	}
}

// Metrics returns Prometheus text format gauges.
// GET /metrics
func (h *MetricsHandler) Metrics(c *gin.Context) {
	ctx := c.Request.Context()
	var b strings.Builder

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	writeGauge(&b, "portfolio_uptime_seconds", "Time since server start in seconds", time.Since(startTime).Seconds())
	writeGauge(&b, "portfolio_goroutines", "Number of active goroutines", float64(runtime.NumGoroutine()))
	writeGauge(&b, "portfolio_memory_alloc_bytes", "Current heap allocation in bytes", float64(m.Alloc))
	writeGauge(&b, "portfolio_gc_runs_total", "Total number of GC runs", float64(m.NumGC))

	if h.db != nil {
		if sqlDB, err := h.db.DB(); err == nil {
			stats := sqlDB.Stats()
			writeGauge(&b, "portfolio_db_open_connections", "Number of open DB connections", float64(stats.OpenConnections))
			writeGauge(&b, "portfolio_db_in_use_connections", "Number of in-use DB connections", float64(stats.InUse))
		}
	}

	if h.hub != nil {
		writeGauge(&b, "portfolio_sse_active_clients", "Number of active SSE connections", float64(h.hub.ClientCount()))
	}

	queueAsync := 0.0
	if h.queue != nil && h.queue.IsAsync() {
		queueAsync = 1.0
	}
	writeGauge(&b, "portfolio_queue_async_enabled", "Whether the Redis task queue is enabled (1=yes, 0=no)", queueAsync)

	if stats, err := h.colleges.Stats(ctx); err == nil {
		writeGauge(&b, "portfolio_colleges_total", "Number of colleges", float64(stats.Total))
		writeGauge(&b, "portfolio_colleges_active", "Number of active colleges", float64(stats.Active))
	} else {
		logger.Warn().Err(err).Msg("[Metrics] colleges unavailable")
	}
	if n, err := h.announcements.Count(ctx); err == nil {
		writeGauge(&b, "portfolio_announcements_total", "Number of announcements", float64(n))
	}
	if n, err := h.modules.Count(ctx); err == nil {
		writeGauge(&b, "portfolio_custom_modules_total", "Number of custom modules", float64(n))
	}
	if size, err := h.backup.ComputeSize(ctx); err == nil {
		writeGauge(&b, "portfolio_store_size_bytes", "Approximate size of stored data in bytes", float64(size))
	}

	c.Data(200, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
}

func writeGauge(b *strings.Builder, name, help string, value float64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
	fmt.Fprintf(b, "%s %g\n\n", name, value)
}
