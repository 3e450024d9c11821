package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/middleware"
	"github.com/huangang/portfolio/internal/services"
	"github.com/huangang/portfolio/pkg/logger"
	"github.com/huangang/portfolio/pkg/response"
)

const maxBackupSize = 20 << 20

type BackupHandler struct {
	backupService *services.BackupService
	taskQueue     services.TaskQueue
}

func NewBackupHandler(backupService *services.BackupService, taskQueue services.TaskQueue) *BackupHandler {
	return &BackupHandler{backupService: backupService, taskQueue: taskQueue}
}

// Export downloads the whole store as a JSON document
// GET /api/backup/export
func (h *BackupHandler) Export(c *gin.Context) {
	doc, err := h.backupService.Export(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+services.Filename(time.Now())+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Import replaces the store with an uploaded document. The document is
// accepted either as the request body or as a multipart "file" field.
// POST /api/backup/import
func (h *BackupHandler) Import(c *gin.Context) {
	raw, err := readBackupPayload(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	n, err := h.backupService.Import(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"keys": n})
}

func readBackupPayload(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, errors.New("backup document required")
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupSize)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, errors.New("backup file required")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("backup document required")
	}
	return raw, nil
}

// Clear wipes the store
// POST /api/backup/clear
func (h *BackupHandler) Clear(c *gin.Context) {
	if err := h.backupService.ClearAll(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

// GET /api/backup/info
func (h *BackupHandler) Info(c *gin.Context) {
	info, err := h.backupService.Info(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, info)
}

// Snapshot queues a snapshot file write
// POST /api/backup/snapshot
func (h *BackupHandler) Snapshot(c *gin.Context) {
	task := &services.SnapshotTask{Reason: "manual", RequestedBy: middleware.GetUsername(c)}
	if err := h.taskQueue.Enqueue(task); err != nil {
		logger.Errorf("[Backup] Failed to enqueue snapshot: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, response.Response{
		Code:    0,
		Message: "snapshot queued",
		Data:    gin.H{"async": h.taskQueue.IsAsync()},
	})
}

// GET /api/backup/snapshots
func (h *BackupHandler) ListSnapshots(c *gin.Context) {
	files, err := h.backupService.ListSnapshots()
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, files, len(files))
}
