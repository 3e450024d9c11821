package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/services"
	"github.com/huangang/portfolio/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackupRouter(t *testing.T, s store.Store) (*gin.Engine, *services.SyncQueue) {
	t.Helper()
	backup := services.NewBackupService(s, t.TempDir(), 3)
	queue := services.NewSyncQueue()
	queue.SetProcessor(services.SnapshotProcessor(backup))
	t.Cleanup(func() { queue.Close() })

	h := NewBackupHandler(backup, queue)
	r := gin.New()
	r.GET("/api/backup/export", h.Export)
	r.POST("/api/backup/import", h.Import)
	r.POST("/api/backup/clear", h.Clear)
	r.GET("/api/backup/info", h.Info)
	r.POST("/api/backup/snapshot", h.Snapshot)
	r.GET("/api/backup/snapshots", h.ListSnapshots)
	return r, queue
}

func TestBackupHandler_ExportIsAttachment(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(t.Context(), store.KeySettings, `{"darkMode":true}`))
	r, _ := newBackupRouter(t, s)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/backup/export", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	disposition := w.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, `attachment; filename="portfolio-backup-`), disposition)
	assert.Contains(t, w.Body.String(), `"darkMode": true`)
	// The export is a snapshot taken before the backup time is stamped.
	assert.NotContains(t, w.Body.String(), `"lastBackupTime"`)
	stamped, ok, err := s.Get(t.Context(), store.KeyLastBackupTime)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, stamped)
}

func TestBackupHandler_ImportBodyAndClear(t *testing.T) {
	s := store.NewMemoryStore()
	r, _ := newBackupRouter(t, s)

	w, env := doJSON(t, r, "POST", "/api/backup/import", map[string]interface{}{
		"colleges": []interface{}{},
		"settings": map[string]interface{}{"darkMode": false, "accentColor": "green"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"keys":2}`, string(env.Data))

	v, ok, err := s.Get(t.Context(), store.KeySettings)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"darkMode":false,"accentColor":"green"}`, v)

	w, _ = doJSON(t, r, "POST", "/api/backup/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	keys, err := s.Keys(t.Context())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBackupHandler_ImportMultipart(t *testing.T) {
	s := store.NewMemoryStore()
	r, _ := newBackupRouter(t, s)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "portfolio-backup-2024-01-01.json")
	require.NoError(t, err)
	_, _ = part.Write([]byte(`{"customModules":[{"key":"alumni","label":"Alumni"}]}`))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/backup/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	_, ok, err := s.Get(t.Context(), store.KeyCustomModules)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBackupHandler_ImportIgnoresFormContentType(t *testing.T) {
	s := store.NewMemoryStore()
	r, _ := newBackupRouter(t, s)

	// curl -d sends this content type by default.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/backup/import", strings.NewReader(`{"settings":{"darkMode":true}}`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	v, ok, err := s.Get(t.Context(), store.KeySettings)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, v, "darkMode")
}

func TestBackupHandler_ImportMultipartWithoutFile(t *testing.T) {
	r, _ := newBackupRouter(t, store.NewMemoryStore())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/backup/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBackupHandler_ImportRejectsMalformed(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(t.Context(), store.KeySettings, `{"darkMode":true}`))
	r, _ := newBackupRouter(t, s)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/backup/import", strings.NewReader("{broken"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/backup/import", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, ok, err := s.Get(t.Context(), store.KeySettings)
	require.NoError(t, err)
	assert.True(t, ok, "a rejected import must leave the store untouched")
}

func TestBackupHandler_SnapshotQueued(t *testing.T) {
	r, queue := newBackupRouter(t, store.NewMemoryStore())

	w, env := doJSON(t, r, "POST", "/api/backup/snapshot", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"async":false}`, string(env.Data))

	require.NoError(t, queue.Close())
	w, env = doJSON(t, r, "GET", "/api/backup/snapshots", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"total":1`)
}
