package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/config"
	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/internal/services"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseRouteInfo(t *testing.T) {
	tests := []struct {
		path   string
		method string
		module string
		action string
	}{
		{"/api/colleges", "POST", "Colleges", "Create"},
		{"/api/colleges/:id", "PUT", "Colleges", "Update"},
		{"/api/colleges/:id", "DELETE", "Colleges", "Delete"},
		{"/api/colleges/:id/modules/:key", "PUT", "Colleges", "Toggle Module"},
		{"/api/themes/apply", "POST", "Themes", "Apply"},
		{"/api/themes/custom", "PUT", "Themes", "Save Custom"},
		{"/api/backup/import", "POST", "Backup", "Import"},
		{"/api/backup/clear", "POST", "Backup", "Clear"},
		{"/api/college-info", "PUT", "College Info", "Update"},
		{"", "POST", "Unknown", "Create"},
	}

	for _, tt := range tests {
		module, action := parseRouteInfo(tt.path, tt.method)
		if module != tt.module || action != tt.action {
			t.Errorf("parseRouteInfo(%q, %q) = (%q, %q), expected (%q, %q)",
				tt.path, tt.method, module, action, tt.module, tt.action)
		}
	}
}

func TestMaskSensitiveFields(t *testing.T) {
	body := `{"username":"admin","password": "hunter2","logo":"data:image/png;base64,AAAA\"BB","name":"Riverside"}`
	masked := maskSensitiveFields(body)

	if strings.Contains(masked, "hunter2") {
		t.Errorf("password leaked: %s", masked)
	}
	if strings.Contains(masked, "base64") {
		t.Errorf("logo data leaked: %s", masked)
	}
	if !strings.Contains(masked, `"name":"Riverside"`) {
		t.Errorf("other fields should be kept: %s", masked)
	}
	if !strings.Contains(masked, `"password": "***"`) {
		t.Errorf("password should be replaced by ***: %s", masked)
	}
}

func TestMaskSensitiveFields_NonASCII(t *testing.T) {
	// Ⱥ lowercases to a longer encoding, so offsets must come from the raw body.
	body := `{"name":"` + strings.Repeat("Ⱥ", 30) + `","LOGO":"data:image/png;base64,QUJD","Token":"abc"}`
	masked := maskSensitiveFields(body)

	if strings.Contains(masked, "base64") || strings.Contains(masked, "abc") {
		t.Errorf("sensitive values leaked: %s", masked)
	}
	if !strings.HasPrefix(masked, `{"name":"`+strings.Repeat("Ⱥ", 30)+`"`) {
		t.Errorf("name should be untouched: %s", masked)
	}
}

func TestMaskSensitiveFields_TruncatedValue(t *testing.T) {
	masked := maskSensitiveFields(`{"username":"admin","password":"hunter`)
	if strings.Contains(masked, "hunter") {
		t.Errorf("partial password leaked: %s", masked)
	}
	if masked != `{"username":"admin","password":"***` {
		t.Errorf("unexpected mask %q", masked)
	}
}

func TestFormatAuditMessage(t *testing.T) {
	if got := formatAuditMessage("admin", "DELETE", "/api/colleges/1", 200); got != "[Audit] admin DELETE /api/colleges/1 → OK" {
		t.Errorf("unexpected message %q", got)
	}
	if got := formatAuditMessage("admin", "POST", "/api/modules", 409); !strings.HasSuffix(got, "Failed") {
		t.Errorf("unexpected message %q", got)
	}
}

func TestAuditLog_WritesSystemLog(t *testing.T) {
	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, gormlogger.Silent)
	if err != nil {
		t.Fatal(err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatal(err)
	}
	services.InitSystemLogger(db)
	defer services.InitSystemLogger(nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserID, uint(7))
		c.Set(ContextUsername, "admin")
		c.Next()
	})
	router.Use(AuditLog())
	router.GET("/api/colleges", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/colleges", func(c *gin.Context) { c.Status(http.StatusCreated) })

	for _, method := range []string{"GET", "POST"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(method, "/api/colleges", strings.NewReader(`{"name":"Riverside"}`))
		router.ServeHTTP(w, req)
	}

	var logs []models.SystemLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 audit entry for the write, got %d", len(logs))
	}
	if logs[0].Module != "Colleges" || logs[0].Action != "Create" {
		t.Errorf("entry = %s/%s", logs[0].Module, logs[0].Action)
	}
	if logs[0].UserID == nil || *logs[0].UserID != 7 {
		t.Errorf("user id not recorded: %v", logs[0].UserID)
	}
	if !strings.Contains(logs[0].Extra, "Riverside") {
		t.Errorf("body snippet missing from extra: %s", logs[0].Extra)
	}
}

func newAuditTestRouter(t *testing.T) (*gin.Engine, func() []models.SystemLog) {
	t.Helper()
	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, gormlogger.Silent)
	if err != nil {
		t.Fatal(err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatal(err)
	}
	services.InitSystemLogger(db)
	t.Cleanup(func() { services.InitSystemLogger(nil) })

	router := gin.New()
	router.Use(gin.Recovery(), AuditLog())
	return router, func() []models.SystemLog {
		var logs []models.SystemLog
		if err := db.Find(&logs).Error; err != nil {
			t.Fatal(err)
		}
		return logs
	}
}

func TestAuditLog_NonASCIIBodyReachesHandler(t *testing.T) {
	router, logs := newAuditTestRouter(t)
	reached := false
	router.POST("/api/colleges", func(c *gin.Context) {
		reached = true
		c.Status(http.StatusCreated)
	})

	body := `{"name":"` + strings.Repeat("Ⱥ", 30) + `","logo":"data:image/png;base64,QUJD"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/colleges", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if !reached || w.Code != http.StatusCreated {
		t.Fatalf("handler reached=%v status=%d", reached, w.Code)
	}
	entries := logs()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if strings.Contains(entries[0].Extra, "base64") {
		t.Errorf("logo data leaked into audit log: %s", entries[0].Extra)
	}
}

func TestAuditLog_LargeBodyStreamsToHandler(t *testing.T) {
	router, logs := newAuditTestRouter(t)
	var received int
	router.POST("/api/backup/import", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		received = len(data)
		c.Status(http.StatusOK)
	})

	payload := `{"data":"` + strings.Repeat("x", 3*maxAuditCapture) + `"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/backup/import", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if received != len(payload) {
		t.Errorf("handler read %d bytes, want %d", received, len(payload))
	}
	entries := logs()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if !strings.Contains(entries[0].Extra, "[truncated]") {
		t.Errorf("snippet should be truncated")
	}
	if len(entries[0].Extra) > maxAuditCapture {
		t.Errorf("audit extra holds %d bytes", len(entries[0].Extra))
	}
}
