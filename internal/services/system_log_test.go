package services

import (
	"testing"
	"time"

	"github.com/huangang/portfolio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemLogService_ListAndModules(t *testing.T) {
	db := newTestDB(t)
	InitSystemLogger(db)
	t.Cleanup(func() { InitSystemLogger(nil) })

	LogInfo(AuditEntry{Module: "College", Action: "Create", Message: "created Riverside", IP: "127.0.0.1", Extra: map[string]string{"id": "c1"}})
	LogWarning(AuditEntry{Module: "Backup", Action: "Import", Message: "imported 3 keys", IP: "127.0.0.1"})
	LogError(AuditEntry{Module: "Backup", Action: "Clear", Message: "cleared store", IP: "127.0.0.1"})

	svc := NewSystemLogService(db)
	resp, err := svc.List(&SystemLogListRequest{Module: "Backup"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)

	resp, err = svc.List(&SystemLogListRequest{Search: "Riverside"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.JSONEq(t, `{"id":"c1"}`, resp.Items[0].Extra)

	today := time.Now().Format("2006-01-02")
	resp, err = svc.List(&SystemLogListRequest{Level: LogLevelError, StartDate: today, EndDate: today})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Clear", resp.Items[0].Action)

	resp, err = svc.List(&SystemLogListRequest{EndDate: time.Now().AddDate(0, 0, -1).Format("2006-01-02")})
	require.NoError(t, err)
	assert.Zero(t, resp.Total)

	modules, err := svc.GetModules()
	require.NoError(t, err)
	assert.Equal(t, []string{"Backup", "College"}, modules)
}

func TestSystemLogService_CleanupOldLogs(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemLogService(db)

	require.NoError(t, db.Create(&models.SystemLog{Level: "info", Module: "College", CreatedAt: time.Now().AddDate(0, 0, -40)}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Level: "info", Module: "College", CreatedAt: time.Now()}).Error)

	deleted, err := svc.CleanupOldLogs(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = svc.CleanupOldLogs(0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(NewSyncQueue(), nil)
	assert.Error(t, s.ScheduleSnapshots("not a cron spec"))
	assert.NoError(t, s.ScheduleSnapshots(""))
	assert.NoError(t, s.ScheduleSnapshots("0 3 * * *"))
	assert.NoError(t, s.ScheduleLogCleanup(30))
	s.Start()
	s.Stop()
}
