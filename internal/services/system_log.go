package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/pkg/logger"
	"gorm.io/gorm"
)

const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

const dateLayout = "2006-01-02"

// AuditEntry is one dashboard operation to be recorded.
type AuditEntry struct {
	Module    string
	Action    string
	Message   string
	UserID    *uint
	IP        string
	UserAgent string
	Extra     interface{}
}

var auditDB *gorm.DB

// InitSystemLogger sets the database audit entries go to. A nil db turns
// recording off.
func InitSystemLogger(db *gorm.DB) {
	auditDB = db
}

func LogInfo(e AuditEntry)    { Record(LogLevelInfo, e) }
func LogWarning(e AuditEntry) { Record(LogLevelWarning, e) }
func LogError(e AuditEntry)   { Record(LogLevelError, e) }

// Record writes e at level. Failures are logged and swallowed so an audit
// problem never fails the request being audited.
func Record(level string, e AuditEntry) {
	if auditDB == nil {
		return
	}

	row := &models.SystemLog{
		Level:     level,
		Module:    e.Module,
		Action:    e.Action,
		Message:   e.Message,
		UserID:    e.UserID,
		IP:        e.IP,
		UserAgent: e.UserAgent,
		CreatedAt: time.Now(),
	}
	if e.Extra != nil {
		if b, err := json.Marshal(e.Extra); err == nil {
			row.Extra = string(b)
		}
	}
	if err := auditDB.Create(row).Error; err != nil {
		logger.Warn().Err(err).Str("module", e.Module).Str("action", e.Action).Msg("[SystemLog] Failed to write audit entry")
	}
}

type SystemLogService struct {
	db *gorm.DB
}

func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db}
}

// SystemLogListRequest filters the audit trail. Dates are YYYY-MM-DD and
// both ends are inclusive.
type SystemLogListRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Level     string `form:"level" binding:"omitempty,oneof=info warning error"`
	Module    string `form:"module"`
	Action    string `form:"action"`
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Search    string `form:"search"`
}

type SystemLogListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []models.SystemLog `json:"items"`
}

func (s *SystemLogService) List(req *SystemLogListRequest) (*SystemLogListResponse, error) {
	page, pageSize := req.Page, req.PageSize
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}

	query, err := s.filter(req)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	logs := make([]models.SystemLog, 0, pageSize)
	if err := query.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&logs).Error; err != nil {
		return nil, err
	}

	return &SystemLogListResponse{Total: total, Page: page, PageSize: pageSize, Items: logs}, nil
}

func (s *SystemLogService) filter(req *SystemLogListRequest) (*gorm.DB, error) {
	query := s.db.Model(&models.SystemLog{})

	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.Action != "" {
		query = query.Where("action LIKE ?", "%"+req.Action+"%")
	}
	if req.StartDate != "" {
		start, err := time.ParseInLocation(dateLayout, req.StartDate, time.Local)
		if err != nil {
			return nil, fmt.Errorf("start_date: %w", err)
		}
		query = query.Where("created_at >= ?", start)
	}
	if req.EndDate != "" {
		end, err := time.ParseInLocation(dateLayout, req.EndDate, time.Local)
		if err != nil {
			return nil, fmt.Errorf("end_date: %w", err)
		}
		query = query.Where("created_at < ?", end.AddDate(0, 0, 1))
	}
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("message LIKE ? OR action LIKE ?", like, like)
	}
	return query, nil
}

// GetModules lists the distinct modules present in the audit trail.
func (s *SystemLogService) GetModules() ([]string, error) {
	var modules []string
	err := s.db.Model(&models.SystemLog{}).Distinct("module").Order("module").Pluck("module", &modules).Error
	return modules, err
}

// CleanupOldLogs deletes entries older than retentionDays and returns how
// many were removed. A non-positive retention keeps everything.
func (s *SystemLogService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
