package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/internal/services"
	"github.com/huangang/portfolio/pkg/response"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, settings)
}

// PUT /api/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, settings)
}

// GET /api/college-info
func (h *SettingsHandler) GetCollegeInfo(c *gin.Context) {
	info, err := h.settingsService.GetCollegeInfo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, info)
}

// PUT /api/college-info
func (h *SettingsHandler) UpdateCollegeInfo(c *gin.Context) {
	var info models.CollegeInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.settingsService.UpdateCollegeInfo(c.Request.Context(), info); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, info)
}
