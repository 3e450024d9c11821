package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/internal/services"
	"github.com/huangang/portfolio/pkg/response"
)

type ThemeHandler struct {
	themeService *services.ThemeService
}

func NewThemeHandler(themeService *services.ThemeService) *ThemeHandler {
	return &ThemeHandler{themeService: themeService}
}

// List returns the predefined palettes
// GET /api/themes
func (h *ThemeHandler) List(c *gin.Context) {
	themes := services.PredefinedThemes()
	response.List(c, themes, len(themes))
}

// Apply sets a theme on one college or on all of them
// POST /api/themes/apply
func (h *ThemeHandler) Apply(c *gin.Context) {
	var req services.ApplyThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	colleges, err := h.themeService.Apply(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, colleges, len(colleges))
}

// Resolve returns the palette a college's site renders with
// GET /api/colleges/:id/theme
func (h *ThemeHandler) Resolve(c *gin.Context) {
	colors, err := h.themeService.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, colors)
}

// GET /api/themes/custom
func (h *ThemeHandler) GetCustom(c *gin.Context) {
	colors, ok, err := h.themeService.GetCustomTheme(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		response.Success(c, nil)
		return
	}
	response.Success(c, colors)
}

// PUT /api/themes/custom
func (h *ThemeHandler) SaveCustom(c *gin.Context) {
	var colors models.ThemeColors
	if err := c.ShouldBindJSON(&colors); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.themeService.SaveCustomTheme(c.Request.Context(), &colors); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, colors)
}
