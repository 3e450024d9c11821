package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/services"
	"github.com/huangang/portfolio/pkg/response"
)

type AnnouncementHandler struct {
	announcementService *services.AnnouncementService
}

func NewAnnouncementHandler(announcementService *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// List returns announcements newest first with their target names
// GET /api/announcements?college=
func (h *AnnouncementHandler) List(c *gin.Context) {
	var req services.AnnouncementListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	views, err := h.announcementService.ListViews(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, views, len(views))
}

// GET /api/announcements/:id
func (h *AnnouncementHandler) Get(c *gin.Context) {
	view, err := h.announcementService.GetView(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}

// POST /api/announcements
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req services.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	announcement, err := h.announcementService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, announcement)
}

// PUT /api/announcements/:id
func (h *AnnouncementHandler) Update(c *gin.Context) {
	var req services.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	announcement, updated, err := h.announcementService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": updated, "announcement": announcement})
}

// DELETE /api/announcements/:id
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	removed, err := h.announcementService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": removed})
}
