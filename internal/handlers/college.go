package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/services"
	"github.com/huangang/portfolio/pkg/response"
)

type CollegeHandler struct {
	collegeService *services.CollegeService
}

func NewCollegeHandler(collegeService *services.CollegeService) *CollegeHandler {
	return &CollegeHandler{collegeService: collegeService}
}

// List returns colleges
// GET /api/colleges
func (h *CollegeHandler) List(c *gin.Context) {
	var req services.CollegeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	colleges, err := h.collegeService.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, colleges, len(colleges))
}

// GET /api/colleges/:id
func (h *CollegeHandler) GetByID(c *gin.Context) {
	college, err := h.collegeService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, college)
}

// POST /api/colleges
func (h *CollegeHandler) Create(c *gin.Context) {
	var req services.CreateCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	college, err := h.collegeService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, college)
}

// Update changes a college. Unknown ids are reported with updated=false.
// PUT /api/colleges/:id
func (h *CollegeHandler) Update(c *gin.Context) {
	var req services.UpdateCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	college, updated, err := h.collegeService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": updated, "college": college})
}

// DELETE /api/colleges/:id
func (h *CollegeHandler) Delete(c *gin.Context) {
	removed, err := h.collegeService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": removed})
}

type toggleModuleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// PUT /api/colleges/:id/modules/:key
func (h *CollegeHandler) ToggleModule(c *gin.Context) {
	var req toggleModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	college, err := h.collegeService.ToggleModule(c.Request.Context(), c.Param("id"), c.Param("key"), *req.Enabled)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, college)
}
