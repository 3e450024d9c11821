package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/services"
	"github.com/huangang/portfolio/pkg/response"
)

type ModuleHandler struct {
	moduleService *services.ModuleService
}

func NewModuleHandler(moduleService *services.ModuleService) *ModuleHandler {
	return &ModuleHandler{moduleService: moduleService}
}

// List returns built-in and custom modules
// GET /api/modules
func (h *ModuleHandler) List(c *gin.Context) {
	modules, err := h.moduleService.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, modules, len(modules))
}

// POST /api/modules
func (h *ModuleHandler) Create(c *gin.Context) {
	var req services.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	module, err := h.moduleService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, module)
}

// DELETE /api/modules/:key
func (h *ModuleHandler) Delete(c *gin.Context) {
	if err := h.moduleService.Delete(c.Request.Context(), c.Param("key")); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
