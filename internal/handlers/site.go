package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/site"
	"github.com/huangang/portfolio/pkg/response"
)

type SiteHandler struct {
	renderer *site.Renderer
}

func NewSiteHandler(renderer *site.Renderer) *SiteHandler {
	return &SiteHandler{renderer: renderer}
}

// templateID parses the :template param. Anything that is not a number
// selects the default template.
func templateID(c *gin.Context) int {
	id, err := strconv.Atoi(c.Param("template"))
	if err != nil {
		return site.DefaultTemplateID
	}
	return id
}

// RenderHTML serves a public college page
// GET /site/:template?college=
func (h *SiteHandler) RenderHTML(c *gin.Context) {
	page, err := h.renderer.Render(c.Request.Context(), templateID(c), c.Query("college"))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.WriteHTML(&buf, page); err != nil {
		response.Error(c, response.NewServerError("failed to render page").WithCause(err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// RenderJSON returns the same page data for client-side templates
// GET /api/site/:template?college=
func (h *SiteHandler) RenderJSON(c *gin.Context) {
	page, err := h.renderer.Render(c.Request.Context(), templateID(c), c.Query("college"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, page)
}

// Templates lists the available site templates
// GET /api/site
func (h *SiteHandler) Templates(c *gin.Context) {
	bundles := h.renderer.Registry().List()
	response.List(c, bundles, len(bundles))
}
