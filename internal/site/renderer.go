package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"regexp"

	"github.com/huangang/portfolio/internal/content"
	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrCollegeInactive = errors.New("college is not active")

// Page is everything a template needs to render.
type Page struct {
	Template      *Bundle               `json:"template"`
	College       *models.College       `json:"college,omitempty"`
	Colors        models.ThemeColors    `json:"colors"`
	Announcements []models.Announcement `json:"announcements"`
	Info          models.CollegeInfo    `json:"info"`
	Sections      []content.Result      `json:"sections"`
}

type Renderer struct {
	registry      *Registry
	source        content.Source
	colleges      *services.CollegeService
	announcements *services.AnnouncementService
	settings      *services.SettingsService
	tmpl          *template.Template
}

func NewRenderer(registry *Registry, source content.Source, colleges *services.CollegeService, announcements *services.AnnouncementService, settings *services.SettingsService) (*Renderer, error) {
	tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse site templates: %w", err)
	}
	return &Renderer{
		registry:      registry,
		source:        source,
		colleges:      colleges,
		announcements: announcements,
		settings:      settings,
		tmpl:          tmpl,
	}, nil
}

// Render builds the page for templateID. With an empty collegeID the page
// shows every section with the default palette and broadcast announcements.
func (r *Renderer) Render(ctx context.Context, templateID int, collegeID string) (*Page, error) {
	page := &Page{Template: r.registry.Get(templateID)}

	if collegeID != "" {
		college, err := r.colleges.Get(ctx, collegeID)
		if err != nil {
			return nil, err
		}
		if !college.IsActive() {
			return nil, ErrCollegeInactive
		}
		page.College = college
	}
	page.Colors = services.ResolveColors(page.College)

	target := collegeID
	if target == "" {
		target = models.TargetAllColleges
	}
	announcements, err := r.announcements.VisibleTo(ctx, target)
	if err != nil {
		return nil, err
	}
	page.Announcements = announcements

	info, err := r.settings.GetCollegeInfo(ctx)
	if err != nil {
		return nil, err
	}
	page.Info = info

	reqs := make([]content.Request, 0, len(page.Template.Sections))
	for _, s := range page.Template.Sections {
		if s.Module != "" && page.College != nil && !page.College.ModuleEnabled(s.Module) {
			continue
		}
		reqs = append(reqs, content.Request{Section: s.Name, Fallback: s.Fallback})
	}
	page.Sections = content.ResolveAll(ctx, r.source, page.Template.ID, reqs)
	return page, nil
}

// WriteHTML renders page through the embedded layout.
func (r *Renderer) WriteHTML(w io.Writer, page *Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "layout.html", page); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) Registry() *Registry {
	return r.registry
}

// cssColorPattern accepts hex colors, rgb/hsl functions and named colors.
var cssColorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|(rgb|rgba|hsl|hsla)\([0-9a-zA-Z.,%\s/+-]*\)|[a-zA-Z]+)$`)

// cssColor marks a palette value safe for the stylesheet. Anything that is
// not a plain color renders as "initial".
func cssColor(v string) template.CSS {
	if cssColorPattern.MatchString(v) {
		return template.CSS(v)
	}
	return "initial"
}

var templateFuncs = template.FuncMap{
	"cssColor": cssColor,
	"text": func(c content.Content, key string) string {
		if v, ok := c[key].(string); ok {
			return v
		}
		return ""
	},
	"items": func(c content.Content, key string) []string {
		raw, ok := c[key].([]interface{})
		if !ok {
			return nil
		}
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	},
}
