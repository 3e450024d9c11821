package services

import (
	"context"
	"sort"

	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/internal/store"
)

// PredefinedTheme is a named palette offered in the theme picker.
type PredefinedTheme struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Colors models.ThemeColors `json:"colors"`
}

var predefinedThemes = map[string]PredefinedTheme{
	"modern": {ID: "modern", Name: "Modern", Colors: models.ThemeColors{
		Primary: "#2563eb", Secondary: "#1e40af", Accent: "#38bdf8", Background: "#f8fafc",
	}},
	"classic": {ID: "classic", Name: "Classic", Colors: models.ThemeColors{
		Primary: "#7f1d1d", Secondary: "#44403c", Accent: "#ca8a04", Background: "#fffbeb",
	}},
	"minimal": {ID: "minimal", Name: "Minimal", Colors: models.ThemeColors{
		Primary: "#111827", Secondary: "#4b5563", Accent: "#9ca3af", Background: "#ffffff",
	}},
	"vibrant": {ID: "vibrant", Name: "Vibrant", Colors: models.ThemeColors{
		Primary: "#db2777", Secondary: "#7c3aed", Accent: "#f59e0b", Background: "#fdf4ff",
	}},
	"dark": {ID: "dark", Name: "Dark", Colors: models.ThemeColors{
		Primary: "#6366f1", Secondary: "#1f2937", Accent: "#22d3ee", Background: "#0f172a",
	}},
}

// PredefinedThemes lists the built-in palettes sorted by id.
func PredefinedThemes() []PredefinedTheme {
	out := make([]PredefinedTheme, 0, len(predefinedThemes))
	for _, t := range predefinedThemes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ApplyTheme returns a copy of colleges with themeID set on the target
// ("all" or one college id). With isCustom the palette is replaced by colors.
// themeID is not checked against the predefined set.
func ApplyTheme(colleges []models.College, themeID, target string, isCustom bool, colors *models.ThemeColors) []models.College {
	out := make([]models.College, len(colleges))
	for i, c := range colleges {
		out[i] = c.Clone()
		if target != models.TargetAllColleges && c.ID != target {
			continue
		}
		out[i].Theme = themeID
		if isCustom && colors != nil {
			palette := *colors
			out[i].CustomTheme = &palette
		}
	}
	return out
}

// ResolveColors returns the palette a college renders with: its custom colors
// for the custom theme, the named palette when known, otherwise modern.
func ResolveColors(c *models.College) models.ThemeColors {
	if c != nil {
		if c.Theme == models.CustomTheme && c.CustomTheme != nil {
			return *c.CustomTheme
		}
		if t, ok := predefinedThemes[c.Theme]; ok {
			return t.Colors
		}
	}
	return predefinedThemes[models.DefaultTheme].Colors
}

type ThemeService struct {
	store    store.Store
	colleges *CollegeService
}

func NewThemeService(s store.Store, colleges *CollegeService) *ThemeService {
	return &ThemeService{store: s, colleges: colleges}
}

type ApplyThemeRequest struct {
	ThemeID  string              `json:"themeId" binding:"required"`
	Target   string              `json:"target"`
	IsCustom bool                `json:"isCustom"`
	Colors   *models.ThemeColors `json:"colors"`
}

// Apply persists ApplyTheme over the stored colleges. A custom apply without
// colors falls back to the saved custom palette.
func (s *ThemeService) Apply(ctx context.Context, req *ApplyThemeRequest) ([]models.College, error) {
	target := req.Target
	if target == "" {
		target = models.TargetAllColleges
	}

	colors := req.Colors
	if req.IsCustom {
		if colors == nil {
			saved, ok, err := s.GetCustomTheme(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrCustomThemeRequired
			}
			colors = saved
		}
	}

	now := s.colleges.now()
	colleges, err := s.colleges.rewrite(ctx, func(colleges []models.College) ([]models.College, error) {
		if target != models.TargetAllColleges && indexOfCollege(colleges, target) < 0 {
			return nil, ErrCollegeNotFound
		}
		next := ApplyTheme(colleges, req.ThemeID, target, req.IsCustom, colors)
		for i := range next {
			if target == models.TargetAllColleges || next[i].ID == target {
				next[i].UpdatedAt = now
			}
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	if req.IsCustom {
		if err := s.SaveCustomTheme(ctx, colors); err != nil {
			return nil, err
		}
	}
	return colleges, nil
}

// Resolve returns the effective palette of the stored college with id.
func (s *ThemeService) Resolve(ctx context.Context, id string) (models.ThemeColors, error) {
	c, err := s.colleges.Get(ctx, id)
	if err != nil {
		return models.ThemeColors{}, err
	}
	return ResolveColors(c), nil
}

func (s *ThemeService) GetCustomTheme(ctx context.Context) (*models.ThemeColors, bool, error) {
	colors, ok, err := store.Read[models.ThemeColors](ctx, s.store, store.KeyCustomTheme)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &colors, true, nil
}

func (s *ThemeService) SaveCustomTheme(ctx context.Context, colors *models.ThemeColors) error {
	if colors == nil {
		return ErrCustomThemeRequired
	}
	return store.Write(ctx, s.store, store.KeyCustomTheme, colors)
}
