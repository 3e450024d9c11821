package models

import "time"

const (
	CollegeStatusActive   = "active"
	CollegeStatusInactive = "inactive"

	// TargetAllColleges addresses an announcement to every college.
	TargetAllColleges = "all"

	DefaultTheme = "modern"
	CustomTheme  = "custom"
)

// Built-in module keys every college starts with.
const (
	ModuleAbout        = "about"
	ModuleFaculty      = "faculty"
	ModuleEvents       = "events"
	ModuleGallery      = "gallery"
	ModuleAchievements = "achievements"
	ModuleContact      = "contact"
)

var DefaultModuleKeys = []string{
	ModuleAbout,
	ModuleFaculty,
	ModuleEvents,
	ModuleGallery,
	ModuleAchievements,
	ModuleContact,
}

// ThemeColors is a four-color palette. Values are CSS colors and are not validated.
type ThemeColors struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
}

// College is one tenant of the portfolio. JSON names match the stored documents.
type College struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Representative string          `json:"representative"`
	Logo           string          `json:"logo"` // data URI or URL
	Status         string          `json:"status"`
	Theme          string          `json:"theme"`
	CustomTheme    *ThemeColors    `json:"customTheme,omitempty"`
	Modules        map[string]bool `json:"modules"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (c *College) IsActive() bool {
	return c.Status == CollegeStatusActive
}

// ModuleEnabled reports whether a module flag is on. Unknown keys are off.
func (c *College) ModuleEnabled(key string) bool {
	if c.Modules == nil {
		return false
	}
	return c.Modules[key]
}

// Clone returns a deep copy so list rewrites never alias maps or palettes.
func (c College) Clone() College {
	out := c
	if c.CustomTheme != nil {
		colors := *c.CustomTheme
		out.CustomTheme = &colors
	}
	if c.Modules != nil {
		out.Modules = make(map[string]bool, len(c.Modules))
		for k, v := range c.Modules {
			out.Modules[k] = v
		}
	}
	return out
}
