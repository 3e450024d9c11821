package models

const (
	AccentBlue   = "blue"
	AccentPurple = "purple"
	AccentGreen  = "green"
)

// Settings are the dashboard preferences.
type Settings struct {
	DarkMode    bool   `json:"darkMode"`
	AccentColor string `json:"accentColor"`
}

func DefaultSettings() Settings {
	return Settings{DarkMode: false, AccentColor: AccentBlue}
}

// CollegeInfo is the free-form site-wide information block (tagline, address, ...).
type CollegeInfo map[string]interface{}
