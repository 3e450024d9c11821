package models

// CustomModule is an admin-defined toggle shown next to the built-in modules.
type CustomModule struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// ModuleDescriptor describes a built-in or custom module for the dashboard.
type ModuleDescriptor struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
	BuiltIn     bool   `json:"builtIn"`
}
