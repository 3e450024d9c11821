package services

import "errors"

var (
	ErrCollegeNotFound      = errors.New("college not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrModuleExists         = errors.New("module key already exists")
	ErrModuleNotFound       = errors.New("module not found")
	ErrBuiltInModule        = errors.New("built-in modules cannot be removed")
	ErrInvalidModuleKey     = errors.New("module label must contain a non-space character")
	ErrCustomThemeRequired  = errors.New("custom theme colors are required")
	ErrInvalidBackup        = errors.New("invalid backup document")
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserDisabled       = errors.New("user is disabled")
)
