package services

import (
	"context"

	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/internal/store"
)

type SettingsService struct {
	store store.Store
}

func NewSettingsService(s store.Store) *SettingsService {
	return &SettingsService{store: s}
}

type UpdateSettingsRequest struct {
	DarkMode    *bool   `json:"darkMode"`
	AccentColor *string `json:"accentColor" binding:"omitempty,oneof=blue purple green"`
}

func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	return store.ReadOrDefault(ctx, s.store, store.KeySettings, models.DefaultSettings())
}

func (s *SettingsService) Update(ctx context.Context, req *UpdateSettingsRequest) (models.Settings, error) {
	unlock := collectionLocks.lock(store.KeySettings)
	defer unlock()

	settings, err := s.Get(ctx)
	if err != nil {
		return settings, err
	}
	if req.DarkMode != nil {
		settings.DarkMode = *req.DarkMode
	}
	if req.AccentColor != nil {
		settings.AccentColor = *req.AccentColor
	}
	if err := store.Write(ctx, s.store, store.KeySettings, settings); err != nil {
		return settings, err
	}
	return settings, nil
}

// GetCollegeInfo returns the site-wide info block, empty when unset.
func (s *SettingsService) GetCollegeInfo(ctx context.Context) (models.CollegeInfo, error) {
	return store.ReadOrDefault(ctx, s.store, store.KeyCollegeInfo, models.CollegeInfo{})
}

// UpdateCollegeInfo replaces the info block wholesale.
func (s *SettingsService) UpdateCollegeInfo(ctx context.Context, info models.CollegeInfo) error {
	if info == nil {
		info = models.CollegeInfo{}
	}
	return store.Write(ctx, s.store, store.KeyCollegeInfo, info)
}
