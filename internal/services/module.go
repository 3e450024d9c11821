package services

import (
	"context"
	"strings"

	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/internal/store"
	"github.com/huangang/portfolio/internal/utils"
)

// DefaultModules are the built-in module toggles.
var DefaultModules = []models.ModuleDescriptor{
	{Key: models.ModuleAbout, Label: "About", Description: "College overview and mission", BuiltIn: true},
	{Key: models.ModuleFaculty, Label: "Faculty", Description: "Teaching staff directory", BuiltIn: true},
	{Key: models.ModuleEvents, Label: "Events", Description: "Upcoming and past events", BuiltIn: true},
	{Key: models.ModuleGallery, Label: "Gallery", Description: "Photo gallery", BuiltIn: true},
	{Key: models.ModuleAchievements, Label: "Achievements", Description: "Awards and milestones", BuiltIn: true},
	{Key: models.ModuleContact, Label: "Contact", Description: "Contact details and form", BuiltIn: true},
}

func isBuiltInModule(key string) bool {
	for _, m := range models.DefaultModuleKeys {
		if m == key {
			return true
		}
	}
	return false
}

type ModuleService struct {
	store    store.Store
	colleges *CollegeService
}

func NewModuleService(s store.Store, colleges *CollegeService) *ModuleService {
	return &ModuleService{store: s, colleges: colleges}
}

type CreateModuleRequest struct {
	Label       string `json:"label" binding:"required"`
	Description string `json:"description"`
}

func (s *ModuleService) load(ctx context.Context) ([]models.CustomModule, error) {
	return store.ReadOrDefault(ctx, s.store, store.KeyCustomModules, []models.CustomModule{})
}

// List returns the custom modules only.
func (s *ModuleService) List(ctx context.Context) ([]models.CustomModule, error) {
	return s.load(ctx)
}

// All returns built-in modules followed by custom ones.
func (s *ModuleService) All(ctx context.Context) ([]models.ModuleDescriptor, error) {
	custom, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ModuleDescriptor, 0, len(DefaultModules)+len(custom))
	out = append(out, DefaultModules...)
	for _, m := range custom {
		out = append(out, models.ModuleDescriptor{Key: m.Key, Label: m.Label, Description: m.Description})
	}
	return out, nil
}

// Create registers a custom module keyed by the slug of its label and turns
// it on for every existing college.
func (s *ModuleService) Create(ctx context.Context, req *CreateModuleRequest) (*models.CustomModule, error) {
	key := utils.Slugify(req.Label)
	if key == "" {
		return nil, ErrInvalidModuleKey
	}
	if isBuiltInModule(key) {
		return nil, ErrModuleExists
	}

	unlock := collectionLocks.lock(store.KeyCustomModules)
	custom, err := s.load(ctx)
	if err != nil {
		unlock()
		return nil, err
	}
	for _, m := range custom {
		if m.Key == key {
			unlock()
			return nil, ErrModuleExists
		}
	}
	module := models.CustomModule{
		Key:         key,
		Label:       strings.TrimSpace(req.Label),
		Description: req.Description,
	}
	custom = append(custom, module)
	err = store.Write(ctx, s.store, store.KeyCustomModules, custom)
	unlock()
	if err != nil {
		return nil, err
	}

	if err := s.setFlagOnAll(ctx, key, true); err != nil {
		return nil, err
	}
	return &module, nil
}

// Delete removes a custom module and strips its flag from every college.
func (s *ModuleService) Delete(ctx context.Context, key string) error {
	if isBuiltInModule(key) {
		return ErrBuiltInModule
	}

	unlock := collectionLocks.lock(store.KeyCustomModules)
	custom, err := s.load(ctx)
	if err != nil {
		unlock()
		return err
	}
	remaining := make([]models.CustomModule, 0, len(custom))
	for _, m := range custom {
		if m.Key != key {
			remaining = append(remaining, m)
		}
	}
	if len(remaining) == len(custom) {
		unlock()
		return ErrModuleNotFound
	}
	err = store.Write(ctx, s.store, store.KeyCustomModules, remaining)
	unlock()
	if err != nil {
		return err
	}

	return s.setFlagOnAll(ctx, key, false)
}

func (s *ModuleService) setFlagOnAll(ctx context.Context, key string, add bool) error {
	now := s.colleges.now()
	_, err := s.colleges.rewrite(ctx, func(colleges []models.College) ([]models.College, error) {
		for i := range colleges {
			c := colleges[i].Clone()
			if c.Modules == nil {
				c.Modules = make(map[string]bool)
			}
			if add {
				c.Modules[key] = true
			} else {
				delete(c.Modules, key)
			}
			c.UpdatedAt = now
			colleges[i] = c
		}
		return colleges, nil
	})
	return err
}

// Count returns the number of custom modules. Built-ins are not counted.
func (s *ModuleService) Count(ctx context.Context) (int, error) {
	custom, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(custom), nil
}
