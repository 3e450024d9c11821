package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/internal/store"
)

// CollegeService manages the colleges collection. Every mutation reads the
// whole list and writes it back.
type CollegeService struct {
	store store.Store
	now   func() time.Time
	newID func() string
}

func NewCollegeService(s store.Store) *CollegeService {
	return &CollegeService{
		store: s,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

type CollegeListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
	Name   string `form:"name"`
}

type CreateCollegeRequest struct {
	Name           string `json:"name" binding:"required"`
	Representative string `json:"representative"`
	Logo           string `json:"logo"`
	Status         string `json:"status" binding:"omitempty,oneof=active inactive"`
	Theme          string `json:"theme"`
}

type UpdateCollegeRequest struct {
	Name           *string             `json:"name"`
	Representative *string             `json:"representative"`
	Logo           *string             `json:"logo"`
	Status         *string             `json:"status" binding:"omitempty,oneof=active inactive"`
	Theme          *string             `json:"theme"`
	CustomTheme    *models.ThemeColors `json:"customTheme"`
	Modules        map[string]bool     `json:"modules"`
}

type CollegeStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

func (s *CollegeService) load(ctx context.Context) ([]models.College, error) {
	return store.ReadOrDefault(ctx, s.store, store.KeyColleges, []models.College{})
}

func (s *CollegeService) save(ctx context.Context, colleges []models.College) error {
	return store.Write(ctx, s.store, store.KeyColleges, colleges)
}

// All returns every college in stored order.
func (s *CollegeService) All(ctx context.Context) ([]models.College, error) {
	return s.load(ctx)
}

// List returns colleges matching the optional status and name filters.
func (s *CollegeService) List(ctx context.Context, req *CollegeListRequest) ([]models.College, error) {
	colleges, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil || (req.Status == "" && req.Name == "") {
		return colleges, nil
	}

	name := strings.ToLower(req.Name)
	out := make([]models.College, 0, len(colleges))
	for _, c := range colleges {
		if req.Status != "" && c.Status != req.Status {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(c.Name), name) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *CollegeService) Get(ctx context.Context, id string) (*models.College, error) {
	colleges, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range colleges {
		if colleges[i].ID == id {
			return &colleges[i], nil
		}
	}
	return nil, ErrCollegeNotFound
}

// Create appends a new college. New colleges are active, use the modern theme
// and have every built-in and custom module switched on.
func (s *CollegeService) Create(ctx context.Context, req *CreateCollegeRequest) (*models.College, error) {
	unlock := collectionLocks.lock(store.KeyColleges)
	defer unlock()

	colleges, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	modules, err := s.defaultModules(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	college := models.College{
		ID:             s.newID(),
		Name:           strings.TrimSpace(req.Name),
		Representative: req.Representative,
		Logo:           req.Logo,
		Status:         req.Status,
		Theme:          req.Theme,
		Modules:        modules,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if college.Status == "" {
		college.Status = models.CollegeStatusActive
	}
	if college.Theme == "" {
		college.Theme = models.DefaultTheme
	}

	colleges = append(colleges, college)
	if err := s.save(ctx, colleges); err != nil {
		return nil, err
	}
	return &college, nil
}

func (s *CollegeService) defaultModules(ctx context.Context) (map[string]bool, error) {
	modules := make(map[string]bool, len(models.DefaultModuleKeys))
	for _, key := range models.DefaultModuleKeys {
		modules[key] = true
	}
	custom, err := store.ReadOrDefault(ctx, s.store, store.KeyCustomModules, []models.CustomModule{})
	if err != nil {
		return nil, err
	}
	for _, m := range custom {
		modules[m.Key] = true
	}
	return modules, nil
}

// Update applies the non-nil fields of req to the college with id. An unknown
// id is not an error: nothing is written and updated is false.
func (s *CollegeService) Update(ctx context.Context, id string, req *UpdateCollegeRequest) (college *models.College, updated bool, err error) {
	unlock := collectionLocks.lock(store.KeyColleges)
	defer unlock()

	colleges, err := s.load(ctx)
	if err != nil {
		return nil, false, err
	}

	idx := indexOfCollege(colleges, id)
	if idx < 0 {
		return nil, false, nil
	}

	c := colleges[idx].Clone()
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Representative != nil {
		c.Representative = *req.Representative
	}
	if req.Logo != nil {
		c.Logo = *req.Logo
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.Theme != nil {
		c.Theme = *req.Theme
	}
	if req.CustomTheme != nil {
		colors := *req.CustomTheme
		c.CustomTheme = &colors
	}
	if req.Modules != nil {
		if c.Modules == nil {
			c.Modules = make(map[string]bool, len(req.Modules))
		}
		for k, v := range req.Modules {
			c.Modules[k] = v
		}
	}
	c.UpdatedAt = s.now()
	colleges[idx] = c

	if err := s.save(ctx, colleges); err != nil {
		return nil, false, err
	}
	return &c, true, nil
}

// ToggleModule switches one module flag on a college.
func (s *CollegeService) ToggleModule(ctx context.Context, id, key string, enabled bool) (*models.College, error) {
	c, updated, err := s.Update(ctx, id, &UpdateCollegeRequest{Modules: map[string]bool{key: enabled}})
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrCollegeNotFound
	}
	return c, nil
}

// Delete removes the college. Announcements targeting it are left as they are.
func (s *CollegeService) Delete(ctx context.Context, id string) (bool, error) {
	unlock := collectionLocks.lock(store.KeyColleges)
	defer unlock()

	colleges, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	remaining := make([]models.College, 0, len(colleges))
	for _, c := range colleges {
		if c.ID != id {
			remaining = append(remaining, c)
		}
	}
	if err := s.save(ctx, remaining); err != nil {
		return false, err
	}
	return len(remaining) != len(colleges), nil
}

func (s *CollegeService) Stats(ctx context.Context) (*CollegeStats, error) {
	colleges, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	stats := &CollegeStats{Total: len(colleges)}
	for _, c := range colleges {
		if c.IsActive() {
			stats.Active++
		} else {
			stats.Inactive++
		}
	}
	return stats, nil
}

// rewrite applies fn to the whole collection under the collection lock and
// persists the result.
func (s *CollegeService) rewrite(ctx context.Context, fn func([]models.College) ([]models.College, error)) ([]models.College, error) {
	unlock := collectionLocks.lock(store.KeyColleges)
	defer unlock()

	colleges, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	next, err := fn(colleges)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func indexOfCollege(colleges []models.College, id string) int {
	for i := range colleges {
		if colleges[i].ID == id {
			return i
		}
	}
	return -1
}
