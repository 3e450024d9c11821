package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/internal/store"
)

const (
	allCollegesLabel   = "All Colleges"
	unknownCollegeName = "Unknown College"
)

type AnnouncementService struct {
	store store.Store
	now   func() time.Time
	newID func() string
}

func NewAnnouncementService(s store.Store) *AnnouncementService {
	return &AnnouncementService{
		store: s,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

type AnnouncementListRequest struct {
	// College narrows the list to what one college sees: its own
	// announcements plus broadcasts. "all" matches only broadcasts.
	College string `form:"college"`
}

type CreateAnnouncementRequest struct {
	Title         string `json:"title" binding:"required"`
	Message       string `json:"message" binding:"required"`
	TargetCollege string `json:"targetCollege"`
}

type UpdateAnnouncementRequest struct {
	Title         *string `json:"title"`
	Message       *string `json:"message"`
	TargetCollege *string `json:"targetCollege"`
}

// AnnouncementView is an announcement with its resolved target name.
type AnnouncementView struct {
	models.Announcement
	TargetName string `json:"targetName"`
}

func (s *AnnouncementService) load(ctx context.Context) ([]models.Announcement, error) {
	return store.ReadOrDefault(ctx, s.store, store.KeyAnnouncements, []models.Announcement{})
}

func (s *AnnouncementService) save(ctx context.Context, list []models.Announcement) error {
	return store.Write(ctx, s.store, store.KeyAnnouncements, list)
}

// All returns the stored announcements in insertion order.
func (s *AnnouncementService) All(ctx context.Context) ([]models.Announcement, error) {
	return s.load(ctx)
}

// List returns announcements newest first, optionally filtered by target.
func (s *AnnouncementService) List(ctx context.Context, req *AnnouncementListRequest) ([]models.Announcement, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Announcement, 0, len(list))
	for _, a := range list {
		if req != nil && req.College != "" && !a.VisibleTo(req.College) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListViews is List with target names resolved against the colleges list.
func (s *AnnouncementService) ListViews(ctx context.Context, req *AnnouncementListRequest) ([]AnnouncementView, error) {
	list, err := s.List(ctx, req)
	if err != nil {
		return nil, err
	}
	colleges, err := store.ReadOrDefault(ctx, s.store, store.KeyColleges, []models.College{})
	if err != nil {
		return nil, err
	}
	views := make([]AnnouncementView, len(list))
	for i, a := range list {
		views[i] = AnnouncementView{Announcement: a, TargetName: TargetCollegeName(a.TargetCollege, colleges)}
	}
	return views, nil
}

// VisibleTo returns announcements shown on a college's site, newest first.
func (s *AnnouncementService) VisibleTo(ctx context.Context, collegeID string) ([]models.Announcement, error) {
	return s.List(ctx, &AnnouncementListRequest{College: collegeID})
}

// TargetName resolves target against the stored colleges.
func (s *AnnouncementService) TargetName(ctx context.Context, target string) (string, error) {
	colleges, err := store.ReadOrDefault(ctx, s.store, store.KeyColleges, []models.College{})
	if err != nil {
		return "", err
	}
	return TargetCollegeName(target, colleges), nil
}

func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, ErrAnnouncementNotFound
}

// GetView returns one announcement with its target name resolved.
func (s *AnnouncementService) GetView(ctx context.Context, id string) (*AnnouncementView, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := s.TargetName(ctx, a.TargetCollege)
	if err != nil {
		return nil, err
	}
	return &AnnouncementView{Announcement: *a, TargetName: name}, nil
}

// Create appends an announcement. An empty target means every college.
func (s *AnnouncementService) Create(ctx context.Context, req *CreateAnnouncementRequest) (*models.Announcement, error) {
	unlock := collectionLocks.lock(store.KeyAnnouncements)
	defer unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	a := models.Announcement{
		ID:            s.newID(),
		Title:         strings.TrimSpace(req.Title),
		Message:       req.Message,
		TargetCollege: req.TargetCollege,
		CreatedAt:     s.now(),
	}
	if a.TargetCollege == "" {
		a.TargetCollege = models.TargetAllColleges
	}

	list = append(list, a)
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}
	return &a, nil
}

// Update changes the given fields. An unknown id writes nothing and reports
// updated as false.
func (s *AnnouncementService) Update(ctx context.Context, id string, req *UpdateAnnouncementRequest) (*models.Announcement, bool, error) {
	unlock := collectionLocks.lock(store.KeyAnnouncements)
	defer unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, false, err
	}

	for i := range list {
		if list[i].ID != id {
			continue
		}
		a := list[i]
		if req.Title != nil {
			a.Title = strings.TrimSpace(*req.Title)
		}
		if req.Message != nil {
			a.Message = *req.Message
		}
		if req.TargetCollege != nil {
			a.TargetCollege = *req.TargetCollege
			if a.TargetCollege == "" {
				a.TargetCollege = models.TargetAllColleges
			}
		}
		list[i] = a
		if err := s.save(ctx, list); err != nil {
			return nil, false, err
		}
		return &a, true, nil
	}
	return nil, false, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, id string) (bool, error) {
	unlock := collectionLocks.lock(store.KeyAnnouncements)
	defer unlock()

	list, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	remaining := make([]models.Announcement, 0, len(list))
	for _, a := range list {
		if a.ID != id {
			remaining = append(remaining, a)
		}
	}
	if err := s.save(ctx, remaining); err != nil {
		return false, err
	}
	return len(remaining) != len(list), nil
}

func (s *AnnouncementService) Count(ctx context.Context) (int, error) {
	list, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// TargetCollegeName renders an announcement target for display. Ids of
// deleted colleges show as "Unknown College".
func TargetCollegeName(target string, colleges []models.College) string {
	if target == models.TargetAllColleges {
		return allCollegesLabel
	}
	for _, c := range colleges {
		if c.ID == target {
			return c.Name
		}
	}
	return unknownCollegeName
}
