package services

import (
	"context"

	"github.com/huangang/portfolio/internal/models"
	"golang.org/x/sync/errgroup"
)

type DashboardService struct {
	colleges      *CollegeService
	announcements *AnnouncementService
	modules       *ModuleService
	backup        *BackupService
}

func NewDashboardService(colleges *CollegeService, announcements *AnnouncementService, modules *ModuleService, backup *BackupService) *DashboardService {
	return &DashboardService{
		colleges:      colleges,
		announcements: announcements,
		modules:       modules,
		backup:        backup,
	}
}

type DashboardStats struct {
	Colleges            CollegeStats       `json:"colleges"`
	Announcements       int                `json:"announcements"`
	Modules             int                `json:"modules"`
	Storage             *BackupInfo        `json:"storage"`
	RecentAnnouncements []AnnouncementView `json:"recent_announcements"`
	RecentColleges      []models.College   `json:"recent_colleges"`
}

const recentLimit = 5

// GetStats gathers the overview cards. Each part reads the store on its own.
func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cs, err := s.colleges.Stats(ctx)
		if err != nil {
			return err
		}
		stats.Colleges = *cs
		colleges, err := s.colleges.All(ctx)
		if err != nil {
			return err
		}
		stats.RecentColleges = lastN(colleges, recentLimit)
		return nil
	})
	g.Go(func() error {
		views, err := s.announcements.ListViews(ctx, nil)
		if err != nil {
			return err
		}
		stats.Announcements = len(views)
		if len(views) > recentLimit {
			views = views[:recentLimit]
		}
		stats.RecentAnnouncements = views
		return nil
	})
	g.Go(func() error {
		n, err := s.modules.Count(ctx)
		stats.Modules = n
		return err
	})
	g.Go(func() error {
		info, err := s.backup.Info(ctx)
		stats.Storage = info
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// lastN returns up to n trailing colleges, newest first.
func lastN(colleges []models.College, n int) []models.College {
	out := make([]models.College, 0, n)
	for i := len(colleges) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, colleges[i])
	}
	return out
}
