package services

import (
	"context"
	"testing"

	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnnouncementService(s store.Store) *AnnouncementService {
	svc := NewAnnouncementService(s)
	svc.now = fixedClock()
	svc.newID = sequentialIDs("ann")
	return svc
}

func TestAnnouncement_SurvivesCollegeDeletion(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	colleges := newTestCollegeService(s)
	announcements := newTestAnnouncementService(s)

	c, err := colleges.Create(ctx, &CreateCollegeRequest{Name: "Test U"})
	require.NoError(t, err)
	broadcast, err := announcements.Create(ctx, &CreateAnnouncementRequest{Title: "Welcome", Message: "Hello", TargetCollege: "all"})
	require.NoError(t, err)
	targeted, err := announcements.Create(ctx, &CreateAnnouncementRequest{Title: "Exam", Message: "Room 4", TargetCollege: c.ID})
	require.NoError(t, err)

	name, err := announcements.TargetName(ctx, broadcast.TargetCollege)
	require.NoError(t, err)
	assert.Equal(t, "All Colleges", name)
	name, err = announcements.TargetName(ctx, targeted.TargetCollege)
	require.NoError(t, err)
	assert.Equal(t, "Test U", name)

	_, err = colleges.Delete(ctx, c.ID)
	require.NoError(t, err)

	all, err := announcements.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, *broadcast, all[0])

	name, err = announcements.TargetName(ctx, targeted.TargetCollege)
	require.NoError(t, err)
	assert.Equal(t, "Unknown College", name)
}

func TestAnnouncement_CreateDefaultsToAll(t *testing.T) {
	svc := newTestAnnouncementService(store.NewMemoryStore())
	a, err := svc.Create(context.Background(), &CreateAnnouncementRequest{Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, models.TargetAllColleges, a.TargetCollege)
	assert.True(t, a.IsForAll())
}

func TestAnnouncement_ListNewestFirstWithFilter(t *testing.T) {
	ctx := context.Background()
	svc := newTestAnnouncementService(store.NewMemoryStore())
	first, _ := svc.Create(ctx, &CreateAnnouncementRequest{Title: "first", Message: "m"})
	second, _ := svc.Create(ctx, &CreateAnnouncementRequest{Title: "second", Message: "m", TargetCollege: "c1"})
	third, _ := svc.Create(ctx, &CreateAnnouncementRequest{Title: "third", Message: "m", TargetCollege: "c2"})

	list, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{list[0].ID, list[1].ID, list[2].ID})

	list, err = svc.List(ctx, &AnnouncementListRequest{College: "c1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	list, err = svc.List(ctx, &AnnouncementListRequest{College: models.TargetAllColleges})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestAnnouncement_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestAnnouncementService(store.NewMemoryStore())
	a, _ := svc.Create(ctx, &CreateAnnouncementRequest{Title: "t", Message: "m", TargetCollege: "c1"})

	updated, ok, err := svc.Update(ctx, a.ID, &UpdateAnnouncementRequest{Message: strPtr("changed"), TargetCollege: strPtr("")})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "changed", updated.Message)
	assert.Equal(t, models.TargetAllColleges, updated.TargetCollege)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)

	_, ok, err = svc.Update(ctx, "missing", &UpdateAnnouncementRequest{Title: strPtr("x")})
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := svc.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTargetCollegeName(t *testing.T) {
	colleges := []models.College{{ID: "c1", Name: "Riverside"}}
	tests := []struct {
		target string
		want   string
	}{
		{"all", "All Colleges"},
		{"c1", "Riverside"},
		{"gone", "Unknown College"},
		{"", "Unknown College"},
	}
	for _, tt := range tests {
		if got := TargetCollegeName(tt.target, colleges); got != tt.want {
			t.Errorf("TargetCollegeName(%q) = %q, expected %q", tt.target, got, tt.want)
		}
	}
}
