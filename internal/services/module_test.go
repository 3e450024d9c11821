package services

import (
	"context"
	"testing"

	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleService_CreateAddsFlagToColleges(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	colleges := newTestCollegeService(s)
	modules := NewModuleService(s, colleges)

	c1, _ := colleges.Create(ctx, &CreateCollegeRequest{Name: "One"})
	c2, _ := colleges.Create(ctx, &CreateCollegeRequest{Name: "Two"})

	m, err := modules.Create(ctx, &CreateModuleRequest{Label: "  Alumni   Network ", Description: "Graduates"})
	require.NoError(t, err)
	assert.Equal(t, "alumni-network", m.Key)
	assert.Equal(t, "Alumni   Network", m.Label)

	for _, id := range []string{c1.ID, c2.ID} {
		c, err := colleges.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, c.Modules["alumni-network"])
	}

	all, err := modules.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultModules)+1)
	assert.False(t, all[len(all)-1].BuiltIn)
}

func TestModuleService_CreateCollisions(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	modules := NewModuleService(s, newTestCollegeService(s))

	_, err := modules.Create(ctx, &CreateModuleRequest{Label: "Sports Teams"})
	require.NoError(t, err)

	_, err = modules.Create(ctx, &CreateModuleRequest{Label: "sports   teams"})
	assert.ErrorIs(t, err, ErrModuleExists)

	_, err = modules.Create(ctx, &CreateModuleRequest{Label: "Gallery"})
	assert.ErrorIs(t, err, ErrModuleExists)

	_, err = modules.Create(ctx, &CreateModuleRequest{Label: "   "})
	assert.ErrorIs(t, err, ErrInvalidModuleKey)
}

func TestModuleService_DeleteStripsFlag(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	colleges := newTestCollegeService(s)
	modules := NewModuleService(s, colleges)

	c, _ := colleges.Create(ctx, &CreateCollegeRequest{Name: "One"})
	_, err := modules.Create(ctx, &CreateModuleRequest{Label: "Clubs"})
	require.NoError(t, err)

	require.NoError(t, modules.Delete(ctx, "clubs"))

	got, err := colleges.Get(ctx, c.ID)
	require.NoError(t, err)
	_, present := got.Modules["clubs"]
	assert.False(t, present)

	assert.ErrorIs(t, modules.Delete(ctx, "clubs"), ErrModuleNotFound)
	assert.ErrorIs(t, modules.Delete(ctx, models.ModuleAbout), ErrBuiltInModule)
}

func TestModuleService_CountExcludesBuiltIns(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	modules := NewModuleService(s, newTestCollegeService(s))

	n, err := modules.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = modules.Create(ctx, &CreateModuleRequest{Label: "Clubs"})
	require.NoError(t, err)
	n, err = modules.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
