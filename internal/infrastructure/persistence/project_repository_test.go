package persistence

import (
	"context"
	"testing"

	"sunshare-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepoDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Project{}, &domain.CapacityBlock{}, &domain.Allocation{}, &domain.ProjectEvent{}))
	return db
}

func seedProject(t *testing.T, db *gorm.DB, spv, name, state, status string) *domain.Project {
	p := &domain.Project{SpvID: spv, Name: name, TotalKw: 100, RatePerKwh: 5, Location: "Site", State: state, Status: status}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestFindProjects_FilterAndPaginate(t *testing.T) {
	db := setupRepoDB(t)
	repo := &GormProjectRepository{DB: db}
	ctx := context.Background()

	seedProject(t, db, "SPV-1", "Pune Rooftop", "MH", domain.ProjectActive)
	seedProject(t, db, "SPV-2", "Nagpur Farm", "MH", domain.ProjectDraft)
	seedProject(t, db, "SPV-3", "Jaipur Park", "RJ", domain.ProjectActive)

	all, total, err := repo.FindProjects(ctx, ProjectFilter{}, PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)

	active, total, err := repo.FindProjects(ctx, ProjectFilter{Status: domain.ProjectActive, State: "MH"}, PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, active, 1)
	assert.Equal(t, "SPV-1", active[0].SpvID)

	found, total, err := repo.FindProjects(ctx, ProjectFilter{Search: "JAIPUR"}, PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Jaipur Park", found[0].Name)
}

func TestFindProject_SoftDeletedIsNotFound(t *testing.T) {
	db := setupRepoDB(t)
	repo := &GormProjectRepository{DB: db}
	p := seedProject(t, db, "SPV-9", "Old", "KA", domain.ProjectActive)

	require.NoError(t, repo.SoftDeleteProject(p))

	_, err := repo.FindProject(context.Background(), p.ProjectID)
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := repo.SpvExists(context.Background(), "SPV-9")
	require.NoError(t, err)
	assert.True(t, exists)

	var raw domain.Project
	require.NoError(t, db.Unscoped().Where("id = ?", p.ProjectID).First(&raw).Error)
	assert.Equal(t, domain.ProjectRetired, raw.Status)
	assert.True(t, raw.DeletedAt.Valid)
}

func TestClaimBlock_OnlyOnce(t *testing.T) {
	db := setupRepoDB(t)
	repo := &GormAllocationRepository{DB: db}
	p := seedProject(t, db, "SPV-5", "Block Test", "GJ", domain.ProjectActive)
	b := &domain.CapacityBlock{ProjectID: p.ProjectID, Kw: 5, Status: domain.BlockAvailable}
	require.NoError(t, db.Create(b).Error)

	ok, err := repo.ClaimBlock(context.Background(), b.BlockID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ClaimBlock(context.Background(), b.BlockID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClaimBlock_RequiresActiveProject(t *testing.T) {
	db := setupRepoDB(t)
	repo := &GormAllocationRepository{DB: db}
	ctx := context.Background()

	paused := seedProject(t, db, "SPV-M", "Paused", "GJ", domain.ProjectMaintenance)
	pausedBlock := &domain.CapacityBlock{ProjectID: paused.ProjectID, Kw: 5, Status: domain.BlockAvailable}
	require.NoError(t, db.Create(pausedBlock).Error)

	gone := seedProject(t, db, "SPV-D", "Gone", "GJ", domain.ProjectActive)
	goneBlock := &domain.CapacityBlock{ProjectID: gone.ProjectID, Kw: 5, Status: domain.BlockAvailable}
	require.NoError(t, db.Create(goneBlock).Error)
	require.NoError(t, (&GormProjectRepository{DB: db}).SoftDeleteProject(gone))

	for _, b := range []*domain.CapacityBlock{pausedBlock, goneBlock} {
		ok, err := repo.ClaimBlock(ctx, b.BlockID)
		require.NoError(t, err)
		assert.False(t, ok)

		var stored domain.CapacityBlock
		require.NoError(t, db.First(&stored, "id = ?", b.BlockID).Error)
		assert.Equal(t, domain.BlockAvailable, stored.Status)
	}
}

func TestLockProjectAndCountAllocated(t *testing.T) {
	db := setupRepoDB(t)
	repo := &GormProjectRepository{DB: db}
	ctx := context.Background()
	p := seedProject(t, db, "SPV-L", "Locked", "TN", domain.ProjectActive)

	require.NoError(t, db.Create(&domain.CapacityBlock{ProjectID: p.ProjectID, Kw: 0, Status: domain.BlockAllocated}).Error)
	require.NoError(t, db.Create(&domain.CapacityBlock{ProjectID: p.ProjectID, Kw: 4, Status: domain.BlockAvailable}).Error)

	err := repo.WithinTx(ctx, func(tx ProjectRepository) error {
		locked, err := tx.LockProject(ctx, p.ProjectID)
		require.NoError(t, err)
		assert.Equal(t, "Locked", locked.Name)

		n, err := tx.CountAllocatedBlocks(ctx, p.ProjectID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return nil
	})
	require.NoError(t, err)

	_, err = repo.LockProject(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByUser_JoinsBlockAndProject(t *testing.T) {
	db := setupRepoDB(t)
	repo := &GormAllocationRepository{DB: db}
	ctx := context.Background()
	p := seedProject(t, db, "SPV-6", "Surat Roof", "GJ", domain.ProjectActive)
	b := &domain.CapacityBlock{ProjectID: p.ProjectID, Kw: 3, Status: domain.BlockAllocated}
	require.NoError(t, db.Create(b).Error)
	userID := uuid.New()
	require.NoError(t, repo.CreateAllocation(ctx, &domain.Allocation{UserID: userID, CapacityBlockID: b.BlockID}))

	views, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Surat Roof", views[0].ProjectName)
	assert.Equal(t, 3.0, views[0].Kw)

	empty, err := repo.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
