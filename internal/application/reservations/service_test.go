package reservations

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sunshare-backend/internal/application/emails"
	"sunshare-backend/internal/domain"
	"sunshare-backend/internal/infrastructure/events"
	"sunshare-backend/internal/infrastructure/persistence"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []interface{}
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, payload)
	return p.err
}

type recordingEmail struct {
	emails.Nop
	sent []emails.ReservationDetails
}

func (r *recordingEmail) SendReservationConfirmed(_ context.Context, _, _ string, d emails.ReservationDetails) error {
	r.sent = append(r.sent, d)
	return errors.New("smtp down")
}

func setup(t *testing.T) (*Service, *gorm.DB, *recordingPublisher, *recordingEmail) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Project{}, &domain.CapacityBlock{}, &domain.Allocation{}, &domain.ProjectEvent{}))
	pub := &recordingPublisher{}
	mail := &recordingEmail{}
	return &Service{Repo: &persistence.GormAllocationRepository{DB: db}, Publisher: pub, Email: mail}, db, pub, mail
}

func seedBlock(t *testing.T, db *gorm.DB, projectStatus string, kw float64) (*domain.Project, *domain.CapacityBlock) {
	p := &domain.Project{SpvID: uuid.NewString(), Name: "Nashik Solar", TotalKw: 100, RatePerKwh: 5, Location: "Nashik", State: "MH", Status: projectStatus}
	require.NoError(t, db.Create(p).Error)
	b := &domain.CapacityBlock{ProjectID: p.ProjectID, Kw: kw, Status: domain.BlockAvailable}
	require.NoError(t, db.Create(b).Error)
	return p, b
}

func TestReserve_Success(t *testing.T) {
	s, db, pub, mail := setup(t)
	p, b := seedBlock(t, db, domain.ProjectActive, 5)
	cust := Customer{UserID: uuid.New(), Email: "asha@example.com", Fullname: "Asha"}

	res, err := s.Reserve(context.Background(), cust, b.BlockID)
	require.NoError(t, err)
	assert.Equal(t, p.ProjectID, res.ProjectID)
	assert.Equal(t, 5.0, res.Kw)
	assert.Equal(t, 600.0, res.Economics.GeneratedUnitsPerMonth)
	assert.Equal(t, 250000.0, res.Economics.ReservationFee)

	var stored domain.CapacityBlock
	require.NoError(t, db.First(&stored, "id = ?", b.BlockID).Error)
	assert.Equal(t, domain.BlockAllocated, stored.Status)

	var events []domain.ProjectEvent
	require.NoError(t, db.Where("project_id = ?", p.ProjectID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventBlockAllocated, events[0].EventType)

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, "capacity.block.allocated", pub.subjects[0])
	evt, ok := pub.payloads[0].(BlockAllocatedEvent)
	require.True(t, ok)
	assert.Equal(t, cust.UserID, evt.UserID)

	// email failure is logged, not returned
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "Nashik Solar", mail.sent[0].ProjectName)

	mine, err := s.ListMine(context.Background(), cust.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, b.BlockID, mine[0].BlockID)
}

func TestReserve_SecondClaimConflicts(t *testing.T) {
	s, db, pub, _ := setup(t)
	_, b := seedBlock(t, db, domain.ProjectActive, 2)

	_, err := s.Reserve(context.Background(), Customer{UserID: uuid.New()}, b.BlockID)
	require.NoError(t, err)
	_, err = s.Reserve(context.Background(), Customer{UserID: uuid.New()}, b.BlockID)
	assert.ErrorIs(t, err, ErrBlockUnavailable)

	var count int64
	require.NoError(t, db.Model(&domain.Allocation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Len(t, pub.subjects, 1)
}

func TestReserve_Rejections(t *testing.T) {
	s, db, _, _ := setup(t)
	ctx := context.Background()

	_, err := s.Reserve(ctx, Customer{UserID: uuid.New()}, uuid.New())
	assert.ErrorIs(t, err, ErrBlockNotFound)

	_, draftBlock := seedBlock(t, db, domain.ProjectDraft, 3)
	_, err = s.Reserve(ctx, Customer{UserID: uuid.New()}, draftBlock.BlockID)
	assert.ErrorIs(t, err, ErrProjectNotActive)

	deleted, deletedBlock := seedBlock(t, db, domain.ProjectActive, 3)
	require.NoError(t, db.Delete(deleted).Error)
	_, err = s.Reserve(ctx, Customer{UserID: uuid.New()}, deletedBlock.BlockID)
	assert.ErrorIs(t, err, ErrProjectNotActive)
}

func TestReserve_InactiveProjectLeavesBlockAvailable(t *testing.T) {
	s, db, pub, _ := setup(t)
	ctx := context.Background()

	paused, pausedBlock := seedBlock(t, db, domain.ProjectActive, 4)
	require.NoError(t, db.Model(paused).Update("status", domain.ProjectMaintenance).Error)

	retired, retiredBlock := seedBlock(t, db, domain.ProjectActive, 4)
	require.NoError(t, (&persistence.GormProjectRepository{DB: db}).SoftDeleteProject(retired))

	for _, b := range []*domain.CapacityBlock{pausedBlock, retiredBlock} {
		_, err := s.Reserve(ctx, Customer{UserID: uuid.New()}, b.BlockID)
		assert.ErrorIs(t, err, ErrProjectNotActive)

		var stored domain.CapacityBlock
		require.NoError(t, db.First(&stored, "id = ?", b.BlockID).Error)
		assert.Equal(t, domain.BlockAvailable, stored.Status)
	}

	var count int64
	require.NoError(t, db.Model(&domain.Allocation{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, pub.subjects)
}

func TestReserve_PublishFailureKeepsReservation(t *testing.T) {
	s, db, pub, _ := setup(t)
	pub.err = errors.New("nats: no servers")
	s.Email = nil
	_, b := seedBlock(t, db, domain.ProjectActive, 1)

	res, err := s.Reserve(context.Background(), Customer{UserID: uuid.New()}, b.BlockID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.Allocation.AllocationID)
}

var _ events.Publisher = (*recordingPublisher)(nil)
