package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/pillar-academy-api/internal/catalog"
	"github.com/noah-isme/pillar-academy-api/internal/models"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
)

type mockProgressionRepo struct {
	learner   *models.Learner
	completed []string
	added     []string
	auditLogs []*models.AuditLog
}

func (m *mockProgressionRepo) FindByID(ctx context.Context, id string) (*models.Learner, error) {
	if m.learner == nil {
		return nil, sql.ErrNoRows
	}
	return m.learner, nil
}

func (m *mockProgressionRepo) CompletedModules(ctx context.Context, learnerID string) ([]string, error) {
	return m.completed, nil
}

func (m *mockProgressionRepo) AddCompletedModules(ctx context.Context, learnerID string, moduleIDs []string) error {
	m.added = append(m.added, moduleIDs...)
	for _, id := range moduleIDs {
		m.completed = append(m.completed, id)
	}
	return nil
}

func (m *mockProgressionRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockProgressionExams struct {
	latest []models.ExamSubmission
}

func (m *mockProgressionExams) LatestByLearner(ctx context.Context, learnerID string) ([]models.ExamSubmission, error) {
	return m.latest, nil
}

func (m *mockProgressionExams) FindLatest(ctx context.Context, learnerID string, pillarIndex int) (*models.ExamSubmission, error) {
	for i := range m.latest {
		if m.latest[i].PillarIndex == pillarIndex {
			return &m.latest[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func newProgressionService(repo *mockProgressionRepo, exams *mockProgressionExams) *ProgressionService {
	return NewProgressionService(repo, exams, nil, zap.NewNop(), ProgressConfig{})
}

func TestFrontierClamping(t *testing.T) {
	assert.Equal(t, 1, Frontier(&models.Learner{ApprovedPillar: 1}))
	assert.Equal(t, 5, Frontier(&models.Learner{ApprovedPillar: 5}))
	assert.Equal(t, 9, Frontier(&models.Learner{ApprovedPillar: 10}))
	assert.Equal(t, 1, Frontier(&models.Learner{ApprovedPillar: 0}))
}

func TestPillarStatusDerivation(t *testing.T) {
	learner := &models.Learner{ApprovedPillar: 3}
	assert.Equal(t, models.PillarStatusCompleted, PillarStatusFor(learner, 1))
	assert.Equal(t, models.PillarStatusCompleted, PillarStatusFor(learner, 2))
	assert.Equal(t, models.PillarStatusUnlocked, PillarStatusFor(learner, 3))
	assert.Equal(t, models.PillarStatusLocked, PillarStatusFor(learner, 4))
	assert.Equal(t, models.PillarStatusLocked, PillarStatusFor(learner, 9))

	done := &models.Learner{ApprovedPillar: 10}
	for i := 1; i <= catalog.PillarCount; i++ {
		assert.Equal(t, models.PillarStatusCompleted, PillarStatusFor(done, i))
	}
}

func TestFrontierNeverRegresses(t *testing.T) {
	// Approvals only ever raise ApprovedPillar, so the frontier is
	// monotone over any approval sequence.
	learner := &models.Learner{ApprovedPillar: 1}
	previous := Frontier(learner)
	for pillar := 1; pillar <= catalog.PillarCount; pillar++ {
		if learner.ApprovedPillar < pillar+1 {
			learner.ApprovedPillar = pillar + 1
		}
		current := Frontier(learner)
		assert.GreaterOrEqual(t, current, previous)
		previous = current
	}
	assert.Equal(t, 9, previous)
	assert.True(t, AreAllPillarsComplete(learner))
}

func TestOverviewDerivesStatusAndEntitlement(t *testing.T) {
	repo := &mockProgressionRepo{
		learner:   &models.Learner{ID: "l1", SubscriptionTier: models.TierFree, ApprovedPillar: 2},
		completed: catalog.Modules(1),
	}
	pending := models.ExamStatusPending
	exams := &mockProgressionExams{latest: []models.ExamSubmission{{PillarIndex: 2, Status: pending}}}
	svc := newProgressionService(repo, exams)

	states, cached, err := svc.Overview(context.Background(), "l1")
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, states, catalog.PillarCount)

	assert.Equal(t, models.PillarStatusCompleted, states[0].Status)
	assert.True(t, states[0].Viewable)
	assert.Equal(t, len(catalog.Modules(1)), states[0].ModulesCompleted)

	assert.Equal(t, models.PillarStatusUnlocked, states[1].Status)
	assert.False(t, states[1].Viewable)
	require.NotNil(t, states[1].ExamStatus)
	assert.Equal(t, pending, *states[1].ExamStatus)

	assert.Equal(t, models.PillarStatusLocked, states[2].Status)
}

func TestCompleteModuleRejectsLockedPillar(t *testing.T) {
	repo := &mockProgressionRepo{learner: &models.Learner{ID: "l1", SubscriptionTier: models.TierPremium, ApprovedPillar: 1}}
	svc := newProgressionService(repo, &mockProgressionExams{})

	err := svc.CompleteModule(context.Background(), "l1", "p3-m1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPillarLocked.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.added)
}

func TestCompleteModuleRejectsNonViewablePillar(t *testing.T) {
	repo := &mockProgressionRepo{learner: &models.Learner{ID: "l1", SubscriptionTier: models.TierFree, ApprovedPillar: 2}}
	svc := newProgressionService(repo, &mockProgressionExams{})

	err := svc.CompleteModule(context.Background(), "l1", "p2-m1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpgradeRequired.Code, appErrors.FromError(err).Code)
}

func TestCompleteModuleRecordsAudit(t *testing.T) {
	repo := &mockProgressionRepo{learner: &models.Learner{ID: "l1", SubscriptionTier: models.TierFree, ApprovedPillar: 1}}
	svc := newProgressionService(repo, &mockProgressionExams{})

	require.NoError(t, svc.CompleteModule(context.Background(), "l1", "p1-m1"))
	assert.Equal(t, []string{"p1-m1"}, repo.added)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionModuleComplete, repo.auditLogs[0].Action)
}

func TestCompleteModuleUnknownID(t *testing.T) {
	repo := &mockProgressionRepo{learner: &models.Learner{ID: "l1", SubscriptionTier: models.TierPremium, ApprovedPillar: 9}}
	svc := newProgressionService(repo, &mockProgressionExams{})

	err := svc.CompleteModule(context.Background(), "l1", "nope")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAdvanceRequiresAllModules(t *testing.T) {
	repo := &mockProgressionRepo{
		learner:   &models.Learner{ID: "l1", SubscriptionTier: models.TierPremium, ApprovedPillar: 2},
		completed: []string{"p2-m1"},
	}
	svc := newProgressionService(repo, &mockProgressionExams{})

	_, err := svc.Advance(context.Background(), "l1", 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestAdvanceFrontierRequiresExam(t *testing.T) {
	repo := &mockProgressionRepo{
		learner:   &models.Learner{ID: "l1", SubscriptionTier: models.TierPremium, ApprovedPillar: 2},
		completed: catalog.Modules(2),
	}
	svc := newProgressionService(repo, &mockProgressionExams{})

	result, err := svc.Advance(context.Background(), "l1", 2)
	require.NoError(t, err)
	assert.Equal(t, models.AdvanceActionExamRequired, result.Action)
}

func TestAdvanceApprovedPillarProceeds(t *testing.T) {
	repo := &mockProgressionRepo{
		learner: &models.Learner{ID: "l1", SubscriptionTier: models.TierPremium, ApprovedPillar: 3},
	}
	svc := newProgressionService(repo, &mockProgressionExams{})

	result, err := svc.Advance(context.Background(), "l1", 2)
	require.NoError(t, err)
	assert.Equal(t, models.AdvanceActionProceed, result.Action)
	assert.Equal(t, 3, result.NextPillar)
	assert.ElementsMatch(t, catalog.Modules(2), repo.added)
}

func TestAdvancePastPillarOneOnFreeTierHitsPaywall(t *testing.T) {
	repo := &mockProgressionRepo{
		learner: &models.Learner{ID: "l1", SubscriptionTier: models.TierFree, ApprovedPillar: 2},
	}
	svc := newProgressionService(repo, &mockProgressionExams{})

	result, err := svc.Advance(context.Background(), "l1", 1)
	require.NoError(t, err)
	assert.Equal(t, models.AdvanceActionUpgradeRequired, result.Action)
}

func TestAdvanceLockedPillar(t *testing.T) {
	repo := &mockProgressionRepo{
		learner: &models.Learner{ID: "l1", SubscriptionTier: models.TierPremium, ApprovedPillar: 1},
	}
	svc := newProgressionService(repo, &mockProgressionExams{})

	_, err := svc.Advance(context.Background(), "l1", 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPillarLocked.Code, appErrors.FromError(err).Code)
}
