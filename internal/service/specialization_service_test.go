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

type mockSpecializationRepo struct {
	learner   *models.Learner
	completed []string
	chosen    string
	auditLogs []*models.AuditLog
}

func (m *mockSpecializationRepo) FindByID(ctx context.Context, id string) (*models.Learner, error) {
	if m.learner == nil {
		return nil, sql.ErrNoRows
	}
	return m.learner, nil
}

func (m *mockSpecializationRepo) SetSpecialization(ctx context.Context, id, specializationID string) error {
	m.chosen = specializationID
	return nil
}

func (m *mockSpecializationRepo) CompletedModules(ctx context.Context, learnerID string) ([]string, error) {
	return m.completed, nil
}

func (m *mockSpecializationRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func TestChooseRequiresAllPillars(t *testing.T) {
	repo := &mockSpecializationRepo{learner: &models.Learner{ID: "l1", ApprovedPillar: 7}}
	svc := NewSpecializationService(repo, nil, zap.NewNop())

	_, err := svc.Choose(context.Background(), "l1", "real-estate")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.chosen)
}

func TestChooseTrack(t *testing.T) {
	repo := &mockSpecializationRepo{learner: &models.Learner{ID: "l1", ApprovedPillar: 10}}
	svc := NewSpecializationService(repo, nil, zap.NewNop())

	learner, err := svc.Choose(context.Background(), "l1", "stock-market")
	require.NoError(t, err)
	assert.Equal(t, "stock-market", repo.chosen)
	require.NotNil(t, learner.ChosenSpecialization)
	assert.Equal(t, "stock-market", *learner.ChosenSpecialization)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionSpecChoose, repo.auditLogs[0].Action)
}

func TestChooseSameTrackIsNoOp(t *testing.T) {
	chosen := "real-estate"
	repo := &mockSpecializationRepo{learner: &models.Learner{ID: "l1", ApprovedPillar: 10, ChosenSpecialization: &chosen}}
	svc := NewSpecializationService(repo, nil, zap.NewNop())

	_, err := svc.Choose(context.Background(), "l1", "real-estate")
	require.NoError(t, err)
	assert.Empty(t, repo.chosen)
}

func TestChooseSwitchingTracksRejected(t *testing.T) {
	chosen := "real-estate"
	repo := &mockSpecializationRepo{learner: &models.Learner{ID: "l1", ApprovedPillar: 10, ChosenSpecialization: &chosen}}
	svc := NewSpecializationService(repo, nil, zap.NewNop())

	_, err := svc.Choose(context.Background(), "l1", "stock-market")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestChooseUnknownTrack(t *testing.T) {
	repo := &mockSpecializationRepo{learner: &models.Learner{ID: "l1", ApprovedPillar: 10}}
	svc := NewSpecializationService(repo, nil, zap.NewNop())

	_, err := svc.Choose(context.Background(), "l1", "day-trading")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGlobalProgressPillarPhase(t *testing.T) {
	progress := ComputeGlobalProgress(&models.Learner{ApprovedPillar: 1}, nil)
	assert.Equal(t, models.PhasePillars, progress.Phase)
	assert.Equal(t, 0, progress.Percent)
	assert.Equal(t, 0, progress.CompletedPillars)

	progress = ComputeGlobalProgress(&models.Learner{ApprovedPillar: 5}, nil)
	assert.Equal(t, models.PhasePillars, progress.Phase)
	assert.Equal(t, 22, progress.Percent)
	assert.Equal(t, 4, progress.CompletedPillars)

	progress = ComputeGlobalProgress(&models.Learner{ApprovedPillar: 9}, nil)
	assert.Equal(t, models.PhasePillars, progress.Phase)
	assert.Equal(t, 44, progress.Percent)
}

func TestGlobalProgressBoundary(t *testing.T) {
	progress := ComputeGlobalProgress(&models.Learner{ApprovedPillar: 10}, nil)
	assert.Equal(t, models.PhaseBoundary, progress.Phase)
	assert.Equal(t, 50, progress.Percent)
	assert.Equal(t, 9, progress.CompletedPillars)
}

func TestGlobalProgressSpecializationPhase(t *testing.T) {
	chosen := "real-estate"
	learner := &models.Learner{ApprovedPillar: 10, ChosenSpecialization: &chosen}
	spec, _ := catalog.SpecializationByID(chosen)

	completed := map[string]bool{}
	progress := ComputeGlobalProgress(learner, completed)
	assert.Equal(t, models.PhaseSpecialization, progress.Phase)
	assert.Equal(t, 50, progress.Percent)

	completed[spec.ModuleIDs[0]] = true
	completed[spec.ModuleIDs[1]] = true
	progress = ComputeGlobalProgress(learner, completed)
	assert.Equal(t, 75, progress.Percent)

	for _, id := range spec.ModuleIDs {
		completed[id] = true
	}
	progress = ComputeGlobalProgress(learner, completed)
	assert.Equal(t, 100, progress.Percent)
}

func TestGlobalProgressNeverRegresses(t *testing.T) {
	chosen := "entrepreneurship"
	spec, _ := catalog.SpecializationByID(chosen)
	completed := map[string]bool{}
	previous := -1

	check := func(learner *models.Learner) {
		progress := ComputeGlobalProgress(learner, completed)
		assert.GreaterOrEqual(t, progress.Percent, previous)
		assert.LessOrEqual(t, progress.Percent, 100)
		previous = progress.Percent
	}

	for approved := 1; approved <= 10; approved++ {
		check(&models.Learner{ApprovedPillar: approved})
	}
	learner := &models.Learner{ApprovedPillar: 10, ChosenSpecialization: &chosen}
	check(learner)
	for _, id := range spec.ModuleIDs {
		completed[id] = true
		check(learner)
	}
	assert.Equal(t, 100, previous)
}

func TestTracksSummary(t *testing.T) {
	chosen := "real-estate"
	spec, _ := catalog.SpecializationByID(chosen)
	repo := &mockSpecializationRepo{
		learner:   &models.Learner{ID: "l1", ApprovedPillar: 10, ChosenSpecialization: &chosen},
		completed: spec.ModuleIDs[:2],
	}
	svc := NewSpecializationService(repo, nil, zap.NewNop())

	tracks, err := svc.Tracks(context.Background(), "l1")
	require.NoError(t, err)
	require.Len(t, tracks, len(catalog.Specializations()))
	for _, track := range tracks {
		if track.ID == chosen {
			assert.True(t, track.Chosen)
			assert.Equal(t, 2, track.ModulesCompleted)
			assert.False(t, track.Complete)
		} else {
			assert.False(t, track.Chosen)
			assert.Equal(t, 0, track.ModulesCompleted)
		}
	}

	repo.completed = spec.ModuleIDs
	tracks, err = svc.Tracks(context.Background(), "l1")
	require.NoError(t, err)
	for _, track := range tracks {
		if track.ID == chosen {
			assert.True(t, track.Complete)
			assert.Equal(t, len(spec.ModuleIDs), track.ModulesCompleted)
		}
	}
}
