package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/pillar-academy-api/internal/catalog"
	"github.com/noah-isme/pillar-academy-api/internal/models"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
)

type specializationLearnerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Learner, error)
	SetSpecialization(ctx context.Context, id, specializationID string) error
	CompletedModules(ctx context.Context, learnerID string) ([]string, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SpecializationService handles track choice and folds pillar and track
// completion into the single global percentage.
type SpecializationService struct {
	learners specializationLearnerRepository
	cache    progressCacheInvalidator
	logger   *zap.Logger
}

// NewSpecializationService constructs a SpecializationService instance.
func NewSpecializationService(learners specializationLearnerRepository, cache progressCacheInvalidator, logger *zap.Logger) *SpecializationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpecializationService{learners: learners, cache: cache, logger: logger}
}

// Choose locks the learner onto a track. Choosing requires every pillar exam
// approved; choosing the same track again is a no-op, switching tracks is
// rejected.
func (s *SpecializationService) Choose(ctx context.Context, learnerID, specializationID string) (*models.Learner, error) {
	spec, ok := catalog.SpecializationByID(specializationID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown specialization")
	}

	learner, err := s.learners.FindByID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learner")
	}

	if !AreAllPillarsComplete(learner) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "complete all pillars before choosing a track")
	}

	if learner.ChosenSpecialization != nil {
		if *learner.ChosenSpecialization == spec.ID {
			return learner, nil
		}
		return nil, appErrors.Clone(appErrors.ErrConflict, "a track has already been chosen")
	}

	if err := s.learners.SetSpecialization(ctx, learnerID, spec.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store specialization choice")
	}
	learner.ChosenSpecialization = &spec.ID

	if err := s.learners.CreateAuditLog(ctx, &models.AuditLog{
		LearnerID:  &learnerID,
		Action:     models.AuditActionSpecChoose,
		Resource:   "specialization",
		ResourceID: &spec.ID,
		NewValues:  []byte(fmt.Sprintf(`{"specialization":%q}`, spec.ID)),
	}); err != nil {
		s.logger.Warn("failed to record specialization choice audit log", zap.Error(err))
	}
	s.invalidate(ctx, learnerID)
	return learner, nil
}

// Tracks returns the per-track completion summary for the learner.
func (s *SpecializationService) Tracks(ctx context.Context, learnerID string) ([]models.SpecializationProgress, error) {
	learner, err := s.learners.FindByID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learner")
	}

	completed, err := s.completedSet(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.SpecializationProgress, 0, len(catalog.Specializations()))
	for _, spec := range catalog.Specializations() {
		spec := spec
		done := 0
		for _, id := range spec.ModuleIDs {
			if completed[id] {
				done++
			}
		}
		progress := models.SpecializationProgress{
			ID:               spec.ID,
			Title:            spec.Title,
			ModulesTotal:     len(spec.ModuleIDs),
			ModulesCompleted: done,
			Complete:         IsComplete(&spec, completed),
			Chosen:           learner.ChosenSpecialization != nil && *learner.ChosenSpecialization == spec.ID,
		}
		if progress.ModulesTotal > 0 {
			progress.Ratio = float64(done) / float64(progress.ModulesTotal)
		}
		tracks = append(tracks, progress)
	}
	return tracks, nil
}

// GlobalProgress folds the pillar chain and the chosen track into one
// percentage. Pillar completion fills 0..50; specialization completion fills
// 50..100; all pillars done with no track chosen sits exactly on 50.
func (s *SpecializationService) GlobalProgress(ctx context.Context, learnerID string) (*models.GlobalProgress, error) {
	learner, err := s.learners.FindByID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learner")
	}

	completed, err := s.completedSet(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return ComputeGlobalProgress(learner, completed), nil
}

// ComputeGlobalProgress is the pure two-band mapping behind GlobalProgress.
func ComputeGlobalProgress(learner *models.Learner, completed map[string]bool) *models.GlobalProgress {
	progress := &models.GlobalProgress{
		CompletedPillars: CompletedPillarCount(learner),
		Specialization:   learner.ChosenSpecialization,
	}

	if !AreAllPillarsComplete(learner) {
		progress.Phase = models.PhasePillars
		progress.Percent = (50*progress.CompletedPillars + catalog.PillarCount/2) / catalog.PillarCount
		return progress
	}

	if learner.ChosenSpecialization == nil {
		progress.Phase = models.PhaseBoundary
		progress.Percent = 50
		return progress
	}

	progress.Phase = models.PhaseSpecialization
	spec, ok := catalog.SpecializationByID(*learner.ChosenSpecialization)
	if !ok || len(spec.ModuleIDs) == 0 {
		progress.Percent = 50
		return progress
	}

	done := 0
	for _, id := range spec.ModuleIDs {
		if completed[id] {
			done++
		}
	}
	progress.Percent = 50 + (50*done+len(spec.ModuleIDs)/2)/len(spec.ModuleIDs)
	if progress.Percent > 100 {
		progress.Percent = 100
	}
	return progress
}

// IsComplete reports whether the learner finished every module of the track.
func IsComplete(spec *catalog.Specialization, completed map[string]bool) bool {
	if spec == nil || len(spec.ModuleIDs) == 0 {
		return false
	}
	for _, id := range spec.ModuleIDs {
		if !completed[id] {
			return false
		}
	}
	return true
}

func (s *SpecializationService) completedSet(ctx context.Context, learnerID string) (map[string]bool, error) {
	ids, err := s.learners.CompletedModules(ctx, learnerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completed modules")
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *SpecializationService) invalidate(ctx context.Context, learnerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "progress:"+learnerID+":*"); err != nil {
		s.logger.Warn("failed to invalidate progress cache", zap.Error(err))
	}
}
