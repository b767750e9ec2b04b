package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/pillar-academy-api/internal/catalog"
	"github.com/noah-isme/pillar-academy-api/internal/models"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
)

type progressionLearnerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Learner, error)
	CompletedModules(ctx context.Context, learnerID string) ([]string, error)
	AddCompletedModules(ctx context.Context, learnerID string, moduleIDs []string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type progressionExamRepository interface {
	LatestByLearner(ctx context.Context, learnerID string) ([]models.ExamSubmission, error)
	FindLatest(ctx context.Context, learnerID string, pillarIndex int) (*models.ExamSubmission, error)
}

type progressCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// ProgressConfig controls the Redis snapshot cache for overview payloads.
type ProgressConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ProgressionService derives pillar status from the approved frontier and
// module completion. Nothing here is ever stored per pillar; every status is
// recomputed from the learner row and the catalog.
type ProgressionService struct {
	learners progressionLearnerRepository
	exams    progressionExamRepository
	cache    progressCache
	logger   *zap.Logger
	config   ProgressConfig
}

// NewProgressionService constructs a ProgressionService instance.
func NewProgressionService(learners progressionLearnerRepository, exams progressionExamRepository, cache progressCache, logger *zap.Logger, config ProgressConfig) *ProgressionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	return &ProgressionService{learners: learners, exams: exams, cache: cache, logger: logger, config: config}
}

// Frontier returns the pillar the learner may currently work on, clamped to
// the last pillar of the chain.
func Frontier(learner *models.Learner) int {
	if learner.ApprovedPillar > catalog.PillarCount {
		return catalog.PillarCount
	}
	if learner.ApprovedPillar < 1 {
		return 1
	}
	return learner.ApprovedPillar
}

// IsPillarUnlocked reports whether the learner may open the pillar at all.
// Entitlement is a separate question answered by CanView.
func IsPillarUnlocked(learner *models.Learner, pillarIndex int) bool {
	return pillarIndex >= 1 && pillarIndex <= Frontier(learner)
}

// CompletedPillarCount counts pillars whose exam has been approved.
func CompletedPillarCount(learner *models.Learner) int {
	count := learner.ApprovedPillar - 1
	if count > catalog.PillarCount {
		return catalog.PillarCount
	}
	if count < 0 {
		return 0
	}
	return count
}

// AreAllPillarsComplete reports whether the final pillar's exam was approved.
func AreAllPillarsComplete(learner *models.Learner) bool {
	return learner.ApprovedPillar > catalog.PillarCount
}

// PillarStatusFor derives one pillar's status from the frontier.
func PillarStatusFor(learner *models.Learner, pillarIndex int) models.PillarStatus {
	if pillarIndex < learner.ApprovedPillar {
		return models.PillarStatusCompleted
	}
	if pillarIndex == learner.ApprovedPillar && pillarIndex <= catalog.PillarCount {
		return models.PillarStatusUnlocked
	}
	return models.PillarStatusLocked
}

// AllModulesCompleted reports whether every module of the pillar is in the
// completed set.
func AllModulesCompleted(pillarIndex int, completed map[string]bool) bool {
	moduleIDs := catalog.Modules(pillarIndex)
	if len(moduleIDs) == 0 {
		return false
	}
	for _, id := range moduleIDs {
		if !completed[id] {
			return false
		}
	}
	return true
}

// Overview returns the full per-pillar affordance list for the learner and
// whether it was served from the Redis snapshot. The snapshot is invalidated
// on every progress mutation.
func (s *ProgressionService) Overview(ctx context.Context, learnerID string) ([]models.PillarState, bool, error) {
	cacheKey := fmt.Sprintf("progress:%s:overview", learnerID)
	if s.cacheEnabled() {
		var cached []models.PillarState
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	learner, err := s.learners.FindByID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "learner not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learner")
	}

	completed, err := s.completedSet(ctx, learnerID)
	if err != nil {
		return nil, false, err
	}

	latest, err := s.exams.LatestByLearner(ctx, learnerID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam submissions")
	}
	examByPillar := make(map[int]models.ExamStatus, len(latest))
	for _, sub := range latest {
		examByPillar[sub.PillarIndex] = sub.Status
	}

	states := make([]models.PillarState, 0, catalog.PillarCount)
	for _, pillar := range catalog.Pillars() {
		done := 0
		for _, id := range pillar.ModuleIDs {
			if completed[id] {
				done++
			}
		}
		state := models.PillarState{
			Index:            pillar.Index,
			Title:            pillar.Title,
			Status:           PillarStatusFor(learner, pillar.Index),
			Viewable:         CanView(learner.SubscriptionTier, pillar.Index),
			ModulesTotal:     len(pillar.ModuleIDs),
			ModulesCompleted: done,
		}
		if status, ok := examByPillar[pillar.Index]; ok {
			examStatus := status
			state.ExamStatus = &examStatus
		}
		states = append(states, state)
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, cacheKey, states, s.config.CacheTTL); err != nil {
			s.logger.Warn("failed to cache progress overview", zap.Error(err))
		}
	}
	return states, false, nil
}

// CompleteModule marks one module done for the learner. Completing a module
// of a locked or non-viewable pillar is rejected; completing an already done
// module is a no-op.
func (s *ProgressionService) CompleteModule(ctx context.Context, learnerID, moduleID string) error {
	pillar, ok := catalog.ModulePillar(moduleID)
	if !ok {
		if _, isSpec := catalog.SpecializationModule(moduleID); isSpec {
			return s.completeSpecializationModule(ctx, learnerID, moduleID)
		}
		return appErrors.Clone(appErrors.ErrNotFound, "unknown module")
	}

	learner, err := s.learners.FindByID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "learner not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learner")
	}

	if !IsPillarUnlocked(learner, pillar.Index) {
		return appErrors.Clone(appErrors.ErrPillarLocked, "")
	}
	if !CanView(learner.SubscriptionTier, pillar.Index) {
		return appErrors.Clone(appErrors.ErrUpgradeRequired, "")
	}

	if err := s.learners.AddCompletedModules(ctx, learnerID, []string{moduleID}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record module completion")
	}

	s.recordModuleComplete(ctx, learnerID, moduleID)
	s.invalidate(ctx, learnerID)
	return nil
}

// Advance reports what happens when the learner tries to move past a pillar:
// proceed straight to the next one, take the exam first, or hit the paywall.
func (s *ProgressionService) Advance(ctx context.Context, learnerID string, pillarIndex int) (*models.AdvanceResult, error) {
	if _, ok := catalog.PillarByIndex(pillarIndex); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown pillar")
	}

	learner, err := s.learners.FindByID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learner")
	}

	if !IsPillarUnlocked(learner, pillarIndex) {
		return nil, appErrors.Clone(appErrors.ErrPillarLocked, "")
	}

	result := &models.AdvanceResult{PillarIndex: pillarIndex}
	next := pillarIndex + 1

	if pillarIndex < learner.ApprovedPillar {
		// Already approved: backfill any missing module rows so derived
		// counts match the approval, then route onwards.
		if err := s.learners.AddCompletedModules(ctx, learnerID, catalog.Modules(pillarIndex)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record module completion")
		}
		s.invalidate(ctx, learnerID)

		// Moving past pillar 1 on a non-premium tier hits the paywall
		// even after approval.
		if next <= catalog.PillarCount && !CanView(learner.SubscriptionTier, next) {
			result.Action = models.AdvanceActionUpgradeRequired
			return result, nil
		}

		result.Action = models.AdvanceActionProceed
		if next <= catalog.PillarCount {
			result.NextPillar = next
		}
		return result, nil
	}

	completed, err := s.completedSet(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if !AllModulesCompleted(pillarIndex, completed) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "finish every module of the pillar first")
	}

	result.Action = models.AdvanceActionExamRequired
	return result, nil
}

func (s *ProgressionService) completeSpecializationModule(ctx context.Context, learnerID, moduleID string) error {
	spec, _ := catalog.SpecializationModule(moduleID)

	learner, err := s.learners.FindByID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "learner not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learner")
	}

	if !AreAllPillarsComplete(learner) {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "complete all pillars first")
	}
	if learner.ChosenSpecialization == nil || *learner.ChosenSpecialization != spec.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "module belongs to a track you have not chosen")
	}

	if err := s.learners.AddCompletedModules(ctx, learnerID, []string{moduleID}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record module completion")
	}

	s.recordModuleComplete(ctx, learnerID, moduleID)
	s.invalidate(ctx, learnerID)
	return nil
}

func (s *ProgressionService) completedSet(ctx context.Context, learnerID string) (map[string]bool, error) {
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

func (s *ProgressionService) recordModuleComplete(ctx context.Context, learnerID, moduleID string) {
	if err := s.learners.CreateAuditLog(ctx, &models.AuditLog{
		LearnerID:  &learnerID,
		Action:     models.AuditActionModuleComplete,
		Resource:   "module",
		ResourceID: &moduleID,
		NewValues:  []byte(fmt.Sprintf(`{"module_id":%q}`, moduleID)),
	}); err != nil {
		s.logger.Warn("failed to record module completion audit log", zap.Error(err))
	}
}

func (s *ProgressionService) invalidate(ctx context.Context, learnerID string) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, "progress:"+learnerID+":*"); err != nil {
		s.logger.Warn("failed to invalidate progress cache", zap.Error(err))
	}
}

func (s *ProgressionService) cacheEnabled() bool {
	return s.config.CacheEnabled && s.cache != nil
}
