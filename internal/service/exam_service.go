package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/pillar-academy-api/internal/catalog"
	"github.com/noah-isme/pillar-academy-api/internal/models"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
)

type examRepository interface {
	Create(ctx context.Context, submission *models.ExamSubmission) error
	FindByID(ctx context.Context, id string) (*models.ExamSubmission, error)
	FindLatest(ctx context.Context, learnerID string, pillarIndex int) (*models.ExamSubmission, error)
	List(ctx context.Context, filter models.ExamFilter) ([]models.ExamSubmission, int, error)
	Grade(ctx context.Context, id string, status models.ExamStatus, feedback *string, gradedBy string, gradedAt time.Time) (*models.ExamSubmission, error)
}

type attemptStore interface {
	Get(ctx context.Context, learnerID string, pillarIndex int) (*models.ExamAttempt, error)
	Save(ctx context.Context, attempt *models.ExamAttempt) error
	Delete(ctx context.Context, learnerID string, pillarIndex int) error
}

type examLearnerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Learner, error)
	CompletedModules(ctx context.Context, learnerID string) ([]string, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ExamConfig tunes the submission rules.
type ExamConfig struct {
	MinWrittenLength int
}

// SubmitResult is returned after a submission lands, carrying the interface
// hint for what to show next.
type SubmitResult struct {
	Submission *models.ExamSubmission `json:"submission"`
	Next       models.NextMessage     `json:"next"`
}

// ExamService runs the exam wizard and the admin grading workflow.
type ExamService struct {
	repo     examRepository
	attempts attemptStore
	learners examLearnerRepository
	cache    progressCacheInvalidator
	logger   *zap.Logger
	config   ExamConfig
}

// NewExamService constructs an ExamService instance.
func NewExamService(repo examRepository, attempts attemptStore, learners examLearnerRepository, cache progressCacheInvalidator, logger *zap.Logger, config ExamConfig) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MinWrittenLength <= 0 {
		config.MinWrittenLength = 50
	}
	return &ExamService{repo: repo, attempts: attempts, learners: learners, cache: cache, logger: logger, config: config}
}

// StartAttempt opens (or resumes) the exam wizard for a pillar. A pending
// submission for the same pillar blocks a new attempt outright.
func (s *ExamService) StartAttempt(ctx context.Context, learnerID string, pillarIndex int) (*models.ExamAttempt, error) {
	pillar, ok := catalog.PillarByIndex(pillarIndex)
	if !ok {
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
	if !CanView(learner.SubscriptionTier, pillarIndex) {
		return nil, appErrors.Clone(appErrors.ErrUpgradeRequired, "")
	}

	completedIDs, err := s.learners.CompletedModules(ctx, learnerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completed modules")
	}
	completed := make(map[string]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}
	if !AllModulesCompleted(pillar.Index, completed) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "finish every module of the pillar first")
	}

	if err := s.rejectWhenPending(ctx, learnerID, pillarIndex); err != nil {
		return nil, err
	}

	if attempt, err := s.attempts.Get(ctx, learnerID, pillarIndex); err == nil {
		return attempt, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam attempt")
	}

	attempt := NewExamAttempt(learnerID, pillarIndex)
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist exam attempt")
	}
	return attempt, nil
}

// Acknowledge moves the attempt from the intro screen to the quiz.
func (s *ExamService) Acknowledge(ctx context.Context, learnerID string, pillarIndex int) (*models.ExamAttempt, error) {
	return s.transition(ctx, learnerID, pillarIndex, func(attempt *models.ExamAttempt, _ []catalog.Question) error {
		return AcknowledgeIntro(attempt)
	})
}

// Answer records the selected option for the current quiz question.
func (s *ExamService) Answer(ctx context.Context, learnerID string, pillarIndex, option int) (*models.ExamAttempt, error) {
	return s.transition(ctx, learnerID, pillarIndex, func(attempt *models.ExamAttempt, quiz []catalog.Question) error {
		return AnswerQuestion(attempt, quiz, option)
	})
}

// Written stores the essay text for the attempt.
func (s *ExamService) Written(ctx context.Context, learnerID string, pillarIndex int, text string) (*models.ExamAttempt, error) {
	return s.transition(ctx, learnerID, pillarIndex, func(attempt *models.ExamAttempt, _ []catalog.Question) error {
		return SetWrittenAnswer(attempt, text, s.config.MinWrittenLength)
	})
}

// Submit finishes the wizard: the quiz is scored server-side against the
// catalog bank and a PENDING submission row is written. On a storage failure
// the attempt drops back to the written step with its payload intact.
func (s *ExamService) Submit(ctx context.Context, learnerID string, pillarIndex int) (*SubmitResult, error) {
	pillar, ok := catalog.PillarByIndex(pillarIndex)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown pillar")
	}

	attempt, err := s.attempts.Get(ctx, learnerID, pillarIndex)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no exam attempt in progress")
	}

	if err := StartSubmit(attempt); err != nil {
		return nil, err
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		s.logger.Warn("failed to persist attempt state", zap.Error(err))
	}

	if err := s.rejectWhenPending(ctx, learnerID, pillarIndex); err != nil {
		if ferr := FailSubmit(attempt); ferr == nil {
			if serr := s.attempts.Save(ctx, attempt); serr != nil {
				s.logger.Warn("failed to persist attempt state", zap.Error(serr))
			}
		}
		return nil, err
	}

	submission := &models.ExamSubmission{
		ID:            uuid.NewString(),
		LearnerID:     learnerID,
		PillarIndex:   pillarIndex,
		QuizScore:     QuizScore(pillar.Quiz, attempt.Answers),
		WrittenAnswer: attempt.WrittenAnswer,
		Status:        models.ExamStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		if ferr := FailSubmit(attempt); ferr == nil {
			if serr := s.attempts.Save(ctx, attempt); serr != nil {
				s.logger.Warn("failed to persist attempt state", zap.Error(serr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store submission")
	}

	if err := CompleteSubmit(attempt); err == nil {
		if derr := s.attempts.Delete(ctx, learnerID, pillarIndex); derr != nil {
			s.logger.Warn("failed to drop finished attempt", zap.Error(derr))
		}
	}

	if err := s.learners.CreateAuditLog(ctx, &models.AuditLog{
		LearnerID:  &learnerID,
		Action:     models.AuditActionExamSubmit,
		Resource:   "exam",
		ResourceID: &submission.ID,
		NewValues:  []byte(fmt.Sprintf(`{"pillar_index":%d,"quiz_score":%d}`, pillarIndex, submission.QuizScore)),
	}); err != nil {
		s.logger.Warn("failed to record exam submit audit log", zap.Error(err))
	}

	result := &SubmitResult{Submission: submission, Next: models.NextMessageAwaitGrading}
	learner, err := s.learners.FindByID(ctx, learnerID)
	if err == nil && pillarIndex == 1 && learner.SubscriptionTier != models.TierPremium {
		result.Next = models.NextMessageUpgrade
	}
	return result, nil
}

// Status returns the authoritative submission for the pair, or nil when the
// learner never submitted. Among multiple rows the newest one wins.
func (s *ExamService) Status(ctx context.Context, learnerID string, pillarIndex int) (*models.ExamSubmission, error) {
	if _, ok := catalog.PillarByIndex(pillarIndex); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown pillar")
	}
	submission, err := s.repo.FindLatest(ctx, learnerID, pillarIndex)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return submission, nil
}

// Grade records the admin verdict. Approval raises the learner's frontier in
// the same transaction as the status flip; grading an already graded
// submission is rejected without changing anything.
func (s *ExamService) Grade(ctx context.Context, examID, gradedBy string, outcome models.GradeOutcome, feedback *string) (*models.ExamSubmission, error) {
	if outcome != models.GradeOutcomeApproved && outcome != models.GradeOutcomeRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "outcome must be APPROVED or REJECTED")
	}

	if _, err := s.repo.FindByID(ctx, examID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	graded, err := s.repo.Grade(ctx, examID, models.ExamStatus(outcome), feedback, gradedBy, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyGraded, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grade submission")
	}

	if err := s.learners.CreateAuditLog(ctx, &models.AuditLog{
		LearnerID:  &graded.LearnerID,
		Action:     models.AuditActionExamGrade,
		Resource:   "exam",
		ResourceID: &graded.ID,
		NewValues:  []byte(fmt.Sprintf(`{"status":%q,"graded_by":%q}`, graded.Status, gradedBy)),
	}); err != nil {
		s.logger.Warn("failed to record exam grade audit log", zap.Error(err))
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "progress:"+graded.LearnerID+":*"); err != nil {
			s.logger.Warn("failed to invalidate progress cache", zap.Error(err))
		}
	}
	return graded, nil
}

// List returns submissions for the admin review queue.
func (s *ExamService) List(ctx context.Context, filter models.ExamFilter) ([]models.ExamSubmission, *models.Pagination, error) {
	submissions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}
	return submissions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *ExamService) rejectWhenPending(ctx context.Context, learnerID string, pillarIndex int) error {
	latest, err := s.repo.FindLatest(ctx, learnerID, pillarIndex)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if latest.Status == models.ExamStatusPending {
		return appErrors.Clone(appErrors.ErrExamPending, "")
	}
	return nil
}

func (s *ExamService) transition(ctx context.Context, learnerID string, pillarIndex int, step func(*models.ExamAttempt, []catalog.Question) error) (*models.ExamAttempt, error) {
	pillar, ok := catalog.PillarByIndex(pillarIndex)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown pillar")
	}

	attempt, err := s.attempts.Get(ctx, learnerID, pillarIndex)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no exam attempt in progress")
	}

	if err := step(attempt, pillar.Quiz); err != nil {
		return nil, err
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist exam attempt")
	}
	return attempt, nil
}
