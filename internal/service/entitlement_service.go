package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/pillar-academy-api/internal/models"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
)

type entitlementRepository interface {
	FindInviteCode(ctx context.Context, code string) (*models.InviteCode, error)
	CreateInviteCode(ctx context.Context, record *models.InviteCode) error
	RedeemInviteCode(ctx context.Context, codeID, learnerID string) (bool, error)
	RecordPayment(ctx context.Context, payment *models.PaymentRecord) error
	FindPaymentByReference(ctx context.Context, reference string) (*models.PaymentRecord, error)
}

type entitlementLearnerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Learner, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type progressCacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// EntitlementConfig toggles the available activation channels.
type EntitlementConfig struct {
	InviteCodesEnabled bool
	PaymentsEnabled    bool
}

// EntitlementService decides what a subscription tier may view and performs
// premium activation.
type EntitlementService struct {
	repo     entitlementRepository
	learners entitlementLearnerRepository
	cache    progressCacheInvalidator
	logger   *zap.Logger
	config   EntitlementConfig
}

// NewEntitlementService constructs an EntitlementService instance.
func NewEntitlementService(repo entitlementRepository, learners entitlementLearnerRepository, cache progressCacheInvalidator, logger *zap.Logger, config EntitlementConfig) *EntitlementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntitlementService{repo: repo, learners: learners, cache: cache, logger: logger, config: config}
}

// CanView is the single entitlement predicate. Pillar 1 is always viewable;
// every other pillar requires the premium tier. An expired subscription is
// treated exactly like the free tier.
func CanView(tier models.SubscriptionTier, pillarIndex int) bool {
	if pillarIndex == 1 {
		return true
	}
	return tier == models.TierPremium
}

// Decide returns the rendering verdict for a pillar. Progression state plays
// no part here: a locked-but-viewable distinction belongs to the progression
// engine.
func (s *EntitlementService) Decide(tier models.SubscriptionTier, pillarIndex int) models.ViewDecision {
	decision := models.ViewDecision{PillarIndex: pillarIndex, Viewable: CanView(tier, pillarIndex)}
	if !decision.Viewable {
		decision.Reason = "premium subscription required"
	}
	return decision
}

// ActivateWithInviteCode redeems a one-shot code and upgrades the learner to
// the premium tier. Redemption and the tier write happen in one transaction
// inside the repository, so two concurrent redeemers cannot both win.
func (s *EntitlementService) ActivateWithInviteCode(ctx context.Context, learnerID, code string) (*models.Learner, error) {
	if !s.config.InviteCodesEnabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invite code activation is disabled")
	}

	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCode, "")
	}

	record, err := s.repo.FindInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCode, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up invite code")
	}

	if record.RedeemedBy != nil {
		return nil, appErrors.Clone(appErrors.ErrCodeAlreadyUsed, "")
	}

	redeemed, err := s.repo.RedeemInviteCode(ctx, record.ID, learnerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to redeem invite code")
	}
	if !redeemed {
		return nil, appErrors.Clone(appErrors.ErrCodeAlreadyUsed, "")
	}

	s.recordUpgrade(ctx, learnerID, fmt.Sprintf(`{"channel":"invite_code","code":%q}`, code))
	s.invalidateProgress(ctx, learnerID)

	learner, err := s.learners.FindByID(ctx, learnerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload learner")
	}
	return learner, nil
}

// IssueInviteCode mints a new one-shot premium code, optionally earmarked
// for a recipient.
func (s *EntitlementService) IssueInviteCode(ctx context.Context, issuedTo *string) (*models.InviteCode, error) {
	if !s.config.InviteCodesEnabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invite code activation is disabled")
	}

	record := &models.InviteCode{
		ID:        uuid.NewString(),
		Code:      newInviteCode(),
		IssuedTo:  issuedTo,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateInviteCode(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue invite code")
	}
	return record, nil
}

// newInviteCode returns a 16-character uppercase code. Codes are compared
// case-insensitively on redemption.
func newInviteCode() string {
	raw := make([]byte, 10)
	if _, err := rand.Read(raw); err != nil {
		return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:16]
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
}

// ActivateWithPayment records a payment callback. Only a confirmed payment
// upgrades the tier; any other outcome is reported back as payment required.
func (s *EntitlementService) ActivateWithPayment(ctx context.Context, learnerID, reference string, status models.PaymentStatus) (*models.Learner, error) {
	if !s.config.PaymentsEnabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "payment activation is disabled")
	}

	if existing, err := s.repo.FindPaymentByReference(ctx, reference); err == nil && existing != nil {
		if existing.Status == models.PaymentStatusConfirmed {
			learner, ferr := s.learners.FindByID(ctx, learnerID)
			if ferr != nil {
				return nil, appErrors.Wrap(ferr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload learner")
			}
			return learner, nil
		}
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up payment")
	}

	payment := &models.PaymentRecord{
		ID:        uuid.NewString(),
		LearnerID: learnerID,
		Reference: reference,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.RecordPayment(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	if status != models.PaymentStatusConfirmed {
		return nil, appErrors.Clone(appErrors.ErrPaymentNotConfirmed, "")
	}

	s.recordUpgrade(ctx, learnerID, fmt.Sprintf(`{"channel":"payment","reference":%q}`, reference))
	s.invalidateProgress(ctx, learnerID)

	learner, err := s.learners.FindByID(ctx, learnerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload learner")
	}
	return learner, nil
}

func (s *EntitlementService) recordUpgrade(ctx context.Context, learnerID, details string) {
	if err := s.learners.CreateAuditLog(ctx, &models.AuditLog{
		LearnerID:  &learnerID,
		Action:     models.AuditActionTierUpgrade,
		Resource:   "subscription",
		ResourceID: &learnerID,
		NewValues:  []byte(details),
	}); err != nil {
		s.logger.Warn("failed to record tier upgrade audit log", zap.Error(err))
	}
}

func (s *EntitlementService) invalidateProgress(ctx context.Context, learnerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "progress:"+learnerID+":*"); err != nil {
		s.logger.Warn("failed to invalidate progress cache", zap.Error(err))
	}
}
