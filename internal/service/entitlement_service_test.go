package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/pillar-academy-api/internal/models"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
)

type mockEntitlementRepo struct {
	code         *models.InviteCode
	issued       []*models.InviteCode
	redeemed     bool
	redeemResult bool
	payments     []*models.PaymentRecord
	existing     *models.PaymentRecord
}

func (m *mockEntitlementRepo) FindInviteCode(ctx context.Context, code string) (*models.InviteCode, error) {
	if m.code == nil {
		return nil, sql.ErrNoRows
	}
	return m.code, nil
}

func (m *mockEntitlementRepo) CreateInviteCode(ctx context.Context, record *models.InviteCode) error {
	m.issued = append(m.issued, record)
	return nil
}

func (m *mockEntitlementRepo) RedeemInviteCode(ctx context.Context, codeID, learnerID string) (bool, error) {
	m.redeemed = true
	return m.redeemResult, nil
}

func (m *mockEntitlementRepo) RecordPayment(ctx context.Context, payment *models.PaymentRecord) error {
	m.payments = append(m.payments, payment)
	return nil
}

func (m *mockEntitlementRepo) FindPaymentByReference(ctx context.Context, reference string) (*models.PaymentRecord, error) {
	if m.existing == nil {
		return nil, sql.ErrNoRows
	}
	return m.existing, nil
}

type mockEntitlementLearners struct {
	learner   *models.Learner
	auditLogs []*models.AuditLog
}

func (m *mockEntitlementLearners) FindByID(ctx context.Context, id string) (*models.Learner, error) {
	if m.learner == nil {
		return nil, sql.ErrNoRows
	}
	return m.learner, nil
}

func (m *mockEntitlementLearners) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func newEntitlementService(repo *mockEntitlementRepo, learners *mockEntitlementLearners) *EntitlementService {
	return NewEntitlementService(repo, learners, nil, zap.NewNop(), EntitlementConfig{InviteCodesEnabled: true, PaymentsEnabled: true})
}

func TestCanViewGate(t *testing.T) {
	assert.True(t, CanView(models.TierFree, 1))
	assert.True(t, CanView(models.TierPremium, 1))
	assert.True(t, CanView(models.TierExpired, 1))

	for pillar := 2; pillar <= 9; pillar++ {
		assert.False(t, CanView(models.TierFree, pillar))
		assert.False(t, CanView(models.TierExpired, pillar))
		assert.True(t, CanView(models.TierPremium, pillar))
	}
}

func TestActivateWithInviteCode(t *testing.T) {
	repo := &mockEntitlementRepo{
		code:         &models.InviteCode{ID: "c1", Code: "WELCOME"},
		redeemResult: true,
	}
	learners := &mockEntitlementLearners{learner: &models.Learner{ID: "l1", SubscriptionTier: models.TierPremium}}
	svc := newEntitlementService(repo, learners)

	learner, err := svc.ActivateWithInviteCode(context.Background(), "l1", "welcome")
	require.NoError(t, err)
	assert.True(t, repo.redeemed)
	assert.Equal(t, models.TierPremium, learner.SubscriptionTier)
	require.Len(t, learners.auditLogs, 1)
	assert.Equal(t, models.AuditActionTierUpgrade, learners.auditLogs[0].Action)
}

func TestActivateWithUnknownCode(t *testing.T) {
	svc := newEntitlementService(&mockEntitlementRepo{}, &mockEntitlementLearners{})

	_, err := svc.ActivateWithInviteCode(context.Background(), "l1", "NOPE")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCode.Code, appErrors.FromError(err).Code)
}

func TestActivateWithUsedCode(t *testing.T) {
	other := "someone-else"
	repo := &mockEntitlementRepo{code: &models.InviteCode{ID: "c1", Code: "WELCOME", RedeemedBy: &other}}
	svc := newEntitlementService(repo, &mockEntitlementLearners{})

	_, err := svc.ActivateWithInviteCode(context.Background(), "l1", "WELCOME")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCodeAlreadyUsed.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.redeemed)
}

func TestActivateWithCodeLostRace(t *testing.T) {
	repo := &mockEntitlementRepo{code: &models.InviteCode{ID: "c1", Code: "WELCOME"}, redeemResult: false}
	svc := newEntitlementService(repo, &mockEntitlementLearners{})

	_, err := svc.ActivateWithInviteCode(context.Background(), "l1", "WELCOME")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCodeAlreadyUsed.Code, appErrors.FromError(err).Code)
}

func TestActivateWithConfirmedPayment(t *testing.T) {
	repo := &mockEntitlementRepo{}
	learners := &mockEntitlementLearners{learner: &models.Learner{ID: "l1", SubscriptionTier: models.TierPremium}}
	svc := newEntitlementService(repo, learners)

	learner, err := svc.ActivateWithPayment(context.Background(), "l1", "pay-1", models.PaymentStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, learner.SubscriptionTier)
	require.Len(t, repo.payments, 1)
	assert.Equal(t, models.PaymentStatusConfirmed, repo.payments[0].Status)
}

func TestActivateWithFailedPayment(t *testing.T) {
	repo := &mockEntitlementRepo{}
	svc := newEntitlementService(repo, &mockEntitlementLearners{})

	_, err := svc.ActivateWithPayment(context.Background(), "l1", "pay-2", models.PaymentStatusFailed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPaymentNotConfirmed.Code, appErrors.FromError(err).Code)
	require.Len(t, repo.payments, 1)
}

func TestActivateWithPaymentIdempotentReplay(t *testing.T) {
	repo := &mockEntitlementRepo{existing: &models.PaymentRecord{ID: "p1", Reference: "pay-1", Status: models.PaymentStatusConfirmed}}
	learners := &mockEntitlementLearners{learner: &models.Learner{ID: "l1", SubscriptionTier: models.TierPremium}}
	svc := newEntitlementService(repo, learners)

	learner, err := svc.ActivateWithPayment(context.Background(), "l1", "pay-1", models.PaymentStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, learner.SubscriptionTier)
	assert.Empty(t, repo.payments)
}

func TestActivateDisabledChannels(t *testing.T) {
	svc := NewEntitlementService(&mockEntitlementRepo{}, &mockEntitlementLearners{}, nil, zap.NewNop(), EntitlementConfig{})

	_, err := svc.ActivateWithInviteCode(context.Background(), "l1", "WELCOME")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.ActivateWithPayment(context.Background(), "l1", "pay-1", models.PaymentStatusConfirmed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestIssueInviteCode(t *testing.T) {
	repo := &mockEntitlementRepo{}
	svc := newEntitlementService(repo, &mockEntitlementLearners{})

	recipient := "friend@example.com"
	code, err := svc.IssueInviteCode(context.Background(), &recipient)
	require.NoError(t, err)
	require.Len(t, repo.issued, 1)

	assert.Len(t, code.Code, 16)
	assert.Equal(t, strings.ToUpper(code.Code), code.Code)
	assert.Equal(t, &recipient, code.IssuedTo)
	assert.Nil(t, code.RedeemedBy)
}

func TestIssueInviteCodeDisabled(t *testing.T) {
	svc := NewEntitlementService(&mockEntitlementRepo{}, &mockEntitlementLearners{}, nil, zap.NewNop(), EntitlementConfig{})

	_, err := svc.IssueInviteCode(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
