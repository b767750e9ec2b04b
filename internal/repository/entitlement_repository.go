package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pillar-academy-api/internal/models"
)

// EntitlementRepository persists invite codes and payment outcomes. Redeeming
// a code and upgrading the learner's tier happen in one transaction.
type EntitlementRepository struct {
	db *sqlx.DB
}

// NewEntitlementRepository constructs the repository.
func NewEntitlementRepository(db *sqlx.DB) *EntitlementRepository {
	return &EntitlementRepository{db: db}
}

// FindInviteCode loads a code by its value.
func (r *EntitlementRepository) FindInviteCode(ctx context.Context, code string) (*models.InviteCode, error) {
	const query = `SELECT id, code, issued_to, redeemed_by, redeemed_at, created_at FROM invite_codes WHERE code = $1`
	var record models.InviteCode
	if err := r.db.GetContext(ctx, &record, query, strings.TrimSpace(code)); err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateInviteCode issues a new code.
func (r *EntitlementRepository) CreateInviteCode(ctx context.Context, record *models.InviteCode) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO invite_codes (id, code, issued_to, redeemed_by, redeemed_at, created_at)
VALUES (:id, :code, :issued_to, :redeemed_by, :redeemed_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create invite code: %w", err)
	}
	return nil
}

// RedeemInviteCode marks the code used and upgrades the learner to premium in
// a single transaction. Returns false when the code was already redeemed by
// the time the update ran.
func (r *EntitlementRepository) RedeemInviteCode(ctx context.Context, codeID, learnerID string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin redeem transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	const redeemQuery = `UPDATE invite_codes SET redeemed_by = $2, redeemed_at = $3 WHERE id = $1 AND redeemed_by IS NULL`
	res, err := tx.ExecContext(ctx, redeemQuery, codeID, learnerID, now)
	if err != nil {
		return false, fmt.Errorf("redeem invite code: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("redeem invite code result: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	const upgradeQuery = `UPDATE users SET subscription_tier = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, upgradeQuery, learnerID, models.TierPremium, now); err != nil {
		return false, fmt.Errorf("upgrade subscription tier: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit redeem transaction: %w", err)
	}
	return true, nil
}

// RecordPayment stores a payment outcome and, when confirmed, upgrades the
// learner in the same transaction.
func (r *EntitlementRepository) RecordPayment(ctx context.Context, payment *models.PaymentRecord) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertQuery = `INSERT INTO payments (id, learner_id, reference, status, created_at)
VALUES (:id, :learner_id, :reference, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, payment); err != nil {
		return fmt.Errorf("record payment: %w", err)
	}

	if payment.Status == models.PaymentStatusConfirmed {
		const upgradeQuery = `UPDATE users SET subscription_tier = $2, updated_at = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, upgradeQuery, payment.LearnerID, models.TierPremium, payment.CreatedAt); err != nil {
			return fmt.Errorf("upgrade subscription tier: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payment transaction: %w", err)
	}
	return nil
}

// FindPaymentByReference returns a recorded payment outcome.
func (r *EntitlementRepository) FindPaymentByReference(ctx context.Context, reference string) (*models.PaymentRecord, error) {
	const query = `SELECT id, learner_id, reference, status, created_at FROM payments WHERE reference = $1 ORDER BY created_at DESC LIMIT 1`
	var record models.PaymentRecord
	if err := r.db.GetContext(ctx, &record, query, reference); err != nil {
		return nil, err
	}
	return &record, nil
}
