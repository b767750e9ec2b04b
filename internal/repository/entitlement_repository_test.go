package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pillar-academy-api/internal/models"
)

func newEntitlementRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEntitlementRepositoryRedeemInviteCode(t *testing.T) {
	db, mock, cleanup := newEntitlementRepoMock(t)
	defer cleanup()
	repo := NewEntitlementRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invite_codes SET redeemed_by").
		WithArgs("code-1", "lrn-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET subscription_tier").
		WithArgs("lrn-1", models.TierPremium, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	redeemed, err := repo.RedeemInviteCode(context.Background(), "code-1", "lrn-1")
	require.NoError(t, err)
	require.True(t, redeemed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntitlementRepositoryRedeemInviteCodeAlreadyUsed(t *testing.T) {
	db, mock, cleanup := newEntitlementRepoMock(t)
	defer cleanup()
	repo := NewEntitlementRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invite_codes SET redeemed_by").
		WithArgs("code-1", "lrn-2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	redeemed, err := repo.RedeemInviteCode(context.Background(), "code-1", "lrn-2")
	require.NoError(t, err)
	require.False(t, redeemed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntitlementRepositoryRecordConfirmedPayment(t *testing.T) {
	db, mock, cleanup := newEntitlementRepoMock(t)
	defer cleanup()
	repo := NewEntitlementRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET subscription_tier").
		WithArgs("lrn-1", models.TierPremium, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordPayment(context.Background(), &models.PaymentRecord{
		LearnerID: "lrn-1",
		Reference: "pay_123",
		Status:    models.PaymentStatusConfirmed,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntitlementRepositoryRecordFailedPaymentSkipsUpgrade(t *testing.T) {
	db, mock, cleanup := newEntitlementRepoMock(t)
	defer cleanup()
	repo := NewEntitlementRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordPayment(context.Background(), &models.PaymentRecord{
		LearnerID: "lrn-1",
		Reference: "pay_456",
		Status:    models.PaymentStatusFailed,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
