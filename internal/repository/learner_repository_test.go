package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pillar-academy-api/internal/models"
)

func newLearnerRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestLearnerRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newLearnerRepoMock(t)
	defer cleanup()
	repo := NewLearnerRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "active", "subscription_tier", "approved_pillar", "chosen_specialization", "last_login", "created_at", "updated_at"}).
		AddRow("lrn-1", "a@b.co", "hash", "Ada", models.RoleLearner, true, models.TierFree, 1, nil, nil, now, now)
	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\$1").
		WithArgs("lrn-1").
		WillReturnRows(rows)

	learner, err := repo.FindByID(context.Background(), "lrn-1")
	require.NoError(t, err)
	require.Equal(t, 1, learner.ApprovedPillar)
	require.Equal(t, models.TierFree, learner.SubscriptionTier)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLearnerRepositoryCompletedModules(t *testing.T) {
	db, mock, cleanup := newLearnerRepoMock(t)
	defer cleanup()
	repo := NewLearnerRepository(db)

	rows := sqlmock.NewRows([]string{"module_id"}).AddRow("p1-m1").AddRow("p1-m2")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT module_id FROM learner_modules WHERE learner_id = $1 ORDER BY completed_at ASC")).
		WithArgs("lrn-1").
		WillReturnRows(rows)

	moduleIDs, err := repo.CompletedModules(context.Background(), "lrn-1")
	require.NoError(t, err)
	require.Equal(t, []string{"p1-m1", "p1-m2"}, moduleIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLearnerRepositoryAddCompletedModulesIdempotent(t *testing.T) {
	db, mock, cleanup := newLearnerRepoMock(t)
	defer cleanup()
	repo := NewLearnerRepository(db)

	mock.ExpectExec("INSERT INTO learner_modules").
		WithArgs("lrn-1", "p1-m1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO learner_modules").
		WithArgs("lrn-1", "p1-m2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AddCompletedModules(context.Background(), "lrn-1", []string{"p1-m1", "p1-m2"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
