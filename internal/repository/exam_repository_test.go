package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pillar-academy-api/internal/models"
)

func newExamRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func examRows(sub models.ExamSubmission) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "learner_id", "pillar_index", "quiz_score", "written_answer", "status", "admin_feedback", "graded_by", "created_at", "graded_at"}).
		AddRow(sub.ID, sub.LearnerID, sub.PillarIndex, sub.QuizScore, sub.WrittenAnswer, sub.Status, sub.AdminFeedback, sub.GradedBy, sub.CreatedAt, sub.GradedAt)
}

func TestExamRepositoryFindLatest(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	latest := models.ExamSubmission{ID: "exam-2", LearnerID: "lrn-1", PillarIndex: 1, QuizScore: 80, WrittenAnswer: "answer", Status: models.ExamStatusPending, CreatedAt: time.Now()}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, learner_id, pillar_index, quiz_score, written_answer, status, admin_feedback, graded_by, created_at, graded_at FROM pillar_exams WHERE learner_id = $1 AND pillar_index = $2 ORDER BY created_at DESC LIMIT 1")).
		WithArgs("lrn-1", 1).
		WillReturnRows(examRows(latest))

	sub, err := repo.FindLatest(context.Background(), "lrn-1", 1)
	require.NoError(t, err)
	require.Equal(t, "exam-2", sub.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryFindLatestNone(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectQuery("SELECT .* FROM pillar_exams WHERE learner_id").
		WithArgs("lrn-1", 3).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindLatest(context.Background(), "lrn-1", 3)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryGradeApprovedRaisesFrontier(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	gradedAt := time.Now().UTC()
	feedback := "well done"
	graded := models.ExamSubmission{ID: "exam-1", LearnerID: "lrn-1", PillarIndex: 1, QuizScore: 80, WrittenAnswer: "answer", Status: models.ExamStatusApproved, AdminFeedback: &feedback, CreatedAt: gradedAt.Add(-time.Hour), GradedAt: &gradedAt}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE pillar_exams").
		WithArgs("exam-1", models.ExamStatusApproved, &feedback, "adm-1", gradedAt, models.ExamStatusPending).
		WillReturnRows(examRows(graded))
	mock.ExpectExec("UPDATE users").
		WithArgs("lrn-1", 2, gradedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Grade(context.Background(), "exam-1", models.ExamStatusApproved, &feedback, "adm-1", gradedAt)
	require.NoError(t, err)
	require.Equal(t, models.ExamStatusApproved, result.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryGradeRejectedLeavesFrontier(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	gradedAt := time.Now().UTC()
	graded := models.ExamSubmission{ID: "exam-1", LearnerID: "lrn-1", PillarIndex: 2, QuizScore: 40, WrittenAnswer: "answer", Status: models.ExamStatusRejected, CreatedAt: gradedAt.Add(-time.Hour), GradedAt: &gradedAt}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE pillar_exams").
		WithArgs("exam-1", models.ExamStatusRejected, nil, "adm-1", gradedAt, models.ExamStatusPending).
		WillReturnRows(examRows(graded))
	mock.ExpectCommit()

	result, err := repo.Grade(context.Background(), "exam-1", models.ExamStatusRejected, nil, "adm-1", gradedAt)
	require.NoError(t, err)
	require.Equal(t, models.ExamStatusRejected, result.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryGradeAlreadyTerminal(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	gradedAt := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE pillar_exams").
		WithArgs("exam-1", models.ExamStatusApproved, nil, "adm-1", gradedAt, models.ExamStatusPending).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Grade(context.Background(), "exam-1", models.ExamStatusApproved, nil, "adm-1", gradedAt)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
