package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pillar-academy-api/internal/models"
)

// ExamRepository handles persistence of exam submissions. Submissions are an
// append-only audit log; grading is the only mutation and happens exactly
// once per row.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

const examColumns = `id, learner_id, pillar_index, quiz_score, written_answer, status, admin_feedback, graded_by, created_at, graded_at`

// Create persists a new pending submission.
func (r *ExamRepository) Create(ctx context.Context, submission *models.ExamSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now().UTC()
	}
	if submission.Status == "" {
		submission.Status = models.ExamStatusPending
	}
	const query = `INSERT INTO pillar_exams (id, learner_id, pillar_index, quiz_score, written_answer, status, admin_feedback, graded_by, created_at, graded_at)
VALUES (:id, :learner_id, :pillar_index, :quiz_score, :written_answer, :status, :admin_feedback, :graded_by, :created_at, :graded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create exam submission: %w", err)
	}
	return nil
}

// FindByID returns a submission by its ID.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.ExamSubmission, error) {
	query := fmt.Sprintf(`SELECT %s FROM pillar_exams WHERE id = $1`, examColumns)
	var submission models.ExamSubmission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		return nil, err
	}
	return &submission, nil
}

// FindLatest returns the most recently created submission for the
// (learner, pillar) pair. The latest row is authoritative for gating.
func (r *ExamRepository) FindLatest(ctx context.Context, learnerID string, pillarIndex int) (*models.ExamSubmission, error) {
	query := fmt.Sprintf(`SELECT %s FROM pillar_exams WHERE learner_id = $1 AND pillar_index = $2 ORDER BY created_at DESC LIMIT 1`, examColumns)
	var submission models.ExamSubmission
	if err := r.db.GetContext(ctx, &submission, query, learnerID, pillarIndex); err != nil {
		return nil, err
	}
	return &submission, nil
}

// LatestByLearner returns the latest submission per pillar for one learner.
func (r *ExamRepository) LatestByLearner(ctx context.Context, learnerID string) ([]models.ExamSubmission, error) {
	query := fmt.Sprintf(`SELECT DISTINCT ON (pillar_index) %s FROM pillar_exams WHERE learner_id = $1 ORDER BY pillar_index, created_at DESC`, examColumns)
	var submissions []models.ExamSubmission
	if err := r.db.SelectContext(ctx, &submissions, query, learnerID); err != nil {
		return nil, fmt.Errorf("list latest submissions: %w", err)
	}
	return submissions, nil
}

// List returns submissions filtered by the provided criteria.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.ExamSubmission, int, error) {
	var conditions []string
	var args []interface{}

	if filter.LearnerID != "" {
		conditions = append(conditions, fmt.Sprintf("learner_id = $%d", len(args)+1))
		args = append(args, filter.LearnerID)
	}
	if filter.PillarIndex > 0 {
		conditions = append(conditions, fmt.Sprintf("pillar_index = $%d", len(args)+1))
		args = append(args, filter.PillarIndex)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at":   "created_at",
		"graded_at":    "graded_at",
		"pillar_index": "pillar_index",
		"quiz_score":   "quiz_score",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM pillar_exams%s ORDER BY %s %s LIMIT %d OFFSET %d`, examColumns, clause, orderBy, order, size, offset)
	var submissions []models.ExamSubmission
	if err := r.db.SelectContext(ctx, &submissions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exam submissions: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM pillar_exams" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count exam submissions: %w", err)
	}
	return submissions, total, nil
}

// Grade applies the administrator's verdict. The status update and the
// frontier raise on approval run in a single transaction so a graded exam can
// never leave the learner's approved pillar behind. The WHERE status guard
// makes double grading a no-op reported via sql.ErrNoRows.
func (r *ExamRepository) Grade(ctx context.Context, id string, status models.ExamStatus, feedback *string, gradedBy string, gradedAt time.Time) (*models.ExamSubmission, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin grade transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	updateQuery := fmt.Sprintf(`UPDATE pillar_exams
SET status = $2, admin_feedback = $3, graded_by = $4, graded_at = $5
WHERE id = $1 AND status = $6
RETURNING %s`, examColumns)

	var graded models.ExamSubmission
	if err := tx.GetContext(ctx, &graded, updateQuery, id, status, feedback, gradedBy, gradedAt, models.ExamStatusPending); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("grade exam submission: %w", err)
	}

	if status == models.ExamStatusApproved {
		const raiseQuery = `UPDATE users
SET approved_pillar = GREATEST(approved_pillar, $2), updated_at = $3
WHERE id = $1`
		if _, err := tx.ExecContext(ctx, raiseQuery, graded.LearnerID, graded.PillarIndex+1, gradedAt); err != nil {
			return nil, fmt.Errorf("raise approved pillar: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit grade transaction: %w", err)
	}
	return &graded, nil
}
