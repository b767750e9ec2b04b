package models

import "time"

// ExamStatus is the review state of a submission. PENDING submissions are
// awaiting an administrator; APPROVED and REJECTED are terminal.
type ExamStatus string

const (
	ExamStatusPending  ExamStatus = "PENDING"
	ExamStatusApproved ExamStatus = "APPROVED"
	ExamStatusRejected ExamStatus = "REJECTED"
)

// Terminal reports whether the status may no longer change.
func (s ExamStatus) Terminal() bool {
	return s == ExamStatusApproved || s == ExamStatusRejected
}

// ExamSubmission is one attempt at unlocking the next pillar. Multiple rows
// may exist per (learner, pillar); the most recently created one is
// authoritative for gating decisions.
type ExamSubmission struct {
	ID            string     `db:"id" json:"id"`
	LearnerID     string     `db:"learner_id" json:"learner_id"`
	PillarIndex   int        `db:"pillar_index" json:"pillar_index"`
	QuizScore     int        `db:"quiz_score" json:"quiz_score"`
	WrittenAnswer string     `db:"written_answer" json:"written_answer"`
	Status        ExamStatus `db:"status" json:"status"`
	AdminFeedback *string    `db:"admin_feedback" json:"admin_feedback,omitempty"`
	GradedBy      *string    `db:"graded_by" json:"graded_by,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	GradedAt      *time.Time `db:"graded_at" json:"graded_at,omitempty"`
}

// ExamFilter captures admin listing criteria.
type ExamFilter struct {
	LearnerID   string
	PillarIndex int
	Status      ExamStatus
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// GradeOutcome is the administrator's verdict on a pending submission.
type GradeOutcome string

const (
	GradeOutcomeApproved GradeOutcome = "APPROVED"
	GradeOutcomeRejected GradeOutcome = "REJECTED"
)

// AttemptState enumerates the exam wizard steps. The value is held in the
// attempt store, not in the database; only a completed submission persists.
type AttemptState string

const (
	AttemptStateIntro   AttemptState = "INTRO"
	AttemptStateQuiz    AttemptState = "QUIZ"
	AttemptStateWritten AttemptState = "WRITTEN"
	AttemptStateSending AttemptState = "SENDING"
	AttemptStateSuccess AttemptState = "SUCCESS"
)

// ExamAttempt is the explicit finite-state value for one in-flight exam
// wizard session. Answers and written text survive submit retries.
type ExamAttempt struct {
	LearnerID     string       `json:"learner_id"`
	PillarIndex   int          `json:"pillar_index"`
	State         AttemptState `json:"state"`
	QuestionIndex int          `json:"question_index"`
	Answers       []int        `json:"answers"`
	WrittenAnswer string       `json:"written_answer"`
	StartedAt     time.Time    `json:"started_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// NextMessage hints what the interface should show after a successful
// submission: an upgrade call-to-action on the free pillar-1 funnel,
// otherwise the standard grading wait.
type NextMessage string

const (
	NextMessageUpgrade      NextMessage = "UPGRADE_CTA"
	NextMessageAwaitGrading NextMessage = "AWAIT_GRADING_24H"
)

// StartAttemptRequest opens the exam wizard for a pillar.
type StartAttemptRequest struct {
	PillarIndex int `json:"pillar_index" validate:"required,min=1,max=9"`
}

// AnswerRequest records one selected option in the quiz step.
type AnswerRequest struct {
	Option int `json:"option"`
}

// WrittenRequest sets the free-text reflection for the written step.
type WrittenRequest struct {
	Text string `json:"text" validate:"required"`
}

// GradeRequest is the administrator's verdict payload.
type GradeRequest struct {
	Outcome  GradeOutcome `json:"outcome" validate:"required"`
	Feedback *string      `json:"feedback,omitempty"`
}
