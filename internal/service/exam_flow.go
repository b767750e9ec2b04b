package service

import (
	"time"
	"unicode/utf8"

	"github.com/noah-isme/pillar-academy-api/internal/catalog"
	"github.com/noah-isme/pillar-academy-api/internal/models"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
)

// The exam wizard is a small state machine:
//
//	INTRO -> QUIZ -> WRITTEN -> SENDING -> SUCCESS
//	                    ^          |
//	                    +---failed-+
//
// Each transition below validates the current state explicitly so a stale or
// replayed request can never skip a step. A failed submit returns to WRITTEN
// with the learner's answers intact.

// NewExamAttempt starts a wizard session at the intro step.
func NewExamAttempt(learnerID string, pillarIndex int) *models.ExamAttempt {
	now := time.Now().UTC()
	return &models.ExamAttempt{
		LearnerID:   learnerID,
		PillarIndex: pillarIndex,
		State:       models.AttemptStateIntro,
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

// AcknowledgeIntro moves the attempt from the intro to the first quiz
// question.
func AcknowledgeIntro(attempt *models.ExamAttempt) error {
	if attempt.State != models.AttemptStateIntro {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "exam already started")
	}
	attempt.State = models.AttemptStateQuiz
	attempt.QuestionIndex = 0
	attempt.Answers = attempt.Answers[:0]
	attempt.UpdatedAt = time.Now().UTC()
	return nil
}

// AnswerQuestion records the selected option for the current question and
// advances. After the last question the attempt moves to the written step.
func AnswerQuestion(attempt *models.ExamAttempt, quiz []catalog.Question, option int) error {
	if attempt.State != models.AttemptStateQuiz {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "attempt is not on a quiz question")
	}
	if attempt.QuestionIndex < 0 || attempt.QuestionIndex >= len(quiz) {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "no question remaining")
	}
	if option < 0 || option >= len(quiz[attempt.QuestionIndex].Options) {
		return appErrors.Clone(appErrors.ErrValidation, "selected option out of range")
	}

	attempt.Answers = append(attempt.Answers, option)
	attempt.QuestionIndex++
	if attempt.QuestionIndex >= len(quiz) {
		attempt.State = models.AttemptStateWritten
	}
	attempt.UpdatedAt = time.Now().UTC()
	return nil
}

// SetWrittenAnswer stores the essay text. The attempt stays on the written
// step until submission starts; rewriting the text is allowed.
func SetWrittenAnswer(attempt *models.ExamAttempt, text string, minLength int) error {
	if attempt.State != models.AttemptStateWritten {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "attempt is not on the written step")
	}
	// Character minimum, not bytes: multibyte answers count by rune.
	if utf8.RuneCountInString(text) < minLength {
		return appErrors.Clone(appErrors.ErrWrittenTooShort, "")
	}
	attempt.WrittenAnswer = text
	attempt.UpdatedAt = time.Now().UTC()
	return nil
}

// StartSubmit locks the attempt while the submission is persisted.
func StartSubmit(attempt *models.ExamAttempt) error {
	if attempt.State != models.AttemptStateWritten {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "attempt is not ready to submit")
	}
	if attempt.WrittenAnswer == "" {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "written answer missing")
	}
	attempt.State = models.AttemptStateSending
	attempt.UpdatedAt = time.Now().UTC()
	return nil
}

// CompleteSubmit marks the attempt as submitted.
func CompleteSubmit(attempt *models.ExamAttempt) error {
	if attempt.State != models.AttemptStateSending {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "attempt is not submitting")
	}
	attempt.State = models.AttemptStateSuccess
	attempt.UpdatedAt = time.Now().UTC()
	return nil
}

// FailSubmit returns a failed submission to the written step, keeping the
// learner's quiz answers and essay so nothing is retyped.
func FailSubmit(attempt *models.ExamAttempt) error {
	if attempt.State != models.AttemptStateSending {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "attempt is not submitting")
	}
	attempt.State = models.AttemptStateWritten
	attempt.UpdatedAt = time.Now().UTC()
	return nil
}

// QuizScore computes the 0..100 score for the recorded answers, rounded to
// the nearest integer.
func QuizScore(quiz []catalog.Question, answers []int) int {
	if len(quiz) == 0 {
		return 0
	}
	correct := 0
	for i, q := range quiz {
		if i < len(answers) && answers[i] == q.Correct {
			correct++
		}
	}
	return (100*correct + len(quiz)/2) / len(quiz)
}
