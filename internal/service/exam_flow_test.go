package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pillar-academy-api/internal/catalog"
	"github.com/noah-isme/pillar-academy-api/internal/models"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
)

func testQuiz() []catalog.Question {
	return []catalog.Question{
		{ID: "q1", Prompt: "one", Options: []string{"a", "b"}, Correct: 0},
		{ID: "q2", Prompt: "two", Options: []string{"a", "b"}, Correct: 1},
		{ID: "q3", Prompt: "three", Options: []string{"a", "b", "c"}, Correct: 2},
	}
}

func TestExamFlowHappyPath(t *testing.T) {
	quiz := testQuiz()
	attempt := NewExamAttempt("l1", 2)
	assert.Equal(t, models.AttemptStateIntro, attempt.State)

	require.NoError(t, AcknowledgeIntro(attempt))
	assert.Equal(t, models.AttemptStateQuiz, attempt.State)

	require.NoError(t, AnswerQuestion(attempt, quiz, 0))
	require.NoError(t, AnswerQuestion(attempt, quiz, 1))
	assert.Equal(t, models.AttemptStateQuiz, attempt.State)
	require.NoError(t, AnswerQuestion(attempt, quiz, 2))
	assert.Equal(t, models.AttemptStateWritten, attempt.State)

	essay := strings.Repeat("reflection ", 10)
	require.NoError(t, SetWrittenAnswer(attempt, essay, 50))
	require.NoError(t, StartSubmit(attempt))
	assert.Equal(t, models.AttemptStateSending, attempt.State)
	require.NoError(t, CompleteSubmit(attempt))
	assert.Equal(t, models.AttemptStateSuccess, attempt.State)
}

func TestExamFlowRejectsSkippedSteps(t *testing.T) {
	quiz := testQuiz()
	attempt := NewExamAttempt("l1", 2)

	err := AnswerQuestion(attempt, quiz, 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)

	err = StartSubmit(attempt)
	require.Error(t, err)

	err = SetWrittenAnswer(attempt, strings.Repeat("x", 60), 50)
	require.Error(t, err)
	assert.Equal(t, models.AttemptStateIntro, attempt.State)
}

func TestExamFlowFailedSubmitKeepsAnswers(t *testing.T) {
	quiz := testQuiz()
	attempt := NewExamAttempt("l1", 3)
	require.NoError(t, AcknowledgeIntro(attempt))
	for _, option := range []int{0, 1, 2} {
		require.NoError(t, AnswerQuestion(attempt, quiz, option))
	}
	essay := strings.Repeat("written answer ", 5)
	require.NoError(t, SetWrittenAnswer(attempt, essay, 50))
	require.NoError(t, StartSubmit(attempt))

	require.NoError(t, FailSubmit(attempt))
	assert.Equal(t, models.AttemptStateWritten, attempt.State)
	assert.Equal(t, []int{0, 1, 2}, attempt.Answers)
	assert.Equal(t, essay, attempt.WrittenAnswer)

	require.NoError(t, StartSubmit(attempt))
	require.NoError(t, CompleteSubmit(attempt))
}

func TestExamFlowWrittenTooShort(t *testing.T) {
	quiz := testQuiz()
	attempt := NewExamAttempt("l1", 4)
	require.NoError(t, AcknowledgeIntro(attempt))
	for range quiz {
		require.NoError(t, AnswerQuestion(attempt, quiz, 0))
	}

	err := SetWrittenAnswer(attempt, "too short", 50)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrWrittenTooShort.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.AttemptStateWritten, attempt.State)
}

func TestExamFlowWrittenMinimumCountsRunes(t *testing.T) {
	quiz := testQuiz()
	attempt := NewExamAttempt("l1", 4)
	require.NoError(t, AcknowledgeIntro(attempt))
	for range quiz {
		require.NoError(t, AnswerQuestion(attempt, quiz, 0))
	}

	// 25 cyrillic characters occupy 50 bytes but stay under the minimum.
	short := strings.Repeat("ж", 25)
	require.Greater(t, len(short), 49)
	err := SetWrittenAnswer(attempt, short, 50)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrWrittenTooShort.Code, appErrors.FromError(err).Code)

	require.NoError(t, SetWrittenAnswer(attempt, strings.Repeat("ж", 50), 50))
}

func TestExamFlowOptionOutOfRange(t *testing.T) {
	quiz := testQuiz()
	attempt := NewExamAttempt("l1", 1)
	require.NoError(t, AcknowledgeIntro(attempt))

	err := AnswerQuestion(attempt, quiz, 7)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, attempt.Answers)
}

func TestQuizScoreRounding(t *testing.T) {
	quiz := testQuiz()

	assert.Equal(t, 100, QuizScore(quiz, []int{0, 1, 2}))
	assert.Equal(t, 67, QuizScore(quiz, []int{0, 1, 0}))
	assert.Equal(t, 33, QuizScore(quiz, []int{0, 0, 0}))
	assert.Equal(t, 0, QuizScore(quiz, []int{1, 0, 0}))
	assert.Equal(t, 0, QuizScore(nil, nil))
}
