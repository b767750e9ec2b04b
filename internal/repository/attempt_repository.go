package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/pillar-academy-api/internal/models"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
)

// AttemptRepository stores in-flight exam wizard sessions in Redis. Keeping
// the attempt server-side means quiz answers and written text survive a
// failed submission and a page reload.
type AttemptRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAttemptRepository constructs the repository.
func NewAttemptRepository(client *redis.Client, ttl time.Duration) *AttemptRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AttemptRepository{client: client, ttl: ttl}
}

func attemptKey(learnerID string, pillarIndex int) string {
	return fmt.Sprintf("exam:attempt:%s:%d", learnerID, pillarIndex)
}

// Get loads the current attempt, or ErrCacheMiss when none exists.
func (r *AttemptRepository) Get(ctx context.Context, learnerID string, pillarIndex int) (*models.ExamAttempt, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, attemptKey(learnerID, pillarIndex)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get attempt: %w", err)
	}
	var attempt models.ExamAttempt
	if err := json.Unmarshal(raw, &attempt); err != nil {
		return nil, fmt.Errorf("unmarshal attempt: %w", err)
	}
	return &attempt, nil
}

// Save writes the attempt back, refreshing its TTL.
func (r *AttemptRepository) Save(ctx context.Context, attempt *models.ExamAttempt) error {
	if r.client == nil {
		return fmt.Errorf("attempt store unavailable")
	}
	payload, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	key := attemptKey(attempt.LearnerID, attempt.PillarIndex)
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set attempt: %w", err)
	}
	return nil
}

// Delete discards the attempt, typically after a successful submission.
func (r *AttemptRepository) Delete(ctx context.Context, learnerID string, pillarIndex int) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, attemptKey(learnerID, pillarIndex)).Err(); err != nil {
		return fmt.Errorf("redis delete attempt: %w", err)
	}
	return nil
}
