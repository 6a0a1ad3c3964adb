package persistence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var errRedisNotConfigured = errors.New("redis client not configured")

// ProgressPreviewStore keeps uncommitted progress values computed while a task
// is being edited. Values expire after ttl and are never written to the task row.
type ProgressPreviewStore struct {
	redis *Redis
	ttl   time.Duration
}

// NewProgressPreviewStore wraps the Redis client.
func NewProgressPreviewStore(r *Redis, ttl time.Duration) *ProgressPreviewStore {
	return &ProgressPreviewStore{redis: r, ttl: ttl}
}

func (s *ProgressPreviewStore) client() (*redis.Client, error) {
	if s == nil || s.redis == nil || s.redis.Client == nil {
		return nil, errRedisNotConfigured
	}
	return s.redis.Client, nil
}

func (s *ProgressPreviewStore) key(taskID string) string {
	return s.redis.Key("edit", "task", taskID, "progress")
}

// SaveProgress stores the preview for taskID.
func (s *ProgressPreviewStore) SaveProgress(ctx context.Context, taskID string, progress float64) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	return client.Set(ctx, s.key(taskID), strconv.FormatFloat(progress, 'f', -1, 64), s.ttl).Err()
}

// LoadProgress returns the preview for taskID; ok is false when none is pending.
func (s *ProgressPreviewStore) LoadProgress(ctx context.Context, taskID string) (float64, bool, error) {
	client, err := s.client()
	if err != nil {
		return 0, false, err
	}
	raw, err := client.Get(ctx, s.key(taskID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	progress, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, err
	}
	return progress, true, nil
}

// DiscardProgress drops a pending preview, e.g. once the task is saved or deleted.
func (s *ProgressPreviewStore) DiscardProgress(ctx context.Context, taskID string) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	return client.Del(ctx, s.key(taskID)).Err()
}
