package service

import (
	"context"
	"encoding/json"

	"github.com/derslik/derslik-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisResultsPublisher broadcasts submission results over Redis Pub/Sub so
// the live monitor WebSocket can stream them to teachers. Publishing is
// fire-and-forget; a dead Redis never blocks a submission.
type RedisResultsPublisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisResultsPublisher creates a new RedisResultsPublisher.
func NewRedisResultsPublisher(rdb *redis.Client, log zerolog.Logger) *RedisResultsPublisher {
	return &RedisResultsPublisher{
		rdb: rdb,
		log: log.With().Str("component", "results_publisher").Logger(),
	}
}

// PublishResult broadcasts one payload on the exam's results channel.
func (p *RedisResultsPublisher) PublishResult(ctx context.Context, examID string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.log.Error().Err(err).Str("exam_id", examID).Msg("Failed to marshal result event")
		return
	}
	if err := p.rdb.Publish(ctx, config.CacheKey.ExamResultsChannel(examID), raw).Err(); err != nil {
		p.log.Warn().Err(err).Str("exam_id", examID).Msg("Failed to publish result event")
	}
}
