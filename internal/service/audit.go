package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/derslik/derslik-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AuditLogger queues grading actions onto a Redis list consumed by the
// audit worker. Recording is best-effort: queue failures are logged and
// swallowed so they can never fail the grading operation itself.
type AuditLogger struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewAuditLogger creates a new AuditLogger.
func NewAuditLogger(rdb *redis.Client, log zerolog.Logger) *AuditLogger {
	return &AuditLogger{
		rdb: rdb,
		log: log.With().Str("component", "audit_logger").Logger(),
	}
}

// queuedAuditEvent is the wire form pushed to the worker queue.
type queuedAuditEvent struct {
	AuditEvent
	At time.Time `json:"at"`
}

// Record queues one audit event.
func (a *AuditLogger) Record(ctx context.Context, ev AuditEvent) {
	raw, err := json.Marshal(queuedAuditEvent{AuditEvent: ev, At: time.Now().UTC()})
	if err != nil {
		a.log.Error().Err(err).Str("action", ev.Action).Msg("Failed to marshal audit event")
		return
	}

	if err := a.rdb.RPush(ctx, config.WorkerKey.AuditEventsQueue, raw).Err(); err != nil {
		// Keep the event in the log stream at least.
		a.log.Warn().Err(err).
			Str("action", ev.Action).
			Str("entity", ev.Entity).
			Str("entity_id", ev.EntityID).
			Int("actor_id", ev.ActorID).
			Msg("Failed to queue audit event")
	}
}
