package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/derslik/derslik-backend/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	AuditBatchSize    = 100
	AuditBatchTimeout = 2 * time.Second
	AuditPollTimeout  = 1 * time.Second
)

// AuditWorker drains the audit event queue and persists events into the
// audit_log table in batches. Losing an event on a hard crash is acceptable;
// slowing down grading is not, which is why this runs off a queue instead
// of inline.
type AuditWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewAuditWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "audit_worker").Logger(),
	}
}

type auditPayload struct {
	ActorID  int             `json:"actor_id"`
	Action   string          `json:"action"`
	Entity   string          `json:"entity"`
	EntityID string          `json:"entity_id"`
	Detail   json.RawMessage `json:"detail,omitempty"`
	At       time.Time       `json:"at"`
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	batch := make([]*auditPayload, 0, AuditBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= AuditBatchSize || time.Since(lastFlush) >= AuditBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AuditPollTimeout, config.WorkerKey.AuditEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p auditPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert wrapper
// ----------------------------------------------------------------

func (w *AuditWorker) flushSafe(ctx context.Context, batch []*auditPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsertEvents(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk audit insert failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed, requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.AuditEventsQueue, raw)
			}
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL INSERT using UNNEST
// ----------------------------------------------------------------

func (w *AuditWorker) bulkInsertEvents(ctx context.Context, batch []*auditPayload) error {
	n := len(batch)

	actors := make([]int, 0, n)
	actions := make([]string, 0, n)
	entities := make([]string, 0, n)
	entityIDs := make([]string, 0, n)
	details := make([][]byte, 0, n)
	ats := make([]time.Time, 0, n)

	for _, p := range batch {
		detail := p.Detail
		if detail == nil {
			detail = json.RawMessage(`{}`)
		}
		actors = append(actors, p.ActorID)
		actions = append(actions, p.Action)
		entities = append(entities, p.Entity)
		entityIDs = append(entityIDs, p.EntityID)
		details = append(details, detail)
		ats = append(ats, p.At)
	}

	query := `
		INSERT INTO audit_log (actor_id, action, entity, entity_id, detail, created_at)
		SELECT u.actor_id, u.action, u.entity, u.entity_id, u.detail, u.created_at
		FROM UNNEST(
			$1::int[],
			$2::text[],
			$3::text[],
			$4::text[],
			$5::jsonb[],
			$6::timestamptz[]
		) AS u (actor_id, action, entity, entity_id, detail, created_at)
	`

	_, err := w.pool.Exec(ctx, query, actors, actions, entities, entityIDs, details, ats)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single insert
// ----------------------------------------------------------------

func (w *AuditWorker) persistSingle(ctx context.Context, p *auditPayload) error {
	detail := p.Detail
	if detail == nil {
		detail = json.RawMessage(`{}`)
	}

	_, err := w.pool.Exec(ctx,
		`INSERT INTO audit_log (actor_id, action, entity, entity_id, detail, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ActorID, p.Action, p.Entity, p.EntityID, detail, p.At,
	)

	return err
}
