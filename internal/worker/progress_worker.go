package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/tutorpaes/tutor-backend/internal/config"
	"github.com/tutorpaes/tutor-backend/internal/model"
)

const (
	ProgressBatchSize    = 50
	ProgressBatchTimeout = 2 * time.Second
	ProgressPollTimeout  = 1 * time.Second
)

// ProgressStore applies completion events to the user_progress projection.
type ProgressStore interface {
	BulkApply(ctx context.Context, events []*model.ProgressEvent) error
	Apply(ctx context.Context, e *model.ProgressEvent) error
}

// ProgressQueue publishes completion events onto the Redis progress queue.
type ProgressQueue struct {
	rdb *redis.Client
}

func NewProgressQueue(rdb *redis.Client) *ProgressQueue {
	return &ProgressQueue{rdb: rdb}
}

func (q *ProgressQueue) Publish(ctx context.Context, e *model.ProgressEvent) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistProgressQueue, raw).Err()
}

// ProgressWorker drains the progress queue into Postgres in batches.
type ProgressWorker struct {
	store ProgressStore
	rdb   *redis.Client
	log   zerolog.Logger
}

func NewProgressWorker(store ProgressStore, rdb *redis.Client, log zerolog.Logger) *ProgressWorker {
	return &ProgressWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "progress_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ProgressWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ProgressWorker started")

	batch := make([]*model.ProgressEvent, 0, ProgressBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ProgressBatchSize || time.Since(lastFlush) >= ProgressBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ProgressPollTimeout, config.WorkerKey.PersistProgressQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var e model.ProgressEvent
			if err := json.Unmarshal([]byte(item[1]), &e); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &e)
		}
	}
}

// ----------------------------------------------------------------
// Batch apply with per-event fallback
// ----------------------------------------------------------------

func (w *ProgressWorker) flushSafe(ctx context.Context, batch []*model.ProgressEvent) {
	if len(batch) == 0 {
		return
	}

	if err := w.store.BulkApply(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("bulk progress upsert failed, using fallback")

		for _, e := range batch {
			if err := w.store.Apply(ctx, e); err != nil {
				w.log.Error().Err(err).Int64("attempt_id", e.AttemptID).Msg("progress upsert failed, requeueing")
				raw, _ := json.Marshal(e)
				w.rdb.RPush(ctx, config.WorkerKey.PersistProgressQueue, raw)
			}
		}
		return
	}

	w.log.Debug().Int("size", len(batch)).Msg("progress batch applied")
}
