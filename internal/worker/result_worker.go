package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/config"
	"github.com/prepmed/prepmed-backend/internal/model"
	"github.com/prepmed/prepmed-backend/internal/repository"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker drains graded test results from the Redis queue into
// PostgreSQL and keeps the users' aggregate counters in step.
type ResultWorker struct {
	results *repository.ResultRepository
	users   *repository.UserRepository
	rdb     *redis.Client
	log     zerolog.Logger
}

// NewResultWorker creates a new ResultWorker.
func NewResultWorker(results *repository.ResultRepository, users *repository.UserRepository, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		results: results,
		users:   users,
		rdb:     rdb,
		log:     log.With().Str("component", "result_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled, then flushes what is
// left in the batch.
func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]model.TestResult, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

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
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var res model.TestResult
			if err := json.Unmarshal([]byte(item[1]), &res); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, res)
		}
	}
}

// flushSafe bulk-inserts the batch; on failure it retries row by row and
// requeues anything that still will not persist.
func (w *ResultWorker) flushSafe(ctx context.Context, batch []model.TestResult) {
	if len(batch) == 0 {
		return
	}

	if err := w.results.BulkCreate(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk result insert failed, using fallback")

		for i := range batch {
			if err := w.results.Create(ctx, &batch[i]); err != nil {
				w.log.Error().Err(err).Msg("single insert failed, requeueing")
				raw, _ := json.Marshal(batch[i])
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
				continue
			}
			w.bumpUserStats(ctx, &batch[i])
		}
		return
	}

	for i := range batch {
		w.bumpUserStats(ctx, &batch[i])
	}
}

func (w *ResultWorker) bumpUserStats(ctx context.Context, res *model.TestResult) {
	minutes := res.TimeSpentSeconds / 60
	if err := w.users.RecordCompletedTest(ctx, res.UserID, res.Attempted, minutes); err != nil {
		w.log.Warn().Err(err).Int("user_id", res.UserID).Msg("Failed to update user aggregates")
	}
}
