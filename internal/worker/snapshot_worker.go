package worker

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/config"
	"github.com/prepmed/prepmed-backend/internal/repository"
	"github.com/prepmed/prepmed-backend/internal/sessionstore"
)

const (
	SnapshotBatchSize    = 100
	SnapshotBatchTimeout = 5 * time.Second
	SnapshotPollTimeout  = 1 * time.Second
)

// SnapshotWorker copies users' live session state from Redis into the
// durable snapshot table. Jobs carry only a user ID; the worker always
// reads the freshest state, so duplicate jobs in a batch collapse to one
// write.
type SnapshotWorker struct {
	cfg       *config.Config
	snapshots *repository.SnapshotRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewSnapshotWorker creates a new SnapshotWorker.
func NewSnapshotWorker(cfg *config.Config, snapshots *repository.SnapshotRepository, rdb *redis.Client, log zerolog.Logger) *SnapshotWorker {
	return &SnapshotWorker{
		cfg:       cfg,
		snapshots: snapshots,
		rdb:       rdb,
		log:       log.With().Str("component", "snapshot_worker").Logger(),
	}
}

type snapshotJob struct {
	UserID int `json:"user_id"`
}

// Start runs the worker loop until ctx is cancelled, then flushes the
// pending user set.
func (w *SnapshotWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SnapshotWorker started")

	pending := make(map[int]struct{}, SnapshotBatchSize)
	lastFlush := time.Now()

	for {
		if len(pending) > 0 &&
			(len(pending) >= SnapshotBatchSize || time.Since(lastFlush) >= SnapshotBatchTimeout) {

			w.flush(ctx, pending)
			pending = make(map[int]struct{}, SnapshotBatchSize)
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining snapshots...")
			w.flush(context.Background(), pending)
			return

		default:
			item, err := w.rdb.BLPop(ctx, SnapshotPollTimeout, config.WorkerKey.PersistSnapshotsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var job snapshotJob
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			pending[job.UserID] = struct{}{}
		}
	}
}

func (w *SnapshotWorker) flush(ctx context.Context, pending map[int]struct{}) {
	for userID := range pending {
		uid := strconv.Itoa(userID)
		store := sessionstore.NewRedis(w.rdb, uid, w.cfg.SessionTTL, nil, w.log)

		state, err := store.Load(ctx)
		if err != nil {
			w.log.Warn().Err(err).Int("user_id", userID).Msg("Failed to read session state")
			continue
		}
		if state == nil {
			// Session was discarded between enqueue and flush.
			if err := w.snapshots.Delete(ctx, uid); err != nil {
				w.log.Warn().Err(err).Int("user_id", userID).Msg("Failed to delete snapshot")
			}
			continue
		}

		if err := w.snapshots.Upsert(ctx, uid, state); err != nil {
			w.log.Warn().Err(err).Int("user_id", userID).Msg("Failed to persist snapshot")
		}
	}
}
