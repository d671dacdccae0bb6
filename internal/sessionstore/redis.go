package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/config"
	"github.com/prepmed/prepmed-backend/internal/model"
	"github.com/prepmed/prepmed-backend/internal/quiz"
)

// SnapshotSource is the durable fallback behind Redis. When Redis has no
// state for a user (evicted, flushed, or a fresh node) the store consults
// it and writes the result back so the next load is fast.
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context, userID string) (*quiz.PersistedState, error)
}

// Redis persists one user's quiz state as a set of logical keys, one per
// concern, so partial corruption of a single value degrades to a default
// for that field instead of destroying the whole session.
type Redis struct {
	rdb      *redis.Client
	userID   string
	ttl      time.Duration
	fallback SnapshotSource
	log      zerolog.Logger
}

// NewRedis builds a store bound to one user. fallback may be nil.
func NewRedis(rdb *redis.Client, userID string, ttl time.Duration, fallback SnapshotSource, log zerolog.Logger) *Redis {
	return &Redis{
		rdb:      rdb,
		userID:   userID,
		ttl:      ttl,
		fallback: fallback,
		log:      log.With().Str("component", "session_store").Str("user_id", userID).Logger(),
	}
}

func (s *Redis) keys() []string {
	return []string{
		config.CacheKey.QuizActiveKey(s.userID),
		config.CacheKey.QuizQuestionsKey(s.userID),
		config.CacheKey.QuizAnswersKey(s.userID),
		config.CacheKey.QuizMarkingsKey(s.userID),
		config.CacheKey.QuizTimerKey(s.userID),
		config.CacheKey.QuizInitialTimeKey(s.userID),
		config.CacheKey.QuizOptionsKey(s.userID),
		config.CacheKey.QuizIndexKey(s.userID),
		config.CacheKey.QuizSavedKey(s.userID),
	}
}

// Load reconstructs the persisted state from Redis. When Redis has nothing
// it falls back to the snapshot source and self-heals Redis from the hit.
func (s *Redis) Load(ctx context.Context) (*quiz.PersistedState, error) {
	vals, err := s.rdb.MGet(ctx, s.keys()...).Result()
	if err != nil {
		return nil, err
	}

	empty := true
	for _, v := range vals {
		if v != nil {
			empty = false
			break
		}
	}
	if empty {
		if s.fallback == nil {
			return nil, nil
		}
		ps, err := s.fallback.LoadSnapshot(ctx, s.userID)
		if err != nil || ps == nil {
			return nil, err
		}
		// Self-heal: put it back in Redis so the next load is fast.
		if err := s.Save(ctx, ps); err != nil {
			s.log.Warn().Err(err).Msg("Failed to heal session cache from snapshot")
		} else {
			s.log.Info().Msg("Session restored from durable snapshot")
		}
		return ps, nil
	}

	ps := &quiz.PersistedState{
		Active: asString(vals[0]) == "1",
	}

	if raw := asString(vals[8]); raw != "" {
		var saved quiz.Session
		if err := json.Unmarshal([]byte(raw), &saved); err != nil {
			s.log.Warn().Err(err).Msg("Unreadable saved-session slot, dropping it")
		} else {
			ps.Saved = &saved
		}
	}

	// The live session is assembled field by field; a corrupt field falls
	// back to its zero value and the engine decides whether what remains
	// is usable.
	if asString(vals[1]) != "" || ps.Active {
		sess := &quiz.Session{Ledger: quiz.NewLedger(nil)}

		if raw := asString(vals[1]); raw != "" {
			var qs []model.Question
			if err := json.Unmarshal([]byte(raw), &qs); err != nil {
				s.log.Warn().Err(err).Msg("Unreadable question snapshot")
			} else {
				sess.Questions = qs
			}
		}
		if raw := asString(vals[2]); raw != "" {
			if err := json.Unmarshal([]byte(raw), &sess.Ledger.Answers); err != nil {
				s.log.Warn().Err(err).Msg("Unreadable answer map, resetting")
				sess.Ledger.Answers = map[string]int{}
			}
		}
		if raw := asString(vals[3]); raw != "" {
			if err := json.Unmarshal([]byte(raw), &sess.Ledger.Markings); err != nil {
				s.log.Warn().Err(err).Msg("Unreadable marking map, resetting")
				sess.Ledger.Markings = map[string]quiz.Marking{}
			}
		}
		sess.TimeRemaining = asInt(vals[4])
		sess.TimeInitial = asInt(vals[5])
		if raw := asString(vals[6]); raw != "" {
			if err := json.Unmarshal([]byte(raw), &sess.Config); err != nil {
				s.log.Warn().Err(err).Msg("Unreadable session options, using defaults")
			}
		}
		sess.Cursor = asInt(vals[7])

		ps.Session = sess
	}

	return ps, nil
}

// Save writes every logical key in one pipeline. All keys share the TTL so
// an abandoned session eventually expires as a unit.
func (s *Redis) Save(ctx context.Context, ps *quiz.PersistedState) error {
	if ps == nil {
		return errors.New("nil state")
	}

	questions, answers, markings, options := "", "", "", ""
	timer, initial, index := 0, 0, 0
	if ps.Session != nil {
		b, err := json.Marshal(ps.Session.Questions)
		if err != nil {
			return err
		}
		questions = string(b)
		if ps.Session.Ledger != nil {
			if b, err = json.Marshal(ps.Session.Ledger.Answers); err != nil {
				return err
			}
			answers = string(b)
			if b, err = json.Marshal(ps.Session.Ledger.Markings); err != nil {
				return err
			}
			markings = string(b)
		}
		if b, err = json.Marshal(ps.Session.Config); err != nil {
			return err
		}
		options = string(b)
		timer = ps.Session.TimeRemaining
		initial = ps.Session.TimeInitial
		index = ps.Session.Cursor
	}

	saved := ""
	if ps.Saved != nil {
		b, err := json.Marshal(ps.Saved)
		if err != nil {
			return err
		}
		saved = string(b)
	}

	active := "0"
	if ps.Active {
		active = "1"
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.QuizActiveKey(s.userID), active, s.ttl)
	pipe.Set(ctx, config.CacheKey.QuizQuestionsKey(s.userID), questions, s.ttl)
	pipe.Set(ctx, config.CacheKey.QuizAnswersKey(s.userID), answers, s.ttl)
	pipe.Set(ctx, config.CacheKey.QuizMarkingsKey(s.userID), markings, s.ttl)
	pipe.Set(ctx, config.CacheKey.QuizTimerKey(s.userID), timer, s.ttl)
	pipe.Set(ctx, config.CacheKey.QuizInitialTimeKey(s.userID), initial, s.ttl)
	pipe.Set(ctx, config.CacheKey.QuizOptionsKey(s.userID), options, s.ttl)
	pipe.Set(ctx, config.CacheKey.QuizIndexKey(s.userID), index, s.ttl)
	pipe.Set(ctx, config.CacheKey.QuizSavedKey(s.userID), saved, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Clear removes every logical key for the user.
func (s *Redis) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, s.keys()...).Err()
}

func asString(v interface{}) string {
	str, _ := v.(string)
	return str
}

func asInt(v interface{}) int {
	n, err := strconv.Atoi(asString(v))
	if err != nil {
		return 0
	}
	return n
}
