package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/config"
	"github.com/prepmed/prepmed-backend/internal/model"
	"github.com/prepmed/prepmed-backend/internal/repository"
)

// ErrAlreadyAnswered is returned when a user answers the daily question twice.
var ErrAlreadyAnswered = errors.New("daily question already answered")

// DailyMCQ is the question of the day with the user's attempt state.
type DailyMCQ struct {
	Question model.Question `json:"question"`
	Date     string         `json:"date"`
	Answered bool           `json:"answered"`
	// Chosen is the user's 1-based pick when Answered.
	Chosen  int  `json:"chosen,omitempty"`
	Correct bool `json:"correct,omitempty"`
}

// DailyService hands out one random question per user per day and records
// the single attempt it allows.
type DailyService struct {
	rdb       *redis.Client
	questions *repository.QuestionRepository
	log       zerolog.Logger
}

// NewDailyService creates a new DailyService.
func NewDailyService(rdb *redis.Client, questions *repository.QuestionRepository, log zerolog.Logger) *DailyService {
	return &DailyService{
		rdb:       rdb,
		questions: questions,
		log:       log.With().Str("component", "daily_service").Logger(),
	}
}

// GetDaily returns today's question for the user, assigning one on first
// call. The assignment is cached until the day rolls over.
func (s *DailyService) GetDaily(ctx context.Context, userID int) (*DailyMCQ, error) {
	uid := strconv.Itoa(userID)
	today := time.Now().Format(time.DateOnly)
	key := config.CacheKey.DailyMCQKey(uid, today)

	var q model.Question
	raw, err := s.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, fmt.Errorf("cached daily question: %w", err)
		}
	case errors.Is(err, redis.Nil):
		picked, err := s.questions.GetRandom(ctx)
		if err != nil {
			return nil, err
		}
		q = *picked
		data, _ := json.Marshal(q)
		if err := s.rdb.Set(ctx, key, data, untilTomorrow()).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache daily question")
		}
	default:
		return nil, err
	}

	daily := &DailyMCQ{Question: q, Date: today}
	if attempt, err := s.rdb.Get(ctx, config.CacheKey.DailyMCQAnsweredKey(uid, today)).Result(); err == nil {
		daily.Answered = true
		daily.Chosen, _ = strconv.Atoi(attempt)
		daily.Correct = daily.Chosen == q.CorrectOption
	}
	return daily, nil
}

// AnswerDaily records the user's single attempt and reports correctness.
func (s *DailyService) AnswerDaily(ctx context.Context, userID int, chosen int) (*DailyMCQ, error) {
	daily, err := s.GetDaily(ctx, userID)
	if err != nil {
		return nil, err
	}
	if daily.Answered {
		return nil, ErrAlreadyAnswered
	}

	uid := strconv.Itoa(userID)
	key := config.CacheKey.DailyMCQAnsweredKey(uid, daily.Date)
	if err := s.rdb.Set(ctx, key, chosen, untilTomorrow()).Err(); err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	daily.Answered = true
	daily.Chosen = chosen
	daily.Correct = chosen == daily.Question.CorrectOption
	return daily, nil
}

// untilTomorrow returns the TTL to local midnight, floored at a minute so a
// request near the rollover still gets a usable key.
func untilTomorrow() time.Duration {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	ttl := time.Until(midnight)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}
