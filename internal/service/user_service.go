package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/config"
	"github.com/prepmed/prepmed-backend/internal/model"
	"github.com/prepmed/prepmed-backend/internal/repository"
)

// leaderboardTTL bounds how stale the cached ranking can get.
const leaderboardTTL = 5 * time.Minute

// UserService handles profile reads, goals, bookmarks, and the leaderboard.
type UserService struct {
	users     *repository.UserRepository
	questions *repository.QuestionRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users *repository.UserRepository, questions *repository.QuestionRepository, rdb *redis.Client, log zerolog.Logger) *UserService {
	return &UserService{users: users, questions: questions, rdb: rdb, log: log}
}

// GetProfile returns the user's profile.
func (s *UserService) GetProfile(ctx context.Context, userID int) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateWeeklyGoal changes the questions-per-week target.
func (s *UserService) UpdateWeeklyGoal(ctx context.Context, userID int, goal int) error {
	return s.users.UpdateWeeklyGoal(ctx, userID, goal)
}

// AddBookmark saves a question. The question must exist.
func (s *UserService) AddBookmark(ctx context.Context, userID int, questionID string) error {
	if _, err := s.questions.GetByID(ctx, questionID); err != nil {
		return repository.ErrNotFound
	}
	return s.users.AddBookmark(ctx, userID, questionID)
}

// RemoveBookmark drops a saved question.
func (s *UserService) RemoveBookmark(ctx context.Context, userID int, questionID string) error {
	return s.users.RemoveBookmark(ctx, userID, questionID)
}

// ListBookmarks returns the user's saved questions, hydrated from the bank.
// A bookmark whose question has been deleted is silently skipped.
func (s *UserService) ListBookmarks(ctx context.Context, userID int) ([]model.Question, error) {
	ids, err := s.users.ListBookmarks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Question{}, nil
	}

	questions, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Restore bookmark order.
	byID := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// GetLeaderboard returns the top-20 ranking, cached in Redis.
func (s *UserService) GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	key := config.CacheKey.LeaderboardKey()

	raw, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var entries []model.LeaderboardEntry
		if jsonErr := json.Unmarshal([]byte(raw), &entries); jsonErr == nil {
			return entries, nil
		}
		// A cache entry that no longer parses just gets rebuilt.
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Leaderboard cache read failed")
	}

	entries, err := s.users.Leaderboard(ctx, 20)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := s.rdb.Set(ctx, key, data, leaderboardTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Leaderboard cache write failed")
		}
	}
	return entries, nil
}
