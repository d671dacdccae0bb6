package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizActiveKey returns the cache key marking whether a user's quiz
// session is live.
func (r *CacheKeyStruct) QuizActiveKey(userID string) string {
	return fmt.Sprintf("user:%s:quiz_active", userID)
}

// QuizQuestionsKey returns the cache key for a user's question snapshot.
func (r *CacheKeyStruct) QuizQuestionsKey(userID string) string {
	return fmt.Sprintf("user:%s:quiz_questions", userID)
}

// QuizAnswersKey returns the cache key for a user's answer map.
func (r *CacheKeyStruct) QuizAnswersKey(userID string) string {
	return fmt.Sprintf("user:%s:quiz_answers", userID)
}

// QuizMarkingsKey returns the cache key for a user's review-flag map.
func (r *CacheKeyStruct) QuizMarkingsKey(userID string) string {
	return fmt.Sprintf("user:%s:quiz_markings", userID)
}

// QuizTimerKey returns the cache key for a user's remaining seconds.
func (r *CacheKeyStruct) QuizTimerKey(userID string) string {
	return fmt.Sprintf("user:%s:quiz_timer", userID)
}

// QuizInitialTimeKey returns the cache key for a user's starting duration.
func (r *CacheKeyStruct) QuizInitialTimeKey(userID string) string {
	return fmt.Sprintf("user:%s:quiz_initial_time", userID)
}

// QuizOptionsKey returns the cache key for a user's session configuration.
func (r *CacheKeyStruct) QuizOptionsKey(userID string) string {
	return fmt.Sprintf("user:%s:quiz_options", userID)
}

// QuizIndexKey returns the cache key for a user's current question index.
func (r *CacheKeyStruct) QuizIndexKey(userID string) string {
	return fmt.Sprintf("user:%s:quiz_index", userID)
}

// QuizSavedKey returns the cache key for a user's paused-session slot.
func (r *CacheKeyStruct) QuizSavedKey(userID string) string {
	return fmt.Sprintf("user:%s:quiz_saved", userID)
}

// DailyMCQKey returns the cache key for a user's question of the day.
func (r *CacheKeyStruct) DailyMCQKey(userID, date string) string {
	return fmt.Sprintf("user:%s:daily_mcq:%s", userID, date)
}

// DailyMCQAnsweredKey returns the cache key recording the day's attempt.
func (r *CacheKeyStruct) DailyMCQAnsweredKey(userID, date string) string {
	return fmt.Sprintf("user:%s:daily_mcq_answered:%s", userID, date)
}

// LeaderboardKey returns the cache key for the global leaderboard snapshot.
func (r *CacheKeyStruct) LeaderboardKey() string {
	return "leaderboard:weekly"
}

var CacheKey = NewCacheKeyStruct()
