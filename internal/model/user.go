package model

import "time"

// User represents a registered learner profile with aggregate study stats.
type User struct {
	ID               int       `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	DisplayName      string    `json:"display_name"`
	Streak           int       `json:"streak"`
	LastLoginDate    string    `json:"last_login_date"` // time.DateOnly
	TestsCompleted   int       `json:"tests_completed"`
	TotalQuestions   int       `json:"total_questions"`
	StudyTimeMinutes int       `json:"study_time_minutes"`
	WeeklyGoal       int       `json:"weekly_goal"`
	CreatedAt        time.Time `json:"created_at"`
}

// DefaultWeeklyGoal is the questions-per-week target assigned at signup.
const DefaultWeeklyGoal = 200

// SignupRequest is the payload for account creation.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateGoalRequest changes the weekly question goal.
type UpdateGoalRequest struct {
	WeeklyGoal int `json:"weekly_goal" binding:"required,min=1,max=10000"`
}

// LeaderboardEntry is one row of the public leaderboard.
type LeaderboardEntry struct {
	UserID         int     `json:"user_id"`
	DisplayName    string  `json:"display_name"`
	TestsCompleted int     `json:"tests_completed"`
	TotalQuestions int     `json:"total_questions"`
	Accuracy       float64 `json:"accuracy"`
	Streak         int     `json:"streak"`
}
