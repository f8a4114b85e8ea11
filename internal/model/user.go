package model

// UserProfile is the identity and gamification snapshot owned by the CalMate
// API. The client holds a read-mostly copy refreshed by refetch; only a
// successful updateProfile call mutates it locally.
type UserProfile struct {
	ID                    string   `json:"id"`
	Email                 string   `json:"email"`
	Username              string   `json:"username"`
	FullName              string   `json:"full_name,omitempty"`
	ProfileImage          string   `json:"profile_image,omitempty"`
	CurrentStreak         int      `json:"current_streak"`
	HighestStreak         int      `json:"highest_streak"`
	TotalPoints           int      `json:"total_points"`
	Achievements          []string `json:"achievements"`
	LastLogDate           string   `json:"last_log_date,omitempty"`
	DailyCalorieGoal      int      `json:"daily_calorie_goal,omitempty"`
	CaloriesConsumedToday int      `json:"calories_consumed_today,omitempty"`
	CreatedAt             string   `json:"created_at"`
	UpdatedAt             string   `json:"updated_at"`
}

// ProfileUpdate carries the mutable subset of UserProfile for PUT /users/profile.
// Pointer fields distinguish "unset" from "set to zero value".
type ProfileUpdate struct {
	FullName     *string `json:"full_name,omitempty"`
	Username     *string `json:"username,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// UserSummary is the minimal record returned by GET /social/users.
type UserSummary struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	HighestStreak     int    `json:"highest_streak"`
	TotalPoints       int    `json:"total_points"`
	AchievementsCount int    `json:"achievements_count"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

type SignupResponse struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}
