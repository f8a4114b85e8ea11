package model

import "time"

// Macronutrients is the protein/carbs/fats breakdown computed by the API's
// food analysis, in grams.
type Macronutrients struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// FoodLog is one logged meal. analyzeFoodImage returns a fully populated
// FoodLog, which pages prepend to the in-memory list without a refetch.
type FoodLog struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	FoodName        string         `json:"food_name"`
	PortionSize     float64        `json:"portion_size"`
	Calories        int            `json:"calories"`
	Macronutrients  Macronutrients `json:"macronutrients"`
	ImageURL        string         `json:"image_url"`
	Visibility      string         `json:"visibility,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
	NewAchievements []string       `json:"new_achievements,omitempty"`
}

type CalorieStatus struct {
	Goal      int `json:"goal"`
	Consumed  int `json:"consumed"`
	Remaining int `json:"remaining"`
}

type CalorieGoalResponse struct {
	Success          bool   `json:"success"`
	DailyCalorieGoal int    `json:"daily_calorie_goal"`
	Message          string `json:"message,omitempty"`
}

type Streak struct {
	UserID        string `json:"user_id"`
	CurrentStreak int    `json:"current_streak"`
	HighestStreak int    `json:"highest_streak"`
	LastLogDate   string `json:"last_log_date,omitempty"`
}

type LeaderboardEntry struct {
	Username      string `json:"username"`
	TotalPoints   int    `json:"total_points"`
	Achievements  int    `json:"achievements"`
	HighestStreak int    `json:"highest_streak"`
}
