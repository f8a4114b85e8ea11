package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"calmate-web/internal/model"
	"calmate-web/internal/resource"
	"calmate-web/internal/view"
)

func ready[T any](data T) resource.Snapshot[T] {
	return resource.Snapshot[T]{Status: resource.StatusReady, Data: data}
}

func renderPage(t *testing.T, page string, data any) string {
	t.Helper()

	renderer, err := view.New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	renderer.Render(rec, http.StatusOK, page, data)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func authedBase(title, nav string) baseData {
	return baseData{Title: title, Authenticated: true, Username: "ana", ActiveNav: nav}
}

func TestRenderDashboard(t *testing.T) {
	t.Parallel()

	body := renderPage(t, "dashboard", dashboardData{
		baseData: authedBase("Dashboard", "dashboard"),
		Calories: ready(&model.CalorieStatus{Goal: 2000, Consumed: 1200, Remaining: 800}),
		Streak:   ready(&model.Streak{CurrentStreak: 3, HighestStreak: 9}),
		Logs:     ready([]model.FoodLog{{FoodName: "Oatmeal", Calories: 300, Timestamp: time.Now()}}),
		Leaderboard: ready([]model.LeaderboardEntry{
			{Username: "ana", TotalPoints: 120},
		}),
		Weekly:     []weekdayBar{{Day: "Mon", Calories: 300, Pct: 100}},
		RecentLogs: []model.FoodLog{{FoodName: "Oatmeal", Calories: 300, Timestamp: time.Now()}},
		TopEntries: []model.LeaderboardEntry{{Username: "ana", TotalPoints: 120}},
	})

	require.Contains(t, body, "Hi, ana")
	require.Contains(t, body, "1200")
	require.Contains(t, body, "🔥 3 days")
	require.Contains(t, body, "Oatmeal")
}

func TestRenderDashboardWithoutGoal(t *testing.T) {
	t.Parallel()

	body := renderPage(t, "dashboard", dashboardData{
		baseData: authedBase("Dashboard", "dashboard"),
		Calories: ready(&model.CalorieStatus{}),
		Streak:   ready(&model.Streak{}),
		Logs:     ready([]model.FoodLog{}),
	})

	require.Contains(t, body, "Set a daily calorie goal")
}

func TestRenderDashboardStaleWithError(t *testing.T) {
	t.Parallel()

	snap := ready(&model.CalorieStatus{Goal: 2000, Consumed: 900, Remaining: 1100})
	snap.Err = http.ErrHandlerTimeout

	body := renderPage(t, "dashboard", dashboardData{
		baseData: authedBase("Dashboard", "dashboard"),
		Calories: snap,
		Streak:   ready(&model.Streak{}),
		Logs:     ready([]model.FoodLog{}),
	})

	// Stale data stays visible while the failure is shown beside it.
	require.Contains(t, body, "Could not load your calorie status")
	require.Contains(t, body, "900")
}

func TestRenderFoodPage(t *testing.T) {
	t.Parallel()

	t.Run("upload form disabled while a photo is in flight", func(t *testing.T) {
		body := renderPage(t, "food", foodData{
			baseData:  authedBase("Food Log", "food"),
			GoalSet:   true,
			Uploading: true,
			Logs:      ready([]model.FoodLog{}),
		})
		require.Contains(t, body, "Analyzing…")
		require.Contains(t, body, "disabled")
	})

	t.Run("no goal hides the upload form", func(t *testing.T) {
		body := renderPage(t, "food", foodData{
			baseData: authedBase("Food Log", "food"),
			GoalSet:  false,
			Logs:     ready([]model.FoodLog{}),
		})
		require.NotContains(t, body, "Analyze photo")
		require.Contains(t, body, "Set a daily calorie goal")
	})

	t.Run("upload error banner", func(t *testing.T) {
		body := renderPage(t, "food", foodData{
			baseData:    authedBase("Food Log", "food"),
			GoalSet:     true,
			UploadError: "Failed to analyze food image. Please try again.",
			Logs:        ready([]model.FoodLog{}),
		})
		require.Contains(t, body, "Failed to analyze food image")
	})
}

func TestRenderSocialPage(t *testing.T) {
	t.Parallel()

	body := renderPage(t, "social", socialData{
		baseData: authedBase("Social", "social"),
		Friends:  ready([]model.Friend{{Username: "ben", StreakCount: 2}}),
		Received: ready([]model.FriendRequest{{ID: "req-1", FromUser: model.UserRef{Username: "cara"}}}),
		Sent:     ready([]model.FriendRequest{{ToUser: model.UserRef{Username: "dan"}}}),
		Users:    ready([]model.UserSummary{{ID: "u5", Username: "eve"}}),
		Feed:     ready([]model.FeedItem{{Username: "ben", FoodName: "Salad", Calories: 150, Timestamp: time.Now()}}),
		Available: []model.UserSummary{
			{ID: "u5", Username: "eve", HighestStreak: 1, TotalPoints: 10},
		},
	})

	require.Contains(t, body, "ben")
	require.Contains(t, body, "cara")
	require.Contains(t, body, "dan")
	require.Contains(t, body, "eve")
	require.Contains(t, body, "Salad")
	require.Contains(t, body, `value="req-1"`)
}

func TestRenderLoginPage(t *testing.T) {
	t.Parallel()

	body := renderPage(t, "login", loginData{
		baseData:     baseData{Title: "Log In"},
		Error:        "Invalid credentials",
		Email:        "ana@example.com",
		ReturnTarget: "/dashboard/social",
	})

	require.Contains(t, body, "Invalid credentials")
	require.Contains(t, body, `value="ana@example.com"`)
	require.Contains(t, body, `value="/dashboard/social"`)
}

func TestRenderLeaderboardHighlightsSelf(t *testing.T) {
	t.Parallel()

	body := renderPage(t, "leaderboard", leaderboardData{
		baseData: authedBase("Leaderboard", "leaderboard"),
		Leaderboard: ready([]model.LeaderboardEntry{
			{Username: "ben", TotalPoints: 200},
			{Username: "ana", TotalPoints: 120},
		}),
	})

	require.Contains(t, body, "(you)")
	require.Contains(t, body, "ben")
}

func TestRenderSettingsPage(t *testing.T) {
	t.Parallel()

	body := renderPage(t, "settings", settingsData{
		baseData: authedBase("Settings", "settings"),
		Notice:   "Profile updated.",
		Profile: ready(&model.UserProfile{
			Username:      "ana",
			Email:         "a@b.c",
			FullName:      "Ana B",
			TotalPoints:   120,
			Achievements:  []string{"first_log"},
			HighestStreak: 9,
		}),
		Calories: ready(&model.CalorieStatus{Goal: 2000}),
	})

	require.Contains(t, body, "Profile updated.")
	require.Contains(t, body, `value="Ana B"`)
	require.Contains(t, body, "Current goal: 2000")
}
