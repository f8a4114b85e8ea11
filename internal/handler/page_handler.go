package handler

import (
	"net/http"
	"sync"
	"time"

	"calmate-web/internal/middleware"
	"calmate-web/internal/model"
	"calmate-web/internal/resource"
	"calmate-web/internal/routes"
	"calmate-web/internal/view"
)

// PageHandler serves the landing page, the dashboard, and the leaderboard.
type PageHandler struct {
	registry *resource.Registry
	renderer *view.Renderer
}

func NewPageHandler(registry *resource.Registry, renderer *view.Renderer) *PageHandler {
	return &PageHandler{registry: registry, renderer: renderer}
}

func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	h.renderer.Render(w, http.StatusOK, "landing", newBaseData(sess, "CalMate", ""))
}

// weekdayBar is one column of the dashboard's seven-day calorie chart.
type weekdayBar struct {
	Day      string
	Calories int
	Pct      int
}

type dashboardData struct {
	baseData
	Calories    resource.Snapshot[*model.CalorieStatus]
	Streak      resource.Snapshot[*model.Streak]
	Logs        resource.Snapshot[[]model.FoodLog]
	Leaderboard resource.Snapshot[[]model.LeaderboardEntry]
	Weekly      []weekdayBar
	RecentLogs  []model.FoodLog
	TopEntries  []model.LeaderboardEntry
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, set, ok := currentSet(r, h.registry)
	if !ok {
		http.Redirect(w, r, routes.LoginPath, http.StatusFound)
		return
	}

	data := dashboardData{baseData: newBaseData(sess, "Dashboard", "dashboard")}

	ctx := r.Context()
	var wg sync.WaitGroup
	wg.Add(4)
	go func() { defer wg.Done(); data.Calories = set.Calories.Fetch(ctx) }()
	go func() { defer wg.Done(); data.Streak = set.Streak.Fetch(ctx) }()
	go func() { defer wg.Done(); data.Logs = set.FoodLogs.Fetch(ctx) }()
	go func() { defer wg.Done(); data.Leaderboard = set.Leaderboard.Fetch(ctx) }()
	wg.Wait()

	data.Weekly = weeklyCalories(data.Logs.Data, time.Now())
	data.RecentLogs = firstN(data.Logs.Data, 5)
	data.TopEntries = firstN(data.Leaderboard.Data, 5)

	h.renderer.Render(w, http.StatusOK, "dashboard", data)
}

type leaderboardData struct {
	baseData
	Leaderboard resource.Snapshot[[]model.LeaderboardEntry]
}

func (h *PageHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	sess, set, ok := currentSet(r, h.registry)
	if !ok {
		http.Redirect(w, r, routes.LoginPath, http.StatusFound)
		return
	}

	data := leaderboardData{
		baseData:    newBaseData(sess, "Leaderboard", "leaderboard"),
		Leaderboard: set.Leaderboard.Fetch(r.Context()),
	}
	h.renderer.Render(w, http.StatusOK, "leaderboard", data)
}

// weeklyCalories buckets logs into the seven days ending at now, oldest
// first. Bar heights are relative to the busiest day; an empty week returns
// nil so the template can show its placeholder.
func weeklyCalories(logs []model.FoodLog, now time.Time) []weekdayBar {
	if len(logs) == 0 {
		return nil
	}

	totals := make(map[string]int, 7)
	bars := make([]weekdayBar, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		totals[key] = 0
		bars = append(bars, weekdayBar{Day: day.Format("Mon")})
	}

	for _, entry := range logs {
		key := entry.Timestamp.In(now.Location()).Format("2006-01-02")
		if _, inWindow := totals[key]; inWindow {
			totals[key] += entry.Calories
		}
	}

	max := 0
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		cal := totals[day.Format("2006-01-02")]
		bars[6-i].Calories = cal
		if cal > max {
			max = cal
		}
	}
	if max == 0 {
		return nil
	}

	for i := range bars {
		bars[i].Pct = bars[i].Calories * 100 / max
	}
	return bars
}

func firstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
