package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"calmate-web/internal/api"
	"calmate-web/internal/model"
)

func jsonHandler(counter *atomic.Int64, payload any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if counter != nil {
			counter.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func TestSetAnalyzeFoodPrependsWithoutRefetch(t *testing.T) {
	t.Parallel()

	var logFetches atomic.Int64
	analyzed := model.FoodLog{ID: "log-2", FoodName: "Ramen", Calories: 550, Timestamp: time.Now()}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /food/logs", jsonHandler(&logFetches, []model.FoodLog{
		{ID: "log-1", FoodName: "Oatmeal", Calories: 300},
	}))
	mux.HandleFunc("POST /food/analyze", jsonHandler(nil, analyzed))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	set := NewSet(api.New(server.URL, time.Second), "token")
	set.FoodLogs.Fetch(context.Background())
	require.EqualValues(t, 1, logFetches.Load())

	entry, err := set.AnalyzeFood(context.Background(), "ramen.jpg", bytes.NewReader([]byte("jpegdata")))
	require.NoError(t, err)
	require.Equal(t, "Ramen", entry.FoodName)

	snap := set.FoodLogs.Peek()
	require.Len(t, snap.Data, 2)
	require.Equal(t, "log-2", snap.Data[0].ID)
	require.Equal(t, "log-1", snap.Data[1].ID)

	// The new entry came from the analysis response, not a reload.
	require.EqualValues(t, 1, logFetches.Load())
}

func TestSetAnalyzeFoodSingleFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /food/analyze", func(w http.ResponseWriter, _ *http.Request) {
		close(started)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.FoodLog{ID: "log-1"})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	set := NewSet(api.New(server.URL, 5*time.Second), "token")

	done := make(chan error, 1)
	go func() {
		_, err := set.AnalyzeFood(context.Background(), "a.jpg", bytes.NewReader([]byte("x")))
		done <- err
	}()

	<-started
	require.True(t, set.Uploading())

	_, err := set.AnalyzeFood(context.Background(), "b.jpg", bytes.NewReader([]byte("y")))
	require.ErrorIs(t, err, model.ErrUploadInFlight)

	close(release)
	require.NoError(t, <-done)
	require.False(t, set.Uploading())
}

func TestSetSendFriendRequestRefetchesLists(t *testing.T) {
	t.Parallel()

	var friendFetches, sentFetches, userFetches atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("GET /social/friends", jsonHandler(&friendFetches, []model.Friend{}))
	mux.HandleFunc("GET /social/friends/requests", jsonHandler(&sentFetches, []model.FriendRequest{}))
	mux.HandleFunc("GET /social/users", jsonHandler(&userFetches, []model.UserSummary{}))
	mux.HandleFunc("POST /social/friends/request/user-9", jsonHandler(nil, map[string]string{"message": "sent"}))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	set := NewSet(api.New(server.URL, time.Second), "token")

	require.NoError(t, set.SendFriendRequest(context.Background(), "user-9"))

	require.EqualValues(t, 1, friendFetches.Load())
	require.EqualValues(t, 1, sentFetches.Load())
	require.EqualValues(t, 1, userFetches.Load())
}

func TestSetCalorieGoalValidatesAndRefetches(t *testing.T) {
	t.Parallel()

	var statusFetches atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/calorie-goal", jsonHandler(nil, model.CalorieGoalResponse{Success: true, DailyCalorieGoal: 1800}))
	mux.HandleFunc("GET /users/calorie-status", jsonHandler(&statusFetches, model.CalorieStatus{Goal: 1800, Consumed: 0, Remaining: 1800}))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	set := NewSet(api.New(server.URL, time.Second), "token")

	require.ErrorIs(t, set.SetCalorieGoal(context.Background(), 0), model.ErrInvalidInput)
	require.ErrorIs(t, set.SetCalorieGoal(context.Background(), -50), model.ErrInvalidInput)
	require.EqualValues(t, 0, statusFetches.Load())

	require.NoError(t, set.SetCalorieGoal(context.Background(), 1800))
	require.EqualValues(t, 1, statusFetches.Load())
	require.Equal(t, 1800, set.Calories.Peek().Data.Goal)
}

func TestSetUpdateProfileSeedsReturnedProfile(t *testing.T) {
	t.Parallel()

	var profileFetches atomic.Int64
	updated := model.UserProfile{ID: "u1", Username: "newname", Email: "a@b.c"}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/profile", jsonHandler(&profileFetches, model.UserProfile{ID: "u1", Username: "oldname"}))
	mux.HandleFunc("PUT /users/profile", jsonHandler(nil, updated))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	set := NewSet(api.New(server.URL, time.Second), "token")
	set.Profile.Fetch(context.Background())

	name := "newname"
	profile, err := set.UpdateProfile(context.Background(), model.ProfileUpdate{Username: &name})
	require.NoError(t, err)
	require.Equal(t, "newname", profile.Username)

	require.Equal(t, "newname", set.Profile.Peek().Data.Username)
	require.EqualValues(t, 1, profileFetches.Load())
}
