package handler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"calmate-web/internal/model"
	"calmate-web/pkg/apierror"
)

func TestWeeklyCalories(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 8, 12, 0, 0, 0, time.UTC) // a Sunday

	t.Run("buckets the last seven days oldest first", func(t *testing.T) {
		logs := []model.FoodLog{
			{Calories: 500, Timestamp: now.Add(-2 * time.Hour)},
			{Calories: 300, Timestamp: now.AddDate(0, 0, -1)},
			{Calories: 200, Timestamp: now.AddDate(0, 0, -1)},
			{Calories: 1000, Timestamp: now.AddDate(0, 0, -6)},
			// Outside the window, must be ignored.
			{Calories: 9999, Timestamp: now.AddDate(0, 0, -8)},
		}

		bars := weeklyCalories(logs, now)
		require.Len(t, bars, 7)

		require.Equal(t, "Mon", bars[0].Day)
		require.Equal(t, 1000, bars[0].Calories)
		require.Equal(t, 100, bars[0].Pct)

		require.Equal(t, "Sat", bars[5].Day)
		require.Equal(t, 500, bars[5].Calories)
		require.Equal(t, 50, bars[5].Pct)

		require.Equal(t, "Sun", bars[6].Day)
		require.Equal(t, 500, bars[6].Calories)
	})

	t.Run("no logs yields no bars", func(t *testing.T) {
		require.Nil(t, weeklyCalories(nil, now))
	})

	t.Run("only out-of-window logs yields no bars", func(t *testing.T) {
		logs := []model.FoodLog{{Calories: 400, Timestamp: now.AddDate(0, 0, -30)}}
		require.Nil(t, weeklyCalories(logs, now))
	})
}

func TestAvailableUsers(t *testing.T) {
	t.Parallel()

	self := &model.UserProfile{ID: "me"}
	users := []model.UserSummary{
		{ID: "me", Username: "self"},
		{ID: "friend-1", Username: "friend"},
		{ID: "sent-1", Username: "pending-out"},
		{ID: "recv-1", Username: "pending-in"},
		{ID: "fresh-1", Username: "stranger"},
	}
	friends := []model.Friend{{UserID: "me", FriendID: "friend-1"}}
	sent := []model.FriendRequest{{ToUser: model.UserRef{ID: "sent-1"}}}
	received := []model.FriendRequest{{FromUser: model.UserRef{ID: "recv-1"}}}

	available := availableUsers(self, users, friends, sent, received)
	require.Len(t, available, 1)
	require.Equal(t, "fresh-1", available[0].ID)

	t.Run("nil when everyone is taken", func(t *testing.T) {
		require.Nil(t, availableUsers(self, users[:1], nil, nil, nil))
	})

	t.Run("nil for an empty user list", func(t *testing.T) {
		require.Nil(t, availableUsers(self, nil, friends, sent, received))
	})
}

func TestReturnTarget(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/dashboard/food", returnTarget("/dashboard/food"))
	require.Empty(t, returnTarget("https://evil.example"))
	require.Empty(t, returnTarget("//evil.example"))
	require.Empty(t, returnTarget("/login"))
	require.Empty(t, returnTarget(""))
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Invalid credentials", userMessage(apierror.Auth("Invalid credentials"), "fallback"))
	require.Equal(t, "fallback", userMessage(errors.New("dial tcp: refused"), "fallback"))
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, 401, statusFor(apierror.Auth("no")))
	require.Equal(t, 400, statusFor(apierror.Validation("bad")))
	require.Equal(t, 502, statusFor(apierror.Network("down", nil)))
	require.Equal(t, 500, statusFor(apierror.Server("boom", 503)))
	require.Equal(t, 500, statusFor(errors.New("plain")))
}
