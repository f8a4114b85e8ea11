package resource

import (
	"context"
	"io"
	"sync"

	"calmate-web/internal/api"
	"calmate-web/internal/model"
)

// Set bundles every fetcher one authenticated session needs. The mutation
// policies are fixed per resource:
//
//   - set calorie goal    → full refetch of calorie status
//   - add food log        → local prepend from the analysis result, no refetch
//   - update profile      → seed with the returned profile
//   - send friend request → refetch friends, sent requests, and available users
//   - accept request      → refetch friends and received requests
type Set struct {
	client *api.Client
	token  string

	Profile          *Fetcher[*model.UserProfile]
	Calories         *Fetcher[*model.CalorieStatus]
	FoodLogs         *Fetcher[[]model.FoodLog]
	Streak           *Fetcher[*model.Streak]
	Leaderboard      *Fetcher[[]model.LeaderboardEntry]
	Friends          *Fetcher[[]model.Friend]
	RequestsSent     *Fetcher[[]model.FriendRequest]
	RequestsReceived *Fetcher[[]model.FriendRequest]
	Users            *Fetcher[[]model.UserSummary]
	Feed             *Fetcher[[]model.FeedItem]

	uploadMu  sync.Mutex
	uploading bool
}

func NewSet(client *api.Client, token string) *Set {
	s := &Set{client: client, token: token}

	s.Profile = NewFetcher(func(ctx context.Context) (*model.UserProfile, error) {
		return client.GetProfile(ctx, token)
	})
	s.Calories = NewFetcher(func(ctx context.Context) (*model.CalorieStatus, error) {
		return client.GetCalorieStatus(ctx, token)
	})
	s.FoodLogs = NewFetcher(func(ctx context.Context) ([]model.FoodLog, error) {
		return client.GetFoodLogs(ctx, token)
	})
	s.Streak = NewFetcher(func(ctx context.Context) (*model.Streak, error) {
		return client.GetCurrentStreak(ctx, token)
	})
	s.Leaderboard = NewFetcher(func(ctx context.Context) ([]model.LeaderboardEntry, error) {
		return client.GetLeaderboard(ctx, token)
	})
	s.Friends = NewFetcher(func(ctx context.Context) ([]model.Friend, error) {
		return client.GetFriends(ctx, token)
	})
	s.RequestsSent = NewFetcher(func(ctx context.Context) ([]model.FriendRequest, error) {
		return client.GetFriendRequests(ctx, token, model.RequestsSent)
	})
	s.RequestsReceived = NewFetcher(func(ctx context.Context) ([]model.FriendRequest, error) {
		return client.GetFriendRequests(ctx, token, model.RequestsReceived)
	})
	s.Users = NewFetcher(func(ctx context.Context) ([]model.UserSummary, error) {
		return client.GetAllUsers(ctx, token)
	})
	s.Feed = NewFetcher(func(ctx context.Context) ([]model.FeedItem, error) {
		return client.GetFeed(ctx, token)
	})

	return s
}

// SetCalorieGoal updates the goal upstream, then refetches calorie status.
// The mutation response carries only the new goal, not consumed/remaining.
func (s *Set) SetCalorieGoal(ctx context.Context, goal int) error {
	if goal <= 0 {
		return model.ErrInvalidInput
	}

	if _, err := s.client.SetCalorieGoal(ctx, s.token, goal); err != nil {
		return err
	}

	s.Calories.Fetch(ctx)
	return nil
}

// UpdateProfile merges the returned profile directly; the response is the
// full recomputed resource, so no extra round-trip is needed.
func (s *Set) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.UserProfile, error) {
	updated, err := s.client.UpdateProfile(ctx, s.token, update)
	if err != nil {
		return nil, err
	}

	s.Profile.Seed(updated)
	return updated, nil
}

// AnalyzeFood uploads the photo and prepends the analyzed log to the cached
// list without refetching. Only one upload may be in flight per session.
func (s *Set) AnalyzeFood(ctx context.Context, filename string, file io.Reader) (*model.FoodLog, error) {
	s.uploadMu.Lock()
	if s.uploading {
		s.uploadMu.Unlock()
		return nil, model.ErrUploadInFlight
	}
	s.uploading = true
	s.uploadMu.Unlock()

	defer func() {
		s.uploadMu.Lock()
		s.uploading = false
		s.uploadMu.Unlock()
	}()

	logEntry, err := s.client.AnalyzeFoodImage(ctx, s.token, filename, file)
	if err != nil {
		return nil, err
	}

	s.FoodLogs.Apply(func(logs []model.FoodLog) []model.FoodLog {
		return append([]model.FoodLog{*logEntry}, logs...)
	})

	return logEntry, nil
}

// Uploading reports whether a photo upload is in flight, used to disable the
// upload control.
func (s *Set) Uploading() bool {
	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()
	return s.uploading
}

// SendFriendRequest always triggers a full refetch of friends, sent requests,
// and available users: the confirmation response does not carry the
// recomputed lists.
func (s *Set) SendFriendRequest(ctx context.Context, userID string) error {
	if userID == "" {
		return model.ErrInvalidInput
	}

	if err := s.client.SendFriendRequest(ctx, s.token, userID); err != nil {
		return err
	}

	s.Friends.Fetch(ctx)
	s.RequestsSent.Fetch(ctx)
	s.Users.Fetch(ctx)
	return nil
}

func (s *Set) AcceptFriendRequest(ctx context.Context, requestID string) error {
	if requestID == "" {
		return model.ErrInvalidInput
	}

	if err := s.client.AcceptFriendRequest(ctx, s.token, requestID); err != nil {
		return err
	}

	s.Friends.Fetch(ctx)
	s.RequestsReceived.Fetch(ctx)
	return nil
}

// Close tears down every fetcher so nothing fetched with the session's token
// remains readable after logout.
func (s *Set) Close() {
	s.Profile.Close()
	s.Calories.Close()
	s.FoodLogs.Close()
	s.Streak.Close()
	s.Leaderboard.Close()
	s.Friends.Close()
	s.RequestsSent.Close()
	s.RequestsReceived.Close()
	s.Users.Close()
	s.Feed.Close()
}
