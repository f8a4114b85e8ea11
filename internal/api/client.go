// Package api implements the client for the remote CalMate API. Every piece
// of application state is owned by that API; this package only issues
// requests and classifies failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"calmate-web/internal/metrics"
	"calmate-web/internal/model"
	"calmate-web/pkg/apierror"
)

const (
	userAgent = "CalMate-Web/1.0"

	retryBaseDelay = 200 * time.Millisecond
)

type Client struct {
	baseURL  string
	http     *http.Client
	recorder metrics.Recorder
	retries  int
}

type Option func(*Client)

// WithRetries sets the retry budget for idempotent GET calls. Mutations are
// never retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		recorder: metrics.NopRecorder{},
		retries:  0,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Signup creates an account. It does not authenticate; callers chain Login.
func (c *Client) Signup(ctx context.Context, email, password, username string) (*model.SignupResponse, error) {
	body := map[string]string{"email": email, "password": password, "username": username}
	return postJSON[model.SignupResponse](ctx, c, "signup", "/auth/signup", "", body, "Failed to create account")
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	body := map[string]string{"email": email, "password": password}
	return postJSON[model.TokenResponse](ctx, c, "login", "/auth/login", "", body, "Failed to log in")
}

func (c *Client) GetProfile(ctx context.Context, token string) (*model.UserProfile, error) {
	return getJSON[model.UserProfile](ctx, c, "get_profile", "/users/profile", token)
}

func (c *Client) UpdateProfile(ctx context.Context, token string, update model.ProfileUpdate) (*model.UserProfile, error) {
	return putJSON[model.UserProfile](ctx, c, "update_profile", "/users/profile", token, update)
}

func (c *Client) SetCalorieGoal(ctx context.Context, token string, goal int) (*model.CalorieGoalResponse, error) {
	body := map[string]int{"daily_goal": goal}
	return postJSON[model.CalorieGoalResponse](ctx, c, "set_calorie_goal", "/users/calorie-goal", token, body, "Failed to set calorie goal")
}

func (c *Client) GetCalorieStatus(ctx context.Context, token string) (*model.CalorieStatus, error) {
	return getJSON[model.CalorieStatus](ctx, c, "get_calorie_status", "/users/calorie-status", token)
}

func (c *Client) GetFoodLogs(ctx context.Context, token string) ([]model.FoodLog, error) {
	return getJSONSlice[model.FoodLog](ctx, c, "get_food_logs", "/food/logs", token)
}

func (c *Client) GetCurrentStreak(ctx context.Context, token string) (*model.Streak, error) {
	return getJSON[model.Streak](ctx, c, "get_streak", "/streaks/current", token)
}

func (c *Client) GetLeaderboard(ctx context.Context, token string) ([]model.LeaderboardEntry, error) {
	return getJSONSlice[model.LeaderboardEntry](ctx, c, "get_leaderboard", "/streaks/leaderboard", token)
}

func (c *Client) GetAllUsers(ctx context.Context, token string) ([]model.UserSummary, error) {
	return getJSONSlice[model.UserSummary](ctx, c, "get_all_users", "/social/users", token)
}

func (c *Client) GetFriends(ctx context.Context, token string) ([]model.Friend, error) {
	return getJSONSlice[model.Friend](ctx, c, "get_friends", "/social/friends", token)
}

func (c *Client) SendFriendRequest(ctx context.Context, token string, userID string) error {
	path := "/social/friends/request/" + url.PathEscape(userID)
	_, err := postJSON[map[string]any](ctx, c, "send_friend_request", path, token, struct{}{}, "Failed to send friend request")
	return err
}

func (c *Client) GetFriendRequests(ctx context.Context, token string, direction model.RequestDirection) ([]model.FriendRequest, error) {
	path := "/social/friends/requests?type=" + url.QueryEscape(string(direction))
	return getJSONSlice[model.FriendRequest](ctx, c, "get_friend_requests", path, token)
}

func (c *Client) AcceptFriendRequest(ctx context.Context, token string, requestID string) error {
	path := "/social/friends/accept/" + url.PathEscape(requestID)
	_, err := postJSON[map[string]any](ctx, c, "accept_friend_request", path, token, struct{}{}, "Failed to accept friend request")
	return err
}

func (c *Client) GetFeed(ctx context.Context, token string) ([]model.FeedItem, error) {
	return getJSONSlice[model.FeedItem](ctx, c, "get_feed", "/social/feed", token)
}

// AnalyzeFoodImage sends the raw image as a multipart payload and returns the
// analyzed FoodLog. Never retried: analysis creates a log entry upstream.
func (c *Client) AnalyzeFoodImage(ctx context.Context, token string, filename string, file io.Reader) (*model.FoodLog, error) {
	const op = "analyze_food_image"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, apierror.Validation("invalid upload payload")
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, apierror.Validation("could not read uploaded file")
	}
	if err := mw.Close(); err != nil {
		return nil, apierror.Validation("invalid upload payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/food/analyze", &buf)
	if err != nil {
		return nil, apierror.Network("Network error occurred", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	status, respBody, err := c.send(req, op, token)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, c.classifyStatus(op, status, respBody, "Failed to analyze food image")
	}

	return decode[model.FoodLog](respBody)
}

func getJSON[T any](ctx context.Context, c *Client, op, path, token string) (*T, error) {
	body, err := c.get(ctx, op, path, token)
	if err != nil {
		return nil, err
	}
	return decode[T](body)
}

func getJSONSlice[T any](ctx context.Context, c *Client, op, path, token string) ([]T, error) {
	body, err := c.get(ctx, op, path, token)
	if err != nil {
		return nil, err
	}

	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, apierror.Server("unexpected response from server", http.StatusBadGateway)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func postJSON[T any](ctx context.Context, c *Client, op, path, token string, payload any, failMessage string) (*T, error) {
	body, err := c.sendJSON(ctx, op, http.MethodPost, path, token, payload, failMessage)
	if err != nil {
		return nil, err
	}
	return decode[T](body)
}

func putJSON[T any](ctx context.Context, c *Client, op, path, token string, payload any) (*T, error) {
	body, err := c.sendJSON(ctx, op, http.MethodPut, path, token, payload, "Failed to update")
	if err != nil {
		return nil, err
	}
	return decode[T](body)
}

// get issues an idempotent read, retrying on transport errors and 5xx
// responses within the configured budget. Responses are returned raw.
func (c *Client) get(ctx context.Context, op, path, token string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, apierror.Network("Network error occurred", ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, apierror.Network("Network error occurred", err)
		}

		status, body, err := c.send(req, op, token)
		if err != nil {
			lastErr = err
			continue
		}
		if status >= 500 {
			lastErr = c.classifyStatus(op, status, body, "Failed to load data")
			continue
		}
		if status >= 400 {
			return nil, c.classifyStatus(op, status, body, "Failed to load data")
		}

		return body, nil
	}

	return nil, lastErr
}

func (c *Client) sendJSON(ctx context.Context, op, method, path, token string, payload any, failMessage string) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apierror.Validation("invalid request payload")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, apierror.Network("Network error occurred", err)
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.send(req, op, token)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, c.classifyStatus(op, status, body, failMessage)
	}

	return body, nil
}

// send executes one request with auth and instrumentation. The bearer header
// is attached on every call except the unauthenticated auth endpoints.
func (c *Client) send(req *http.Request, op, token string) (int, []byte, error) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.recorder.RecordUpstreamError(op, string(apierror.KindNetwork))
		return 0, nil, apierror.Network("Network error occurred", err)
	}
	defer resp.Body.Close()

	c.recorder.RecordUpstreamCall(op, resp.StatusCode, time.Since(started))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recorder.RecordUpstreamError(op, string(apierror.KindNetwork))
		return resp.StatusCode, nil, apierror.Network("Network error occurred", err)
	}

	return resp.StatusCode, body, nil
}

// classifyStatus maps an upstream failure status to the error taxonomy,
// preferring the API's own {message} body for user-facing text.
func (c *Client) classifyStatus(op string, status int, body []byte, fallback string) error {
	message := fallback
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		message = parsed.Message
	}

	var apiErr *apierror.APIError
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		apiErr = apierror.Auth(message)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		apiErr = apierror.New(apierror.KindValidation, message, "", status)
	default:
		apiErr = apierror.Server(message, status)
	}

	c.recorder.RecordUpstreamError(op, string(apiErr.Kind))
	return apiErr
}

func decode[T any](data []byte) (*T, error) {
	var out T
	if len(bytes.TrimSpace(data)) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apierror.Server("unexpected response from server", http.StatusBadGateway)
	}
	return &out, nil
}
