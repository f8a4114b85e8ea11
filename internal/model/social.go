package model

import "time"

type Friend struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	FriendID        string `json:"friend_id"`
	Username        string `json:"username"`
	StreakCount     int    `json:"streak_count"`
	LastInteraction string `json:"last_interaction,omitempty"`
	Status          string `json:"status,omitempty"`
}

// UserRef identifies one side of a friend request.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type FriendRequest struct {
	ID        string    `json:"id"`
	FromUser  UserRef   `json:"from_user"`
	ToUser    UserRef   `json:"to_user"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// RequestDirection selects sent or received friend requests.
type RequestDirection string

const (
	RequestsSent     RequestDirection = "sent"
	RequestsReceived RequestDirection = "received"
)

// FeedItem is one friend activity entry on the social feed.
type FeedItem struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Username       string         `json:"username"`
	FoodName       string         `json:"food_name"`
	PortionSize    float64        `json:"portion_size"`
	Calories       int            `json:"calories"`
	Macronutrients Macronutrients `json:"macronutrients"`
	ImageURL       string         `json:"image_url"`
	Timestamp      time.Time      `json:"timestamp"`
}
