package model

import "errors"

var (
	// Session related errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotAuthenticated = errors.New("not authenticated")

	// Upload related errors
	ErrNoFileSelected = errors.New("no file selected")
	ErrUploadInFlight = errors.New("upload already in progress")
	ErrGoalNotSet     = errors.New("calorie goal not set")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
