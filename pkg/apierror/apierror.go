package apierror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure observed while talking to the CalMate API or
// while validating input before a call is made.
type Kind string

const (
	KindAuth       Kind = "auth"       // rejected credentials or expired/invalid token
	KindValidation Kind = "validation" // malformed client input, caught before the call
	KindNetwork    Kind = "network"    // transport or timeout failure
	KindServer     Kind = "server"     // API reachable but returned a non-auth failure status
)

type APIError struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func New(kind Kind, message string, details string, status int) *APIError {
	return &APIError{Kind: kind, Message: message, Details: details, HTTPStatus: status}
}

func Auth(message string) *APIError {
	return &APIError{Kind: KindAuth, Message: message, HTTPStatus: 401}
}

func Validation(message string) *APIError {
	return &APIError{Kind: KindValidation, Message: message, HTTPStatus: 400}
}

func Network(message string, cause error) *APIError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &APIError{Kind: KindNetwork, Message: message, Details: details, HTTPStatus: 502}
}

func Server(message string, status int) *APIError {
	return &APIError{Kind: KindServer, Message: message, HTTPStatus: status}
}

// KindOf reports the Kind of err, or KindServer when it is not an APIError.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}

// IsAuth reports whether err represents a rejected or expired credential.
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}
