package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"calmate-web/internal/middleware"
	"calmate-web/internal/model"
	"calmate-web/internal/resource"
	"calmate-web/internal/session"
	"calmate-web/pkg/apierror"
)

// baseData carries the fields every page template reads.
type baseData struct {
	Title         string
	Authenticated bool
	Username      string
	ActiveNav     string
}

func newBaseData(sess *session.Session, title, nav string) baseData {
	b := baseData{Title: title, ActiveNav: nav}
	if sess != nil && sess.Authenticated() {
		b.Authenticated = true
		b.Username = sess.User.Username
	}
	return b
}

// currentSet returns the request's authenticated session and its resource
// bundle. The route guard runs first on protected routes, so a miss here
// means the guard was bypassed and the caller should bail out.
func currentSet(r *http.Request, reg *resource.Registry) (*session.Session, *resource.Set, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok || !sess.Authenticated() {
		return nil, nil, false
	}
	return sess, reg.ForSession(sess.ID, sess.Token), true
}

// userMessage picks the text shown in a form banner for a failed call.
// Upstream messages are already user facing; anything else gets the fallback.
func userMessage(err error, fallback string) string {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, apiResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrNotAuthenticated) {
		writeJSON(w, http.StatusUnauthorized, apiResponse{
			Success: false,
			Error:   &errorBody{Kind: string(apierror.KindAuth), Message: "Not authenticated"},
		})
		return
	}
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.HTTPStatus, apiResponse{
			Success: false,
			Error:   &errorBody{Kind: string(apiErr.Kind), Message: apiErr.Message},
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, apiResponse{
		Success: false,
		Error:   &errorBody{Kind: string(apierror.KindServer), Message: "Internal server error"},
	})
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
