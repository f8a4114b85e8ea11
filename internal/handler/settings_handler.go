package handler

import (
	"net/http"
	"strconv"

	"calmate-web/internal/model"
	"calmate-web/internal/resource"
	"calmate-web/internal/routes"
	"calmate-web/internal/session"
	"calmate-web/internal/view"
)

// SettingsHandler serves the profile and calorie-goal forms.
type SettingsHandler struct {
	registry *resource.Registry
	renderer *view.Renderer
}

func NewSettingsHandler(registry *resource.Registry, renderer *view.Renderer) *SettingsHandler {
	return &SettingsHandler{registry: registry, renderer: renderer}
}

type settingsData struct {
	baseData
	Notice       string
	ProfileError string
	GoalError    string
	Profile      resource.Snapshot[*model.UserProfile]
	Calories     resource.Snapshot[*model.CalorieStatus]
}

func (h *SettingsHandler) Page(w http.ResponseWriter, r *http.Request) {
	sess, set, ok := currentSet(r, h.registry)
	if !ok {
		http.Redirect(w, r, routes.LoginPath, http.StatusFound)
		return
	}

	ctx := r.Context()
	data := settingsData{
		baseData: newBaseData(sess, "Settings", "settings"),
		Profile:  set.Profile.Fetch(ctx),
		Calories: set.Calories.Fetch(ctx),
	}
	switch r.URL.Query().Get("saved") {
	case "profile":
		data.Notice = "Profile updated."
	case "goal":
		data.Notice = "Daily calorie goal updated."
	}
	h.renderer.Render(w, http.StatusOK, "settings", data)
}

func (h *SettingsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, set, ok := currentSet(r, h.registry)
	if !ok {
		http.Redirect(w, r, routes.LoginPath, http.StatusFound)
		return
	}

	username := formValue(r, "username")
	fullName := formValue(r, "full_name")
	if username == "" {
		h.renderError(w, http.StatusBadRequest, sess, set, "Username cannot be empty.", "")
		return
	}

	update := model.ProfileUpdate{Username: &username, FullName: &fullName}
	if _, err := set.UpdateProfile(r.Context(), update); err != nil {
		h.renderError(w, statusFor(err), sess, set, userMessage(err, "Failed to update profile."), "")
		return
	}

	http.Redirect(w, r, "/dashboard/settings?saved=profile", http.StatusSeeOther)
}

func (h *SettingsHandler) SetGoal(w http.ResponseWriter, r *http.Request) {
	sess, set, ok := currentSet(r, h.registry)
	if !ok {
		http.Redirect(w, r, routes.LoginPath, http.StatusFound)
		return
	}

	goal, err := strconv.Atoi(formValue(r, "daily_goal"))
	if err != nil || goal <= 0 {
		h.renderError(w, http.StatusBadRequest, sess, set, "", "Enter a goal above zero.")
		return
	}

	if err := set.SetCalorieGoal(r.Context(), goal); err != nil {
		h.renderError(w, statusFor(err), sess, set, "", userMessage(err, "Failed to set calorie goal."))
		return
	}

	http.Redirect(w, r, "/dashboard/settings?saved=goal", http.StatusSeeOther)
}

func (h *SettingsHandler) renderError(w http.ResponseWriter, status int, sess *session.Session, set *resource.Set, profileErr, goalErr string) {
	data := settingsData{
		baseData:     newBaseData(sess, "Settings", "settings"),
		ProfileError: profileErr,
		GoalError:    goalErr,
		Profile:      set.Profile.Peek(),
		Calories:     set.Calories.Peek(),
	}
	h.renderer.Render(w, status, "settings", data)
}
