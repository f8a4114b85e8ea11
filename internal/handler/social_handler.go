package handler

import (
	"net/http"
	"sync"

	"calmate-web/internal/model"
	"calmate-web/internal/resource"
	"calmate-web/internal/routes"
	"calmate-web/internal/session"
	"calmate-web/internal/view"
)

// SocialHandler serves the friends/requests/feed page and the two request
// mutations. Both mutations redirect back to the page on success so the
// refetched lists render immediately.
type SocialHandler struct {
	registry *resource.Registry
	renderer *view.Renderer
}

func NewSocialHandler(registry *resource.Registry, renderer *view.Renderer) *SocialHandler {
	return &SocialHandler{registry: registry, renderer: renderer}
}

type socialData struct {
	baseData
	ActionError string
	Friends     resource.Snapshot[[]model.Friend]
	Received    resource.Snapshot[[]model.FriendRequest]
	Sent        resource.Snapshot[[]model.FriendRequest]
	Users       resource.Snapshot[[]model.UserSummary]
	Feed        resource.Snapshot[[]model.FeedItem]
	Available   []model.UserSummary
}

func (h *SocialHandler) Page(w http.ResponseWriter, r *http.Request) {
	sess, set, ok := currentSet(r, h.registry)
	if !ok {
		http.Redirect(w, r, routes.LoginPath, http.StatusFound)
		return
	}

	data := h.loadPage(r, sess, set)
	h.renderer.Render(w, http.StatusOK, "social", data)
}

func (h *SocialHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	sess, set, ok := currentSet(r, h.registry)
	if !ok {
		http.Redirect(w, r, routes.LoginPath, http.StatusFound)
		return
	}

	if err := set.SendFriendRequest(r.Context(), formValue(r, "user_id")); err != nil {
		data := h.loadPage(r, sess, set)
		data.ActionError = userMessage(err, "Could not send the friend request.")
		h.renderer.Render(w, statusFor(err), "social", data)
		return
	}

	http.Redirect(w, r, "/dashboard/social", http.StatusSeeOther)
}

func (h *SocialHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	sess, set, ok := currentSet(r, h.registry)
	if !ok {
		http.Redirect(w, r, routes.LoginPath, http.StatusFound)
		return
	}

	if err := set.AcceptFriendRequest(r.Context(), formValue(r, "request_id")); err != nil {
		data := h.loadPage(r, sess, set)
		data.ActionError = userMessage(err, "Could not accept the friend request.")
		h.renderer.Render(w, statusFor(err), "social", data)
		return
	}

	http.Redirect(w, r, "/dashboard/social", http.StatusSeeOther)
}

func (h *SocialHandler) loadPage(r *http.Request, sess *session.Session, set *resource.Set) socialData {
	data := socialData{baseData: newBaseData(sess, "Social", "social")}

	ctx := r.Context()
	var wg sync.WaitGroup
	wg.Add(5)
	go func() { defer wg.Done(); data.Friends = set.Friends.Fetch(ctx) }()
	go func() { defer wg.Done(); data.Received = set.RequestsReceived.Fetch(ctx) }()
	go func() { defer wg.Done(); data.Sent = set.RequestsSent.Fetch(ctx) }()
	go func() { defer wg.Done(); data.Users = set.Users.Fetch(ctx) }()
	go func() { defer wg.Done(); data.Feed = set.Feed.Fetch(ctx) }()
	wg.Wait()

	data.Available = availableUsers(sess.User, data.Users.Data, data.Friends.Data, data.Sent.Data, data.Received.Data)
	return data
}

// availableUsers filters the full user list down to people the current user
// can still send a request to: not themselves, not already a friend, and not
// on either side of a pending request.
func availableUsers(self *model.UserProfile, users []model.UserSummary, friends []model.Friend, sent, received []model.FriendRequest) []model.UserSummary {
	if len(users) == 0 {
		return nil
	}

	taken := make(map[string]struct{}, 1+len(friends)+len(sent)+len(received))
	if self != nil {
		taken[self.ID] = struct{}{}
	}
	for _, f := range friends {
		taken[f.FriendID] = struct{}{}
		taken[f.UserID] = struct{}{}
	}
	for _, req := range sent {
		taken[req.ToUser.ID] = struct{}{}
	}
	for _, req := range received {
		taken[req.FromUser.ID] = struct{}{}
	}

	available := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		if _, used := taken[u.ID]; !used {
			available = append(available, u)
		}
	}
	if len(available) == 0 {
		return nil
	}
	return available
}
