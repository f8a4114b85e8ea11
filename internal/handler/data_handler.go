package handler

import (
	"net/http"

	"calmate-web/internal/model"
	"calmate-web/internal/resource"
)

// DataHandler exposes JSON refresh endpoints so pages can poll for fresh
// resource state without a full reload. Responses carry the snapshot's data
// on success and the classified error otherwise.
type DataHandler struct {
	registry *resource.Registry
}

func NewDataHandler(registry *resource.Registry) *DataHandler {
	return &DataHandler{registry: registry}
}

func (h *DataHandler) CalorieStatus(w http.ResponseWriter, r *http.Request) {
	_, set, ok := currentSet(r, h.registry)
	if !ok {
		writeError(w, model.ErrNotAuthenticated)
		return
	}
	writeSnapshot(w, set.Calories.Fetch(r.Context()))
}

func (h *DataHandler) Feed(w http.ResponseWriter, r *http.Request) {
	_, set, ok := currentSet(r, h.registry)
	if !ok {
		writeError(w, model.ErrNotAuthenticated)
		return
	}
	writeSnapshot(w, set.Feed.Fetch(r.Context()))
}

func (h *DataHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	_, set, ok := currentSet(r, h.registry)
	if !ok {
		writeError(w, model.ErrNotAuthenticated)
		return
	}
	writeSnapshot(w, set.Leaderboard.Fetch(r.Context()))
}

func (h *DataHandler) Streak(w http.ResponseWriter, r *http.Request) {
	_, set, ok := currentSet(r, h.registry)
	if !ok {
		writeError(w, model.ErrNotAuthenticated)
		return
	}
	writeSnapshot(w, set.Streak.Fetch(r.Context()))
}

func writeSnapshot[T any](w http.ResponseWriter, snap resource.Snapshot[T]) {
	if snap.Err != nil && !snap.Ready() {
		writeError(w, snap.Err)
		return
	}
	writeSuccess(w, http.StatusOK, snap.Data)
}
