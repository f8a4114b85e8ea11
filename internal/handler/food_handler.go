package handler

import (
	"bytes"
	"errors"
	"net/http"

	"calmate-web/internal/imaging"
	"calmate-web/internal/model"
	"calmate-web/internal/resource"
	"calmate-web/internal/routes"
	"calmate-web/internal/view"
)

// FoodHandler serves the food log page and runs the photo upload flow:
// downscale the image, send it for analysis, and prepend the returned log
// to the cached list.
type FoodHandler struct {
	registry      *resource.Registry
	renderer      *view.Renderer
	maxUploadSize int64
	maxImageEdge  int
}

func NewFoodHandler(registry *resource.Registry, renderer *view.Renderer, maxUploadSize int64, maxImageEdge int) *FoodHandler {
	return &FoodHandler{
		registry:      registry,
		renderer:      renderer,
		maxUploadSize: maxUploadSize,
		maxImageEdge:  maxImageEdge,
	}
}

type foodData struct {
	baseData
	UploadError string
	GoalSet     bool
	Uploading   bool
	Logs        resource.Snapshot[[]model.FoodLog]
}

func (h *FoodHandler) Page(w http.ResponseWriter, r *http.Request) {
	sess, set, ok := currentSet(r, h.registry)
	if !ok {
		http.Redirect(w, r, routes.LoginPath, http.StatusFound)
		return
	}

	ctx := r.Context()
	data := foodData{
		baseData:  newBaseData(sess, "Food Log", "food"),
		GoalSet:   goalSet(set.Calories.Fetch(ctx)),
		Uploading: set.Uploading(),
		Logs:      set.FoodLogs.Fetch(ctx),
	}
	h.renderer.Render(w, http.StatusOK, "food", data)
}

// Upload analyzes a meal photo. On success the page is rendered from the
// cached log list, which already contains the new entry at the top; no
// refetch happens.
func (h *FoodHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sess, set, ok := currentSet(r, h.registry)
	if !ok {
		http.Redirect(w, r, routes.LoginPath, http.StatusFound)
		return
	}

	data := foodData{
		baseData: newBaseData(sess, "Food Log", "food"),
		GoalSet:  goalSet(set.Calories.Peek()),
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		data.UploadError = "The photo is too large to upload."
		h.renderUpload(w, http.StatusRequestEntityTooLarge, set, data)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		data.UploadError = "Please choose a photo first."
		h.renderUpload(w, http.StatusBadRequest, set, data)
		return
	}
	defer file.Close()

	prepared, err := imaging.Prepare(file, h.maxImageEdge)
	if err != nil {
		data.UploadError = "Could not read that image. Try a different photo."
		h.renderUpload(w, http.StatusBadRequest, set, data)
		return
	}

	if _, err := set.AnalyzeFood(r.Context(), header.Filename, bytes.NewReader(prepared)); err != nil {
		status := statusFor(err)
		if errors.Is(err, model.ErrUploadInFlight) {
			data.UploadError = "Another photo is still being analyzed. Wait for it to finish."
			status = http.StatusConflict
		} else {
			data.UploadError = userMessage(err, "Failed to analyze food image. Please try again.")
		}
		h.renderUpload(w, status, set, data)
		return
	}

	h.renderUpload(w, http.StatusOK, set, data)
}

// renderUpload fills the dynamic fields from the cached state rather than
// fetching, so a successful upload shows the prepended log as-is.
func (h *FoodHandler) renderUpload(w http.ResponseWriter, status int, set *resource.Set, data foodData) {
	data.Uploading = set.Uploading()
	data.Logs = set.FoodLogs.Peek()
	h.renderer.Render(w, status, "food", data)
}

func goalSet(snap resource.Snapshot[*model.CalorieStatus]) bool {
	return snap.Ready() && snap.Data != nil && snap.Data.Goal > 0
}
