package handlers

import (
	"net/http"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// DashboardHandler serves the channel owner's aggregate views.
type DashboardHandler struct {
	Dashboard DashboardStore
	Videos    VideoStore
}

// Stats handles GET /api/v1/dashboard/stats requests.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	stats, err := h.Dashboard.ChannelStats(ctx, user.ID)
	if err != nil {
		logging.FromContext(ctx).Error("channel stats", "error", err, "userId", user.ID)
		respondError(ctx, w, errInternal("failed to fetch channel stats"))
		return
	}

	respondJSON(ctx, w, http.StatusOK, stats, "channel stats fetched successfully")
}

// Videos handles GET /api/v1/dashboard/videos requests, listing the owner's
// videos including unpublished ones.
func (h DashboardHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	params, apiErr := parseListParams(r)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	filter := repositories.VideoFilter{OwnerID: user.ID}
	videos, total, err := h.Videos.List(ctx, params, filter)
	if err != nil {
		logging.FromContext(ctx).Error("list channel videos", "error", err, "userId", user.ID)
		respondError(ctx, w, errInternal("failed to fetch channel videos"))
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	data := newPageMeta(params, total).attachTo(map[string]any{"videos": videos}, "totalVideos")
	respondJSON(ctx, w, http.StatusOK, data, "channel videos fetched successfully")
}
