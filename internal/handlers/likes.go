package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
)

// LikeHandler implements the like toggles for videos, comments and tweets.
type LikeHandler struct {
	Likes LikeStore
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId} requests.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "videoId", "video", h.Likes.ToggleVideo)
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId} requests.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "commentId", "comment", h.Likes.ToggleComment)
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId} requests.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "tweetId", "tweet", h.Likes.ToggleTweet)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, param, kind string, fn func(ctx context.Context, userID, targetID string) (bool, error)) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	targetID, apiErr := parseID(chi.URLParam(r, param), param)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	liked, err := fn(ctx, user.ID, targetID)
	if err != nil {
		respondError(ctx, w, storeError(err, kind+" not found", ""))
		return
	}

	message := kind + " unliked successfully"
	if liked {
		message = kind + " liked successfully"
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"liked": liked}, message)
}

// ListLikedVideos handles GET /api/v1/likes/videos requests.
func (h LikeHandler) ListLikedVideos(w http.ResponseWriter, r *http.Request) {
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

	videos, total, err := h.Likes.ListLikedVideos(ctx, user.ID, params)
	if err != nil {
		logging.FromContext(ctx).Error("list liked videos", "error", err, "userId", user.ID)
		respondError(ctx, w, errInternal("failed to fetch liked videos"))
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	data := newPageMeta(params, total).attachTo(map[string]any{"videos": videos}, "totalVideos")
	respondJSON(ctx, w, http.StatusOK, data, "liked videos fetched successfully")
}
