package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
)

// CommentHandler implements the per-video comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	NowFunc  func() time.Time
}

// ListForVideo handles GET /api/v1/comments/{videoId} requests.
func (h CommentHandler) ListForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID, apiErr := parseID(chi.URLParam(r, "videoId"), "videoId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	params, apiErr := parseListParams(r)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	comments, total, err := h.Comments.ListForVideo(ctx, videoID, params)
	if err != nil {
		logging.FromContext(ctx).Error("list comments", "error", err, "videoId", videoID)
		respondError(ctx, w, errInternal("failed to fetch comments"))
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	data := newPageMeta(params, total).attachTo(map[string]any{"comments": comments}, "totalComments")
	respondJSON(ctx, w, http.StatusOK, data, "comments fetched successfully")
}

type commentRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/v1/comments/{videoId} requests.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	videoID, apiErr := parseID(chi.URLParam(r, "videoId"), "videoId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, errBadRequest("content is required"))
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   user.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, storeError(err, "video not found", ""))
		return
	}

	created, err := h.Comments.FindByID(ctx, comment.ID)
	if err != nil {
		logging.FromContext(ctx).Error("load created comment", "error", err, "commentId", comment.ID)
		respondError(ctx, w, errInternal("failed to add comment"))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, created, "comment added successfully")
}

// Update handles PATCH /api/v1/comments/c/{commentId} requests. Only the
// comment author may edit it.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	commentID, apiErr := parseID(chi.URLParam(r, "commentId"), "commentId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, errBadRequest("content is required"))
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondError(ctx, w, storeError(err, "comment not found", ""))
		return
	}
	if comment.OwnerID != user.ID {
		respondError(ctx, w, errForbidden("only the author can edit this comment"))
		return
	}

	updated, err := h.Comments.UpdateContent(ctx, commentID, req.Content)
	if err != nil {
		respondError(ctx, w, storeError(err, "comment not found", ""))
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated, "comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/c/{commentId} requests.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	commentID, apiErr := parseID(chi.URLParam(r, "commentId"), "commentId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondError(ctx, w, storeError(err, "comment not found", ""))
		return
	}
	if comment.OwnerID != user.ID {
		respondError(ctx, w, errForbidden("only the author can delete this comment"))
		return
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		respondError(ctx, w, storeError(err, "comment not found", ""))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{}, "comment deleted successfully")
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
