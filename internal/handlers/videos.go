package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// VideoHandler implements the video catalogue endpoints.
type VideoHandler struct {
	Videos        VideoStore
	Users         UserStore
	Media         MediaStorage
	UploadTimeout time.Duration
	NowFunc       func() time.Time
}

// List handles GET /api/v1/video requests. Unpublished videos are only
// visible when the requester filters by their own userId.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, apiErr := parseListParams(r)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	filter := repositories.VideoFilter{PublishedOnly: true}
	if ownerID := strings.TrimSpace(r.URL.Query().Get("userId")); ownerID != "" {
		id, apiErr := parseID(ownerID, "userId")
		if apiErr != nil {
			respondError(ctx, w, apiErr)
			return
		}
		filter.OwnerID = id
		if viewer, ok := middleware.UserFromContext(ctx); ok && viewer.ID == id {
			filter.PublishedOnly = false
		}
	}

	videos, total, err := h.Videos.List(ctx, params, filter)
	if err != nil {
		logging.FromContext(ctx).Error("list videos", "error", err)
		respondError(ctx, w, errInternal("failed to fetch videos"))
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	data := newPageMeta(params, total).attachTo(map[string]any{"videos": videos}, "totalVideos")
	respondJSON(ctx, w, http.StatusOK, data, "videos fetched successfully")
}

// Publish handles POST /api/v1/video requests. The request is multipart with
// videoFile and thumbnail parts plus title and description fields.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		respondError(ctx, w, errBadRequest("invalid multipart form"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, errBadRequest("title and description are required"))
		return
	}

	duration := 0.0
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			respondError(ctx, w, errBadRequest("duration must be a non-negative number"))
			return
		}
		duration = parsed
	}

	videoURL, provided, apiErr := uploadFile(ctx, h.Media, r, "videoFile", "videos", h.UploadTimeout)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}
	if !provided {
		respondError(ctx, w, errBadRequest("videoFile is required"))
		return
	}

	thumbnailURL, provided, apiErr := uploadFile(ctx, h.Media, r, "thumbnail", "thumbnails", h.UploadTimeout)
	if apiErr != nil {
		discardUploads(ctx, h.Media, videoURL)
		respondError(ctx, w, apiErr)
		return
	}
	if !provided {
		discardUploads(ctx, h.Media, videoURL)
		respondError(ctx, w, errBadRequest("thumbnail is required"))
		return
	}

	now := h.now()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      user.ID,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		Title:        title,
		Description:  description,
		Duration:     duration,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("create video", "error", err, "userId", user.ID)
		discardUploads(ctx, h.Media, videoURL, thumbnailURL)
		respondError(ctx, w, errInternal("failed to publish video"))
		return
	}

	created, err := h.Videos.FindByID(ctx, video.ID)
	if err != nil {
		logger.Error("load created video", "error", err, "videoId", video.ID)
		respondError(ctx, w, errInternal("failed to publish video"))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, created, "video published successfully")
}

// Get handles GET /api/v1/video/{videoId} requests. Authenticated fetches
// also record the video in the viewer's watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID, apiErr := parseID(chi.URLParam(r, "videoId"), "videoId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, storeError(err, "video not found", ""))
		return
	}

	viewer, authed := middleware.UserFromContext(ctx)
	if !video.IsPublished && (!authed || viewer.ID != video.OwnerID) {
		respondError(ctx, w, errNotFound("video not found"))
		return
	}

	if authed {
		if err := h.Users.RecordWatch(ctx, viewer.ID, video.ID); err != nil {
			logging.FromContext(ctx).Warn("record watch", "error", err, "videoId", video.ID)
		}
	}

	respondJSON(ctx, w, http.StatusOK, video, "video fetched successfully")
}

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Update handles PATCH /api/v1/video/{videoId} requests. Only the owner may
// update a video. The thumbnail may be replaced via a multipart part.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

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

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, storeError(err, "video not found", ""))
		return
	}
	if video.OwnerID != user.ID {
		respondError(ctx, w, errForbidden("only the owner can update this video"))
		return
	}

	var req updateVideoRequest
	replacedThumbnail := ""
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			respondError(ctx, w, errBadRequest("invalid multipart form"))
			return
		}
		req.Title = r.FormValue("title")
		req.Description = r.FormValue("description")

		url, provided, apiErr := uploadFile(ctx, h.Media, r, "thumbnail", "thumbnails", h.UploadTimeout)
		if apiErr != nil {
			respondError(ctx, w, apiErr)
			return
		}
		if provided {
			replacedThumbnail = video.ThumbnailURL
			video.ThumbnailURL = url
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(ctx, w, errBadRequest("invalid request body"))
			return
		}
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		video.Title = title
	}
	if description := strings.TrimSpace(req.Description); description != "" {
		video.Description = description
	}
	video.UpdatedAt = h.now()

	updated, err := h.Videos.Update(ctx, video)
	if err != nil {
		if replacedThumbnail != "" {
			discardUploads(ctx, h.Media, video.ThumbnailURL)
		}
		respondError(ctx, w, storeError(err, "video not found", ""))
		return
	}

	// The old thumbnail stays until the new URL is persisted, so a failed
	// write never leaves the record pointing at a deleted object.
	if replacedThumbnail != "" {
		if err := h.Media.Delete(ctx, replacedThumbnail); err != nil {
			logger.Warn("delete replaced thumbnail", "error", err, "url", replacedThumbnail)
		}
	}

	respondJSON(ctx, w, http.StatusOK, updated, "video updated successfully")
}

// Delete handles DELETE /api/v1/video/{videoId} requests. Stored media is
// removed best-effort after the row is gone.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

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

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, storeError(err, "video not found", ""))
		return
	}
	if video.OwnerID != user.ID {
		respondError(ctx, w, errForbidden("only the owner can delete this video"))
		return
	}

	if err := h.Videos.Delete(ctx, videoID); err != nil {
		respondError(ctx, w, storeError(err, "video not found", ""))
		return
	}

	for _, url := range []string{video.VideoURL, video.ThumbnailURL} {
		if url == "" {
			continue
		}
		if err := h.Media.Delete(ctx, url); err != nil {
			logger.Warn("delete video media", "error", err, "url", url)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{}, "video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/video/toggle/publish/{videoId} requests.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
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

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, storeError(err, "video not found", ""))
		return
	}
	if video.OwnerID != user.ID {
		respondError(ctx, w, errForbidden("only the owner can change publish status"))
		return
	}

	updated, err := h.Videos.TogglePublish(ctx, videoID)
	if err != nil {
		respondError(ctx, w, storeError(err, "video not found", ""))
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated, "publish status toggled successfully")
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
