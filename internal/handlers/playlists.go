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

// PlaylistHandler implements playlist CRUD and membership endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	NowFunc   func() time.Time
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /api/v1/playlist requests.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		respondError(ctx, w, errBadRequest("name is required"))
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     user.ID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		logging.FromContext(ctx).Error("create playlist", "error", err, "userId", user.ID)
		respondError(ctx, w, errInternal("failed to create playlist"))
		return
	}

	playlist.Videos = []models.Video{}
	respondJSON(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// Get handles GET /api/v1/playlist/{playlistId} requests.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlistID, apiErr := parseID(chi.URLParam(r, "playlistId"), "playlistId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, storeError(err, "playlist not found", ""))
		return
	}

	respondJSON(ctx, w, http.StatusOK, playlist, "playlist fetched successfully")
}

// ListForUser handles GET /api/v1/playlist/user/{userId} requests.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, apiErr := parseID(chi.URLParam(r, "userId"), "userId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	params, apiErr := parseListParams(r)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	playlists, total, err := h.Playlists.ListForUser(ctx, ownerID, params)
	if err != nil {
		logging.FromContext(ctx).Error("list playlists", "error", err, "userId", ownerID)
		respondError(ctx, w, errInternal("failed to fetch playlists"))
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}

	data := newPageMeta(params, total).attachTo(map[string]any{"playlists": playlists}, "totalPlaylists")
	respondJSON(ctx, w, http.StatusOK, data, "playlists fetched successfully")
}

// Update handles PATCH /api/v1/playlist/{playlistId} requests.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	playlistID, apiErr := parseID(chi.URLParam(r, "playlistId"), "playlistId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		respondError(ctx, w, errBadRequest("name is required"))
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, storeError(err, "playlist not found", ""))
		return
	}
	if playlist.OwnerID != user.ID {
		respondError(ctx, w, errForbidden("only the owner can update this playlist"))
		return
	}

	updated, err := h.Playlists.Update(ctx, playlistID, req.Name, req.Description)
	if err != nil {
		respondError(ctx, w, storeError(err, "playlist not found", ""))
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated, "playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlist/{playlistId} requests.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	playlistID, apiErr := parseID(chi.URLParam(r, "playlistId"), "playlistId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, storeError(err, "playlist not found", ""))
		return
	}
	if playlist.OwnerID != user.ID {
		respondError(ctx, w, errForbidden("only the owner can delete this playlist"))
		return
	}

	if err := h.Playlists.Delete(ctx, playlistID); err != nil {
		respondError(ctx, w, storeError(err, "playlist not found", ""))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{}, "playlist deleted successfully")
}

// AddVideo handles PATCH /api/v1/playlist/add/{videoId}/{playlistId} requests.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
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
	playlistID, apiErr := parseID(chi.URLParam(r, "playlistId"), "playlistId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, storeError(err, "playlist not found", ""))
		return
	}
	if playlist.OwnerID != user.ID {
		respondError(ctx, w, errForbidden("only the owner can modify this playlist"))
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlistID, videoID); err != nil {
		respondError(ctx, w, storeError(err, "video not found", "video already in playlist"))
		return
	}

	updated, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, storeError(err, "playlist not found", ""))
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated, "video added to playlist successfully")
}

// RemoveVideo handles PATCH /api/v1/playlist/remove/{videoId}/{playlistId} requests.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
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
	playlistID, apiErr := parseID(chi.URLParam(r, "playlistId"), "playlistId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, storeError(err, "playlist not found", ""))
		return
	}
	if playlist.OwnerID != user.ID {
		respondError(ctx, w, errForbidden("only the owner can modify this playlist"))
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlistID, videoID); err != nil {
		respondError(ctx, w, storeError(err, "video not in playlist", ""))
		return
	}

	updated, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, storeError(err, "playlist not found", ""))
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated, "video removed from playlist successfully")
}

// SavedStatus handles GET /api/v1/playlist/video/{videoId} requests, reporting
// whether the requester has the video saved in any of their playlists.
func (h PlaylistHandler) SavedStatus(w http.ResponseWriter, r *http.Request) {
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

	saved, err := h.Playlists.IsVideoSaved(ctx, user.ID, videoID)
	if err != nil {
		logging.FromContext(ctx).Error("check saved status", "error", err, "videoId", videoID)
		respondError(ctx, w, errInternal("failed to check saved status"))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"saved": saved}, "saved status fetched successfully")
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
