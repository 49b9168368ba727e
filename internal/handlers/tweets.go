package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
)

// TweetHandler implements the short-post endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	NowFunc func() time.Time
}

type tweetRequest struct {
	Content string `json:"content"`
}

func validateTweetContent(content string) *apiError {
	if content == "" {
		return errBadRequest("content is required")
	}
	if len([]rune(content)) > models.MaxTweetLength {
		return errBadRequest(fmt.Sprintf("content must be at most %d characters", models.MaxTweetLength))
	}
	return nil
}

// Create handles POST /api/v1/tweets requests.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if apiErr := validateTweetContent(req.Content); apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   user.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		logging.FromContext(ctx).Error("create tweet", "error", err, "userId", user.ID)
		respondError(ctx, w, errInternal("failed to create tweet"))
		return
	}

	created, err := h.Tweets.FindByID(ctx, tweet.ID)
	if err != nil {
		logging.FromContext(ctx).Error("load created tweet", "error", err, "tweetId", tweet.ID)
		respondError(ctx, w, errInternal("failed to create tweet"))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, created, "tweet created successfully")
}

// List handles GET /api/v1/tweets requests. An optional userId query
// parameter narrows the feed to a single author.
func (h TweetHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID := ""
	if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
		id, apiErr := parseID(raw, "userId")
		if apiErr != nil {
			respondError(ctx, w, apiErr)
			return
		}
		ownerID = id
	}

	h.list(w, r, ownerID)
}

// ListForUser handles GET /api/v1/tweets/user/{userId} requests.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ownerID, apiErr := parseID(chi.URLParam(r, "userId"), "userId")
	if apiErr != nil {
		respondError(r.Context(), w, apiErr)
		return
	}

	h.list(w, r, ownerID)
}

func (h TweetHandler) list(w http.ResponseWriter, r *http.Request, ownerID string) {
	ctx := r.Context()

	params, apiErr := parseListParams(r)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	tweets, total, err := h.Tweets.List(ctx, params, ownerID)
	if err != nil {
		logging.FromContext(ctx).Error("list tweets", "error", err, "userId", ownerID)
		respondError(ctx, w, errInternal("failed to fetch tweets"))
		return
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}

	data := newPageMeta(params, total).attachTo(map[string]any{"tweets": tweets}, "totalTweets")
	respondJSON(ctx, w, http.StatusOK, data, "tweets fetched successfully")
}

// Update handles PATCH /api/v1/tweets/{tweetId} requests.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	tweetID, apiErr := parseID(chi.URLParam(r, "tweetId"), "tweetId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if apiErr := validateTweetContent(req.Content); apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		respondError(ctx, w, storeError(err, "tweet not found", ""))
		return
	}
	if tweet.OwnerID != user.ID {
		respondError(ctx, w, errForbidden("only the author can edit this tweet"))
		return
	}

	updated, err := h.Tweets.UpdateContent(ctx, tweetID, req.Content)
	if err != nil {
		respondError(ctx, w, storeError(err, "tweet not found", ""))
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated, "tweet updated successfully")
}

// Delete handles DELETE /api/v1/tweets/{tweetId} requests.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	tweetID, apiErr := parseID(chi.URLParam(r, "tweetId"), "tweetId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		respondError(ctx, w, storeError(err, "tweet not found", ""))
		return
	}
	if tweet.OwnerID != user.ID {
		respondError(ctx, w, errForbidden("only the author can delete this tweet"))
		return
	}

	if err := h.Tweets.Delete(ctx, tweetID); err != nil {
		respondError(ctx, w, storeError(err, "tweet not found", ""))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{}, "tweet deleted successfully")
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
