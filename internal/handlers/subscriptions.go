package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId} requests.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	channelID, apiErr := parseID(chi.URLParam(r, "channelId"), "channelId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	if channelID == user.ID {
		respondError(ctx, w, errBadRequest("cannot subscribe to your own channel"))
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, user.ID, channelID)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, errBadRequest("cannot subscribe to your own channel"))
			return
		}
		respondError(ctx, w, storeError(err, "channel not found", ""))
		return
	}

	message := "unsubscribed successfully"
	if subscribed {
		message = "subscribed successfully"
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"subscribed": subscribed}, message)
}

// ListSubscribers handles GET /api/v1/subscriptions/u/{channelId} requests.
func (h SubscriptionHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID, apiErr := parseID(chi.URLParam(r, "channelId"), "channelId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	params, apiErr := parseListParams(r)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	subscribers, total, err := h.Subscriptions.ListSubscribers(ctx, channelID, params)
	if err != nil {
		logging.FromContext(ctx).Error("list subscribers", "error", err, "channelId", channelID)
		respondError(ctx, w, errInternal("failed to fetch subscribers"))
		return
	}
	if subscribers == nil {
		subscribers = []models.OwnerSummary{}
	}

	data := newPageMeta(params, total).attachTo(map[string]any{"subscribers": subscribers}, "totalSubscribers")
	respondJSON(ctx, w, http.StatusOK, data, "subscribers fetched successfully")
}

// ListSubscribedChannels handles GET /api/v1/subscriptions/c/{channelId}
// requests, where the path id names the subscriber whose channels are listed.
func (h SubscriptionHandler) ListSubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID, apiErr := parseID(chi.URLParam(r, "channelId"), "subscriberId")
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	params, apiErr := parseListParams(r)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	channels, total, err := h.Subscriptions.ListSubscribedChannels(ctx, subscriberID, params)
	if err != nil {
		logging.FromContext(ctx).Error("list subscribed channels", "error", err, "subscriberId", subscriberID)
		respondError(ctx, w, errInternal("failed to fetch subscribed channels"))
		return
	}
	if channels == nil {
		channels = []models.OwnerSummary{}
	}

	data := newPageMeta(params, total).attachTo(map[string]any{"channels": channels}, "totalChannels")
	respondJSON(ctx, w, http.StatusOK, data, "subscribed channels fetched successfully")
}
