package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

const maxMultipartMemory = 64 << 20

// UserHandler implements registration, session, and profile endpoints.
type UserHandler struct {
	Users         UserStore
	Tokens        TokenManager
	Media         MediaStorage
	AuthLimiter   RateLimiter
	CookieSecure  bool
	UploadTimeout time.Duration
	NowFunc       func() time.Time
}

// Register handles POST /api/v1/users/register requests.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.AuthLimiter, r, "register") {
		respondError(ctx, w, &apiError{Status: http.StatusTooManyRequests, Message: "too many registration attempts"})
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		respondError(ctx, w, errBadRequest("invalid multipart form"))
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	if fullName == "" || username == "" || email == "" || password == "" {
		respondError(ctx, w, errBadRequest("fullName, username, email and password are required"))
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, errBadRequest("invalid email address"))
		return
	}
	if len(password) < 8 {
		respondError(ctx, w, errBadRequest("password must be at least 8 characters"))
		return
	}

	avatarURL, provided, apiErr := uploadFile(ctx, h.Media, r, "avatar", "avatars", h.UploadTimeout)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}
	if !provided {
		respondError(ctx, w, errBadRequest("avatar file is required"))
		return
	}

	coverURL, _, apiErr := uploadFile(ctx, h.Media, r, "coverImage", "covers", h.UploadTimeout)
	if apiErr != nil {
		discardUploads(ctx, h.Media, avatarURL)
		respondError(ctx, w, apiErr)
		return
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		logger.Error("hash password", "error", err)
		discardUploads(ctx, h.Media, avatarURL, coverURL)
		respondError(ctx, w, errInternal("failed to secure password"))
		return
	}

	now := h.now()
	user := models.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		FullName:      fullName,
		Password:      hashed,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		discardUploads(ctx, h.Media, avatarURL, coverURL)
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, errConflict("username or email already registered"))
			return
		}
		logger.Error("create user", "error", err)
		respondError(ctx, w, errInternal("failed to create account"))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, user.Public(), "user registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/users/login requests. Either username or email
// identifies the account.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.AuthLimiter, r, "login") {
		respondError(ctx, w, &apiError{Status: http.StatusTooManyRequests, Message: "too many login attempts"})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if (req.Username == "" && req.Email == "") || req.Password == "" {
		respondError(ctx, w, errBadRequest("username or email, and password are required"))
		return
	}

	var (
		user models.User
		err  error
	)
	if req.Email != "" {
		user, err = h.Users.FindByEmail(ctx, req.Email)
	} else {
		user, err = h.Users.FindByUsername(ctx, req.Username)
	}
	if err != nil {
		logger.Warn("login user lookup failed", "error", err)
		respondError(ctx, w, errUnauthorized("invalid credentials"))
		return
	}

	if !auth.VerifyPassword(req.Password, user.Password) {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, errUnauthorized("invalid credentials"))
		return
	}

	pair, err := h.Tokens.IssuePair(user.ID)
	if err != nil {
		logger.Error("issue tokens", "error", err, "userId", user.ID)
		respondError(ctx, w, errInternal("failed to create session"))
		return
	}

	if err := h.Users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		logger.Error("persist refresh token", "error", err, "userId", user.ID)
		respondError(ctx, w, errInternal("failed to create session"))
		return
	}

	setAuthCookies(w, pair, h.CookieSecure)
	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"user":         user.Public(),
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "logged in successfully")
}

// Logout handles POST /api/v1/users/logout requests.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	if err := h.Users.SetRefreshToken(ctx, user.ID, ""); err != nil {
		logging.FromContext(ctx).Error("clear refresh token", "error", err, "userId", user.ID)
		respondError(ctx, w, errInternal("failed to log out"))
		return
	}

	clearAuthCookies(w, h.CookieSecure)
	respondJSON(ctx, w, http.StatusOK, map[string]any{}, "logged out successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /api/v1/users/refresh-token requests, rotating the
// single active refresh token.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	presented := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			presented = strings.TrimSpace(req.RefreshToken)
		}
	}
	if presented == "" {
		respondError(ctx, w, errUnauthorized("refresh token is required"))
		return
	}

	uid, err := h.Tokens.VerifyRefreshToken(presented)
	if err != nil {
		respondError(ctx, w, errUnauthorized("invalid refresh token"))
		return
	}

	user, err := h.Users.FindByID(ctx, uid)
	if err != nil {
		respondError(ctx, w, errUnauthorized("invalid refresh token"))
		return
	}

	// A rotated-away token still verifies but no longer matches the stored
	// value; reject it so a stolen old token cannot mint sessions.
	if user.RefreshToken == "" || user.RefreshToken != presented {
		logger.Warn("refresh token reuse detected", "userId", user.ID)
		respondError(ctx, w, errUnauthorized("refresh token expired or already used"))
		return
	}

	pair, err := h.Tokens.IssuePair(user.ID)
	if err != nil {
		logger.Error("issue tokens", "error", err, "userId", user.ID)
		respondError(ctx, w, errInternal("failed to refresh session"))
		return
	}

	if err := h.Users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		logger.Error("persist refresh token", "error", err, "userId", user.ID)
		respondError(ctx, w, errInternal("failed to refresh session"))
		return
	}

	setAuthCookies(w, pair, h.CookieSecure)
	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "session refreshed successfully")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword handles POST /api/v1/users/change-password requests.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	if len(req.NewPassword) < 8 {
		respondError(ctx, w, errBadRequest("password must be at least 8 characters"))
		return
	}

	if !auth.VerifyPassword(req.OldPassword, user.Password) {
		respondError(ctx, w, errUnauthorized("incorrect password"))
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		logging.FromContext(ctx).Error("hash password", "error", err)
		respondError(ctx, w, errInternal("failed to secure password"))
		return
	}

	if err := h.Users.SetPassword(ctx, user.ID, hashed); err != nil {
		logging.FromContext(ctx).Error("set password", "error", err, "userId", user.ID)
		respondError(ctx, w, errInternal("failed to change password"))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{}, "password changed successfully")
}

// CurrentUser handles GET /api/v1/users/current-user requests.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	respondJSON(ctx, w, http.StatusOK, user.Public(), "current user fetched successfully")
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UpdateAccount handles PATCH /api/v1/users/update-account requests.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, apiErr := currentUser(ctx)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" {
		respondError(ctx, w, errBadRequest("fullName and email are required"))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(ctx, w, errBadRequest("invalid email address"))
		return
	}

	updated, err := h.Users.UpdateAccount(ctx, user.ID, req.FullName, req.Email)
	if err != nil {
		respondError(ctx, w, storeError(err, "user not found", "email already in use"))
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated.Public(), "account updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar requests.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", "avatars", "avatar_url")
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image requests.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", "covers", "cover_image_url")
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field, prefix, column string) {
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

	url, provided, apiErr := uploadFile(ctx, h.Media, r, field, prefix, h.UploadTimeout)
	if apiErr != nil {
		respondError(ctx, w, apiErr)
		return
	}
	if !provided {
		respondError(ctx, w, errBadRequest(field+" file is required"))
		return
	}

	previous := user.AvatarURL
	if column == "cover_image_url" {
		previous = user.CoverImageURL
	}

	updated, err := h.Users.SetImage(ctx, user.ID, column, url)
	if err != nil {
		discardUploads(ctx, h.Media, url)
		respondError(ctx, w, storeError(err, "user not found", ""))
		return
	}

	if previous != "" {
		if err := h.Media.Delete(ctx, previous); err != nil {
			logger.Warn("delete replaced image", "error", err, "url", previous)
		}
	}

	respondJSON(ctx, w, http.StatusOK, updated.Public(), field+" updated successfully")
}

// ChannelProfile handles GET /api/v1/users/c/{username} requests.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "username")))
	if username == "" {
		respondError(ctx, w, errBadRequest("username is required"))
		return
	}

	viewerID := ""
	if viewer, ok := middleware.UserFromContext(ctx); ok {
		viewerID = viewer.ID
	}

	profile, err := h.Users.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		respondError(ctx, w, storeError(err, "channel not found", ""))
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile, "channel profile fetched successfully")
}

// WatchHistory handles GET /api/v1/users/history requests.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
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

	entries, total, err := h.Users.WatchHistory(ctx, user.ID, params)
	if err != nil {
		logging.FromContext(ctx).Error("list watch history", "error", err, "userId", user.ID)
		respondError(ctx, w, errInternal("failed to fetch watch history"))
		return
	}
	if entries == nil {
		entries = []models.WatchEntry{}
	}

	data := newPageMeta(params, total).attachTo(map[string]any{"history": entries}, "totalItems")
	respondJSON(ctx, w, http.StatusOK, data, "watch history fetched successfully")
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
