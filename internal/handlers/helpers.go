package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
)

// defaultUploadTimeout bounds media uploads when no explicit timeout is wired.
const defaultUploadTimeout = 2 * time.Minute

// parseID validates a path identifier as a UUID.
func parseID(raw, what string) (string, *apiError) {
	if _, err := uuid.Parse(raw); err != nil {
		return "", errBadRequest(fmt.Sprintf("invalid %s id", what))
	}
	return raw, nil
}

// currentUser fetches the authenticated identity attached by the session middleware.
func currentUser(ctx context.Context) (models.User, *apiError) {
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		return models.User{}, errUnauthorized("unauthorized request")
	}
	return user, nil
}

// uploadFile streams a multipart file field to media storage under a fresh
// key and returns its public URL. When the field is absent it returns
// ("", false, nil) so callers decide whether that is an error.
func uploadFile(ctx context.Context, media MediaStorage, r *http.Request, field, prefix string, timeout time.Duration) (string, bool, *apiError) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", false, nil
		}
		return "", false, errBadRequest(fmt.Sprintf("invalid %s upload", field))
	}
	defer file.Close()

	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	ctx, span := logging.StartSpan(ctx, "media.upload")
	defer span.End()
	uploadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)

	url, err := media.Save(uploadCtx, key, file)
	if err != nil {
		return "", true, errInternal(fmt.Sprintf("failed to upload %s", field))
	}

	return url, true, nil
}

// discardUploads removes files stored for a request whose later steps failed,
// so aborted registrations and publishes do not leave orphaned objects behind.
// Deletion is best effort.
func discardUploads(ctx context.Context, media MediaStorage, urls ...string) {
	logger := logging.FromContext(ctx)
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := media.Delete(ctx, url); err != nil {
			logger.Warn("discard upload", "error", err, "url", url)
		}
	}
}

// RateLimiter is the minimal interface required to guard sensitive endpoints.
type RateLimiter interface {
	Allow(key string) bool
}

func allowRequest(limiter RateLimiter, r *http.Request, scope string) bool {
	if limiter == nil {
		return true
	}
	return limiter.Allow(rateLimitKey(r, scope))
}

func rateLimitKey(r *http.Request, scope string) string {
	ip := clientIP(r)
	if scope == "" {
		return ip
	}
	return fmt.Sprintf("%s:%s", scope, ip)
}

func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
