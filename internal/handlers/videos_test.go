package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cliptube/backend/internal/models"
)

func seedVideo(store *stubVideoStore, ownerID string, published bool) models.Video {
	video := models.Video{
		ID:          newID(),
		OwnerID:     ownerID,
		Title:       "clip",
		Description: "a clip",
		IsPublished: published,
	}
	store.videos[video.ID] = video
	return video
}

func TestVideoHandlerGetRecordsWatchForViewer(t *testing.T) {
	videos := newStubVideoStore()
	users := newStubUserStore()
	viewer := models.User{ID: newID(), Username: "viewer"}
	users.users[viewer.ID] = viewer
	video := seedVideo(videos, newID(), true)

	handler := VideoHandler{Videos: videos, Users: users, Media: &stubMedia{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/video/"+video.ID, nil)
	req = withURLParams(asUser(req, viewer), map[string]string{"videoId": video.ID})
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if len(users.watched[viewer.ID]) != 1 {
		t.Fatalf("expected one watch history entry, got %d", len(users.watched[viewer.ID]))
	}
}

func TestVideoHandlerGetHidesUnpublishedFromOthers(t *testing.T) {
	videos := newStubVideoStore()
	users := newStubUserStore()
	owner := models.User{ID: newID(), Username: "owner"}
	stranger := models.User{ID: newID(), Username: "stranger"}
	video := seedVideo(videos, owner.ID, false)

	handler := VideoHandler{Videos: videos, Users: users, Media: &stubMedia{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/video/"+video.ID, nil)
	req = withURLParams(asUser(req, stranger), map[string]string{"videoId": video.ID})
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}

	// The owner still sees their own draft.
	ownerReq := httptest.NewRequest(http.MethodGet, "/api/v1/video/"+video.ID, nil)
	ownerReq = withURLParams(asUser(ownerReq, owner), map[string]string{"videoId": video.ID})
	ownerRec := httptest.NewRecorder()

	handler.Get(ownerRec, ownerReq)

	if ownerRec.Code != http.StatusOK {
		t.Fatalf("expected status %d for owner, got %d", http.StatusOK, ownerRec.Code)
	}
}

func TestVideoHandlerTogglePublishForbiddenForNonOwner(t *testing.T) {
	videos := newStubVideoStore()
	stranger := models.User{ID: newID(), Username: "stranger"}
	video := seedVideo(videos, newID(), true)

	handler := VideoHandler{Videos: videos, Users: newStubUserStore(), Media: &stubMedia{}}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/video/toggle/publish/"+video.ID, nil)
	req = withURLParams(asUser(req, stranger), map[string]string{"videoId": video.ID})
	rec := httptest.NewRecorder()

	handler.TogglePublish(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
	if !videos.videos[video.ID].IsPublished {
		t.Fatal("publish state should be unchanged")
	}
}

func TestVideoHandlerDeleteRemovesMedia(t *testing.T) {
	videos := newStubVideoStore()
	media := &stubMedia{}
	owner := models.User{ID: newID(), Username: "owner"}
	video := models.Video{
		ID:           newID(),
		OwnerID:      owner.ID,
		VideoURL:     "https://media.test/videos/a.mp4",
		ThumbnailURL: "https://media.test/thumbnails/a.png",
		IsPublished:  true,
	}
	videos.videos[video.ID] = video

	handler := VideoHandler{Videos: videos, Users: newStubUserStore(), Media: media}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/video/"+video.ID, nil)
	req = withURLParams(asUser(req, owner), map[string]string{"videoId": video.ID})
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if _, remains := videos.videos[video.ID]; remains {
		t.Fatal("expected video to be deleted")
	}
	if len(media.deleted) != 2 {
		t.Fatalf("expected both media objects deleted, got %v", media.deleted)
	}
}

func TestVideoHandlerListPaginationMeta(t *testing.T) {
	videos := newStubVideoStore()
	ownerID := newID()
	for i := 0; i < 25; i++ {
		seedVideo(videos, ownerID, true)
	}

	handler := VideoHandler{Videos: videos, Users: newStubUserStore(), Media: &stubMedia{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/video?page=2&limit=10", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Videos      []models.Video `json:"videos"`
			TotalVideos int            `json:"totalVideos"`
			TotalPages  int            `json:"totalPages"`
			CurrentPage int            `json:"currentPage"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(envelope.Data.Videos) != 10 {
		t.Fatalf("expected 10 videos on page 2, got %d", len(envelope.Data.Videos))
	}
	if envelope.Data.TotalVideos != 25 || envelope.Data.TotalPages != 3 || envelope.Data.CurrentPage != 2 {
		t.Fatalf("unexpected meta: %+v", envelope.Data)
	}
}

func TestVideoHandlerListRejectsInvalidLimit(t *testing.T) {
	handler := VideoHandler{Videos: newStubVideoStore(), Users: newStubUserStore(), Media: &stubMedia{}}

	for _, query := range []string{"limit=0", "limit=-5", "page=0", "limit=abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/video?"+query, nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("query %q: expected status %d got %d", query, http.StatusBadRequest, rec.Code)
		}
	}
}

func TestVideoHandlerPublishRequiresFiles(t *testing.T) {
	owner := models.User{ID: newID(), Username: "owner"}
	handler := VideoHandler{Videos: newStubVideoStore(), Users: newStubUserStore(), Media: &stubMedia{}}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("title", "my clip")
	_ = writer.WriteField("description", "without a file")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/video", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.Publish(rec, asUser(req, owner))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestVideoHandlerPublishUploadsBothFiles(t *testing.T) {
	videos := newStubVideoStore()
	media := &stubMedia{}
	owner := models.User{ID: newID(), Username: "owner"}
	handler := VideoHandler{Videos: videos, Users: newStubUserStore(), Media: media}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("title", "my clip")
	_ = writer.WriteField("description", "with files")
	_ = writer.WriteField("duration", "12.5")
	filePart, _ := writer.CreateFormFile("videoFile", "clip.mp4")
	_, _ = filePart.Write([]byte("video-bytes"))
	thumbPart, _ := writer.CreateFormFile("thumbnail", "thumb.png")
	_, _ = thumbPart.Write([]byte("thumb-bytes"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/video", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.Publish(rec, asUser(req, owner))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if len(media.saved) != 2 {
		t.Fatalf("expected two uploads, got %v", media.saved)
	}
	if len(videos.videos) != 1 {
		t.Fatalf("expected one stored video, got %d", len(videos.videos))
	}
	for _, video := range videos.videos {
		if video.Duration != 12.5 || !video.IsPublished || video.OwnerID != owner.ID {
			t.Fatalf("unexpected stored video: %+v", video)
		}
	}
}

type failingUpdateVideoStore struct {
	*stubVideoStore
}

func (s failingUpdateVideoStore) Update(context.Context, models.Video) (models.Video, error) {
	return models.Video{}, errors.New("write failed")
}

func newThumbnailPatch(t *testing.T, videoID string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("thumbnail", "new.png")
	_, _ = part.Write([]byte("new-thumb-bytes"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/video/"+videoID, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return withURLParams(req, map[string]string{"videoId": videoID})
}

func TestVideoHandlerUpdateKeepsOldThumbnailWhenWriteFails(t *testing.T) {
	videos := newStubVideoStore()
	media := &stubMedia{}
	owner := models.User{ID: newID(), Username: "owner"}
	video := seedVideo(videos, owner.ID, true)
	video.ThumbnailURL = "https://media.test/thumbnails/old.png"
	videos.videos[video.ID] = video

	handler := VideoHandler{Videos: failingUpdateVideoStore{videos}, Users: newStubUserStore(), Media: media}

	rec := httptest.NewRecorder()
	handler.Update(rec, asUser(newThumbnailPatch(t, video.ID), owner))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d got %d: %s", http.StatusInternalServerError, rec.Code, rec.Body.String())
	}
	for _, url := range media.deleted {
		if url == video.ThumbnailURL {
			t.Fatalf("old thumbnail %s deleted although the record still references it", url)
		}
	}
	discardedNew := false
	for _, url := range media.deleted {
		if strings.HasPrefix(url, "https://media.test/thumbnails/") {
			discardedNew = true
		}
	}
	if !discardedNew {
		t.Fatalf("expected the unused replacement upload to be discarded, deleted: %v", media.deleted)
	}
}

func TestVideoHandlerUpdateDeletesOldThumbnailAfterWrite(t *testing.T) {
	videos := newStubVideoStore()
	media := &stubMedia{}
	owner := models.User{ID: newID(), Username: "owner"}
	video := seedVideo(videos, owner.ID, true)
	video.ThumbnailURL = "https://media.test/thumbnails/old.png"
	videos.videos[video.ID] = video

	handler := VideoHandler{Videos: videos, Users: newStubUserStore(), Media: media}

	rec := httptest.NewRecorder()
	handler.Update(rec, asUser(newThumbnailPatch(t, video.ID), owner))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if len(media.deleted) != 1 || media.deleted[0] != video.ThumbnailURL {
		t.Fatalf("expected only the old thumbnail to be deleted, got %v", media.deleted)
	}
	stored := videos.videos[video.ID]
	if stored.ThumbnailURL == video.ThumbnailURL || stored.ThumbnailURL == "" {
		t.Fatalf("expected a new thumbnail URL to be stored, got %q", stored.ThumbnailURL)
	}
}

func TestVideoHandlerPublishDiscardsUploadsOnMissingThumbnail(t *testing.T) {
	media := &stubMedia{}
	owner := models.User{ID: newID(), Username: "owner"}
	handler := VideoHandler{Videos: newStubVideoStore(), Users: newStubUserStore(), Media: media}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("title", "my clip")
	_ = writer.WriteField("description", "video only")
	filePart, _ := writer.CreateFormFile("videoFile", "clip.mp4")
	_, _ = filePart.Write([]byte("video-bytes"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/video", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.Publish(rec, asUser(req, owner))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	if len(media.deleted) != 1 || !strings.HasPrefix(media.deleted[0], "https://media.test/videos/") {
		t.Fatalf("expected the orphaned video upload to be deleted, got %v", media.deleted)
	}
}
