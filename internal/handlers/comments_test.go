package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cliptube/backend/internal/models"
)

func TestCommentHandlerCreate(t *testing.T) {
	store := newStubCommentStore()
	handler := CommentHandler{Comments: store}
	author := models.User{ID: newID(), Username: "author"}
	videoID := newID()

	body, _ := json.Marshal(commentRequest{Content: "great video"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/"+videoID, bytes.NewReader(body))
	req = withURLParams(asUser(req, author), map[string]string{"videoId": videoID})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if len(store.comments) != 1 {
		t.Fatalf("expected one stored comment, got %d", len(store.comments))
	}
	for _, comment := range store.comments {
		if comment.VideoID != videoID || comment.OwnerID != author.ID {
			t.Fatalf("unexpected stored comment: %+v", comment)
		}
	}
}

func TestCommentHandlerCreateRejectsEmptyContent(t *testing.T) {
	handler := CommentHandler{Comments: newStubCommentStore()}
	author := models.User{ID: newID(), Username: "author"}
	videoID := newID()

	body, _ := json.Marshal(commentRequest{Content: "  "})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/"+videoID, bytes.NewReader(body))
	req = withURLParams(asUser(req, author), map[string]string{"videoId": videoID})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCommentHandlerUpdateForbiddenForNonAuthor(t *testing.T) {
	store := newStubCommentStore()
	comment := models.Comment{ID: newID(), VideoID: newID(), OwnerID: newID(), Content: "original"}
	store.comments[comment.ID] = comment
	handler := CommentHandler{Comments: store}

	body, _ := json.Marshal(commentRequest{Content: "edited"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/comments/c/"+comment.ID, bytes.NewReader(body))
	req = withURLParams(asUser(req, models.User{ID: newID()}), map[string]string{"commentId": comment.ID})
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
	if store.comments[comment.ID].Content != "original" {
		t.Fatal("comment content should be unchanged")
	}
}

func TestCommentHandlerDeleteMissingComment(t *testing.T) {
	handler := CommentHandler{Comments: newStubCommentStore()}
	commentID := newID()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/comments/c/"+commentID, nil)
	req = withURLParams(asUser(req, models.User{ID: newID()}), map[string]string{"commentId": commentID})
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}
