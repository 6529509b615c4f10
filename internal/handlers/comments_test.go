package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/satwikgupta/backend-project/internal/models"
	"github.com/satwikgupta/backend-project/internal/repositories"
)

type fakeCommentStore struct {
	comments   map[string]models.Comment
	lastOffset int
	lastLimit  int
	createErr  error
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[string]models.Comment)}
}

func (f *fakeCommentStore) Create(_ context.Context, comment models.Comment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.comments[comment.ID] = comment
	return nil
}

func (f *fakeCommentStore) ListForVideo(_ context.Context, videoID string, offset, limit int) ([]models.Comment, error) {
	f.lastOffset = offset
	f.lastLimit = limit

	var out []models.Comment
	for _, comment := range f.comments {
		if comment.VideoID == videoID {
			out = append(out, comment)
		}
	}
	return out, nil
}

func (f *fakeCommentStore) Update(_ context.Context, id, ownerID, content string) error {
	comment, ok := f.comments[id]
	if !ok || comment.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	comment.Content = content
	f.comments[id] = comment
	return nil
}

func (f *fakeCommentStore) Delete(_ context.Context, id, ownerID string) error {
	comment, ok := f.comments[id]
	if !ok || comment.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

func TestCommentHandlerList(t *testing.T) {
	store := newFakeCommentStore()
	store.comments["c-1"] = models.Comment{ID: "c-1", VideoID: "vid-1", OwnerID: "acc-1", Content: "nice"}
	store.comments["c-2"] = models.Comment{ID: "c-2", VideoID: "vid-2", OwnerID: "acc-1", Content: "other video"}
	handler := CommentHandler{Comments: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/vid-1/comments?page=2&limit=5", nil)
	req.SetPathValue("videoId", "vid-1")
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if store.lastOffset != 5 || store.lastLimit != 5 {
		t.Fatalf("expected offset 5 limit 5, got offset %d limit %d", store.lastOffset, store.lastLimit)
	}
}

func TestCommentHandlerListBadPagination(t *testing.T) {
	handler := CommentHandler{Comments: newFakeCommentStore()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/vid-1/comments?limit=0", nil)
	req.SetPathValue("videoId", "vid-1")
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCommentHandlerAdd(t *testing.T) {
	store := newFakeCommentStore()
	handler := CommentHandler{Comments: store}

	body, _ := json.Marshal(commentRequest{Content: "great video"})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/api/v1/videos/vid-1/comments", bytes.NewReader(body)), "acc-1")
	req.SetPathValue("videoId", "vid-1")
	rec := httptest.NewRecorder()

	handler.Add(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec.Body)
	var created models.Comment
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode comment: %v", err)
	}
	if created.VideoID != "vid-1" || created.OwnerID != "acc-1" || created.Content != "great video" {
		t.Fatalf("unexpected comment %+v", created)
	}
	if _, ok := store.comments[created.ID]; !ok {
		t.Fatal("expected comment to be stored")
	}
}

func TestCommentHandlerAddValidation(t *testing.T) {
	handler := CommentHandler{Comments: newFakeCommentStore()}

	body, _ := json.Marshal(commentRequest{Content: "   "})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/api/v1/videos/vid-1/comments", bytes.NewReader(body)), "acc-1")
	req.SetPathValue("videoId", "vid-1")
	rec := httptest.NewRecorder()

	handler.Add(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCommentHandlerAddUnknownVideo(t *testing.T) {
	store := newFakeCommentStore()
	store.createErr = repositories.ErrNotFound
	handler := CommentHandler{Comments: store}

	body, _ := json.Marshal(commentRequest{Content: "hello"})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/api/v1/videos/ghost/comments", bytes.NewReader(body)), "acc-1")
	req.SetPathValue("videoId", "ghost")
	rec := httptest.NewRecorder()

	handler.Add(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestCommentHandlerUpdate(t *testing.T) {
	store := newFakeCommentStore()
	store.comments["c-1"] = models.Comment{ID: "c-1", VideoID: "vid-1", OwnerID: "acc-1", Content: "typo"}
	handler := CommentHandler{Comments: store}

	body, _ := json.Marshal(commentRequest{Content: "fixed"})
	req := authenticate(httptest.NewRequest(http.MethodPatch, "/api/v1/comments/c-1", bytes.NewReader(body)), "acc-1")
	req.SetPathValue("commentId", "c-1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if store.comments["c-1"].Content != "fixed" {
		t.Fatalf("expected content update, got %+v", store.comments["c-1"])
	}
}

func TestCommentHandlerUpdateWrongOwner(t *testing.T) {
	store := newFakeCommentStore()
	store.comments["c-1"] = models.Comment{ID: "c-1", VideoID: "vid-1", OwnerID: "acc-2", Content: "original"}
	handler := CommentHandler{Comments: store}

	body, _ := json.Marshal(commentRequest{Content: "hijacked"})
	req := authenticate(httptest.NewRequest(http.MethodPatch, "/api/v1/comments/c-1", bytes.NewReader(body)), "acc-1")
	req.SetPathValue("commentId", "c-1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
	if store.comments["c-1"].Content != "original" {
		t.Fatal("expected comment to be untouched")
	}
}

func TestCommentHandlerDelete(t *testing.T) {
	store := newFakeCommentStore()
	store.comments["c-1"] = models.Comment{ID: "c-1", VideoID: "vid-1", OwnerID: "acc-1"}
	handler := CommentHandler{Comments: store}

	req := authenticate(httptest.NewRequest(http.MethodDelete, "/api/v1/comments/c-1", nil), "acc-1")
	req.SetPathValue("commentId", "c-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if _, ok := store.comments["c-1"]; ok {
		t.Fatal("expected comment to be removed")
	}
}
