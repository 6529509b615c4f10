package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/satwikgupta/backend-project/internal/auth"
	"github.com/satwikgupta/backend-project/internal/logging"
	"github.com/satwikgupta/backend-project/internal/models"
)

// CommentHandler serves per-video comment threads.
type CommentHandler struct {
	Comments CommentStore
	NowFunc  func() time.Time
}

// List handles GET /api/v1/videos/{videoId}/comments.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := strings.TrimSpace(r.PathValue("videoId"))
	query := r.URL.Query()

	page, err := queryInt(query.Get("page"), defaultPage)
	if err != nil || page < 1 {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "page must be a positive integer")
		return
	}
	pageSize, err := queryInt(query.Get("limit"), defaultPageSize)
	if err != nil || pageSize < 1 {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "limit must be a positive integer")
		return
	}

	comments, err := h.Comments.ListForVideo(ctx, videoID, (page-1)*pageSize, pageSize)
	if err != nil {
		logging.FromContext(ctx).Warn("list comments failed", "videoId", videoID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, listCommentsResponse{Comments: comments, Page: page, PageSize: pageSize}, "comments fetched")
}

// Add handles POST /api/v1/videos/{videoId}/comments.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	videoID := strings.TrimSpace(r.PathValue("videoId"))

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "content is required")
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   claims.AccountID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		logger.Warn("create comment failed", "videoId", videoID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, comment, "comment added")
}

// Update handles PATCH /api/v1/comments/{commentId}. Only the comment's
// author may edit it.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	id := strings.TrimSpace(r.PathValue("commentId"))

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "content is required")
		return
	}

	if err := h.Comments.Update(ctx, id, claims.AccountID, content); err != nil {
		logger.Warn("update comment failed", "commentId", id, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "comment updated")
}

// Delete handles DELETE /api/v1/comments/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	id := strings.TrimSpace(r.PathValue("commentId"))
	if err := h.Comments.Delete(ctx, id, claims.AccountID); err != nil {
		logging.FromContext(ctx).Warn("delete comment failed", "commentId", id, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "comment deleted")
}

type commentRequest struct {
	Content string `json:"content"`
}

type listCommentsResponse struct {
	Comments []models.Comment `json:"comments"`
	Page     int              `json:"page"`
	PageSize int              `json:"limit"`
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
