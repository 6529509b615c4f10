package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/satwikgupta/backend-project/internal/auth"
	"github.com/satwikgupta/backend-project/internal/logging"
	"github.com/satwikgupta/backend-project/internal/media"
	"github.com/satwikgupta/backend-project/internal/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

var (
	publishUploads = media.Descriptor{Fields: []media.FieldSpec{
		{Name: "videoFile", Required: true, MaxCount: 1},
		{Name: "thumbnail", Required: true, MaxCount: 1},
	}}
	thumbnailUploads = media.Descriptor{Fields: []media.FieldSpec{
		{Name: "thumbnail", MaxCount: 1},
	}}
)

// VideoHandler serves video publishing and listing endpoints.
type VideoHandler struct {
	Videos   VideoStore
	Channels ChannelReader
	Media    media.Store
	TempDir  string
	NowFunc  func() time.Time
}

// List handles GET /api/v1/videos. Without a userId filter the listing is
// scoped to the requesting account.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	query := r.URL.Query()
	ownerID := strings.TrimSpace(query.Get("userId"))
	if ownerID == "" {
		ownerID = claims.AccountID
	}

	page, err := queryInt(query.Get("page"), defaultPage)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "page must be a positive integer")
		return
	}
	pageSize, err := queryInt(query.Get("limit"), defaultPageSize)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "limit must be a positive integer")
		return
	}

	videos, err := h.Channels.ListVideos(ctx, ownerID, page, pageSize, query.Get("sortBy"), query.Get("sortType"))
	if err != nil {
		logger.Warn("list videos failed", "ownerId", ownerID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, listVideosResponse{Videos: videos, Page: page, PageSize: pageSize}, "videos fetched")
}

// Publish handles POST /api/v1/videos (multipart).
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}
	if h.Media == nil {
		logger.Error("media store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, nil, "media storage unavailable")
		return
	}

	files, cleanup, err := spoolUploads(r, h.TempDir, publishUploads)
	if err != nil {
		logger.Warn("invalid publish upload", "error", err)
		respondError(ctx, w, err)
		return
	}
	defer cleanup()

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "title and description are required")
		return
	}

	videoRef, _ := media.First(files, "videoFile")
	videoAsset, err := h.Media.Upload(ctx, videoRef.Path)
	if err != nil {
		logger.Error("upload video file", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, nil, "failed to store video")
		return
	}

	thumbRef, _ := media.First(files, "thumbnail")
	thumbAsset, err := h.Media.Upload(ctx, thumbRef.Path)
	if err != nil {
		logger.Error("upload thumbnail", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, nil, "failed to store thumbnail")
		return
	}

	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      claims.AccountID,
		Title:        title,
		Description:  description,
		VideoURL:     videoAsset.URL,
		ThumbnailURL: thumbAsset.URL,
		Duration:     videoAsset.Duration,
		Published:    true,
		CreatedAt:    h.now(),
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("create video record", "videoId", video.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, video, "video published")
}

// Get handles GET /api/v1/videos/{videoId}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := strings.TrimSpace(r.PathValue("videoId"))
	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Warn("video lookup failed", "videoId", id, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, video, "video fetched")
}

// Update handles PATCH /api/v1/videos/{videoId} (multipart, thumbnail
// optional).
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	id := strings.TrimSpace(r.PathValue("videoId"))
	files, cleanup, err := spoolUploads(r, h.TempDir, thumbnailUploads)
	if err != nil {
		logger.Warn("invalid update upload", "videoId", id, "error", err)
		respondError(ctx, w, err)
		return
	}
	defer cleanup()

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "title and description are required")
		return
	}

	existing, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	thumbnailURL := existing.ThumbnailURL
	replacedThumbnail := false
	if ref, ok := media.First(files, "thumbnail"); ok {
		if h.Media == nil {
			logger.Error("media store unavailable")
			respondJSON(ctx, w, http.StatusInternalServerError, nil, "media storage unavailable")
			return
		}
		asset, err := h.Media.Upload(ctx, ref.Path)
		if err != nil {
			logger.Error("upload thumbnail", "videoId", id, "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, nil, "failed to store thumbnail")
			return
		}
		thumbnailURL = asset.URL
		replacedThumbnail = true
	}

	if err := h.Videos.Update(ctx, id, claims.AccountID, title, description, thumbnailURL); err != nil {
		logger.Warn("update video failed", "videoId", id, "error", err)
		respondError(ctx, w, err)
		return
	}

	if replacedThumbnail && existing.ThumbnailURL != "" {
		if err := h.Media.DeleteByURL(ctx, existing.ThumbnailURL); err != nil {
			logger.Warn("delete previous thumbnail", "videoId", id, "error", err)
		}
	}

	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, video, "video updated")
}

// Delete handles DELETE /api/v1/videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	id := strings.TrimSpace(r.PathValue("videoId"))
	existing, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.Delete(ctx, id, claims.AccountID); err != nil {
		logger.Warn("delete video failed", "videoId", id, "error", err)
		respondError(ctx, w, err)
		return
	}

	// The record is gone either way; stored assets are cleaned up best
	// effort.
	if h.Media != nil {
		for _, url := range []string{existing.VideoURL, existing.ThumbnailURL} {
			if url == "" {
				continue
			}
			if err := h.Media.DeleteByURL(ctx, url); err != nil {
				logger.Warn("delete video asset", "videoId", id, "url", url, "error", err)
			}
		}
	}

	respondJSON(ctx, w, http.StatusOK, nil, "video deleted")
}

// TogglePublish handles POST /api/v1/videos/{videoId}/toggle-publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	id := strings.TrimSpace(r.PathValue("videoId"))
	published, err := h.Videos.TogglePublish(ctx, id, claims.AccountID)
	if err != nil {
		logging.FromContext(ctx).Warn("toggle publish failed", "videoId", id, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"isPublished": published}, "publish state toggled")
}

type listVideosResponse struct {
	Videos   []models.Video `json:"videos"`
	Page     int            `json:"page"`
	PageSize int            `json:"limit"`
}

func queryInt(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
