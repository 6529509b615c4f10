// Package channels computes derived social-graph projections: channel
// profiles with subscriber counts and viewer-relative flags, and
// ownership-scoped listings of published content.
package channels

import (
	"context"
	"errors"
	"strings"

	"github.com/satwikgupta/backend-project/internal/logging"
	"github.com/satwikgupta/backend-project/internal/models"
)

var (
	// ErrChannelNotFound indicates no account matches the channel username.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrInvalidPage indicates a non-positive page number.
	ErrInvalidPage = errors.New("page must be positive")
	// ErrInvalidPageSize indicates a non-positive page size.
	ErrInvalidPageSize = errors.New("page size must be positive")
	// ErrInvalidSortField indicates a sort field outside the allowed set.
	ErrInvalidSortField = errors.New("unsupported sort field")
)

// sortColumns whitelists the exposed sort fields and maps them to the
// columns the store may order by. Anything else is rejected before a query
// is built.
var sortColumns = map[string]string{
	"title":     "title",
	"createdAt": "created_at",
	"views":     "views",
	"duration":  "duration",
}

// ProfileStore reads a channel profile in a single read-consistent pass over
// the subscription edges: both counts and the viewer flag must come from one
// statement so they cannot disagree under concurrent edge churn.
type ProfileStore interface {
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
}

// VideoLister pages through an owner's videos with a validated sort.
type VideoLister interface {
	ListByOwner(ctx context.Context, q VideoListQuery) ([]models.Video, error)
}

// VideoListQuery is the validated listing request handed to the store.
// SortColumn is always one of the whitelisted column names.
type VideoListQuery struct {
	OwnerID    string
	Offset     int
	Limit      int
	SortColumn string
	Ascending  bool
}

// Aggregator derives relationship facts and listings for channel pages.
type Aggregator struct {
	profiles ProfileStore
	videos   VideoLister
}

// NewAggregator constructs an Aggregator over the provided stores.
func NewAggregator(profiles ProfileStore, videos VideoLister) *Aggregator {
	if profiles == nil || videos == nil {
		panic("channels: aggregator stores must not be nil")
	}
	return &Aggregator{profiles: profiles, videos: videos}
}

// ChannelProfile resolves a channel by username and reports its subscriber
// count, subscribed-to count, and whether the viewer subscribes to it.
func (a *Aggregator) ChannelProfile(ctx context.Context, viewerID, username string) (models.ChannelProfile, error) {
	ctx, span := logging.StartSpan(ctx, "channels.profile")
	defer span.End()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return models.ChannelProfile{}, ErrChannelNotFound
	}

	return a.profiles.ChannelProfile(ctx, username, viewerID)
}

// ListVideos returns one page of an owner's videos ordered by sortField and
// direction, ties broken by creation time so pagination stays stable.
func (a *Aggregator) ListVideos(ctx context.Context, ownerID string, page, pageSize int, sortField, sortDirection string) ([]models.Video, error) {
	ctx, span := logging.StartSpan(ctx, "channels.listVideos")
	defer span.End()

	if page < 1 {
		return nil, ErrInvalidPage
	}
	if pageSize < 1 {
		return nil, ErrInvalidPageSize
	}

	if sortField == "" {
		sortField = "createdAt"
	}
	column, ok := sortColumns[sortField]
	if !ok {
		return nil, ErrInvalidSortField
	}

	return a.videos.ListByOwner(ctx, VideoListQuery{
		OwnerID:    ownerID,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
		SortColumn: column,
		Ascending:  strings.EqualFold(sortDirection, "asc"),
	})
}
