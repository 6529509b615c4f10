package handlers

import (
	"context"

	"github.com/satwikgupta/backend-project/internal/models"
)

// AccountStore captures the persistence operations required by registration
// and profile endpoints.
type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	FindByID(ctx context.Context, id string) (models.Account, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.Account, error)
	UpdateProfile(ctx context.Context, id, fullName, email string) error
	UpdateAvatar(ctx context.Context, id, url string) error
	UpdateCoverImage(ctx context.Context, id, url string) error
}

// SessionManager orchestrates credential checks and token lifecycle.
type SessionManager interface {
	Login(ctx context.Context, identifier, password string) (models.Account, models.SessionTokens, error)
	Logout(ctx context.Context, accountID string) error
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error
}

// ChannelReader derives channel profiles and ownership-scoped listings.
type ChannelReader interface {
	ChannelProfile(ctx context.Context, viewerID, username string) (models.ChannelProfile, error)
	ListVideos(ctx context.Context, ownerID string, page, pageSize int, sortField, sortDirection string) ([]models.Video, error)
}

// SubscriptionStore mutates subscriber -> channel edges.
type SubscriptionStore interface {
	Subscribe(ctx context.Context, subscriberID, channelID string) error
	Unsubscribe(ctx context.Context, subscriberID, channelID string) error
}

// VideoStore captures persistence for video publishing workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, id, ownerID, title, description, thumbnailURL string) error
	Delete(ctx context.Context, id, ownerID string) error
	TogglePublish(ctx context.Context, id, ownerID string) (bool, error)
}

// CommentStore captures persistence for video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	ListForVideo(ctx context.Context, videoID string, offset, limit int) ([]models.Comment, error)
	Update(ctx context.Context, id, ownerID, content string) error
	Delete(ctx context.Context, id, ownerID string) error
}
