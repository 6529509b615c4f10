package models

import "time"

// Account represents a registered channel owner on the platform.
type Account struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	PasswordHash  string
	RefreshToken  string
	AvatarURL     string
	CoverImageURL string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Public returns a projection safe to serialize in responses. The password
// hash and the stored refresh token never leave the service.
func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		FullName:      a.FullName,
		AvatarURL:     a.AvatarURL,
		CoverImageURL: a.CoverImageURL,
		CreatedAt:     a.CreatedAt,
	}
}

// PublicAccount is the externally visible account projection.
type PublicAccount struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
}

// OwnerSummary is the minimal owner projection joined onto listed content.
// Pointer fields stay nil when the owner record is missing.
type OwnerSummary struct {
	FullName  *string `json:"fullName"`
	Username  *string `json:"username"`
	AvatarURL *string `json:"avatar"`
}

// Video is an uploaded, publishable video owned by an account.
type Video struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"ownerId"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	VideoURL     string       `json:"videoFile"`
	ThumbnailURL string       `json:"thumbnail"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	Published    bool         `json:"isPublished"`
	CreatedAt    time.Time    `json:"createdAt"`
	Owner        OwnerSummary `json:"owner"`
}

// Comment is a viewer comment attached to a video.
type Comment struct {
	ID        string       `json:"id"`
	VideoID   string       `json:"videoId"`
	OwnerID   string       `json:"ownerId"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Owner     OwnerSummary `json:"owner"`
}

// Subscription is a directed subscriber -> channel edge between accounts.
type Subscription struct {
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// ChannelProfile carries the derived relationship facts for a channel page.
// All derived fields come from one read-consistent pass over the
// subscription edges.
type ChannelProfile struct {
	ID                   string    `json:"id"`
	Username             string    `json:"username"`
	FullName             string    `json:"fullName"`
	AvatarURL            string    `json:"avatar"`
	CoverImageURL        string    `json:"coverImage"`
	SubscribersCount     int64     `json:"subscribersCount"`
	SubscribedToCount    int64     `json:"channelsSubscribedToCount"`
	IsSubscribedByViewer bool      `json:"isSubscribed"`
	CreatedAt            time.Time `json:"createdAt"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
