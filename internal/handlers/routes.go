package handlers

import (
	"net/http"

	"github.com/satwikgupta/backend-project/internal/auth"
	"github.com/satwikgupta/backend-project/internal/media"
	"github.com/satwikgupta/backend-project/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	accounts := AuthHandler{
		Accounts: deps.Accounts,
		Sessions: deps.Sessions,
		Hasher:   deps.Hasher,
		Media:    deps.Media,
		TempDir:  deps.TempDir,
		Limiter:  deps.LoginLimiter,
	}
	profile := ProfileHandler{Accounts: deps.Accounts, Media: deps.Media, TempDir: deps.TempDir}
	channels := ChannelHandler{Channels: deps.Channels, Subscriptions: deps.Subscriptions, Accounts: deps.Accounts}
	videos := VideoHandler{Videos: deps.Videos, Channels: deps.Channels, Media: deps.Media, TempDir: deps.TempDir}
	comments := CommentHandler{Comments: deps.Comments}

	authed := middleware.RequireAuth(deps.Tokens)

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", accounts.Register)
	mux.HandleFunc("POST /api/v1/users/login", accounts.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", accounts.Refresh)
	mux.Handle("POST /api/v1/users/logout", authed(http.HandlerFunc(accounts.Logout)))
	mux.Handle("POST /api/v1/users/change-password", authed(http.HandlerFunc(accounts.ChangePassword)))

	mux.Handle("GET /api/v1/users/me", authed(http.HandlerFunc(profile.Me)))
	mux.Handle("PATCH /api/v1/users/me", authed(http.HandlerFunc(profile.UpdateProfile)))
	mux.Handle("PATCH /api/v1/users/me/avatar", authed(http.HandlerFunc(profile.UpdateAvatar)))
	mux.Handle("PATCH /api/v1/users/me/cover-image", authed(http.HandlerFunc(profile.UpdateCoverImage)))

	mux.Handle("GET /api/v1/channels/{username}", authed(http.HandlerFunc(channels.Profile)))
	mux.Handle("POST /api/v1/channels/{username}/subscribe", authed(http.HandlerFunc(channels.Subscribe)))
	mux.Handle("DELETE /api/v1/channels/{username}/subscribe", authed(http.HandlerFunc(channels.Unsubscribe)))

	mux.Handle("GET /api/v1/videos", authed(http.HandlerFunc(videos.List)))
	mux.Handle("POST /api/v1/videos", authed(http.HandlerFunc(videos.Publish)))
	mux.HandleFunc("GET /api/v1/videos/{videoId}", videos.Get)
	mux.Handle("PATCH /api/v1/videos/{videoId}", authed(http.HandlerFunc(videos.Update)))
	mux.Handle("DELETE /api/v1/videos/{videoId}", authed(http.HandlerFunc(videos.Delete)))
	mux.Handle("POST /api/v1/videos/{videoId}/toggle-publish", authed(http.HandlerFunc(videos.TogglePublish)))

	mux.HandleFunc("GET /api/v1/videos/{videoId}/comments", comments.List)
	mux.Handle("POST /api/v1/videos/{videoId}/comments", authed(http.HandlerFunc(comments.Add)))
	mux.Handle("PATCH /api/v1/comments/{commentId}", authed(http.HandlerFunc(comments.Update)))
	mux.Handle("DELETE /api/v1/comments/{commentId}", authed(http.HandlerFunc(comments.Delete)))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts      AccountStore
	Sessions      SessionManager
	Channels      ChannelReader
	Subscriptions SubscriptionStore
	Videos        VideoStore
	Comments      CommentStore
	Media         media.Store
	Hasher        auth.Hasher
	Tokens        middleware.TokenVerifier
	LoginLimiter  RateLimiter
	TempDir       string
}
