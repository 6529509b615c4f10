package app

import (
	"context"

	"github.com/satwikgupta/backend-project/internal/auth"
	"github.com/satwikgupta/backend-project/internal/channels"
	"github.com/satwikgupta/backend-project/internal/config"
	"github.com/satwikgupta/backend-project/internal/db"
	"github.com/satwikgupta/backend-project/internal/handlers"
	"github.com/satwikgupta/backend-project/internal/media"
	"github.com/satwikgupta/backend-project/internal/middleware"
	"github.com/satwikgupta/backend-project/internal/repositories"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup releases resources held by the dependency
// graph and must be called on shutdown.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, func(context.Context) error, error) {
	accounts := repositories.NewPostgresAccountRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)

	tokens := auth.NewTokenService(
		[]byte(cfg.AccessTokenSecret),
		[]byte(cfg.RefreshTokenSecret),
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	hasher := auth.BcryptHasher{}
	sessions := auth.NewManager(accounts, tokens, hasher)
	aggregator := channels.NewAggregator(subscriptions, videos)

	var store media.Store
	if cfg.ObjectStore.Bucket != "" {
		s3Store, err := media.NewS3Store(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, err
		}
		store = s3Store
	}

	limiter := middleware.NewIPRateLimiter(
		cfg.LoginRateLimit,
		cfg.LoginRateWindow,
		cfg.LoginRateBurst,
		cfg.LoginRateWindow*4,
	)

	deps := handlers.Dependencies{
		Accounts:      accounts,
		Sessions:      sessions,
		Channels:      aggregator,
		Subscriptions: subscriptions,
		Videos:        videos,
		Comments:      comments,
		Media:         store,
		Hasher:        hasher,
		Tokens:        tokens,
		LoginLimiter:  limiter,
		TempDir:       cfg.UploadTempDir,
	}

	cleanup := func(context.Context) error { return nil }
	return deps, cleanup, nil
}
