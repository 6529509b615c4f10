package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/satwikgupta/backend-project/internal/channels"
	"github.com/satwikgupta/backend-project/internal/db"
	"github.com/satwikgupta/backend-project/internal/models"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, video_url, thumbnail_url, duration, views, published, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.VideoURL,
		video.ThumbnailURL, video.Duration, video.Views, video.Published, video.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video together with its owner projection.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
               v.duration, v.views, v.published, v.created_at,
               a.full_name, a.username, a.avatar_url
        FROM videos v
        LEFT JOIN accounts a ON a.id = v.owner_id
        WHERE v.id = $1
    `, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}
	return video, nil
}

// ListByOwner returns one page of an owner's videos. The sort column comes
// from the aggregator's whitelist; the owner join is a LEFT JOIN so a
// missing owner record nulls the projection instead of dropping the row.
func (r *PostgresVideoRepository) ListByOwner(ctx context.Context, q channels.VideoListQuery) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	direction := "DESC"
	if q.Ascending {
		direction = "ASC"
	}

	// Ties fall back to insertion order so pages never overlap or skip.
	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
               v.duration, v.views, v.published, v.created_at,
               a.full_name, a.username, a.avatar_url
        FROM videos v
        LEFT JOIN accounts a ON a.id = v.owner_id
        WHERE v.owner_id = $1
        ORDER BY v.`+q.SortColumn+` `+direction+`, v.created_at ASC, v.id ASC
        OFFSET $2 LIMIT $3
    `, q.OwnerID, q.Offset, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

// Update replaces a video's title, description, and thumbnail, scoped to its
// owner.
func (r *PostgresVideoRepository) Update(ctx context.Context, id, ownerID, title, description, thumbnailURL string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $3, description = $4, thumbnail_url = $5
        WHERE id = $1 AND owner_id = $2
    `, id, ownerID, title, description, thumbnailURL)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes an owner's video.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id, ownerID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM videos
        WHERE id = $1 AND owner_id = $2
    `, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// TogglePublish flips the publish flag and reports the new state.
func (r *PostgresVideoRepository) TogglePublish(ctx context.Context, id, ownerID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE videos
        SET published = NOT published
        WHERE id = $1 AND owner_id = $2
        RETURNING published
    `, id, ownerID)

	var published bool
	if err := row.Scan(&published); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("toggle publish: %w", err)
	}

	return published, nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var (
		video     models.Video
		fullName  sql.NullString
		username  sql.NullString
		avatarURL sql.NullString
	)
	if err := row.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description,
		&video.VideoURL, &video.ThumbnailURL, &video.Duration, &video.Views,
		&video.Published, &video.CreatedAt, &fullName, &username, &avatarURL); err != nil {
		return models.Video{}, err
	}

	video.CreatedAt = video.CreatedAt.UTC()
	video.Owner = ownerSummary(fullName, username, avatarURL)
	return video, nil
}

func ownerSummary(fullName, username, avatarURL sql.NullString) models.OwnerSummary {
	var owner models.OwnerSummary
	if fullName.Valid {
		owner.FullName = &fullName.String
	}
	if username.Valid {
		owner.Username = &username.String
	}
	if avatarURL.Valid {
		owner.AvatarURL = &avatarURL.String
	}
	return owner
}

var _ channels.VideoLister = (*PostgresVideoRepository)(nil)
