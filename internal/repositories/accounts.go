package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/satwikgupta/backend-project/internal/auth"
	"github.com/satwikgupta/backend-project/internal/db"
	"github.com/satwikgupta/backend-project/internal/models"
)

const accountColumns = `id, username, email, full_name, password_hash, COALESCE(refresh_token, ''), avatar_url, cover_image_url, created_at, updated_at`

// PostgresAccountRepository provides PostgreSQL-backed persistence for accounts,
// including the per-account refresh-token field that is the entire persisted
// session state.
type PostgresAccountRepository struct {
	pool db.Pool
}

// NewPostgresAccountRepository constructs an account repository backed by PostgreSQL.
func NewPostgresAccountRepository(pool db.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// Create persists a new account record.
func (r *PostgresAccountRepository) Create(ctx context.Context, account models.Account) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO accounts (id, username, email, full_name, password_hash, avatar_url, cover_image_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, account.ID, account.Username, account.Email, account.FullName, account.PasswordHash,
		account.AvatarURL, account.CoverImageURL, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// FindByUsernameOrEmail resolves an account by either identifier. Usernames
// are stored lowercase; email comparison is case-insensitive.
func (r *PostgresAccountRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+accountColumns+`
        FROM accounts
        WHERE username = lower($1) OR lower(email) = lower($1)
    `, identifier)

	return scanAccount(row)
}

// FindByID fetches an account by id.
func (r *PostgresAccountRepository) FindByID(ctx context.Context, id string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+accountColumns+`
        FROM accounts
        WHERE id = $1
    `, id)

	return scanAccount(row)
}

// SetRefreshToken unconditionally replaces the stored refresh token,
// evicting any previous session for the account.
func (r *PostgresAccountRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE accounts
        SET refresh_token = $2, updated_at = now()
        WHERE id = $1
    `, id, token)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return auth.ErrAccountNotFound
	}

	return nil
}

// RotateRefreshToken swaps the stored token only when it still equals
// expected. The WHERE clause makes the read-compare-write a single atomic
// statement: of two concurrent rotations presenting the same token, exactly
// one matches a row.
func (r *PostgresAccountRepository) RotateRefreshToken(ctx context.Context, id, expected, next string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE accounts
        SET refresh_token = $3, updated_at = now()
        WHERE id = $1 AND refresh_token = $2
    `, id, expected, next)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return auth.ErrStaleRefreshToken
	}

	return nil
}

// ClearRefreshToken drops the stored token. Clearing an account that has no
// session (or does not exist) is a no-op.
func (r *PostgresAccountRepository) ClearRefreshToken(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        UPDATE accounts
        SET refresh_token = NULL, updated_at = now()
        WHERE id = $1
    `, id); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	return nil
}

// UpdatePassword replaces the password hash and revokes the active refresh
// token in the same statement.
func (r *PostgresAccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE accounts
        SET password_hash = $2, refresh_token = NULL, updated_at = now()
        WHERE id = $1
    `, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return auth.ErrAccountNotFound
	}

	return nil
}

// UpdateProfile replaces the mutable profile fields.
func (r *PostgresAccountRepository) UpdateProfile(ctx context.Context, id, fullName, email string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE accounts
        SET full_name = $2, email = $3, updated_at = now()
        WHERE id = $1
    `, id, fullName, email)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("update profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return auth.ErrAccountNotFound
	}

	return nil
}

// UpdateAvatar replaces the avatar reference.
func (r *PostgresAccountRepository) UpdateAvatar(ctx context.Context, id, url string) error {
	return r.updateImage(ctx, id, "avatar_url", url)
}

// UpdateCoverImage replaces the cover image reference.
func (r *PostgresAccountRepository) UpdateCoverImage(ctx context.Context, id, url string) error {
	return r.updateImage(ctx, id, "cover_image_url", url)
}

func (r *PostgresAccountRepository) updateImage(ctx context.Context, id, column, url string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	// column is one of two compile-time constants, never caller input.
	tag, err := conn.Exec(ctx, `
        UPDATE accounts
        SET `+column+` = $2, updated_at = now()
        WHERE id = $1
    `, id, url)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}

	if tag.RowsAffected() == 0 {
		return auth.ErrAccountNotFound
	}

	return nil
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var (
		account   models.Account
		createdAt time.Time
		updatedAt sql.NullTime
	)
	if err := row.Scan(&account.ID, &account.Username, &account.Email, &account.FullName,
		&account.PasswordHash, &account.RefreshToken, &account.AvatarURL, &account.CoverImageURL,
		&createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, auth.ErrAccountNotFound
		}
		return models.Account{}, fmt.Errorf("select account: %w", err)
	}

	account.CreatedAt = createdAt.UTC()
	if updatedAt.Valid {
		account.UpdatedAt = updatedAt.Time.UTC()
	}
	return account, nil
}

var _ auth.AccountStore = (*PostgresAccountRepository)(nil)
