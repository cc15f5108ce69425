package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"vidtube/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken reemplaza el token solo si el guardado sigue siendo current.
	RotateRefreshToken(ctx context.Context, id, current, next string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAccount(ctx context.Context, id, fullName, email string) (domain.User, error)
	UpdateAvatar(ctx context.Context, id, url string) (domain.User, error)
	UpdateCoverImage(ctx context.Context, id, url string) (domain.User, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const pgUserColumns = `id, username, email, fullname, avatar, cover_image, password_hash, COALESCE(refresh_token, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.Avatar,
		&u.CoverImage,
		&u.PasswordHash,
		&u.RefreshToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapPgError(err)
	}
	return u, nil
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, username, email, fullname, avatar, cover_image, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.Avatar,
		user.CoverImage,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return mapPgError(err)
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := `SELECT ` + pgUserColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	query := `SELECT ` + pgUserColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *PgUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (domain.User, error) {
	query := `SELECT ` + pgUserColumns + `
		FROM users
		WHERE ($1::text <> '' AND username = $1) OR ($2::text <> '' AND email = $2)
		ORDER BY created_at
		LIMIT 1`
	return scanUser(r.pool.QueryRow(ctx, query, username, email))
}

func (r *PgUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE ($1::text <> '' AND username = $1) OR ($2::text <> '' AND email = $2)
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, username, email).Scan(&exists); err != nil {
		return false, mapPgError(err)
	}
	return exists, nil
}

func (r *PgUserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	const query = `UPDATE users SET refresh_token = NULLIF($2, ''), updated_at = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, token, time.Now().UTC())
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgUserRepository) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	const query = `
		UPDATE users SET refresh_token = $3, updated_at = $4
		WHERE id = $1 AND refresh_token = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, current, next, time.Now().UTC())
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash, time.Now().UTC())
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgUserRepository) UpdateAccount(ctx context.Context, id, fullName, email string) (domain.User, error) {
	query := `UPDATE users SET fullname = $2, email = $3, updated_at = $4 WHERE id = $1 RETURNING ` + pgUserColumns
	return scanUser(r.pool.QueryRow(ctx, query, id, fullName, email, time.Now().UTC()))
}

func (r *PgUserRepository) UpdateAvatar(ctx context.Context, id, url string) (domain.User, error) {
	query := `UPDATE users SET avatar = $2, updated_at = $3 WHERE id = $1 RETURNING ` + pgUserColumns
	return scanUser(r.pool.QueryRow(ctx, query, id, url, time.Now().UTC()))
}

func (r *PgUserRepository) UpdateCoverImage(ctx context.Context, id, url string) (domain.User, error) {
	query := `UPDATE users SET cover_image = $2, updated_at = $3 WHERE id = $1 RETURNING ` + pgUserColumns
	return scanUser(r.pool.QueryRow(ctx, query, id, url, time.Now().UTC()))
}
