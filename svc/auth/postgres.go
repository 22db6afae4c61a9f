package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/blogkit/pkg/pg"
)

// PostgresDirectory is the UserDirectory backed by a users table.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresDirectory wraps an established pgx pool.
func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

const userColumns = `id, email, username, password_hash, confirmed, role_name,
	avatar_hash, about, location, last_seen_at, registered_at`

func (d *PostgresDirectory) ByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return d.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (d *PostgresDirectory) ByEmail(ctx context.Context, email string) (*User, error) {
	return d.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (d *PostgresDirectory) ByUsername(ctx context.Context, username string) (*User, error) {
	return d.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (d *PostgresDirectory) Create(ctx context.Context, user *User) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID, user.Email, user.Username, user.PasswordHash, user.Confirmed,
		user.RoleName, user.AvatarHash, user.About, user.Location,
		user.LastSeenAt, user.RegisteredAt,
	)
	return mapConflict(err)
}

func (d *PostgresDirectory) Update(ctx context.Context, user *User) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE users SET
			email = $2, username = $3, password_hash = $4, confirmed = $5,
			role_name = $6, avatar_hash = $7, about = $8, location = $9,
			last_seen_at = $10
		WHERE id = $1`,
		user.ID, user.Email, user.Username, user.PasswordHash, user.Confirmed,
		user.RoleName, user.AvatarHash, user.About, user.Location,
		user.LastSeenAt,
	)
	if err != nil {
		return mapConflict(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (d *PostgresDirectory) scanOne(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	err := d.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.Confirmed, &user.RoleName, &user.AvatarHash, &user.About,
		&user.Location, &user.LastSeenAt, &user.RegisteredAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// mapConflict translates unique-constraint violations into the service's
// sentinels. Pre-checks in the service make these rare, but concurrent
// registrations can still race past them.
func mapConflict(err error) error {
	if !pg.IsDuplicateKeyError(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "username") {
		return errors.Join(ErrUsernameTaken, err)
	}
	return errors.Join(ErrEmailTaken, err)
}
