package blog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/blogkit/pkg/perm"
	"github.com/dmitrymomot/blogkit/pkg/pg"
)

// PostgresStorage implements Storage and perm.RoleStore over the blog
// schema, so role seeding and content share one pool.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage wraps an established pgx pool.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const postColumns = `id, author_id, body, body_html, created_at, updated_at`

func (s *PostgresStorage) CreatePost(ctx context.Context, post *Post) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		post.ID, post.AuthorID, post.Body, post.BodyHTML,
		post.CreatedAt, post.UpdatedAt,
	)
	return err
}

func (s *PostgresStorage) UpdatePost(ctx context.Context, post *Post) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE posts SET body = $2, body_html = $3, updated_at = $4
		WHERE id = $1`,
		post.ID, post.Body, post.BodyHTML, post.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *PostgresStorage) PostByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	var post Post
	err := s.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id,
	).Scan(&post.ID, &post.AuthorID, &post.Body, &post.BodyHTML,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostgresStorage) RecentPosts(ctx context.Context, page Page) ([]Post, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2`,
		page.Offset, page.Limit,
	)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func (s *PostgresStorage) PostsByAuthor(ctx context.Context, authorID uuid.UUID, page Page) ([]Post, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3`,
		authorID, page.Offset, page.Limit,
	)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func (s *PostgresStorage) FollowedPosts(ctx context.Context, userID uuid.UUID, page Page) ([]Post, error) {
	// Own posts are part of the feed without a self-referencing follow edge.
	rows, err := s.pool.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE author_id = $1
		   OR author_id IN (
			SELECT followed_id FROM follows WHERE follower_id = $1
		   )
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3`,
		userID, page.Offset, page.Limit,
	)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func scanPosts(rows pgx.Rows) ([]Post, error) {
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		if err := rows.Scan(&post.ID, &post.AuthorID, &post.Body,
			&post.BodyHTML, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *PostgresStorage) CreateComment(ctx context.Context, comment *Comment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO comments (id, post_id, author_id, body, body_html, disabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		comment.ID, comment.PostID, comment.AuthorID, comment.Body,
		comment.BodyHTML, comment.Disabled, comment.CreatedAt,
	)
	return mapCommentConstraint(err)
}

// mapCommentConstraint narrows a foreign-key violation on the post reference
// to ErrPostNotFound. Other violations, e.g. a dangling author id, surface
// unchanged so they are not mistaken for a deleted post.
func mapCommentConstraint(err error) error {
	if !pg.IsForeignKeyViolationError(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "post") {
		return errors.Join(ErrPostNotFound, err)
	}
	return err
}

func (s *PostgresStorage) SetCommentDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE comments SET disabled = $2 WHERE id = $1`, id, disabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (s *PostgresStorage) CommentsByPost(ctx context.Context, postID uuid.UUID, page Page) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, post_id, author_id, body, body_html, disabled, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC, id ASC
		OFFSET $2 LIMIT $3`,
		postID, page.Offset, page.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body,
			&c.BodyHTML, &c.Disabled, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *PostgresStorage) SaveFollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO follows (follower_id, followed_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (follower_id, followed_id) DO NOTHING`,
		followerID, followedID,
	)
	return err
}

func (s *PostgresStorage) DeleteFollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`,
		followerID, followedID,
	)
	return err
}

func (s *PostgresStorage) IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	var following bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2
		)`,
		followerID, followedID,
	).Scan(&following)
	return following, err
}

func (s *PostgresStorage) Followers(ctx context.Context, userID uuid.UUID, page Page) ([]uuid.UUID, error) {
	return s.scanFollowEdges(ctx, `
		SELECT follower_id FROM follows
		WHERE followed_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`,
		userID, page)
}

func (s *PostgresStorage) Following(ctx context.Context, userID uuid.UUID, page Page) ([]uuid.UUID, error) {
	return s.scanFollowEdges(ctx, `
		SELECT followed_id FROM follows
		WHERE follower_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`,
		userID, page)
}

func (s *PostgresStorage) scanFollowEdges(ctx context.Context, query string, userID uuid.UUID, page Page) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, query, userID, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindRole implements perm.RoleStore over the roles table.
func (s *PostgresStorage) FindRole(ctx context.Context, name string) (perm.Role, bool, error) {
	var (
		role  perm.Role
		perms uint32
	)
	err := s.pool.QueryRow(ctx,
		`SELECT name, is_default, permissions FROM roles WHERE name = $1`, name,
	).Scan(&role.Name, &role.Default, &perms)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return perm.Role{}, false, nil
		}
		return perm.Role{}, false, err
	}
	role.Permissions = perm.Permission(perms)
	return role, true, nil
}

// SaveRole implements perm.RoleStore; seeding upserts by role name.
func (s *PostgresStorage) SaveRole(ctx context.Context, role perm.Role) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO roles (name, is_default, permissions)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET is_default = EXCLUDED.is_default,
		    permissions = EXCLUDED.permissions`,
		role.Name, role.Default, uint32(role.Permissions),
	)
	return err
}
