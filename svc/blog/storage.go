package blog

import (
	"context"

	"github.com/google/uuid"
)

// Storage is the persistence surface for posts, comments, and follow edges.
// Lookups return the package sentinels for missing records.
type Storage interface {
	CreatePost(ctx context.Context, post *Post) error
	UpdatePost(ctx context.Context, post *Post) error
	PostByID(ctx context.Context, id uuid.UUID) (*Post, error)
	RecentPosts(ctx context.Context, page Page) ([]Post, error)
	PostsByAuthor(ctx context.Context, authorID uuid.UUID, page Page) ([]Post, error)

	// FollowedPosts lists recent posts authored by users the given user
	// follows, plus the user's own posts.
	FollowedPosts(ctx context.Context, userID uuid.UUID, page Page) ([]Post, error)

	CreateComment(ctx context.Context, comment *Comment) error
	SetCommentDisabled(ctx context.Context, id uuid.UUID, disabled bool) error
	CommentsByPost(ctx context.Context, postID uuid.UUID, page Page) ([]Comment, error)

	// SaveFollow is idempotent; re-following an already-followed user is a
	// no-op. DeleteFollow of an absent edge is also a no-op.
	SaveFollow(ctx context.Context, followerID, followedID uuid.UUID) error
	DeleteFollow(ctx context.Context, followerID, followedID uuid.UUID) error
	IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)
	Followers(ctx context.Context, userID uuid.UUID, page Page) ([]uuid.UUID, error)
	Following(ctx context.Context, userID uuid.UUID, page Page) ([]uuid.UUID, error)
}
