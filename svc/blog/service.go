package blog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/blogkit/pkg/logger"
	"github.com/dmitrymomot/blogkit/pkg/perm"
)

// Service exposes the blog operations. All capability checks run against the
// principal stored in the request context.
type Service struct {
	store Storage
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger overrides the default slog.Default logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTimeFunc overrides the time source for tests.
func WithTimeFunc(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the blog service over a storage implementation.
func NewService(store Storage, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// actor extracts the authenticated principal holding the flag. Anonymous
// principals and users lacking the flag get ErrPermissionDenied.
func actor(ctx context.Context, flag perm.Permission) (perm.User, error) {
	p := perm.PrincipalFromContext(ctx)
	user, ok := p.(perm.User)
	if !ok || !user.Can(flag) {
		return perm.User{}, ErrPermissionDenied
	}
	return user, nil
}

// CreatePost publishes a markdown post authored by the context principal.
// Requires the Write capability and a confirmed account.
func (s *Service) CreatePost(ctx context.Context, body string) (*Post, error) {
	user, err := actor(ctx, perm.Write)
	if err != nil {
		return nil, err
	}
	if !user.Confirmed {
		return nil, ErrUnconfirmedAccount
	}

	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}

	html, err := RenderMarkdown(body)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post := &Post{
		ID:        uuid.New(),
		AuthorID:  user.ID,
		Body:      body,
		BodyHTML:  html,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "post created",
		logger.PostID(post.ID), logger.UserID(user.ID))
	return post, nil
}

// UpdatePost replaces the body of an existing post and re-renders its HTML.
// Allowed for the author and for administrators.
func (s *Service) UpdatePost(ctx context.Context, postID uuid.UUID, body string) (*Post, error) {
	user, err := actor(ctx, perm.Write)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}

	post, err := s.store.PostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != user.ID && !user.IsAdministrator() {
		return nil, ErrPermissionDenied
	}

	html, err := RenderMarkdown(body)
	if err != nil {
		return nil, err
	}

	post.Body = body
	post.BodyHTML = html
	post.UpdatedAt = s.now()
	if err := s.store.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost fetches a single post. Reading needs no capability.
func (s *Service) GetPost(ctx context.Context, postID uuid.UUID) (*Post, error) {
	return s.store.PostByID(ctx, postID)
}

// ListRecent pages through all posts, newest first.
func (s *Service) ListRecent(ctx context.Context, page Page) ([]Post, error) {
	return s.store.RecentPosts(ctx, page.normalize())
}

// ListByAuthor pages through one author's posts, newest first.
func (s *Service) ListByAuthor(ctx context.Context, authorID uuid.UUID, page Page) ([]Post, error) {
	return s.store.PostsByAuthor(ctx, authorID, page.normalize())
}

// Feed pages through posts from followed authors plus the user's own.
// Requires the Follow capability, same as building the graph it reads.
func (s *Service) Feed(ctx context.Context, page Page) ([]Post, error) {
	user, err := actor(ctx, perm.Follow)
	if err != nil {
		return nil, err
	}
	return s.store.FollowedPosts(ctx, user.ID, page.normalize())
}

// AddComment attaches a comment to a post. Requires the Comment capability.
func (s *Service) AddComment(ctx context.Context, postID uuid.UUID, body string) (*Comment, error) {
	user, err := actor(ctx, perm.Comment)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}

	if _, err := s.store.PostByID(ctx, postID); err != nil {
		return nil, err
	}

	html, err := RenderMarkdown(body)
	if err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:        uuid.New(),
		PostID:    postID,
		AuthorID:  user.ID,
		Body:      body,
		BodyHTML:  html,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments pages through a post's comments, oldest first. Disabled
// comments are included with their flag set; the host decides whether to
// show a placeholder or, for moderators, the body.
func (s *Service) ListComments(ctx context.Context, postID uuid.UUID, page Page) ([]Comment, error) {
	return s.store.CommentsByPost(ctx, postID, page.normalize())
}

// SetCommentDisabled hides or restores a comment. Requires Moderate.
func (s *Service) SetCommentDisabled(ctx context.Context, commentID uuid.UUID, disabled bool) error {
	user, err := actor(ctx, perm.Moderate)
	if err != nil {
		return err
	}

	if err := s.store.SetCommentDisabled(ctx, commentID, disabled); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "comment moderated",
		logger.UserID(user.ID),
		slog.String("comment_id", commentID.String()),
		slog.Bool("disabled", disabled))
	return nil
}

// Follow adds the target to the user's followed set. Requires the Follow
// capability. Following yourself is rejected; your own posts already appear
// in the feed.
func (s *Service) Follow(ctx context.Context, targetID uuid.UUID) error {
	user, err := actor(ctx, perm.Follow)
	if err != nil {
		return err
	}
	if user.ID == targetID {
		return ErrSelfFollow
	}
	return s.store.SaveFollow(ctx, user.ID, targetID)
}

// Unfollow removes the target from the user's followed set.
func (s *Service) Unfollow(ctx context.Context, targetID uuid.UUID) error {
	user, err := actor(ctx, perm.Follow)
	if err != nil {
		return err
	}
	return s.store.DeleteFollow(ctx, user.ID, targetID)
}

// IsFollowing reports whether follower follows followed.
func (s *Service) IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	return s.store.IsFollowing(ctx, followerID, followedID)
}

// Followers pages through the ids of users following the given user.
func (s *Service) Followers(ctx context.Context, userID uuid.UUID, page Page) ([]uuid.UUID, error) {
	return s.store.Followers(ctx, userID, page.normalize())
}

// Following pages through the ids of users the given user follows.
func (s *Service) Following(ctx context.Context, userID uuid.UUID, page Page) ([]uuid.UUID, error) {
	return s.store.Following(ctx, userID, page.normalize())
}
