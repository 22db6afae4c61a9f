package blog

import (
	"time"

	"github.com/google/uuid"
)

// Post is a published article. Body is the author's markdown source;
// BodyHTML is the sanitized rendering stored at write time.
type Post struct {
	ID        uuid.UUID
	AuthorID  uuid.UUID
	Body      string
	BodyHTML  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment is a reply on a post. Disabled comments stay in storage so
// moderators can review and re-enable them; hosts render a placeholder
// instead of the body.
type Comment struct {
	ID        uuid.UUID
	PostID    uuid.UUID
	AuthorID  uuid.UUID
	Body      string
	BodyHTML  string
	Disabled  bool
	CreatedAt time.Time
}

// Page bounds a listing. Zero values fall back to the first page with the
// default size.
type Page struct {
	Offset int
	Limit  int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (p Page) normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	return p
}
