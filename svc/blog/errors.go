package blog

import "errors"

var (
	ErrPermissionDenied   = errors.New("blog: permission denied")
	ErrUnconfirmedAccount = errors.New("blog: account not confirmed")
	ErrPostNotFound       = errors.New("blog: post not found")
	ErrCommentNotFound    = errors.New("blog: comment not found")
	ErrEmptyBody          = errors.New("blog: body must not be empty")
	ErrSelfFollow         = errors.New("blog: cannot follow yourself")
)
