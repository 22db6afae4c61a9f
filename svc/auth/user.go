package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is an account record. PasswordHash is a bcrypt hash; plaintext is
// never persisted. AvatarHash is the Gravatar key derived from Email and is
// recomputed whenever the email changes.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash string
	Confirmed    bool
	RoleName     string
	AvatarHash   string
	About        string
	Location     string
	LastSeenAt   time.Time
	RegisteredAt time.Time
}

// UserDirectory is the persistence surface the service drives.
// Lookups return ErrUserNotFound when no record matches; Create and Update
// surface ErrEmailTaken/ErrUsernameTaken on uniqueness conflicts.
type UserDirectory interface {
	ByID(ctx context.Context, id uuid.UUID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}
