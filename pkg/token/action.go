package token

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action discriminates what a token authorizes.
type Action string

// Supported token actions.
const (
	ActionConfirm     Action = "confirm"
	ActionReset       Action = "reset"
	ActionChangeEmail Action = "change_email"
)

// Claims is the decoded payload of a verified action token.
type Claims struct {
	ID        string    `json:"jti"`
	Action    Action    `json:"act"`
	Subject   uuid.UUID `json:"sub"`
	Email     string    `json:"email,omitempty"`
	IssuedAt  int64     `json:"iat"`
	ExpiresAt int64     `json:"exp"`
}

// Clock supplies current time. Injected so expiry is testable without
// sleeping and so the service never reaches for a global.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service issues and verifies action tokens with a process-wide secret.
// The secret is read-only after construction; the service is safe for
// concurrent use.
type Service struct {
	secret string
	clock  Clock
	guard  ReplayGuard
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. Nil clocks are ignored.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithReplayGuard enables single-use consumption via Consume.
// Without a guard, Consume behaves like Verify and tokens remain valid
// until natural expiry.
func WithReplayGuard(g ReplayGuard) Option {
	return func(s *Service) {
		if g != nil {
			s.guard = g
		}
	}
}

// NewService creates an action-token service signing with the given secret.
func NewService(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	s := &Service{
		secret: secret,
		clock:  SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssueOption attaches optional payload to an issued token.
type IssueOption func(*Claims)

// WithEmail embeds a proposed email address, used by email-change tokens.
func WithEmail(email string) IssueOption {
	return func(c *Claims) { c.Email = email }
}

// Issue creates a signed token authorizing action for subject, valid for ttl
// from now. TTL is always a parameter; shorter windows for tests are the
// caller's choice, not a separate code path.
func (s *Service) Issue(action Action, subject uuid.UUID, ttl time.Duration, opts ...IssueOption) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		ID:        uuid.NewString(),
		Action:    action,
		Subject:   subject,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
	for _, opt := range opts {
		opt(&claims)
	}

	return GenerateToken(claims, s.secret)
}

// VerifyOption adds constraints to verification.
type VerifyOption func(*verifyParams)

type verifyParams struct {
	subject    uuid.UUID
	hasSubject bool
}

// WithSubject binds verification to an expected subject id, e.g. the
// currently logged-in user confirming their own account. Reset tokens are
// verified without it: the requester is not logged in at that point.
func WithSubject(id uuid.UUID) VerifyOption {
	return func(p *verifyParams) {
		p.subject = id
		p.hasSubject = true
	}
}

// Verify runs the verification decision tree against the token string:
// structural decode, signature, expiry, then optional subject binding.
// On success the decoded claims are returned.
func (s *Service) Verify(tokenStr string, action Action, opts ...VerifyOption) (Claims, error) {
	var params verifyParams
	for _, opt := range opts {
		opt(&params)
	}

	claims, err := ParseToken[Claims](tokenStr, s.secret)
	if err != nil {
		return Claims{}, err
	}

	if claims.Action != action {
		return Claims{}, ErrActionMismatch
	}

	if s.clock.Now().Unix() > claims.ExpiresAt {
		return Claims{}, ErrTokenExpired
	}

	if params.hasSubject && claims.Subject != params.subject {
		return Claims{}, ErrSubjectMismatch
	}

	return claims, nil
}

// Consume verifies the token and, when a replay guard is configured, marks it
// used for the remainder of its validity window. A second Consume of the same
// token fails with ErrTokenUsed. Without a guard, Consume is Verify.
func (s *Service) Consume(ctx context.Context, tokenStr string, action Action, opts ...VerifyOption) (Claims, error) {
	claims, err := s.Verify(tokenStr, action, opts...)
	if err != nil {
		return Claims{}, err
	}

	if s.guard == nil {
		return claims, nil
	}

	remaining := time.Unix(claims.ExpiresAt, 0).Sub(s.clock.Now())
	first, err := s.guard.MarkUsed(ctx, claims.ID, remaining)
	if err != nil {
		return Claims{}, err
	}
	if !first {
		return Claims{}, ErrTokenUsed
	}

	return claims, nil
}
