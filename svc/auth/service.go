package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/blogkit/pkg/email"
	"github.com/dmitrymomot/blogkit/pkg/gravatar"
	"github.com/dmitrymomot/blogkit/pkg/jwt"
	"github.com/dmitrymomot/blogkit/pkg/logger"
	"github.com/dmitrymomot/blogkit/pkg/password"
	"github.com/dmitrymomot/blogkit/pkg/token"
)

// Config holds account-flow settings loaded from the environment.
type Config struct {
	AppName        string        `env:"AUTH_APP_NAME" envDefault:"Blogkit"`
	BaseURL        string        `env:"AUTH_BASE_URL" envDefault:"http://localhost:8080"`
	ConfirmTTL     time.Duration `env:"AUTH_CONFIRM_TOKEN_TTL" envDefault:"1h"`
	ResetTTL       time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"1h"`
	EmailChangeTTL time.Duration `env:"AUTH_EMAIL_CHANGE_TOKEN_TTL" envDefault:"1h"`
	DefaultRole    string        `env:"AUTH_DEFAULT_ROLE" envDefault:"User"`
}

var (
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.]*$`)
)

const minPasswordLength = 8

// Service coordinates account flows across the user directory, the action
// token signer, the access token signer, and outgoing email. Safe for
// concurrent use.
type Service struct {
	cfg    Config
	users  UserDirectory
	tokens *token.Service
	access *jwt.Service
	mailer email.EmailSender
	log    *slog.Logger
	now    func() time.Time
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

// WithTimeFunc overrides the time source, used by tests to pin last-seen
// timestamps.
func WithTimeFunc(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the account service. All dependencies are explicit; the
// service never reads global state.
func NewService(
	cfg Config,
	users UserDirectory,
	tokens *token.Service,
	access *jwt.Service,
	mailer email.EmailSender,
	opts ...Option,
) *Service {
	s := &Service{
		cfg:    cfg,
		users:  users,
		tokens: tokens,
		access: access,
		mailer: mailer,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterParams carries new-account input.
type RegisterParams struct {
	Email    string
	Username string
	Password string
}

// Register creates an unconfirmed account with the default role and sends a
// confirmation link to the given address. The password is stored only as a
// bcrypt hash; the Gravatar key is derived once and stored with the record.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	addr := normalizeEmail(params.Email)
	username := strings.TrimSpace(params.Username)

	switch {
	case !emailRegex.MatchString(addr):
		return nil, fmt.Errorf("%w: malformed email address", ErrInvalidInput)
	case !usernameRegex.MatchString(username):
		return nil, fmt.Errorf("%w: username must start with a letter and contain only letters, digits, dots and underscores", ErrInvalidInput)
	case len(params.Password) < minPasswordLength:
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	if _, err := s.users.ByEmail(ctx, addr); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.ByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := password.Hash(params.Password)
	if err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	now := s.now()
	user := &User{
		ID:           uuid.New(),
		Email:        addr,
		Username:     username,
		PasswordHash: hash,
		RoleName:     s.cfg.DefaultRole,
		AvatarHash:   gravatar.Hash(addr),
		LastSeenAt:   now,
		RegisteredAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sendConfirmation(ctx, user); err != nil {
		// The account exists; the user can request another link.
		s.log.ErrorContext(ctx, "failed to issue confirmation email",
			logger.UserID(user.ID), logger.Error(err))
	}

	s.log.InfoContext(ctx, "user registered",
		logger.UserID(user.ID), logger.Role(user.RoleName))
	return user, nil
}

// Authenticate checks email+password and, on success, returns the user and a
// signed bearer token for the host's session layer. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, emailAddr, plaintext string) (*User, string, error) {
	user, err := s.users.ByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !password.Verify(user.PasswordHash, plaintext) {
		return nil, "", ErrInvalidCredentials
	}

	accessToken, err := s.access.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, accessToken, nil
}

// ConfirmAccount flips the confirmed flag after verifying a confirmation
// token bound to the logged-in user. Confirming an already-confirmed account
// is a no-op, so stale links do not error.
func (s *Service) ConfirmAccount(ctx context.Context, userID uuid.UUID, tokenStr string) error {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Confirmed {
		return nil
	}

	if _, err := s.tokens.Consume(ctx, tokenStr, token.ActionConfirm, token.WithSubject(userID)); err != nil {
		return errors.Join(ErrInvalidToken, err)
	}

	user.Confirmed = true
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "account confirmed", logger.UserID(userID))
	return nil
}

// ResendConfirmation issues a fresh confirmation link for an unconfirmed
// account.
func (s *Service) ResendConfirmation(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Confirmed {
		return ErrAlreadyConfirmed
	}

	return s.sendConfirmation(ctx, user)
}

// RequestPasswordReset emails a reset link to the given address if an account
// exists. It succeeds silently for unknown addresses so the endpoint cannot
// be used to enumerate accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	addr := normalizeEmail(emailAddr)

	user, err := s.users.ByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.log.DebugContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return err
	}

	tok, err := s.tokens.Issue(token.ActionReset, user.ID, s.cfg.ResetTTL)
	if err != nil {
		return err
	}

	s.sendAsync(ctx, composeResetEmail(s.cfg, user.Email, tok))
	return nil
}

// ResetPassword consumes a reset token and installs a new password. The
// requester is not logged in, so the account is identified by the token's
// subject; a token with no subject is rejected.
func (s *Service) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	claims, err := s.tokens.Consume(ctx, tokenStr, token.ActionReset)
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == uuid.Nil {
		return ErrInvalidToken
	}

	user, err := s.users.ByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return errors.Join(ErrInvalidInput, err)
	}

	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "password reset", logger.UserID(user.ID))
	return nil
}

// RequestEmailChange re-authenticates the user, checks the new address is
// free, and emails a confirmation link to the NEW address. The proposed
// address travels inside the signed token, not in storage.
func (s *Service) RequestEmailChange(ctx context.Context, userID uuid.UUID, newEmail, plaintext string) error {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if !password.Verify(user.PasswordHash, plaintext) {
		return ErrInvalidCredentials
	}

	addr := normalizeEmail(newEmail)
	if !emailRegex.MatchString(addr) {
		return fmt.Errorf("%w: malformed email address", ErrInvalidInput)
	}

	if _, err := s.users.ByEmail(ctx, addr); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	tok, err := s.tokens.Issue(token.ActionChangeEmail, userID, s.cfg.EmailChangeTTL, token.WithEmail(addr))
	if err != nil {
		return err
	}

	s.sendAsync(ctx, composeEmailChangeEmail(s.cfg, addr, tok))
	return nil
}

// ConfirmEmailChange consumes an email-change token for the logged-in user
// and installs the address carried in its payload. Uniqueness is re-checked
// at consumption: the address may have been claimed since the link was sent.
// The Gravatar key is recomputed for the new address.
func (s *Service) ConfirmEmailChange(ctx context.Context, userID uuid.UUID, tokenStr string) error {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}

	claims, err := s.tokens.Consume(ctx, tokenStr, token.ActionChangeEmail, token.WithSubject(userID))
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return ErrInvalidToken
	}

	if other, err := s.users.ByEmail(ctx, claims.Email); err == nil && other.ID != userID {
		return ErrEmailTaken
	} else if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}

	user.Email = claims.Email
	user.AvatarHash = gravatar.Hash(claims.Email)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "email changed", logger.UserID(userID))
	return nil
}

// ProfileParams carries a partial profile update; nil fields are untouched.
type ProfileParams struct {
	Username *string
	About    *string
	Location *string
}

// UpdateProfile applies a partial profile update and returns the fresh
// record.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, params ProfileParams) (*User, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Username != nil {
		username := strings.TrimSpace(*params.Username)
		if !usernameRegex.MatchString(username) {
			return nil, fmt.Errorf("%w: malformed username", ErrInvalidInput)
		}
		if username != user.Username {
			if _, err := s.users.ByUsername(ctx, username); err == nil {
				return nil, ErrUsernameTaken
			} else if !errors.Is(err, ErrUserNotFound) {
				return nil, err
			}
			user.Username = username
		}
	}
	if params.About != nil {
		user.About = *params.About
	}
	if params.Location != nil {
		user.Location = *params.Location
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Ping refreshes the user's last-seen timestamp. The host calls it once per
// authenticated request.
func (s *Service) Ping(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}

	user.LastSeenAt = s.now()
	return s.users.Update(ctx, user)
}

func (s *Service) sendConfirmation(ctx context.Context, user *User) error {
	tok, err := s.tokens.Issue(token.ActionConfirm, user.ID, s.cfg.ConfirmTTL)
	if err != nil {
		return err
	}

	s.sendAsync(ctx, composeConfirmEmail(s.cfg, user.Email, tok))
	return nil
}

func normalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
