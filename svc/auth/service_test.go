package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blogkit/pkg/email"
	"github.com/dmitrymomot/blogkit/pkg/gravatar"
	"github.com/dmitrymomot/blogkit/pkg/jwt"
	"github.com/dmitrymomot/blogkit/pkg/password"
	"github.com/dmitrymomot/blogkit/pkg/token"
	"github.com/dmitrymomot/blogkit/svc/auth"
)

// memoryDirectory mimics database copy semantics: callers get copies, not
// shared pointers.
type memoryDirectory struct {
	mu    sync.Mutex
	users map[uuid.UUID]auth.User
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{users: make(map[uuid.UUID]auth.User)}
}

func (d *memoryDirectory) ByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.users[id]; ok {
		return &u, nil
	}
	return nil, auth.ErrUserNotFound
}

func (d *memoryDirectory) ByEmail(ctx context.Context, addr string) (*auth.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Email == addr {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (d *memoryDirectory) ByUsername(ctx context.Context, username string) (*auth.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (d *memoryDirectory) Create(ctx context.Context, user *auth.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = *user
	return nil
}

func (d *memoryDirectory) Update(ctx context.Context, user *auth.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[user.ID]; !ok {
		return auth.ErrUserNotFound
	}
	d.users[user.ID] = *user
	return nil
}

type captureMailer struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
}

func (m *captureMailer) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, params)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *captureMailer) last() email.SendEmailParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type testEnv struct {
	svc    *auth.Service
	dir    *memoryDirectory
	mailer *captureMailer
	tokens *token.Service
	access *jwt.Service
}

func newTestEnv(t *testing.T, opts ...auth.Option) *testEnv {
	t.Helper()

	tokens, err := token.NewService("test-secret")
	require.NoError(t, err)

	access, err := jwt.New(jwt.Config{
		SigningKey: "0123456789abcdef0123456789abcdef",
		Issuer:     "blogkit-test",
		TTL:        time.Hour,
	})
	require.NoError(t, err)

	dir := newMemoryDirectory()
	mailer := &captureMailer{}
	cfg := auth.Config{
		AppName:        "Blogkit",
		BaseURL:        "http://localhost:8080",
		ConfirmTTL:     time.Hour,
		ResetTTL:       time.Hour,
		EmailChangeTTL: time.Hour,
		DefaultRole:    "User",
	}

	return &testEnv{
		svc:    auth.NewService(cfg, dir, tokens, access, mailer, opts...),
		dir:    dir,
		mailer: mailer,
		tokens: tokens,
		access: access,
	}
}

func registerUser(t *testing.T, env *testEnv) *auth.User {
	t.Helper()
	user, err := env.svc.Register(t.Context(), auth.RegisterParams{
		Email:    "john@example.com",
		Username: "john",
		Password: "cat-horse-staple",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := registerUser(t, env)

	assert.Equal(t, "john@example.com", user.Email)
	assert.Equal(t, "john", user.Username)
	assert.Equal(t, "User", user.RoleName)
	assert.False(t, user.Confirmed)
	assert.True(t, password.Verify(user.PasswordHash, "cat-horse-staple"))
	assert.False(t, password.Verify(user.PasswordHash, "wrong"))
	assert.Equal(t, gravatar.Hash("john@example.com"), user.AvatarHash)

	assert.Eventually(t, func() bool { return env.mailer.count() == 1 },
		time.Second, 10*time.Millisecond)
	sent := env.mailer.last()
	assert.Equal(t, "john@example.com", sent.SendTo)
	assert.Equal(t, "confirm", sent.Tag)
	assert.Contains(t, sent.BodyHTML, "/auth/confirm?token=")
}

func TestRegister_NormalizesEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user, err := env.svc.Register(t.Context(), auth.RegisterParams{
		Email:    "  John@Example.COM ",
		Username: "john",
		Password: "cat-horse-staple",
	})
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", user.Email)
}

func TestRegister_Conflicts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	registerUser(t, env)

	_, err := env.svc.Register(t.Context(), auth.RegisterParams{
		Email:    "john@example.com",
		Username: "johnny",
		Password: "cat-horse-staple",
	})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)

	_, err = env.svc.Register(t.Context(), auth.RegisterParams{
		Email:    "johnny@example.com",
		Username: "john",
		Password: "cat-horse-staple",
	})
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	tests := []struct {
		name   string
		params auth.RegisterParams
	}{
		{"malformed email", auth.RegisterParams{Email: "not-an-email", Username: "john", Password: "cat-horse-staple"}},
		{"bad username", auth.RegisterParams{Email: "a@b.co", Username: "9lives", Password: "cat-horse-staple"}},
		{"short password", auth.RegisterParams{Email: "a@b.co", Username: "john", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Register(t.Context(), tt.params)
			assert.ErrorIs(t, err, auth.ErrInvalidInput)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := registerUser(t, env)

	got, bearer, err := env.svc.Authenticate(t.Context(), "john@example.com", "cat-horse-staple")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	subject, err := env.access.Parse(bearer)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)

	_, _, err = env.svc.Authenticate(t.Context(), "john@example.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = env.svc.Authenticate(t.Context(), "nobody@example.com", "cat-horse-staple")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestConfirmAccount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := registerUser(t, env)

	tok, err := env.tokens.Issue(token.ActionConfirm, user.ID, time.Hour)
	require.NoError(t, err)

	require.NoError(t, env.svc.ConfirmAccount(t.Context(), user.ID, tok))

	stored, err := env.dir.ByID(t.Context(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.Confirmed)

	// Already-confirmed accounts accept any token, including garbage.
	assert.NoError(t, env.svc.ConfirmAccount(t.Context(), user.ID, "stale-or-garbage"))
}

func TestConfirmAccount_WrongUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := registerUser(t, env)

	other, err := env.svc.Register(t.Context(), auth.RegisterParams{
		Email:    "susan@example.org",
		Username: "susan",
		Password: "dog-cat-mouse-42",
	})
	require.NoError(t, err)

	tok, err := env.tokens.Issue(token.ActionConfirm, other.ID, time.Hour)
	require.NoError(t, err)

	err = env.svc.ConfirmAccount(t.Context(), user.ID, tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.ErrorIs(t, err, token.ErrSubjectMismatch)

	stored, err := env.dir.ByID(t.Context(), user.ID)
	require.NoError(t, err)
	assert.False(t, stored.Confirmed)
}

func TestConfirmAccount_WrongAction(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := registerUser(t, env)

	tok, err := env.tokens.Issue(token.ActionReset, user.ID, time.Hour)
	require.NoError(t, err)

	err = env.svc.ConfirmAccount(t.Context(), user.ID, tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.ErrorIs(t, err, token.ErrActionMismatch)
}

func TestResendConfirmation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := registerUser(t, env)

	require.NoError(t, env.svc.ResendConfirmation(t.Context(), user.ID))
	assert.Eventually(t, func() bool { return env.mailer.count() == 2 },
		time.Second, 10*time.Millisecond)

	tok, err := env.tokens.Issue(token.ActionConfirm, user.ID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, env.svc.ConfirmAccount(t.Context(), user.ID, tok))

	assert.ErrorIs(t, env.svc.ResendConfirmation(t.Context(), user.ID), auth.ErrAlreadyConfirmed)
}

func TestRequestPasswordReset_UnknownEmailSilent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	// Must not reveal whether the account exists.
	assert.NoError(t, env.svc.RequestPasswordReset(t.Context(), "nobody@example.com"))
}

func TestRequestPasswordReset_SendsLink(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	registerUser(t, env)

	require.NoError(t, env.svc.RequestPasswordReset(t.Context(), "John@Example.com"))
	assert.Eventually(t, func() bool { return env.mailer.count() == 2 },
		time.Second, 10*time.Millisecond)
	sent := env.mailer.last()
	assert.Equal(t, "john@example.com", sent.SendTo)
	assert.Equal(t, "reset", sent.Tag)
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := registerUser(t, env)

	tok, err := env.tokens.Issue(token.ActionReset, user.ID, time.Hour)
	require.NoError(t, err)

	require.NoError(t, env.svc.ResetPassword(t.Context(), tok, "brand-new-password"))

	// New password works, old one no longer does.
	_, _, err = env.svc.Authenticate(t.Context(), "john@example.com", "brand-new-password")
	assert.NoError(t, err)
	_, _, err = env.svc.Authenticate(t.Context(), "john@example.com", "cat-horse-staple")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestResetPassword_MissingSubject(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	registerUser(t, env)

	tok, err := env.tokens.Issue(token.ActionReset, uuid.Nil, time.Hour)
	require.NoError(t, err)

	err = env.svc.ResetPassword(t.Context(), tok, "brand-new-password")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestResetPassword_BadToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	registerUser(t, env)

	err := env.svc.ResetPassword(t.Context(), "garbage", "brand-new-password")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	err = env.svc.ResetPassword(t.Context(), "garbage", "short")
	assert.ErrorIs(t, err, auth.ErrInvalidInput)
}

func TestEmailChange(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := registerUser(t, env)

	require.NoError(t, env.svc.RequestEmailChange(t.Context(), user.ID, "New@Example.net", "cat-horse-staple"))
	assert.Eventually(t, func() bool { return env.mailer.count() == 2 },
		time.Second, 10*time.Millisecond)
	// Link goes to the proposed address, not the current one.
	assert.Equal(t, "new@example.net", env.mailer.last().SendTo)

	tok, err := env.tokens.Issue(token.ActionChangeEmail, user.ID, time.Hour,
		token.WithEmail("new@example.net"))
	require.NoError(t, err)

	require.NoError(t, env.svc.ConfirmEmailChange(t.Context(), user.ID, tok))

	stored, err := env.dir.ByID(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.net", stored.Email)
	assert.Equal(t, gravatar.Hash("new@example.net"), stored.AvatarHash)
}

func TestRequestEmailChange_Guards(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := registerUser(t, env)

	err := env.svc.RequestEmailChange(t.Context(), user.ID, "new@example.net", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err2 := env.svc.Register(t.Context(), auth.RegisterParams{
		Email:    "taken@example.net",
		Username: "susan",
		Password: "dog-cat-mouse-42",
	})
	require.NoError(t, err2)

	err = env.svc.RequestEmailChange(t.Context(), user.ID, "taken@example.net", "cat-horse-staple")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestConfirmEmailChange_AddressClaimedMeanwhile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := registerUser(t, env)

	tok, err := env.tokens.Issue(token.ActionChangeEmail, user.ID, time.Hour,
		token.WithEmail("new@example.net"))
	require.NoError(t, err)

	// Someone registers the proposed address between link and click.
	_, err = env.svc.Register(t.Context(), auth.RegisterParams{
		Email:    "new@example.net",
		Username: "susan",
		Password: "dog-cat-mouse-42",
	})
	require.NoError(t, err)

	err = env.svc.ConfirmEmailChange(t.Context(), user.ID, tok)
	assert.ErrorIs(t, err, auth.ErrEmailTaken)

	stored, err := env.dir.ByID(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", stored.Email)
}

func TestConfirmEmailChange_MissingPayload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := registerUser(t, env)

	tok, err := env.tokens.Issue(token.ActionChangeEmail, user.ID, time.Hour)
	require.NoError(t, err)

	err = env.svc.ConfirmEmailChange(t.Context(), user.ID, tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := registerUser(t, env)

	about := "I like cats."
	location := "Chicago"
	updated, err := env.svc.UpdateProfile(t.Context(), user.ID, auth.ProfileParams{
		About:    &about,
		Location: &location,
	})
	require.NoError(t, err)
	assert.Equal(t, "I like cats.", updated.About)
	assert.Equal(t, "Chicago", updated.Location)
	assert.Equal(t, "john", updated.Username, "untouched fields stay")

	_, err = env.svc.Register(t.Context(), auth.RegisterParams{
		Email:    "susan@example.org",
		Username: "susan",
		Password: "dog-cat-mouse-42",
	})
	require.NoError(t, err)

	taken := "susan"
	_, err = env.svc.UpdateProfile(t.Context(), user.ID, auth.ProfileParams{Username: &taken})
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
}

func TestPing(t *testing.T) {
	t.Parallel()

	seen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	env := newTestEnv(t, auth.WithTimeFunc(func() time.Time { return seen }))
	user := registerUser(t, env)

	require.NoError(t, env.svc.Ping(t.Context(), user.ID))

	stored, err := env.dir.ByID(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, seen, stored.LastSeenAt)

	assert.ErrorIs(t, env.svc.Ping(t.Context(), uuid.New()), auth.ErrUserNotFound)
}
