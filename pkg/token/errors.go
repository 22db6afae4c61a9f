package token

import "errors"

var (
	// ErrInvalidToken is returned for structurally malformed tokens.
	ErrInvalidToken = errors.New("invalid token format")

	// ErrSignatureInvalid is returned when the recomputed signature does not
	// match the one carried by the token.
	ErrSignatureInvalid = errors.New("signature mismatch")

	// ErrTokenExpired is returned when the token's expiration window has
	// passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrActionMismatch is returned when a token authorizes a different
	// action than the one being verified.
	ErrActionMismatch = errors.New("token action mismatch")

	// ErrSubjectMismatch is returned when the embedded subject id does not
	// match the expected subject.
	ErrSubjectMismatch = errors.New("token subject mismatch")

	// ErrTokenUsed is returned by Consume when a replay guard has already
	// seen the token.
	ErrTokenUsed = errors.New("token already used")

	// ErrMissingSecret is returned when a Service is constructed without a
	// signing secret.
	ErrMissingSecret = errors.New("missing signing secret")
)
