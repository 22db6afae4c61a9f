// Package token provides compact, signed, expiring action tokens for account
// workflows: email confirmation, password reset, and email change.
//
// Tokens use HMAC-SHA256 with truncated 8-byte signatures for balance between
// security and compactness. Suitable for short-lived email links. Not
// recommended for high-value or long-lived credentials.
//
// Token format: base64url(payload).base64url(signature)
//
// The 8-byte signature provides ~2^32 collision resistance, sufficient for
// typical short-lived application tokens but not cryptographically strong
// enough for sensitive operations.
//
// The low-level codec (GenerateToken/ParseToken) signs any JSON-serializable
// payload. The Service layer adds the action-token semantics on top: an
// action discriminator, a subject user id, an optional email payload, and an
// expiration window checked against an injected Clock.
//
// # Usage
//
//	svc, err := token.NewService(secret)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tok, err := svc.Issue(token.ActionConfirm, userID, time.Hour)
//	// ... email the token to the user ...
//
//	claims, err := svc.Verify(tok, token.ActionConfirm, token.WithSubject(userID))
//	if err != nil {
//	    // link invalid or expired
//	}
//
// Verification is a pure decision tree: structural decode, signature
// recomputation, expiry, then optional subject binding. Each step failing
// yields a sentinel error; nothing panics.
//
// Tokens are stateless and are not invalidated by successful consumption on
// their own. Configure a ReplayGuard (Redis-backed in production, in-memory
// for tests) and use Consume to get single-use semantics.
package token
