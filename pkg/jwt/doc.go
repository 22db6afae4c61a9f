// Package jwt issues and validates bearer access tokens for authenticated
// sessions. After a successful password login the auth service hands the
// host framework one of these tokens; the framework presents it back on
// subsequent requests to identify the user.
//
// Tokens are HMAC-SHA256 signed JWTs carrying the registered claims only:
// issuer, subject (user id), issued-at, and expiry.
package jwt
