// Package gravatar derives Gravatar lookup keys and image URLs from email
// addresses.
//
// The hash is the protocol-mandated MD5 of the normalized address. It is a
// lookup key, not a security primitive; storing it beside the user avoids
// recomputing on every page render, but it must be refreshed whenever the
// email changes.
package gravatar

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

const baseURL = "https://secure.gravatar.com/avatar"

// Hash returns the Gravatar key for an email: MD5 hex of the trimmed,
// lowercased address.
func Hash(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Options control the rendered avatar variant.
type Options struct {
	// Size is the square pixel size, 1..2048. Zero falls back to Gravatar's
	// default (80).
	Size int

	// Default names the fallback image set served for unknown emails,
	// e.g. "identicon", "retro", "mp". Empty uses the Gravatar logo.
	Default string

	// Rating caps the allowed content rating: "g", "pg", "r" or "x".
	Rating string
}

// URL builds an avatar URL from a precomputed hash.
func URL(hash string, opts Options) string {
	url := fmt.Sprintf("%s/%s", baseURL, hash)

	params := make([]string, 0, 3)
	if opts.Size > 0 {
		params = append(params, fmt.Sprintf("s=%d", opts.Size))
	}
	if opts.Default != "" {
		params = append(params, "d="+opts.Default)
	}
	if opts.Rating != "" {
		params = append(params, "r="+opts.Rating)
	}
	if len(params) > 0 {
		url += "?" + strings.Join(params, "&")
	}
	return url
}

// URLForEmail builds an avatar URL straight from an email address.
func URLForEmail(email string, opts Options) string {
	return URL(Hash(email), opts)
}
