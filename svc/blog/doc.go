// Package blog implements posts, comments, and the follower graph.
//
// Every write is guarded by the permission bitmask of the principal stored
// in the request context (see pkg/perm): publishing needs Write and a
// confirmed account, commenting needs Comment, moderation needs Moderate,
// following needs Follow. Administrators get no implicit bypass beyond the
// bits their role grants.
//
// Markdown bodies are rendered to sanitized HTML once, at write time, and
// stored next to the source text. Rendering is an explicit transform in the
// service, not a storage-layer hook, so the pipeline is visible and testable
// in isolation.
package blog
