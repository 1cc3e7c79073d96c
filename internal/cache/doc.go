// Package cache provides a file-based cache for LLM generation responses.
//
// Cache entries are keyed by a SHA-256 hash of the provider name, model, and
// prompts. Each entry stores the raw response string along with a creation
// timestamp and a TTL (in seconds). Expired entries are removed on read and
// during cache-clear operations.
//
// The default cache directory is $XDG_CACHE_HOME/redline (or the OS-appropriate
// equivalent). Passages are PHI-redacted before they reach a prompt, so cached
// keys and responses never see unmasked identifiers when redaction is on.
package cache
