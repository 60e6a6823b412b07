// Package session holds the per-browser record written by login and signup
// and read by later views.
package session

import "context"

// Store is a string key-value store partitioned by session id. Implementations
// are safe for concurrent use.
type Store interface {
	Get(ctx context.Context, sid, key string) (string, bool, error)
	Set(ctx context.Context, sid, key, value string) error
	// Delete removes the given keys, or every key of sid when none are given.
	Delete(ctx context.Context, sid string, keys ...string) error
}
