// Package cache is the chat-scoped shared cache used to hand ephemeral
// negotiation state between disconnected interaction steps. Values are
// JSON documents keyed by (chat id, name); no key ever spans chats.
package cache

import (
	"context"
	"errors"
	"time"
)

// Persistent disables expiry for a key.
const Persistent time.Duration = 0

// DefaultTTL matches the previous generation of the bot: drafts live for
// a day unless consumed earlier.
const DefaultTTL = 24 * time.Hour

var (
	// ErrMiss means the key does not exist. Callers may treat it as
	// "absent" and continue.
	ErrMiss = errors.New("cache: key not found")

	// ErrUnavailable means the backend failed. Correctness-critical
	// readers must NOT treat this as a miss.
	ErrUnavailable = errors.New("cache: backend unavailable")
)

// SharedCache stores JSON-serializable values scoped to a chat.
type SharedCache interface {
	// Set marshals value and stores it under (chatID, key). ttl of
	// Persistent means no expiry.
	Set(ctx context.Context, chatID int64, key string, value any, ttl time.Duration) error

	// Get unmarshals the stored value into dest. Returns ErrMiss or
	// ErrUnavailable.
	Get(ctx context.Context, chatID int64, key string, dest any) error

	// GetDel atomically reads and removes the value: the second of two
	// concurrent callers observes ErrMiss. This is what makes admin
	// approval idempotent.
	GetDel(ctx context.Context, chatID int64, key string, dest any) error

	// Delete removes one key, or every key of the chat when key is "".
	Delete(ctx context.Context, chatID int64, key string) error
}
