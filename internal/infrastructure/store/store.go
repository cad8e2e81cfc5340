// Package store provides the persistent keyed document store used for
// criminal records, guild settings and custom scenarios. Documents are
// scoped per guild or per (guild, actor); a single-writer lock keyed by
// (guild, actor) guards every read-modify-write section.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no document exists for the key.
var ErrNotFound = errors.New("store: key not found")

// Store is the persistent keyed store contract.
type Store interface {
	// Get unmarshals the document at key into v. Returns ErrNotFound
	// when the key has never been written.
	Get(ctx context.Context, key string, v any) error
	// Set marshals v and writes it at key.
	Set(ctx context.Context, key string, v any) error
	// Delete removes the document at key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error
	// WithLock runs fn while holding the named single-writer lock.
	// Reads and writes of a record must happen inside the actor's
	// lock; two concurrent sections with the same name serialize.
	WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error
	// Actors lists every actor in a guild that has a record, for
	// cross-actor cleanup.
	Actors(ctx context.Context, guild string) ([]string, error)
	// Close releases the underlying connection.
	Close() error
}

// Key builders. The record key shape is load-bearing: Actors scans for
// it to enumerate a guild's members.
func RecordKey(guild, actor string) string {
	return fmt.Sprintf("guild:%s:actor:%s:record", guild, actor)
}

func SettingsKey(guild string) string {
	return fmt.Sprintf("guild:%s:settings", guild)
}

func CrimesKey(guild string) string {
	return fmt.Sprintf("guild:%s:crimes", guild)
}

func ScenariosKey(guild string) string {
	return fmt.Sprintf("guild:%s:scenarios", guild)
}

// ActorLockName names the per-actor single-writer critical section.
func ActorLockName(guild, actor string) string {
	return fmt.Sprintf("guild:%s:actor:%s", guild, actor)
}
