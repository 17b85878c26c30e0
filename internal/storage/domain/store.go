package domain

import "context"

// Store is a durable key/value slot with change notification.
//
// A write through this store is visible to a subsequent Read from the same
// process immediately. Writes from other processes sharing the same backing
// storage are delivered to subscribers asynchronously, at least once, with no
// ordering guarantee relative to local writes. The last physical write wins;
// there is no merge.
type Store interface {
	// Read returns the stored value for key. Missing keys and backend read
	// failures both report absent; callers fall back to their documented
	// default.
	Read(ctx context.Context, key string) ([]byte, bool)

	// Write durably stores value under key before returning.
	Write(ctx context.Context, key string, value []byte) error

	// Delete removes the value stored under key.
	Delete(ctx context.Context, key string) error

	// Subscribe registers fn for changes made to key by other execution
	// contexts; a store never announces its own writes. fn receives the new
	// value, or nil when the key was deleted. Delivery is asynchronous. The
	// returned function unregisters the subscription; callers must invoke it
	// on teardown so stale listeners never act after navigation away.
	Subscribe(key string, fn func(value []byte)) (unsubscribe func())

	// Close releases the store and all active subscriptions.
	Close() error
}
