// Package persist implements the versioned rehydrate/persist/clear engine
// and the key-value storage backends it runs on. The store core consumes it
// through the Engine; backends only need the Storage contract.
package persist

import "errors"

var (
	ErrNotFound    = errors.New("persist: item not found")
	ErrPersistence = errors.New("persist: storage failure")
	ErrBadVersion  = errors.New("persist: persisted version is newer than the target version")
)

// Storage is the raw key-value contract a backend provides. Values are
// opaque byte payloads; Clear drops every item, Purge additionally reclaims
// backend resources (compaction, file removal).
type Storage interface {
	GetItem(key string) ([]byte, error)
	SetItem(key string, value []byte) error
	RemoveItem(key string) error
	Clear() error
	Purge() error
}
