package domain

import "context"

// DocumentFetcher retrieves the raw JSON payload stored at a location.
type DocumentFetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// KeyValueStore is the durable preference storage.
type KeyValueStore interface {
	// Get returns the value of a key and whether it exists.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(keys ...string) error
}

// Persisted state keys.
const (
	StoreKeyCurrentService = "nextdoc4j-current-service"
	StoreKeyServiceTabs    = "nextdoc4j-service-tabs"
)
