package cache

import "context"

// NullStore is a no-op store that never holds anything.
// Every page is fetched from the network when it is in use.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return &NullStore{}
}

// IsFresh always reports a miss.
func (NullStore) IsFresh(ctx context.Context, key string) (bool, error) {
	return false, nil
}

// Read always returns ErrNotFound.
func (NullStore) Read(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrNotFound
}

// Write does nothing.
func (NullStore) Write(ctx context.Context, key string, data []byte) error {
	return nil
}

// Delete does nothing.
func (NullStore) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (NullStore) Close() error {
	return nil
}

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
