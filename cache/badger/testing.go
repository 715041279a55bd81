package badger

import "fmt"

// NewMemoryStore creates an in-memory store for testing.
// No files are created and all data is lost on Close.
func NewMemoryStore() (*Store, error) {
	store, err := OpenStore("", true)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory store: %w", err)
	}
	return store, nil
}
