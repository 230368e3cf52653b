package cart

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// StorageKey is the fixed key the full line list is saved under.
const StorageKey = "min-commerce.cart"

// ErrNotFound means no cart has been saved yet. The store treats it as an
// empty cart, not a failure.
var ErrNotFound = errors.New("cart: no saved state")

// Storage is the durable single-key store behind a cart. Save overwrites
// the previous payload entirely.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FileStorage keeps the serialized cart in a single JSON file, the
// local-storage equivalent for a client running on one device.
type FileStorage struct {
	Path string
}

func (f FileStorage) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (f FileStorage) Save(_ context.Context, data []byte) error {
	return os.WriteFile(f.Path, data, 0o600)
}
