// Package slot provides the single-key durable storage the ledger persists to.
package slot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("slot: key not found")

// Slot is a durable key-value store holding whole serialized values.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists every backend name Open accepts.
var Backends = []string{BackendFile, BackendSQLite, BackendMemory}

// Open creates the named backend rooted at dir.
func Open(backend, dir string) (Slot, error) {
	switch backend {
	case BackendFile, "":
		return NewFile(dir)
	case BackendSQLite:
		return NewSQLite(filepath.Join(dir, "gastos.db"))
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
