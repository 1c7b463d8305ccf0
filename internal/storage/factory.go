package storage

import "fmt"

// NewStore builds the run store for the requested backend. An empty kind
// selects the in-memory store; "sqlite" opens a file-backed store at
// sqlitePath once Init is called.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown run-store backend %q (want memory or sqlite)", kind)
	}
}

// CloseIfSupported closes stores that hold external resources and is a
// no-op for the rest.
func CloseIfSupported(store Store) error {
	if closer, ok := store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
