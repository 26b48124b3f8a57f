package domain

import "context"

// TabURLSource reports the URL of the browser's frontmost tab.
// An error or an empty string both mean the browser is unavailable.
type TabURLSource interface {
	ActiveTabURL(ctx context.Context) (string, error)
	Name() string
}

// ClipboardReader reads plain text from the system clipboard.
type ClipboardReader interface {
	ReadText(ctx context.Context) (string, error)
}

// KVStore persists opaque values by key.
type KVStore interface {
	// Get returns ErrNotFound when key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// URLOpener hands a URL to the environment. It does not wait for the
// target application.
type URLOpener interface {
	Open(ctx context.Context, url string) error
}
