// Package clipboard reads the system clipboard.
package clipboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"sitesearch/internal/domain"
)

// Reader implements domain.ClipboardReader with atotto/clipboard.
type Reader struct {
	// readAll is swapped in tests.
	readAll func() (string, error)
}

// New returns a Reader backed by the system clipboard.
func New() *Reader {
	return &Reader{readAll: clipboard.ReadAll}
}

// Available reports whether a clipboard utility was found on this system.
func Available() bool {
	return !clipboard.Unsupported
}

// ReadText returns the trimmed clipboard text.
func (r *Reader) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := r.readAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return strings.TrimSpace(text), nil
}

var _ domain.ClipboardReader = (*Reader)(nil)
