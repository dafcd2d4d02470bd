package storage

import (
	"context"
	"io"
)

// ProfileStorage stores profile pictures under a deterministic object name
// and returns the reference recorded on the user row. Backed by local disk
// or GCS depending on configuration.
type ProfileStorage interface {
	Save(ctx context.Context, object, contentType string, r io.Reader) (string, error)
}
