package core

import (
	"context"
	"io"
)

// FileStorage stores uploaded deliverable files. Save returns the storage
// path the file can later be addressed by; paths are opaque to callers.
type FileStorage interface {
	// Save stores the content under a name derived from filename and
	// returns the storage path.
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	// Delete removes a stored file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error
	// URL returns the public URL a stored path is served under.
	URL(path string) string
}
