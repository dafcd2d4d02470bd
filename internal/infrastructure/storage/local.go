package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Local writes profile pictures to a directory on disk. The returned
// reference is the file path relative to the process working directory.
type Local struct {
	Dir string
}

func NewLocal(dir string) *Local {
	return &Local{Dir: dir}
}

func (s *Local) Save(_ context.Context, object, _ string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, object)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

var _ ProfileStorage = (*Local)(nil)
