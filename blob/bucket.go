// Package blob implements the roster store over a single serialized JSON
// value holding the whole meeting collection under one key. Every
// mutation is a read-modify-write of the
// entire blob, so the store is strictly single-writer: two concurrent
// writers can lose one of the updates. A mutex serializes writers within
// one process; nothing protects against a second process on the same
// bucket. Multi-writer deployments belong on the dynamo store instead.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Bucket is a single-value byte store.
// Get reports ok=false when nothing has ever been stored.
type Bucket interface {
	Get(ctx context.Context) (data []byte, ok bool, err error)
	Put(ctx context.Context, data []byte) error
}

var _ Bucket = &FileBucket{}

// FileBucket keeps the blob in one file, replaced atomically on every
// write via a temp file and rename.
type FileBucket struct {
	path string
}

func NewFileBucket(path string) *FileBucket {
	return &FileBucket{path: path}
}

func (b *FileBucket) Get(ctx context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %q: %w", b.path, err)
	}
	return data, true, nil
}

func (b *FileBucket) Put(ctx context.Context, data []byte) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file %q: %w", tmpName, err)
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp file %q: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %q: %w", b.path, err)
	}
	return nil
}
