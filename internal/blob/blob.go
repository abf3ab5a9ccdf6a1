// Package blob serves stored binary objects such as uploaded images.
//
// Objects are addressed by slash-separated keys ("uploads/<fileId>").
// FileStore keeps them under a directory on local disk and refuses keys
// that would resolve outside it.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"strconv"
	"time"
)

var (
	// ErrNotFound is returned when no object is stored under a key.
	ErrNotFound = errors.New("blob: object not found")

	// ErrInvalidKey is returned for empty, absolute or escaping keys.
	ErrInvalidKey = errors.New("blob: invalid key")
)

// DefaultContentType is used when the key's extension is unknown.
const DefaultContentType = "application/octet-stream"

// Store opens stored objects for reading.
type Store interface {
	Open(ctx context.Context, key string) (*Object, error)
}

// Object is an open stored object. The caller must Close it.
type Object struct {
	io.ReadSeekCloser

	Key         string
	Size        int64
	ModTime     time.Time
	ContentType string

	// ETag is a quoted entity tag derived from size and modification time.
	ETag string
}

// FileStore is a Store backed by a local directory.
type FileStore struct {
	root *os.Root
}

// NewFileStore opens dir as an object store, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("opening storage directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Close releases the store's directory handle.
func (s *FileStore) Close() error {
	return s.root.Close()
}

// Open returns the object stored under key.
func (s *FileStore) Open(ctx context.Context, key string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(key) || key == "." {
		return nil, ErrInvalidKey
	}

	f, err := s.root.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("opening object %s: %w", key, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}
	if info.IsDir() {
		f.Close() //nolint:errcheck // read-only handle
		return nil, ErrNotFound
	}

	return &Object{
		ReadSeekCloser: f,
		Key:            key,
		Size:           info.Size(),
		ModTime:        info.ModTime(),
		ContentType:    contentType(key),
		ETag:           etag(info.Size(), info.ModTime()),
	}, nil
}

// Put stores the contents of r under key, replacing any existing object.
func (s *FileStore) Put(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !fs.ValidPath(key) || key == "." {
		return ErrInvalidKey
	}

	if dir := path.Dir(key); dir != "." {
		if err := s.root.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating object directory: %w", err)
		}
	}

	f, err := s.root.Create(key)
	if err != nil {
		return fmt.Errorf("creating object %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close() //nolint:errcheck // already failing
		return fmt.Errorf("writing object %s: %w", key, err)
	}
	return f.Close()
}

func contentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return DefaultContentType
}

func etag(size int64, mod time.Time) string {
	return `"` + strconv.FormatInt(size, 16) + "-" + strconv.FormatInt(mod.UnixNano(), 16) + `"`
}
