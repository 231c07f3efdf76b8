// Package blobstore keeps rendered images and small values under string keys.
package blobstore

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by Get for a missing key
	ErrNotFound = errors.New("blobstore: key not found")

	// ErrInvalidKey is returned for keys that cannot be stored
	ErrInvalidKey = errors.New("blobstore: invalid key")
)

// MaxKeyLength bounds key size
const MaxKeyLength = 200

// Store is a flat key/value blob store.
type Store interface {
	// Get opens the value stored under key. The caller closes the reader.
	// A done ctx fails the call before the store is touched.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Put stores everything read from r under key, replacing any previous
	// value. A read error from r leaves the previous value in place.
	Put(ctx context.Context, key string, r io.Reader) error
}

// ValidateKey rejects keys that are empty, too long, contain path
// separators or control characters, or start with a dot.
func ValidateKey(key string) error {
	if key == "" || len(key) > MaxKeyLength {
		return errors.Wrapf(ErrInvalidKey, "%q", key)
	}
	if strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) {
		return errors.Wrapf(ErrInvalidKey, "%q", key)
	}
	for _, c := range key {
		if c < 0x20 || c == 0x7f {
			return errors.Wrapf(ErrInvalidKey, "%q", key)
		}
	}
	return nil
}

// GetString reads a whole value as a string
func GetString(ctx context.Context, s Store, key string) (string, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", errors.Wrapf(err, "blobstore: read %q", key)
	}
	return string(b), nil
}

// PutString stores v under key
func PutString(ctx context.Context, s Store, key, v string) error {
	return s.Put(ctx, key, strings.NewReader(v))
}

// contextReader stops reading once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readAll(ctx context.Context, r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(contextReader{ctx, r}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
