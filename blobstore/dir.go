package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DirStore keeps one file per key in a directory. Values are written to a
// temporary file and renamed into place, so readers never see a partial value.
type DirStore struct {
	root string
}

var _ Store = (*DirStore)(nil)

// NewDirStore creates root if needed and returns a store rooted there
func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "blobstore: create %s", root)
	}
	return &DirStore{root: root}, nil
}

// Root returns the directory backing the store
func (d *DirStore) Root() string {
	return d.root
}

// Get opens the file for key
func (d *DirStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(d.root, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "%q", key)
		}
		return nil, errors.Wrapf(err, "blobstore: open %q", key)
	}
	return f, nil
}

// Put streams r into a temporary file and renames it to key
func (d *DirStore) Put(ctx context.Context, key string, r io.Reader) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	tmp := filepath.Join(d.root, ".tmp-"+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrapf(err, "blobstore: create temp file for %q", key)
	}

	if _, err := io.Copy(f, contextReader{ctx, r}); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "blobstore: put %q", key)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "blobstore: put %q", key)
	}
	if err := os.Rename(tmp, filepath.Join(d.root, key)); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "blobstore: put %q", key)
	}
	return nil
}
