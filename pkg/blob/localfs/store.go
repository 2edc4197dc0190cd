// Package localfs stores blobs on a local (or in memory) file system
package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/oneconcern/depot/pkg/blob"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// New creates a new file system backed blob store
func New(fs afero.Fs) blob.Store {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), filepath.Join(".depot", "blobs"))
	}
	return &localFS{
		fs: fs,
	}
}

type localFS struct {
	fs afero.Fs
}

func (l *localFS) Has(ctx context.Context, key string) (bool, error) {
	fi, err := l.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return !fi.IsDir(), nil
}

func (l *localFS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := l.fs.Open(key)
	if os.IsNotExist(err) {
		return nil, blob.ErrNotFound
	}
	return f, err
}

// Put writes to a temp file next to the target and renames it into place
func (l *localFS) Put(ctx context.Context, key string, rdr io.Reader) error {
	dir := filepath.Dir(key)
	if err := l.fs.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "ensuring directories for %q", key)
	}

	fi, err := afero.TempFile(l.fs, dir, "depot-put")
	if err != nil {
		return errors.Wrapf(err, "create record for %q", key)
	}
	defer func() {
		_ = fi.Close()
		_ = l.fs.Remove(fi.Name())
	}()

	if _, err = io.Copy(fi, rdr); err != nil {
		return errors.Wrapf(err, "write record for %q", key)
	}

	if err = fi.Close(); err != nil {
		return err
	}

	return l.fs.Rename(fi.Name(), key)
}

func (l *localFS) Delete(ctx context.Context, key string) error {
	if err := l.fs.Remove(key); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %q", key)
	}
	return nil
}

func (l *localFS) String() string {
	const localfs = "localfs"
	switch fs := l.fs.(type) {
	case *afero.BasePathFs:
		pp, err := fs.RealPath("")
		if err != nil {
			return localfs
		}
		return localfs + "@" + pp
	default:
		return localfs
	}
}
