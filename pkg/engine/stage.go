package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/oneconcern/depot/pkg/fingerprint"
	"github.com/oneconcern/depot/pkg/store"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// UploadFilePath as a file to add to a deposit, the key defaults to the base name
func UploadFilePath(key, pth string) (Upload, error) {
	f, err := os.Open(pth)
	if err != nil {
		return Upload{}, err
	}
	if key == "" {
		key = filepath.Base(pth)
	}
	return Upload{
		Key:    key,
		Stream: f,
	}, nil
}

// UploadStream as a file to add to a deposit
func UploadStream(key string, reader io.Reader) Upload {
	return Upload{
		Key:    key,
		Stream: reader,
	}
}

// Upload arguments for adding a file to a deposit
type Upload struct {
	Key    string
	Stream io.Reader

	_ struct{} // avoid unkeyed usage
}

// Close the stream when it can be closed
func (u *Upload) Close() error {
	if closer, ok := u.Stream.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ObjectInfo is an object version with its tags and content details
type ObjectInfo struct {
	store.Object `yaml:",inline"`
	Checksum     string     `json:"checksum" yaml:"checksum"`
	Size         int64      `json:"size" yaml:"size"`
	Tags         store.Tags `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// AddFile stores the content of the upload and adds it as a new object version
// to the live bucket of a draft deposit.
//
// Content is stored once per checksum, uploads of the same bytes share a file instance.
func (r *Runtime) AddFile(ctx context.Context, depositID string, upload Upload) (*store.Object, error) {
	defer upload.Close()

	if depositID == "" {
		return nil, store.ErrIDRequired
	}
	deposit, err := r.GetDeposit(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit.Status != store.StatusDraft {
		return nil, ErrNotDraft
	}

	spooled, err := afero.TempFile(r.spool, "", "depot-upload")
	if err != nil {
		return nil, errors.Wrap(err, "spool upload")
	}
	defer func() {
		_ = spooled.Close()
		_ = r.spool.Remove(spooled.Name())
	}()

	fp := fingerprint.NewWriter()
	if _, err = io.Copy(spooled, io.TeeReader(upload.Stream, fp)); err != nil {
		return nil, errors.Wrapf(err, "spool %q", upload.Key)
	}
	if _, err = spooled.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	checksum := fp.Checksum()
	blobKey, err := fingerprint.BlobKey(checksum)
	if err != nil {
		return nil, err
	}

	log := r.logger.With(zap.String("deposit", depositID), zap.String("key", upload.Key), zap.String("checksum", checksum))

	// uploads of the same content are serialized, so that a failed upload
	// never removes content another upload has committed a file instance for
	contentLock := "checksum:" + checksum
	r.locks.Lock(contentLock)
	defer r.locks.Unlock(contentLock)

	found, err := r.blobs.Has(ctx, blobKey)
	if err != nil {
		return nil, err
	}
	if !found {
		if err = r.blobs.Put(ctx, blobKey, spooled); err != nil {
			return nil, errors.Wrapf(err, "store %q", upload.Key)
		}
		log.Debug("stored new content", zap.Int64("size", fp.Size()))
	}

	obj, err := r.addObject(ctx, depositID, upload.Key, &store.FileInstance{
		Checksum: checksum,
		Size:     fp.Size(),
		URI:      r.blobs.String() + "/" + blobKey,
	})
	if err != nil {
		if !found {
			r.dropUnreferenced(ctx, log, checksum, blobKey)
		}
		return nil, err
	}

	log.Info("file added", zap.Stringer("version", obj.VersionID))
	return obj, nil
}

func (r *Runtime) addObject(ctx context.Context, depositID, key string, content *store.FileInstance) (*store.Object, error) {
	r.locks.Lock(depositID)
	defer r.locks.Unlock(depositID)

	var obj *store.Object
	err := r.db.Update(ctx, func(tx store.Tx) error {
		// a publish may have happened while the content was being stored
		deposit, err := tx.Deposits().Get(ctx, depositID)
		if err != nil {
			return err
		}
		if deposit.Status != store.StatusDraft {
			return ErrNotDraft
		}

		file, err := tx.Files().GetByChecksum(ctx, content.Checksum)
		if errors.Is(err, store.ErrFileNotFound) {
			file = content
			err = tx.Files().Create(ctx, file)
		}
		if err != nil {
			return err
		}

		obj, err = tx.Objects().Create(ctx, deposit.BucketID, key, file.ID)
		return err
	})
	return obj, err
}

// dropUnreferenced removes stored content when no file instance points at it.
// The caller holds the content lock.
func (r *Runtime) dropUnreferenced(ctx context.Context, log *zap.Logger, checksum, blobKey string) {
	err := r.db.View(ctx, func(tx store.Tx) error {
		_, err := tx.Files().GetByChecksum(ctx, checksum)
		return err
	})
	switch {
	case err == nil:
		return
	case !errors.Is(err, store.ErrFileNotFound):
		log.Warn("keeping content, can't tell if it is referenced", zap.Error(err))
		return
	}
	if err = r.blobs.Delete(ctx, blobKey); err != nil {
		log.Warn("leaking content", zap.Error(err))
	}
}

// TagObject sets a tag on an object version.
// Objects in the live bucket of a deposit can only be tagged while the deposit is a draft.
func (r *Runtime) TagObject(ctx context.Context, version store.VersionID, key, value string) error {
	var owner string
	err := r.db.View(ctx, func(tx store.Tx) error {
		obj, err := tx.Objects().Get(ctx, version)
		if err != nil {
			return err
		}
		deposit, err := tx.Deposits().GetByBucket(ctx, obj.BucketID)
		switch {
		case err == nil:
			owner = deposit.ID
		case !errors.Is(err, store.ErrDepositNotFound):
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	if owner != "" {
		r.locks.Lock(owner)
		defer r.locks.Unlock(owner)
	}

	return r.db.Update(ctx, func(tx store.Tx) error {
		if owner != "" {
			deposit, err := tx.Deposits().Get(ctx, owner)
			if err != nil {
				return err
			}
			if deposit.Status != store.StatusDraft {
				return ErrNotDraft
			}
		}
		return tx.Objects().SetTag(ctx, version, key, value)
	})
}

// ListObjects in a bucket, with their tags
func (r *Runtime) ListObjects(ctx context.Context, bucketID string) ([]ObjectInfo, error) {
	var infos []ObjectInfo
	err := r.db.View(ctx, func(tx store.Tx) error {
		objects, err := tx.Objects().List(ctx, bucketID)
		if err != nil {
			return err
		}
		infos = make([]ObjectInfo, len(objects))
		for i, obj := range objects {
			tags, err := tx.Objects().Tags(ctx, obj.VersionID)
			if err != nil {
				return err
			}
			file, err := tx.Files().Get(ctx, obj.FileID)
			if err != nil {
				return err
			}
			infos[i] = ObjectInfo{Object: obj, Checksum: file.Checksum, Size: file.Size, Tags: tags}
		}
		return nil
	})
	return infos, err
}

// OpenFile returns the content of an object version
func (r *Runtime) OpenFile(ctx context.Context, version store.VersionID) (io.ReadCloser, *store.FileInstance, error) {
	var file *store.FileInstance
	err := r.db.View(ctx, func(tx store.Tx) error {
		obj, err := tx.Objects().Get(ctx, version)
		if err != nil {
			return err
		}
		file, err = tx.Files().Get(ctx, obj.FileID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	blobKey, err := fingerprint.BlobKey(file.Checksum)
	if err != nil {
		return nil, nil, err
	}
	rdr, err := r.blobs.Get(ctx, blobKey)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "content of %s", version)
	}
	return rdr, file, nil
}
