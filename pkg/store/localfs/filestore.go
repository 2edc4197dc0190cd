package localfs

import (
	"context"

	"github.com/oneconcern/depot/pkg/store"
	"github.com/segmentio/ksuid"
)

type fileStore struct {
	*tx
}

func (f *fileStore) Create(ctx context.Context, file *store.FileInstance) error {
	if file.ID == "" {
		file.ID = ksuid.New().String()
	}
	if err := setJSON(f.txn, fileKey(file.ID), file); err != nil {
		return err
	}
	if file.Checksum == "" {
		return nil
	}
	return f.txn.Set(checksumKey(file.Checksum), []byte(file.ID))
}

func (f *fileStore) Get(ctx context.Context, id string) (*store.FileInstance, error) {
	if id == "" {
		return nil, store.ErrIDRequired
	}
	var file store.FileInstance
	if err := getJSON(f.txn, fileKey(id), store.ErrFileNotFound, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *fileStore) GetByChecksum(ctx context.Context, checksum string) (*store.FileInstance, error) {
	if checksum == "" {
		return nil, store.ErrKeyRequired
	}
	id, err := getString(f.txn, checksumKey(checksum), store.ErrFileNotFound)
	if err != nil {
		return nil, err
	}
	return f.Get(ctx, id)
}
