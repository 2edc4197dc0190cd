package localfs

import (
	"context"
	"strings"

	"github.com/oneconcern/depot/pkg/store"
)

type objectStore struct {
	*tx
}

func (o *objectStore) writableBucket(ctx context.Context, id string) (*store.Bucket, error) {
	bucket, err := (&bucketStore{o.tx}).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if bucket.Locked {
		return nil, store.ErrBucketLocked
	}
	return bucket, nil
}

func (o *objectStore) Create(ctx context.Context, bucketID, key, fileID string) (*store.Object, error) {
	if strings.TrimSpace(key) == "" {
		return nil, store.ErrKeyRequired
	}
	if fileID == "" {
		return nil, store.ErrIDRequired
	}
	if _, err := o.writableBucket(ctx, bucketID); err != nil {
		return nil, err
	}
	found, err := exists(o.txn, fileKey(fileID))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrFileNotFound
	}

	version, err := o.nextVersion()
	if err != nil {
		return nil, err
	}
	obj := &store.Object{
		BucketID:  bucketID,
		Key:       key,
		VersionID: version,
		FileID:    fileID,
		Created:   o.now(),
	}
	if err := setJSON(o.txn, objectKey(bucketID, version), obj); err != nil {
		return nil, err
	}
	if err := o.txn.Set(versionKey(version), []byte(bucketID)); err != nil {
		return nil, err
	}
	return obj, nil
}

func (o *objectStore) Get(ctx context.Context, version store.VersionID) (*store.Object, error) {
	bucketID, err := getString(o.txn, versionKey(version), store.ErrObjectNotFound)
	if err != nil {
		return nil, err
	}
	var obj store.Object
	if err := getJSON(o.txn, objectKey(bucketID, version), store.ErrObjectNotFound, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (o *objectStore) List(ctx context.Context, bucketID string) ([]store.Object, error) {
	if _, err := (&bucketStore{o.tx}).Get(ctx, bucketID); err != nil {
		return nil, err
	}
	var result []store.Object
	err := scan(o.txn, objectPrefix(bucketID), false, func(_, value []byte) error {
		var obj store.Object
		if err := unmarshal(value, &obj); err != nil {
			return err
		}
		result = append(result, obj)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (o *objectStore) Tags(ctx context.Context, version store.VersionID) (store.Tags, error) {
	if _, err := o.Get(ctx, version); err != nil {
		return nil, err
	}
	var tags store.Tags
	err := scan(o.txn, tagPrefix(version), false, func(key, value []byte) error {
		tags = append(tags, store.Tag{Key: string(key), Value: string(value)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (o *objectStore) SetTag(ctx context.Context, version store.VersionID, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return store.ErrKeyRequired
	}
	obj, err := o.Get(ctx, version)
	if err != nil {
		return err
	}
	if _, err := o.writableBucket(ctx, obj.BucketID); err != nil {
		return err
	}
	return o.txn.Set(tagKey(version, key), []byte(value))
}
