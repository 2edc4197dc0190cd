package localfs

import (
	"context"

	"github.com/oneconcern/depot/pkg/store"
	"github.com/segmentio/ksuid"
)

type bucketStore struct {
	*tx
}

func (b *bucketStore) Create(ctx context.Context, bucket *store.Bucket) error {
	if bucket.ID == "" {
		bucket.ID = ksuid.New().String()
	}
	key := bucketKey(bucket.ID)
	found, err := exists(b.txn, key)
	if err != nil {
		return err
	}
	if found {
		return store.ErrBucketExists
	}
	if bucket.Created.IsZero() {
		bucket.Created = b.now()
	}
	return setJSON(b.txn, key, bucket)
}

func (b *bucketStore) Get(ctx context.Context, id string) (*store.Bucket, error) {
	if id == "" {
		return nil, store.ErrIDRequired
	}
	var bucket store.Bucket
	if err := getJSON(b.txn, bucketKey(id), store.ErrBucketNotFound, &bucket); err != nil {
		return nil, err
	}
	return &bucket, nil
}

func (b *bucketStore) List(ctx context.Context) ([]store.Bucket, error) {
	var result []store.Bucket
	err := scan(b.txn, bucketPref[:], false, func(_, value []byte) error {
		var bucket store.Bucket
		if err := unmarshal(value, &bucket); err != nil {
			return err
		}
		result = append(result, bucket)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (b *bucketStore) Count(ctx context.Context) (int, error) {
	var n int
	err := scan(b.txn, bucketPref[:], true, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

func (b *bucketStore) Lock(ctx context.Context, id string) error {
	bucket, err := b.Get(ctx, id)
	if err != nil {
		return err
	}
	if bucket.Locked {
		return nil
	}
	bucket.Locked = true
	return setJSON(b.txn, bucketKey(id), bucket)
}
