package localfs

import (
	"context"

	"github.com/oneconcern/depot/pkg/store"
	"github.com/segmentio/ksuid"
)

type depositStore struct {
	*tx
}

func (d *depositStore) Create(ctx context.Context, deposit *store.Deposit) error {
	if deposit.ID == "" {
		deposit.ID = ksuid.New().String()
	}
	key := depositKey(deposit.ID)
	found, err := exists(d.txn, key)
	if err != nil {
		return err
	}
	if found {
		return store.ErrDepositExists
	}
	if deposit.Created.IsZero() {
		deposit.Created = d.now()
	}
	if deposit.Status == "" {
		deposit.Status = store.StatusDraft
	}
	if deposit.BucketID != "" {
		if err = d.txn.Set(ownerKey(deposit.BucketID), []byte(deposit.ID)); err != nil {
			return err
		}
	}
	return setJSON(d.txn, key, deposit)
}

func (d *depositStore) Get(ctx context.Context, id string) (*store.Deposit, error) {
	if id == "" {
		return nil, store.ErrIDRequired
	}
	var deposit store.Deposit
	if err := getJSON(d.txn, depositKey(id), store.ErrDepositNotFound, &deposit); err != nil {
		return nil, err
	}
	return &deposit, nil
}

// GetByBucket finds the deposit owning a live bucket
func (d *depositStore) GetByBucket(ctx context.Context, bucketID string) (*store.Deposit, error) {
	if bucketID == "" {
		return nil, store.ErrIDRequired
	}
	id, err := getString(d.txn, ownerKey(bucketID), store.ErrDepositNotFound)
	if err != nil {
		return nil, err
	}
	return d.Get(ctx, id)
}

func (d *depositStore) Update(ctx context.Context, deposit *store.Deposit) error {
	key := depositKey(deposit.ID)
	found, err := exists(d.txn, key)
	if err != nil {
		return err
	}
	if !found {
		return store.ErrDepositNotFound
	}
	return setJSON(d.txn, key, deposit)
}

func (d *depositStore) List(ctx context.Context) ([]store.Deposit, error) {
	var result []store.Deposit
	err := scan(d.txn, depositPref[:], false, func(_, value []byte) error {
		var deposit store.Deposit
		if err := unmarshal(value, &deposit); err != nil {
			return err
		}
		result = append(result, deposit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
