package localfs

import (
	"github.com/dgraph-io/badger"
	jsoniter "github.com/json-iterator/go"
	"github.com/oneconcern/depot/pkg/store"
	"github.com/pkg/errors"
)

// mapError rewrites badger lookup errors into the store error for the entity
func mapError(err error, notFound error) error {
	switch err {
	case nil:
		return nil
	case badger.ErrKeyNotFound:
		return notFound
	case badger.ErrEmptyKey:
		return store.ErrIDRequired
	default:
		return err
	}
}

func getJSON(txn *badger.Txn, key []byte, notFound error, value interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		return mapError(err, notFound)
	}
	data, err := item.Value()
	if err != nil {
		return mapError(err, notFound)
	}
	return unmarshal(data, value)
}

func unmarshal(data []byte, value interface{}) error {
	if e := jsoniter.Unmarshal(data, value); e != nil {
		return errors.Wrap(e, "json unmarshal failed")
	}
	return nil
}

func setJSON(txn *badger.Txn, key []byte, value interface{}) error {
	data, err := jsoniter.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "json marshal failed")
	}
	return txn.Set(key, data)
}

func getString(txn *badger.Txn, key []byte, notFound error) (string, error) {
	item, err := txn.Get(key)
	if err != nil {
		return "", mapError(err, notFound)
	}
	data, err := item.ValueCopy(nil)
	if err != nil {
		return "", mapError(err, notFound)
	}
	return store.UnsafeBytesToString(data), nil
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// scan calls fn for every key under prefix, in key order.
// key is stripped of the prefix. value is nil when keysOnly is set.
func scan(txn *badger.Txn, prefix []byte, keysOnly bool, fn func(key, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = !keysOnly

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		k := item.KeyCopy(nil)[len(prefix):]
		if keysOnly {
			if err := fn(k, nil); err != nil {
				return err
			}
			continue
		}

		v, err := item.Value()
		if err != nil {
			return err
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}
