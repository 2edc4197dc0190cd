package localfs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/oneconcern/depot/pkg/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	metadataDb = "metadata"

	// versions are leased from the sequence in blocks of this size
	versionBandwidth = 100
)

var (
	_ store.DB = &DB{}
	_ store.Tx = &tx{}
)

// Option to configure the badger backed store
type Option func(*DB)

// Logger to use for the store
func Logger(l *zap.Logger) Option {
	return func(d *DB) {
		d.logger = l
	}
}

// Clock overrides the time source used for created timestamps
func Clock(now func() time.Time) Option {
	return func(d *DB) {
		d.now = now
	}
}

// New creates a badger backed metadata store rooted at baseDir
func New(baseDir string, opts ...Option) *DB {
	if baseDir == "" {
		baseDir = ".depot"
	}
	d := &DB{
		baseDir: baseDir,
		logger:  zap.NewNop(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, apply := range opts {
		apply(d)
	}
	return d
}

// DB holds the buckets, objects, file instances and deposits in a single badger database,
// so that a publish can be committed or rolled back as a unit.
type DB struct {
	baseDir string
	logger  *zap.Logger
	now     func() time.Time

	db       *badger.DB
	versions *badger.Sequence
	init     sync.Once
	close    sync.Once
}

func makeBadgerDb(dir string) (*badger.DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(err, "mkdir -p %s", dir)
	}
	bopts := badger.DefaultOptions
	bopts.Dir = dir
	bopts.ValueDir = dir

	return badger.Open(bopts)
}

// Initialize opens the database, it is safe to call more than once
func (d *DB) Initialize() error {
	var err error

	d.init.Do(func() {
		dir := filepath.Join(d.baseDir, metadataDb)
		var db *badger.DB
		db, err = makeBadgerDb(dir)
		if err != nil {
			return
		}

		var seq *badger.Sequence
		seq, err = db.GetSequence(versionSeqKey, versionBandwidth)
		if err != nil {
			_ = db.Close()
			return
		}
		d.db = db
		d.versions = seq
		d.logger.Debug("opened metadata store", zap.String("dir", dir))
	})

	return err
}

// Close releases the version sequence and closes the database
func (d *DB) Close() error {
	var err error

	d.close.Do(func() {
		if d.db == nil {
			return
		}
		if d.versions != nil {
			if e := d.versions.Release(); e != nil {
				d.logger.Warn("releasing version sequence", zap.Error(e))
			}
		}
		err = d.db.Close()
		if err == nil {
			d.db = nil
		}
	})

	return err
}

// View runs fn in a read only transaction
func (d *DB) View(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := d.db.NewTransaction(false)
	defer txn.Discard()

	return fn(d.newTx(txn))
}

// Update runs fn in a read-write transaction.
// The transaction is committed when fn succeeds and discarded otherwise.
func (d *DB) Update(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := d.db.NewTransaction(true)
	defer txn.Discard()

	if err := fn(d.newTx(txn)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return txn.Commit(nil)
}

func (d *DB) newTx(txn *badger.Txn) *tx {
	return &tx{txn: txn, versions: d.versions, now: d.now}
}

type tx struct {
	txn      *badger.Txn
	versions *badger.Sequence
	now      func() time.Time
}

func (t *tx) Buckets() store.BucketStore   { return &bucketStore{t} }
func (t *tx) Objects() store.ObjectStore   { return &objectStore{t} }
func (t *tx) Files() store.FileStore       { return &fileStore{t} }
func (t *tx) Deposits() store.DepositStore { return &depositStore{t} }

// nextVersion leases a version id. Ids handed out to a rolled back
// transaction are not reused.
func (t *tx) nextVersion() (store.VersionID, error) {
	v, err := t.versions.Next()
	if err != nil {
		return 0, err
	}
	// sequences start at 0, version ids start at 1
	return store.VersionID(v + 1), nil
}
