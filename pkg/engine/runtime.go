// Package engine runs the deposit workflow on top of the metadata and blob stores.
package engine

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/fishy/rowlock"
	"github.com/oneconcern/depot"
	"github.com/oneconcern/depot/pkg/blob"
	bloblocalfs "github.com/oneconcern/depot/pkg/blob/localfs"
	"github.com/oneconcern/depot/pkg/snapshot"
	"github.com/oneconcern/depot/pkg/store"
	"github.com/oneconcern/depot/pkg/store/instrumented"
	"github.com/oneconcern/depot/pkg/store/localfs"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type errorString string

func (e errorString) Error() string {
	return string(e)
}

const (
	// ErrNotDraft is returned when changing the files of a published deposit
	ErrNotDraft errorString = "deposit is not a draft"

	// ErrNotPublished is returned when a deposit has no revision yet
	ErrNotPublished errorString = "deposit was never published"

	// ErrNested is returned when attaching a child to a deposit that is itself a child
	ErrNested errorString = "deposits nest one level deep"
)

// Hook runs inside the publish transaction, after the snapshot was taken.
// Returning an error rolls the whole publish back.
type Hook func(ctx context.Context, tx store.Tx, deposit *store.Deposit, snap snapshot.Result) error

// Option for the runtime
type Option func(*Runtime)

// PublishHook adds a hook to run on every publish
func PublishHook(hook Hook) Option {
	return func(r *Runtime) {
		r.hooks = append(r.hooks, hook)
	}
}

// Blobs overrides the blob store
func Blobs(bs blob.Store) Option {
	return func(r *Runtime) {
		r.blobs = bs
	}
}

// Spool sets the file system uploads are buffered on while hashing
func Spool(fs afero.Fs) Option {
	return func(r *Runtime) {
		r.spool = fs
	}
}

// Clock overrides the time source for revisions
func Clock(now func() time.Time) Option {
	return func(r *Runtime) {
		r.now = now
	}
}

// Closer registers something to close along with the runtime, like a tracer
func Closer(c io.Closer) Option {
	return func(r *Runtime) {
		r.closers = append(r.closers, c)
	}
}

// New initializes a new runtime for depot
func New(cfg *depot.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		cfg = depot.NewConfig(nil, nil)
	}
	cfg.Defaults()

	logger := cfg.Logger()
	tracer := cfg.Tracer()

	r := &Runtime{
		logger:    logger,
		snapshots: snapshot.New(snapshot.Logger(logger)),
		locks:     rowlock.NewRowLock(rowlock.MutexNewLocker),
		spool:     afero.NewOsFs(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, apply := range opts {
		apply(r)
	}

	if r.blobs == nil {
		if err := os.MkdirAll(cfg.Blobs, 0700); err != nil {
			return nil, errors.Wrapf(err, "mkdir -p %s", cfg.Blobs)
		}
		r.blobs = bloblocalfs.New(afero.NewBasePathFs(afero.NewOsFs(), cfg.Blobs))
	}
	r.blobs = blob.Instrument(tracer, r.blobs)

	meta := localfs.New(cfg.Metadata, localfs.Logger(logger))
	if err := meta.Initialize(); err != nil {
		return nil, errors.Wrap(err, "open metadata store")
	}
	r.db = instrumented.NewDB(tracer, meta)

	logger.Debug("runtime ready",
		zap.String("metadata", cfg.Metadata),
		zap.String("blobs", r.blobs.String()),
		zap.Int("hooks", len(r.hooks)),
	)
	return r, nil
}

// Runtime for depot
type Runtime struct {
	logger    *zap.Logger
	db        store.DB
	blobs     blob.Store
	spool     afero.Fs
	snapshots *snapshot.Manager
	locks     *rowlock.RowLock
	hooks     []Hook
	closers   []io.Closer
	now       func() time.Time
}

// Buckets lists every bucket, live and snapshots
func (r *Runtime) Buckets(ctx context.Context) ([]store.Bucket, error) {
	var buckets []store.Bucket
	err := r.db.View(ctx, func(tx store.Tx) error {
		var err error
		buckets, err = tx.Buckets().List(ctx)
		return err
	})
	return buckets, err
}

// Close the runtime
func (r *Runtime) Close() error {
	err := r.db.Close()
	for _, c := range r.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
