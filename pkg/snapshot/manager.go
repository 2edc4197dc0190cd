package snapshot

import (
	"context"

	"github.com/oneconcern/depot/pkg/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Result of a snapshot. The zero value means no snapshot was produced.
type Result struct {
	BucketID string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Objects  int    `json:"objects" yaml:"objects"`
}

// Empty is true when the source bucket had nothing to copy
func (r Result) Empty() bool {
	return r.BucketID == ""
}

// Option for the snapshot manager
type Option func(*Manager)

// Logger for the snapshot manager
func Logger(l *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// New snapshot manager
func New(opts ...Option) *Manager {
	m := &Manager{logger: zap.NewNop()}
	for _, apply := range opts {
		apply(m)
	}
	return m
}

// Manager creates snapshot buckets
type Manager struct {
	logger *zap.Logger
}

type entry struct {
	obj    store.Object
	tags   store.Tags
	master store.VersionID
	slave  bool
}

// Create copies every object of the source bucket into a new, locked bucket.
//
// Nothing is written when the source is empty or when a master tag does
// not resolve inside the source bucket.
func (m *Manager) Create(ctx context.Context, tx store.Tx, source string) (Result, error) {
	log := m.logger.With(zap.String("bucket", source))

	entries, err := m.load(ctx, tx, source)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		log.Debug("nothing to snapshot")
		return Result{}, nil
	}
	if err = validate(source, entries); err != nil {
		log.Warn("refusing to snapshot", zap.Error(err))
		return Result{}, err
	}

	bucket := &store.Bucket{Snapshot: true, Source: source}
	if err = tx.Buckets().Create(ctx, bucket); err != nil {
		return Result{}, errors.Wrap(err, "create snapshot bucket")
	}

	// first pass: copy the objects, remembering where each version went
	versions := make(map[store.VersionID]store.VersionID, len(entries))
	for _, e := range entries {
		copied, err := tx.Objects().Create(ctx, bucket.ID, e.obj.Key, e.obj.FileID)
		if err != nil {
			return Result{}, errors.Wrapf(err, "copy object %s", e.obj.VersionID)
		}
		versions[e.obj.VersionID] = copied.VersionID

		for _, tag := range e.tags.Without(store.TagMaster) {
			if err = tx.Objects().SetTag(ctx, copied.VersionID, tag.Key, tag.Value); err != nil {
				return Result{}, errors.Wrapf(err, "copy tag %s of object %s", tag.Key, e.obj.VersionID)
			}
		}
	}

	// second pass: point the slaves at the copied masters
	for _, e := range entries {
		if !e.slave {
			continue
		}
		copied := versions[e.obj.VersionID]
		if err = tx.Objects().SetTag(ctx, copied, store.TagMaster, versions[e.master].String()); err != nil {
			return Result{}, errors.Wrapf(err, "rewrite master of object %s", copied)
		}
	}

	if err = tx.Buckets().Lock(ctx, bucket.ID); err != nil {
		return Result{}, errors.Wrap(err, "lock snapshot bucket")
	}

	log.Info("created snapshot", zap.String("snapshot", bucket.ID), zap.Int("objects", len(entries)))

	return Result{BucketID: bucket.ID, Objects: len(entries)}, nil
}

func (m *Manager) load(ctx context.Context, tx store.Tx, source string) ([]entry, error) {
	objs, err := tx.Objects().List(ctx, source)
	if err != nil {
		return nil, err
	}

	entries := make([]entry, len(objs))
	for i, obj := range objs {
		tags, err := tx.Objects().Tags(ctx, obj.VersionID)
		if err != nil {
			return nil, errors.Wrapf(err, "tags of object %s", obj.VersionID)
		}
		entries[i] = entry{obj: obj, tags: tags}
	}
	return entries, nil
}

// validate resolves every master tag within the source bucket.
// A master is an object without a master tag of its own.
func validate(source string, entries []entry) error {
	inBucket := make(map[store.VersionID]bool, len(entries))
	for _, e := range entries {
		inBucket[e.obj.VersionID] = true
	}

	for i := range entries {
		e := &entries[i]
		value, ok := e.tags.Get(store.TagMaster)
		if !ok {
			continue
		}
		fail := func(reason string) error {
			return &IntegrityError{
				Bucket: source,
				Object: e.obj.VersionID,
				Key:    e.obj.Key,
				Master: value,
				Reason: reason,
			}
		}

		master, err := store.ParseVersionID(value)
		if err != nil {
			return fail("not a version id")
		}
		if !inBucket[master] {
			return fail("no such object in bucket")
		}
		if master == e.obj.VersionID {
			return fail("object is its own master")
		}
		e.master = master
		e.slave = true
	}

	slaves := make(map[store.VersionID]bool, len(entries))
	for _, e := range entries {
		if e.slave {
			slaves[e.obj.VersionID] = true
		}
	}
	for _, e := range entries {
		if e.slave && slaves[e.master] {
			return &IntegrityError{
				Bucket: source,
				Object: e.obj.VersionID,
				Key:    e.obj.Key,
				Master: e.master.String(),
				Reason: "master is itself a slave",
			}
		}
	}
	return nil
}
