package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/oneconcern/depot/pkg/snapshot"
	"github.com/oneconcern/depot/pkg/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CreateDeposit creates a draft deposit along with its live bucket
func (r *Runtime) CreateDeposit(ctx context.Context, typ, title string) (*store.Deposit, error) {
	deposit := r.newDeposit(typ, title)

	err := r.db.Update(ctx, func(tx store.Tx) error {
		return createDeposit(ctx, tx, deposit)
	})
	if err != nil {
		return nil, errors.Wrap(err, "create deposit")
	}

	r.logger.Info("deposit created", zap.String("deposit", deposit.ID), zap.String("bucket", deposit.BucketID))
	return deposit, nil
}

// CreateChild creates a draft deposit attached to a draft parent, like a video in a project.
// Publishing the parent publishes its draft children along with it.
func (r *Runtime) CreateChild(ctx context.Context, parentID, typ, title string) (*store.Deposit, error) {
	if parentID == "" {
		return nil, store.ErrIDRequired
	}
	r.locks.Lock(parentID)
	defer r.locks.Unlock(parentID)

	deposit := r.newDeposit(typ, title)
	deposit.Parent = parentID

	err := r.db.Update(ctx, func(tx store.Tx) error {
		parent, err := tx.Deposits().Get(ctx, parentID)
		if err != nil {
			return err
		}
		if parent.Parent != "" {
			return ErrNested
		}
		if parent.Status != store.StatusDraft {
			return ErrNotDraft
		}
		if err = createDeposit(ctx, tx, deposit); err != nil {
			return err
		}
		parent.Children = append(parent.Children, deposit.ID)
		return tx.Deposits().Update(ctx, parent)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create child of %s", parentID)
	}

	r.logger.Info("child deposit created",
		zap.String("deposit", deposit.ID),
		zap.String("parent", parentID),
		zap.String("bucket", deposit.BucketID),
	)
	return deposit, nil
}

func (r *Runtime) newDeposit(typ, title string) *store.Deposit {
	return &store.Deposit{
		Type:   strings.TrimSpace(typ),
		Title:  strings.TrimSpace(title),
		Status: store.StatusDraft,
	}
}

func createDeposit(ctx context.Context, tx store.Tx, deposit *store.Deposit) error {
	bucket := &store.Bucket{}
	if err := tx.Buckets().Create(ctx, bucket); err != nil {
		return err
	}
	deposit.BucketID = bucket.ID
	return tx.Deposits().Create(ctx, deposit)
}

// GetDeposit by id
func (r *Runtime) GetDeposit(ctx context.Context, id string) (*store.Deposit, error) {
	var deposit *store.Deposit
	err := r.db.View(ctx, func(tx store.Tx) error {
		var err error
		deposit, err = tx.Deposits().Get(ctx, id)
		return err
	})
	return deposit, err
}

// ListDeposits known to the depot
func (r *Runtime) ListDeposits(ctx context.Context) ([]store.Deposit, error) {
	var deposits []store.Deposit
	err := r.db.View(ctx, func(tx store.Tx) error {
		var err error
		deposits, err = tx.Deposits().List(ctx)
		return err
	})
	return deposits, err
}

// UpdateDeposit changes the title of a draft deposit
func (r *Runtime) UpdateDeposit(ctx context.Context, id, title string) (*store.Deposit, error) {
	return r.modify(ctx, id, func(deposit *store.Deposit) (bool, error) {
		if deposit.Status != store.StatusDraft {
			return false, ErrNotDraft
		}
		deposit.Title = strings.TrimSpace(title)
		return true, nil
	})
}

// Edit turns a published deposit back into a draft.
// The live bucket is left as it was, editing a draft is a no-op.
func (r *Runtime) Edit(ctx context.Context, id string) (*store.Deposit, error) {
	return r.modify(ctx, id, func(deposit *store.Deposit) (bool, error) {
		if deposit.Status == store.StatusDraft {
			return false, nil
		}
		deposit.Status = store.StatusDraft
		return true, nil
	})
}

// Discard drops the metadata changes made to a draft since its latest publish,
// and marks it published again. Files added to the live bucket are kept.
func (r *Runtime) Discard(ctx context.Context, id string) (*store.Deposit, error) {
	return r.modify(ctx, id, func(deposit *store.Deposit) (bool, error) {
		latest, ok := deposit.Latest()
		if !ok {
			return false, ErrNotPublished
		}
		if deposit.Status == store.StatusPublished {
			return false, nil
		}
		deposit.Title = latest.Title
		deposit.Status = store.StatusPublished
		return true, nil
	})
}

// modify runs a read-modify-write of a deposit under its row lock
func (r *Runtime) modify(ctx context.Context, id string, change func(*store.Deposit) (bool, error)) (*store.Deposit, error) {
	if id == "" {
		return nil, store.ErrIDRequired
	}
	r.locks.Lock(id)
	defer r.locks.Unlock(id)

	var deposit *store.Deposit
	err := r.db.Update(ctx, func(tx store.Tx) error {
		var err error
		deposit, err = tx.Deposits().Get(ctx, id)
		if err != nil {
			return err
		}
		changed, err := change(deposit)
		if err != nil || !changed {
			return err
		}
		return tx.Deposits().Update(ctx, deposit)
	})
	if err != nil {
		return nil, err
	}
	return deposit, nil
}

// Publish snapshots the live bucket of a draft deposit and records a new revision.
//
// The draft children of a parent are published first, the parent revision
// references the latest revision of every child. Snapshots, hooks and deposit
// updates share one transaction: when any of them fails nothing is persisted.
func (r *Runtime) Publish(ctx context.Context, id string) (store.Revision, error) {
	if id == "" {
		return store.Revision{}, store.ErrIDRequired
	}
	r.locks.Lock(id)
	defer r.locks.Unlock(id)

	current, err := r.GetDeposit(ctx, id)
	if err != nil {
		return store.Revision{}, err
	}
	// children can't change while the parent is locked
	children := append([]string(nil), current.Children...)
	sort.Strings(children)
	for _, child := range children {
		r.locks.Lock(child)
		defer r.locks.Unlock(child)
	}

	log := r.logger.With(zap.String("deposit", id))

	var (
		rev   store.Revision
		stats publishStats
	)
	err = r.db.Update(ctx, func(tx store.Tx) error {
		deposit, err := tx.Deposits().Get(ctx, id)
		if err != nil {
			return err
		}
		if deposit.Status != store.StatusDraft {
			return ErrNotDraft
		}

		var refs []store.Reference
		for _, childID := range deposit.Children {
			child, err := tx.Deposits().Get(ctx, childID)
			if err != nil {
				return errors.Wrapf(err, "child %s", childID)
			}
			if child.Status == store.StatusDraft {
				if _, err = r.publish(ctx, tx, child, nil, &stats); err != nil {
					return errors.Wrapf(err, "publish child %s", childID)
				}
			}
			latest, _ := child.Latest()
			refs = append(refs, store.Reference{
				DepositID: child.ID,
				Number:    latest.Number,
				BucketID:  latest.BucketID,
			})
		}

		rev, err = r.publish(ctx, tx, deposit, refs, &stats)
		return err
	})
	if err != nil {
		publishes.WithLabelValues(resultRolledBack).Inc()
		var integrity *snapshot.IntegrityError
		if errors.As(err, &integrity) {
			integrityFailures.Inc()
		}
		log.Warn("publish rolled back", zap.Error(err))
		return store.Revision{}, err
	}
	stats.committed()

	log.Info("deposit published",
		zap.Int("revision", rev.Number),
		zap.String("bucket", rev.BucketID),
		zap.Int("children", len(rev.Children)),
	)
	return rev, nil
}

func (r *Runtime) publish(ctx context.Context, tx store.Tx, deposit *store.Deposit, children []store.Reference, stats *publishStats) (store.Revision, error) {
	snap, err := r.snapshots.Create(ctx, tx, deposit.BucketID)
	if err != nil {
		return store.Revision{}, err
	}

	for _, hook := range r.hooks {
		if err = hook(ctx, tx, deposit, snap); err != nil {
			return store.Revision{}, errors.Wrap(err, "publish hook")
		}
	}

	rev := store.Revision{
		Number:    len(deposit.Revisions) + 1,
		BucketID:  snap.BucketID,
		Title:     deposit.Title,
		Children:  children,
		Timestamp: r.now(),
	}
	deposit.Revisions = append(deposit.Revisions, rev)
	deposit.Status = store.StatusPublished
	if err = tx.Deposits().Update(ctx, deposit); err != nil {
		return store.Revision{}, err
	}
	stats.add(snap)
	return rev, nil
}

// Published returns the latest revision of a deposit
func (r *Runtime) Published(ctx context.Context, id string) (store.Revision, error) {
	deposit, err := r.GetDeposit(ctx, id)
	if err != nil {
		return store.Revision{}, err
	}
	rev, ok := deposit.Latest()
	if !ok {
		return store.Revision{}, ErrNotPublished
	}
	return rev, nil
}
