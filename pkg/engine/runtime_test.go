package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/oneconcern/depot"
	"github.com/oneconcern/depot/pkg/blob/localfs"
	"github.com/oneconcern/depot/pkg/fingerprint"
	"github.com/oneconcern/depot/pkg/snapshot"
	"github.com/oneconcern/depot/pkg/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozen = time.Date(2018, 10, 12, 8, 30, 0, 0, time.UTC)

func setupRuntime(t *testing.T, opts ...Option) (*Runtime, afero.Fs, func()) {
	dir, err := os.MkdirTemp("", "depot-engine")
	require.NoError(t, err)

	blobs := afero.NewMemMapFs()
	opts = append([]Option{
		Blobs(localfs.New(blobs)),
		Spool(afero.NewMemMapFs()),
		Clock(func() time.Time { return frozen }),
	}, opts...)

	rt, err := New(&depot.Config{Metadata: dir}, opts...)
	require.NoError(t, err)

	return rt, blobs, func() {
		_ = rt.Close()
		_ = os.RemoveAll(dir)
	}
}

func addFile(ctx context.Context, t *testing.T, rt *Runtime, depositID, key, content string) *store.Object {
	obj, err := rt.AddFile(ctx, depositID, UploadStream(key, bytes.NewBufferString(content)))
	require.NoError(t, err)
	return obj
}

func assertBlob(t *testing.T, fs afero.Fs, content string, expected bool) {
	checksum, _, err := fingerprint.Sum(bytes.NewBufferString(content))
	require.NoError(t, err)
	key, err := fingerprint.BlobKey(checksum)
	require.NoError(t, err)
	found, err := afero.Exists(fs, key)
	require.NoError(t, err)
	assert.Equal(t, expected, found, "blob for %q", content)
}

func TestCreateDeposit(t *testing.T) {
	rt, _, cleanup := setupRuntime(t)
	defer cleanup()
	ctx := context.Background()

	deposit, err := rt.CreateDeposit(ctx, "video", " Flooding in Houston ")
	require.NoError(t, err)
	assert.NotEmpty(t, deposit.ID)
	assert.NotEmpty(t, deposit.BucketID)
	assert.Equal(t, "Flooding in Houston", deposit.Title)
	assert.Equal(t, store.StatusDraft, deposit.Status)

	actual, err := rt.GetDeposit(ctx, deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, deposit.BucketID, actual.BucketID)

	deposits, err := rt.ListDeposits(ctx)
	require.NoError(t, err)
	assert.Len(t, deposits, 1)

	buckets, err := rt.Buckets(ctx)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.False(t, buckets[0].Snapshot)

	_, err = rt.GetDeposit(ctx, "nope")
	assert.True(t, errors.Is(err, store.ErrDepositNotFound))
}

func TestAddFileSharesContent(t *testing.T) {
	rt, blobs, cleanup := setupRuntime(t)
	defer cleanup()
	ctx := context.Background()

	deposit, err := rt.CreateDeposit(ctx, "video", "dedup")
	require.NoError(t, err)

	first := addFile(ctx, t, rt, deposit.ID, "a.mp4", "same bytes")
	second := addFile(ctx, t, rt, deposit.ID, "b.mp4", "same bytes")
	other := addFile(ctx, t, rt, deposit.ID, "c.mp4", "other bytes")

	assert.Equal(t, first.FileID, second.FileID)
	assert.NotEqual(t, first.FileID, other.FileID)
	assert.True(t, second.VersionID > first.VersionID)

	assertBlob(t, blobs, "same bytes", true)
	assertBlob(t, blobs, "other bytes", true)

	rdr, file, err := rt.OpenFile(ctx, second.VersionID)
	require.NoError(t, err)
	defer rdr.Close()
	content, err := io.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, "same bytes", string(content))
	assert.EqualValues(t, len("same bytes"), file.Size)

	_, err = rt.AddFile(ctx, deposit.ID, UploadStream(" ", bytes.NewBufferString("orphan")))
	assert.True(t, errors.Is(err, store.ErrKeyRequired))
	assertBlob(t, blobs, "orphan", false)
}

func TestPublishMasterAndSlaves(t *testing.T) {
	rt, _, cleanup := setupRuntime(t)
	defer cleanup()
	ctx := context.Background()

	deposit, err := rt.CreateDeposit(ctx, "video", "transcoded")
	require.NoError(t, err)

	master := addFile(ctx, t, rt, deposit.ID, "master.mp4", "original")
	require.NoError(t, rt.TagObject(ctx, master.VersionID, store.TagContextType, "master"))
	for i := 0; i < 10; i++ {
		slave := addFile(ctx, t, rt, deposit.ID, "slave"+strconv.Itoa(i)+".mp4", "variant "+strconv.Itoa(i))
		require.NoError(t, rt.TagObject(ctx, slave.VersionID, store.TagMaster, master.VersionID.String()))
		require.NoError(t, rt.TagObject(ctx, slave.VersionID, store.TagMediaType, "mp4"))
	}

	rev, err := rt.Publish(ctx, deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rev.Number)
	assert.Equal(t, frozen, rev.Timestamp)
	assert.Equal(t, "transcoded", rev.Title)
	require.NotEmpty(t, rev.BucketID)

	buckets, err := rt.Buckets(ctx)
	require.NoError(t, err)
	assert.Len(t, buckets, 2)

	copies, err := rt.ListObjects(ctx, rev.BucketID)
	require.NoError(t, err)
	require.Len(t, copies, 11)

	var newMaster store.VersionID
	for _, c := range copies {
		if c.Key == "master.mp4" {
			newMaster = c.VersionID
			assert.EqualValues(t, len("original"), c.Size)
			assert.Equal(t, master.FileID, c.FileID)
		}
	}
	require.NotZero(t, newMaster)
	assert.NotEqual(t, master.VersionID, newMaster)

	var slaves int
	for _, c := range copies {
		if v, ok := c.Tags.Get(store.TagMaster); ok {
			slaves++
			assert.Equal(t, newMaster.String(), v)
			mt, _ := c.Tags.Get(store.TagMediaType)
			assert.Equal(t, "mp4", mt)
		}
	}
	assert.Equal(t, 10, slaves)

	// the live bucket still points at the original master
	live, err := rt.ListObjects(ctx, deposit.BucketID)
	require.NoError(t, err)
	for _, o := range live {
		if v, ok := o.Tags.Get(store.TagMaster); ok {
			assert.Equal(t, master.VersionID.String(), v)
		}
	}

	published, err := rt.Published(ctx, deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, rev, published)

	_, err = rt.AddFile(ctx, deposit.ID, UploadStream("late.mp4", bytes.NewBufferString("late")))
	assert.True(t, errors.Is(err, ErrNotDraft))

	_, err = rt.Publish(ctx, deposit.ID)
	assert.True(t, errors.Is(err, ErrNotDraft))

	// snapshots are read only
	err = rt.TagObject(ctx, newMaster, store.TagMediaType, "mkv")
	assert.True(t, errors.Is(err, store.ErrBucketLocked))

	// so is the live bucket until the deposit is edited
	err = rt.TagObject(ctx, master.VersionID, store.TagMediaType, "mkv")
	assert.True(t, errors.Is(err, ErrNotDraft))

	edited, err := rt.Edit(ctx, deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusDraft, edited.Status)
	require.NoError(t, rt.TagObject(ctx, master.VersionID, store.TagMediaType, "mkv"))

	rev2, err := rt.Publish(ctx, deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rev2.Number)
	assert.NotEqual(t, rev.BucketID, rev2.BucketID)

	buckets, err = rt.Buckets(ctx)
	require.NoError(t, err)
	assert.Len(t, buckets, 3)
}

func TestPublishEmptyDeposit(t *testing.T) {
	rt, _, cleanup := setupRuntime(t)
	defer cleanup()
	ctx := context.Background()

	deposit, err := rt.CreateDeposit(ctx, "image", "nothing yet")
	require.NoError(t, err)

	_, err = rt.Published(ctx, deposit.ID)
	assert.True(t, errors.Is(err, ErrNotPublished))

	rev, err := rt.Publish(ctx, deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rev.Number)
	assert.Empty(t, rev.BucketID)

	buckets, err := rt.Buckets(ctx)
	require.NoError(t, err)
	assert.Len(t, buckets, 1)
}

func TestPublishHookFailureRollsBack(t *testing.T) {
	var seen snapshot.Result
	failing := func(ctx context.Context, tx store.Tx, d *store.Deposit, snap snapshot.Result) error {
		seen = snap
		// the snapshot is visible to hooks
		if _, err := tx.Buckets().Get(ctx, snap.BucketID); err != nil {
			return err
		}
		return errors.New("identifier service unavailable")
	}
	rt, _, cleanup := setupRuntime(t, PublishHook(failing))
	defer cleanup()
	ctx := context.Background()

	deposit, err := rt.CreateDeposit(ctx, "video", "hooked")
	require.NoError(t, err)
	addFile(ctx, t, rt, deposit.ID, "master.mp4", "original")

	_, err = rt.Publish(ctx, deposit.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identifier service unavailable")
	assert.Equal(t, 1, seen.Objects)

	buckets, err := rt.Buckets(ctx)
	require.NoError(t, err)
	assert.Len(t, buckets, 1)

	actual, err := rt.GetDeposit(ctx, deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusDraft, actual.Status)
	assert.Empty(t, actual.Revisions)
}

func TestPublishDanglingMaster(t *testing.T) {
	rt, _, cleanup := setupRuntime(t)
	defer cleanup()
	ctx := context.Background()

	deposit, err := rt.CreateDeposit(ctx, "video", "broken")
	require.NoError(t, err)
	slave := addFile(ctx, t, rt, deposit.ID, "slave.mp4", "variant")
	require.NoError(t, rt.TagObject(ctx, slave.VersionID, store.TagMaster, "424242"))

	_, err = rt.Publish(ctx, deposit.ID)
	var integrity *snapshot.IntegrityError
	require.True(t, errors.As(err, &integrity))
	assert.Equal(t, "424242", integrity.Master)
	assert.Equal(t, slave.VersionID, integrity.Object)

	buckets, err := rt.Buckets(ctx)
	require.NoError(t, err)
	assert.Len(t, buckets, 1)

	actual, err := rt.GetDeposit(ctx, deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusDraft, actual.Status)
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestCloseAggregatesErrors(t *testing.T) {
	rt, _, cleanup := setupRuntime(t,
		Closer(closer{errors.New("tracer")}),
		Closer(closer{}),
		Closer(closer{errors.New("reporter")}),
	)
	defer cleanup()

	err := rt.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracer")
	assert.Contains(t, err.Error(), "reporter")
}
