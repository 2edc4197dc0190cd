package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/oneconcern/depot/pkg/blob"
	"github.com/oneconcern/depot/pkg/blob/localfs"
	"github.com/oneconcern/depot/pkg/snapshot"
	"github.com/oneconcern/depot/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateAndDiscard(t *testing.T) {
	rt, _, cleanup := setupRuntime(t)
	defer cleanup()
	ctx := context.Background()

	deposit, err := rt.CreateDeposit(ctx, "project", "my project")
	require.NoError(t, err)

	_, err = rt.Discard(ctx, deposit.ID)
	assert.True(t, errors.Is(err, ErrNotPublished))

	updated, err := rt.UpdateDeposit(ctx, deposit.ID, " first draft ")
	require.NoError(t, err)
	assert.Equal(t, "first draft", updated.Title)

	updated, err = rt.UpdateDeposit(ctx, deposit.ID, "my project")
	require.NoError(t, err)
	_, err = rt.Publish(ctx, deposit.ID)
	require.NoError(t, err)

	_, err = rt.UpdateDeposit(ctx, deposit.ID, "too late")
	assert.True(t, errors.Is(err, ErrNotDraft))

	_, err = rt.Edit(ctx, deposit.ID)
	require.NoError(t, err)
	updated, err = rt.UpdateDeposit(ctx, deposit.ID, "new project title")
	require.NoError(t, err)
	assert.Equal(t, "new project title", updated.Title)

	discarded, err := rt.Discard(ctx, deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, "my project", discarded.Title)
	assert.Equal(t, store.StatusPublished, discarded.Status)
	assert.Len(t, discarded.Revisions, 1)

	actual, err := rt.GetDeposit(ctx, deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, "my project", actual.Title)
	assert.Equal(t, store.StatusPublished, actual.Status)

	// nothing left to discard
	again, err := rt.Discard(ctx, deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, actual.Title, again.Title)

	_, err = rt.UpdateDeposit(ctx, "", "x")
	assert.True(t, errors.Is(err, store.ErrIDRequired))
}

func TestProjectPublishesVideos(t *testing.T) {
	rt, _, cleanup := setupRuntime(t)
	defer cleanup()
	ctx := context.Background()

	project, err := rt.CreateDeposit(ctx, "project", "my project")
	require.NoError(t, err)
	video1, err := rt.CreateChild(ctx, project.ID, "video", "first")
	require.NoError(t, err)
	video2, err := rt.CreateChild(ctx, project.ID, "video", "second")
	require.NoError(t, err)
	assert.Equal(t, project.ID, video1.Parent)
	assert.NotEqual(t, project.BucketID, video1.BucketID)

	project, err = rt.GetDeposit(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{video1.ID, video2.ID}, project.Children)

	_, err = rt.CreateChild(ctx, video1.ID, "video", "nested")
	assert.True(t, errors.Is(err, ErrNested))
	_, err = rt.CreateChild(ctx, "missing", "video", "orphan")
	assert.True(t, errors.Is(err, store.ErrDepositNotFound))

	addFile(ctx, t, rt, video1.ID, "test.json", `{"first": true}`)
	rev1, err := rt.Publish(ctx, video1.ID)
	require.NoError(t, err)

	addFile(ctx, t, rt, video2.ID, "test2.json", `{"second": true}`)
	rev, err := rt.Publish(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, rev.BucketID)
	require.Len(t, rev.Children, 2)
	assert.Equal(t, store.Reference{DepositID: video1.ID, Number: 1, BucketID: rev1.BucketID}, rev.Children[0])
	assert.Equal(t, video2.ID, rev.Children[1].DepositID)
	assert.Equal(t, 1, rev.Children[1].Number)
	assert.NotEmpty(t, rev.Children[1].BucketID)

	video2, err = rt.GetDeposit(ctx, video2.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusPublished, video2.Status)

	objects, err := rt.ListObjects(ctx, rev.Children[1].BucketID)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "test2.json", objects[0].Key)

	// 3 live buckets and a snapshot per video
	buckets, err := rt.Buckets(ctx)
	require.NoError(t, err)
	assert.Len(t, buckets, 5)

	_, err = rt.CreateChild(ctx, project.ID, "video", "late")
	assert.True(t, errors.Is(err, ErrNotDraft))
}

func TestProjectPublishIsAtomic(t *testing.T) {
	rt, _, cleanup := setupRuntime(t)
	defer cleanup()
	ctx := context.Background()

	project, err := rt.CreateDeposit(ctx, "project", "atomic")
	require.NoError(t, err)
	good, err := rt.CreateChild(ctx, project.ID, "video", "good")
	require.NoError(t, err)
	bad, err := rt.CreateChild(ctx, project.ID, "video", "bad")
	require.NoError(t, err)

	addFile(ctx, t, rt, good.ID, "good.mp4", "good")
	slave := addFile(ctx, t, rt, bad.ID, "bad.mp4", "bad")
	require.NoError(t, rt.TagObject(ctx, slave.VersionID, store.TagMaster, "31337"))

	_, err = rt.Publish(ctx, project.ID)
	var integrity *snapshot.IntegrityError
	require.True(t, errors.As(err, &integrity))

	for _, id := range []string{project.ID, good.ID, bad.ID} {
		d, err := rt.GetDeposit(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, store.StatusDraft, d.Status, d.Title)
		assert.Empty(t, d.Revisions, d.Title)
	}
	buckets, err := rt.Buckets(ctx)
	require.NoError(t, err)
	assert.Len(t, buckets, 3)
}

// racingBlobs runs during once, right after the first content is stored
type racingBlobs struct {
	blob.Store
	once   sync.Once
	during func()
}

func (r *racingBlobs) Put(ctx context.Context, key string, rdr io.Reader) error {
	if err := r.Store.Put(ctx, key, rdr); err != nil {
		return err
	}
	r.once.Do(r.during)
	return nil
}

func TestFailedUploadKeepsSharedContent(t *testing.T) {
	blobs := &racingBlobs{Store: localfs.New(afero.NewMemMapFs())}
	rt, _, cleanup := setupRuntime(t, Blobs(blobs))
	defer cleanup()
	ctx := context.Background()

	a, err := rt.CreateDeposit(ctx, "video", "a")
	require.NoError(t, err)
	b, err := rt.CreateDeposit(ctx, "video", "b")
	require.NoError(t, err)

	var (
		other    *store.Object
		otherErr error
		done     = make(chan struct{})
	)
	blobs.during = func() {
		// the same bytes are uploaded to a, and b gets published before its upload commits
		go func() {
			defer close(done)
			other, otherErr = rt.AddFile(ctx, a.ID, UploadStream("shared.mp4", bytes.NewBufferString("shared bytes")))
		}()
		_, err := rt.Publish(ctx, b.ID)
		require.NoError(t, err)
	}

	_, err = rt.AddFile(ctx, b.ID, UploadStream("shared.mp4", bytes.NewBufferString("shared bytes")))
	assert.True(t, errors.Is(err, ErrNotDraft))

	<-done
	require.NoError(t, otherErr)

	objects, err := rt.ListObjects(ctx, a.BucketID)
	require.NoError(t, err)
	assert.Len(t, objects, 1)

	rdr, _, err := rt.OpenFile(ctx, other.VersionID)
	require.NoError(t, err)
	defer rdr.Close()
	content, err := io.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, "shared bytes", string(content))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestPublishMetrics(t *testing.T) {
	failing := func(ctx context.Context, tx store.Tx, d *store.Deposit, snap snapshot.Result) error {
		if d.Title == "rejected" {
			return errors.New("rejected by hook")
		}
		return nil
	}
	rt, _, cleanup := setupRuntime(t, PublishHook(failing))
	defer cleanup()
	ctx := context.Background()

	committed := counterValue(t, publishes.WithLabelValues(resultCommitted))
	rolledBack := counterValue(t, publishes.WithLabelValues(resultRolledBack))
	created := counterValue(t, snapshotsCreated)
	copied := counterValue(t, objectsCopied)
	integrity := counterValue(t, integrityFailures)

	ok, err := rt.CreateDeposit(ctx, "video", "accepted")
	require.NoError(t, err)
	addFile(ctx, t, rt, ok.ID, "one.mp4", "one")
	addFile(ctx, t, rt, ok.ID, "two.mp4", "two")
	_, err = rt.Publish(ctx, ok.ID)
	require.NoError(t, err)

	rejected, err := rt.CreateDeposit(ctx, "video", "rejected")
	require.NoError(t, err)
	addFile(ctx, t, rt, rejected.ID, "three.mp4", "three")
	_, err = rt.Publish(ctx, rejected.ID)
	require.Error(t, err)

	dangling, err := rt.CreateDeposit(ctx, "video", "dangling")
	require.NoError(t, err)
	slave := addFile(ctx, t, rt, dangling.ID, "four.mp4", "four")
	require.NoError(t, rt.TagObject(ctx, slave.VersionID, store.TagMaster, "123456"))
	_, err = rt.Publish(ctx, dangling.ID)
	require.Error(t, err)

	assert.Equal(t, committed+1, counterValue(t, publishes.WithLabelValues(resultCommitted)))
	assert.Equal(t, rolledBack+2, counterValue(t, publishes.WithLabelValues(resultRolledBack)))
	assert.Equal(t, created+1, counterValue(t, snapshotsCreated))
	assert.Equal(t, copied+2, counterValue(t, objectsCopied))
	assert.Equal(t, integrity+1, counterValue(t, integrityFailures))
}
