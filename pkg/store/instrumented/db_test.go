package instrumented

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/oneconcern/depot/pkg/store"
	"github.com/oneconcern/depot/pkg/store/localfs"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func operations(tr *mocktracer.MockTracer) []string {
	var names []string
	for _, span := range tr.FinishedSpans() {
		names = append(names, span.OperationName)
	}
	return names
}

func TestTracedTransactions(t *testing.T) {
	td, err := os.MkdirTemp("", "depot-tst")
	require.NoError(t, err)
	defer os.RemoveAll(td)

	tr := mocktracer.New()
	db := NewDB(tr, localfs.New(td))
	require.NoError(t, db.Initialize())
	defer db.Close()

	ctx := context.Background()
	err = db.Update(ctx, func(tx store.Tx) error {
		return tx.Buckets().Create(ctx, &store.Bucket{ID: "live"})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"create bucket", "update"}, operations(tr))

	tr.Reset()
	boom := errors.New("boom")
	err = db.Update(ctx, func(tx store.Tx) error {
		if _, err := tx.Buckets().Get(ctx, "live"); err != nil {
			return err
		}
		return boom
	})
	require.Equal(t, boom, err)

	spans := tr.FinishedSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "get bucket live", spans[0].OperationName)
	assert.Equal(t, "update", spans[1].OperationName)
	assert.Equal(t, true, spans[1].Tag("error"))
}
