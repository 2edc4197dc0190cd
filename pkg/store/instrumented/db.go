package instrumented

import (
	"context"

	"github.com/oneconcern/depot/pkg/store"
	opentracing "github.com/opentracing/opentracing-go"
)

// NewDB creates an instrumented store, every transaction and store call gets a span
func NewDB(tr opentracing.Tracer, w store.DB) store.DB {
	return &instrumentedDB{
		tr: tr,
		w:  w,
	}
}

type instrumentedDB struct {
	tr opentracing.Tracer
	w  store.DB
}

func (i *instrumentedDB) Initialize() error { return i.w.Initialize() }
func (i *instrumentedDB) Close() error      { return i.w.Close() }

func (i *instrumentedDB) View(ctx context.Context, fn func(store.Tx) error) error {
	return i.run(ctx, "view", i.w.View, fn)
}

func (i *instrumentedDB) Update(ctx context.Context, fn func(store.Tx) error) error {
	return i.run(ctx, "update", i.w.Update, fn)
}

func (i *instrumentedDB) run(ctx context.Context, name string, begin func(context.Context, func(store.Tx) error) error, fn func(store.Tx) error) error {
	span, ctx := startSpan(ctx, i.tr, name)
	defer span.Finish()

	err := begin(ctx, func(tx store.Tx) error {
		return fn(&instrumentedTx{tr: i.tr, w: tx})
	})
	if err != nil {
		span.SetTag("error", true)
		span.LogKV("event", "rollback", "message", err.Error())
	}
	return err
}

type instrumentedTx struct {
	tr opentracing.Tracer
	w  store.Tx
}

func (i *instrumentedTx) Buckets() store.BucketStore {
	return &instrumentedBuckets{tr: i.tr, w: i.w.Buckets()}
}
func (i *instrumentedTx) Objects() store.ObjectStore {
	return &instrumentedObjects{tr: i.tr, w: i.w.Objects()}
}
func (i *instrumentedTx) Files() store.FileStore {
	return &instrumentedFiles{tr: i.tr, w: i.w.Files()}
}
func (i *instrumentedTx) Deposits() store.DepositStore {
	return &instrumentedDeposits{tr: i.tr, w: i.w.Deposits()}
}

func startSpan(ctx context.Context, tr opentracing.Tracer, name string) (opentracing.Span, context.Context) {
	var opts []opentracing.StartSpanOption
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	span := tr.StartSpan(name, opts...)
	return span, opentracing.ContextWithSpan(ctx, span)
}

func traced(ctx context.Context, tr opentracing.Tracer, name string, action func()) {
	span, _ := startSpan(ctx, tr, name)
	defer span.Finish()
	action()
}
