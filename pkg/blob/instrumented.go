package blob

import (
	"context"
	"io"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
)

// Instrument a blob store with a span per call
func Instrument(tr opentracing.Tracer, store Store) Store {
	return &instrumentedStore{
		tr:    tr,
		store: store,
	}
}

type instrumentedStore struct {
	store Store
	tr    opentracing.Tracer
}

func (i *instrumentedStore) opName(name string) string {
	return strings.Join([]string{"blob", i.String(), name}, ".")
}

func (i *instrumentedStore) startSpan(ctx context.Context, name string) opentracing.Span {
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		return i.tr.StartSpan(i.opName(name), opentracing.ChildOf(parent.Context()))
	}
	return i.tr.StartSpan(i.opName(name))
}

func (i *instrumentedStore) Has(ctx context.Context, key string) (bool, error) {
	span := i.startSpan(ctx, "Has")
	defer span.Finish()

	return i.store.Has(ctx, key)
}

func (i *instrumentedStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	span := i.startSpan(ctx, "Get")
	defer span.Finish()

	return i.store.Get(ctx, key)
}

func (i *instrumentedStore) Put(ctx context.Context, key string, rdr io.Reader) error {
	span := i.startSpan(ctx, "Put")
	defer span.Finish()

	return i.store.Put(ctx, key, rdr)
}

func (i *instrumentedStore) Delete(ctx context.Context, key string) error {
	span := i.startSpan(ctx, "Delete")
	defer span.Finish()

	return i.store.Delete(ctx, key)
}

func (i *instrumentedStore) String() string {
	return i.store.String()
}
