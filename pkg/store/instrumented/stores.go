package instrumented

import (
	"context"

	"github.com/oneconcern/depot/pkg/store"
	opentracing "github.com/opentracing/opentracing-go"
)

type instrumentedBuckets struct {
	tr opentracing.Tracer
	w  store.BucketStore
}

func (i *instrumentedBuckets) Create(ctx context.Context, bucket *store.Bucket) (err error) {
	traced(ctx, i.tr, "create bucket", func() { err = i.w.Create(ctx, bucket) })
	return
}
func (i *instrumentedBuckets) Get(ctx context.Context, id string) (result *store.Bucket, err error) {
	traced(ctx, i.tr, "get bucket "+id, func() { result, err = i.w.Get(ctx, id) })
	return
}
func (i *instrumentedBuckets) List(ctx context.Context) (result []store.Bucket, err error) {
	traced(ctx, i.tr, "list buckets", func() { result, err = i.w.List(ctx) })
	return
}
func (i *instrumentedBuckets) Count(ctx context.Context) (result int, err error) {
	traced(ctx, i.tr, "count buckets", func() { result, err = i.w.Count(ctx) })
	return
}
func (i *instrumentedBuckets) Lock(ctx context.Context, id string) (err error) {
	traced(ctx, i.tr, "lock bucket "+id, func() { err = i.w.Lock(ctx, id) })
	return
}

type instrumentedObjects struct {
	tr opentracing.Tracer
	w  store.ObjectStore
}

func (i *instrumentedObjects) Create(ctx context.Context, bucketID, key, fileID string) (result *store.Object, err error) {
	traced(ctx, i.tr, "create object "+key, func() { result, err = i.w.Create(ctx, bucketID, key, fileID) })
	return
}
func (i *instrumentedObjects) Get(ctx context.Context, version store.VersionID) (result *store.Object, err error) {
	traced(ctx, i.tr, "get object "+version.String(), func() { result, err = i.w.Get(ctx, version) })
	return
}
func (i *instrumentedObjects) List(ctx context.Context, bucketID string) (result []store.Object, err error) {
	traced(ctx, i.tr, "list objects "+bucketID, func() { result, err = i.w.List(ctx, bucketID) })
	return
}
func (i *instrumentedObjects) Tags(ctx context.Context, version store.VersionID) (result store.Tags, err error) {
	traced(ctx, i.tr, "get tags "+version.String(), func() { result, err = i.w.Tags(ctx, version) })
	return
}
func (i *instrumentedObjects) SetTag(ctx context.Context, version store.VersionID, key, value string) (err error) {
	traced(ctx, i.tr, "set tag "+key, func() { err = i.w.SetTag(ctx, version, key, value) })
	return
}

type instrumentedFiles struct {
	tr opentracing.Tracer
	w  store.FileStore
}

func (i *instrumentedFiles) Create(ctx context.Context, file *store.FileInstance) (err error) {
	traced(ctx, i.tr, "create file", func() { err = i.w.Create(ctx, file) })
	return
}
func (i *instrumentedFiles) Get(ctx context.Context, id string) (result *store.FileInstance, err error) {
	traced(ctx, i.tr, "get file "+id, func() { result, err = i.w.Get(ctx, id) })
	return
}
func (i *instrumentedFiles) GetByChecksum(ctx context.Context, checksum string) (result *store.FileInstance, err error) {
	traced(ctx, i.tr, "get file by checksum", func() { result, err = i.w.GetByChecksum(ctx, checksum) })
	return
}

type instrumentedDeposits struct {
	tr opentracing.Tracer
	w  store.DepositStore
}

func (i *instrumentedDeposits) Create(ctx context.Context, deposit *store.Deposit) (err error) {
	traced(ctx, i.tr, "create deposit", func() { err = i.w.Create(ctx, deposit) })
	return
}
func (i *instrumentedDeposits) Get(ctx context.Context, id string) (result *store.Deposit, err error) {
	traced(ctx, i.tr, "get deposit "+id, func() { result, err = i.w.Get(ctx, id) })
	return
}
func (i *instrumentedDeposits) GetByBucket(ctx context.Context, bucketID string) (result *store.Deposit, err error) {
	traced(ctx, i.tr, "get deposit by bucket "+bucketID, func() { result, err = i.w.GetByBucket(ctx, bucketID) })
	return
}
func (i *instrumentedDeposits) Update(ctx context.Context, deposit *store.Deposit) (err error) {
	traced(ctx, i.tr, "update deposit "+deposit.ID, func() { err = i.w.Update(ctx, deposit) })
	return
}
func (i *instrumentedDeposits) List(ctx context.Context) (result []store.Deposit, err error) {
	traced(ctx, i.tr, "list deposits", func() { result, err = i.w.List(ctx) })
	return
}
