package store

import "context"

type errorString string

func (e errorString) Error() string {
	return string(e)
}

const (
	// ErrIDRequired is returned whenever an id is expected but not provided
	ErrIDRequired errorString = "id is required"

	// ErrKeyRequired is returned when an object or tag is created without a key
	ErrKeyRequired errorString = "key is required"

	// ErrBucketNotFound when a bucket is not found
	ErrBucketNotFound errorString = "bucket not found"

	// ErrBucketExists is returned when a bucket is expected to not exist yet
	ErrBucketExists errorString = "bucket already exists"

	// ErrBucketLocked is returned when writing to a snapshot bucket
	ErrBucketLocked errorString = "bucket is locked"

	// ErrObjectNotFound when an object version is not found
	ErrObjectNotFound errorString = "object not found"

	// ErrFileNotFound when a file instance is not found
	ErrFileNotFound errorString = "file instance not found"

	// ErrDepositNotFound when a deposit is not found
	ErrDepositNotFound errorString = "deposit not found"

	// ErrDepositExists is returned when a deposit is expected to not exist yet
	ErrDepositExists errorString = "deposit already exists"
)

// A DB hands out transactions spanning every store.
//
// Update commits only when fn returns nil, any error discards all the
// writes performed through the Tx. Stores never commit on their own.
type DB interface {
	Initialize() error
	Close() error

	View(ctx context.Context, fn func(Tx) error) error
	Update(ctx context.Context, fn func(Tx) error) error
}

// Tx is the unit of work shared by the stores
type Tx interface {
	Buckets() BucketStore
	Objects() ObjectStore
	Files() FileStore
	Deposits() DepositStore
}

// A BucketStore manages buckets
type BucketStore interface {
	Create(ctx context.Context, bucket *Bucket) error
	Get(ctx context.Context, id string) (*Bucket, error)
	List(ctx context.Context) ([]Bucket, error)
	Count(ctx context.Context) (int, error)
	Lock(ctx context.Context, id string) error
}

// An ObjectStore manages object versions and their tags
type ObjectStore interface {
	Create(ctx context.Context, bucketID, key, fileID string) (*Object, error)
	Get(ctx context.Context, version VersionID) (*Object, error)
	List(ctx context.Context, bucketID string) ([]Object, error)

	Tags(ctx context.Context, version VersionID) (Tags, error)
	SetTag(ctx context.Context, version VersionID, key, value string) error
}

// A FileStore manages content addressed file instances
type FileStore interface {
	Create(ctx context.Context, file *FileInstance) error
	Get(ctx context.Context, id string) (*FileInstance, error)
	GetByChecksum(ctx context.Context, checksum string) (*FileInstance, error)
}

// A DepositStore resolves deposits by id or by live bucket
type DepositStore interface {
	Create(ctx context.Context, deposit *Deposit) error
	Get(ctx context.Context, id string) (*Deposit, error)
	GetByBucket(ctx context.Context, bucketID string) (*Deposit, error)
	Update(ctx context.Context, deposit *Deposit) error
	List(ctx context.Context) ([]Deposit, error)
}
