package snapshot

import (
	"fmt"

	"github.com/oneconcern/depot/pkg/store"
)

// IntegrityError is returned when a slave refers to a master that is not in its bucket,
// or to a master that is a slave itself
type IntegrityError struct {
	Bucket string
	Object store.VersionID
	Key    string
	Master string
	Reason string
	_      struct{}
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity error in bucket %s: object %s (%s) has master %q: %s",
		e.Bucket, e.Object, e.Key, e.Master, e.Reason)
}
