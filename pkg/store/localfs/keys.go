package localfs

import (
	"fmt"

	"github.com/oneconcern/depot/pkg/store"
)

var (
	bucketPref   = [7]byte{'b', 'u', 'c', 'k', 'e', 't', ':'}
	objectPref   = [7]byte{'o', 'b', 'j', 'e', 'c', 't', ':'}
	versionPref  = [8]byte{'v', 'e', 'r', 's', 'i', 'o', 'n', ':'}
	tagPref      = [4]byte{'t', 'a', 'g', ':'}
	filePref     = [5]byte{'f', 'i', 'l', 'e', ':'}
	checksumPref = [9]byte{'c', 'h', 'e', 'c', 'k', 's', 'u', 'm', ':'}
	depositPref  = [8]byte{'d', 'e', 'p', 'o', 's', 'i', 't', ':'}
	ownerPref    = [6]byte{'o', 'w', 'n', 'e', 'r', ':'}

	versionSeqKey = []byte("seq:version")
)

// versions are zero padded so that lexical order is numerical order
func versionString(v store.VersionID) string {
	return fmt.Sprintf("%020d", uint64(v))
}

func bucketKey(id string) []byte {
	return append(bucketPref[:], store.UnsafeStringToBytes(id)...)
}

func objectPrefix(bucketID string) []byte {
	k := append(objectPref[:], store.UnsafeStringToBytes(bucketID)...)
	return append(k, ':')
}

func objectKey(bucketID string, v store.VersionID) []byte {
	return append(objectPrefix(bucketID), versionString(v)...)
}

func versionKey(v store.VersionID) []byte {
	return append(versionPref[:], versionString(v)...)
}

func tagPrefix(v store.VersionID) []byte {
	k := append(tagPref[:], versionString(v)...)
	return append(k, ':')
}

func tagKey(v store.VersionID, key string) []byte {
	return append(tagPrefix(v), store.UnsafeStringToBytes(key)...)
}

func fileKey(id string) []byte {
	return append(filePref[:], store.UnsafeStringToBytes(id)...)
}

func checksumKey(sum string) []byte {
	return append(checksumPref[:], store.UnsafeStringToBytes(sum)...)
}

func depositKey(id string) []byte {
	return append(depositPref[:], store.UnsafeStringToBytes(id)...)
}

func ownerKey(bucketID string) []byte {
	return append(ownerPref[:], store.UnsafeStringToBytes(bucketID)...)
}
