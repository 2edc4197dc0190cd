// Package fingerprint computes the content checksums file instances are addressed by.
package fingerprint

import (
	"encoding/hex"
	"hash"
	"io"
	"strings"

	blake2b "github.com/minio/blake2b-simd"
)

// Algorithm prefixes every checksum
const Algorithm = "blake2b"

type errString string

func (e errString) Error() string { return string(e) }

// ErrMalformed is returned when a checksum can't be split into a blob key
const ErrMalformed errString = "malformed checksum"

// Writer hashes what is written through it
type Writer struct {
	h hash.Hash
	n int64
}

// NewWriter creates a blake2b-512 hashing writer
func NewWriter() *Writer {
	return &Writer{h: blake2b.New512()}
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.h.Write(p)
	w.n += int64(n)
	return n, err
}

// Size of the content written so far
func (w *Writer) Size() int64 { return w.n }

// Checksum of the content written so far
func (w *Writer) Checksum() string {
	return Algorithm + ":" + hex.EncodeToString(w.h.Sum(nil))
}

// Sum reads r to the end and returns its checksum and size
func Sum(r io.Reader) (string, int64, error) {
	w := NewWriter()
	if _, err := io.Copy(w, r); err != nil {
		return "", 0, err
	}
	return w.Checksum(), w.Size(), nil
}

// BlobKey spreads checksums over a 2 level directory tree: ab/cd/abcdef...
func BlobKey(checksum string) (string, error) {
	digest := strings.TrimPrefix(checksum, Algorithm+":")
	if digest == checksum || len(digest) < 5 {
		return "", ErrMalformed
	}
	return digest[:2] + "/" + digest[2:4] + "/" + digest, nil
}
