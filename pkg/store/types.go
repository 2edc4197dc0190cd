package store

import (
	"sort"
	"strconv"
	"time"
)

// Well known object tags
const (
	TagMaster      = "master"
	TagMediaType   = "media_type"
	TagContextType = "context_type"
)

// VersionID identifies an object version, unique across all buckets
type VersionID uint64

func (v VersionID) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// ParseVersionID reads a version id from its tag representation
func ParseVersionID(s string) (VersionID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return VersionID(v), nil
}

// Bucket holds the objects of a deposit, or a frozen copy of them
type Bucket struct {
	ID       string    `json:"id" yaml:"id"`
	Snapshot bool      `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	Source   string    `json:"source,omitempty" yaml:"source,omitempty"`
	Locked   bool      `json:"locked,omitempty" yaml:"locked,omitempty"`
	Created  time.Time `json:"created" yaml:"created"`
}

// Object is one versioned file entry in a bucket
type Object struct {
	BucketID  string    `json:"bucket" yaml:"bucket"`
	Key       string    `json:"key" yaml:"key"`
	VersionID VersionID `json:"version_id" yaml:"version_id"`
	FileID    string    `json:"file_id" yaml:"file_id"`
	Created   time.Time `json:"created" yaml:"created"`
}

// FileInstance points at stored content, shared by every object with the same checksum
type FileInstance struct {
	ID       string `json:"id" yaml:"id"`
	Checksum string `json:"checksum" yaml:"checksum"`
	Size     int64  `json:"size" yaml:"size"`
	URI      string `json:"uri" yaml:"uri"`
}

// Tag is a key/value pair attached to an object
type Tag struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Tags are kept sorted by key
type Tags []Tag

// Get the value for key
func (t Tags) Get(key string) (string, bool) {
	i := t.search(key)
	if i < len(t) && t[i].Key == key {
		return t[i].Value, true
	}
	return "", false
}

// Set returns the tags with key set to value
func (t Tags) Set(key, value string) Tags {
	i := t.search(key)
	if i < len(t) && t[i].Key == key {
		t[i].Value = value
		return t
	}
	t = append(t, Tag{})
	copy(t[i+1:], t[i:])
	t[i] = Tag{Key: key, Value: value}
	return t
}

// Without returns a copy of the tags minus key
func (t Tags) Without(key string) Tags {
	result := make(Tags, 0, len(t))
	for _, tag := range t {
		if tag.Key != key {
			result = append(result, tag)
		}
	}
	return result
}

// Map of the tags, mostly for printing
func (t Tags) Map() map[string]string {
	m := make(map[string]string, len(t))
	for _, tag := range t {
		m[tag.Key] = tag.Value
	}
	return m
}

func (t Tags) search(key string) int {
	return sort.Search(len(t), func(i int) bool { return t[i].Key >= key })
}

// Status of a deposit
type Status string

// Deposit statuses
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Reference to a revision of another deposit
type Reference struct {
	DepositID string `json:"deposit" yaml:"deposit"`
	Number    int    `json:"number" yaml:"number"`
	BucketID  string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
}

// Revision records one publish of a deposit, with the metadata as it was published.
// BucketID is empty when the deposit had no files at publish time.
type Revision struct {
	Number    int         `json:"number" yaml:"number"`
	BucketID  string      `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Title     string      `json:"title" yaml:"title"`
	Children  []Reference `json:"children,omitempty" yaml:"children,omitempty"`
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`
}

// Deposit is a draft record with a live bucket.
//
// A deposit either has a parent (a video in a project) or children, never both.
type Deposit struct {
	ID        string     `json:"id" yaml:"id"`
	Type      string     `json:"type" yaml:"type"`
	Title     string     `json:"title" yaml:"title"`
	BucketID  string     `json:"bucket" yaml:"bucket"`
	Status    Status     `json:"status" yaml:"status"`
	Parent    string     `json:"parent,omitempty" yaml:"parent,omitempty"`
	Children  []string   `json:"children,omitempty" yaml:"children,omitempty"`
	Revisions []Revision `json:"revisions,omitempty" yaml:"revisions,omitempty"`
	Created   time.Time  `json:"created" yaml:"created"`
}

// Latest published revision, if any
func (d *Deposit) Latest() (Revision, bool) {
	if len(d.Revisions) == 0 {
		return Revision{}, false
	}
	return d.Revisions[len(d.Revisions)-1], true
}
