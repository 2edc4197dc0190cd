package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags(t *testing.T) {
	var tags Tags
	tags = tags.Set(TagMediaType, "video")
	tags = tags.Set(TagMaster, "12")
	tags = tags.Set(TagContextType, "subformat")
	tags = tags.Set(TagMaster, "13")

	assert.Equal(t, Tags{
		{Key: "context_type", Value: "subformat"},
		{Key: "master", Value: "13"},
		{Key: "media_type", Value: "video"},
	}, tags)

	v, ok := tags.Get(TagMaster)
	assert.True(t, ok)
	assert.Equal(t, "13", v)

	_, ok = tags.Get("preview")
	assert.False(t, ok)

	without := tags.Without(TagMaster)
	assert.Len(t, without, 2)
	assert.Len(t, tags, 3)
	_, ok = without.Get(TagMaster)
	assert.False(t, ok)

	assert.Equal(t, map[string]string{
		"context_type": "subformat",
		"master":       "13",
		"media_type":   "video",
	}, tags.Map())
}

func TestVersionID(t *testing.T) {
	v, err := ParseVersionID("1234")
	require.NoError(t, err)
	assert.Equal(t, VersionID(1234), v)
	assert.Equal(t, "1234", v.String())

	_, err = ParseVersionID("not-a-version")
	assert.Error(t, err)
}

func TestDepositLatest(t *testing.T) {
	d := &Deposit{}
	_, ok := d.Latest()
	assert.False(t, ok)

	d.Revisions = []Revision{{Number: 1, BucketID: "a"}, {Number: 2, BucketID: "b"}}
	rev, ok := d.Latest()
	assert.True(t, ok)
	assert.Equal(t, "b", rev.BucketID)
}
