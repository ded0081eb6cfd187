package pipeline

import (
	"testing"

	"github.com/couchcryptid/stencil-lab/internal/domain"
	"github.com/stretchr/testify/assert"
)

func img(v float64) domain.Image {
	return domain.Image{Channels: []domain.Grid{domain.Filled(3, 3, v)}}
}

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", img(1))
	c.put("b", img(2))

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.InDelta(t, 1, result.Channels[0].At(0, 0), 0)

	_, ok = c.get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", img(1))
	c.put("b", img(2))
	c.put("c", img(3)) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	_, ok = c.get("b")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", img(1))
	c.put("b", img(2))
	c.get("a")
	c.put("c", img(3))

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", img(1))
	c.put("a", img(2))

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.InDelta(t, 2, result.Channels[0].At(0, 0), 0)
	assert.Equal(t, 1, c.len())
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "dc_metro.png|00000000000000ff|50", cacheKey("dc_metro.png", 0xff, 50))
}
