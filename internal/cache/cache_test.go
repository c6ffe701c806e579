package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	c := New(10)
	assert.True(t, c.Set("a", "1", 0))

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := New(10)
	c.Set("a", "1", 10*time.Millisecond)
	assert.True(t, c.Exists("a"))

	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCapacity(t *testing.T) {
	c := New(2)
	assert.True(t, c.Set("a", "1", 0))
	assert.True(t, c.Set("b", "2", 10*time.Millisecond))
	assert.False(t, c.Set("c", "3", 0))

	// Once an entry expires the slot frees up
	time.Sleep(20 * time.Millisecond)
	assert.True(t, c.Set("c", "3", 0))
}

func TestDelete(t *testing.T) {
	c := New(10)
	c.Set("a", "1", 0)
	c.Delete("a")
	assert.False(t, c.Exists("a"))
}

func TestUniqueList(t *testing.T) {
	c := New(10)
	assert.True(t, c.UniqueListAdd("results", "second", 5, 0))
	assert.True(t, c.UniqueListAdd("results", "first", 10, 0))
	assert.False(t, c.UniqueListAdd("results", "second", 7, 0))

	items := c.UniqueListGet("results", 0, 100, 0)
	assert.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Value)
	assert.Equal(t, "second", items[1].Value)
	// re-adding updates the score
	assert.Equal(t, 7, items[1].Score)
}

func TestUniqueListScoreRangeAndLimit(t *testing.T) {
	c := New(10)
	c.UniqueListAdd("r", "low", 1, 0)
	c.UniqueListAdd("r", "mid", 5, 0)
	c.UniqueListAdd("r", "high", 9, 0)

	items := c.UniqueListGet("r", 2, 10, 0)
	assert.Len(t, items, 2)

	items = c.UniqueListGet("r", 0, 10, 1)
	assert.Len(t, items, 1)
	assert.Equal(t, "high", items[0].Value)

	assert.Nil(t, c.UniqueListGet("unknown", 0, 10, 0))
}
