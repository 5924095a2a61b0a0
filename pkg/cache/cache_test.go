package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := NewTTL[string](time.Minute, time.Minute)
	defer c.Close()

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := NewTTL[int](20*time.Millisecond, time.Hour)
	defer c.Close()

	c.Set("k", 42)
	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	// Lazy eviction removed the entry on read.
	assert.Zero(t, c.Size())
}

func TestSweepRemovesExpired(t *testing.T) {
	c := NewTTL[int](10*time.Millisecond, 20*time.Millisecond)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 2, c.Size())

	assert.Eventually(t, func() bool { return c.Size() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestDelete(t *testing.T) {
	c := NewTTL[int](time.Minute, time.Minute)
	defer c.Close()

	c.Set("k", 1)
	assert.True(t, c.Delete("k"))
	assert.False(t, c.Delete("k"))
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	c := NewTTL[int](time.Minute, time.Minute)
	defer c.Close()

	c.Set("k", 1)
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	hits, misses := c.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCloseIsIdempotent(t *testing.T) {
	c := NewTTL[int](time.Minute, time.Minute)
	c.Close()
	c.Close()
}

func TestConcurrentAccess(t *testing.T) {
	c := NewTTL[int](time.Minute, time.Minute)
	defer c.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			c.Set("k", i)
		}
	}()
	for i := 0; i < 500; i++ {
		c.Get("k")
	}
	<-done
}
