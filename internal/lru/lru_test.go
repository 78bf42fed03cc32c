package lru

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAdd(t *testing.T) {
	assert := assert.New(t)

	c := New[string, int](3)

	_, ok := c.Get("a")
	assert.False(ok)

	c.Add("a", 1)
	c.Add("b", 2)

	v, ok := c.Get("a")
	assert.True(ok)
	assert.Equal(1, v)
	assert.Equal(2, c.Len())
	assert.True(c.Contains("b"))
	assert.False(c.Contains("c"))

	t.Run("update existing key", func(t *testing.T) {
		c.Add("a", 10)

		v, ok := c.Get("a")
		assert.True(ok)
		assert.Equal(10, v)
		assert.Equal(2, c.Len())
	})
}

func TestEvictionOrder(t *testing.T) {
	assert := assert.New(t)

	c := New[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)

	// touch a so that b becomes the eviction candidate
	_, _ = c.Get("a")

	c.Add("c", 3)

	assert.True(c.Contains("a"))
	assert.False(c.Contains("b"))
	assert.True(c.Contains("c"))
	assert.Equal(2, c.Len())
}

func TestInsertionOrderEviction(t *testing.T) {
	assert := assert.New(t)

	c := New[int, string](3)
	for i := 0; i < 5; i++ {
		c.Add(i, strconv.Itoa(i))
	}

	// 0 and 1 were inserted first and never touched again
	assert.False(c.Contains(0))
	assert.False(c.Contains(1))
	assert.True(c.Contains(2))
	assert.True(c.Contains(3))
	assert.True(c.Contains(4))
}

func TestRemoveAndClear(t *testing.T) {
	assert := assert.New(t)

	c := New[string, int](4)
	c.Add("a", 1)
	c.Add("b", 2)

	assert.True(c.Remove("a"))
	assert.False(c.Remove("a"))
	assert.Equal(1, c.Len())

	c.Clear()
	assert.Equal(0, c.Len())
	assert.False(c.Contains("b"))

	// reusable after Clear
	c.Add("c", 3)
	v, ok := c.Get("c")
	assert.True(ok)
	assert.Equal(3, v)
}

func TestMetrics(t *testing.T) {
	assert := assert.New(t)

	c := New[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)

	_, _ = c.Get("a")
	_, _ = c.Get("missing")
	c.Add("c", 3) // evicts b

	m := c.Metrics()
	assert.Equal(uint64(1), m.Hits)
	assert.Equal(uint64(1), m.Misses)
	assert.Equal(uint64(1), m.Evictions)
	assert.Equal(2, m.Size)
}

func TestCapacityFallback(t *testing.T) {
	assert := assert.New(t)

	c := New[string, int](0)
	assert.Equal(1, c.Capacity())

	c.Add("a", 1)
	c.Add("b", 2)
	assert.Equal(1, c.Len())
	assert.True(c.Contains("b"))
}

func TestConcurrentAccess(t *testing.T) {
	assert := assert.New(t)

	c := New[int, int](64)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				key := (g*1000 + i) % 100
				c.Add(key, i)
				_, _ = c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(c.Len(), 64)
}
