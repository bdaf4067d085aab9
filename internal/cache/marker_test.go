package cache

import (
	"sync"
	"testing"

	"github.com/riadevigo/buoyplanner/internal/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerCache_NewMarkerCache(t *testing.T) {
	cache := NewMarkerCache()

	require.NotNil(t, cache)
	assert.NotNil(t, cache.markers)
	assert.Equal(t, 0, cache.Len())
}

func TestMarkerCache_SetAndGet(t *testing.T) {
	cache := NewMarkerCache()

	cache.Set("wp-1", 42)

	h, ok := cache.Get("wp-1")
	require.True(t, ok, "expected to find wp-1")
	assert.Equal(t, surface.Handle(42), h)
}

func TestMarkerCache_Get_NotFound(t *testing.T) {
	cache := NewMarkerCache()

	_, ok := cache.Get("nonexistent")
	assert.False(t, ok, "expected not to find nonexistent waypoint")
}

func TestMarkerCache_Delete(t *testing.T) {
	cache := NewMarkerCache()

	cache.Set("wp-1", 1)
	cache.Set("wp-2", 2)

	cache.Delete("wp-1")

	_, ok := cache.Get("wp-1")
	assert.False(t, ok, "expected not to find wp-1 after delete")

	_, ok = cache.Get("wp-2")
	assert.True(t, ok, "expected wp-2 to still exist")

	// deleting again is harmless
	cache.Delete("wp-1")
	assert.Equal(t, 1, cache.Len())
}

func TestMarkerCache_IDs(t *testing.T) {
	cache := NewMarkerCache()
	cache.Set("c", 3)
	cache.Set("a", 1)
	cache.Set("b", 2)

	assert.Equal(t, []string{"a", "b", "c"}, cache.IDs())
}

func TestMarkerCache_Reset(t *testing.T) {
	cache := NewMarkerCache()
	cache.Set("wp-1", 1)
	cache.Set("wp-2", 2)

	handles := cache.Reset()

	assert.ElementsMatch(t, []surface.Handle{1, 2}, handles)
	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get("wp-1")
	assert.False(t, ok)
}

func TestMarkerCache_ConcurrentReadWrite(t *testing.T) {
	cache := NewMarkerCache()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(3)

		go func(id int) {
			defer wg.Done()
			cache.Set("wp", surface.Handle(id))
		}(i)

		go func() {
			defer wg.Done()
			cache.Get("wp")
		}()

		go func() {
			defer wg.Done()
			cache.Delete("wp")
		}()
	}

	wg.Wait()
}
