package vkrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArenaReleasesInReverseOrder(t *testing.T) {
	arena := NewCoreArena("swapchain")
	var order []string
	for _, name := range []string{"swapchain", "views", "render pass", "pipeline", "depth", "framebuffers"} {
		name := name
		arena.Defer(func() { order = append(order, name) })
	}
	assert.Equal(t, 6, arena.Len())

	arena.Release()
	assert.Equal(t, []string{"framebuffers", "depth", "pipeline", "render pass", "views", "swapchain"}, order)
	assert.Equal(t, 0, arena.Len())
	assert.Equal(t, "swapchain", arena.Name())
}

func TestArenaReusableAfterRelease(t *testing.T) {
	arena := NewCoreArena("model")
	calls := 0
	arena.Defer(func() { calls++ })
	arena.Release()
	arena.Release()
	assert.Equal(t, 1, calls)

	arena.Defer(func() { calls += 10 })
	arena.Release()
	assert.Equal(t, 11, calls)
}
