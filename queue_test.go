package vkrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

var (
	graphicsFlags = vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit)
	computeFlags  = vk.QueueFlags(vk.QueueComputeBit)
)

func TestSelectQueueFamiliesPrefersShared(t *testing.T) {
	q := selectQueueFamilies(
		[]vk.QueueFlags{graphicsFlags, computeFlags, graphicsFlags},
		[]bool{false, true, true})
	assert.True(t, q.IsComplete())
	assert.True(t, q.Shared())
	assert.Equal(t, uint32(2), q.Graphics)
	assert.Equal(t, []uint32{2}, q.Unique())
}

func TestSelectQueueFamiliesSplit(t *testing.T) {
	q := selectQueueFamilies(
		[]vk.QueueFlags{graphicsFlags, computeFlags},
		[]bool{false, true})
	assert.True(t, q.IsComplete())
	assert.False(t, q.Shared())
	assert.Equal(t, uint32(0), q.Graphics)
	assert.Equal(t, uint32(1), q.Present)
	assert.Equal(t, []uint32{0, 1}, q.Unique())

	infos := queueCreateInfos(q)
	assert.Len(t, infos, 2)
	assert.Equal(t, uint32(1), infos[1].QueueFamilyIndex)
	assert.Equal(t, []float32{1.0}, infos[0].PQueuePriorities)
}

func TestSelectQueueFamiliesIncomplete(t *testing.T) {
	q := selectQueueFamilies([]vk.QueueFlags{computeFlags}, []bool{true})
	assert.False(t, q.IsComplete())
	assert.False(t, q.HasGraphics)
	assert.True(t, q.HasPresent)
}
