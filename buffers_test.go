package vkrs

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func memoryProperties(flags ...vk.MemoryPropertyFlags) vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = uint32(len(flags))
	for i, f := range flags {
		props.MemoryTypes[i].PropertyFlags = f
	}
	return props
}

func TestFindMemoryTypeSuperset(t *testing.T) {
	props := memoryProperties(
		deviceLocal,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit),
		hostCoherent|vk.MemoryPropertyFlags(vk.MemoryPropertyHostCachedBit),
	)

	index, err := FindMemoryType(props, 0b111, hostCoherent)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), index)

	index, err = FindMemoryType(props, 0b111, deviceLocal)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), index)
}

func TestFindMemoryTypeRespectsFilter(t *testing.T) {
	props := memoryProperties(deviceLocal, deviceLocal)
	index, err := FindMemoryType(props, 0b10, deviceLocal)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)
}

func TestFindMemoryTypeNoMatch(t *testing.T) {
	props := memoryProperties(deviceLocal)
	_, err := FindMemoryType(props, 0b1, hostCoherent)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFatalConfig))

	_, err = FindMemoryType(props, 0b10, deviceLocal)
	assert.True(t, errors.Is(err, ErrFatalConfig))
}

func TestWriteUnmappedBuffer(t *testing.T) {
	buf := &CoreBuffer{size: 4}
	err := buf.Write([]byte{1, 2, 3, 4})
	assert.True(t, errors.Is(err, ErrDevice))
}

func TestReadMappedBuffer(t *testing.T) {
	memory := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	buf := &CoreBuffer{size: 8, mapped: unsafe.Pointer(&memory[0])}

	data, err := buf.Read()
	require.NoError(t, err)
	assert.Equal(t, memory, data)
	assert.Equal(t, vk.DeviceSize(8), buf.Size())

	//A copy, not a view of the mapping
	memory[0] = 42
	assert.Equal(t, byte(1), data[0])

	_, err = (&CoreBuffer{size: 4}).Read()
	assert.True(t, errors.Is(err, ErrDevice))
}
