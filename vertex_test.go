package vkrs

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestVertexLayout(t *testing.T) {
	assert.Equal(t, uint32(32), VertexStride)

	attrs := vertexAttributeDescriptions()
	assert.Len(t, attrs, 3)
	assert.Equal(t, uint32(0), attrs[0].Offset)
	assert.Equal(t, uint32(12), attrs[1].Offset)
	assert.Equal(t, uint32(24), attrs[2].Offset)
	assert.Equal(t, vk.FormatR32g32Sfloat, attrs[2].Format)

	bindings := vertexBindingDescriptions()
	assert.Equal(t, VertexStride, bindings[0].Stride)
}

func TestVertexBytes(t *testing.T) {
	assert.Nil(t, VertexBytes(nil))
	vertices := []Vertex{
		{Pos: mgl32.Vec3{1, 2, 3}, Color: mgl32.Vec3{1, 1, 1}, UV: mgl32.Vec2{0.5, 0.25}},
		{Pos: mgl32.Vec3{4, 5, 6}},
	}
	raw := VertexBytes(vertices)
	assert.Len(t, raw, 64)
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(raw[4:])))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(raw[28:])))
	assert.Equal(t, float32(4), math.Float32frombits(binary.LittleEndian.Uint32(raw[32:])))
}

func TestIndexBytes(t *testing.T) {
	raw := IndexBytes([]uint32{0, 1, 258})
	assert.Len(t, raw, 12)
	assert.Equal(t, uint32(258), binary.LittleEndian.Uint32(raw[8:]))
}
