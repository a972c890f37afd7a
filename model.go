package vkrs

import (
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

//ModelHandle identifies a loaded model. Handles are never reused within one renderer.
type ModelHandle uint32

//MeshData is a flattened list of unique vertices and a triangle list of 32 bit indices into it
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
}

//TextureData is tightly packed RGBA8, row major from the top left texel
type TextureData struct {
	Width  uint32
	Height uint32
	Pixels []byte
}

func validateModel(mesh MeshData, texture TextureData) error {
	if len(mesh.Vertices) == 0 {
		return invalidModel("mesh has no vertices")
	}
	if len(mesh.Indices) == 0 {
		return invalidModel("mesh has no indices")
	}
	if len(mesh.Indices)%3 != 0 {
		return invalidModel("index count %d is not a triangle list", len(mesh.Indices))
	}
	for i, idx := range mesh.Indices {
		if int(idx) >= len(mesh.Vertices) {
			return invalidModel("index %d at %d out of range for %d vertices", idx, i, len(mesh.Vertices))
		}
	}
	if texture.Width == 0 || texture.Height == 0 {
		return invalidModel("texture has zero size %dx%d", texture.Width, texture.Height)
	}
	if want := int(texture.Width) * int(texture.Height) * 4; len(texture.Pixels) != want {
		return invalidModel("texture %dx%d needs %d bytes, got %d", texture.Width, texture.Height, want, len(texture.Pixels))
	}
	return nil
}

//CoreModel is the GPU resource set of one model. Position and Rotation may be changed between
//frames, the matrix is written into the uniform buffer of the slot being recorded.
type CoreModel struct {
	handle      ModelHandle
	vertices    *CoreBuffer
	indices     *CoreBuffer
	index_count uint32
	texture     *CoreImage
	uniforms    []*CoreBuffer
	sets        []vk.DescriptorSet
	arena       *CoreArena

	Position mgl32.Vec3
	Rotation Rotation
}

//newCoreModel uploads the mesh and texture and allocates one uniform buffer and one set 1
//descriptor per frame slot. The descriptors are written here and never again.
func newCoreModel(handle ModelHandle, allocator *CoreAllocator, descriptors *CoreDescriptors, frames int,
	mesh MeshData, texture TextureData) (model *CoreModel, err error) {

	if err := validateModel(mesh, texture); err != nil {
		return nil, err
	}

	device := allocator.device.handle
	model = &CoreModel{
		handle:      handle,
		index_count: uint32(len(mesh.Indices)),
		arena:       NewCoreArena("model"),
	}
	defer func() {
		if err != nil {
			model.arena.Release()
		}
	}()

	if model.vertices, err = allocator.CreateDeviceBuffer(VertexBytes(mesh.Vertices), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)); err != nil {
		return nil, err
	}
	vertices := model.vertices
	model.arena.Defer(func() { vertices.Destroy(device) })

	if model.indices, err = allocator.CreateDeviceBuffer(IndexBytes(mesh.Indices), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)); err != nil {
		return nil, err
	}
	indices := model.indices
	model.arena.Defer(func() { indices.Destroy(device) })

	if model.texture, err = allocator.CreateTexture(texture.Width, texture.Height, texture.Pixels); err != nil {
		return nil, err
	}
	tex := model.texture
	model.arena.Defer(func() { tex.Destroy(device) })

	for i := 0; i < frames; i++ {
		ubo, err := allocator.CreateMappedBuffer(vk.DeviceSize(modelUniformSize), vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit))
		if err != nil {
			return nil, err
		}
		model.uniforms = append(model.uniforms, ubo)
		model.arena.Defer(func() { ubo.Destroy(device) })
	}

	if model.sets, err = descriptors.Allocate(descriptors.model_layout, frames); err != nil {
		return nil, err
	}
	sets := model.sets
	model.arena.Defer(func() { descriptors.Free(sets) })

	for i, set := range model.sets {
		descriptors.BindModel(set, model.uniforms[i], model.texture)
	}

	if err := model.update(0); err != nil {
		return nil, err
	}
	return model, nil
}

func (m *CoreModel) Handle() ModelHandle {
	return m.handle
}

func (m *CoreModel) IndexCount() uint32 {
	return m.index_count
}

func (m *CoreModel) VertexBuffer() *CoreBuffer {
	return m.vertices
}

func (m *CoreModel) IndexBuffer() *CoreBuffer {
	return m.indices
}

//UniformBuffer is the model's uniform buffer for a frame slot
func (m *CoreModel) UniformBuffer(slot int) *CoreBuffer {
	return m.uniforms[slot]
}

//DescriptorSet is the set 1 descriptor bound when drawing in a frame slot
func (m *CoreModel) DescriptorSet(slot int) vk.DescriptorSet {
	return m.sets[slot]
}

func (m *CoreModel) Matrix() mgl32.Mat4 {
	return ModelMatrix(m.Position, m.Rotation)
}

//update writes the current transform into the uniform buffer of slot
func (m *CoreModel) update(slot int) error {
	u := ModelUniforms{Model: m.Matrix()}
	return m.uniforms[slot].Write(u.Bytes())
}

func (m *CoreModel) drawCall(slot int) DrawCall {
	return DrawCall{
		Model:      m.handle,
		Vertex:     m.vertices.Handle(),
		Index:      m.indices.Handle(),
		IndexCount: m.index_count,
		Set:        m.DescriptorSet(slot),
	}
}

//Destroy frees everything the model owns. The caller must have waited for the device first.
func (m *CoreModel) Destroy() {
	m.arena.Release()
}

//modelCollection keeps models in load order, which is also the draw order
type modelCollection struct {
	next   ModelHandle
	models []*CoreModel
}

func (c *modelCollection) reserve() ModelHandle {
	c.next++
	return c.next
}

func (c *modelCollection) add(m *CoreModel) {
	c.models = append(c.models, m)
}

func (c *modelCollection) get(h ModelHandle) (*CoreModel, bool) {
	for _, m := range c.models {
		if m.handle == h {
			return m, true
		}
	}
	return nil, false
}

func (c *modelCollection) remove(h ModelHandle) (*CoreModel, bool) {
	for i, m := range c.models {
		if m.handle == h {
			c.models = append(c.models[:i], c.models[i+1:]...)
			return m, true
		}
	}
	return nil, false
}

func (c *modelCollection) len() int {
	return len(c.models)
}

func (c *modelCollection) all() []*CoreModel {
	return c.models
}
