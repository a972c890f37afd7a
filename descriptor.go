package vkrs

import (
	vk "github.com/vulkan-go/vulkan"
)

//Descriptor set numbers as the shaders declare them
const (
	GlobalSet = 0
	ModelSet  = 1
)

//CoreDescriptors owns the two set layouts, the shared pool and the texture sampler shared by every model
type CoreDescriptors struct {
	device        vk.Device
	global_layout vk.DescriptorSetLayout
	model_layout  vk.DescriptorSetLayout
	pool          vk.DescriptorPool
	sampler       vk.Sampler
}

//Pool capacity: one global set per frame slot plus one set per model per frame slot
type poolCapacity struct {
	max_sets uint32
	uniforms uint32
	samplers uint32
}

func descriptorCapacity(frames, max_models int) poolCapacity {
	return poolCapacity{
		max_sets: uint32((1 + max_models) * frames),
		uniforms: uint32((1 + max_models) * frames),
		samplers: uint32(max_models * frames),
	}
}

func globalLayoutBindings() []vk.DescriptorSetLayoutBinding {
	return []vk.DescriptorSetLayoutBinding{{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}}
}

func modelLayoutBindings() []vk.DescriptorSetLayoutBinding {
	return []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}
}

func createSetLayout(device vk.Device, bindings []vk.DescriptorSetLayoutBinding) (vk.DescriptorSetLayout, error) {
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}, nil, &layout)
	return layout, checkResult(ret, "create descriptor set layout")
}

//NewCoreDescriptors registers every object it creates with arena
func NewCoreDescriptors(device *CoreDevice, arena *CoreArena, frames, max_models int) (*CoreDescriptors, error) {
	handle := device.handle
	core := CoreDescriptors{device: handle}
	var err error

	if core.global_layout, err = createSetLayout(handle, globalLayoutBindings()); err != nil {
		return nil, err
	}
	arena.Defer(func() { vk.DestroyDescriptorSetLayout(handle, core.global_layout, nil) })

	if core.model_layout, err = createSetLayout(handle, modelLayoutBindings()); err != nil {
		return nil, err
	}
	arena.Defer(func() { vk.DestroyDescriptorSetLayout(handle, core.model_layout, nil) })

	capacity := descriptorCapacity(frames, max_models)
	ret := vk.CreateDescriptorPool(handle, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       capacity.max_sets,
		PoolSizeCount: 2,
		PPoolSizes: []vk.DescriptorPoolSize{
			{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: capacity.uniforms},
			{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: capacity.samplers},
		},
	}, nil, &core.pool)
	if err := checkResult(ret, "create descriptor pool"); err != nil {
		return nil, err
	}
	arena.Defer(func() { vk.DestroyDescriptorPool(handle, core.pool, nil) })

	ret = vk.CreateSampler(handle, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           device.max_anisotropy,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		MipLodBias:              0,
		MinLod:                  0,
		MaxLod:                  0,
	}, nil, &core.sampler)
	if err := checkResult(ret, "create texture sampler"); err != nil {
		return nil, err
	}
	arena.Defer(func() { vk.DestroySampler(handle, core.sampler, nil) })

	return &core, nil
}

func (d *CoreDescriptors) Layouts() []vk.DescriptorSetLayout {
	return []vk.DescriptorSetLayout{d.global_layout, d.model_layout}
}

//Allocate takes count sets of layout from the pool. A pool that has run dry is reported as a capacity error.
func (d *CoreDescriptors) Allocate(layout vk.DescriptorSetLayout, count int) ([]vk.DescriptorSet, error) {
	sets := make([]vk.DescriptorSet, count)
	for i := range sets {
		ret := vk.AllocateDescriptorSets(d.device, &vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     d.pool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{layout},
		}, &sets[i])
		if ret == vk.ErrorOutOfPoolMemory || ret == vk.ErrorFragmentedPool {
			d.Free(sets[:i])
			return nil, capacityError("descriptor pool exhausted after %d sets", i)
		}
		if err := checkResult(ret, "allocate descriptor set"); err != nil {
			d.Free(sets[:i])
			return nil, err
		}
	}
	return sets, nil
}

func (d *CoreDescriptors) Free(sets []vk.DescriptorSet) {
	if len(sets) > 0 {
		vk.FreeDescriptorSets(d.device, d.pool, uint32(len(sets)), &sets[0])
	}
}

func uniformWrite(set vk.DescriptorSet, binding uint32, buf *CoreBuffer) vk.WriteDescriptorSet {
	return vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: buf.Handle(),
			Offset: 0,
			Range:  buf.size,
		}},
	}
}

func (d *CoreDescriptors) samplerWrite(set vk.DescriptorSet, binding uint32, view vk.ImageView) vk.WriteDescriptorSet {
	return vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     d.sampler,
			ImageView:   view,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}},
	}
}

//BindGlobal points a set 0 descriptor at a scene uniform buffer
func (d *CoreDescriptors) BindGlobal(set vk.DescriptorSet, ubo *CoreBuffer) {
	writes := []vk.WriteDescriptorSet{uniformWrite(set, 0, ubo)}
	vk.UpdateDescriptorSets(d.device, uint32(len(writes)), writes, 0, nil)
}

//BindModel points a set 1 descriptor at a model uniform buffer and its texture. Written once at load.
func (d *CoreDescriptors) BindModel(set vk.DescriptorSet, ubo *CoreBuffer, texture *CoreImage) {
	writes := []vk.WriteDescriptorSet{
		uniformWrite(set, 0, ubo),
		d.samplerWrite(set, 1, texture.View()),
	}
	vk.UpdateDescriptorSets(d.device, uint32(len(writes)), writes, 0, nil)
}
