package vkrs

import (
	vk "github.com/vulkan-go/vulkan"
)

//CorePool owns the graphics command pool. Frame command buffers come from here, and so do the
//one shot buffers used for load time transfers.
type CorePool struct {
	device vk.Device
	queue  vk.Queue
	pool   vk.CommandPool
}

func NewCorePool(device vk.Device, family_index uint32, queue vk.Queue) (*CorePool, error) {
	core := CorePool{device: device, queue: queue}

	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family_index,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &core.pool)
	if err := checkResult(ret, "create command pool"); err != nil {
		return nil, err
	}
	return &core, nil
}

func (c *CorePool) AllocateBuffers(count int) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, count)
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}, buffers)
	if err := checkResult(ret, "allocate command buffers"); err != nil {
		return nil, err
	}
	return buffers, nil
}

func (c *CorePool) FreeBuffers(buffers []vk.CommandBuffer) {
	if len(buffers) > 0 {
		vk.FreeCommandBuffers(c.device, c.pool, uint32(len(buffers)), buffers)
	}
}

//OneShot records fn into a fresh command buffer, submits it and blocks on queue idle before freeing it.
//Only used at load time so throughput does not matter.
func (c *CorePool) OneShot(fn func(cmd vk.CommandBuffer)) error {
	buffers, err := c.AllocateBuffers(1)
	if err != nil {
		return err
	}
	defer c.FreeBuffers(buffers)
	cmd := buffers[0]

	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := checkResult(ret, "begin one shot command buffer"); err != nil {
		return err
	}

	fn(cmd)

	if err := checkResult(vk.EndCommandBuffer(cmd), "end one shot command buffer"); err != nil {
		return err
	}

	ret = vk.QueueSubmit(c.queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    buffers,
	}}, vk.NullFence)
	if err := checkResult(ret, "submit one shot command buffer"); err != nil {
		return err
	}
	return checkResult(vk.QueueWaitIdle(c.queue), "wait for one shot command buffer")
}

func (c *CorePool) Destroy() {
	vk.DestroyCommandPool(c.device, c.pool, nil)
}
