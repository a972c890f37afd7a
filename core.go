package vkrs

import (
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

//Renderer owns the device context and everything built on it: command pool, descriptors, shaders,
//frame slots, scene uniforms, the current swapchain generation and the loaded models. All methods
//must be called from the thread that drives the frame loop.
type Renderer struct {
	cfg         *Config
	log         *CoreLogger
	display     *CoreDisplay
	device      *CoreDevice
	arena       *CoreArena
	pool        *CorePool
	allocator   *CoreAllocator
	descriptors *CoreDescriptors
	shader      *CoreShader
	swapchain   *CoreSwapchain
	sync        *CoreFrameSync

	slots           []FrameSlot
	global_uniforms []*CoreBuffer
	global_sets     []vk.DescriptorSet
	models          modelCollection

	Camera mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3
}

//NewRenderer creates the whole renderer for window. A nil cfg uses DefaultConfig and a nil log
//discards output. InitLoader must have been called.
func NewRenderer(cfg *Config, window Window, log *CoreLogger) (r *Renderer, err error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = NopLogger()
	}

	r = &Renderer{
		cfg:     cfg,
		log:     log,
		display: NewCoreDisplay(window),
		arena:   NewCoreArena("renderer"),
		Camera:  mgl32.Vec3{2, 2, 2},
		Target:  mgl32.Vec3{0, 0, 0},
		Up:      mgl32.Vec3{0, 1, 0},
	}

	if r.device, err = NewCoreDevice(cfg, r.display, log); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			r.Destroy()
			r = nil
		}
	}()
	log.Infof("selected device %s", r.device)

	handle := r.device.handle
	if r.pool, err = NewCorePool(handle, r.device.families.Graphics, r.device.graphics_queue); err != nil {
		return r, err
	}
	r.arena.Defer(r.pool.Destroy)
	r.allocator = NewCoreAllocator(r.device, r.pool)

	if r.descriptors, err = NewCoreDescriptors(r.device, r.arena, cfg.FramesInFlight, cfg.MaxModels); err != nil {
		return r, err
	}

	if r.shader, err = NewCoreShader(handle, cfg); err != nil {
		return r, err
	}
	r.arena.Defer(r.shader.Destroy)

	if err = r.createFrameSlots(); err != nil {
		return r, err
	}
	if err = r.createGlobals(); err != nil {
		return r, err
	}

	builder := NewPipelineBuilder(r.shader, cfg.frontFace())
	r.swapchain = NewCoreSwapchain(r.device, r.allocator, builder, r.descriptors.Layouts(), cfg.PreferMailbox, log)
	width, height := r.display.Size()
	if err = r.swapchain.Create(width, height); err != nil {
		return r, err
	}

	r.sync = newCoreFrameSync(r, cfg.FramesInFlight)
	return r, nil
}

//Fences start signalled so the first wait on every slot returns at once
func (r *Renderer) createFrameSlots() error {
	handle := r.device.handle
	buffers, err := r.pool.AllocateBuffers(r.cfg.FramesInFlight)
	if err != nil {
		return err
	}
	r.arena.Defer(func() { r.pool.FreeBuffers(buffers) })

	r.slots = make([]FrameSlot, r.cfg.FramesInFlight)
	for i := range r.slots {
		slot := &r.slots[i]
		slot.command_buffer = buffers[i]

		for _, sem := range []*vk.Semaphore{&slot.image_available, &slot.render_finished} {
			ret := vk.CreateSemaphore(handle, &vk.SemaphoreCreateInfo{
				SType: vk.StructureTypeSemaphoreCreateInfo,
			}, nil, sem)
			if err := checkResult(ret, "create semaphore"); err != nil {
				return err
			}
			created := *sem
			r.arena.Defer(func() { vk.DestroySemaphore(handle, created, nil) })
		}

		ret := vk.CreateFence(handle, &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &slot.in_flight)
		if err := checkResult(ret, "create fence"); err != nil {
			return err
		}
		fence := slot.in_flight
		r.arena.Defer(func() { vk.DestroyFence(handle, fence, nil) })
	}
	return nil
}

//One scene uniform buffer and set 0 descriptor per frame slot
func (r *Renderer) createGlobals() error {
	handle := r.device.handle
	for i := 0; i < r.cfg.FramesInFlight; i++ {
		ubo, err := r.allocator.CreateMappedBuffer(vk.DeviceSize(globalUniformSize), vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit))
		if err != nil {
			return err
		}
		r.global_uniforms = append(r.global_uniforms, ubo)
		r.arena.Defer(func() { ubo.Destroy(handle) })
	}

	sets, err := r.descriptors.Allocate(r.descriptors.global_layout, r.cfg.FramesInFlight)
	if err != nil {
		return err
	}
	r.global_sets = sets
	r.arena.Defer(func() { r.descriptors.Free(sets) })

	for i, set := range sets {
		r.descriptors.BindGlobal(set, r.global_uniforms[i])
	}
	return nil
}

//DrawFrame renders and presents one frame. Returned errors are fatal.
func (r *Renderer) DrawFrame() error {
	return r.sync.DrawFrame()
}

//WindowResized must be called with the new framebuffer size on every resize event
func (r *Renderer) WindowResized(width, height int) {
	r.sync.WindowResized(width, height)
}

func (r *Renderer) WaitIdle() error {
	return r.device.WaitIdle()
}

//LoadModel uploads a mesh and its texture. The model is drawn from the next frame on, after every
//model loaded before it.
func (r *Renderer) LoadModel(mesh MeshData, texture TextureData) (ModelHandle, error) {
	if r.models.len() >= r.cfg.MaxModels {
		return 0, capacityError("renderer holds %d models already", r.cfg.MaxModels)
	}
	model, err := newCoreModel(r.models.reserve(), r.allocator, r.descriptors, r.cfg.FramesInFlight, mesh, texture)
	if err != nil {
		return 0, err
	}
	r.models.add(model)
	r.log.Infof("loaded model %d: %d vertices, %d indices, texture %dx%d", model.handle,
		len(mesh.Vertices), len(mesh.Indices), texture.Width, texture.Height)
	return model.handle, nil
}

//Model gives access to the model's Position and Rotation
func (r *Renderer) Model(h ModelHandle) (*CoreModel, bool) {
	return r.models.get(h)
}

//Models lists the loaded handles in draw order
func (r *Renderer) Models() []ModelHandle {
	handles := make([]ModelHandle, 0, r.models.len())
	for _, m := range r.models.all() {
		handles = append(handles, m.handle)
	}
	return handles
}

//UnloadModel waits for the device to go idle before freeing the model's resources
func (r *Renderer) UnloadModel(h ModelHandle) error {
	if _, ok := r.models.get(h); !ok {
		return invalidModel("no model with handle %d", h)
	}
	if err := r.device.WaitIdle(); err != nil {
		return err
	}
	model, _ := r.models.remove(h)
	model.Destroy()
	r.log.Infof("unloaded model %d", h)
	return nil
}

//ReadBuffer copies a device buffer back to the host
func (r *Renderer) ReadBuffer(buf *CoreBuffer) ([]byte, error) {
	return r.allocator.ReadBuffer(buf, buf.Size())
}

func (r *Renderer) Device() *CoreDevice {
	return r.device
}

func (r *Renderer) Swapchain() *CoreSwapchain {
	return r.swapchain
}

func (r *Renderer) FrameSync() *CoreFrameSync {
	return r.sync
}

//Destroy waits for the device and frees models, the swapchain generation, the renderer globals and
//finally the device context
func (r *Renderer) Destroy() {
	if r.device == nil {
		return
	}
	if err := r.device.WaitIdle(); err != nil {
		r.log.Errorf("wait idle on destroy: %v", err)
	}
	for _, m := range r.models.all() {
		m.Destroy()
	}
	r.models.models = nil
	if r.swapchain != nil {
		r.swapchain.Destroy()
	}
	r.arena.Release()
	r.device.Destroy()
	r.device = nil
}

func (r *Renderer) waitFence(slot int) error {
	fences := []vk.Fence{r.slots[slot].in_flight}
	return checkResult(vk.WaitForFences(r.device.handle, 1, fences, vk.True, vk.MaxUint64), "wait for frame fence")
}

func (r *Renderer) acquire(slot int) (uint32, vk.Result) {
	var image uint32
	ret := vk.AcquireNextImage(r.device.handle, r.swapchain.swapchain, vk.MaxUint64,
		r.slots[slot].image_available, vk.NullFence, &image)
	return image, ret
}

func (r *Renderer) reset(slot int) error {
	fences := []vk.Fence{r.slots[slot].in_flight}
	if err := checkResult(vk.ResetFences(r.device.handle, 1, fences), "reset frame fence"); err != nil {
		return err
	}
	return checkResult(vk.ResetCommandBuffer(r.slots[slot].command_buffer, 0), "reset command buffer")
}

func (r *Renderer) prepare(slot int) error {
	extent := r.swapchain.extent
	scene := SceneUniforms(r.cfg, r.Camera, r.Target, r.Up, extent.Width, extent.Height)
	if err := r.global_uniforms[slot].Write(scene.Bytes()); err != nil {
		return err
	}
	for _, m := range r.models.all() {
		if err := m.update(slot); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) record(slot int, image uint32) error {
	sc := r.swapchain
	pass := FramePass{
		RenderPass:  sc.render_pass.Handle(),
		Framebuffer: sc.framebuffers[image],
		Extent:      sc.extent,
		Pipeline:    sc.pipeline.Handle(),
		Layout:      sc.pipeline.Layout(),
		Global:      r.global_sets[slot],
	}
	draws := make([]DrawCall, 0, r.models.len())
	for _, m := range r.models.all() {
		draws = append(draws, m.drawCall(slot))
	}
	return RecordFrame(vkEncoder{cmd: r.slots[slot].command_buffer}, pass, draws)
}

func (r *Renderer) submit(slot int) error {
	s := r.slots[slot]
	ret := vk.QueueSubmit(r.device.graphics_queue, 1, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{s.image_available},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{s.command_buffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{s.render_finished},
	}}, s.in_flight)
	return checkResult(ret, "queue submit")
}

func (r *Renderer) present(slot int, image uint32) vk.Result {
	return vk.QueuePresent(r.device.present_queue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{r.slots[slot].render_finished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{r.swapchain.swapchain},
		PImageIndices:      []uint32{image},
	})
}

//A zero sized framebuffer means the window was minimized between the resize event and now
func (r *Renderer) recreate() error {
	width, height := r.display.Size()
	if width == 0 || height == 0 {
		r.sync.WindowResized(0, 0)
		return nil
	}
	return r.swapchain.Recreate(width, height)
}
