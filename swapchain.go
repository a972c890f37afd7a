package vkrs

import (
	"fmt"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

//SwapchainSupport is what a surface reports for one adapter, already dereferenced
type SwapchainSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

//surfaceQuery is the set of per adapter surface queries. vkSurfaceQuery asks the driver, tests fake it.
type surfaceQuery interface {
	capabilities(caps *vk.SurfaceCapabilities) vk.Result
	formats(count *uint32, formats []vk.SurfaceFormat) vk.Result
	presentModes(count *uint32, modes []vk.PresentMode) vk.Result
	supported(family uint32, supported *vk.Bool32) vk.Result
}

type vkSurfaceQuery struct {
	gpu     vk.PhysicalDevice
	surface vk.Surface
}

func (q vkSurfaceQuery) capabilities(caps *vk.SurfaceCapabilities) vk.Result {
	return vk.GetPhysicalDeviceSurfaceCapabilities(q.gpu, q.surface, caps)
}

func (q vkSurfaceQuery) formats(count *uint32, formats []vk.SurfaceFormat) vk.Result {
	return vk.GetPhysicalDeviceSurfaceFormats(q.gpu, q.surface, count, formats)
}

func (q vkSurfaceQuery) presentModes(count *uint32, modes []vk.PresentMode) vk.Result {
	return vk.GetPhysicalDeviceSurfacePresentModes(q.gpu, q.surface, count, modes)
}

func (q vkSurfaceQuery) supported(family uint32, supported *vk.Bool32) vk.Result {
	return vk.GetPhysicalDeviceSurfaceSupport(q.gpu, family, q.surface, supported)
}

//querySwapchainSupport fails with the driver's result instead of handing back zeroed capabilities
func querySwapchainSupport(q surfaceQuery) (SwapchainSupport, error) {
	var support SwapchainSupport

	if err := checkResult(q.capabilities(&support.Capabilities), "get surface capabilities"); err != nil {
		return SwapchainSupport{}, err
	}
	support.Capabilities.Deref()
	support.Capabilities.CurrentExtent.Deref()
	support.Capabilities.MinImageExtent.Deref()
	support.Capabilities.MaxImageExtent.Deref()

	var format_count uint32
	if err := checkResult(q.formats(&format_count, nil), "get surface formats"); err != nil {
		return SwapchainSupport{}, err
	}
	support.Formats = make([]vk.SurfaceFormat, format_count)
	if err := checkResult(q.formats(&format_count, support.Formats), "get surface formats"); err != nil {
		return SwapchainSupport{}, err
	}
	support.Formats = support.Formats[:format_count]
	for i := range support.Formats {
		support.Formats[i].Deref()
	}

	var mode_count uint32
	if err := checkResult(q.presentModes(&mode_count, nil), "get surface present modes"); err != nil {
		return SwapchainSupport{}, err
	}
	support.PresentModes = make([]vk.PresentMode, mode_count)
	if err := checkResult(q.presentModes(&mode_count, support.PresentModes), "get surface present modes"); err != nil {
		return SwapchainSupport{}, err
	}
	support.PresentModes = support.PresentModes[:mode_count]

	return support, nil
}

//presentSupport asks every queue family whether it can present to the surface
func presentSupport(q surfaceQuery, families int) ([]bool, error) {
	present := make([]bool, families)
	for index := range present {
		var supported vk.Bool32
		if err := checkResult(q.supported(uint32(index), &supported), "get surface support"); err != nil {
			return nil, err
		}
		present[index] = supported.B()
	}
	return present, nil
}

//ChooseSurfaceFormat prefers 8 bit sRGB BGRA with a non linear color space, else the first reported
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	if len(formats) == 0 {
		return vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	}
	return formats[0]
}

//ChoosePresentMode takes mailbox when asked for and offered. FIFO is always supported.
func ChoosePresentMode(modes []vk.PresentMode, prefer_mailbox bool) vk.PresentMode {
	if prefer_mailbox {
		for _, m := range modes {
			if m == vk.PresentModeMailbox {
				return m
			}
		}
	}
	return vk.PresentModeFifo
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

//ChooseExtent uses the surface extent when the surface defines one, otherwise clamps the requested size
func ChooseExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampUint32(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampUint32(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

//ChooseImageCount asks for one more than the minimum. A maximum of 0 means unbounded.
func ChooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func chooseCompositeAlpha(supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	for _, flag := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if supported&vk.CompositeAlphaFlags(flag) != 0 {
			return flag
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

//CoreSwapchain is one generation of swapchain state: images, views, render pass, pipeline, depth
//buffer and framebuffers. A generation is never patched, Recreate tears all of it down and builds
//the next one.
type CoreSwapchain struct {
	device         *CoreDevice
	allocator      *CoreAllocator
	builder        *PipelineBuilder
	layouts        []vk.DescriptorSetLayout
	prefer_mailbox bool
	log            *CoreLogger
	arena          *CoreArena
	generation     int

	swapchain    vk.Swapchain
	format       vk.SurfaceFormat
	present_mode vk.PresentMode
	extent       vk.Extent2D
	images       []vk.Image
	image_views  []vk.ImageView
	render_pass  *CoreRenderPass
	pipeline     *CorePipeline
	depth        *CoreImage
	framebuffers []vk.Framebuffer
}

func NewCoreSwapchain(device *CoreDevice, allocator *CoreAllocator, builder *PipelineBuilder,
	layouts []vk.DescriptorSetLayout, prefer_mailbox bool, log *CoreLogger) *CoreSwapchain {
	return &CoreSwapchain{
		device:         device,
		allocator:      allocator,
		builder:        builder,
		layouts:        layouts,
		prefer_mailbox: prefer_mailbox,
		log:            log,
		arena:          NewCoreArena("swapchain"),
		swapchain:      vk.NullSwapchain,
	}
}

//Create builds a full generation for a framebuffer of width x height. On failure whatever was
//already built is released again.
func (core *CoreSwapchain) Create(width, height uint32) (err error) {
	defer func() {
		if err != nil {
			core.arena.Release()
		}
	}()

	handle := core.device.Handle()
	support, err := querySwapchainSupport(vkSurfaceQuery{core.device.gpu, core.device.display.Surface()})
	if err != nil {
		return err
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return configError("surface reports no formats or present modes")
	}
	caps := support.Capabilities

	core.format = ChooseSurfaceFormat(support.Formats)
	core.present_mode = ChoosePresentMode(support.PresentModes, core.prefer_mailbox)
	core.extent = ChooseExtent(caps, width, height)
	image_count := ChooseImageCount(caps)

	pre_transform := caps.CurrentTransform
	if vk.SurfaceTransformFlagBits(caps.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		pre_transform = vk.SurfaceTransformIdentityBit
	}

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          core.device.display.Surface(),
		MinImageCount:    image_count,
		ImageFormat:      core.format.Format,
		ImageColorSpace:  core.format.ColorSpace,
		ImageExtent:      core.extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     pre_transform,
		CompositeAlpha:   chooseCompositeAlpha(caps.SupportedCompositeAlpha),
		PresentMode:      core.present_mode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if families := core.device.families; !families.Shared() {
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = families.Unique()
	}

	var swapchain vk.Swapchain
	if err := checkResult(vk.CreateSwapchain(handle, &info, nil, &swapchain), "create swapchain"); err != nil {
		return err
	}
	core.swapchain = swapchain
	core.arena.Defer(func() {
		vk.DestroySwapchain(handle, swapchain, nil)
		core.swapchain = vk.NullSwapchain
	})

	var count uint32
	if err := checkResult(vk.GetSwapchainImages(handle, swapchain, &count, nil), "get swapchain images"); err != nil {
		return err
	}
	core.images = make([]vk.Image, count)
	if err := checkResult(vk.GetSwapchainImages(handle, swapchain, &count, core.images), "get swapchain images"); err != nil {
		return err
	}

	core.image_views = make([]vk.ImageView, 0, count)
	for _, image := range core.images {
		view, err := createImageView(handle, image, core.format.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return err
		}
		core.image_views = append(core.image_views, view)
		core.arena.Defer(func() { vk.DestroyImageView(handle, view, nil) })
	}

	render_pass, err := NewCoreRenderPass(handle, core.format.Format, core.device.DepthFormat())
	if err != nil {
		return err
	}
	core.render_pass = render_pass
	core.arena.Defer(func() { render_pass.Destroy(handle) })

	pipeline, err := core.builder.Build(handle, core.extent, render_pass.Handle(), core.layouts)
	if err != nil {
		return err
	}
	core.pipeline = pipeline
	core.arena.Defer(func() { pipeline.Destroy(handle) })

	depth, err := core.allocator.CreateDepthImage(core.extent)
	if err != nil {
		return err
	}
	core.depth = depth
	core.arena.Defer(func() { depth.Destroy(handle) })

	core.framebuffers = make([]vk.Framebuffer, 0, count)
	for _, view := range core.image_views {
		attachments := []vk.ImageView{view, depth.View()}
		var framebuffer vk.Framebuffer
		ret := vk.CreateFramebuffer(handle, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      render_pass.Handle(),
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           core.extent.Width,
			Height:          core.extent.Height,
			Layers:          1,
		}, nil, &framebuffer)
		if err := checkResult(ret, "create framebuffer"); err != nil {
			return err
		}
		core.framebuffers = append(core.framebuffers, framebuffer)
		core.arena.Defer(func() { vk.DestroyFramebuffer(handle, framebuffer, nil) })
	}

	if err := core.consistent(); err != nil {
		return err
	}
	core.generation++
	core.log.Infof("swapchain generation %d: %s", core.generation, core)
	return nil
}

//Recreate waits for the device to go idle, releases the current generation in reverse creation
//order and builds the next one. Failure here is not recoverable.
func (core *CoreSwapchain) Recreate(width, height uint32) error {
	if err := core.device.WaitIdle(); err != nil {
		return err
	}
	core.arena.Release()
	return core.Create(width, height)
}

func (core *CoreSwapchain) Destroy() {
	core.arena.Release()
}

func (core *CoreSwapchain) ImageCount() int {
	return len(core.images)
}

func (core *CoreSwapchain) Extent() vk.Extent2D {
	return core.extent
}

func (core *CoreSwapchain) Generation() int {
	return core.generation
}

//Counts reports the per image arrays of the current generation
func (core *CoreSwapchain) Counts() (images, views, framebuffers int) {
	return len(core.images), len(core.image_views), len(core.framebuffers)
}

//Every per image array has the same length
func (core *CoreSwapchain) consistent() error {
	images, views, framebuffers := core.Counts()
	if images != views || images != framebuffers {
		return errors.Mark(errors.Newf("swapchain has %d images, %d views and %d framebuffers", images, views, framebuffers), ErrDevice)
	}
	return nil
}

func (core *CoreSwapchain) String() string {
	return fmt.Sprintf("%dx%d, %d images, format %d, present mode %d", core.extent.Width, core.extent.Height,
		len(core.images), core.format.Format, core.present_mode)
}
