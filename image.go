package vkrs

import (
	vk "github.com/vulkan-go/vulkan"
)

//Depth formats in order of preference
var depthFormatCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

//CoreImage is an image, its memory and a single view over it
type CoreImage struct {
	image  vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
	format vk.Format
	width  uint32
	height uint32
}

func (c *CoreImage) View() vk.ImageView {
	return c.view
}

//Destroy releases view, image and memory in that order
func (c *CoreImage) Destroy(device vk.Device) {
	if c.view != vk.NullImageView {
		vk.DestroyImageView(device, c.view, nil)
		c.view = vk.NullImageView
	}
	vk.DestroyImage(device, c.image, nil)
	vk.FreeMemory(device, c.memory, nil)
}

func pickDepthFormat(candidates []vk.Format, optimal func(vk.Format) vk.FormatFeatureFlags) (vk.Format, bool) {
	want := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, format := range candidates {
		if optimal(format)&want == want {
			return format, true
		}
	}
	return vk.FormatUndefined, false
}

func hasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

//Aspect mask for barriers on an image of this format moving into layout
func aspectMask(format vk.Format, layout vk.ImageLayout) vk.ImageAspectFlags {
	if layout == vk.ImageLayoutDepthStencilAttachmentOptimal {
		aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if hasStencilComponent(format) {
			aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
		return aspect
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

//Access masks and stages of one supported layout transition
type transitionMasks struct {
	src_access vk.AccessFlags
	dst_access vk.AccessFlags
	src_stage  vk.PipelineStageFlags
	dst_stage  vk.PipelineStageFlags
}

//layoutTransition knows the three transitions the renderer performs. Anything else is a programming
//error and is reported as a fatal configuration error rather than guessed at.
func layoutTransition(old_layout, new_layout vk.ImageLayout) (transitionMasks, error) {
	switch {
	case old_layout == vk.ImageLayoutUndefined && new_layout == vk.ImageLayoutTransferDstOptimal:
		return transitionMasks{
			src_access: 0,
			dst_access: vk.AccessFlags(vk.AccessTransferWriteBit),
			src_stage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dst_stage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}, nil
	case old_layout == vk.ImageLayoutTransferDstOptimal && new_layout == vk.ImageLayoutShaderReadOnlyOptimal:
		return transitionMasks{
			src_access: vk.AccessFlags(vk.AccessTransferWriteBit),
			dst_access: vk.AccessFlags(vk.AccessShaderReadBit),
			src_stage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			dst_stage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}, nil
	case old_layout == vk.ImageLayoutUndefined && new_layout == vk.ImageLayoutDepthStencilAttachmentOptimal:
		return transitionMasks{
			src_access: 0,
			dst_access: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
			src_stage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dst_stage:  vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
		}, nil
	}
	return transitionMasks{}, configError("unsupported image layout transition %d -> %d", old_layout, new_layout)
}

func createImageView(device vk.Device, image vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if err := checkResult(ret, "create image view"); err != nil {
		return vk.NullImageView, err
	}
	return view, nil
}

//CreateImage creates a single mip 2D image with bound memory and a view over aspect
func (a *CoreAllocator) CreateImage(width, height uint32, format vk.Format, tiling vk.ImageTiling,
	usage vk.ImageUsageFlags, props vk.MemoryPropertyFlags, aspect vk.ImageAspectFlags) (*CoreImage, error) {

	device := a.device.handle
	core := CoreImage{format: format, width: width, height: height, view: vk.NullImageView}

	ret := vk.CreateImage(device, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        tiling,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &core.image)
	if err := checkResult(ret, "create image"); err != nil {
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, core.image, &reqs)
	reqs.Deref()

	memory, err := a.allocate(reqs, props)
	if err != nil {
		vk.DestroyImage(device, core.image, nil)
		return nil, err
	}
	core.memory = memory

	if err := checkResult(vk.BindImageMemory(device, core.image, core.memory, 0), "bind image memory"); err != nil {
		core.Destroy(device)
		return nil, err
	}

	core.view, err = createImageView(device, core.image, format, aspect)
	if err != nil {
		core.Destroy(device)
		return nil, err
	}
	return &core, nil
}

//TransitionImageLayout records and waits on a single image memory barrier
func (a *CoreAllocator) TransitionImageLayout(img *CoreImage, old_layout, new_layout vk.ImageLayout) error {
	masks, err := layoutTransition(old_layout, new_layout)
	if err != nil {
		return err
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       masks.src_access,
		DstAccessMask:       masks.dst_access,
		OldLayout:           old_layout,
		NewLayout:           new_layout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspectMask(img.format, new_layout),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	return a.pool.OneShot(func(cmd vk.CommandBuffer) {
		vk.CmdPipelineBarrier(cmd, masks.src_stage, masks.dst_stage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	})
}

func (a *CoreAllocator) CopyBufferToImage(src *CoreBuffer, img *CoreImage) error {
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: img.width, Height: img.height, Depth: 1},
	}
	return a.pool.OneShot(func(cmd vk.CommandBuffer) {
		vk.CmdCopyBufferToImage(cmd, src.buffer, img.image, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
	})
}

//CreateTexture uploads tightly packed RGBA8 pixels into a sampled sRGB image:
//UNDEFINED -> TRANSFER_DST, staged copy, TRANSFER_DST -> SHADER_READ_ONLY
func (a *CoreAllocator) CreateTexture(width, height uint32, pixels []byte) (*CoreImage, error) {
	stage, err := a.staging(pixels)
	if err != nil {
		return nil, err
	}
	defer stage.Destroy(a.device.handle)

	img, err := a.CreateImage(width, height, vk.FormatR8g8b8a8Srgb, vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit), deviceLocal,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	if err := a.TransitionImageLayout(img, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		img.Destroy(a.device.handle)
		return nil, err
	}
	if err := a.CopyBufferToImage(stage, img); err != nil {
		img.Destroy(a.device.handle)
		return nil, err
	}
	if err := a.TransitionImageLayout(img, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		img.Destroy(a.device.handle)
		return nil, err
	}
	return img, nil
}

//CreateDepthImage creates the depth attachment for one swapchain generation
func (a *CoreAllocator) CreateDepthImage(extent vk.Extent2D) (*CoreImage, error) {
	format := a.device.depth_format
	img, err := a.CreateImage(extent.Width, extent.Height, format, vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit), deviceLocal,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return nil, err
	}
	if err := a.TransitionImageLayout(img, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal); err != nil {
		img.Destroy(a.device.handle)
		return nil, err
	}
	return img, nil
}
