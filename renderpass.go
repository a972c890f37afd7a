package vkrs

import (
	vk "github.com/vulkan-go/vulkan"
)

type CoreRenderPass struct {
	render_pass vk.RenderPass
}

//Color is cleared and stored for present. Depth is cleared and discarded.
func renderPassAttachments(color_format, depth_format vk.Format) []vk.AttachmentDescription {
	return []vk.AttachmentDescription{
		{
			Format:         color_format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		},
		{
			Format:         depth_format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}
}

//Holds color and depth writes of this frame until the previous frame using the attachments is done
func renderPassDependency() vk.SubpassDependency {
	stages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit)
	return vk.SubpassDependency{
		SrcSubpass:    vk.MaxUint32, //VK_SUBPASS_EXTERNAL
		DstSubpass:    0,
		SrcStageMask:  stages,
		DstStageMask:  stages,
		SrcAccessMask: 0,
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}
}

//Creates the single subpass render pass with a color and a depth attachment
func NewCoreRenderPass(device vk.Device, color_format, depth_format vk.Format) (*CoreRenderPass, error) {
	var core CoreRenderPass

	colorReferences := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}
	depthReference := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       colorReferences,
		PDepthStencilAttachment: &depthReference,
	}}

	attachments := renderPassAttachments(color_format, depth_format)
	dependencies := []vk.SubpassDependency{renderPassDependency()}

	ret := vk.CreateRenderPass(device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}, nil, &core.render_pass)
	if err := checkResult(ret, "create render pass"); err != nil {
		return nil, err
	}
	return &core, nil
}

func (c *CoreRenderPass) Handle() vk.RenderPass {
	return c.render_pass
}

func (c *CoreRenderPass) Destroy(device vk.Device) {
	vk.DestroyRenderPass(device, c.render_pass, nil)
}
