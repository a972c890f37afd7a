package vkrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestRenderPassAttachments(t *testing.T) {
	a := renderPassAttachments(vk.FormatB8g8r8a8Srgb, vk.FormatD32Sfloat)
	assert.Len(t, a, 2)

	color := a[0]
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, color.Format)
	assert.Equal(t, vk.AttachmentLoadOpClear, color.LoadOp)
	assert.Equal(t, vk.AttachmentStoreOpStore, color.StoreOp)
	assert.Equal(t, vk.ImageLayoutPresentSrc, color.FinalLayout)

	depth := a[1]
	assert.Equal(t, vk.FormatD32Sfloat, depth.Format)
	assert.Equal(t, vk.AttachmentLoadOpClear, depth.LoadOp)
	assert.Equal(t, vk.AttachmentStoreOpDontCare, depth.StoreOp)
	assert.Equal(t, vk.ImageLayoutDepthStencilAttachmentOptimal, depth.FinalLayout)
}

func TestRenderPassDependency(t *testing.T) {
	d := renderPassDependency()
	assert.Equal(t, uint32(vk.MaxUint32), d.SrcSubpass)
	assert.Equal(t, uint32(0), d.DstSubpass)
	writes := vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit)
	assert.Equal(t, writes, d.DstAccessMask)
	assert.NotZero(t, d.DstStageMask&vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit))
	assert.NotZero(t, d.SrcStageMask&vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit))
}
