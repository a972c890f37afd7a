package vkrs

import (
	vk "github.com/vulkan-go/vulkan"
)

//CommandEncoder is the subset of command buffer recording the frame needs
type CommandEncoder interface {
	Begin() error
	BeginRenderPass(render_pass vk.RenderPass, framebuffer vk.Framebuffer, extent vk.Extent2D, clears []vk.ClearValue)
	BindPipeline(pipeline vk.Pipeline)
	BindDescriptorSet(layout vk.PipelineLayout, index uint32, set vk.DescriptorSet)
	BindVertexBuffer(buffer vk.Buffer)
	BindIndexBuffer(buffer vk.Buffer)
	DrawIndexed(count uint32)
	EndRenderPass()
	End() error
}

//DrawCall is everything needed to draw one model for one frame slot
type DrawCall struct {
	Model      ModelHandle
	Vertex     vk.Buffer
	Index      vk.Buffer
	IndexCount uint32
	Set        vk.DescriptorSet
}

//FramePass is the per image state a frame records against
type FramePass struct {
	RenderPass  vk.RenderPass
	Framebuffer vk.Framebuffer
	Extent      vk.Extent2D
	Pipeline    vk.Pipeline
	Layout      vk.PipelineLayout
	Global      vk.DescriptorSet
}

//Color (0,0,0,1) then depth 1.0 stencil 0, matching the attachment order of the render pass
func clearValues() []vk.ClearValue {
	return []vk.ClearValue{
		vk.NewClearValue([]float32{0, 0, 0, 1}),
		vk.NewClearDepthStencil(1, 0),
	}
}

//RecordFrame records the whole frame from scratch. Draws are issued in the given order.
func RecordFrame(enc CommandEncoder, pass FramePass, draws []DrawCall) error {
	if err := enc.Begin(); err != nil {
		return err
	}
	enc.BeginRenderPass(pass.RenderPass, pass.Framebuffer, pass.Extent, clearValues())
	enc.BindPipeline(pass.Pipeline)
	enc.BindDescriptorSet(pass.Layout, GlobalSet, pass.Global)
	for _, draw := range draws {
		enc.BindVertexBuffer(draw.Vertex)
		enc.BindIndexBuffer(draw.Index)
		enc.BindDescriptorSet(pass.Layout, ModelSet, draw.Set)
		enc.DrawIndexed(draw.IndexCount)
	}
	enc.EndRenderPass()
	return enc.End()
}

type vkEncoder struct {
	cmd vk.CommandBuffer
}

func (e vkEncoder) Begin() error {
	return checkResult(vk.BeginCommandBuffer(e.cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}), "begin command buffer")
}

func (e vkEncoder) BeginRenderPass(render_pass vk.RenderPass, framebuffer vk.Framebuffer, extent vk.Extent2D, clears []vk.ClearValue) {
	vk.CmdBeginRenderPass(e.cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  render_pass,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}, vk.SubpassContentsInline)
}

func (e vkEncoder) BindPipeline(pipeline vk.Pipeline) {
	vk.CmdBindPipeline(e.cmd, vk.PipelineBindPointGraphics, pipeline)
}

func (e vkEncoder) BindDescriptorSet(layout vk.PipelineLayout, index uint32, set vk.DescriptorSet) {
	vk.CmdBindDescriptorSets(e.cmd, vk.PipelineBindPointGraphics, layout, index, 1, []vk.DescriptorSet{set}, 0, nil)
}

func (e vkEncoder) BindVertexBuffer(buffer vk.Buffer) {
	vk.CmdBindVertexBuffers(e.cmd, 0, 1, []vk.Buffer{buffer}, []vk.DeviceSize{0})
}

func (e vkEncoder) BindIndexBuffer(buffer vk.Buffer) {
	vk.CmdBindIndexBuffer(e.cmd, buffer, 0, vk.IndexTypeUint32)
}

func (e vkEncoder) DrawIndexed(count uint32) {
	vk.CmdDrawIndexed(e.cmd, count, 1, 0, 0, 0)
}

func (e vkEncoder) EndRenderPass() {
	vk.CmdEndRenderPass(e.cmd)
}

func (e vkEncoder) End() error {
	return checkResult(vk.EndCommandBuffer(e.cmd), "end command buffer")
}
