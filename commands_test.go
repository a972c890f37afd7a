package vkrs

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

//recordingEncoder logs every command as text
type recordingEncoder struct {
	ops       []string
	clears    int
	begin_err error
}

func (e *recordingEncoder) Begin() error {
	e.ops = append(e.ops, "begin")
	return e.begin_err
}

func (e *recordingEncoder) BeginRenderPass(_ vk.RenderPass, _ vk.Framebuffer, extent vk.Extent2D, clears []vk.ClearValue) {
	e.clears = len(clears)
	e.ops = append(e.ops, fmt.Sprintf("pass %dx%d", extent.Width, extent.Height))
}

func (e *recordingEncoder) BindPipeline(vk.Pipeline) {
	e.ops = append(e.ops, "pipeline")
}

func (e *recordingEncoder) BindDescriptorSet(_ vk.PipelineLayout, index uint32, _ vk.DescriptorSet) {
	e.ops = append(e.ops, fmt.Sprintf("set %d", index))
}

func (e *recordingEncoder) BindVertexBuffer(vk.Buffer) {
	e.ops = append(e.ops, "vertex")
}

func (e *recordingEncoder) BindIndexBuffer(vk.Buffer) {
	e.ops = append(e.ops, "index")
}

func (e *recordingEncoder) DrawIndexed(count uint32) {
	e.ops = append(e.ops, fmt.Sprintf("draw %d", count))
}

func (e *recordingEncoder) EndRenderPass() {
	e.ops = append(e.ops, "end pass")
}

func (e *recordingEncoder) End() error {
	e.ops = append(e.ops, "end")
	return nil
}

func TestRecordFrameOrder(t *testing.T) {
	enc := &recordingEncoder{}
	pass := FramePass{Extent: vk.Extent2D{Width: 640, Height: 480}}
	draws := []DrawCall{{Model: 1, IndexCount: 36}, {Model: 2, IndexCount: 6}}

	require.NoError(t, RecordFrame(enc, pass, draws))
	assert.Equal(t, []string{
		"begin", "pass 640x480", "pipeline", "set 0",
		"vertex", "index", "set 1", "draw 36",
		"vertex", "index", "set 1", "draw 6",
		"end pass", "end",
	}, enc.ops)
	assert.Equal(t, 2, enc.clears)
}

func TestRecordFrameNoModels(t *testing.T) {
	enc := &recordingEncoder{}
	require.NoError(t, RecordFrame(enc, FramePass{}, nil))
	assert.Equal(t, []string{"begin", "pass 0x0", "pipeline", "set 0", "end pass", "end"}, enc.ops)
}

func TestRecordFrameBeginFails(t *testing.T) {
	enc := &recordingEncoder{begin_err: checkResult(vk.ErrorOutOfDeviceMemory, "begin")}
	err := RecordFrame(enc, FramePass{}, nil)
	assert.True(t, errors.Is(err, ErrDevice))
	assert.Equal(t, []string{"begin"}, enc.ops)
}

func TestClearValues(t *testing.T) {
	assert.Equal(t, []vk.ClearValue{
		vk.NewClearValue([]float32{0, 0, 0, 1}),
		vk.NewClearDepthStencil(1, 0),
	}, clearValues())
}
