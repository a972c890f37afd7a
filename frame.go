package vkrs

import (
	"sync/atomic"

	vk "github.com/vulkan-go/vulkan"
)

//FrameState is where a frame slot is in its cycle
type FrameState int

const (
	FrameIdle FrameState = iota
	FrameAcquiring
	FrameRecording
	FrameSubmitted
	FramePresenting
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameAcquiring:
		return "acquiring"
	case FrameRecording:
		return "recording"
	case FrameSubmitted:
		return "submitted"
	case FramePresenting:
		return "presenting"
	}
	return "unknown"
}

//FrameSlot is one in flight frame: its semaphores, fence and command buffer
type FrameSlot struct {
	image_available vk.Semaphore
	render_finished vk.Semaphore
	in_flight       vk.Fence
	command_buffer  vk.CommandBuffer
}

//frameBackend is the GPU side of a frame. The renderer implements it, tests fake it.
type frameBackend interface {
	//Block until the slot's previous submission retired
	waitFence(slot int) error
	//Acquire the next image, signalling the slot's image available semaphore
	acquire(slot int) (uint32, vk.Result)
	//Reset the slot's fence and command buffer
	reset(slot int) error
	//Write this slot's uniform buffers
	prepare(slot int) error
	record(slot int, image uint32) error
	submit(slot int) error
	present(slot int, image uint32) vk.Result
	//Rebuild the swapchain for the current window size
	recreate() error
}

//CoreFrameSync drives the frame slots round robin and decides when the swapchain is rebuilt
type CoreFrameSync struct {
	backend   frameBackend
	slots     int
	current   int
	states    []FrameState
	resized   atomic.Bool
	minimized atomic.Bool
	frames    uint64

	//OnTransition is called for every state change of a slot
	OnTransition func(slot int, from, to FrameState)
}

func newCoreFrameSync(backend frameBackend, slots int) *CoreFrameSync {
	return &CoreFrameSync{
		backend: backend,
		slots:   slots,
		states:  make([]FrameState, slots),
	}
}

func (f *CoreFrameSync) set(slot int, state FrameState) {
	from := f.states[slot]
	f.states[slot] = state
	if f.OnTransition != nil {
		f.OnTransition(slot, from, state)
	}
}

//fail returns a slot to Idle before handing back a fatal error, so every cycle a watcher sees ends in Idle
func (f *CoreFrameSync) fail(slot int, err error) error {
	if f.states[slot] != FrameIdle {
		f.set(slot, FrameIdle)
	}
	return err
}

//DrawFrame runs one slot through its cycle. An out of date acquire rebuilds the swapchain and
//keeps the slot for the next call. A stale present or a pending resize rebuilds after presenting.
//Any other failure is returned and is fatal.
func (f *CoreFrameSync) DrawFrame() error {
	if f.minimized.Load() {
		return nil
	}
	slot := f.current

	f.set(slot, FrameAcquiring)
	if err := f.backend.waitFence(slot); err != nil {
		return f.fail(slot, err)
	}

	image, ret := f.backend.acquire(slot)
	if ret == vk.ErrorOutOfDate {
		f.set(slot, FrameIdle)
		return f.backend.recreate()
	}
	if ret != vk.Suboptimal {
		if err := checkResult(ret, "acquire next image"); err != nil {
			return f.fail(slot, err)
		}
	}

	f.set(slot, FrameRecording)
	if err := f.backend.reset(slot); err != nil {
		return f.fail(slot, err)
	}
	if err := f.backend.prepare(slot); err != nil {
		return f.fail(slot, err)
	}
	if err := f.backend.record(slot, image); err != nil {
		return f.fail(slot, err)
	}

	f.set(slot, FrameSubmitted)
	if err := f.backend.submit(slot); err != nil {
		return f.fail(slot, err)
	}

	f.set(slot, FramePresenting)
	ret = f.backend.present(slot, image)

	f.current = (f.current + 1) % f.slots
	f.frames++
	f.set(slot, FrameIdle)

	//A pending resize never hides a present failure
	if ret != vk.Success && !isStale(ret) {
		return checkResult(ret, "queue present")
	}
	if isStale(ret) || f.resized.Load() {
		f.resized.Store(false)
		return f.backend.recreate()
	}
	return nil
}

//WindowResized marks the swapchain stale. A zero dimension suspends drawing until a non zero size arrives.
func (f *CoreFrameSync) WindowResized(width, height int) {
	if width == 0 || height == 0 {
		f.minimized.Store(true)
		return
	}
	f.minimized.Store(false)
	f.resized.Store(true)
}

func (f *CoreFrameSync) Current() int {
	return f.current
}

func (f *CoreFrameSync) Frames() uint64 {
	return f.frames
}

func (f *CoreFrameSync) Minimized() bool {
	return f.minimized.Load()
}

func (f *CoreFrameSync) State(slot int) FrameState {
	return f.states[slot]
}
