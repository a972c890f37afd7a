package vkrs

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

//GlobalUniforms is the set 0 block, rewritten for the current frame slot every frame
type GlobalUniforms struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

//ModelUniforms is the set 1 block of one model
type ModelUniforms struct {
	Model mgl32.Mat4
}

const (
	globalUniformSize = int(unsafe.Sizeof(GlobalUniforms{}))
	modelUniformSize  = int(unsafe.Sizeof(ModelUniforms{}))
)

func (u *GlobalUniforms) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), globalUniformSize)
}

func (u *ModelUniforms) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), modelUniformSize)
}

//Rotation is a per axis orientation in degrees. The axes are independent.
type Rotation struct {
	Yaw   float32
	Pitch float32
	Roll  float32
}

// vulkanClip converts an OpenGL style projection matrix to Vulkan style.
// Vulkan has a top left clip space with [0, 1] depth range instead of [-1, 1],
// so flip Y and remap z to 0.5z + 0.5w.
var vulkanClip = mgl32.Mat4{
	1, 0, 0, 0,
	0, -1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

//VulkanProjection is a right handed perspective with fov in degrees, corrected for Vulkan clip space
func VulkanProjection(fov, aspect, near, far float32) mgl32.Mat4 {
	return vulkanClip.Mul4(mgl32.Perspective(mgl32.DegToRad(fov), aspect, near, far))
}

func ViewMatrix(camera, target, up mgl32.Vec3) mgl32.Mat4 {
	return mgl32.LookAtV(camera, target, up)
}

//ModelMatrix is translate(position) * Ry(yaw) * Rx(pitch) * Rz(roll)
func ModelMatrix(position mgl32.Vec3, rot Rotation) mgl32.Mat4 {
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(rot.Yaw))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(rot.Pitch))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(rot.Roll)))
}

//SceneUniforms builds the global block for the given camera and framebuffer extent
func SceneUniforms(cfg *Config, camera, target, up mgl32.Vec3, width, height uint32) GlobalUniforms {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return GlobalUniforms{
		Model: mgl32.Ident4(),
		View:  ViewMatrix(camera, target, up),
		Proj:  VulkanProjection(cfg.Fov, aspect, cfg.Near, cfg.Far),
	}
}
