//Package camera is a free fly camera for the viewer. Angles are in degrees.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MoveSpeed        = 6.0  //units per second
	MouseSensitivity = 0.1  //degrees per pixel
	TurnSpeed        = 20.0 //degrees per second
	MaxPitch         = 89.0
)

type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
)

var worldUp = mgl32.Vec3{0, 1, 0}

type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	start_position mgl32.Vec3
	start_yaw      float32
	start_pitch    float32
}

//New places a camera at position looking at target
func New(position, target mgl32.Vec3) *Camera {
	c := &Camera{Position: position}
	dir := target.Sub(position)
	if dir.Len() > 0 {
		dir = dir.Normalize()
		c.Yaw = mgl32.RadToDeg(float32(math.Atan2(float64(dir.Z()), float64(dir.X()))))
		c.Pitch = mgl32.RadToDeg(float32(math.Asin(float64(dir.Y()))))
	}
	c.clampPitch()
	c.start_position, c.start_yaw, c.start_pitch = c.Position, c.Yaw, c.Pitch
	return c
}

//Front is the unit look direction
func (c *Camera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

func (c *Camera) right() mgl32.Vec3 {
	return c.Front().Cross(worldUp).Normalize()
}

//Target is one unit ahead of the camera, what the view matrix looks at
func (c *Camera) Target() mgl32.Vec3 {
	return c.Position.Add(c.Front())
}

func (c *Camera) Up() mgl32.Vec3 {
	return worldUp
}

//Move translates the camera relative to where it looks for dt seconds
func (c *Camera) Move(dir Direction, dt float32) {
	step := MoveSpeed * dt
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.Front().Mul(step))
	case Backward:
		c.Position = c.Position.Sub(c.Front().Mul(step))
	case Left:
		c.Position = c.Position.Sub(c.right().Mul(step))
	case Right:
		c.Position = c.Position.Add(c.right().Mul(step))
	case Up:
		c.Position = c.Position.Add(worldUp.Mul(step))
	case Down:
		c.Position = c.Position.Sub(worldUp.Mul(step))
	}
}

//Look applies a mouse delta in pixels
func (c *Camera) Look(dx, dy float32) {
	c.Yaw += dx * MouseSensitivity
	c.Pitch -= dy * MouseSensitivity
	c.clampPitch()
}

//Turn rotates by direction (-1 or 1) on yaw and pitch for dt seconds
func (c *Camera) Turn(yaw, pitch int, dt float32) {
	c.Yaw += float32(yaw) * TurnSpeed * dt
	c.Pitch += float32(pitch) * TurnSpeed * dt
	c.clampPitch()
}

func (c *Camera) clampPitch() {
	if c.Pitch > MaxPitch {
		c.Pitch = MaxPitch
	}
	if c.Pitch < -MaxPitch {
		c.Pitch = -MaxPitch
	}
}

func (c *Camera) Reset() {
	c.Position, c.Yaw, c.Pitch = c.start_position, c.start_yaw, c.start_pitch
}
