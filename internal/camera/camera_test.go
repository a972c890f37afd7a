package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-4

func vecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, eps), "want %v got %v", want, got)
}

func TestNewLooksAtTarget(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 0, 0})
	vecNear(t, mgl32.Vec3{0, 0, -1}, c.Front())
	vecNear(t, mgl32.Vec3{0, 0, 2}, c.Target())

	c = New(mgl32.Vec3{2, 2, 2}, mgl32.Vec3{})
	vecNear(t, mgl32.Vec3{-1, -1, -1}.Normalize(), c.Front())
}

func TestMoveRelativeToLook(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 0, 0})

	c.Move(Forward, 0.5)
	vecNear(t, mgl32.Vec3{0, 0, 0}, c.Position)

	c.Move(Right, 1)
	vecNear(t, mgl32.Vec3{MoveSpeed, 0, 0}, c.Position)

	c.Move(Up, 1)
	c.Move(Left, 1)
	vecNear(t, mgl32.Vec3{0, MoveSpeed, 0}, c.Position)
}

func TestPitchClamped(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{})
	c.Look(0, -10000)
	assert.Equal(t, float32(MaxPitch), c.Pitch)
	c.Turn(0, -1, 1000)
	assert.Equal(t, float32(-MaxPitch), c.Pitch)
}

func TestTurnAndReset(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{})
	yaw := c.Yaw
	c.Turn(1, 0, 0.5)
	assert.InDelta(t, yaw+TurnSpeed/2, c.Yaw, eps)

	c.Move(Backward, 1)
	c.Reset()
	assert.Equal(t, yaw, c.Yaw)
	vecNear(t, mgl32.Vec3{0, 0, 3}, c.Position)
}
