package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestEyeOrbitsTarget(t *testing.T) {
	c := New(60)
	c.SetTarget(mgl32.Vec3{10, 0, 10})

	assert.InDelta(t, 50, c.Eye().Sub(c.CurrentLookAt).Len(), 1e-3)
	assert.Greater(t, c.Eye().Y(), float32(0), "olhando de cima")

	// O alvo projeta no centro da tela.
	clip := c.ViewProjection(16.0 / 9.0).Mul4x1(c.CurrentLookAt.Vec4(1))
	ndc := clip.Vec3().Mul(1 / clip.W())
	assert.InDelta(t, 0, ndc.X(), 1e-4)
	assert.InDelta(t, 0, ndc.Y(), 1e-4)
}

func TestUpdateSmoothsTowardsTarget(t *testing.T) {
	c := New(60)
	c.TargetLookAt = mgl32.Vec3{100, 0, 0}

	c.Update(1.0 / 60)
	assert.InDelta(t, 10, c.CurrentLookAt.X(), 1e-3)

	for i := 0; i < 200; i++ {
		c.Update(1.0 / 60)
	}
	assert.InDelta(t, 100, c.CurrentLookAt.X(), 1e-2)
}

func TestZoomAndOrbitClamp(t *testing.T) {
	c := New(60)
	c.Zoom(100)
	assert.Equal(t, c.MinZoom, c.TargetZoom)
	c.Zoom(-1000)
	assert.Equal(t, c.MaxZoom, c.TargetZoom)

	c.Orbit(0, -100000)
	assert.InDelta(t, maxElevation, c.AngleX, 1e-6)
	c.Orbit(0, 100000)
	assert.InDelta(t, minElevation, c.AngleX, 1e-6)
}

func TestPanMovesOnGroundPlane(t *testing.T) {
	c := New(60)
	start := c.TargetLookAt
	assert.True(t, c.Pan(1, 0, 1))
	moved := c.TargetLookAt.Sub(start)
	assert.InDelta(t, 0, moved.Y(), 1e-6)
	assert.InDelta(t, c.MoveSpeed, moved.Len(), 1e-3)
	assert.False(t, c.Pan(0, 0, 1))
}
