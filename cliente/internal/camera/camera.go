package camera

import (
	"math"

	"Luminar/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Mode define o tipo de projeção.
type Mode int

const (
	ModePerspective Mode = iota
	ModeOrthographic
)

const (
	nearPlane = 0.1
	farPlane  = 1000.0

	minElevation = -89.0 * math.Pi / 180
	maxElevation = -5.0 * math.Pi / 180
)

// CameraController é uma câmera orbital: gira em torno de um alvo, com zoom
// e movimento suavizados.
type CameraController struct {
	Mode         Mode
	FOV          float32 // graus
	MinZoom      float32
	MaxZoom      float32
	MoveSpeed    float32
	RotateSpeed  float32
	ZoomSpeed    float32
	SmoothFactor float32 // 0.0 a 1.0 (quanto menor, mais suave)

	// Estado alvo
	TargetLookAt mgl32.Vec3
	TargetZoom   float32
	AngleY       float32 // azimute (radianos)
	AngleX       float32 // elevação (radianos)

	// Estado interpolado
	CurrentLookAt mgl32.Vec3
	CurrentZoom   float32

	eye mgl32.Vec3
}

// New cria um controlador olhando para a origem.
func New(fov float32) *CameraController {
	c := &CameraController{
		Mode:         ModePerspective,
		FOV:          fov,
		MinZoom:      5.0,
		MaxZoom:      200.0,
		MoveSpeed:    50.0,
		RotateSpeed:  2.0,
		ZoomSpeed:    10.0,
		SmoothFactor: 0.1,

		TargetZoom: 50.0,
		AngleY:     mgl32.DegToRad(45),
		AngleX:     mgl32.DegToRad(-30),
	}
	c.CurrentLookAt = c.TargetLookAt
	c.CurrentZoom = c.TargetZoom
	c.updateEye()
	return c
}

// SetTarget move o alvo imediatamente, sem suavização.
func (c *CameraController) SetTarget(pos mgl32.Vec3) {
	c.TargetLookAt = pos
	c.CurrentLookAt = pos
	c.updateEye()
}

// Update aproxima o estado atual do alvo. Deve ser chamado a cada frame.
func (c *CameraController) Update(dt float32) {
	factor := min(c.SmoothFactor*60.0*dt, 1.0) // normalizado para 60 FPS

	c.CurrentLookAt = c.CurrentLookAt.Add(c.TargetLookAt.Sub(c.CurrentLookAt).Mul(factor))
	c.CurrentZoom = util.Lerp(c.CurrentZoom, c.TargetZoom, factor)
	c.updateEye()
}

// updateEye converte ângulos e zoom na posição do olho.
func (c *CameraController) updateEye() {
	dist := c.CurrentZoom
	if c.Mode == ModeOrthographic {
		dist = 200.0 // longe o bastante para não cortar a geometria
	}
	cosX := float32(math.Cos(float64(c.AngleX)))
	sinX := float32(math.Sin(float64(c.AngleX)))
	cosY := float32(math.Cos(float64(c.AngleY)))
	sinY := float32(math.Sin(float64(c.AngleY)))

	offset := mgl32.Vec3{dist * cosX * sinY, dist * -sinX, dist * cosX * cosY}
	c.eye = c.CurrentLookAt.Add(offset)
}

// SetMode alterna entre perspectiva e ortográfica.
func (c *CameraController) SetMode(mode Mode) {
	c.Mode = mode
	c.updateEye()
}

// Eye retorna a posição do olho no mundo.
func (c *CameraController) Eye() mgl32.Vec3 { return c.eye }

// View retorna a matriz de visão.
func (c *CameraController) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.eye, c.CurrentLookAt, mgl32.Vec3{0, 1, 0})
}

// Projection retorna a matriz de projeção para a proporção dada.
func (c *CameraController) Projection(aspect float32) mgl32.Mat4 {
	if c.Mode == ModeOrthographic {
		h := c.CurrentZoom * 0.25
		w := h * aspect
		return mgl32.Ortho(-w, w, -h, h, nearPlane, farPlane)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, nearPlane, farPlane)
}

// ViewProjection retorna projeção * visão.
func (c *CameraController) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Mul4(c.View())
}

// Zoom aplica um passo de roda do mouse.
func (c *CameraController) Zoom(wheel float32) {
	c.TargetZoom = mgl32.Clamp(c.TargetZoom-wheel*c.ZoomSpeed, c.MinZoom, c.MaxZoom)
}

// Orbit gira a câmera pelo deslocamento do mouse em pixels.
func (c *CameraController) Orbit(dx, dy float32) {
	c.AngleY -= dx * c.RotateSpeed * 0.005
	c.AngleX = mgl32.Clamp(c.AngleX-dy*c.RotateSpeed*0.005, minElevation, maxElevation)
}

// Pan move o alvo no plano XZ, relativo à direção da câmera. forward e
// right em [-1, 1].
func (c *CameraController) Pan(forwardAmount, rightAmount, dt float32) bool {
	forward := c.TargetLookAt.Sub(c.eye)
	forward[1] = 0
	if forward.Len() == 0 {
		return false
	}
	forward = forward.Normalize()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()

	move := forward.Mul(forwardAmount).Add(right.Mul(rightAmount))
	if move.Len() == 0 {
		return false
	}
	// Quanto mais longe, mais rápido.
	speed := c.MoveSpeed * (c.CurrentZoom / 50.0) * dt
	c.TargetLookAt = c.TargetLookAt.Add(move.Normalize().Mul(speed))
	return true
}

// HandleInput lê mouse e teclado do raylib. Retorna true se houve movimento.
func (c *CameraController) HandleInput(dt float32) bool {
	moved := false
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		c.Zoom(wheel)
		moved = true
	}
	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			c.Orbit(delta.X, delta.Y)
			moved = true
		}
	}

	var fwd, right float32
	if rl.IsKeyDown(rl.KeyW) {
		fwd++
	}
	if rl.IsKeyDown(rl.KeyS) {
		fwd--
	}
	if rl.IsKeyDown(rl.KeyD) {
		right++
	}
	if rl.IsKeyDown(rl.KeyA) {
		right--
	}
	if c.Pan(fwd, right, dt) {
		moved = true
	}
	return moved
}
