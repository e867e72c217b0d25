package world

import (
	"math"

	"Luminar/cliente/internal/lights"

	"github.com/go-gl/mathgl/mgl32"
)

// Entity é uma entidade de demonstração que orbita um ponto fixo.
type Entity struct {
	id      int64
	token   string
	center  mgl32.Vec3
	radius  float32
	speed   float32 // radianos por segundo
	phase   float32
	pos     mgl32.Vec3
	removed bool
}

func (e *Entity) ID() int64            { return e.id }
func (e *Entity) Position() mgl32.Vec3 { return e.pos }
func (e *Entity) LightToken() string   { return e.token }
func (e *Entity) Removed() bool        { return e.removed }

// SetToken troca o token da entidade (ex.: tocha apagada).
func (e *Entity) SetToken(token string) { e.token = token }

// Spawn cria uma entidade orbitando center.
func (w *World) Spawn(token string, center mgl32.Vec3, radius, speed float32) *Entity {
	w.nextID++
	e := &Entity{
		id:     w.nextID,
		token:  token,
		center: center,
		radius: radius,
		speed:  speed,
		phase:  float32(w.nextID) * 1.3,
	}
	w.place(e, 0)
	w.entities = append(w.entities, e)
	return e
}

// Despawn marca a entidade como removida e a tira da lista.
func (w *World) Despawn(id int64) bool {
	for i, e := range w.entities {
		if e.id == id {
			e.removed = true
			w.entities = append(w.entities[:i], w.entities[i+1:]...)
			return true
		}
	}
	return false
}

// Step move as entidades para o instante t (segundos).
func (w *World) Step(t float64) {
	for _, e := range w.entities {
		w.place(e, t)
	}
}

func (w *World) place(e *Entity, t float64) {
	angle := float64(e.phase) + float64(e.speed)*t
	x := e.center.X() + e.radius*float32(math.Cos(angle))
	z := e.center.Z() + e.radius*float32(math.Sin(angle))
	h := w.Height(int32(math.Floor(float64(x))), int32(math.Floor(float64(z))))
	e.pos = mgl32.Vec3{x, float32(h) + 1.5, z}
}

// ForEachRenderable percorre as entidades vivas.
func (w *World) ForEachRenderable(fn func(lights.Entity)) {
	for _, e := range w.entities {
		fn(e)
	}
}

// Entities retorna quantas entidades estão vivas.
func (w *World) Entities() int { return len(w.entities) }
