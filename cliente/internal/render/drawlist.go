package render

import "Luminar/cliente/internal/gpu"

// DrawList é a lista de geometria de um passe em um frame. Ela detém uma
// retenção de cada DrawableRegion incluído e as solta em Release.
type DrawList struct {
	translucent bool
	drawables   []*DrawableRegion
	released    bool
}

// BuildDrawList percorre as regiões em ordem de visibilidade (mais próxima
// primeiro) e monta a lista da categoria pedida: sólidos de frente para trás,
// translúcidos de trás para frente. Regiões sem geometria viva são puladas.
func BuildDrawList(regions []*RenderRegion, translucent bool) *DrawList {
	cat := PassSolid
	if translucent {
		cat = PassTranslucent
	}
	l := &DrawList{translucent: translucent, drawables: make([]*DrawableRegion, 0, len(regions))}

	include := func(r *RenderRegion) {
		if r == nil {
			return
		}
		d := r.Drawable(cat)
		if d == nil || d.IsEmpty() || d.IsReleased() {
			return
		}
		d.RetainFromDrawList()
		l.drawables = append(l.drawables, d)
	}

	if translucent {
		for i := len(regions) - 1; i >= 0; i-- {
			include(regions[i])
		}
	} else {
		for _, r := range regions {
			include(r)
		}
	}
	return l
}

// Translucent informa a categoria da lista.
func (l *DrawList) Translucent() bool { return l.translucent }

// Len retorna quantas regiões a lista desenha.
func (l *DrawList) Len() int { return len(l.drawables) }

// Each visita os drawables na ordem de desenho.
func (l *DrawList) Each(fn func(*DrawableRegion)) {
	for _, d := range l.drawables {
		fn(d)
	}
}

// Draw emite um draw por região, ativando o estado de cada geometria pelo
// StateContext. originLoc < 0 não envia o uniform de origem.
func (l *DrawList) Draw(ctx *gpu.StateContext, thread *gpu.RenderThread, originLoc int32) int {
	if l == nil || l.released || len(l.drawables) == 0 {
		return 0
	}
	thread.Assert("DrawList.Draw")
	dev := ctx.Device()

	draws := 0
	for _, d := range l.drawables {
		s := d.State()
		if s == nil || s.Closed() {
			continue
		}
		ctx.SetDepthTest(s.state.Depth)
		ctx.SetDecalOffset(s.state.Decal)
		ctx.SetFog(s.state.Fog)
		if originLoc >= 0 {
			o := d.Origin()
			dev.Uniform3f(originLoc, float32(o.X), float32(o.Y), float32(o.Z))
		}
		dev.BindVertexBuffer(s.buffer, s.format)
		dev.DrawArrays(gpu.Triangles, 0, s.vertexCount)
		draws++
	}
	return draws
}

// Release solta todas as retenções da lista. Chamadas repetidas não fazem nada.
func (l *DrawList) Release() {
	if l == nil || l.released {
		return
	}
	l.released = true
	for i, d := range l.drawables {
		d.ReleaseFromDrawList()
		l.drawables[i] = nil
	}
	l.drawables = l.drawables[:0]
}
