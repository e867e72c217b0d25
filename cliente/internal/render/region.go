package render

import "Luminar/shared/util"

// RenderRegion é a unidade espacial renderizável: um cubo de geometria do
// mundo com no máximo um DrawableRegion por categoria de passe.
type RenderRegion struct {
	Coord util.RegionCoord
	MTime int64

	// Index é a posição da região na ordem de visibilidade do frame atual.
	Index int

	drawables [passCategoryCount]*DrawableRegion
}

// NewRenderRegion cria uma região sem geometria.
func NewRenderRegion(coord util.RegionCoord) *RenderRegion {
	return &RenderRegion{Coord: coord}
}

// Drawable retorna a geometria da categoria, podendo ser nil ou EmptyDrawable.
func (r *RenderRegion) Drawable(cat PassCategory) *DrawableRegion {
	return r.drawables[cat]
}

// SetDrawable troca a geometria de uma categoria. A anterior perde a
// referência da região, mas sobrevive enquanto alguma draw list a retiver.
func (r *RenderRegion) SetDrawable(cat PassCategory, d *DrawableRegion) {
	old := r.drawables[cat]
	r.drawables[cat] = d
	if old != nil && old != d {
		old.ReleaseFromRegion()
	}
}

// HasGeometry informa se alguma categoria tem vértices.
func (r *RenderRegion) HasGeometry() bool {
	for _, d := range r.drawables {
		if d != nil && !d.IsEmpty() && !d.IsReleased() {
			return true
		}
	}
	return false
}

// Close solta as referências da região sobre todas as categorias.
func (r *RenderRegion) Close() {
	for cat := range r.drawables {
		r.SetDrawable(PassCategory(cat), nil)
	}
}
