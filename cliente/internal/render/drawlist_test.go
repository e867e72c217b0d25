package render

import (
	"testing"

	"Luminar/cliente/internal/gpu"
	"Luminar/shared/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regionsWithGeometry(t *testing.T, n int) ([]*RenderRegion, func() []*DrawableRegion) {
	rec, thread, pool := newTestEnv(t)
	regions := make([]*RenderRegion, n)
	for i := range regions {
		r := NewRenderRegion(util.RegionCoord{X: int32(i) * util.RegionSize})
		r.Index = i
		r.SetDrawable(PassSolid, packBytes(t, rec, thread, pool, 8, r.Coord.Origin()))
		r.SetDrawable(PassTranslucent, packBytes(t, rec, thread, pool, 8, r.Coord.Origin()))
		regions[i] = r
	}
	return regions, func() []*DrawableRegion {
		var out []*DrawableRegion
		for _, r := range regions {
			out = append(out, r.Drawable(PassSolid), r.Drawable(PassTranslucent))
		}
		return out
	}
}

func visitOrder(l *DrawList) []int32 {
	var order []int32
	l.Each(func(d *DrawableRegion) {
		order = append(order, d.Origin().X/util.RegionSize)
	})
	return order
}

func TestDrawListOrdering(t *testing.T) {
	regions, _ := regionsWithGeometry(t, 4)

	solid := BuildDrawList(regions, false)
	defer solid.Release()
	translucent := BuildDrawList(regions, true)
	defer translucent.Release()

	assert.Equal(t, []int32{0, 1, 2, 3}, visitOrder(solid))
	assert.Equal(t, []int32{3, 2, 1, 0}, visitOrder(translucent))
}

func TestDrawListSkipsMissingGeometry(t *testing.T) {
	regions, _ := regionsWithGeometry(t, 4)
	regions[1].SetDrawable(PassSolid, nil)
	regions[2].SetDrawable(PassSolid, EmptyDrawable)
	released := regions[3].Drawable(PassSolid)
	regions[3].SetDrawable(PassSolid, nil)
	require.True(t, released.IsReleased())
	regions = append(regions, nil)

	l := BuildDrawList(regions, false)
	defer l.Release()
	assert.Equal(t, []int32{0}, visitOrder(l))
}

func TestDrawListReleasesEveryRetainOnce(t *testing.T) {
	regions, all := regionsWithGeometry(t, 3)

	l := BuildDrawList(regions, false)
	for _, r := range regions {
		assert.Equal(t, int32(2), r.Drawable(PassSolid).Retains())
		assert.Equal(t, int32(1), r.Drawable(PassTranslucent).Retains())
	}

	// A região troca a geometria enquanto a lista ainda está em voo.
	old := regions[0].Drawable(PassSolid)
	regions[0].SetDrawable(PassSolid, EmptyDrawable)
	assert.False(t, old.IsReleased())

	l.Release()
	l.Release()
	assert.True(t, old.IsReleased())
	for _, d := range all() {
		if d == EmptyDrawable {
			continue
		}
		assert.Equal(t, int32(1), d.Retains())
	}
}

func TestDrawListDraw(t *testing.T) {
	rec, thread, pool := newTestEnv(t)
	r := NewRenderRegion(util.RegionCoord{X: 16, Y: 0, Z: -16})
	r.SetDrawable(PassSolid, packBytes(t, rec, thread, pool, 12, r.Coord.Origin()))
	buffer := r.Drawable(PassSolid).State().Buffer()

	l := BuildDrawList([]*RenderRegion{r}, false)
	defer l.Release()

	ctx := gpu.NewStateContext(rec)
	rec.Reset()
	assert.Equal(t, 1, l.Draw(ctx, thread, 7))
	assert.Equal(t, []string{
		"Enable(0)",
		"DepthFunc(2)",
		"Uniform3f(7, 16, 0, -16)",
		"BindVertexBuffer(1, 4)",
		"DrawArrays(0, 0, 3)",
	}, rec.Calls())
	assert.Equal(t, uint32(1), buffer)

	rec.Reset()
	l.Release()
	assert.Equal(t, 0, l.Draw(ctx, thread, 7))
	assert.Empty(t, rec.Calls())
}
