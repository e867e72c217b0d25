package gpu_test

import (
	"testing"

	"Luminar/cliente/internal/gpu"
	"Luminar/cliente/internal/gpu/gputest"

	"github.com/stretchr/testify/assert"
)

func TestStateContextSkipsRedundantChanges(t *testing.T) {
	rec := gputest.NewRecorder()
	ctx := gpu.NewStateContext(rec)

	ctx.SetDepthTest(gpu.DepthLessEqual)
	ctx.SetDepthTest(gpu.DepthLessEqual)
	assert.Equal(t, []string{"Enable(0)", "DepthFunc(2)"}, rec.Calls())

	rec.Reset()
	ctx.SetDepthTest(gpu.DepthEqual)
	assert.Equal(t, []string{"Disable(0)", "Enable(0)", "DepthFunc(1)"}, rec.Calls())
}

func TestStateContextReset(t *testing.T) {
	rec := gputest.NewRecorder()
	ctx := gpu.NewStateContext(rec)

	ctx.SetDecalOffset(gpu.DecalPolygon)
	ctx.SetFog(gpu.FogExp)
	rec.Reset()

	ctx.Reset()
	assert.Equal(t, []string{"PolygonOffset(0, 0)", "Disable(1)"}, rec.Calls())
	assert.Equal(t, gpu.FogNone, ctx.Fog())
	assert.Equal(t, gpu.DecalNone, ctx.DecalOffset())

	rec.Reset()
	ctx.Reset()
	assert.Empty(t, rec.Calls())
}

func TestParseFormat(t *testing.T) {
	f, ok := gpu.ParseFormat("rgba16f")
	assert.True(t, ok)
	assert.Equal(t, gpu.FormatRGBA16F, f)

	_, ok = gpu.ParseFormat("bgr565")
	assert.False(t, ok)
}
