package meshing

import (
	"encoding/binary"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"Luminar/cliente/internal/gpu"
	"Luminar/shared/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls atomic.Int32
	fail  util.RegionCoord
	boom  util.RegionCoord
}

func (f *fakeSource) EncodeRegion(origin util.RegionCoord, buf *MeshBuffer) error {
	f.calls.Add(1)
	switch origin {
	case f.fail:
		return errors.New("sem dados")
	case f.boom:
		panic("quad inválido")
	}
	v := Vertex{Pos: [3]float32{float32(origin.X), 0, float32(origin.Z)}, Color: [4]uint8{255, 255, 255, 255}}
	buf.AddQuad(false, v, v, v, v)
	if origin.Y > 0 {
		buf.AddQuad(true, v, v, v, v)
	}
	return nil
}

func receive(t *testing.T, m *RegionMesher) Result {
	t.Helper()
	select {
	case res := <-m.Results():
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("nenhum resultado do mesher")
	}
	return Result{}
}

func TestAddQuadEncodesSixVertices(t *testing.T) {
	buf := GetMeshBuffer()
	defer PutMeshBuffer(buf)

	var v Vertex
	buf.AddQuad(false, v, v, v, v)
	buf.AddQuad(true, v, v, v, v)
	solid, translucent := buf.VertexCount()
	assert.Equal(t, 6, solid)
	assert.Equal(t, 6, translucent)
	assert.Len(t, buf.Solid, 6*VertexStride)
}

func TestLightAttributeIsUnsigned(t *testing.T) {
	buf := GetMeshBuffer()
	defer PutMeshBuffer(buf)

	v := Vertex{Light: [2]uint16{40000, 15}}
	buf.AddQuad(false, v, v, v, v)

	attr := TerrainFormat.Attributes[3]
	assert.Equal(t, gpu.AttribUnsignedShort, attr.Type)
	assert.False(t, attr.Normalized)
	assert.Equal(t, uint16(40000), binary.LittleEndian.Uint16(buf.Solid[attr.Offset:]))
	assert.Equal(t, uint16(15), binary.LittleEndian.Uint16(buf.Solid[attr.Offset+2:]))
}

func TestRegionMesherGeneratesAndCaches(t *testing.T) {
	src := &fakeSource{fail: util.RegionCoord{X: -1}, boom: util.RegionCoord{X: -2}}
	store := NewResultStore()
	m := NewRegionMesher(2, src, store)
	defer m.Stop()

	origin := util.RegionCoord{X: 16, Y: 16, Z: 32}
	require.True(t, m.Enqueue(Request{Origin: origin, MTime: 3}))
	res := receive(t, m)
	assert.Equal(t, origin, res.Origin)
	assert.Len(t, res.Solid, 6*VertexStride)
	assert.Len(t, res.Translucent, 6*VertexStride)

	require.True(t, m.Enqueue(Request{Origin: origin, MTime: 3}))
	receive(t, m)
	assert.Equal(t, int32(1), src.calls.Load(), "a segunda requisição deve vir do cache")

	store.Clear()
	require.True(t, m.Enqueue(Request{Origin: origin, MTime: 3}))
	receive(t, m)
	assert.Equal(t, int32(2), src.calls.Load(), "cache limpo força nova geração")
}

func TestRegionMesherSurvivesFailures(t *testing.T) {
	src := &fakeSource{fail: util.RegionCoord{X: -16}, boom: util.RegionCoord{X: -32}}
	m := NewRegionMesher(1, src, nil)
	defer m.Stop()

	m.Enqueue(Request{Origin: src.fail})
	m.Enqueue(Request{Origin: src.boom})
	ok := util.RegionCoord{X: 48}
	m.Enqueue(Request{Origin: ok})

	res := receive(t, m)
	assert.Equal(t, ok, res.Origin)
	assert.Eventually(t, func() bool { return m.Pending() == 0 }, time.Second, 5*time.Millisecond)
}
