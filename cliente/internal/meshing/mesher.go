package meshing

import (
	"encoding/binary"
	"math"
	"sync"

	"Luminar/cliente/internal/gpu"
	"Luminar/shared/util"
)

// VertexStride é o tamanho em bytes de um vértice codificado:
// posição (3 float32), cor (4 uint8), uv (2 float32), luz (2 uint16).
const VertexStride = 28

// TerrainFormat descreve o layout de VertexStride para o binding de vértices.
var TerrainFormat = gpu.VertexFormat{
	Stride: VertexStride,
	Attributes: []gpu.VertexAttribute{
		{Location: 0, Components: 3, Type: gpu.AttribFloat, Offset: 0},
		{Location: 1, Components: 4, Type: gpu.AttribUnsignedByte, Normalized: true, Offset: 12},
		{Location: 2, Components: 2, Type: gpu.AttribFloat, Offset: 16},
		{Location: 3, Components: 2, Type: gpu.AttribUnsignedShort, Offset: 24},
	},
}

// Vertex é um vértice antes da codificação.
type Vertex struct {
	Pos   [3]float32
	Color [4]uint8
	UV    [2]float32
	Light [2]uint16
}

// Request representa um pedido de geração de geometria para uma região.
type Request struct {
	Origin util.RegionCoord
	MTime  int64 // Versão dos dados no momento da requisição
}

// Result contém a geometria codificada de uma região.
type Result struct {
	Origin      util.RegionCoord
	MTime       int64
	Solid       []byte
	Translucent []byte
}

// Clone cria uma cópia profunda do resultado.
func (r Result) Clone() Result {
	return Result{
		Origin:      r.Origin,
		MTime:       r.MTime,
		Solid:       cloneBytes(r.Solid),
		Translucent: cloneBytes(r.Translucent),
	}
}

// Empty informa se não há vértices em nenhuma categoria.
func (r Result) Empty() bool {
	return len(r.Solid) == 0 && len(r.Translucent) == 0
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// QuadSource é o codificador externo que emite os quads de uma região.
type QuadSource interface {
	EncodeRegion(origin util.RegionCoord, buf *MeshBuffer) error
}

// Mesher é a interface para geradores de geometria.
type Mesher interface {
	Enqueue(req Request) bool
	Results() <-chan Result
	Stop()
}

// Pool global para reciclar MeshBuffers e evitar alocação excessiva (GC Pressure)
var meshBufferPool = sync.Pool{
	New: func() any {
		return &MeshBuffer{
			Solid:       make([]byte, 0, 64*1024),
			Translucent: make([]byte, 0, 16*1024),
		}
	},
}

// GetMeshBuffer aloca ou recicla um buffer vazio.
func GetMeshBuffer() *MeshBuffer {
	return meshBufferPool.Get().(*MeshBuffer)
}

// PutMeshBuffer zera o buffer e devolve a memória para o Pool.
func PutMeshBuffer(b *MeshBuffer) {
	if b == nil {
		return
	}
	b.Solid = b.Solid[:0]
	b.Translucent = b.Translucent[:0]
	meshBufferPool.Put(b)
}

// MeshBuffer acumula vértices codificados por categoria.
type MeshBuffer struct {
	Solid       []byte
	Translucent []byte
}

// AddQuad adiciona um quad como dois triângulos (v1,v2,v3) e (v1,v3,v4).
func (b *MeshBuffer) AddQuad(translucent bool, v1, v2, v3, v4 Vertex) {
	dst := &b.Solid
	if translucent {
		dst = &b.Translucent
	}
	*dst = appendVertex(*dst, v1)
	*dst = appendVertex(*dst, v2)
	*dst = appendVertex(*dst, v3)
	*dst = appendVertex(*dst, v1)
	*dst = appendVertex(*dst, v3)
	*dst = appendVertex(*dst, v4)
}

// VertexCount retorna quantos vértices há em cada categoria.
func (b *MeshBuffer) VertexCount() (solid, translucent int) {
	return len(b.Solid) / VertexStride, len(b.Translucent) / VertexStride
}

func appendVertex(dst []byte, v Vertex) []byte {
	le := binary.LittleEndian
	for _, f := range v.Pos {
		dst = le.AppendUint32(dst, math.Float32bits(f))
	}
	dst = append(dst, v.Color[0], v.Color[1], v.Color[2], v.Color[3])
	for _, f := range v.UV {
		dst = le.AppendUint32(dst, math.Float32bits(f))
	}
	dst = le.AppendUint16(dst, v.Light[0])
	dst = le.AppendUint16(dst, v.Light[1])
	return dst
}
